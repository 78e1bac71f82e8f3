package server

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/goevery/signaling/internal/handler"
	"github.com/goevery/signaling/internal/ierr"
	"go.uber.org/zap"
)

// Inbound event names that are not relayed under the same name.
const (
	MethodJoinRoom    = "join_room"
	MethodLeaveRoom   = "leave_room"
	MethodMediaToggle = "media_toggle"
	MethodPing        = "ping"
)

type Router struct {
	logger *zap.Logger

	heartbeatHandler    *handler.HeartbeatHandler
	joinRoomHandler     *handler.JoinRoomHandler
	leaveRoomHandler    *handler.LeaveRoomHandler
	signalHandler       *handler.SignalHandler
	mediaToggleHandler  *handler.MediaToggleHandler
	chatHandler         *handler.ChatHandler
	screenShareHandler  *handler.ScreenShareHandler
	fileTransferHandler *handler.FileTransferHandler
}

func NewRouter(
	logger *zap.Logger,
	heartbeatHandler *handler.HeartbeatHandler,
	joinRoomHandler *handler.JoinRoomHandler,
	leaveRoomHandler *handler.LeaveRoomHandler,
	signalHandler *handler.SignalHandler,
	mediaToggleHandler *handler.MediaToggleHandler,
	chatHandler *handler.ChatHandler,
	screenShareHandler *handler.ScreenShareHandler,
	fileTransferHandler *handler.FileTransferHandler,
) *Router {
	return &Router{
		logger,
		heartbeatHandler,
		joinRoomHandler,
		leaveRoomHandler,
		signalHandler,
		mediaToggleHandler,
		chatHandler,
		screenShareHandler,
		fileTransferHandler,
	}
}

func (r *Router) Route(ctx context.Context, method string, params *json.RawMessage) (any, error) {
	switch method {
	case MethodPing:
		return r.heartbeatHandler.Handle(ctx)
	case MethodJoinRoom:
		var req handler.JoinRoomRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}

		return r.joinRoomHandler.Handle(ctx, req)
	case MethodLeaveRoom:
		var req handler.LeaveRoomRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}

		return r.leaveRoomHandler.Handle(ctx, req)
	case handler.EventWebRTCOffer:
		var req handler.OfferRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}

		return r.signalHandler.HandleOffer(ctx, req)
	case handler.EventWebRTCAnswer:
		var req handler.AnswerRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}

		return r.signalHandler.HandleAnswer(ctx, req)
	case handler.EventWebRTCIceCandidate:
		var req handler.IceCandidateRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}

		return r.signalHandler.HandleIceCandidate(ctx, req)
	case MethodMediaToggle:
		var req handler.MediaToggleRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}

		return r.mediaToggleHandler.Handle(ctx, req)
	case handler.EventChatMessage:
		var req handler.ChatMessageRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}

		return r.chatHandler.Handle(ctx, req)
	case handler.EventScreenShareStarted:
		var req handler.ScreenShareRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}

		return r.screenShareHandler.HandleStarted(ctx, req)
	case handler.EventScreenShareStopped:
		var req handler.ScreenShareRequest
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}

		return r.screenShareHandler.HandleStopped(ctx, req)
	case handler.EventFileTransferStart, handler.EventFileChunk, handler.EventFileTransferEnd:
		if params == nil {
			return nil, ierr.New(ierr.ErrorCodeMalformedEvent, errors.New("missing params"))
		}

		return r.fileTransferHandler.Handle(ctx, method, *params)
	default:
		return nil, ierr.New(ierr.ErrorCodeNotFound, errors.New("method not found: "+method))
	}
}

func (r *Router) mapError(err error) ierr.Error {
	var handlerErr ierr.Error
	if errors.As(err, &handlerErr) {
		return handlerErr
	}

	r.logger.Error("error in rpc handler", zap.Error(err))

	return ierr.New(ierr.ErrorCodeInternal, errors.New("internal error"))
}

func decodeParams(params *json.RawMessage, v any) error {
	if params == nil {
		return ierr.New(ierr.ErrorCodeMalformedEvent, errors.New("missing params"))
	}

	if err := json.Unmarshal(*params, v); err != nil {
		return ierr.New(ierr.ErrorCodeMalformedEvent, errors.New("invalid params: "+err.Error()))
	}

	return nil
}
