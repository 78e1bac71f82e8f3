package server

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/goevery/signaling/internal/broadcaster"
	"github.com/goevery/signaling/internal/ierr"
	"github.com/sourcegraph/jsonrpc2"
	"go.uber.org/zap"
)

// RPCHandler maps every inbound jsonrpc2 message to a Router call. Only
// requests get a reply; notifications are best effort and errors on them
// are logged and dropped.
type RPCHandler struct {
	logger *zap.Logger
	router *Router
}

func NewRPCHandler(logger *zap.Logger, router *Router) *RPCHandler {
	return &RPCHandler{
		logger,
		router,
	}
}

func (h *RPCHandler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	connectionId := ""
	if connection, ok := broadcaster.ConnectionFromContext(ctx); ok {
		connectionId = connection.Id
	}

	result, err := h.router.Route(ctx, req.Method, req.Params)

	if req.Notif {
		if err != nil {
			h.logger.Debug("dropping event",
				zap.String("connectionId", connectionId),
				zap.String("event", req.Method),
				zap.Error(err))
		}

		return
	}

	if err != nil {
		replyErr := h.router.mapError(err)
		if err := conn.ReplyWithError(ctx, req.ID, toRPCError(replyErr)); err != nil {
			h.logger.Debug("failed to reply with error",
				zap.String("connectionId", connectionId),
				zap.Error(err))
		}

		return
	}

	if err := conn.Reply(ctx, req.ID, result); err != nil {
		h.logger.Debug("failed to reply",
			zap.String("connectionId", connectionId),
			zap.String("event", req.Method),
			zap.Error(err))
	}
}

func toRPCError(err ierr.Error) *jsonrpc2.Error {
	rpcErr := &jsonrpc2.Error{
		Code:    rpcErrorCode(err.Code),
		Message: err.Message,
	}

	if data, marshalErr := json.Marshal(err); marshalErr == nil {
		raw := json.RawMessage(data)
		rpcErr.Data = &raw
	}

	return rpcErr
}

func rpcErrorCode(code ierr.ErrorCode) int64 {
	switch code {
	case ierr.ErrorCodeNotFound:
		return jsonrpc2.CodeMethodNotFound
	case ierr.ErrorCodeMalformedEvent, ierr.ErrorCodeInvalidArgument:
		return jsonrpc2.CodeInvalidParams
	default:
		return jsonrpc2.CodeInternalError
	}
}

type RPCLogger struct {
	logger *zap.SugaredLogger
}

func NewRPCLogger(logger *zap.Logger) *RPCLogger {
	return &RPCLogger{
		logger.Sugar(),
	}
}

func (l *RPCLogger) Printf(format string, v ...any) {
	l.logger.Debugf(strings.TrimSpace(format), v...)
}
