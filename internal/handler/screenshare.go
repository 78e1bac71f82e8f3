package handler

import (
	"context"

	"github.com/goevery/signaling/internal/broadcaster"
)

const (
	EventScreenShareStarted = "screen_share_started"
	EventScreenShareStopped = "screen_share_stopped"
)

type ScreenShareRequest struct {
	RoomId string `json:"roomId"`
}

type ScreenShare struct {
	UserId string `json:"userId"`
}

type ScreenShareHandler struct {
	hub broadcaster.Hub
}

func NewScreenShareHandler(hub broadcaster.Hub) *ScreenShareHandler {
	return &ScreenShareHandler{
		hub,
	}
}

func (h *ScreenShareHandler) HandleStarted(ctx context.Context, req ScreenShareRequest) (RelayResponse, error) {
	return h.announce(ctx, EventScreenShareStarted, req)
}

func (h *ScreenShareHandler) HandleStopped(ctx context.Context, req ScreenShareRequest) (RelayResponse, error) {
	return h.announce(ctx, EventScreenShareStopped, req)
}

func (h *ScreenShareHandler) announce(ctx context.Context, event string, req ScreenShareRequest) (RelayResponse, error) {
	if err := requireString("roomId", req.RoomId); err != nil {
		return RelayResponse{}, err
	}

	connection, err := connectionFromContext(ctx)
	if err != nil {
		return RelayResponse{}, err
	}

	recipients := h.hub.BroadcastToRoom(req.RoomId, event, ScreenShare{UserId: connection.Id}, connection.Id)

	return RelayResponse{
		Recipients: recipients,
	}, nil
}
