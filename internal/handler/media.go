package handler

import (
	"context"
	"encoding/json"

	"github.com/goevery/signaling/internal/broadcaster"
)

const EventMediaToggled = "media_toggled"

type MediaToggleRequest struct {
	RoomId  string          `json:"roomId"`
	Type    json.RawMessage `json:"type"`
	Enabled json.RawMessage `json:"enabled"`
}

type MediaToggled struct {
	UserId  string          `json:"userId"`
	Type    json.RawMessage `json:"type"`
	Enabled json.RawMessage `json:"enabled"`
}

type MediaToggleHandler struct {
	hub broadcaster.Hub
}

func NewMediaToggleHandler(hub broadcaster.Hub) *MediaToggleHandler {
	return &MediaToggleHandler{
		hub,
	}
}

func (h *MediaToggleHandler) Handle(ctx context.Context, req MediaToggleRequest) (RelayResponse, error) {
	if err := requireString("roomId", req.RoomId); err != nil {
		return RelayResponse{}, err
	}
	if err := requireValue("type", req.Type); err != nil {
		return RelayResponse{}, err
	}
	if err := requireValue("enabled", req.Enabled); err != nil {
		return RelayResponse{}, err
	}

	connection, err := connectionFromContext(ctx)
	if err != nil {
		return RelayResponse{}, err
	}

	recipients := h.hub.BroadcastToRoom(req.RoomId, EventMediaToggled, MediaToggled{
		UserId:  connection.Id,
		Type:    req.Type,
		Enabled: req.Enabled,
	}, connection.Id)

	return RelayResponse{
		Recipients: recipients,
	}, nil
}
