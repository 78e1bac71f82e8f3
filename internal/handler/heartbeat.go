package handler

import (
	"context"

	"github.com/goevery/signaling/internal/broadcaster"
)

const EventPong = "pong"

type HeartbeatHandler struct {
	hub broadcaster.Hub
}

func NewHeartbeatHandler(hub broadcaster.Hub) *HeartbeatHandler {
	return &HeartbeatHandler{
		hub,
	}
}

// Handle answers a ping with a pong event and, for requests, a "pong" result.
func (h *HeartbeatHandler) Handle(ctx context.Context) (string, error) {
	connection, err := connectionFromContext(ctx)
	if err != nil {
		return "", err
	}

	h.hub.Unicast(connection.Id, EventPong, nil)

	return EventPong, nil
}
