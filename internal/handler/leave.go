package handler

import (
	"context"

	"github.com/goevery/signaling/internal/broadcaster"
)

type LeaveRoomRequest struct {
	RoomId string `json:"roomId"`
}

type LeaveRoomResponse struct {
	Success bool `json:"success"`
}

type LeaveRoomHandler struct {
	hub broadcaster.Hub
}

func NewLeaveRoomHandler(hub broadcaster.Hub) *LeaveRoomHandler {
	return &LeaveRoomHandler{
		hub,
	}
}

func (h *LeaveRoomHandler) Handle(ctx context.Context, req LeaveRoomRequest) (LeaveRoomResponse, error) {
	if err := requireString("roomId", req.RoomId); err != nil {
		return LeaveRoomResponse{}, err
	}

	connection, err := connectionFromContext(ctx)
	if err != nil {
		return LeaveRoomResponse{}, err
	}

	h.hub.LeaveRoom(connection.Id, req.RoomId)

	return LeaveRoomResponse{
		Success: true,
	}, nil
}
