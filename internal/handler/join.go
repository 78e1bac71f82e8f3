package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/goevery/signaling/internal/broadcaster"
)

type JoinRoomRequest struct {
	RoomId   string          `json:"roomId"`
	UserInfo json.RawMessage `json:"userInfo"`
}

type JoinRoomResponse struct {
	RoomId    string    `json:"roomId"`
	UserId    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

type JoinRoomHandler struct {
	hub broadcaster.Hub
}

func NewJoinRoomHandler(hub broadcaster.Hub) *JoinRoomHandler {
	return &JoinRoomHandler{
		hub,
	}
}

func (h *JoinRoomHandler) Handle(ctx context.Context, req JoinRoomRequest) (JoinRoomResponse, error) {
	if err := requireString("roomId", req.RoomId); err != nil {
		return JoinRoomResponse{}, err
	}

	connection, err := connectionFromContext(ctx)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	err = h.hub.JoinRoom(connection.Id, req.RoomId, broadcaster.ParseUserInfo(req.UserInfo))
	if err != nil {
		return JoinRoomResponse{}, err
	}

	return JoinRoomResponse{
		RoomId:    req.RoomId,
		UserId:    connection.Id,
		Timestamp: time.Now(),
	}, nil
}
