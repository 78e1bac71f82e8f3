package handler

import (
	"context"
	"encoding/json"

	"github.com/goevery/signaling/internal/broadcaster"
)

const EventChatMessage = "chat_message"

type ChatMessageRequest struct {
	RoomId    string          `json:"roomId"`
	Message   json.RawMessage `json:"message"`
	Timestamp json.RawMessage `json:"timestamp"`
}

type ChatMessage struct {
	UserId    string               `json:"userId"`
	UserInfo  broadcaster.UserInfo `json:"userInfo"`
	Message   json.RawMessage      `json:"message"`
	Timestamp json.RawMessage      `json:"timestamp"`
}

// ChatHandler relays chat to the sender's peers. Clients render their own
// messages locally, so the sender is not echoed.
type ChatHandler struct {
	hub broadcaster.Hub
}

func NewChatHandler(hub broadcaster.Hub) *ChatHandler {
	return &ChatHandler{
		hub,
	}
}

func (h *ChatHandler) Handle(ctx context.Context, req ChatMessageRequest) (RelayResponse, error) {
	if err := requireString("roomId", req.RoomId); err != nil {
		return RelayResponse{}, err
	}
	if err := requireValue("message", req.Message); err != nil {
		return RelayResponse{}, err
	}
	if err := requireValue("timestamp", req.Timestamp); err != nil {
		return RelayResponse{}, err
	}

	connection, err := connectionFromContext(ctx)
	if err != nil {
		return RelayResponse{}, err
	}

	info, ok := h.hub.UserInfo(connection.Id)
	if !ok {
		info = broadcaster.UserInfo{}
	}

	recipients := h.hub.BroadcastToRoom(req.RoomId, EventChatMessage, ChatMessage{
		UserId:    connection.Id,
		UserInfo:  info,
		Message:   req.Message,
		Timestamp: req.Timestamp,
	}, connection.Id)

	return RelayResponse{
		Recipients: recipients,
	}, nil
}
