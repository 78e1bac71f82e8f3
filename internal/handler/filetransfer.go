package handler

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/goevery/signaling/internal/broadcaster"
	"github.com/goevery/signaling/internal/ierr"
)

const (
	EventFileTransferStart = "file_transfer_start"
	EventFileChunk         = "file_chunk"
	EventFileTransferEnd   = "file_transfer_end"
)

type fileTransferTarget struct {
	RoomId string `json:"roomId"`
}

// FileTransferHandler rebroadcasts the inbound params byte for byte. Only
// roomId is decoded; chunks are never inspected.
type FileTransferHandler struct {
	hub broadcaster.Hub
}

func NewFileTransferHandler(hub broadcaster.Hub) *FileTransferHandler {
	return &FileTransferHandler{
		hub,
	}
}

func (h *FileTransferHandler) Handle(ctx context.Context, event string, params json.RawMessage) (RelayResponse, error) {
	var target fileTransferTarget
	if err := json.Unmarshal(params, &target); err != nil {
		return RelayResponse{}, ierr.New(ierr.ErrorCodeMalformedEvent, errors.New("params must be an object"))
	}

	if err := requireString("roomId", target.RoomId); err != nil {
		return RelayResponse{}, err
	}

	connection, err := connectionFromContext(ctx)
	if err != nil {
		return RelayResponse{}, err
	}

	recipients := h.hub.BroadcastToRoom(target.RoomId, event, params, connection.Id)

	return RelayResponse{
		Recipients: recipients,
	}, nil
}
