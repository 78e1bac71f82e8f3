package broadcaster

import (
	"context"
)

const DefaultSendBuffer = 64

// Connection is one live transport session. Send is written only by the
// Dispatcher and closed by it when the connection is disconnected.
type Connection struct {
	Id   string
	Send chan Message
}

func NewConnection(id string, sendBuffer int) *Connection {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}

	return &Connection{
		Id:   id,
		Send: make(chan Message, sendBuffer),
	}
}

type contextKey string

const connectionKey contextKey = "connection"

func WithConnection(ctx context.Context, conn *Connection) context.Context {
	return context.WithValue(ctx, connectionKey, conn)
}

func ConnectionFromContext(ctx context.Context) (*Connection, bool) {
	conn, ok := ctx.Value(connectionKey).(*Connection)

	return conn, ok
}
