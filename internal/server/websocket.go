package server

import (
	"context"
	"net/http"

	"github.com/goevery/signaling/internal/auth"
	"github.com/goevery/signaling/internal/broadcaster"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/sourcegraph/jsonrpc2"
	"go.uber.org/zap"
)

const DefaultReadLimit = 1 << 20

// ConnectionManager is the part of the Dispatcher the transport drives.
type ConnectionManager interface {
	Connect(connection *broadcaster.Connection) error
	Disconnect(connectionId string)
	Unicast(targetId string, event string, payload any) bool
}

type WebSocketServer struct {
	logger        *zap.Logger
	upgrader      *websocket.Upgrader
	authenticator *auth.Authenticator
	connections   ConnectionManager
	rpcHandler    *RPCHandler

	sendBuffer int
	readLimit  int64
}

type WebSocketOption func(*WebSocketServer)

func WithSendBuffer(size int) WebSocketOption {
	return func(s *WebSocketServer) {
		s.sendBuffer = size
	}
}

func WithReadLimit(limit int64) WebSocketOption {
	return func(s *WebSocketServer) {
		s.readLimit = limit
	}
}

func NewWebSocketServer(
	logger *zap.Logger,
	upgrader *websocket.Upgrader,
	authenticator *auth.Authenticator,
	connections ConnectionManager,
	rpcHandler *RPCHandler,
	opts ...WebSocketOption,
) *WebSocketServer {
	s := &WebSocketServer{
		logger:        logger,
		upgrader:      upgrader,
		authenticator: authenticator,
		connections:   connections,
		rpcHandler:    rpcHandler,
		sendBuffer:    broadcaster.DefaultSendBuffer,
		readLimit:     DefaultReadLimit,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Register mounts the websocket endpoint. Open sockets are closed when ctx
// is cancelled.
func (s *WebSocketServer) Register(ctx context.Context, router *mux.Router) {
	router.HandleFunc("/websocket", func(w http.ResponseWriter, r *http.Request) {
		s.serve(ctx, w, r)
	})
}

func (s *WebSocketServer) serve(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With(zap.String("remoteAddr", r.RemoteAddr))

	if s.authenticator != nil && s.authenticator.TokenRequired() {
		authentication, err := s.authenticator.AuthenticateJWT(r.URL.Query().Get("token"))
		if err != nil {
			logger.Debug("rejecting websocket handshake", zap.Error(err))
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		logger = logger.With(zap.String("subject", authentication.Subject))
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	conn.SetReadLimit(s.readLimit)

	connection := broadcaster.NewConnection(gonanoid.Must(), s.sendBuffer)
	logger = logger.With(zap.String("connectionId", connection.Id))

	if err := s.connections.Connect(connection); err != nil {
		conn.Close()
		return
	}

	logger.Info("websocket connection established")

	s.connections.Unicast(connection.Id, broadcaster.EventConnected, broadcaster.Connected{
		ConnectionId: connection.Id,
	})

	rpcCtx := broadcaster.WithConnection(ctx, connection)
	rpcConn := jsonrpc2.NewConn(
		rpcCtx,
		NewWebSocketObjectStream(conn),
		s.rpcHandler,
		jsonrpc2.SetLogger(NewRPCLogger(logger)),
	)

	writerDone := make(chan struct{})
	go s.writePump(rpcCtx, logger, rpcConn, connection, writerDone)

	select {
	case <-rpcConn.DisconnectNotify():
	case <-ctx.Done():
		rpcConn.Close()
	}

	s.connections.Disconnect(connection.Id)
	<-writerDone

	logger.Info("websocket connection closed")
}

// writePump is the only writer of outbound events for one connection. It
// stops when the Dispatcher closes the send channel.
func (s *WebSocketServer) writePump(
	ctx context.Context,
	logger *zap.Logger,
	rpcConn *jsonrpc2.Conn,
	connection *broadcaster.Connection,
	done chan<- struct{},
) {
	defer close(done)
	defer rpcConn.Close()

	for message := range connection.Send {
		if err := rpcConn.Notify(ctx, message.Event, message.Payload); err != nil {
			logger.Debug("failed to write event",
				zap.String("event", message.Event),
				zap.Error(err))
		}
	}
}

type WebSocketObjectStream struct {
	connection *websocket.Conn
}

func NewWebSocketObjectStream(connection *websocket.Conn) *WebSocketObjectStream {
	return &WebSocketObjectStream{
		connection,
	}
}

func (s *WebSocketObjectStream) WriteObject(obj any) error {
	return s.connection.WriteJSON(obj)
}

func (s *WebSocketObjectStream) ReadObject(v any) error {
	return s.connection.ReadJSON(v)
}

func (s *WebSocketObjectStream) Close() error {
	return s.connection.Close()
}
