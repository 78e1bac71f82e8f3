package server

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/goevery/signaling/internal/auth"
	"github.com/goevery/signaling/internal/broadcaster"
	"github.com/goevery/signaling/internal/handler"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sourcegraph/jsonrpc2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(logger *zap.Logger, d *broadcaster.Dispatcher) *Router {
	return NewRouter(
		logger,
		handler.NewHeartbeatHandler(d),
		handler.NewJoinRoomHandler(d),
		handler.NewLeaveRoomHandler(d),
		handler.NewSignalHandler(d),
		handler.NewMediaToggleHandler(d),
		handler.NewChatHandler(d),
		handler.NewScreenShareHandler(d),
		handler.NewFileTransferHandler(d),
	)
}

type testServer struct {
	*httptest.Server
	dispatcher *broadcaster.Dispatcher
	cancel     context.CancelFunc
}

func newTestServer(t *testing.T, secret string) *testServer {
	t.Helper()

	logger := zap.NewNop()
	dispatcher := broadcaster.NewDispatcher(logger, nil)
	rpcHandler := NewRPCHandler(logger, newTestRouter(logger, dispatcher))

	wsServer := NewWebSocketServer(
		logger,
		&websocket.Upgrader{},
		auth.NewAuthenticator(secret, nil),
		dispatcher,
		rpcHandler,
	)

	ctx, cancel := context.WithCancel(context.Background())

	router := mux.NewRouter()
	wsServer.Register(ctx, router)

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		cancel()
		server.Close()
	})

	return &testServer{server, dispatcher, cancel}
}

func (s *testServer) websocketURL(query string) string {
	u, _ := url.Parse(s.URL)
	u.Scheme = "ws"
	u.Path = "/websocket"
	u.RawQuery = query

	return u.String()
}

type eventCollector struct {
	events chan *jsonrpc2.Request
}

func (c *eventCollector) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	c.events <- req
}

type testClient struct {
	id     string
	rpc    *jsonrpc2.Conn
	events chan *jsonrpc2.Request
}

func dial(t *testing.T, s *testServer) *testClient {
	t.Helper()

	ws, _, err := websocket.DefaultDialer.Dial(s.websocketURL(""), nil)
	require.NoError(t, err)

	return newTestClient(t, ws)
}

func newTestClient(t *testing.T, ws *websocket.Conn) *testClient {
	t.Helper()

	collector := &eventCollector{events: make(chan *jsonrpc2.Request, 64)}
	rpcConn := jsonrpc2.NewConn(context.Background(), NewWebSocketObjectStream(ws), collector)
	t.Cleanup(func() { rpcConn.Close() })

	client := &testClient{rpc: rpcConn, events: collector.events}

	var greeting broadcaster.Connected
	client.next(t, broadcaster.EventConnected, &greeting)
	require.NotEmpty(t, greeting.ConnectionId)
	client.id = greeting.ConnectionId

	return client
}

// next waits for the next event and requires it to have the given name.
func (c *testClient) next(t *testing.T, event string, v any) {
	t.Helper()

	select {
	case req := <-c.events:
		require.Equal(t, event, req.Method)
		require.True(t, req.Notif)
		if v != nil {
			require.NotNil(t, req.Params)
			require.NoError(t, json.Unmarshal(*req.Params, v))
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", event)
	}
}

func (c *testClient) call(t *testing.T, method string, params any, result any) error {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return c.rpc.Call(ctx, method, params, result)
}

func (c *testClient) notify(t *testing.T, method string, params any) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, c.rpc.Notify(ctx, method, params))
}
