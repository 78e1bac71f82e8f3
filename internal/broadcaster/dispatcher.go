package broadcaster

import (
	"sync"

	"github.com/goevery/signaling/internal/metrics"
	"go.uber.org/zap"
)

// Hub is the event surface the handlers drive.
type Hub interface {
	JoinRoom(connectionId string, roomId string, info UserInfo) error
	LeaveRoom(connectionId string, roomId string)
	Unicast(targetId string, event string, payload any) bool
	BroadcastToRoom(roomId string, event string, payload any, excludeId string) int
	UserInfo(connectionId string) (UserInfo, bool)
}

// Dispatcher is the only writer of the ConnectionRegistry and the RoomIndex.
// Every event runs to completion under one mutex, and relay sends never
// block, so the registry and index are consistent whenever the lock is free.
type Dispatcher struct {
	logger  *zap.Logger
	hooks   Hooks
	metrics *metrics.Metrics

	mu       sync.Mutex
	registry *ConnectionRegistry
	index    *RoomIndex
	relay    *Relay
}

type Option func(*Dispatcher)

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

func NewDispatcher(logger *zap.Logger, hooks Hooks, opts ...Option) *Dispatcher {
	if hooks == nil {
		hooks = NopHooks{}
	}

	d := &Dispatcher{
		logger:   logger,
		hooks:    hooks,
		registry: NewConnectionRegistry(),
		index:    NewRoomIndex(),
	}

	for _, opt := range opts {
		opt(d)
	}

	d.relay = NewRelay(logger, d.metrics, d.registry, d.index)

	return d
}

func (d *Dispatcher) Connect(connection *Connection) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.registry.OnConnect(connection); err != nil {
		d.logger.Error("transport assigned a duplicate connection id",
			zap.String("connectionId", connection.Id),
			zap.Error(err))

		return err
	}

	d.metrics.ConnectionOpened()
	d.logger.Info("connection registered", zap.String("connectionId", connection.Id))

	return nil
}

// Disconnect runs the cleanup cascade. Unknown ids are ignored so duplicate
// transport notifications are harmless.
func (d *Dispatcher) Disconnect(connectionId string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.disconnectLocked(connectionId)
	d.evictStaleLocked()
}

func (d *Dispatcher) JoinRoom(connectionId string, roomId string, info UserInfo) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if info == nil {
		info = UserInfo{}
	}

	err := d.joinLocked(connectionId, roomId, info)
	d.evictStaleLocked()

	return err
}

func (d *Dispatcher) LeaveRoom(connectionId string, roomId string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.leaveLocked(connectionId, roomId) {
		d.logger.Debug("ignoring leave for a room the connection is not in",
			zap.String("connectionId", connectionId),
			zap.String("roomId", roomId))
	}
	d.evictStaleLocked()
}

func (d *Dispatcher) Unicast(targetId string, event string, payload any) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	delivered := d.relay.Unicast(targetId, Message{Event: event, Payload: payload})
	d.evictStaleLocked()

	return delivered
}

func (d *Dispatcher) BroadcastToRoom(roomId string, event string, payload any, excludeId string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	delivered := d.relay.BroadcastToRoom(roomId, Message{Event: event, Payload: payload}, excludeId)
	d.evictStaleLocked()

	return delivered
}

// BroadcastAll queues the message on every live connection.
func (d *Dispatcher) BroadcastAll(event string, payload any) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	delivered := d.relay.BroadcastAll(Message{Event: event, Payload: payload})
	d.evictStaleLocked()

	return delivered
}

func (d *Dispatcher) UserInfo(connectionId string) (UserInfo, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.registry.UserInfo(connectionId)
}

func (d *Dispatcher) IsLive(connectionId string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.registry.IsLive(connectionId)
}

func (d *Dispatcher) Rooms(connectionId string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.registry.Rooms(connectionId)
}

func (d *Dispatcher) Members(roomId string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.index.Members(roomId)
}

func (d *Dispatcher) ConnectionCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.registry.Len()
}

func (d *Dispatcher) RoomCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.index.RoomCount()
}

func (d *Dispatcher) RoomParticipantCount(roomId string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.index.MemberCount(roomId)
}

func (d *Dispatcher) AllRoomParticipantCounts() map[string]int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.index.Counts()
}

// RoomListChanged lets collaborators announce rooms created outside the relay.
func (d *Dispatcher) RoomListChanged() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.hooks.RoomListChanged()
}
