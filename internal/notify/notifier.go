package notify

import (
	"context"
	"time"

	"github.com/goevery/signaling/internal/broadcaster"
	"github.com/goevery/signaling/internal/persistence"
	"go.uber.org/zap"
)

const (
	DefaultQueueSize    = 256
	DefaultStoreTimeout = 5 * time.Second
)

// Broadcaster delivers an event to every live connection.
type Broadcaster interface {
	BroadcastAll(event string, payload any) int
}

// RoomListChange travels over the Bus so every instance refreshes its
// clients.
type RoomListChange struct {
	Origin    string    `json:"origin"`
	Timestamp time.Time `json:"timestamp"`
}

type Bus interface {
	Publish(ctx context.Context, change RoomListChange) error
	Subscribe(ctx context.Context, fn func(RoomListChange))
}

type jobKind int

const (
	jobDeactivateMeeting jobKind = iota
	jobRoomListChanged
)

type job struct {
	kind   jobKind
	roomId string
	at     time.Time
}

// Notifier implements broadcaster.Hooks. Hooks run under the Dispatcher
// lock, so they only enqueue; Run processes jobs in the order they fired.
type Notifier struct {
	logger *zap.Logger

	origin       string
	store        persistence.MeetingStore
	bus          Bus
	storeTimeout time.Duration

	jobs chan job
}

var _ broadcaster.Hooks = (*Notifier)(nil)

type Option func(*Notifier)

func WithMeetingStore(store persistence.MeetingStore) Option {
	return func(n *Notifier) {
		n.store = store
	}
}

func WithBus(bus Bus, origin string) Option {
	return func(n *Notifier) {
		n.bus = bus
		n.origin = origin
	}
}

func WithQueueSize(size int) Option {
	return func(n *Notifier) {
		n.jobs = make(chan job, size)
	}
}

func WithStoreTimeout(timeout time.Duration) Option {
	return func(n *Notifier) {
		n.storeTimeout = timeout
	}
}

func NewNotifier(logger *zap.Logger, opts ...Option) *Notifier {
	n := &Notifier{
		logger:       logger,
		storeTimeout: DefaultStoreTimeout,
		jobs:         make(chan job, DefaultQueueSize),
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

func (n *Notifier) RoomBecameEmpty(roomId string) {
	n.enqueue(job{kind: jobDeactivateMeeting, roomId: roomId, at: time.Now()})
}

func (n *Notifier) RoomListChanged() {
	n.enqueue(job{kind: jobRoomListChanged, at: time.Now()})
}

func (n *Notifier) enqueue(j job) {
	select {
	case n.jobs <- j:
	default:
		n.logger.Warn("notification queue is full, dropping job",
			zap.String("roomId", j.roomId),
			zap.Int("kind", int(j.kind)))
	}
}

// Run processes jobs until ctx is cancelled. With a bus configured, room
// list changes are published and fanned out when they come back, so every
// instance, this one included, refreshes its clients exactly once.
func (n *Notifier) Run(ctx context.Context, hub Broadcaster) {
	if n.bus != nil {
		go n.bus.Subscribe(ctx, func(change RoomListChange) {
			n.fanOut(hub, change.Timestamp)
		})
	}

	for {
		select {
		case <-ctx.Done():
			return
		case j := <-n.jobs:
			n.process(ctx, hub, j)
		}
	}
}

func (n *Notifier) process(ctx context.Context, hub Broadcaster, j job) {
	switch j.kind {
	case jobDeactivateMeeting:
		n.deactivateMeeting(ctx, j.roomId)
	case jobRoomListChanged:
		n.roomListChanged(ctx, hub, j.at)
	}
}

func (n *Notifier) deactivateMeeting(ctx context.Context, roomId string) {
	if n.store == nil {
		return
	}

	storeCtx, cancel := context.WithTimeout(ctx, n.storeTimeout)
	defer cancel()

	if err := n.store.MarkInactive(storeCtx, roomId); err != nil {
		n.logger.Error("failed to deactivate meeting",
			zap.String("roomId", roomId),
			zap.Error(err))
		return
	}

	n.logger.Info("meeting deactivated", zap.String("roomId", roomId))
}

func (n *Notifier) roomListChanged(ctx context.Context, hub Broadcaster, at time.Time) {
	if n.bus == nil {
		n.fanOut(hub, at)
		return
	}

	err := n.bus.Publish(ctx, RoomListChange{Origin: n.origin, Timestamp: at})
	if err != nil {
		n.logger.Error("failed to publish room list change, notifying local clients only", zap.Error(err))
		n.fanOut(hub, at)
	}
}

func (n *Notifier) fanOut(hub Broadcaster, at time.Time) {
	delivered := hub.BroadcastAll(broadcaster.EventRoomListUpdated, broadcaster.RoomListUpdated{
		Timestamp: at.UTC().Format(time.RFC3339Nano),
	})

	n.logger.Debug("room list update sent", zap.Int("connections", delivered))
}
