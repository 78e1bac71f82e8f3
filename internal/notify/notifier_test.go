package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goevery/signaling/internal/broadcaster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, call)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.calls...)
}

type fakeHub struct {
	*recorder
	payloads chan any
}

func (h *fakeHub) BroadcastAll(event string, payload any) int {
	h.record("broadcast:" + event)
	h.payloads <- payload

	return 1
}

type fakeStore struct {
	*recorder
	err error
}

func (s *fakeStore) Setup(ctx context.Context) error {
	return nil
}

func (s *fakeStore) MarkInactive(ctx context.Context, roomId string) error {
	s.record("inactive:" + roomId)

	return s.err
}

type fakeBus struct {
	*recorder
	mu          sync.Mutex
	subscribers []func(RoomListChange)
	err         error
}

func (b *fakeBus) Publish(ctx context.Context, change RoomListChange) error {
	b.record("publish:" + change.Origin)
	if b.err != nil {
		return b.err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, fn := range b.subscribers {
		fn(change)
	}

	return nil
}

func (b *fakeBus) Subscribe(ctx context.Context, fn func(RoomListChange)) {
	b.mu.Lock()
	b.subscribers = append(b.subscribers, fn)
	b.mu.Unlock()

	<-ctx.Done()
}

func (b *fakeBus) subscribed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.subscribers) > 0
}

func run(t *testing.T, notifier *Notifier, hub Broadcaster) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		notifier.Run(ctx, hub)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestNotifier(t *testing.T) {
	t.Run("deactivates meeting before room list fan-out", func(t *testing.T) {
		calls := &recorder{}
		hub := &fakeHub{recorder: calls, payloads: make(chan any, 1)}
		notifier := NewNotifier(zap.NewNop(), WithMeetingStore(&fakeStore{recorder: calls}))

		notifier.RoomBecameEmpty("42")
		notifier.RoomListChanged()
		run(t, notifier, hub)

		select {
		case payload := <-hub.payloads:
			update, ok := payload.(broadcaster.RoomListUpdated)
			require.True(t, ok)
			_, err := time.Parse(time.RFC3339Nano, update.Timestamp)
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("room list update was not sent")
		}

		assert.Equal(t, []string{"inactive:42", "broadcast:room_list_updated"}, calls.snapshot())
	})

	t.Run("store failure still fans out", func(t *testing.T) {
		calls := &recorder{}
		hub := &fakeHub{recorder: calls, payloads: make(chan any, 1)}
		store := &fakeStore{recorder: calls, err: assert.AnError}
		notifier := NewNotifier(zap.NewNop(), WithMeetingStore(store))

		notifier.RoomBecameEmpty("42")
		notifier.RoomListChanged()
		run(t, notifier, hub)

		select {
		case <-hub.payloads:
		case <-time.After(2 * time.Second):
			t.Fatal("room list update was not sent")
		}
	})

	t.Run("without store only fans out", func(t *testing.T) {
		calls := &recorder{}
		hub := &fakeHub{recorder: calls, payloads: make(chan any, 1)}
		notifier := NewNotifier(zap.NewNop())

		notifier.RoomBecameEmpty("42")
		notifier.RoomListChanged()
		run(t, notifier, hub)

		<-hub.payloads
		assert.Equal(t, []string{"broadcast:room_list_updated"}, calls.snapshot())
	})

	t.Run("bus round trip fans out once", func(t *testing.T) {
		calls := &recorder{}
		hub := &fakeHub{recorder: calls, payloads: make(chan any, 2)}
		bus := &fakeBus{recorder: calls}
		notifier := NewNotifier(zap.NewNop(), WithBus(bus, "instance-1"))

		run(t, notifier, hub)
		require.Eventually(t, bus.subscribed, 2*time.Second, 5*time.Millisecond)

		notifier.RoomListChanged()

		select {
		case <-hub.payloads:
		case <-time.After(2 * time.Second):
			t.Fatal("room list update was not sent")
		}
		assert.Equal(t, []string{"publish:instance-1", "broadcast:room_list_updated"}, calls.snapshot())
	})

	t.Run("bus failure falls back to local fan-out", func(t *testing.T) {
		calls := &recorder{}
		hub := &fakeHub{recorder: calls, payloads: make(chan any, 1)}
		bus := &fakeBus{recorder: calls, err: assert.AnError}
		notifier := NewNotifier(zap.NewNop(), WithBus(bus, "instance-1"))

		notifier.RoomListChanged()
		run(t, notifier, hub)

		<-hub.payloads
		assert.Equal(t, []string{"publish:instance-1", "broadcast:room_list_updated"}, calls.snapshot())
	})

	t.Run("full queue drops without blocking", func(t *testing.T) {
		notifier := NewNotifier(zap.NewNop(), WithQueueSize(1))

		assert.NotPanics(t, func() {
			notifier.RoomListChanged()
			notifier.RoomListChanged()
			notifier.RoomBecameEmpty("42")
		})
		assert.Len(t, notifier.jobs, 1)
	})
}

func TestNotifier_WithDispatcher(t *testing.T) {
	logger := zap.NewNop()
	notifier := NewNotifier(logger)
	dispatcher := broadcaster.NewDispatcher(logger, notifier)
	run(t, notifier, dispatcher)

	observer := broadcaster.NewConnection("observer", 8)
	solo := broadcaster.NewConnection("solo", 8)
	require.NoError(t, dispatcher.Connect(observer))
	require.NoError(t, dispatcher.Connect(solo))
	require.NoError(t, dispatcher.JoinRoom("solo", "R1", nil))

	dispatcher.Disconnect("solo")

	select {
	case message := <-observer.Send:
		assert.Equal(t, broadcaster.EventRoomListUpdated, message.Event)
	case <-time.After(2 * time.Second):
		t.Fatal("observer did not receive room_list_updated")
	}
}
