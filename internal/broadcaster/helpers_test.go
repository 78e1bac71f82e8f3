package broadcaster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDispatcher(t *testing.T, hooks Hooks) *Dispatcher {
	t.Helper()

	return NewDispatcher(zap.NewNop(), hooks)
}

func connect(t *testing.T, d *Dispatcher, id string) *Connection {
	t.Helper()

	connection := NewConnection(id, 16)
	require.NoError(t, d.Connect(connection))

	return connection
}

func join(t *testing.T, d *Dispatcher, connection *Connection, roomId string, username string) {
	t.Helper()

	require.NoError(t, d.JoinRoom(connection.Id, roomId, UserInfo{"username": username}))
}

// drain returns every message queued on the connection without blocking.
func drain(connection *Connection) []Message {
	var messages []Message

	for {
		select {
		case message, ok := <-connection.Send:
			if !ok {
				return messages
			}
			messages = append(messages, message)
		default:
			return messages
		}
	}
}

func isClosed(connection *Connection) bool {
	for {
		select {
		case _, ok := <-connection.Send:
			if !ok {
				return true
			}
		default:
			return false
		}
	}
}

func eventsOf(messages []Message, event string) []Message {
	var matched []Message
	for _, message := range messages {
		if message.Event == event {
			matched = append(matched, message)
		}
	}

	return matched
}

// assertConsistent checks r ∈ rooms(c) ⇔ c ∈ members(r) and that no empty
// room entry lingers.
func assertConsistent(t *testing.T, d *Dispatcher) {
	t.Helper()

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, connectionId := range d.registry.Ids() {
		for _, roomId := range d.registry.Rooms(connectionId) {
			assert.True(t, d.index.Contains(roomId, connectionId),
				"connection %s lists room %s but is not a member", connectionId, roomId)
		}
	}

	for _, roomId := range d.index.RoomIds() {
		members := d.index.Members(roomId)
		assert.NotEmpty(t, members, "room %s has an empty entry", roomId)

		for _, memberId := range members {
			assert.True(t, d.registry.HasRoom(memberId, roomId),
				"room %s lists member %s which does not list the room", roomId, memberId)
		}
	}
}

type recordingHooks struct {
	calls []string
}

func (h *recordingHooks) RoomBecameEmpty(roomId string) {
	h.calls = append(h.calls, "empty:"+roomId)
}

func (h *recordingHooks) RoomListChanged() {
	h.calls = append(h.calls, "list")
}
