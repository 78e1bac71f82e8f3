package broadcaster

import (
	"errors"

	"github.com/goevery/signaling/internal/ierr"
	"go.uber.org/zap"
)

// Hooks receives room lifecycle notifications. Both methods are called while
// the Dispatcher holds its lock and must return without blocking.
type Hooks interface {
	// RoomBecameEmpty fires exactly once when the last member of a room leaves.
	RoomBecameEmpty(roomId string)

	// RoomListChanged fires after RoomBecameEmpty and on external room creation.
	RoomListChanged()
}

type NopHooks struct{}

func (NopHooks) RoomBecameEmpty(string) {}

func (NopHooks) RoomListChanged() {}

// The sequences below must be called with d.mu held.

func (d *Dispatcher) joinLocked(connectionId string, roomId string, info UserInfo) error {
	if !d.registry.IsLive(connectionId) {
		return ierr.New(ierr.ErrorCodeUnknownConnection,
			errors.New("connection "+connectionId+" is not registered"))
	}

	if d.registry.HasRoom(connectionId, roomId) {
		if err := d.registry.SetUserInfo(connectionId, info); err != nil {
			return err
		}

		d.logger.Debug("connection rejoined room",
			zap.String("connectionId", connectionId),
			zap.String("roomId", roomId))
		d.sendRosterLocked(connectionId, roomId)

		return nil
	}

	created := d.index.Join(roomId, connectionId)
	d.registry.AddRoom(connectionId, roomId)
	if err := d.registry.SetUserInfo(connectionId, info); err != nil {
		return err
	}

	if created {
		d.metrics.RoomOpened()
		d.logger.Info("room created", zap.String("roomId", roomId))
	}

	d.logger.Info("connection joined room",
		zap.String("connectionId", connectionId),
		zap.String("roomId", roomId),
		zap.Int("members", d.index.MemberCount(roomId)))

	joined := Participant{UserId: connectionId, UserInfo: info.Clone()}
	d.relay.BroadcastToRoom(roomId, Message{Event: EventUserJoined, Payload: joined}, connectionId)
	d.sendRosterLocked(connectionId, roomId)

	return nil
}

// sendRosterLocked replies to the joining connection with every other
// member that is still registered.
func (d *Dispatcher) sendRosterLocked(connectionId string, roomId string) {
	roster := make([]Participant, 0, d.index.MemberCount(roomId))

	for _, memberId := range d.index.Members(roomId) {
		if memberId == connectionId {
			continue
		}

		info, ok := d.registry.UserInfo(memberId)
		if !ok {
			continue
		}

		roster = append(roster, Participant{UserId: memberId, UserInfo: info})
	}

	d.relay.Unicast(connectionId, Message{Event: EventCurrentParticipants, Payload: roster})
}

// leaveLocked removes one (connection, room) pair. It is a no-op when the
// connection is not a member.
func (d *Dispatcher) leaveLocked(connectionId string, roomId string) bool {
	if !d.index.Contains(roomId, connectionId) {
		if d.registry.HasRoom(connectionId, roomId) {
			panic("inconsistent state: room " + roomId + " missing member " + connectionId)
		}

		return false
	}

	emptied := d.index.Leave(roomId, connectionId)
	d.registry.RemoveRoom(connectionId, roomId)

	d.logger.Info("connection left room",
		zap.String("connectionId", connectionId),
		zap.String("roomId", roomId),
		zap.Int("members", d.index.MemberCount(roomId)))

	d.relay.BroadcastToRoom(roomId, Message{Event: EventUserLeft, Payload: UserLeft{UserId: connectionId}}, "")

	if emptied {
		d.metrics.RoomClosed()
		d.logger.Info("room became empty", zap.String("roomId", roomId))

		d.hooks.RoomBecameEmpty(roomId)
		d.hooks.RoomListChanged()
	}

	return true
}

// disconnectLocked destroys the registry entry first and then leaves every
// room on the connection's behalf.
func (d *Dispatcher) disconnectLocked(connectionId string) bool {
	connection, rooms := d.registry.OnDisconnect(connectionId)
	if connection == nil {
		return false
	}

	for _, roomId := range rooms {
		if !d.index.Contains(roomId, connectionId) {
			panic("inconsistent state: room " + roomId + " missing member " + connectionId)
		}

		d.leaveLocked(connectionId, roomId)
	}

	close(connection.Send)
	d.metrics.ConnectionClosed()

	d.logger.Info("connection disconnected",
		zap.String("connectionId", connectionId),
		zap.Int("rooms", len(rooms)))

	return true
}

// evictStaleLocked disconnects connections whose buffers overflowed. Evicting
// one may overflow another through user_left, hence the loop.
func (d *Dispatcher) evictStaleLocked() {
	for {
		stale := d.relay.TakeStale()
		if len(stale) == 0 {
			return
		}

		for _, connectionId := range stale {
			if d.disconnectLocked(connectionId) {
				d.logger.Warn("evicted slow connection", zap.String("connectionId", connectionId))
			}
		}
	}
}
