package broadcaster

import (
	"errors"
	"maps"
	"slices"

	"github.com/goevery/signaling/internal/ierr"
)

type connectionEntry struct {
	connection *Connection
	rooms      map[string]struct{}
	userInfo   UserInfo
}

// ConnectionRegistry owns per-connection state: the joined rooms and the
// user info blob. It is not safe for concurrent use; the Dispatcher
// serializes every access.
type ConnectionRegistry struct {
	connections map[string]*connectionEntry
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		connections: make(map[string]*connectionEntry),
	}
}

func (r *ConnectionRegistry) OnConnect(connection *Connection) error {
	if _, ok := r.connections[connection.Id]; ok {
		return ierr.New(ierr.ErrorCodeDuplicateConnection,
			errors.New("connection "+connection.Id+" is already registered"))
	}

	r.connections[connection.Id] = &connectionEntry{
		connection: connection,
		rooms:      make(map[string]struct{}),
		userInfo:   UserInfo{},
	}

	return nil
}

// OnDisconnect removes the entry and returns it together with the rooms it
// had joined. Unknown ids return nil and no rooms.
func (r *ConnectionRegistry) OnDisconnect(connectionId string) (*Connection, []string) {
	entry, ok := r.connections[connectionId]
	if !ok {
		return nil, nil
	}

	rooms := slices.Sorted(maps.Keys(entry.rooms))
	delete(r.connections, connectionId)

	return entry.connection, rooms
}

func (r *ConnectionRegistry) SetUserInfo(connectionId string, info UserInfo) error {
	entry, ok := r.connections[connectionId]
	if !ok {
		return ierr.New(ierr.ErrorCodeUnknownConnection,
			errors.New("connection "+connectionId+" is not registered"))
	}

	if info == nil {
		info = UserInfo{}
	}
	entry.userInfo = info

	return nil
}

func (r *ConnectionRegistry) UserInfo(connectionId string) (UserInfo, bool) {
	entry, ok := r.connections[connectionId]
	if !ok {
		return nil, false
	}

	return entry.userInfo.Clone(), true
}

func (r *ConnectionRegistry) IsLive(connectionId string) bool {
	_, ok := r.connections[connectionId]

	return ok
}

func (r *ConnectionRegistry) Lookup(connectionId string) (*Connection, bool) {
	entry, ok := r.connections[connectionId]
	if !ok {
		return nil, false
	}

	return entry.connection, true
}

func (r *ConnectionRegistry) AddRoom(connectionId string, roomId string) bool {
	entry, ok := r.connections[connectionId]
	if !ok {
		return false
	}

	entry.rooms[roomId] = struct{}{}

	return true
}

func (r *ConnectionRegistry) RemoveRoom(connectionId string, roomId string) bool {
	entry, ok := r.connections[connectionId]
	if !ok {
		return false
	}

	if _, ok := entry.rooms[roomId]; !ok {
		return false
	}
	delete(entry.rooms, roomId)

	return true
}

func (r *ConnectionRegistry) HasRoom(connectionId string, roomId string) bool {
	entry, ok := r.connections[connectionId]
	if !ok {
		return false
	}

	_, ok = entry.rooms[roomId]

	return ok
}

func (r *ConnectionRegistry) Rooms(connectionId string) []string {
	entry, ok := r.connections[connectionId]
	if !ok {
		return nil
	}

	return slices.Sorted(maps.Keys(entry.rooms))
}

func (r *ConnectionRegistry) Ids() []string {
	return slices.Sorted(maps.Keys(r.connections))
}

func (r *ConnectionRegistry) Len() int {
	return len(r.connections)
}
