package broadcaster

import (
	"maps"
	"slices"
)

// RoomIndex maps room ids to their member connection ids. A room has an
// entry if and only if it has at least one member.
type RoomIndex struct {
	rooms map[string]map[string]struct{}
}

func NewRoomIndex() *RoomIndex {
	return &RoomIndex{
		rooms: make(map[string]map[string]struct{}),
	}
}

// Join adds the connection and reports whether the room was created by it.
func (x *RoomIndex) Join(roomId string, connectionId string) bool {
	members, ok := x.rooms[roomId]
	if !ok {
		members = make(map[string]struct{})
		x.rooms[roomId] = members
	}

	members[connectionId] = struct{}{}

	return !ok
}

// Leave removes the connection and reports whether the room became empty.
// Empty rooms are deleted immediately.
func (x *RoomIndex) Leave(roomId string, connectionId string) bool {
	members, ok := x.rooms[roomId]
	if !ok {
		return false
	}

	if _, ok := members[connectionId]; !ok {
		return false
	}

	delete(members, connectionId)
	if len(members) > 0 {
		return false
	}

	delete(x.rooms, roomId)

	return true
}

func (x *RoomIndex) Contains(roomId string, connectionId string) bool {
	_, ok := x.rooms[roomId][connectionId]

	return ok
}

// Members returns a sorted snapshot. Unknown rooms yield an empty slice.
func (x *RoomIndex) Members(roomId string) []string {
	members, ok := x.rooms[roomId]
	if !ok {
		return []string{}
	}

	return slices.Sorted(maps.Keys(members))
}

func (x *RoomIndex) Exists(roomId string) bool {
	_, ok := x.rooms[roomId]

	return ok
}

func (x *RoomIndex) RoomCount() int {
	return len(x.rooms)
}

func (x *RoomIndex) MemberCount(roomId string) int {
	return len(x.rooms[roomId])
}

func (x *RoomIndex) Counts() map[string]int {
	counts := make(map[string]int, len(x.rooms))
	for roomId, members := range x.rooms {
		counts[roomId] = len(members)
	}

	return counts
}

func (x *RoomIndex) RoomIds() []string {
	return slices.Sorted(maps.Keys(x.rooms))
}
