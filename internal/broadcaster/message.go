package broadcaster

// Outbound event names.
const (
	EventConnected           = "connected"
	EventUserJoined          = "user_joined"
	EventCurrentParticipants = "current_participants"
	EventUserLeft            = "user_left"
	EventRoomListUpdated     = "room_list_updated"
)

// Message is one outbound event queued on a connection. Payload is encoded
// by the transport and is never inspected by the relay.
type Message struct {
	Event   string
	Payload any
}

type Participant struct {
	UserId   string   `json:"userId"`
	UserInfo UserInfo `json:"userInfo"`
}

type UserLeft struct {
	UserId string `json:"userId"`
}

type Connected struct {
	ConnectionId string `json:"connectionId"`
}

type RoomListUpdated struct {
	Timestamp string `json:"timestamp"`
}
