package broadcaster

import (
	"github.com/goevery/signaling/internal/metrics"
	"go.uber.org/zap"
)

type liveConnections interface {
	Lookup(connectionId string) (*Connection, bool)
	Ids() []string
}

type roomMembers interface {
	Members(roomId string) []string
}

// Relay forwards opaque payloads to connection send buffers. Sends never
// block: a full buffer drops the message and marks the connection stale
// so the Dispatcher can evict it once the current event is done.
type Relay struct {
	logger  *zap.Logger
	metrics *metrics.Metrics

	connections liveConnections
	rooms       roomMembers

	stale map[string]struct{}
}

func NewRelay(
	logger *zap.Logger,
	metrics *metrics.Metrics,
	connections liveConnections,
	rooms roomMembers,
) *Relay {
	return &Relay{
		logger:      logger,
		metrics:     metrics,
		connections: connections,
		rooms:       rooms,
		stale:       make(map[string]struct{}),
	}
}

// Unicast delivers iff the target is live. Unknown targets are dropped
// without error.
func (r *Relay) Unicast(targetId string, message Message) bool {
	connection, ok := r.connections.Lookup(targetId)
	if !ok {
		r.logger.Debug("dropping message for unknown connection",
			zap.String("target", targetId),
			zap.String("event", message.Event))
		r.metrics.MessageDropped(metrics.DropReasonUnknownTarget)

		return false
	}

	return r.send(connection, message)
}

// BroadcastToRoom delivers to every member except excludeId and returns the
// number of members the message was queued for.
func (r *Relay) BroadcastToRoom(roomId string, message Message, excludeId string) int {
	delivered := 0

	for _, memberId := range r.rooms.Members(roomId) {
		if memberId == excludeId {
			continue
		}

		connection, ok := r.connections.Lookup(memberId)
		if !ok {
			continue
		}

		if r.send(connection, message) {
			delivered++
		}
	}

	return delivered
}

func (r *Relay) BroadcastAll(message Message) int {
	delivered := 0

	for _, connectionId := range r.connections.Ids() {
		connection, ok := r.connections.Lookup(connectionId)
		if !ok {
			continue
		}

		if r.send(connection, message) {
			delivered++
		}
	}

	return delivered
}

// TakeStale returns the connections whose buffers overflowed since the last
// call and clears the set.
func (r *Relay) TakeStale() []string {
	if len(r.stale) == 0 {
		return nil
	}

	connectionIds := make([]string, 0, len(r.stale))
	for connectionId := range r.stale {
		connectionIds = append(connectionIds, connectionId)
	}
	clear(r.stale)

	return connectionIds
}

func (r *Relay) send(connection *Connection, message Message) bool {
	if _, ok := r.stale[connection.Id]; ok {
		r.metrics.MessageDropped(metrics.DropReasonBackpressure)

		return false
	}

	select {
	case connection.Send <- message:
		r.metrics.MessageRelayed(message.Event)

		return true
	default:
		r.logger.Warn("connection send channel is full, closing connection",
			zap.String("connectionId", connection.Id),
			zap.String("event", message.Event))
		r.metrics.MessageDropped(metrics.DropReasonBackpressure)
		r.stale[connection.Id] = struct{}{}

		return false
	}
}
