package persistence

import (
	"context"
)

const (
	MeetingStatusActive   = "active"
	MeetingStatusInactive = "inactive"
)

// MeetingStore persists meeting state owned by the application layer. The
// relay only ever deactivates a meeting once its room has emptied.
type MeetingStore interface {
	Setup(ctx context.Context) error
	MarkInactive(ctx context.Context, roomId string) error
}
