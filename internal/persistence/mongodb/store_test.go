package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/goevery/signaling/internal/ierr"
	"github.com/goevery/signaling/internal/persistence"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func newTestStore(t *testing.T) *MeetingStore {
	t.Helper()

	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	client, err := Connect(uri)
	require.NoError(t, err)

	database := "signaling_test_" + gonanoid.MustGenerate("abcdefghijklmnopqrstuvwxyz", 8)
	store := NewMeetingStore(client, database)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = client.Database(database).Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, store.Setup(ctx))

	return store
}

func TestMeetingStore_MarkInactive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.collection.InsertOne(ctx, bson.D{
		{Key: "roomId", Value: "42"},
		{Key: "status", Value: persistence.MeetingStatusActive},
	})
	require.NoError(t, err)

	t.Run("existing meeting", func(t *testing.T) {
		require.NoError(t, store.MarkInactive(ctx, "42"))

		meeting, err := store.Get(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, persistence.MeetingStatusInactive, meeting.Status)
		assert.False(t, meeting.UpdateTime.IsZero())
	})

	t.Run("unknown meeting", func(t *testing.T) {
		err := store.MarkInactive(ctx, "missing")

		assert.True(t, ierr.Is(err, ierr.ErrorCodeNotFound))
	})

	t.Run("get unknown meeting", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")

		assert.True(t, ierr.Is(err, ierr.ErrorCodeNotFound))
	})
}
