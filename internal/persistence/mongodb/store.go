package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/goevery/signaling/internal/ierr"
	"github.com/goevery/signaling/internal/persistence"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type Meeting struct {
	Id         bson.ObjectID `bson:"_id,omitempty"`
	RoomId     string        `bson:"roomId"`
	Status     string        `bson:"status"`
	UpdateTime time.Time     `bson:"updateTime"`
}

type MeetingStore struct {
	collection *mongo.Collection
}

func Connect(uri string) (*mongo.Client, error) {
	return mongo.Connect(options.Client().ApplyURI(uri))
}

func NewMeetingStore(client *mongo.Client, database string) *MeetingStore {
	collection := client.Database(database).Collection("meetings")

	return &MeetingStore{
		collection,
	}
}

func (s *MeetingStore) Setup(ctx context.Context) error {
	roomIndexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "roomId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	_, err := s.collection.Indexes().CreateOne(ctx, roomIndexModel)

	return err
}

func (s *MeetingStore) MarkInactive(ctx context.Context, roomId string) error {
	result, err := s.collection.UpdateOne(ctx,
		bson.D{{Key: "roomId", Value: roomId}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "status", Value: persistence.MeetingStatusInactive},
			{Key: "updateTime", Value: time.Now()},
		}}},
	)
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return ierr.New(ierr.ErrorCodeNotFound, errors.New("meeting not found for room "+roomId))
	}

	return nil
}

// Get is used by operators and tests to inspect a meeting.
func (s *MeetingStore) Get(ctx context.Context, roomId string) (Meeting, error) {
	var meeting Meeting

	err := s.collection.FindOne(ctx, bson.D{{Key: "roomId", Value: roomId}}).Decode(&meeting)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Meeting{}, ierr.New(ierr.ErrorCodeNotFound, errors.New("meeting not found for room "+roomId))
	}

	return meeting, err
}
