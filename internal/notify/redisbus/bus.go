package redisbus

import (
	"context"
	"encoding/json"

	"github.com/goevery/signaling/internal/notify"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultChannel = "signaling:room-list"

// Bus carries room list changes between signaling instances over redis
// pub/sub.
type Bus struct {
	logger  *zap.Logger
	rdb     *redis.Client
	channel string
}

var _ notify.Bus = (*Bus)(nil)

// New connects to redis and verifies connectivity.
func New(ctx context.Context, logger *zap.Logger, addr string, channel string) (*Bus, error) {
	if channel == "" {
		channel = DefaultChannel
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &Bus{
		logger:  logger,
		rdb:     rdb,
		channel: channel,
	}, nil
}

func (b *Bus) Publish(ctx context.Context, change notify.RoomListChange) error {
	raw, err := json.Marshal(change)
	if err != nil {
		return err
	}

	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

// Subscribe blocks until ctx is cancelled, invoking fn for every change.
func (b *Bus) Subscribe(ctx context.Context, fn func(notify.RoomListChange)) {
	pubsub := b.rdb.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var change notify.RoomListChange
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				b.logger.Warn("ignoring malformed room list change",
					zap.String("channel", msg.Channel),
					zap.Error(err))
				continue
			}

			fn(change)
		}
	}
}

func (b *Bus) Close() error {
	return b.rdb.Close()
}
