package pubsub

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/homeguess/internal/model"
)

const redisChannelPrefix = "homeguess:updates:"

// Redis fans events out over Redis pub/sub, one channel per session
type Redis struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedis creates a bus on an existing client. The client is not closed by the bus.
func NewRedis(client *redis.Client, logger *slog.Logger) *Redis {
	return &Redis{
		client: client,
		logger: logger.With(slog.String("component", "pubsub.redis")),
	}
}

// Ensure Redis implements the interface
var _ Bus = (*Redis)(nil)

func redisChannel(id model.SessionID) string {
	return redisChannelPrefix + string(id)
}

func (b *Redis) Publish(ctx context.Context, event Event) error {
	data, err := encodeEvent(event)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, redisChannel(event.SessionID), data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", event.SessionID, err)
	}
	return nil
}

func (b *Redis) Subscribe(ctx context.Context, handler Handler) error {
	sub := b.client.PSubscribe(ctx, redisChannelPrefix+"*")
	defer sub.Close()

	// Wait for confirmation so publishes after Subscribe returns are not missed
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			event, err := decodeEvent([]byte(msg.Payload))
			if err != nil {
				b.logger.Warn("dropping malformed event",
					slog.String("channel", msg.Channel),
					slog.String("error", err.Error()),
				)
				continue
			}
			if !strings.HasSuffix(msg.Channel, string(event.SessionID)) {
				b.logger.Warn("event on mismatched channel", slog.String("channel", msg.Channel))
				continue
			}
			handler(event)
		}
	}
}

func (b *Redis) Close() error {
	return nil
}
