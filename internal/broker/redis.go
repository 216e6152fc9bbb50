package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBus fans ticket messages out over a redis pub/sub channel. Delivery
// is at most once; subscribers that are down miss messages.
type RedisBus struct {
	rdb     *redis.Client
	channel string
}

func NewRedisBus(rdb *redis.Client, channel string) *RedisBus {
	return &RedisBus{
		rdb:     rdb,
		channel: channel,
	}
}

func (b *RedisBus) Publish(ctx context.Context, msg TicketMessage) error {
	const op = "broker.RedisBus.Publish"

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, handler func(ctx context.Context, msg TicketMessage)) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg TicketMessage
			if err := json.Unmarshal([]byte(m.Payload), &msg); err == nil && msg.Type != "" {
				handler(ctx, msg)
			}
		}
	}
}
