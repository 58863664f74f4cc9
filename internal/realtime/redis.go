package realtime

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"uniattend/internal/metrics"
)

// RedisHub fans events out through Redis pub/sub so every API instance sees
// writes made by the others.
type RedisHub struct {
	client *redis.Client
	prefix string
}

// NewRedisHub builds a hub publishing on prefixed channels.
func NewRedisHub(client *redis.Client, prefix string) *RedisHub {
	if prefix == "" {
		prefix = "uniattend:rt:"
	}
	return &RedisHub{client: client, prefix: prefix}
}

// Publish sends the event to the topic's channel.
func (h *RedisHub) Publish(ctx context.Context, topic, kind string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	body, err := json.Marshal(Event{Topic: topic, Kind: kind, Payload: raw})
	if err != nil {
		return err
	}
	return h.client.Publish(ctx, h.prefix+topic, body).Err()
}

// Subscribe opens a Redis subscription on the topic. The pump goroutine exits
// when the subscription is closed or the context is cancelled.
func (h *RedisHub) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	ps := h.client.Subscribe(ctx, h.prefix+topic)
	// Force the SUBSCRIBE round-trip so a dead Redis fails here, not later.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}
	metrics.Subscribers.Inc()

	out := make(chan Event, bufferSize)
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			var evt Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				continue
			}
			select {
			case out <- evt:
			case <-ctx.Done():
				return
			}
		}
	}()

	return &Subscription{
		C:     out,
		close: func() { _ = ps.Close() },
	}, nil
}
