package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/orbitwallet/linkdispatch/internal/core/domain"
	redisclient "github.com/orbitwallet/linkdispatch/internal/infra/redis"
)

// RedisEmitter publishes lifecycle events on a Redis pub/sub channel so
// other app instances can mirror scan state.
type RedisEmitter struct {
	client  *redisclient.Client
	channel string
}

func NewRedisEmitter(client *redisclient.Client, channel string) *RedisEmitter {
	if channel == "" {
		channel = "linkdispatch:events"
	}
	return &RedisEmitter{client: client, channel: channel}
}

func (e *RedisEmitter) Emit(ctx context.Context, event *domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return e.client.Publish(ctx, e.channel, payload)
}

// Close is a no-op; the underlying client is shared and closed by its
// owner.
func (e *RedisEmitter) Close() error { return nil }
