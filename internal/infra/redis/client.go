package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

// Client wraps Redis operations for shared dispatcher state: the
// per-wallet prompt-shown set, the resolved-alias cache, and lifecycle
// event publishing.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client, retrying the initial ping with
// backoff so a slow-starting Redis does not fail service boot.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	backoff := retry.WithMaxDuration(30*time.Second, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return retry.RetryableError(rdb.Ping(pingCtx).Err())
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Key helpers
func promptShownKey(kind string) string {
	return fmt.Sprintf("prompts_shown:%s", kind)
}

func aliasKey(name, chainCode, currencyCode string) string {
	return fmt.Sprintf("alias:%s:%s:%s", name, chainCode, currencyCode)
}

// MarkPromptShown records that a wallet was shown a prompt of the given
// kind. It returns true when this is the first time.
func (c *Client) MarkPromptShown(ctx context.Context, kind, walletID string) (bool, error) {
	added, err := c.rdb.SAdd(ctx, promptShownKey(kind), walletID).Result()
	if err != nil {
		return false, fmt.Errorf("sadd failed: %w", err)
	}
	return added == 1, nil
}

// ClearPromptsShown resets the prompt-shown set for a kind.
func (c *Client) ClearPromptsShown(ctx context.Context, kind string) error {
	if err := c.rdb.Del(ctx, promptShownKey(kind)).Err(); err != nil {
		return fmt.Errorf("del failed: %w", err)
	}
	return nil
}

// GetAlias returns a cached name-registry resolution, if present.
func (c *Client) GetAlias(ctx context.Context, name, chainCode, currencyCode string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, aliasKey(name, chainCode, currencyCode)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get failed: %w", err)
	}
	return val, true, nil
}

// SetAlias caches a name-registry resolution with a TTL.
func (c *Client) SetAlias(ctx context.Context, name, chainCode, currencyCode, address string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, aliasKey(name, chainCode, currencyCode), address, ttl).Err(); err != nil {
		return fmt.Errorf("set failed: %w", err)
	}
	return nil
}

// Publish sends a payload on a pub/sub channel.
func (c *Client) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := c.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}
	return nil
}

// Health checks connectivity.
func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
