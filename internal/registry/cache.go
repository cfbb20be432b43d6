package registry

import (
	"context"
	"log/slog"
	"time"

	redisclient "github.com/orbitwallet/linkdispatch/internal/infra/redis"
)

// CachedResolver fronts another resolver with the Redis alias cache.
// Only successful resolutions are cached; ErrInvalidName is cheap to
// re-derive and callers expect it to reflect current registry state.
type CachedResolver struct {
	next  Resolver
	cache *redisclient.Client
	ttl   time.Duration
	log   *slog.Logger
}

func NewCachedResolver(next Resolver, cache *redisclient.Client, ttl time.Duration, log *slog.Logger) *CachedResolver {
	if ttl == 0 {
		ttl = 10 * time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &CachedResolver{next: next, cache: cache, ttl: ttl, log: log}
}

func (r *CachedResolver) ResolvePublicAddress(ctx context.Context, name, chainCode, currencyCode string) (string, error) {
	if addr, ok, err := r.cache.GetAlias(ctx, name, chainCode, currencyCode); err != nil {
		r.log.Warn("alias cache read failed", "error", err)
	} else if ok {
		return addr, nil
	}

	addr, err := r.next.ResolvePublicAddress(ctx, name, chainCode, currencyCode)
	if err != nil {
		return "", err
	}
	if err := r.cache.SetAlias(ctx, name, chainCode, currencyCode, addr, r.ttl); err != nil {
		r.log.Warn("alias cache write failed", "error", err)
	}
	return addr, nil
}
