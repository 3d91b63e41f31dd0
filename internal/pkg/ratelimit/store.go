package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// StoreLimiter counts hits in a limiter store. The memory store keeps
// counters in process and evicts expired ones on its own; the redis store
// shares them across instances.
type StoreLimiter struct {
	store limiter.Store
}

// NewMemoryLimiter creates an in-process limiter
func NewMemoryLimiter() *StoreLimiter {
	return &StoreLimiter{store: memory.NewStore()}
}

// NewRedisLimiter creates a Redis-backed limiter. Keys are namespaced with prefix.
func NewRedisLimiter(client sredis.Client, prefix string) (*StoreLimiter, error) {
	if prefix == "" {
		prefix = "ratelimit"
	}

	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: prefix})
	if err != nil {
		return nil, fmt.Errorf("ratelimit: redis store: %w", err)
	}
	return &StoreLimiter{store: store}, nil
}

// Admit counts the hit for key and compares it against spec.Max
func (l *StoreLimiter) Admit(ctx context.Context, key string, spec Spec) (Decision, error) {
	lctx, err := limiter.New(l.store, spec.rate()).Get(ctx, key)
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: admit: %w", err)
	}
	return decide(lctx, time.Now()), nil
}
