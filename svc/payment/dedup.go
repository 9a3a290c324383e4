package payment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// dedupTTL bounds how long a charge ID is remembered. Providers stop
// redelivering webhooks well before this window closes.
const dedupTTL = 72 * time.Hour

// Deduper remembers charge IDs that have already been processed.
type Deduper interface {
	// MarkProcessed records the charge ID and reports whether this call
	// was the first to see it.
	MarkProcessed(ctx context.Context, chargeID string) (bool, error)
}

type redisDeduper struct {
	client *redis.Client
}

// NewRedisDeduper creates a Deduper backed by Redis SET NX with expiry.
func NewRedisDeduper(client *redis.Client) Deduper {
	if client == nil {
		panic("payment: redis client is required")
	}
	return &redisDeduper{client: client}
}

func (d *redisDeduper) MarkProcessed(ctx context.Context, chargeID string) (bool, error) {
	first, err := d.client.SetNX(ctx, "payment:charge:"+chargeID, 1, dedupTTL).Result()
	if err != nil {
		return false, errors.Join(ErrPersistence, err)
	}
	return first, nil
}

// MemoryDeduper is an in-memory Deduper for tests and single-process runs.
type MemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]struct{}

	// FailWith makes every call return this error when set.
	FailWith error
}

func NewMemoryDeduper() *MemoryDeduper {
	return &MemoryDeduper{seen: make(map[string]struct{})}
}

func (d *MemoryDeduper) MarkProcessed(_ context.Context, chargeID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailWith != nil {
		return false, d.FailWith
	}
	if _, ok := d.seen[chargeID]; ok {
		return false, nil
	}
	d.seen[chargeID] = struct{}{}
	return true, nil
}
