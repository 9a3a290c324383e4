package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// draftTTL is how long a finished analysis stays editable.
const draftTTL = 2 * time.Hour

// Draft is the last analysis shown to a user, kept around so follow-up
// commands (adjust weight, rename dish, re-run) can refer back to it.
type Draft struct {
	Text         string    `json:"text"`
	OriginalText string    `json:"original_text"`
	PhotoKey     string    `json:"photo_key"`
	WeightG      int       `json:"weight_g,omitempty"`
	StoredAt     time.Time `json:"stored_at"`
}

// DraftCache holds at most one draft per user with a rolling TTL.
type DraftCache interface {
	// Put stores the draft, replacing any previous one.
	Put(ctx context.Context, userID int64, draft Draft) error
	// Get returns the user's draft, or ErrNoDraft when absent or expired.
	Get(ctx context.Context, userID int64) (Draft, error)
	// Delete discards the user's draft if present.
	Delete(ctx context.Context, userID int64) error
}

type redisDraftCache struct {
	client *redis.Client
}

// NewRedisDraftCache creates a DraftCache backed by Redis with a 2 hour
// expiry per draft.
func NewRedisDraftCache(client *redis.Client) DraftCache {
	if client == nil {
		panic("analysis: redis client is required")
	}
	return &redisDraftCache{client: client}
}

func draftKey(userID int64) string {
	return fmt.Sprintf("analysis:draft:%d", userID)
}

func (c *redisDraftCache) Put(ctx context.Context, userID int64, draft Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return errors.Join(ErrPersistence, err)
	}
	if err := c.client.Set(ctx, draftKey(userID), data, draftTTL).Err(); err != nil {
		return errors.Join(ErrPersistence, err)
	}
	return nil
}

func (c *redisDraftCache) Get(ctx context.Context, userID int64) (Draft, error) {
	data, err := c.client.Get(ctx, draftKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Draft{}, ErrNoDraft
		}
		return Draft{}, errors.Join(ErrPersistence, err)
	}
	var draft Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return Draft{}, errors.Join(ErrPersistence, err)
	}
	return draft, nil
}

func (c *redisDraftCache) Delete(ctx context.Context, userID int64) error {
	if err := c.client.Del(ctx, draftKey(userID)).Err(); err != nil {
		return errors.Join(ErrPersistence, err)
	}
	return nil
}

// MemoryDraftCache is an in-memory DraftCache for tests and
// single-process runs. Expiry is checked on read.
type MemoryDraftCache struct {
	mu     sync.Mutex
	drafts map[int64]Draft
	now    func() time.Time
}

func NewMemoryDraftCache() *MemoryDraftCache {
	return &MemoryDraftCache{
		drafts: make(map[int64]Draft),
		now:    time.Now,
	}
}

// SetNowFunc overrides the expiry clock, for tests.
func (c *MemoryDraftCache) SetNowFunc(now func() time.Time) {
	if now != nil {
		c.now = now
	}
}

func (c *MemoryDraftCache) Put(_ context.Context, userID int64, draft Draft) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if draft.StoredAt.IsZero() {
		draft.StoredAt = c.now()
	}
	c.drafts[userID] = draft
	return nil
}

func (c *MemoryDraftCache) Get(_ context.Context, userID int64) (Draft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	draft, ok := c.drafts[userID]
	if !ok {
		return Draft{}, ErrNoDraft
	}
	if c.now().Sub(draft.StoredAt) > draftTTL {
		delete(c.drafts, userID)
		return Draft{}, ErrNoDraft
	}
	return draft, nil
}

func (c *MemoryDraftCache) Delete(_ context.Context, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.drafts, userID)
	return nil
}
