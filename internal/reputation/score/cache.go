package score

import (
	"context"
	"sync"

	"lexara/pkg/domain"
)

// Cache is the optional score cache port. It is a display optimization, never
// an authority: a miss or failure always falls back to recomputation.
type Cache interface {
	Get(ctx context.Context, userID domain.UserID) (Score, bool, error)
	Set(ctx context.Context, userID domain.UserID, s Score) error
	Invalidate(ctx context.Context, userID domain.UserID) error
}

// MemoryCache is a process-local score cache.
type MemoryCache struct {
	mu     sync.RWMutex
	scores map[string]Score
}

// NewMemoryCache constructs an empty in-process score cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{scores: make(map[string]Score)}
}

func (c *MemoryCache) Get(_ context.Context, userID domain.UserID) (Score, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.scores[userID.String()]
	return s, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, userID domain.UserID, s Score) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scores[userID.String()] = s
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, userID domain.UserID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.scores, userID.String())
	return nil
}
