package cache

import (
	"context"
	"sync"
	"time"

	"github.com/vibast-solutions/ms-go-contacts/app/dto"
)

const memorySweepInterval = time.Minute

type memoryEntry struct {
	snapshot  dto.UserSnapshot
	expiresAt time.Time
}

// Memory is a process-local identity cache. Expired entries are dropped on
// read, and the whole map is swept lazily on access.
type Memory struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	now       func() time.Time
	lastSweep time.Time
}

func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{
		entries:   make(map[string]memoryEntry),
		now:       now,
		lastSweep: now(),
	}
}

// sweep drops every expired entry at most once per memorySweepInterval.
// Callers hold c.mu.
func (c *Memory) sweep(now time.Time) {
	if now.Sub(c.lastSweep) < memorySweepInterval {
		return
	}
	for key, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	c.lastSweep = now
}

func (c *Memory) Get(_ context.Context, key string) (*dto.UserSnapshot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.sweep(now)

	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !now.Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}

	snapshot := entry.snapshot
	return &snapshot, true, nil
}

func (c *Memory) Set(_ context.Context, key string, snapshot *dto.UserSnapshot, ttl time.Duration) error {
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.sweep(now)

	c.entries[key] = memoryEntry{
		snapshot:  *snapshot,
		expiresAt: now.Add(ttl),
	}
	return nil
}

func (c *Memory) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}
