// Package recent keeps a visitor's recently viewed job postings on the
// client. The list is bounded to Capacity entries, entries older than Horizon
// are never returned, and it survives restarts through a key-value Storage.
package recent

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/jobmarket/internal/common"
	"github.com/dmitrijs2005/jobmarket/internal/logging"
)

const (
	StorageKey = common.RecentlyViewedKey
	Capacity   = 10
	Horizon    = 30 * 24 * time.Hour
)

// Storage is the persistence slot behind a Cache. Get returns nil, nil for a
// missing key.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Summary is what the client knew about a posting when it was viewed.
type Summary struct {
	Title string `json:"title,omitempty"`
	City  string `json:"city,omitempty"`
	Tier  string `json:"tier,omitempty"`
}

type Entry struct {
	JobID    string    `json:"jobId"`
	ViewedAt time.Time `json:"viewedAt"`
	Summary  *Summary  `json:"summary,omitempty"`
}

type Option func(*Cache)

func WithLogger(l logging.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// Cache is safe for concurrent use. The in-memory list is authoritative for
// the life of the process; writes to Storage are best effort.
type Cache struct {
	mu      sync.Mutex
	storage Storage
	logger  logging.Logger
	now     func() time.Time

	loaded  bool
	entries []Entry // most recent first
}

func New(storage Storage, opts ...Option) *Cache {
	c := &Cache{
		storage: storage,
		logger:  logging.Nop(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Record moves jobID to the front with viewedAt = now, replacing any earlier
// entry for it, and drops whatever falls past Capacity.
func (c *Cache) Record(ctx context.Context, jobID string, summary *Summary) {
	if jobID == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureLoaded(ctx)

	next := make([]Entry, 0, Capacity)
	next = append(next, Entry{JobID: jobID, ViewedAt: c.now().UTC(), Summary: summary})
	for _, e := range c.entries {
		if e.JobID != jobID {
			next = append(next, e)
		}
	}
	if len(next) > Capacity {
		next = next[:Capacity]
	}
	c.entries = next
	c.persist(ctx)
}

func (c *Cache) Remove(ctx context.Context, jobID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureLoaded(ctx)

	for i, e := range c.entries {
		if e.JobID == jobID {
			c.entries = append(c.entries[:i:i], c.entries[i+1:]...)
			c.persist(ctx)
			return
		}
	}
}

// Clear empties the list and deletes the persisted slot.
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = nil
	c.loaded = true
	if c.storage == nil {
		return
	}
	if err := c.storage.Delete(ctx, StorageKey); err != nil {
		c.logger.Warn(ctx, "recent: clear failed", "error", err)
	}
}

// List returns the live entries, most recent first. The result is a copy.
func (c *Cache) List(ctx context.Context) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureLoaded(ctx)
	if c.prune() {
		c.persist(ctx)
	}

	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Cache) Contains(ctx context.Context, jobID string) bool {
	for _, e := range c.List(ctx) {
		if e.JobID == jobID {
			return true
		}
	}
	return false
}

// ensureLoaded reads the persisted list once per process. Unreadable data
// leaves the cache empty. Pruned entries are written back.
func (c *Cache) ensureLoaded(ctx context.Context) {
	if c.loaded {
		return
	}
	c.loaded = true
	c.entries = nil

	if c.storage == nil {
		return
	}

	raw, err := c.storage.Get(ctx, StorageKey)
	if err != nil {
		c.logger.Warn(ctx, "recent: load failed", "error", err)
		return
	}
	if len(raw) == 0 {
		return
	}

	var stored []Entry
	if err := json.Unmarshal(raw, &stored); err != nil {
		c.logger.Warn(ctx, "recent: stored list is corrupt", "error", err)
		return
	}

	c.entries = dedup(stored)
	pruned := c.prune() || len(c.entries) != len(stored)
	if len(c.entries) > Capacity {
		c.entries = c.entries[:Capacity]
		pruned = true
	}
	if pruned {
		c.persist(ctx)
	}
}

// prune drops expired entries and restores most-recent-first order.
// It reports whether anything was dropped.
func (c *Cache) prune() bool {
	cutoff := c.now().Add(-Horizon)

	kept := c.entries[:0:0]
	for _, e := range c.entries {
		if e.JobID != "" && e.ViewedAt.After(cutoff) {
			kept = append(kept, e)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].ViewedAt.After(kept[j].ViewedAt) })

	dropped := len(kept) != len(c.entries)
	c.entries = kept
	return dropped
}

func (c *Cache) persist(ctx context.Context) {
	if c.storage == nil {
		return
	}
	entries := c.entries
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		c.logger.Warn(ctx, "recent: encode failed", "error", err)
		return
	}
	if err := c.storage.Set(ctx, StorageKey, data); err != nil {
		c.logger.Warn(ctx, "recent: persist failed", "error", err)
	}
}

// dedup keeps the newest entry for each job id.
func dedup(in []Entry) []Entry {
	newest := make(map[string]int, len(in))
	out := make([]Entry, 0, len(in))
	for _, e := range in {
		if i, ok := newest[e.JobID]; ok {
			if e.ViewedAt.After(out[i].ViewedAt) {
				out[i] = e
			}
			continue
		}
		newest[e.JobID] = len(out)
		out = append(out, e)
	}
	return out
}
