package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"sprintlens/internal/export"
	"sprintlens/internal/metrics"
	"sprintlens/internal/normalize"
	"sprintlens/internal/query"
)

// Key identifies one fetch request. Equal keys share one cache slot
// and at most one in-flight pipeline run.
type Key struct {
	Project  string        `json:"project"`
	Purpose  query.Purpose `json:"purpose"`
	SprintID int           `json:"sprintId,omitempty"`
	From     string        `json:"from,omitempty"`
	To       string        `json:"to,omitempty"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%d:%s:%s", k.Project, k.Purpose, k.SprintID, k.From, k.To)
}

// Label is the sanitized form of the key, safe for filenames and log
// fields.
func (k Key) Label() string {
	switch k.Purpose {
	case query.SprintIssues:
		return export.SanitizeFilename(fmt.Sprintf("%s_%s_%d", k.Project, k.Purpose, k.SprintID))
	case query.HistoricalRange:
		return export.SanitizeFilename(fmt.Sprintf("%s_%s_%s_%s", k.Project, k.Purpose, k.From, k.To))
	}
	return export.SanitizeFilename(fmt.Sprintf("%s_%s", k.Project, k.Purpose))
}

// Entry is one cached pipeline result. Owned exclusively by the cache;
// records, summary and warnings live and die together.
type Entry struct {
	Key       Key                 `json:"key"`
	Records   []normalize.Record  `json:"records"`
	Summary   metrics.Summary     `json:"summary"`
	Warnings  []normalize.Warning `json:"warnings,omitempty"`
	FetchedAt time.Time           `json:"fetchedAt"`
}

// Cache memoizes normalized datasets per request key for the session.
// Concurrent requests for one key share a single fetch; unrelated keys
// never block each other.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	group   singleflight.Group

	sprintTTL  time.Duration
	projectTTL time.Duration

	now func() time.Time
}

// New creates a cache with per-purpose TTLs. Zero TTLs disable expiry
// (entries live until invalidated).
func New(sprintTTL, projectTTL time.Duration) *Cache {
	return &Cache{
		entries:    make(map[string]*Entry),
		sprintTTL:  sprintTTL,
		projectTTL: projectTTL,
		now:        time.Now,
	}
}

func (c *Cache) ttlFor(p query.Purpose) time.Duration {
	if p == query.SprintIssues {
		return c.sprintTTL
	}
	return c.projectTTL
}

// Get returns a live entry for the key, expiring stale ones on the way.
func (c *Cache) Get(k Key) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[k.String()]
	if !ok {
		log.Debug().Str("key", k.Label()).Msg("Cache miss")
		return nil, false
	}

	ttl := c.ttlFor(k.Purpose)
	if ttl > 0 && c.now().Sub(e.FetchedAt) > ttl {
		delete(c.entries, k.String())
		log.Debug().Str("key", k.Label()).Msg("Cache entry expired")
		return nil, false
	}

	log.Debug().Str("key", k.Label()).Msg("Cache hit")
	return e, true
}

// Put stores an entry under its own key.
func (c *Cache) Put(e *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[e.Key.String()] = e
}

// Invalidate removes every entry whose key matches the predicate and
// returns how many were dropped.
func (c *Cache) Invalidate(pred func(Key) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for id, e := range c.entries {
		if pred(e.Key) {
			delete(c.entries, id)
			dropped++
		}
	}
	if dropped > 0 {
		log.Debug().Int("dropped", dropped).Msg("Cache invalidated")
	}
	return dropped
}

// Do returns the cached entry for the key or runs fetch to produce it.
// Concurrent callers with an equal key join the single in-flight fetch
// and receive the same entry.
func (c *Cache) Do(ctx context.Context, k Key, fetch func(ctx context.Context) (*Entry, error)) (*Entry, error) {
	if e, ok := c.Get(k); ok {
		return e, nil
	}

	v, err, _ := c.group.Do(k.String(), func() (any, error) {
		// A racing caller may have finished while we queued.
		if e, ok := c.Get(k); ok {
			return e, nil
		}
		e, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		e.FetchedAt = c.now()
		c.Put(e)
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Entry), nil
}
