// Package cache persists credits lookups on disk with a per-entry expiry.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/jacogrande/sideman-sub001/internal/credits"
)

// CachedCredits is one persisted lookup outcome. Bundle is set only when
// State is loaded.
type CachedCredits struct {
	Key       string                 `json:"key"`
	State     credits.LookupState    `json:"state"`
	Bundle    *credits.CreditsBundle `json:"bundle,omitempty"`
	ExpiresAt time.Time              `json:"expires_at"`
	StoredAt  time.Time              `json:"stored_at"`
}

// Expired reports whether the entry is past its expiry at now.
func (c CachedCredits) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Cache is a file-backed map of lookup outcomes. All methods are safe for
// concurrent use; every Set rewrites the file.
type Cache struct {
	mu      sync.Mutex
	path    string
	entries map[string]CachedCredits
	now     func() time.Time
}

// ErrCorrupt is returned by Open when the cache file cannot be decoded.
var ErrCorrupt = errors.New("cache file is corrupt")

// Open loads the cache at path. A missing file yields an empty cache. An
// unreadable or corrupt file also yields a usable empty cache, together with
// an error describing what was discarded; the next Set replaces the file.
func Open(path string) (*Cache, error) {
	c := &Cache{
		path:    path,
		entries: map[string]CachedCredits{},
		now:     time.Now,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, fmt.Errorf("failed to read cache file: %w", err)
	}
	var stored map[string]CachedCredits
	if err := json.Unmarshal(data, &stored); err != nil {
		return c, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	for k, v := range stored {
		if k == "" || v.State == "" {
			continue
		}
		c.entries[k] = v
	}
	return c, nil
}

// Path returns the backing file path.
func (c *Cache) Path() string { return c.path }

// Get returns the live entry for key. Expired entries are dropped from
// memory and reported as a miss.
func (c *Cache) Get(key string) (CachedCredits, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return CachedCredits{}, false
	}
	if entry.Expired(c.now()) {
		delete(c.entries, key)
		return CachedCredits{}, false
	}
	return entry, true
}

// Set stores record under key, as given apart from its Key, and persists
// the whole cache before returning.
func (c *Cache) Set(record CachedCredits, key string) error {
	if key == "" {
		return errors.New("cache key cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	record.Key = key
	c.entries[key] = record
	return c.persistLocked()
}

// Put stores a lookup outcome that expires ttl from now. Only loaded
// outcomes keep their bundle.
func (c *Cache) Put(key string, state credits.LookupState, bundle *credits.CreditsBundle, ttl time.Duration) error {
	now := c.now().UTC().Round(0)
	if state != credits.StateLoaded {
		bundle = nil
	}
	return c.Set(CachedCredits{
		State:     state,
		Bundle:    bundle,
		ExpiresAt: now.Add(ttl),
		StoredAt:  now,
	}, key)
}

// Entries returns the live entries ordered by key.
func (c *Cache) Entries() []CachedCredits {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	out := make([]CachedCredits, 0, len(c.entries))
	for _, e := range c.entries {
		if !e.Expired(now) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Purge removes every entry and truncates the file.
func (c *Cache) Purge() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = map[string]CachedCredits{}
	return c.persistLocked()
}

// Prune drops expired entries and persists when any were removed.
func (c *Cache) Prune() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if e.Expired(now) {
			delete(c.entries, k)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, c.persistLocked()
}

func (c *Cache) persistLocked() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credits cache: %w", err)
	}
	if err := writeFileAtomic(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write credits cache %s: %w", c.path, err)
	}
	return nil
}
