package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/jacogrande/sideman-sub001/internal/credits"
)

var baseTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestCache(t *testing.T) (*Cache, *time.Time) {
	t.Helper()
	c := mustOpen(t, filepath.Join(t.TempDir(), "credits.json"))
	now := baseTime
	c.now = func() time.Time { return now }
	return c, &now
}

func mustOpen(t *testing.T, path string) *Cache {
	t.Helper()
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open(%s) error: %v", path, err)
	}
	return c
}

func sampleBundle() *credits.CreditsBundle {
	return credits.GroupEntries([]credits.CreditEntry{
		{PersonName: "Isaac Wood", Role: "vocals", Source: credits.SourceMarkup},
		{PersonName: "Sergio Maschetzko", Role: "producer", Source: credits.SourceMarkup},
	})
}

func TestSetGet(t *testing.T) {
	c, _ := newTestCache(t)

	if _, ok := c.Get("wikipedia|track-1"); ok {
		t.Fatal("expected miss on empty cache")
	}
	if err := c.Put("wikipedia|track-1", credits.StateLoaded, sampleBundle(), time.Hour); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	got, ok := c.Get("wikipedia|track-1")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Key != "wikipedia|track-1" || got.State != credits.StateLoaded {
		t.Errorf("got %+v", got)
	}
	if got.Bundle == nil || got.Bundle.Len() != 2 {
		t.Errorf("bundle = %+v", got.Bundle)
	}
	if !got.ExpiresAt.Equal(baseTime.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v", got.ExpiresAt)
	}
}

func TestSetGetReturnsRecordAsGiven(t *testing.T) {
	c, _ := newTestCache(t)
	local := time.FixedZone("CET", 3600)

	for _, record := range []CachedCredits{
		{Key: "k", State: credits.StateNotFound, ExpiresAt: time.Now().Add(time.Hour)},
		{Key: "k", State: credits.StateLoaded, Bundle: sampleBundle(), ExpiresAt: baseTime.Add(time.Hour).In(local), StoredAt: baseTime.In(local)},
	} {
		if err := c.Set(record, "k"); err != nil {
			t.Fatalf("Set() error: %v", err)
		}
		got, ok := c.Get("k")
		if !ok {
			t.Fatal("expected hit")
		}
		if !reflect.DeepEqual(got, record) {
			t.Errorf("Get() =\n%+v\nwant\n%+v", got, record)
		}
	}
}

func TestGet_Expiry(t *testing.T) {
	c, now := newTestCache(t)
	if err := c.Put("k", credits.StateNotFound, nil, time.Minute); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	*now = baseTime.Add(time.Minute - time.Nanosecond)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry should be live just before expiry")
	}

	*now = baseTime.Add(time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry should be expired at its expiry instant")
	}

	// Rewinding the clock does not resurrect a dropped entry.
	*now = baseTime
	if _, ok := c.Get("k"); ok {
		t.Error("expired entry should have been removed from memory")
	}
}

func TestSet_DropsBundleForNonLoadedStates(t *testing.T) {
	c, _ := newTestCache(t)
	for _, state := range []credits.LookupState{credits.StateNotFound, credits.StateAmbiguous, credits.StateError} {
		key := string(state)
		if err := c.Put(key, state, sampleBundle(), time.Hour); err != nil {
			t.Fatalf("Put(%s) error: %v", state, err)
		}
		got, ok := c.Get(key)
		if !ok {
			t.Fatalf("expected hit for %s", state)
		}
		if got.Bundle != nil {
			t.Errorf("state %s should not carry a bundle", state)
		}
	}
}

func TestSet_EmptyKey(t *testing.T) {
	c, _ := newTestCache(t)
	if err := c.Set(CachedCredits{State: credits.StateLoaded}, ""); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestPersistenceAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credits.json")
	first := mustOpen(t, path)
	expires := time.Now().Add(24 * time.Hour)
	if err := first.Set(CachedCredits{State: credits.StateLoaded, Bundle: sampleBundle(), ExpiresAt: expires}, "k1"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := first.Set(CachedCredits{State: credits.StateAmbiguous, ExpiresAt: expires}, "k2"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	second := mustOpen(t, path)
	got, ok := second.Get("k1")
	if !ok {
		t.Fatal("expected k1 to survive reopen")
	}
	if !got.ExpiresAt.Equal(expires) {
		t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, expires)
	}
	musicians := got.Bundle.Groups[credits.GroupMusicians]
	if len(musicians) != 1 || musicians[0].PersonName != "Isaac Wood" {
		t.Errorf("musicians = %+v", musicians)
	}
	if got, ok := second.Get("k2"); !ok || got.State != credits.StateAmbiguous {
		t.Errorf("k2 = %+v, %v", got, ok)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the cache file, temp files left behind: %v", entries)
	}
}

func TestOpen_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credits.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Open(path)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Open() error = %v, want ErrCorrupt", err)
	}
	if n := len(c.Entries()); n != 0 {
		t.Fatalf("expected empty cache, got %d entries", n)
	}
	if err := c.Set(CachedCredits{State: credits.StateNotFound, ExpiresAt: time.Now().Add(time.Hour)}, "k"); err != nil {
		t.Fatalf("Set() over corrupt file error: %v", err)
	}
	if _, ok := mustOpen(t, path).Get("k"); !ok {
		t.Error("expected rewritten file to be readable")
	}
}

func TestOpen_MissingFile(t *testing.T) {
	c := mustOpen(t, filepath.Join(t.TempDir(), "absent.json"))
	if n := len(c.Entries()); n != 0 {
		t.Errorf("expected empty cache, got %d entries", n)
	}
}

func TestEntriesPurgePrune(t *testing.T) {
	c, now := newTestCache(t)
	c.Put("b", credits.StateLoaded, sampleBundle(), time.Hour)
	c.Put("a", credits.StateNotFound, nil, time.Hour)
	c.Put("old", credits.StateError, nil, time.Minute)

	*now = baseTime.Add(2 * time.Minute)
	entries := c.Entries()
	if len(entries) != 2 || entries[0].Key != "a" || entries[1].Key != "b" {
		t.Fatalf("Entries() = %+v", entries)
	}

	removed, err := c.Prune()
	if err != nil || removed != 1 {
		t.Errorf("Prune() = %d, %v; want 1, nil", removed, err)
	}

	if err := c.Purge(); err != nil {
		t.Fatalf("Purge() error: %v", err)
	}
	if len(c.Entries()) != 0 {
		t.Error("expected no entries after Purge")
	}
	if len(mustOpen(t, c.Path()).Entries()) != 0 {
		t.Error("purge should be persisted")
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := mustOpen(t, filepath.Join(t.TempDir(), "credits.json"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				key := fmt.Sprintf("k-%d-%d", i, j)
				if err := c.Put(key, credits.StateNotFound, nil, time.Hour); err != nil {
					t.Errorf("Put(%s) error: %v", key, err)
					return
				}
				if _, ok := c.Get(key); !ok {
					t.Errorf("Get(%s) missed after Put", key)
				}
			}
		}(i)
	}
	wg.Wait()

	if n := len(mustOpen(t, c.Path()).Entries()); n != 80 {
		t.Errorf("expected 80 persisted entries, got %d", n)
	}
}
