// Package lookup resolves the credits of a track through the configured
// providers and the on-disk cache.
package lookup

import (
	"context"
	"strings"
	"time"

	"github.com/jacogrande/sideman-sub001/internal/cache"
	"github.com/jacogrande/sideman-sub001/internal/credits"
	"github.com/jacogrande/sideman-sub001/internal/logger"
	"github.com/jacogrande/sideman-sub001/internal/textmatch"
)

// TTLs holds how long each kind of outcome stays cached.
type TTLs struct {
	Loaded   time.Duration
	NotFound time.Duration
	Error    time.Duration
}

func (t TTLs) forState(state credits.LookupState) time.Duration {
	switch state {
	case credits.StateLoaded:
		return t.Loaded
	case credits.StateNotFound, credits.StateAmbiguous:
		return t.NotFound
	default:
		return t.Error
	}
}

// Service answers credits lookups for one backend.
type Service struct {
	backend  credits.Backend
	provider credits.Provider
	cache    *cache.Cache
	ttls     TTLs
	logger   *logger.Logger
}

// NewService creates a Service. A nil cache disables caching.
func NewService(backend credits.Backend, p credits.Provider, c *cache.Cache, ttls TTLs, log *logger.Logger) *Service {
	return &Service{
		backend:  backend,
		provider: p,
		cache:    c,
		ttls:     ttls,
		logger:   log,
	}
}

// Backend returns the backend this service resolves with.
func (s *Service) Backend() credits.Backend { return s.backend }

// ResolveCredits returns the lookup state for track and, when loaded, its
// credits. Every outcome is cached with a state-specific TTL so failing
// lookups are not retried on each call.
func (s *Service) ResolveCredits(ctx context.Context, track credits.Track) (credits.LookupState, *credits.CreditsBundle) {
	if track.Empty() {
		return credits.StateNotFound, nil
	}

	key := CacheKey(s.backend, track)
	if s.cache != nil {
		if entry, ok := s.cache.Get(key); ok {
			s.logger.Debug("Cache hit %s: %s", key, entry.State)
			return entry.State, entry.Bundle
		}
	}

	s.logger.Debug("Resolving %q by %q on %q via %s", track.Title, track.Artist, track.Album, s.provider.Name())
	bundle, err := s.provider.LookupCredits(ctx, track)
	state := credits.StateForError(err)
	if err != nil {
		bundle = nil
		if state == credits.StateError {
			s.logger.Warn("Credits lookup failed for %q: %v", track.Title, err)
		} else {
			s.logger.Debug("Credits lookup for %q: %v", track.Title, err)
		}
	}

	// A cancelled lookup says nothing about the track; do not cache it.
	if ctx.Err() != nil {
		return state, bundle
	}

	if s.cache != nil {
		if err := s.cache.Put(key, state, bundle, s.ttls.forState(state)); err != nil {
			s.logger.Warn("Failed to cache credits for %q: %v", track.Title, err)
		}
	}
	return state, bundle
}

// CacheKey identifies a track's lookup for a backend: the player's track id
// when present, otherwise the normalized artist, album and title.
func CacheKey(backend credits.Backend, track credits.Track) string {
	if id := strings.TrimSpace(track.ID); id != "" {
		return string(backend) + "|id:" + id
	}
	return string(backend) + "|" + strings.Join([]string{
		textmatch.Normalize(track.Artist),
		textmatch.Normalize(track.Album),
		textmatch.Normalize(track.Title),
	}, "|")
}
