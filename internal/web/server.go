package web

import (
	"context"
	"net/http"

	"github.com/jacogrande/sideman-sub001/internal/credits"
	"github.com/jacogrande/sideman-sub001/internal/logger"
)

// Resolver answers credits lookups.
type Resolver interface {
	ResolveCredits(ctx context.Context, track credits.Track) (credits.LookupState, *credits.CreditsBundle)
}

type Server struct {
	ctx      context.Context
	resolver Resolver
	hub      *Hub
	logger   *logger.Logger
}

func NewServer(ctx context.Context, resolver Resolver, hub *Hub, log *logger.Logger) *Server {
	return &Server{
		ctx:      ctx,
		resolver: resolver,
		hub:      hub,
		logger:   log,
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/credits", s.handleCredits)
	mux.HandleFunc("/api/now", s.handleNow)
	mux.HandleFunc("/ws", s.handleWebSocket)

	return s.loggingMiddleware(mux)
}

// TrackChanged publishes a loading update for track, resolves its credits
// and publishes the outcome. It is meant as a nowplaying.Watcher callback.
func (s *Server) TrackChanged(track credits.Track) {
	s.hub.Publish(Update{Track: track, State: credits.StateLoading})

	state, bundle := s.resolver.ResolveCredits(s.ctx, track)
	if s.ctx.Err() != nil {
		return
	}
	s.logger.Info("Credits for %q by %q: %s (%d entries)", track.Title, track.Artist, state, bundle.Len())
	s.hub.Publish(Update{Track: track, State: state, Bundle: bundle})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
