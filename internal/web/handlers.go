package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jacogrande/sideman-sub001/internal/credits"
)

type CreditsResponse struct {
	Track  credits.Track          `json:"track"`
	State  credits.LookupState    `json:"state"`
	Bundle *credits.CreditsBundle `json:"bundle,omitempty"`
}

func (s *Server) handleCredits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	track := credits.Track{
		ID:     strings.TrimSpace(q.Get("id")),
		Title:  strings.TrimSpace(q.Get("title")),
		Artist: strings.TrimSpace(q.Get("artist")),
		Album:  strings.TrimSpace(q.Get("album")),
	}
	if track.Empty() {
		http.Error(w, "title or album is required", http.StatusBadRequest)
		return
	}

	state, bundle := s.resolver.ResolveCredits(r.Context(), track)
	writeJSON(w, CreditsResponse{Track: track, State: state, Bundle: bundle})
}

func (s *Server) handleNow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	update, ok := s.hub.Current()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, update)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
