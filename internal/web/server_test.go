package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jacogrande/sideman-sub001/internal/credits"
	"github.com/jacogrande/sideman-sub001/internal/logger"
)

// mockResolver implements Resolver for testing.
type mockResolver struct {
	mu     sync.Mutex
	state  credits.LookupState
	bundle *credits.CreditsBundle
	tracks []credits.Track
}

func (m *mockResolver) ResolveCredits(ctx context.Context, track credits.Track) (credits.LookupState, *credits.CreditsBundle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks = append(m.tracks, track)
	return m.state, m.bundle
}

func newTestServer(t *testing.T, r Resolver) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(context.Background(), r, NewHub(), logger.Discard())
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return s, srv
}

func loadedResolver() *mockResolver {
	return &mockResolver{
		state: credits.StateLoaded,
		bundle: credits.GroupEntries([]credits.CreditEntry{
			{PersonName: "Luke Mark", Role: "guitar", Source: credits.SourceMarkup},
		}),
	}
}

func TestHandleCredits(t *testing.T) {
	r := loadedResolver()
	_, srv := newTestServer(t, r)

	resp, err := http.Get(srv.URL + "/api/credits?title=Concorde&artist=Black+Country%2C+New+Road&album=Ants+from+Up+There")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body CreditsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.State != credits.StateLoaded || body.Bundle == nil {
		t.Errorf("body = %+v", body)
	}
	if got := body.Bundle.Groups[credits.GroupMusicians]; len(got) != 1 || got[0].PersonName != "Luke Mark" {
		t.Errorf("musicians = %+v", got)
	}
	if len(r.tracks) != 1 || r.tracks[0].Artist != "Black Country, New Road" {
		t.Errorf("resolver saw %+v", r.tracks)
	}
}

func TestHandleCredits_BadRequests(t *testing.T) {
	_, srv := newTestServer(t, loadedResolver())

	resp, err := http.Get(srv.URL + "/api/credits?artist=Someone")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing title: status = %d, want 400", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/api/credits?title=x", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST: status = %d, want 405", resp.StatusCode)
	}
}

func TestHandleNow(t *testing.T) {
	s, srv := newTestServer(t, loadedResolver())

	resp, err := http.Get(srv.URL + "/api/now")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204 before any track", resp.StatusCode)
	}

	s.TrackChanged(credits.Track{Title: "Concorde", Album: "Ants from Up There"})

	resp, err = http.Get(srv.URL + "/api/now")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var update Update
	if err := json.NewDecoder(resp.Body).Decode(&update); err != nil {
		t.Fatal(err)
	}
	if update.State != credits.StateLoaded || update.Track.Title != "Concorde" {
		t.Errorf("update = %+v", update)
	}
}

func TestTrackChanged_NotFoundHasNoBundle(t *testing.T) {
	hub := NewHub()
	s := NewServer(context.Background(), &mockResolver{state: credits.StateNotFound}, hub, logger.Discard())

	s.TrackChanged(credits.Track{Title: "Unknown", Album: "Nowhere"})

	update, ok := hub.Current()
	if !ok {
		t.Fatal("expected a published update")
	}
	if update.State != credits.StateNotFound || update.Bundle != nil {
		t.Errorf("update = %+v, want not_found without bundle", update)
	}
}

func TestWebSocketStreamsLoadingThenResult(t *testing.T) {
	s, srv := newTestServer(t, loadedResolver())
	s.hub.Publish(Update{Track: credits.Track{Title: "Previous"}, State: credits.StateNotFound})

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	defer conn.Close()

	read := func() Update {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var u Update
		if err := conn.ReadJSON(&u); err != nil {
			t.Fatalf("ReadJSON() error: %v", err)
		}
		return u
	}

	// The current state arrives first, after the handler has subscribed.
	if u := read(); u.Track.Title != "Previous" || u.State != credits.StateNotFound {
		t.Fatalf("initial update = %+v", u)
	}

	s.TrackChanged(credits.Track{Title: "Concorde", Album: "Ants from Up There"})

	if u := read(); u.State != credits.StateLoading || u.Track.Title != "Concorde" {
		t.Errorf("first update = %+v, want loading", u)
	}
	if u := read(); u.State != credits.StateLoaded || u.Bundle == nil {
		t.Errorf("second update = %+v, want loaded", u)
	}
}
