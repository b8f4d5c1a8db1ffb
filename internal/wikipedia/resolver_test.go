package wikipedia

import (
	"context"
	"errors"
	"testing"

	"github.com/jacogrande/sideman-sub001/internal/credits"
	"github.com/jacogrande/sideman-sub001/internal/logger"
)

// mockSource implements Source for testing.
type mockSource struct {
	results   []SearchResult
	searchErr error
	pages     map[int]PageContent
	fetchErr  error

	query   string
	limit   int
	fetched []int
}

func (m *mockSource) Search(_ context.Context, query string, limit int) ([]SearchResult, error) {
	m.query = query
	m.limit = limit
	return m.results, m.searchErr
}

func (m *mockSource) FetchPage(_ context.Context, pageID int) (PageContent, error) {
	m.fetched = append(m.fetched, pageID)
	if m.fetchErr != nil {
		return PageContent{}, m.fetchErr
	}
	return m.pages[pageID], nil
}

var antsTrack = credits.Track{
	ID:     "spotify:track:1",
	Title:  "Concorde",
	Artist: "Black Country, New Road",
	Album:  "Ants from Up There",
}

func TestResolve_DominantCandidate(t *testing.T) {
	src := &mockSource{
		results: []SearchResult{
			{PageID: 2, Title: "Black Country, New Road", Snippet: "Black Country, New Road are an English rock band"},
			{PageID: 1, Title: "Ants from Up There", Snippet: "Ants from Up There is the second studio album by Black Country, New Road"},
		},
		pages: map[int]PageContent{1: {PageID: 1, Title: "Ants from Up There", Wikitext: "..."}},
	}

	r := NewResolver(src, logger.Discard(), 0, 0)
	page, err := r.Resolve(context.Background(), antsTrack)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if page.PageID != 1 || page.Title != "Ants from Up There" {
		t.Errorf("resolved %d %q, want page 1", page.PageID, page.Title)
	}
	if page.Confidence <= 0.9 {
		t.Errorf("Confidence = %.2f, want > 0.9", page.Confidence)
	}
	if len(src.fetched) != 1 || src.fetched[0] != 1 {
		t.Errorf("fetched = %v, want [1]", src.fetched)
	}
	if src.query != "Ants from Up There Black Country, New Road album" {
		t.Errorf("query = %q", src.query)
	}
	if src.limit != defaultSearchLimit {
		t.Errorf("limit = %d, want %d", src.limit, defaultSearchLimit)
	}
}

func TestResolve_Ambiguous(t *testing.T) {
	src := &mockSource{
		results: []SearchResult{
			{PageID: 1, Title: "Ants from Up There", Snippet: "Ants from Up There album by Black Country, New Road"},
			{PageID: 3, Title: "Ants from Up There (album)", Snippet: "Ants from Up There album by Black Country, New Road"},
		},
	}

	r := NewResolver(src, logger.Discard(), 0, 0)
	_, err := r.Resolve(context.Background(), antsTrack)
	if !errors.Is(err, credits.ErrAmbiguous) {
		t.Fatalf("err = %v, want ErrAmbiguous", err)
	}
	if len(src.fetched) != 0 {
		t.Errorf("ambiguous resolution should not fetch, fetched %v", src.fetched)
	}
}

func TestResolve_NoResults(t *testing.T) {
	r := NewResolver(&mockSource{}, logger.Discard(), 0, 0)
	_, err := r.Resolve(context.Background(), antsTrack)
	if !errors.Is(err, credits.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestResolve_SingleWeakCandidateAccepted(t *testing.T) {
	src := &mockSource{
		results: []SearchResult{{PageID: 9, Title: "Something Else", Snippet: "unrelated"}},
		pages:   map[int]PageContent{9: {PageID: 9, Title: "Something Else"}},
	}
	r := NewResolver(src, logger.Discard(), 0, 0)
	page, err := r.Resolve(context.Background(), antsTrack)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if page.PageID != 9 {
		t.Errorf("PageID = %d, want 9", page.PageID)
	}
}

func TestResolve_TransportFailures(t *testing.T) {
	searchFail := &mockSource{searchErr: errors.New("connection reset")}
	_, err := NewResolver(searchFail, logger.Discard(), 0, 0).Resolve(context.Background(), antsTrack)
	var te *credits.TransportError
	if !errors.As(err, &te) {
		t.Errorf("search failure err = %v, want *TransportError", err)
	}

	fetchFail := &mockSource{
		results:  []SearchResult{{PageID: 1, Title: "Ants from Up There"}},
		fetchErr: ErrPageMissing,
	}
	_, err = NewResolver(fetchFail, logger.Discard(), 0, 0).Resolve(context.Background(), antsTrack)
	if !errors.As(err, &te) || !errors.Is(err, ErrPageMissing) {
		t.Errorf("fetch failure err = %v, want *TransportError wrapping ErrPageMissing", err)
	}
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name  string
		track credits.Track
		want  string
	}{
		{"album and artist", credits.Track{Album: "OK Computer", Artist: "Radiohead"}, "OK Computer Radiohead album"},
		{"album only", credits.Track{Album: "OK Computer"}, "OK Computer album"},
		{"title fallback", credits.Track{Title: "Airbag", Artist: "Radiohead"}, "Airbag Radiohead album"},
		{"empty", credits.Track{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildQuery(tt.track); got != tt.want {
				t.Errorf("BuildQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScore(t *testing.T) {
	track := credits.Track{Album: "Let It Be", Artist: "The Beatles"}
	tests := []struct {
		name      string
		result    SearchResult
		wantAbove float64
		wantBelow float64
	}{
		{
			name:      "exact album page",
			result:    SearchResult{Title: "Let It Be (album)", Snippet: "Let It Be is the twelfth and final studio album by the English rock band the Beatles"},
			wantAbove: 0.99,
		},
		{
			name:      "disambiguation page",
			result:    SearchResult{Title: "Let It Be", Snippet: "Let It Be may refer to"},
			wantAbove: 0.7,
			wantBelow: 0.9,
		},
		{
			name:      "song page",
			result:    SearchResult{Title: "Let It Be (song)", Snippet: "song by the Beatles"},
			wantBelow: 0.7,
		},
		{
			name:      "unrelated",
			result:    SearchResult{Title: "Abbey Road", Snippet: "studio album by the Beatles"},
			wantBelow: 0.3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := score(track, tt.result)
			if got < 0 || got > 1 {
				t.Fatalf("score = %.4f out of range", got)
			}
			if tt.wantAbove > 0 && got < tt.wantAbove {
				t.Errorf("score = %.4f, want above %.4f", got, tt.wantAbove)
			}
			if tt.wantBelow > 0 && got > tt.wantBelow {
				t.Errorf("score = %.4f, want below %.4f", got, tt.wantBelow)
			}
		})
	}
}

func TestScoreMonotonicInOverlap(t *testing.T) {
	track := credits.Track{Album: "In the Aeroplane Over the Sea", Artist: "Neutral Milk Hotel"}
	weaker := score(track, SearchResult{Title: "In the Aeroplane", Snippet: "Neutral Milk Hotel"})
	stronger := score(track, SearchResult{Title: "In the Aeroplane Over the Sea", Snippet: "Neutral Milk Hotel"})
	strongest := score(track, SearchResult{Title: "In the Aeroplane Over the Sea", Snippet: "In the Aeroplane Over the Sea is an album by Neutral Milk Hotel"})
	if !(weaker < stronger && stronger < strongest) {
		t.Errorf("scores not monotonic: %.3f, %.3f, %.3f", weaker, stronger, strongest)
	}
}
