package wikipedia

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/jacogrande/sideman-sub001/internal/credits"
	"github.com/jacogrande/sideman-sub001/internal/logger"
	"github.com/jacogrande/sideman-sub001/internal/textmatch"
)

const (
	defaultSearchLimit        = 5
	defaultAmbiguityThreshold = 0.08
)

// ResolvedPage is the single page picked for a track's album.
type ResolvedPage struct {
	PageID     int
	Title      string
	Confidence float64
	Content    PageContent
}

type candidate struct {
	result     SearchResult
	confidence float64
}

// Resolver picks the encyclopedia page describing a track's album.
type Resolver struct {
	source    Source
	logger    *logger.Logger
	limit     int
	threshold float64
}

// NewResolver creates a Resolver. Zero limit or threshold select defaults.
func NewResolver(src Source, log *logger.Logger, limit int, threshold float64) *Resolver {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if threshold <= 0 {
		threshold = defaultAmbiguityThreshold
	}
	return &Resolver{
		source:    src,
		logger:    log,
		limit:     limit,
		threshold: threshold,
	}
}

// Resolve searches for the album page of track and fetches it. It fails with
// credits.ErrNotFound when the search is empty, credits.ErrAmbiguous when the
// two best candidates are too close to call, and a *credits.TransportError
// when the source fails.
func (r *Resolver) Resolve(ctx context.Context, track credits.Track) (ResolvedPage, error) {
	query := BuildQuery(track)
	if query == "" {
		return ResolvedPage{}, fmt.Errorf("empty query: %w", credits.ErrNotFound)
	}

	results, err := r.source.Search(ctx, query, r.limit)
	if err != nil {
		return ResolvedPage{}, credits.Transport("wikipedia search", err)
	}
	if len(results) == 0 {
		r.logger.Debug("  No wikipedia results for %q", query)
		return ResolvedPage{}, fmt.Errorf("no results for %q: %w", query, credits.ErrNotFound)
	}

	candidates := make([]candidate, len(results))
	for i, res := range results {
		candidates[i] = candidate{result: res, confidence: score(track, res)}
	}
	// Stable sort keeps source ranking among equal scores.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].confidence > candidates[j].confidence
	})

	best := candidates[0]
	r.logger.Debug("  Best page: %q (confidence: %.2f)", best.result.Title, best.confidence)
	if len(candidates) > 1 {
		second := candidates[1]
		if best.confidence-second.confidence < r.threshold {
			r.logger.Debug("  Ambiguous: %q (%.2f) vs %q (%.2f)",
				best.result.Title, best.confidence, second.result.Title, second.confidence)
			return ResolvedPage{}, fmt.Errorf("%q vs %q: %w", best.result.Title, second.result.Title, credits.ErrAmbiguous)
		}
	}

	content, err := r.source.FetchPage(ctx, best.result.PageID)
	if err != nil {
		return ResolvedPage{}, credits.Transport("wikipedia fetch", err)
	}

	return ResolvedPage{
		PageID:     best.result.PageID,
		Title:      best.result.Title,
		Confidence: best.confidence,
		Content:    content,
	}, nil
}

// BuildQuery returns the search string for a track's album page.
func BuildQuery(track credits.Track) string {
	album := strings.TrimSpace(track.Album)
	if album == "" {
		album = strings.TrimSpace(track.Title)
	}
	if album == "" {
		return ""
	}
	parts := []string{album}
	if artist := strings.TrimSpace(track.Artist); artist != "" {
		parts = append(parts, artist)
	}
	parts = append(parts, "album")
	return strings.Join(parts, " ")
}

var titleQualifier = regexp.MustCompile(`\s*\(([^)]*)\)\s*$`)

// score computes a confidence (0.0-1.0) that a search result is the album page.
func score(track credits.Track, res SearchResult) float64 {
	album := track.Album
	if strings.TrimSpace(album) == "" {
		album = track.Title
	}

	title := pageTitleBase(res.Title, track.Artist)
	titleScore := textmatch.Similarity(textmatch.Normalize(album), textmatch.Normalize(title))

	target := textmatch.Tokens(textmatch.Normalize(album + " " + track.Artist + " album"))
	snippetScore := textmatch.Coverage(target, textmatch.Tokens(textmatch.Normalize(res.Snippet)))

	// Weight: 60% title, 40% snippet
	return titleScore*0.6 + snippetScore*0.4
}

// pageTitleBase drops a trailing "(album)" or "(Artist album)" qualifier;
// other qualifiers such as "(song)" stay and count against the match.
func pageTitleBase(title, artist string) string {
	m := titleQualifier.FindStringSubmatchIndex(title)
	if m == nil {
		return title
	}
	q := textmatch.Normalize(title[m[2]:m[3]])
	if strings.Contains(q, "album") || (artist != "" && q == textmatch.Normalize(artist)) {
		return title[:m[0]]
	}
	return title
}
