package musicbrainz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/jacogrande/sideman-sub001/internal/credits"
	"github.com/jacogrande/sideman-sub001/internal/logger"
	"github.com/jacogrande/sideman-sub001/internal/textmatch"
)

const (
	defaultAPIURL       = "https://musicbrainz.org/ws/2"
	defaultUserAgent    = "sideman/1.0 ( https://github.com/jacogrande/sideman )"
	minRecordingScore   = 0.6
	lookupCacheSize     = 256
	maxWorkLookups      = 8
	defaultRetryAfter   = 2
	searchResultsPerHit = 5
)

var errNotFound = errors.New("musicbrainz entity not found")

// Client is a MusicBrainz Web API client that implements credits.Provider.
type Client struct {
	httpClient *http.Client
	apiURL     string
	userAgent  string
	limiter    *rate.Limiter
	lookups    *lru.Cache[string, []byte]
	logger     *logger.Logger
}

// New creates a new MusicBrainz client. Empty apiURL or userAgent select
// defaults.
func New(apiURL, userAgent string, log *logger.Logger) *Client {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	lookups, _ := lru.New[string, []byte](lookupCacheSize)
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     strings.TrimRight(apiURL, "/"),
		userAgent:  userAgent,
		// MusicBrainz allows one request per second per client.
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		lookups: lookups,
		logger:  log,
	}
}

func (c *Client) Name() string { return "musicbrainz" }

// LookupCredits finds the recording for track and collects its relationship
// credits: recording and work relations at recording level, relations of the
// best matching release at release level.
func (c *Client) LookupCredits(ctx context.Context, track credits.Track) (*credits.CreditsBundle, error) {
	recordingID, err := c.findRecording(ctx, track)
	if err != nil {
		return nil, err
	}

	var rec recordingLookup
	if err := c.lookup(ctx, "recording/"+recordingID, "artist-rels+work-rels+releases", &rec); err != nil {
		return nil, wrapLookupErr("musicbrainz recording", err)
	}

	entries := credits.MapRelations(rec.Relations, credits.SourceRecording)

	workIDs := credits.ExtractWorkIDs(rec.Recording)
	if len(workIDs) > maxWorkLookups {
		workIDs = workIDs[:maxWorkLookups]
	}
	for _, id := range workIDs {
		var w entityLookup
		if err := c.lookup(ctx, "work/"+id, "artist-rels", &w); err != nil {
			c.logger.Warn("musicbrainz work %s: %v", id, err)
			continue
		}
		entries = append(entries, credits.MapRelations(w.Relations, credits.SourceRecording)...)
	}

	if len(rec.Releases) > 0 {
		rel := pickBestRelease(rec.Releases, track.Album)
		var r entityLookup
		if err := c.lookup(ctx, "release/"+rel.ID, "artist-rels", &r); err != nil {
			c.logger.Warn("musicbrainz release %s: %v", rel.ID, err)
		} else {
			entries = append(entries, credits.MapRelations(r.Relations, credits.SourceRelease)...)
		}
	}

	c.logger.Debug("  MusicBrainz %s: %d works, %d raw entries", recordingID, len(workIDs), len(entries))
	if len(entries) == 0 {
		return nil, fmt.Errorf("no relationships on recording %s: %w", recordingID, credits.ErrNotFound)
	}

	bundle := credits.GroupEntries(credits.MergeWithPrecedence(entries))
	bundle.RecordingMBID = recordingID
	return bundle, nil
}

// findRecording returns the recording MBID for track. A track ID that is
// already an MBID is used as is.
func (c *Client) findRecording(ctx context.Context, track credits.Track) (string, error) {
	if id, err := uuid.Parse(strings.TrimSpace(track.ID)); err == nil {
		return id.String(), nil
	}

	candidates, err := c.search(ctx, track)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("no musicbrainz recordings for %q: %w", track.Title, credits.ErrNotFound)
	}

	best, bestScore := candidates[0], score(track, candidates[0])
	for _, cand := range candidates[1:] {
		if s := score(track, cand); s > bestScore {
			best, bestScore = cand, s
		}
	}

	c.logger.Debug("  Best recording: %q by %q (confidence: %.2f)", best.Title, joinArtistCredits(best.ArtistCredit), bestScore)
	if bestScore < minRecordingScore {
		return "", fmt.Errorf("best recording %q scored %.2f: %w", best.Title, bestScore, credits.ErrNotFound)
	}
	return best.ID, nil
}

// search queries the MusicBrainz recording search API.
func (c *Client) search(ctx context.Context, track credits.Track) ([]recording, error) {
	q := buildQuery(track)
	if q == "" {
		return nil, nil
	}

	reqURL := fmt.Sprintf("%s/recording?query=%s&fmt=json&limit=%d", c.apiURL, url.QueryEscape(q), searchResultsPerHit)
	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, wrapLookupErr("musicbrainz search", err)
	}

	var searchResp searchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, credits.Transport("musicbrainz search", fmt.Errorf("failed to decode musicbrainz response: %w", err))
	}
	return searchResp.Recordings, nil
}

// lookup fetches one entity with the given inc parameters. Responses are
// memoized per URL.
func (c *Client) lookup(ctx context.Context, path, inc string, out interface{}) error {
	reqURL := fmt.Sprintf("%s/%s?inc=%s&fmt=json", c.apiURL, path, inc)
	body, ok := c.lookups.Get(reqURL)
	if !ok {
		var err error
		body, err = c.get(ctx, reqURL)
		if err != nil {
			return err
		}
		c.lookups.Add(reqURL, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode musicbrainz %s: %w", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create musicbrainz request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("musicbrainz request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("musicbrainz returned %d: %s", resp.StatusCode, body)
	}
	return io.ReadAll(resp.Body)
}

// doWithRetry executes the request, retrying once on 429/503 after the
// advertised Retry-After delay.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
		resp.Body.Close()
		retryAfter := defaultRetryAfter
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if parsed, err := strconv.Atoi(ra); err == nil {
				retryAfter = parsed
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(retryAfter) * time.Second):
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return c.httpClient.Do(req.Clone(ctx))
	}

	return resp, nil
}

// wrapLookupErr maps a missing entity to credits.ErrNotFound and everything
// else to a transport failure.
func wrapLookupErr(op string, err error) error {
	if errors.Is(err, errNotFound) {
		return fmt.Errorf("%s: %w", op, credits.ErrNotFound)
	}
	return credits.Transport(op, err)
}

func buildQuery(track credits.Track) string {
	var parts []string
	if track.Title != "" {
		parts = append(parts, fmt.Sprintf("recording:%q", track.Title))
	}
	if track.Artist != "" {
		parts = append(parts, fmt.Sprintf("artist:%q", track.Artist))
	}
	if track.Album != "" {
		parts = append(parts, fmt.Sprintf("release:%q", track.Album))
	}
	return strings.Join(parts, " AND ")
}

// score computes a similarity score (0.0-1.0) between the track and a
// recording search hit.
func score(track credits.Track, rec recording) float64 {
	titleScore := textmatch.Similarity(textmatch.Normalize(track.Title), textmatch.Normalize(rec.Title))
	if track.Artist == "" {
		return titleScore
	}
	artistScore := textmatch.Similarity(textmatch.Normalize(track.Artist), textmatch.Normalize(joinArtistCredits(rec.ArtistCredit)))
	if track.Album == "" || len(rec.Releases) == 0 {
		// Weight: 60% title, 40% artist
		return titleScore*0.6 + artistScore*0.4
	}

	albumScore := 0.0
	for _, rel := range rec.Releases {
		if s := textmatch.Similarity(textmatch.Normalize(track.Album), textmatch.Normalize(rel.Title)); s > albumScore {
			albumScore = s
		}
	}
	// Weight: 50% title, 30% artist, 20% album
	return titleScore*0.5 + artistScore*0.3 + albumScore*0.2
}

func joinArtistCredits(ac []artistCredit) string {
	var parts []string
	for _, a := range ac {
		parts = append(parts, a.Artist.Name)
	}
	return strings.Join(parts, ", ")
}

// pickBestRelease selects the release whose credits apply to the track.
// Prefers: matching album title, Official status, Album type, no secondary
// types (not Compilation), earliest date.
func pickBestRelease(releases []release, album string) release {
	best := releases[0]
	bestScore := releaseScore(best, album)

	for _, rel := range releases[1:] {
		s := releaseScore(rel, album)
		if s > bestScore || (s == bestScore && rel.Date != "" && (best.Date == "" || rel.Date < best.Date)) {
			best = rel
			bestScore = s
		}
	}
	return best
}

func releaseScore(rel release, album string) int {
	score := 0

	if album != "" && textmatch.Normalize(rel.Title) == textmatch.Normalize(album) {
		score += 8
	}

	if rel.Status == "Official" {
		score += 4
	}

	if rel.ReleaseGroup.PrimaryType == "Album" {
		score += 2
	}

	if len(rel.ReleaseGroup.SecondaryTypes) == 0 {
		score += 1
	}

	return score
}

// MusicBrainz API response types

type searchResponse struct {
	Recordings []recording `json:"recordings"`
}

type recording struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	ArtistCredit []artistCredit `json:"artist-credit"`
	Releases     []release      `json:"releases"`
}

type recordingLookup struct {
	credits.Recording
	Releases []release `json:"releases"`
}

type entityLookup struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Relations []credits.Relation `json:"relations"`
}

type artistCredit struct {
	Artist credits.Artist `json:"artist"`
}

type release struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Status       string       `json:"status"`
	Date         string       `json:"date"`
	ReleaseGroup releaseGroup `json:"release-group"`
}

type releaseGroup struct {
	PrimaryType    string   `json:"primary-type"`
	SecondaryTypes []string `json:"secondary-types"`
}
