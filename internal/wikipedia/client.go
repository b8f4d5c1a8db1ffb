package wikipedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	lru "github.com/hashicorp/golang-lru/v2"
)

// SearchResult is one candidate page returned by a search.
type SearchResult struct {
	PageID  int
	Title   string
	Snippet string
}

// PageContent is the fetched wikitext of one page.
type PageContent struct {
	PageID   int
	Title    string
	URL      string
	Wikitext string
}

// Source is the search and fetch capability the resolver depends on.
type Source interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
	FetchPage(ctx context.Context, pageID int) (PageContent, error)
}

// ErrPageMissing is returned by FetchPage when the page id does not exist.
var ErrPageMissing = errors.New("wikipedia page not found")

const pageCacheSize = 64

// Client talks to the MediaWiki action API.
type Client struct {
	httpClient *http.Client
	apiURL     string
	userAgent  string
	pages      *lru.Cache[int, PageContent]
}

// NewClient creates a Client. Empty apiURL or userAgent select defaults.
func NewClient(apiURL, userAgent string) *Client {
	if apiURL == "" {
		apiURL = "https://en.wikipedia.org/w/api.php"
	}
	if userAgent == "" {
		userAgent = "sideman/1.0"
	}
	pages, _ := lru.New[int, PageContent](pageCacheSize)
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     apiURL,
		userAgent:  userAgent,
		pages:      pages,
	}
}

// Search runs a full-text search and returns results in ranking order.
// Snippets are returned as plain text.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", strconv.Itoa(limit))
	params.Set("format", "json")
	params.Set("formatversion", "2")

	var resp searchResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, fmt.Errorf("wikipedia search failed: %w", err)
	}

	results := make([]SearchResult, 0, len(resp.Query.Search))
	for _, r := range resp.Query.Search {
		results = append(results, SearchResult{
			PageID:  r.PageID,
			Title:   r.Title,
			Snippet: stripHTML(r.Snippet),
		})
	}
	return results, nil
}

// FetchPage returns the current wikitext of a page.
func (c *Client) FetchPage(ctx context.Context, pageID int) (PageContent, error) {
	if page, ok := c.pages.Get(pageID); ok {
		return page, nil
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "revisions|info")
	params.Set("rvprop", "content")
	params.Set("rvslots", "main")
	params.Set("inprop", "url")
	params.Set("pageids", strconv.Itoa(pageID))
	params.Set("format", "json")
	params.Set("formatversion", "2")

	var resp pageResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return PageContent{}, fmt.Errorf("wikipedia fetch failed: %w", err)
	}
	if len(resp.Query.Pages) == 0 || resp.Query.Pages[0].Missing || len(resp.Query.Pages[0].Revisions) == 0 {
		return PageContent{}, fmt.Errorf("page %d: %w", pageID, ErrPageMissing)
	}

	p := resp.Query.Pages[0]
	page := PageContent{
		PageID:   p.PageID,
		Title:    p.Title,
		URL:      p.FullURL,
		Wikitext: p.Revisions[0].Slots.Main.Content,
	}
	c.pages.Add(pageID, page)
	return page, nil
}

// get performs an API request, retrying once on transient network errors.
func (c *Client) get(ctx context.Context, params url.Values, out interface{}) error {
	err := c.doGet(ctx, params, out)
	if err == nil || !isTransient(err) {
		return err
	}

	select {
	case <-ctx.Done():
		return err
	case <-time.After(time.Second):
	}
	return c.doGet(ctx, params, out)
}

func isTransient(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}

func (c *Client) doGet(ctx context.Context, params url.Values, out interface{}) error {
	reqURL := fmt.Sprintf("%s?%s", c.apiURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create wikipedia request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("wikipedia returned %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode wikipedia response: %w", err)
	}
	return nil
}

// stripHTML removes the highlight markup MediaWiki puts in search snippets.
func stripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// MediaWiki API response types

type searchResponse struct {
	Query struct {
		Search []searchHit `json:"search"`
	} `json:"query"`
}

type searchHit struct {
	PageID  int    `json:"pageid"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

type pageResponse struct {
	Query struct {
		Pages []page `json:"pages"`
	} `json:"query"`
}

type page struct {
	PageID    int        `json:"pageid"`
	Title     string     `json:"title"`
	FullURL   string     `json:"fullurl"`
	Missing   bool       `json:"missing"`
	Revisions []revision `json:"revisions"`
}

type revision struct {
	Slots struct {
		Main struct {
			Content string `json:"content"`
		} `json:"main"`
	} `json:"slots"`
}
