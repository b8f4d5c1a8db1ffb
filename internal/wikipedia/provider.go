package wikipedia

import (
	"context"
	"fmt"

	"github.com/jacogrande/sideman-sub001/internal/credits"
	"github.com/jacogrande/sideman-sub001/internal/logger"
)

// Provider resolves credits from an album's Wikipedia article.
type Provider struct {
	resolver *Resolver
	logger   *logger.Logger
}

// NewProvider creates a Provider on top of a Resolver.
func NewProvider(r *Resolver, log *logger.Logger) *Provider {
	return &Provider{resolver: r, logger: log}
}

func (p *Provider) Name() string { return "wikipedia" }

// LookupCredits resolves the album page, parses its personnel section and
// returns the credits that apply to track.
func (p *Provider) LookupCredits(ctx context.Context, track credits.Track) (*credits.CreditsBundle, error) {
	page, err := p.resolver.Resolve(ctx, track)
	if err != nil {
		return nil, err
	}

	parsed := ParseWikitext(page.Content, track)
	p.logger.Debug("  Parsed %q: track %d, %d credits", page.Title, parsed.TrackNumber, len(parsed.Credits))
	if len(parsed.Credits) == 0 {
		return nil, fmt.Errorf("no personnel on %q: %w", page.Title, credits.ErrNotFound)
	}

	bundle := credits.GroupEntries(credits.MergeWithPrecedence(credits.FromRawRecords(parsed.Credits)))
	bundle.PageTitle = page.Content.Title
	bundle.PageURL = page.Content.URL
	return bundle, nil
}
