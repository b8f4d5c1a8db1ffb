package credits

import (
	"context"

	"github.com/jacogrande/sideman-sub001/internal/logger"
)

// ChainProvider queries providers in order and merges everything they return.
// Earlier providers fill page metadata first; entries from all providers go
// through MergeWithPrecedence so structured data beats free text.
type ChainProvider struct {
	providers []Provider
	logger    *logger.Logger
}

// NewChainProvider creates a ChainProvider that queries providers in order.
func NewChainProvider(providers []Provider, log *logger.Logger) *ChainProvider {
	return &ChainProvider{providers: providers, logger: log}
}

func (c *ChainProvider) Name() string { return "chain" }

// LookupCredits returns the merged bundle, or the first provider's error when
// no provider produced any credits.
func (c *ChainProvider) LookupCredits(ctx context.Context, track Track) (*CreditsBundle, error) {
	var (
		entries  []CreditEntry
		merged   CreditsBundle
		firstErr error
	)
	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, err := p.LookupCredits(ctx, track)
		if err != nil {
			c.logger.Debug("provider %s failed: %v", p.Name(), err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if b.Len() == 0 {
			continue
		}
		entries = append(entries, b.Entries()...)
		if merged.RecordingMBID == "" {
			merged.RecordingMBID = b.RecordingMBID
		}
		if merged.PageURL == "" {
			merged.PageTitle = b.PageTitle
			merged.PageURL = b.PageURL
		}
	}

	if len(entries) == 0 {
		if firstErr == nil {
			firstErr = ErrNotFound
		}
		return nil, firstErr
	}

	out := GroupEntries(MergeWithPrecedence(entries))
	out.RecordingMBID = merged.RecordingMBID
	out.PageTitle = merged.PageTitle
	out.PageURL = merged.PageURL
	return out, nil
}
