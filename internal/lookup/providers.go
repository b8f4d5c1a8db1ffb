package lookup

import (
	"github.com/jacogrande/sideman-sub001/internal/credits"
	"github.com/jacogrande/sideman-sub001/internal/logger"
	"github.com/jacogrande/sideman-sub001/internal/provider/musicbrainz"
	"github.com/jacogrande/sideman-sub001/internal/wikipedia"
)

// ProviderOptions configures the upstream clients.
type ProviderOptions struct {
	WikipediaAPIURL    string
	MusicBrainzAPIURL  string
	UserAgent          string
	SearchLimit        int
	AmbiguityThreshold float64
}

// BuildProvider returns the provider for backend. The hybrid backend asks
// Wikipedia first and lets MusicBrainz supplement it.
func BuildProvider(backend credits.Backend, opts ProviderOptions, log *logger.Logger) credits.Provider {
	wiki := func() credits.Provider {
		client := wikipedia.NewClient(opts.WikipediaAPIURL, opts.UserAgent)
		resolver := wikipedia.NewResolver(client, log, opts.SearchLimit, opts.AmbiguityThreshold)
		return wikipedia.NewProvider(resolver, log)
	}
	mb := func() credits.Provider {
		return musicbrainz.New(opts.MusicBrainzAPIURL, opts.UserAgent, log)
	}

	switch backend {
	case credits.BackendMusicBrainz:
		return mb()
	case credits.BackendWikipediaMusicBrainz:
		return credits.NewChainProvider([]credits.Provider{wiki(), mb()}, log)
	default:
		return wiki()
	}
}
