package credits

import "strings"

// Backend selects which providers resolve credits.
type Backend string

const (
	BackendWikipedia            Backend = "wikipedia"
	BackendMusicBrainz          Backend = "musicbrainz"
	BackendWikipediaMusicBrainz Backend = "wikipedia_then_musicbrainz"
)

// ParseBackend maps a setting value to a Backend. "hybrid" is an alias of
// wikipedia_then_musicbrainz; empty or unrecognized values select wikipedia.
func ParseBackend(s string) Backend {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "musicbrainz", "mb":
		return BackendMusicBrainz
	case "wikipedia_then_musicbrainz", "hybrid":
		return BackendWikipediaMusicBrainz
	default:
		return BackendWikipedia
	}
}

// ValidBackend reports whether s names a backend explicitly.
func ValidBackend(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wikipedia", "musicbrainz", "mb", "wikipedia_then_musicbrainz", "hybrid":
		return true
	}
	return false
}
