package wikipedia

import (
	"regexp"
	"strings"
)

// Patterns to remove from player-reported titles before matching them
// against a track listing.
var titleCleanupPatterns = []*regexp.Regexp{
	// Dash suffixes ("Song - Remastered 2011", "Song - Live at X")
	regexp.MustCompile(`(?i)\s+[-–—]\s+(\d{4}\s+)?(digital\s+)?remaster(ed)?\b.*$`),
	regexp.MustCompile(`(?i)\s+[-–—]\s+(live|mono|stereo|demo|acoustic)\b.*$`),
	regexp.MustCompile(`(?i)\s+[-–—]\s+(single|album|radio|edit|original)\s*(version|edit|mix)?\s*$`),
	regexp.MustCompile(`(?i)\s+[-–—]\s+radio\s+edit\b.*$`),
	regexp.MustCompile(`(?i)\s+[-–—]\s+from\s+.*$`),

	// Parenthesized and bracketed suffixes
	regexp.MustCompile(`(?i)\s*[\(\[](\d{4}\s+)?(digital\s+)?remaster(ed)?[^\)\]]*[\)\]]`),
	regexp.MustCompile(`(?i)\s*[\(\[](live|mono|stereo|demo|bonus track)[^\)\]]*[\)\]]`),
	regexp.MustCompile(`(?i)\s*[\(\[](single|album|radio)\s+(version|edit)[\)\]]`),
}

// Pattern for featured artists in the title
var featuringPattern = regexp.MustCompile(`(?i)\s*[\(\[]\s*(?:feat\.?|ft\.?|featuring|with)\s+([^\)\]]+)[\)\]]`)

// NormalizeTitle strips release-specific decorations from a track title,
// leaving the name a track listing would use.
func NormalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return title
	}

	for _, p := range titleCleanupPatterns {
		title = p.ReplaceAllString(title, "")
	}
	title = featuringPattern.ReplaceAllString(title, "")

	return strings.TrimSpace(title)
}
