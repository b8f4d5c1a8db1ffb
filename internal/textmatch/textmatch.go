// Package textmatch holds the fuzzy string comparisons used to score search
// candidates against a track.
package textmatch

import (
	"strings"
	"unicode"
)

// Normalize lowercases and strips non-alphanumeric characters for comparison.
// Dashes, slashes and commas become word breaks.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r):
			b.WriteRune(r)
		case r == '-' || r == '–' || r == '—' || r == '/' || r == ',':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokens splits a normalized string into words.
func Tokens(s string) []string {
	return strings.Fields(s)
}

// Similarity returns how similar two normalized strings are (0.0-1.0).
// Uses both token overlap and compact string comparison to handle cases
// like "okcomputer" vs "ok computer".
func Similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	if strings.ReplaceAll(a, " ", "") == strings.ReplaceAll(b, " ", "") {
		return 1.0
	}

	tokensA := Tokens(a)
	tokensB := Tokens(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0.0
	}

	setB := make(map[string]bool, len(tokensB))
	for _, t := range tokensB {
		setB[t] = true
	}

	matches := 0
	for _, t := range tokensA {
		if setB[t] {
			matches++
		}
	}

	maxLen := len(tokensA)
	if len(tokensB) > maxLen {
		maxLen = len(tokensB)
	}
	return float64(matches) / float64(maxLen)
}

// Coverage returns the fraction of distinct want tokens present in have.
func Coverage(want, have []string) float64 {
	if len(want) == 0 {
		return 0.0
	}
	haveSet := make(map[string]bool, len(have))
	for _, t := range have {
		haveSet[t] = true
	}
	seen := make(map[string]bool, len(want))
	found := 0
	for _, t := range want {
		if seen[t] {
			continue
		}
		seen[t] = true
		if haveSet[t] {
			found++
		}
	}
	return float64(found) / float64(len(seen))
}
