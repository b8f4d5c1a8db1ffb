package credits

import (
	"context"
	"strings"
)

// Track identifies a playing song.
type Track struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
}

// Empty reports whether the track carries nothing to search for.
func (t Track) Empty() bool {
	return strings.TrimSpace(t.Title) == "" && strings.TrimSpace(t.Album) == ""
}

// RoleGroup is a coarse credit category.
type RoleGroup string

const (
	GroupMusicians   RoleGroup = "musicians"
	GroupProduction  RoleGroup = "production"
	GroupWriting     RoleGroup = "writing"
	GroupEngineering RoleGroup = "engineering"
	GroupOther       RoleGroup = "other"
)

// AllGroups lists role groups in display order.
var AllGroups = []RoleGroup{GroupMusicians, GroupProduction, GroupWriting, GroupEngineering, GroupOther}

// SourceLevel records which upstream layer a credit came from.
type SourceLevel string

const (
	SourceRecording SourceLevel = "recording"
	SourceRelease   SourceLevel = "release"
	SourceMarkup    SourceLevel = "markup"
)

// rank orders source levels by precedence; higher wins.
func (s SourceLevel) rank() int {
	switch s {
	case SourceRecording:
		return 3
	case SourceRelease:
		return 2
	case SourceMarkup:
		return 1
	}
	return 0
}

// RawCreditRecord is an unclassified person/role fact. Tracks is nil for
// credits that apply to the whole release.
type RawCreditRecord struct {
	PersonName string
	PersonID   string
	Role       string
	Instrument string
	Tracks     []int
	Source     SourceLevel
}

// Global reports whether the record applies to every track.
func (r RawCreditRecord) Global() bool { return len(r.Tracks) == 0 }

// AppliesTo reports whether the record covers the given track number.
func (r RawCreditRecord) AppliesTo(track int) bool {
	if r.Global() {
		return true
	}
	for _, n := range r.Tracks {
		if n == track {
			return true
		}
	}
	return false
}

// CreditEntry is a classified credit.
type CreditEntry struct {
	PersonName string      `json:"person_name"`
	PersonID   string      `json:"person_id,omitempty"`
	Role       string      `json:"role"`
	Group      RoleGroup   `json:"group"`
	Source     SourceLevel `json:"source"`
	Instrument string      `json:"instrument,omitempty"`
	Tracks     []int       `json:"tracks,omitempty"`
}

// CreditsBundle is the resolved output for one track.
type CreditsBundle struct {
	Groups        map[RoleGroup][]CreditEntry `json:"groups"`
	Sources       []SourceLevel               `json:"sources"`
	RecordingMBID string                      `json:"recording_mbid,omitempty"`
	PageTitle     string                      `json:"page_title,omitempty"`
	PageURL       string                      `json:"page_url,omitempty"`
}

// Len returns the number of entries across all groups.
func (b *CreditsBundle) Len() int {
	if b == nil {
		return 0
	}
	n := 0
	for _, entries := range b.Groups {
		n += len(entries)
	}
	return n
}

// Entries flattens the bundle in group display order.
func (b *CreditsBundle) Entries() []CreditEntry {
	if b == nil {
		return nil
	}
	var out []CreditEntry
	for _, g := range AllGroups {
		out = append(out, b.Groups[g]...)
	}
	return out
}

// LookupState is the outcome of a credits lookup.
type LookupState string

const (
	StateLoading   LookupState = "loading"
	StateLoaded    LookupState = "loaded"
	StateNotFound  LookupState = "not_found"
	StateAmbiguous LookupState = "ambiguous"
	StateError     LookupState = "error"
)

// Provider resolves credits for a track from one or more upstream sources.
type Provider interface {
	Name() string
	LookupCredits(ctx context.Context, track Track) (*CreditsBundle, error)
}
