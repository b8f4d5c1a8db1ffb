package credits

import (
	"sort"
	"strings"
)

// Target kinds of a relationship record.
const (
	TargetArtist = "artist"
	TargetWork   = "work"
)

// Relation is one structured relationship record, shaped after the
// MusicBrainz relationship graph.
type Relation struct {
	Type       string   `json:"type"`
	TargetType string   `json:"target-type"`
	Attributes []string `json:"attributes"`
	Artist     *Artist  `json:"artist,omitempty"`
	Work       *Work    `json:"work,omitempty"`
}

// Artist is a person or group referenced by a relation.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Work is a composition referenced by a relation.
type Work struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Recording is a recording together with its relationship list.
type Recording struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Relations []Relation `json:"relations"`
}

// MapRelations converts artist relations into classified entries. Relations
// without a linked artist (work links, malformed records) are skipped.
func MapRelations(relations []Relation, level SourceLevel) []CreditEntry {
	var entries []CreditEntry
	for _, rel := range relations {
		if rel.Artist == nil || strings.TrimSpace(rel.Artist.Name) == "" {
			continue
		}
		if rel.TargetType != "" && rel.TargetType != TargetArtist {
			continue
		}
		role := strings.TrimSpace(rel.Type)
		entries = append(entries, CreditEntry{
			PersonName: strings.TrimSpace(rel.Artist.Name),
			PersonID:   rel.Artist.ID,
			Role:       role,
			Group:      Classify(role),
			Source:     level,
			Instrument: strings.Join(rel.Attributes, ", "),
		})
	}
	return entries
}

// FromRawRecords classifies parsed raw records.
func FromRawRecords(records []RawCreditRecord) []CreditEntry {
	entries := make([]CreditEntry, 0, len(records))
	for _, r := range records {
		// Classify on the instrument too, so "instrument (guitar)" and a bare
		// "guitar" land in the same group.
		group := Classify(r.Role)
		if group == GroupOther && r.Instrument != "" {
			group = Classify(r.Instrument)
		}
		entries = append(entries, CreditEntry{
			PersonName: r.PersonName,
			PersonID:   r.PersonID,
			Role:       r.Role,
			Group:      group,
			Source:     r.Source,
			Instrument: r.Instrument,
			Tracks:     r.Tracks,
		})
	}
	return entries
}

// MergeWithPrecedence keeps one entry per (person, normalized role), preferring
// recording over release over markup. On a tie the first entry seen wins.
// Surviving entries keep the position their group was first seen at.
func MergeWithPrecedence(entries []CreditEntry) []CreditEntry {
	index := make(map[string]int, len(entries))
	var out []CreditEntry
	for _, e := range entries {
		key := mergeKey(e)
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, e)
			continue
		}
		if e.Source.rank() > out[i].Source.rank() {
			out[i] = e
		}
	}
	return out
}

func mergeKey(e CreditEntry) string {
	role := e.Instrument
	if strings.TrimSpace(role) == "" {
		role = e.Role
	}
	return normalizeKey(e.PersonName) + "\x00" + normalizeKey(role)
}

func normalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ExtractWorkIDs returns the unique work identifiers linked from a recording,
// sorted for stable output.
func ExtractWorkIDs(rec Recording) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, rel := range rec.Relations {
		if rel.Work == nil || rel.Work.ID == "" {
			continue
		}
		if rel.TargetType != "" && rel.TargetType != TargetWork {
			continue
		}
		if seen[rel.Work.ID] {
			continue
		}
		seen[rel.Work.ID] = true
		ids = append(ids, rel.Work.ID)
	}
	sort.Strings(ids)
	return ids
}

// GroupEntries builds a bundle from merged entries.
func GroupEntries(entries []CreditEntry) *CreditsBundle {
	b := &CreditsBundle{Groups: make(map[RoleGroup][]CreditEntry)}
	levels := make(map[SourceLevel]bool)
	for _, e := range entries {
		if e.Group == "" {
			e.Group = Classify(e.Role)
		}
		b.Groups[e.Group] = append(b.Groups[e.Group], e)
		levels[e.Source] = true
	}
	for _, l := range []SourceLevel{SourceRecording, SourceRelease, SourceMarkup} {
		if levels[l] {
			b.Sources = append(b.Sources, l)
		}
	}
	return b
}
