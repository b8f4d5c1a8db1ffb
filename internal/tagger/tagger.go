// Package tagger writes resolved credits into audio file tags.
package tagger

import (
	"fmt"
	"strings"

	"go.senan.xyz/taglib"

	"github.com/jacogrande/sideman-sub001/internal/credits"
)

// Property keys for credit tags.
const (
	KeyComposer  = "COMPOSER"
	KeyLyricist  = "LYRICIST"
	KeyArranger  = "ARRANGER"
	KeyProducer  = "PRODUCER"
	KeyEngineer  = "ENGINEER"
	KeyMixer     = "MIXER"
	KeyPerformer = "PERFORMER"
)

// WriteCredits writes bundle into the audio file at path. Tags without
// credits are left untouched.
func WriteCredits(path string, bundle *credits.CreditsBundle) (map[string][]string, error) {
	tags := CreditTags(bundle)
	if len(tags) == 0 {
		return tags, nil
	}
	if err := taglib.WriteTags(path, tags, 0); err != nil {
		return nil, fmt.Errorf("failed to write tags to %s: %w", path, err)
	}
	return tags, nil
}

// CreditTags maps credits to tag values. Performers carry their instrument
// as "Name (instrument)".
func CreditTags(bundle *credits.CreditsBundle) map[string][]string {
	tags := make(map[string][]string)
	if bundle == nil {
		return tags
	}

	add := func(key, value string) {
		for _, v := range tags[key] {
			if strings.EqualFold(v, value) {
				return
			}
		}
		tags[key] = append(tags[key], value)
	}

	for _, e := range bundle.Entries() {
		role := strings.ToLower(e.Role)
		switch e.Group {
		case credits.GroupMusicians:
			instrument := e.Instrument
			if instrument == "" && role != "instrument" && role != "performer" {
				instrument = e.Role
			}
			if instrument != "" {
				add(KeyPerformer, fmt.Sprintf("%s (%s)", e.PersonName, instrument))
			} else {
				add(KeyPerformer, e.PersonName)
			}
		case credits.GroupProduction:
			add(KeyProducer, e.PersonName)
		case credits.GroupWriting:
			switch {
			case strings.Contains(role, "lyric"):
				add(KeyLyricist, e.PersonName)
			case strings.Contains(role, "arrang"):
				add(KeyArranger, e.PersonName)
			default:
				add(KeyComposer, e.PersonName)
			}
		case credits.GroupEngineering:
			if strings.Contains(role, "mix") {
				add(KeyMixer, e.PersonName)
			} else {
				add(KeyEngineer, e.PersonName)
			}
		}
	}
	return tags
}
