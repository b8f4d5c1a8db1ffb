package credits

import (
	"strings"
	"unicode"
)

// Keyword vocabularies, checked in priority order.
var roleVocabulary = []struct {
	group    RoleGroup
	keywords []string
}{
	{GroupMusicians, []string{
		"instrument", "vocal", "guitar", "bass", "drum", "drummer", "percussion", "keyboard",
		"piano", "synth", "synthesizer", "organ", "strings", "violin", "viola", "cello", "horn",
		"trumpet", "trombone", "saxophone", "flute", "clarinet", "banjo", "mandolin",
		"harmonica", "programming", "performer", "orchestra", "choir", "sampler",
	}},
	{GroupProduction, []string{"producer", "production", "executive producer"}},
	{GroupWriting, []string{"composer", "writer", "lyricist", "songwriter", "written", "arranger", "lyrics"}},
	{GroupEngineering, []string{"mix", "remix", "master", "remaster", "engineer", "recorded", "recording"}},
}

// Word endings a keyword may carry and still match ("guitarist", "mixing").
var keywordSuffixes = []string{"", "s", "es", "ist", "ists", "er", "ers", "ing", "ed", "al", "tion", "ation"}

// Classify maps a raw role label to a role group. Keywords match whole
// words, optionally inflected, so "organist" is a musician credit and
// "organizer" is not. Labels matching nothing fall into GroupOther.
func Classify(label string) RoleGroup {
	words := strings.FieldsFunc(strings.ToLower(label), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return GroupOther
	}
	for _, v := range roleVocabulary {
		for _, kw := range v.keywords {
			if containsKeyword(words, strings.Fields(kw)) {
				return v.group
			}
		}
	}
	return GroupOther
}

// containsKeyword reports whether kw appears as consecutive words, the last
// of which may be inflected.
func containsKeyword(words, kw []string) bool {
	last := len(kw) - 1
	for i := 0; i+last < len(words); i++ {
		ok := true
		for j := 0; j < last; j++ {
			if words[i+j] != kw[j] {
				ok = false
				break
			}
		}
		if ok && inflectionOf(words[i+last], kw[last]) {
			return true
		}
	}
	return false
}

func inflectionOf(word, kw string) bool {
	if !strings.HasPrefix(word, kw) {
		return false
	}
	rest := word[len(kw):]
	for _, suffix := range keywordSuffixes {
		if rest == suffix {
			return true
		}
	}
	return false
}
