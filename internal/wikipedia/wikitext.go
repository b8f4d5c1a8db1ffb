package wikipedia

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jacogrande/sideman-sub001/internal/credits"
	"github.com/jacogrande/sideman-sub001/internal/textmatch"
)

// ParsedWikitext is what ParseWikitext extracts from a page.
type ParsedWikitext struct {
	// TrackNumber is the queried track's position, 0 when the track listing
	// could not be matched.
	TrackNumber int
	Credits     []credits.RawCreditRecord
}

var (
	headingPattern  = regexp.MustCompile(`^(={2,6})\s*(.*?)\s*={2,6}\s*$`)
	commentPattern  = regexp.MustCompile(`(?s)<!--.*?-->`)
	refPattern      = regexp.MustCompile(`(?is)<ref(?:\s[^>]*)?/>|<ref(?:\s[^>]*[^/>])?>.*?</ref>`)
	linkPattern     = regexp.MustCompile(`\[\[(?:[^\]|]*\|)?([^\]|]*)\]\]`)
	extLinkPattern  = regexp.MustCompile(`\[https?://\S+\s+([^\]]*)\]`)
	templatePattern = regexp.MustCompile(`\{\{[^{}]*\}\}`)
	htmlTagPattern  = regexp.MustCompile(`<[^>]+>`)

	templateTitlePattern = regexp.MustCompile(`(?i)\|\s*title(\d+)\s*=\s*([^|}\n]*)`)
	quotedTitlePattern   = regexp.MustCompile(`"([^"]+)"`)
	scopePattern         = regexp.MustCompile(`(?i)\s*\(\s*(?:on\s+)?(?:tracks?|songs?)\s+([^()]*)\)\s*$`)
	qualifierPattern     = regexp.MustCompile(`^(.*?)\s*\(([^()]*)\)$`)
	trackRangePattern    = regexp.MustCompile(`^(\d+)\s*[-–—]\s*(\d+)$`)
)

// personnel line separators, earliest match wins
var personSeparators = []string{" – ", " — ", " - ", ": ", "–", "—"}

// ParseWikitext extracts the queried track's number and the credits that
// apply to it. It never fails: unknown layouts yield fewer credits.
func ParseWikitext(page PageContent, track credits.Track) ParsedWikitext {
	text := refPattern.ReplaceAllString(commentPattern.ReplaceAllString(page.Wikitext, ""), "")
	sections := splitSections(text)

	var parsed ParsedWikitext
	if body, ok := findSection(sections, isTrackListingHeading); ok {
		parsed.TrackNumber = resolveTrackNumber(body, track.Title)
	}

	body, ok := findSection(sections, isPersonnelHeading)
	if !ok {
		return parsed
	}
	for _, rec := range parsePersonnel(body) {
		if rec.Global() || (parsed.TrackNumber > 0 && rec.AppliesTo(parsed.TrackNumber)) {
			parsed.Credits = append(parsed.Credits, rec)
		}
	}
	return parsed
}

type section struct {
	level int
	title string
	lines []string
}

// splitSections splits wikitext on headings. Text before the first heading
// becomes a level-0 section.
func splitSections(text string) []section {
	sections := []section{{}}
	for _, line := range strings.Split(text, "\n") {
		if m := headingPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			sections = append(sections, section{level: len(m[1]), title: m[2]})
			continue
		}
		cur := &sections[len(sections)-1]
		cur.lines = append(cur.lines, line)
	}
	return sections
}

// findSection returns the body of the first matching section, subsections
// included.
func findSection(sections []section, match func(string) bool) ([]string, bool) {
	for i, s := range sections {
		if s.level == 0 || !match(strings.ToLower(cleanMarkup(s.title))) {
			continue
		}
		body := append([]string(nil), s.lines...)
		for _, sub := range sections[i+1:] {
			if sub.level <= s.level {
				break
			}
			body = append(body, sub.lines...)
		}
		return body, true
	}
	return nil, false
}

func isTrackListingHeading(h string) bool {
	return strings.Contains(h, "track listing") || strings.Contains(h, "tracklist") ||
		strings.Contains(h, "track list") || h == "songs"
}

func isPersonnelHeading(h string) bool {
	return strings.Contains(h, "personnel") || strings.Contains(h, "credits") || h == "musicians"
}

type trackDialect struct {
	first  int
	titles map[int]string
}

// resolveTrackNumber matches title against the listing. Dialects are tried
// in order of appearance; within one, exact matches beat substring matches.
func resolveTrackNumber(body []string, title string) int {
	want := textmatch.Normalize(cleanMarkup(NormalizeTitle(title)))
	if want == "" {
		return 0
	}

	list := trackDialect{first: -1, titles: map[int]string{}}
	tmpl := trackDialect{first: -1, titles: map[int]string{}}
	position := 0
	for i, raw := range body {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "#:") {
			position++
			if name := listedTitle(strings.TrimLeft(line, "#")); name != "" {
				list.titles[position] = name
				if list.first < 0 {
					list.first = i
				}
			}
			continue
		}
		for _, m := range templateTitlePattern.FindAllStringSubmatch(linkPattern.ReplaceAllString(line, "$1"), -1) {
			n, err := strconv.Atoi(m[1])
			name := textmatch.Normalize(cleanMarkup(m[2]))
			if err != nil || n <= 0 || name == "" {
				continue
			}
			if _, dup := tmpl.titles[n]; !dup {
				tmpl.titles[n] = name
			}
			if tmpl.first < 0 {
				tmpl.first = i
			}
		}
	}

	dialects := []trackDialect{list, tmpl}
	if tmpl.first >= 0 && (list.first < 0 || tmpl.first < list.first) {
		dialects = []trackDialect{tmpl, list}
	}
	for _, d := range dialects {
		if n := matchTitle(d.titles, want); n > 0 {
			return n
		}
	}
	return 0
}

func listedTitle(line string) string {
	line = strings.TrimSpace(line)
	if m := quotedTitlePattern.FindStringSubmatch(line); m != nil {
		return textmatch.Normalize(cleanMarkup(m[1]))
	}
	line = cleanMarkup(line)
	for _, sep := range []string{" – ", " — ", " - "} {
		if i := strings.Index(line, sep); i > 0 {
			line = line[:i]
			break
		}
	}
	return textmatch.Normalize(line)
}

func matchTitle(titles map[int]string, want string) int {
	best := 0
	for n, name := range titles {
		if name == want && (best == 0 || n < best) {
			best = n
		}
	}
	if best > 0 {
		return best
	}
	for n, name := range titles {
		if (strings.Contains(name, want) || strings.Contains(want, name)) && (best == 0 || n < best) {
			best = n
		}
	}
	return best
}

// parsePersonnel emits one record per role phrase of each entry line.
// List markers are optional; unmarked lines must name a short person.
func parsePersonnel(body []string) []credits.RawCreditRecord {
	var records []credits.RawCreditRecord
	for _, raw := range body {
		line := strings.TrimSpace(raw)
		if line == "" || isTableOrTemplateLine(line) {
			continue
		}
		listed := strings.ContainsRune("*#:", rune(line[0]))
		line = cleanMarkup(strings.TrimLeft(line, "*#: "))
		person, rest, ok := splitPerson(line)
		if !ok || (!listed && len(strings.Fields(person)) > maxUnlistedNameWords) {
			continue
		}

		var lineTracks []int
		if tracks, stripped, ok := trailingScope(rest); ok {
			lineTracks = tracks
			rest = stripped
		}

		for _, phrase := range splitRoles(rest) {
			tracks := lineTracks
			if t, stripped, ok := trailingScope(phrase); ok {
				tracks = t
				phrase = stripped
			}
			role, instrument := splitQualifier(phrase)
			if role == "" {
				continue
			}
			records = append(records, credits.RawCreditRecord{
				PersonName: person,
				Role:       role,
				Instrument: instrument,
				Tracks:     tracks,
				Source:     credits.SourceMarkup,
			})
		}
	}
	return records
}

const maxUnlistedNameWords = 5

func isTableOrTemplateLine(line string) bool {
	for _, p := range []string{"{|", "|", "!", "{{", "}}", "[[File:", "[[Image:"} {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

func splitPerson(line string) (string, string, bool) {
	idx, sepLen := -1, 0
	for _, sep := range personSeparators {
		if i := strings.Index(line, sep); i > 0 && (idx < 0 || i < idx) {
			idx, sepLen = i, len(sep)
		}
	}
	if idx < 0 {
		return "", "", false
	}
	person := strings.TrimSpace(line[:idx])
	rest := strings.TrimSpace(line[idx+sepLen:])
	if person == "" || rest == "" || len(person) > 80 {
		return "", "", false
	}
	return person, rest, true
}

// trailingScope parses a trailing "(track 2)" / "(tracks 1, 3–5)".
func trailingScope(s string) ([]int, string, bool) {
	m := scopePattern.FindStringSubmatchIndex(s)
	if m == nil {
		return nil, s, false
	}
	tracks := parseTrackNumbers(s[m[2]:m[3]])
	if len(tracks) == 0 {
		return nil, s, false
	}
	return tracks, strings.TrimSpace(s[:m[0]]), true
}

func parseTrackNumbers(s string) []int {
	s = strings.NewReplacer(" and ", ",", "&", ",", ";", ",").Replace(s)
	seen := map[int]bool{}
	var out []int
	add := func(n int) {
		if n > 0 && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if m := trackRangePattern.FindStringSubmatch(part); m != nil {
			lo, _ := strconv.Atoi(m[1])
			hi, _ := strconv.Atoi(m[2])
			if hi-lo > 50 {
				continue
			}
			for n := lo; n <= hi; n++ {
				add(n)
			}
			continue
		}
		if n, err := strconv.Atoi(part); err == nil {
			add(n)
		}
	}
	return out
}

// splitRoles splits on commas, semicolons and " and " outside parentheses.
func splitRoles(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',', ';':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		case ' ':
			if depth == 0 && strings.HasPrefix(s[i:], " and ") {
				parts = append(parts, s[start:i])
				start = i + len(" and ")
				i += len(" and ") - 1
			}
		}
	}
	parts = append(parts, s[start:])

	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitQualifier splits "instrument (guitar)" into role and instrument.
func splitQualifier(phrase string) (string, string) {
	phrase = strings.TrimSpace(phrase)
	m := qualifierPattern.FindStringSubmatch(phrase)
	if m == nil {
		return phrase, ""
	}
	role, inner := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	if role == "" {
		return inner, ""
	}
	return role, inner
}

var markupReplacer = strings.NewReplacer(
	"'''", "", "''", "",
	"&nbsp;", " ", "&amp;", "&",
	"[[", "", "]]", "", "{{", "", "}}", "",
)

// cleanMarkup reduces wiki markup to plain text.
func cleanMarkup(s string) string {
	s = linkPattern.ReplaceAllString(s, "$1")
	s = extLinkPattern.ReplaceAllString(s, "$1")
	for i := 0; i < 4 && strings.Contains(s, "{{"); i++ {
		s = templatePattern.ReplaceAllStringFunc(s, templateText)
	}
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = markupReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// templateText keeps the visible text of inline templates such as
// {{nowrap|John Smith}} and drops everything else.
func templateText(t string) string {
	inner := strings.TrimSuffix(strings.TrimPrefix(t, "{{"), "}}")
	parts := strings.Split(inner, "|")
	name := strings.ToLower(strings.TrimSpace(parts[0]))
	switch name {
	case "nowrap", "nobr", "small", "sic", "lang":
		if len(parts) > 1 {
			return parts[len(parts)-1]
		}
	}
	return ""
}
