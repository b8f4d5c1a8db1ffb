package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jacogrande/sideman-sub001/internal/credits"
)

var groupTitles = map[credits.RoleGroup]string{
	credits.GroupMusicians:   "Musicians",
	credits.GroupProduction:  "Production",
	credits.GroupWriting:     "Writing",
	credits.GroupEngineering: "Engineering",
	credits.GroupOther:       "Other",
}

func renderCredits(w io.Writer, track credits.Track, state credits.LookupState, bundle *credits.CreditsBundle) error {
	fmt.Fprintf(w, "%s\n", describeTrack(track))

	switch state {
	case credits.StateLoaded:
	case credits.StateNotFound:
		fmt.Fprintln(w, "No credits found.")
		return nil
	case credits.StateAmbiguous:
		fmt.Fprintln(w, "Several album pages match equally well; no credits shown.")
		return nil
	case credits.StateError:
		fmt.Fprintln(w, "Credits lookup failed; it will be retried later.")
		return nil
	default:
		fmt.Fprintf(w, "State: %s\n", state)
		return nil
	}

	if bundle.PageURL != "" {
		fmt.Fprintf(w, "Source: %s\n", bundle.PageURL)
	}
	if bundle.RecordingMBID != "" {
		fmt.Fprintf(w, "Recording: https://musicbrainz.org/recording/%s\n", bundle.RecordingMBID)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, group := range credits.AllGroups {
		entries := bundle.Groups[group]
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(tw, "\n%s\n", groupTitles[group])
		for _, e := range entries {
			role := e.Role
			if e.Instrument != "" && !strings.EqualFold(e.Instrument, e.Role) {
				role = fmt.Sprintf("%s (%s)", e.Role, e.Instrument)
			}
			fmt.Fprintf(tw, "  %s\t%s\t[%s]\n", e.PersonName, role, e.Source)
		}
	}
	return tw.Flush()
}

func describeTrack(t credits.Track) string {
	var b strings.Builder
	b.WriteString(t.Title)
	if t.Title == "" {
		b.WriteString(t.Album)
	}
	if t.Artist != "" {
		b.WriteString(" by " + t.Artist)
	}
	if t.Album != "" && t.Title != "" {
		b.WriteString(" (" + t.Album + ")")
	}
	return b.String()
}
