package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jacogrande/sideman-sub001/internal/credits"
	"github.com/jacogrande/sideman-sub001/internal/nowplaying"
	"github.com/jacogrande/sideman-sub001/internal/shutdown"
	"github.com/jacogrande/sideman-sub001/internal/tagger"
)

type lookupOptions struct {
	track     credits.Track
	file      string
	json      bool
	writeTags bool
}

func newLookupCommand(a *app) *cobra.Command {
	var opts lookupOptions

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Resolve the credits of one track",
		Example: `  sideman lookup --title Concorde --artist "Black Country, New Road" --album "Ants from Up There"
  sideman lookup --file song.flac --write-tags`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, a, opts)
		},
	}

	cmd.Flags().StringVar(&opts.track.Title, "title", "", "Track title")
	cmd.Flags().StringVar(&opts.track.Artist, "artist", "", "Track artist")
	cmd.Flags().StringVar(&opts.track.Album, "album", "", "Album title")
	cmd.Flags().StringVar(&opts.track.ID, "id", "", "Player track id or MusicBrainz recording id")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read the track from an audio file's tags")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&opts.writeTags, "write-tags", false, "Write resolved credits into --file")

	return cmd
}

func runLookup(cmd *cobra.Command, a *app, opts lookupOptions) error {
	track := opts.track
	if opts.file != "" {
		fromFile, err := nowplaying.ReadTrack(opts.file)
		if err != nil {
			return err
		}
		track = mergeTrack(fromFile, track)
	}
	if track.Empty() {
		return fmt.Errorf("a title or album is required (use --title/--album or --file)")
	}
	if opts.writeTags && opts.file == "" {
		return fmt.Errorf("--write-tags requires --file")
	}

	sh := shutdown.New()
	sh.Listen()

	state, bundle := a.newService().ResolveCredits(sh.Context(), track)

	if opts.writeTags && state == credits.StateLoaded {
		tags, err := tagger.WriteCredits(opts.file, bundle)
		if err != nil {
			return err
		}
		a.log.Info("Wrote %d credit tags to %s", len(tags), opts.file)
	}

	out := cmd.OutOrStdout()
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(lookupResult{Track: track, State: state, Bundle: bundle})
	}
	return renderCredits(out, track, state, bundle)
}

type lookupResult struct {
	Track  credits.Track          `json:"track"`
	State  credits.LookupState    `json:"state"`
	Bundle *credits.CreditsBundle `json:"bundle,omitempty"`
}

// mergeTrack fills empty fields of explicit from base.
func mergeTrack(base, explicit credits.Track) credits.Track {
	if explicit.ID != "" {
		base.ID = explicit.ID
	}
	if explicit.Title != "" {
		base.Title = explicit.Title
	}
	if explicit.Artist != "" {
		base.Artist = explicit.Artist
	}
	if explicit.Album != "" {
		base.Album = explicit.Album
	}
	return base
}
