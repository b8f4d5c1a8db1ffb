package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/jacogrande/sideman-sub001/internal/credits"
	"github.com/jacogrande/sideman-sub001/internal/nowplaying"
	"github.com/jacogrande/sideman-sub001/internal/shutdown"
)

func newNowCommand(a *app) *cobra.Command {
	var (
		watch bool
		file  string
	)

	cmd := &cobra.Command{
		Use:   "now",
		Short: "Show the credits of the track Spotify is playing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src := nowPlayingSource(file)
			svc := a.newService()

			sh := shutdown.New()
			sh.Listen()

			show := func(track credits.Track) {
				state, bundle := svc.ResolveCredits(sh.Context(), track)
				if sh.Context().Err() != nil {
					return
				}
				if err := renderCredits(cmd.OutOrStdout(), track, state, bundle); err != nil {
					a.log.Warn("Failed to print credits: %v", err)
				}
			}

			if !watch {
				track, playing, err := src.Current(sh.Context())
				if err != nil {
					return err
				}
				if !playing {
					a.log.Info("Nothing is playing")
					return nil
				}
				show(track)
				return nil
			}

			a.log.Info("Watching now playing (Ctrl+C to stop)")
			err := nowplaying.NewWatcher(src, a.cfg.PollInterval, a.log).Run(sh.Context(), show)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep running and show credits on every track change")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Use an audio file instead of Spotify")

	return cmd
}

func nowPlayingSource(file string) nowplaying.Source {
	if file != "" {
		return nowplaying.FileSource{Path: file}
	}
	return nowplaying.NewSpotifySource()
}
