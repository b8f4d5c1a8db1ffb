package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/jacogrande/sideman-sub001/internal/nowplaying"
	"github.com/jacogrande/sideman-sub001/internal/shutdown"
	"github.com/jacogrande/sideman-sub001/internal/web"
)

func newServeCommand(a *app) *cobra.Command {
	var (
		port  int
		file  string
		noNow bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve credits over HTTP and stream now-playing credits over WebSocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == 0 {
				port = a.cfg.Port
			}
			if !a.cfg.Verbose {
				a.setupFileLog()
			}

			sh := shutdown.New()
			sh.Listen()

			hub := web.NewHub()
			server := web.NewServer(sh.Context(), a.newService(), hub, a.log)

			httpServer := &http.Server{
				Addr:         fmt.Sprintf(":%d", port),
				Handler:      server.Router(),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			if !noNow {
				watcher := nowplaying.NewWatcher(nowPlayingSource(file), a.cfg.PollInterval, a.log)
				sh.Add(1)
				go func() {
					defer sh.Done()
					watcher.Run(sh.Context(), server.TrackChanged)
				}()
			}

			sh.AddCleanup(func() {
				a.log.Info("Shutting down server...")
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(ctx); err != nil {
					a.log.Error("Server shutdown error: %v", err)
				}
			})

			a.log.Info("Starting web server on port %d", port)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				sh.Shutdown()
				sh.Wait()
				return fmt.Errorf("server error: %w", err)
			}

			sh.Wait()
			a.log.Info("Server stopped")
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP server port (default from config)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Follow an audio file instead of Spotify")
	cmd.Flags().BoolVar(&noNow, "no-now-playing", false, "Serve lookups only, without following a player")

	return cmd
}
