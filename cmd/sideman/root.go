package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jacogrande/sideman-sub001/internal/cache"
	"github.com/jacogrande/sideman-sub001/internal/config"
	"github.com/jacogrande/sideman-sub001/internal/logger"
	"github.com/jacogrande/sideman-sub001/internal/lookup"
)

// app carries what every subcommand shares once flags are parsed.
type app struct {
	configPath string
	backend    string
	verbose    bool

	cfg config.Config
	log *logger.Logger
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "sideman",
		Short: "Show who played, produced and wrote the song you are listening to",
		Long: "sideman resolves track credits from Wikipedia album articles and MusicBrainz\n" +
			"relationships, caches them on disk and serves them to a now-playing view.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				a.log.Close()
			}
		},
		SilenceErrors:     true,
		SilenceUsage:      true,
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to config file")
	root.PersistentFlags().StringVarP(&a.backend, "backend", "b", "", "Credits backend: wikipedia, musicbrainz or hybrid")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Increase diagnostic output")

	root.AddCommand(newLookupCommand(a))
	root.AddCommand(newNowCommand(a))
	root.AddCommand(newServeCommand(a))
	root.AddCommand(newCacheCommand(a))
	root.AddCommand(newInitConfigCommand(a))

	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.backend != "" {
		cfg.Backend = a.backend
	}
	if a.verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	a.cfg = cfg

	a.log = logger.NewWithWriter(cfg.Verbose, cmd.ErrOrStderr())
	if path := a.configPath; path != "" {
		a.log.Debug("Loaded configuration from: %s", path)
	} else if path := config.FindConfigFile(); path != "" {
		a.log.Debug("Loaded configuration from: %s", path)
	}
	return nil
}

func (a *app) setupFileLog() {
	logDir := config.GetDefaultLogPath()
	if err := os.MkdirAll(logDir, 0755); err != nil {
		a.log.Warn("Failed to create log directory: %v", err)
		return
	}
	logFile := filepath.Join(logDir, fmt.Sprintf("sideman_%s.log", time.Now().Format("2006-01-02_15-04-05")))
	if err := a.log.SetFileLog(logFile); err != nil {
		a.log.Warn("Failed to setup file logging: %v", err)
		return
	}
	a.log.Debug("Logging to file: %s", logFile)
}

// openCache opens the credits cache. A damaged file is reported and
// replaced on the next write.
func (a *app) openCache() *cache.Cache {
	c, err := cache.Open(a.cfg.CachePath)
	if err != nil {
		a.log.Warn("Discarding credits cache: %v", err)
	}
	return c
}

func (a *app) newService() *lookup.Service {
	backend := a.cfg.CreditsBackend()
	provider := lookup.BuildProvider(backend, lookup.ProviderOptions{
		WikipediaAPIURL:    a.cfg.WikipediaAPIURL,
		MusicBrainzAPIURL:  a.cfg.MusicBrainzAPIURL,
		UserAgent:          a.cfg.UserAgent,
		SearchLimit:        a.cfg.SearchLimit,
		AmbiguityThreshold: a.cfg.AmbiguityThreshold,
	}, a.log)
	ttls := lookup.TTLs{
		Loaded:   a.cfg.LoadedTTL,
		NotFound: a.cfg.NotFoundTTL,
		Error:    a.cfg.ErrorTTL,
	}
	a.log.Debug("Credits backend: %s", backend)
	return lookup.NewService(backend, provider, a.openCache(), ttls, a.log)
}
