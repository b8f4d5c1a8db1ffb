package nowplaying

import (
	"context"
	"time"

	"github.com/jacogrande/sideman-sub001/internal/credits"
	"github.com/jacogrande/sideman-sub001/internal/logger"
)

// Watcher polls a Source and reports track changes.
type Watcher struct {
	source   Source
	interval time.Duration
	logger   *logger.Logger
}

// NewWatcher creates a Watcher polling every interval.
func NewWatcher(src Source, interval time.Duration, log *logger.Logger) *Watcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Watcher{source: src, interval: interval, logger: log}
}

// Run calls onChange with each newly playing track until ctx is done.
// Pauses and source errors keep the last track; resuming it does not
// report it again.
func (w *Watcher) Run(ctx context.Context, onChange func(credits.Track)) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var last credits.Track
	for {
		track, playing, err := w.source.Current(ctx)
		switch {
		case err != nil:
			if ctx.Err() == nil {
				w.logger.Warn("Now playing poll failed: %v", err)
			}
		case playing && track != last:
			last = track
			w.logger.Debug("Now playing: %q by %q", track.Title, track.Artist)
			onChange(track)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
