// Package nowplaying reports the track a player is currently playing.
package nowplaying

import (
	"context"

	"github.com/jacogrande/sideman-sub001/internal/credits"
)

// Source reports the current track. playing is false when nothing plays;
// the track is then zero.
type Source interface {
	Current(ctx context.Context) (track credits.Track, playing bool, err error)
}
