package nowplaying

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/jacogrande/sideman-sub001/internal/credits"
)

const spotifyScript = `if application "Spotify" is running then
	tell application "Spotify"
		set s to player state as string
		if s is "stopped" then return "stopped"
		set t to current track
		return s & linefeed & (id of t) & linefeed & (name of t) & linefeed & (artist of t) & linefeed & (album of t)
	end tell
end if
return "stopped"`

// SpotifySource asks the macOS Spotify app for its current track through
// osascript.
type SpotifySource struct {
	run func(ctx context.Context, script string) ([]byte, error)
}

// NewSpotifySource creates a SpotifySource.
func NewSpotifySource() *SpotifySource {
	return &SpotifySource{run: runOsascript}
}

func (s *SpotifySource) Current(ctx context.Context) (credits.Track, bool, error) {
	out, err := s.run(ctx, spotifyScript)
	if err != nil {
		return credits.Track{}, false, err
	}
	track, playing := decodePlayerState(string(out))
	return track, playing, nil
}

func runOsascript(ctx context.Context, script string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "osascript", "-e", script)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("osascript failed: %w\nDetails: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// decodePlayerState parses the script output: state, then id, title, artist
// and album on their own lines.
func decodePlayerState(out string) (credits.Track, bool) {
	lines := strings.Split(strings.TrimRight(strings.ReplaceAll(out, "\r\n", "\n"), "\n"), "\n")
	state := strings.ToLower(strings.TrimSpace(lines[0]))
	if state != "playing" || len(lines) < 5 {
		return credits.Track{}, false
	}

	track := credits.Track{
		ID:     strings.TrimSpace(lines[1]),
		Title:  strings.TrimSpace(lines[2]),
		Artist: strings.TrimSpace(lines[3]),
		Album:  strings.TrimSpace(lines[4]),
	}
	if track.Empty() {
		return credits.Track{}, false
	}
	return track, true
}
