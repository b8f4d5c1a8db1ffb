package nowplaying

import (
	"context"
	"fmt"

	"go.senan.xyz/taglib"

	"github.com/jacogrande/sideman-sub001/internal/credits"
)

// Property key TagLib uses for the MusicBrainz recording id.
const musicBrainzTrackID = "MUSICBRAINZ_TRACKID"

// FileSource treats a local audio file as the playing track.
type FileSource struct {
	Path string
}

func (s FileSource) Current(ctx context.Context) (credits.Track, bool, error) {
	track, err := ReadTrack(s.Path)
	if err != nil {
		return credits.Track{}, false, err
	}
	return track, !track.Empty(), nil
}

// ReadTrack builds a Track from an audio file's tags.
func ReadTrack(path string) (credits.Track, error) {
	tags, err := taglib.ReadTags(path)
	if err != nil {
		return credits.Track{}, fmt.Errorf("failed to read tags from %s: %w", path, err)
	}
	return credits.Track{
		ID:     firstTag(tags, musicBrainzTrackID),
		Title:  firstTag(tags, taglib.Title),
		Artist: firstTag(tags, taglib.Artist),
		Album:  firstTag(tags, taglib.Album),
	}, nil
}

func firstTag(tags map[string][]string, key string) string {
	if vals, ok := tags[key]; ok && len(vals) > 0 {
		return vals[0]
	}
	return ""
}
