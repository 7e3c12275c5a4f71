package playlist

import (
	"math/rand/v2"
	"sort"

	"github.com/handiism/signage-viewer/internal/catalog"
	"github.com/handiism/signage-viewer/internal/config"
	"github.com/handiism/signage-viewer/internal/model"
)

// Playlist is the ordered list of entries to play.
type Playlist []model.MediaEntry

// Apply filters cat by the kinds enabled in settings and orders the result.
//
// The returned playlist never shares memory with cat. With random order
// the entries are shuffled using rng, or the package-level source when rng
// is nil.
func Apply(cat catalog.Catalog, settings *config.Settings, rng *rand.Rand) Playlist {
	list := make(Playlist, 0, len(cat))
	for _, entry := range cat {
		if entry.IsImage() && !settings.ShowImages {
			continue
		}
		if entry.IsVideo() && !settings.ShowVideos {
			continue
		}
		list = append(list, entry)
	}

	if settings.IsRandom() {
		swap := func(i, j int) { list[i], list[j] = list[j], list[i] }
		if rng != nil {
			rng.Shuffle(len(list), swap)
		} else {
			rand.Shuffle(len(list), swap)
		}
		return list
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Path < list[j].Path
	})
	return list
}

// Equal reports whether a and b hold the same entries in the same order.
func Equal(a, b Playlist) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Sequencer applies playlists with a fixed random source.
//
// Sequencer is not safe for concurrent use; the playback loop owns it.
type Sequencer struct {
	rng *rand.Rand
}

// NewSequencer creates a Sequencer. A nil rng uses the package-level source.
func NewSequencer(rng *rand.Rand) *Sequencer {
	return &Sequencer{rng: rng}
}

// Apply is Apply with the sequencer's random source.
func (s *Sequencer) Apply(cat catalog.Catalog, settings *config.Settings) Playlist {
	return Apply(cat, settings, s.rng)
}

// Count returns the number of image and video entries.
func (p Playlist) Count() (images, videos int) {
	for _, e := range p {
		switch e.Kind {
		case model.KindImage:
			images++
		case model.KindVideo:
			videos++
		}
	}
	return images, videos
}
