package model

import (
	"path/filepath"
	"strings"
)

// Kind classifies a media file.
type Kind int

const (
	// KindUnknown marks a file the viewer does not play.
	KindUnknown Kind = iota

	// KindImage is a still image shown for the configured hold duration.
	KindImage

	// KindVideo is played frame by frame until it ends.
	KindVideo
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}

var (
	// ImageExtensions lists the recognized still image extensions.
	ImageExtensions = []string{".jpg", ".jpeg", ".png"}

	// VideoExtensions lists the recognized video container extensions.
	VideoExtensions = []string{".mp4", ".avi", ".mov"}
)

// Classify returns the kind of the file at path based on its extension.
//
// The comparison is case-insensitive, so "HOLIDAY.JPG" is an image.
// Anything not listed in ImageExtensions or VideoExtensions is KindUnknown.
func Classify(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range ImageExtensions {
		if ext == e {
			return KindImage
		}
	}
	for _, e := range VideoExtensions {
		if ext == e {
			return KindVideo
		}
	}
	return KindUnknown
}

// MediaEntry is a single playable file.
type MediaEntry struct {
	// Path is the absolute path of the file.
	Path string

	// Kind is derived from Path's extension.
	Kind Kind
}

// NewMediaEntry builds an entry for path.
//
// The second return value is false when the extension is not a
// recognized media type; the returned entry must not be used then.
func NewMediaEntry(path string) (MediaEntry, bool) {
	kind := Classify(path)
	if kind == KindUnknown {
		return MediaEntry{}, false
	}
	return MediaEntry{Path: path, Kind: kind}, true
}

// Name returns the file name without its directory.
func (e MediaEntry) Name() string {
	return filepath.Base(e.Path)
}

// IsImage reports whether the entry is a still image.
func (e MediaEntry) IsImage() bool { return e.Kind == KindImage }

// IsVideo reports whether the entry is a video.
func (e MediaEntry) IsVideo() bool { return e.Kind == KindVideo }
