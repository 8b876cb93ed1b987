package domain

import (
	"path/filepath"
	"strings"
)

// MediaKind classifies an attachment for the UI (player vs. image view).
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// MediaKindForFilename classifies by extension only; file contents are
// never inspected. Anything that is not a known video extension counts
// as an image.
func MediaKindForFilename(name string) MediaKind {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch ext {
	case "mp4", "mov", "webm", "avi":
		return MediaVideo
	}
	return MediaImage
}
