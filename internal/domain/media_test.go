package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMediaKindForFilename(t *testing.T) {
	tests := []struct {
		name string
		want MediaKind
	}{
		{"form-check.mp4", MediaVideo},
		{"form-check.MOV", MediaVideo},
		{"clip.webm", MediaVideo},
		{"old-camera.avi", MediaVideo},
		{"sessions/abc/1f2e3d.mp4", MediaVideo},
		{"progress.jpg", MediaImage},
		{"progress.png", MediaImage},
		{"plan.pdf", MediaImage}, // Not a video, so the image viewer handles it
		{"mp4", MediaImage},      // No extension at all
		{"archive.mp4.txt", MediaImage},
		{"", MediaImage},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MediaKindForFilename(tt.name), "file %q", tt.name)
	}
}
