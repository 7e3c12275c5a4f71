package ioutils

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"photo.jpg", "photo.jpg"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\clip.mp4`, "clip.mp4"},
		{"file:with:colons.png", "file_with_colons.png"},
		{"file?with*wildcards.mov", "file_with_wildcards.mov"},
		{"trailing dots...", "trailing dots"},
		{"multiple   spaces.jpg", "multiple spaces.jpg"},
		{"  padded.jpg  ", "padded.jpg"},
		{"..", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SanitizeFileName(tt.input); got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	if err := WriteFileAtomic(path, []byte(`{"a":1}`)); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(path, []byte(`{"a":2}`)); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"a":2}` {
		t.Errorf("content = %s, want second write", data)
	}
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Error("temp file should not be left behind")
	}
}

func TestSaveFile(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "upload.png")

	n, err := SaveFile(context.Background(), dst, strings.NewReader("pixels"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 6 {
		t.Errorf("SaveFile() wrote %d bytes, want 6", n)
	}
}

func TestSaveFile_Cancelled(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "upload.png")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := SaveFile(ctx, dst, strings.NewReader("pixels")); !errors.Is(err, context.Canceled) {
		t.Fatalf("SaveFile() error = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(dst); !errors.Is(err, os.ErrNotExist) {
		t.Error("partial file should be removed")
	}
}
