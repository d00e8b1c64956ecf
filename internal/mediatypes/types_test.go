package mediatypes

import (
	"os"
	"path/filepath"
	"testing"
)

func TestContentType(t *testing.T) {
	t.Parallel()

	table, err := NewTable("")
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}

	tests := []struct {
		name   string
		file   string
		want   string
		wantOK bool
	}{
		{name: "JPEG image", file: "a.jpg", want: "image/jpeg", wantOK: true},
		{name: "Upper case extension", file: "B.MP4", want: "video/mp4", wantOK: true},
		{name: "WebM video", file: "clip.webm", want: "video/webm", wantOK: true},
		{name: "Audio", file: "song.flac", want: "audio/flac", wantOK: true},
		{name: "Archive", file: "backup.7z", want: "application/x-7z-compressed", wantOK: true},
		{name: "Text is unrecognized", file: "c.txt", wantOK: false},
		{name: "No extension", file: "Makefile", wantOK: false},
		{name: "Unknown extension", file: "data.xyz", wantOK: false},
		{name: "Nested path", file: "/media/x/y/photo.jpeg", want: "image/jpeg", wantOK: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := table.ContentType(tt.file)
			if ok != tt.wantOK {
				t.Fatalf("ContentType(%q) ok = %v, want %v", tt.file, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ContentType(%q) = %q, want %q", tt.file, got, tt.want)
			}
		})
	}
}

func TestNewTableWithExtraFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "mime.types")
	content := "# local additions\n" +
		"image/x-canon-cr2   cr2 CRW\n" +
		"\n" +
		"text/plain txt # now known\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write mime file: %v", err)
	}

	table, err := NewTable(path)
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}

	for file, want := range map[string]string{
		"raw.cr2":  "image/x-canon-cr2",
		"raw.crw":  "image/x-canon-cr2",
		"c.txt":    "text/plain",
		"film.mkv": "video/x-matroska",
	} {
		got, ok := table.ContentType(file)
		if !ok || got != want {
			t.Errorf("ContentType(%q) = %q, %v; want %q, true", file, got, ok, want)
		}
	}

	if table.Len() <= len(MimeTypes) {
		t.Errorf("Expected extra entries to grow the table beyond %d, got %d", len(MimeTypes), table.Len())
	}
}

func TestNewTableErrors(t *testing.T) {
	t.Parallel()

	if _, err := NewTable(filepath.Join(t.TempDir(), "missing.types")); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.types")
	if err := os.WriteFile(bad, []byte("jpg image\n"), 0o644); err != nil {
		t.Fatalf("Failed to write mime file: %v", err)
	}
	if _, err := NewTable(bad); err == nil {
		t.Error("Expected error for malformed line")
	}
}

func TestFileTypeOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		want        FileType
	}{
		{"image/jpeg", FileTypeImage},
		{"video/mp4", FileTypeVideo},
		{"audio/mpeg", FileTypeAudio},
		{"audio/x-mpegurl", FileTypePlaylist},
		{"application/zip", FileTypeArchive},
		{"application/vnd.rar", FileTypeArchive},
		{"application/pdf", FileTypeOther},
		{"", FileTypeOther},
	}

	for _, tt := range tests {
		if got := FileTypeOf(tt.contentType); got != tt.want {
			t.Errorf("FileTypeOf(%q) = %v, want %v", tt.contentType, got, tt.want)
		}
	}
}

func TestIsHidden(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]bool{
		".DS_Store":   true,
		".hidden.jpg": true,
		"visible.jpg": false,
		"a.b.c":       false,
	} {
		if got := IsHidden(name); got != want {
			t.Errorf("IsHidden(%q) = %v, want %v", name, got, want)
		}
	}
}
