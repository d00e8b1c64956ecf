package mediatypes

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// FileType represents the media class of a file.
type FileType string

const (
	// FileTypeImage represents an image file.
	FileTypeImage FileType = "image"
	// FileTypeVideo represents a video file.
	FileTypeVideo FileType = "video"
	// FileTypeAudio represents an audio file.
	FileTypeAudio FileType = "audio"
	// FileTypeArchive represents a compressed archive.
	FileTypeArchive FileType = "archive"
	// FileTypePlaylist represents a playlist file.
	FileTypePlaylist FileType = "playlist"
	// FileTypeOther represents any other recognized content type.
	FileTypeOther FileType = "other"
)

// MimeTypes maps file extensions to their MIME types. Extensions that are not
// listed here (for example ".txt") have no inferable content type and the
// files carrying them are skipped during extraction.
var MimeTypes = map[string]string{
	// Images
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".heic": "image/heic",
	".heif": "image/heif",
	".avif": "image/avif",

	// Videos
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".3gp":  "video/3gpp",
	".ts":   "video/mp2t",

	// Audio
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".opus": "audio/opus",
	".wav":  "audio/wav",

	// Archives
	".zip": "application/zip",
	".rar": "application/vnd.rar",
	".7z":  "application/x-7z-compressed",
	".tar": "application/x-tar",
	".gz":  "application/gzip",

	// Documents
	".pdf": "application/pdf",

	// Playlists
	".wpl": "application/vnd.ms-wpl",
	".m3u": "audio/x-mpegurl",
}

// archiveTypes lists content types classified as archives.
var archiveTypes = map[string]bool{
	"application/zip":             true,
	"application/vnd.rar":         true,
	"application/x-rar":           true,
	"application/x-7z-compressed": true,
	"application/x-tar":           true,
	"application/gzip":            true,
}

// playlistTypes lists content types classified as playlists.
var playlistTypes = map[string]bool{
	"application/vnd.ms-wpl": true,
	"audio/x-mpegurl":        true,
}

// Table resolves file names to content types. A Table is immutable once
// built and safe for concurrent use, but the extraction pool builds one per
// worker as that worker's setup step.
type Table struct {
	types map[string]string
}

// NewTable builds a content-type table from the built-in mappings, extended
// with the entries of extraFile when it is non-empty. extraFile uses the
// mime.types format: a content type followed by one or more extensions per
// line, with '#' starting a comment.
func NewTable(extraFile string) (*Table, error) {
	types := make(map[string]string, len(MimeTypes))
	for ext, ct := range MimeTypes {
		types[ext] = ct
	}

	if extraFile != "" {
		if err := loadMimeTypesFile(extraFile, types); err != nil {
			return nil, errors.Wrapf(err, "loading content types from %s", extraFile)
		}
	}

	return &Table{types: types}, nil
}

func loadMimeTypesFile(path string, into map[string]string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if !strings.Contains(fields[0], "/") {
			return errors.Newf("line %d: %q is not a content type", lineNo, fields[0])
		}
		for _, ext := range fields[1:] {
			into["."+strings.ToLower(strings.TrimPrefix(ext, "."))] = strings.ToLower(fields[0])
		}
	}

	return scanner.Err()
}

// ContentType returns the content type inferred from the extension of name,
// and false when the extension is unknown.
func (t *Table) ContentType(name string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return "", false
	}
	ct, ok := t.types[ext]
	return ct, ok
}

// Len returns the number of known extensions.
func (t *Table) Len() int {
	return len(t.types)
}

// FileTypeOf classifies a content type into a media class.
func FileTypeOf(contentType string) FileType {
	switch {
	case playlistTypes[contentType]:
		return FileTypePlaylist
	case archiveTypes[contentType]:
		return FileTypeArchive
	case strings.HasPrefix(contentType, "image/"):
		return FileTypeImage
	case strings.HasPrefix(contentType, "video/"):
		return FileTypeVideo
	case strings.HasPrefix(contentType, "audio/"):
		return FileTypeAudio
	default:
		return FileTypeOther
	}
}

// IsHidden reports whether a file name carries the hidden-file marker.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
