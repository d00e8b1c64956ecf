package extractor

import (
	"time"
)

// Document is the metadata record persisted for one file. Its JSON encoding
// is the stored contract consumed by downstream reporting.
type Document struct {
	RunID              string             `json:"run_id,omitempty"`
	FilePath           string             `json:"file_path"`
	Filename           string             `json:"filename"`
	ContentType        string             `json:"content_type"`
	BaseAttributes     *BaseAttributes    `json:"base_attributes,omitempty"`
	ExtendedAttributes ExtendedAttributes `json:"extended_attributes"`
	VideoMetadata      map[string]any     `json:"video_metadata,omitempty"`
	ImageMetadata      map[string]any     `json:"image_metadata,omitempty"`
	AudioMetadata      *AudioMetadata     `json:"audio_metadata,omitempty"`
	Checksum           string             `json:"checksum,omitempty"`
	IndexedAt          time.Time          `json:"indexed_at"`
}

// BaseAttributes holds the size and the three standard timestamps, as Unix
// seconds with fractional part.
type BaseAttributes struct {
	Size     int64   `json:"size"`
	Created  float64 `json:"created"`
	Modified float64 `json:"modified"`
	Accessed float64 `json:"accessed"`
}

// ExtendedAttributes holds the two attribute probes. Either map is empty when
// its probe failed.
type ExtendedAttributes struct {
	Spotlight map[string]string `json:"mdls"`
	Xattr     map[string]string `json:"xattr"`
}

// AudioMetadata holds tags read from an audio file.
type AudioMetadata struct {
	Format      string `json:"format,omitempty"`
	FileType    string `json:"file_type,omitempty"`
	Title       string `json:"title,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Album       string `json:"album,omitempty"`
	AlbumArtist string `json:"album_artist,omitempty"`
	Composer    string `json:"composer,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Year        int    `json:"year,omitempty"`
	Track       int    `json:"track,omitempty"`
	TrackTotal  int    `json:"track_total,omitempty"`
	Disc        int    `json:"disc,omitempty"`
	DiscTotal   int    `json:"disc_total,omitempty"`
}

// Size returns the file size recorded in the base attributes, or 0.
func (d *Document) Size() int64 {
	if d == nil || d.BaseAttributes == nil {
		return 0
	}
	return d.BaseAttributes.Size
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
