package extractor

import (
	"context"
	"encoding/hex"
	"image"
	_ "image/gif"  // register GIF header decoding
	_ "image/jpeg" // register JPEG header decoding
	_ "image/png"  // register PNG header decoding
	"io"

	"github.com/dhowden/tag"
	"github.com/mitchellh/mapstructure"
	"golang.org/x/crypto/blake2b"
	_ "golang.org/x/image/bmp"  // register BMP header decoding
	_ "golang.org/x/image/tiff" // register TIFF header decoding
	_ "golang.org/x/image/webp" // register WebP header decoding

	"media-indexer/internal/filesystem"
	"media-indexer/internal/logging"
	"media-indexer/internal/metrics"
)

// ffprobeSummary is the subset of the container probe output used for
// metrics and debug logging. The stored document keeps the full output.
type ffprobeSummary struct {
	Format struct {
		FormatName string `mapstructure:"format_name"`
		Duration   string `mapstructure:"duration"`
	} `mapstructure:"format"`
	Streams []struct {
		CodecType string `mapstructure:"codec_type"`
		CodecName string `mapstructure:"codec_name"`
		Width     int    `mapstructure:"width"`
		Height    int    `mapstructure:"height"`
	} `mapstructure:"streams"`
}

func (e *Extractor) videoMetadata(ctx context.Context, path string) map[string]any {
	data, err := e.probes.Video(ctx, path)
	if err != nil {
		probeFailed("ffprobe", path, err)
		return nil
	}

	var summary ffprobeSummary
	if err := mapstructure.Decode(data, &summary); err != nil {
		logging.Debug("Unexpected ffprobe layout for %s: %v", path, err)
		return data
	}
	for _, s := range summary.Streams {
		if s.CodecType == "" {
			continue
		}
		metrics.VideoStreamsTotal.WithLabelValues(s.CodecType, s.CodecName).Inc()
	}
	logging.Debug("Video %s: format=%s duration=%s streams=%d",
		path, summary.Format.FormatName, summary.Format.Duration, len(summary.Streams))

	return data
}

// imageMetadata combines the verbose inspection text with dimensions read
// from the image header. Either half may be missing; both missing omits
// the field.
func (e *Extractor) imageMetadata(ctx context.Context, path string) map[string]any {
	var data map[string]any

	if inspected, err := e.probes.Image(ctx, path); err != nil {
		probeFailed("identify", path, err)
	} else {
		data = inspected
	}

	cfg, format, err := e.imageHeader(ctx, path)
	if err != nil {
		metrics.ProbeFailuresTotal.WithLabelValues("image_header").Inc()
		logging.Debug("Could not decode image header for %s: %v", path, err)
		return data
	}

	if data == nil {
		data = make(map[string]any, 3)
	}
	data["width"] = cfg.Width
	data["height"] = cfg.Height
	data["format"] = format
	return data
}

func (e *Extractor) imageHeader(ctx context.Context, path string) (image.Config, string, error) {
	f, err := filesystem.OpenWithRetry(ctx, path, e.opts.Retry)
	if err != nil {
		return image.Config{}, "", err
	}
	defer func() { _ = f.Close() }()

	return image.DecodeConfig(f)
}

func (e *Extractor) audioMetadata(ctx context.Context, path string) *AudioMetadata {
	f, err := filesystem.OpenWithRetry(ctx, path, e.opts.Retry)
	if err != nil {
		probeFailed("audio_tag", path, err)
		return nil
	}
	defer func() { _ = f.Close() }()

	m, err := tag.ReadFrom(f)
	if err != nil {
		probeFailed("audio_tag", path, err)
		return nil
	}

	track, trackTotal := m.Track()
	disc, discTotal := m.Disc()

	return &AudioMetadata{
		Format:      string(m.Format()),
		FileType:    string(m.FileType()),
		Title:       m.Title(),
		Artist:      m.Artist(),
		Album:       m.Album(),
		AlbumArtist: m.AlbumArtist(),
		Composer:    m.Composer(),
		Genre:       m.Genre(),
		Year:        m.Year(),
		Track:       track,
		TrackTotal:  trackTotal,
		Disc:        disc,
		DiscTotal:   discTotal,
	}
}

// checksumPrefix names the digest algorithm in stored checksums.
const checksumPrefix = "blake2b-256:"

// checksum streams the file through BLAKE2b-256, stopping early when ctx is
// cancelled.
func checksum(ctx context.Context, path string, retry filesystem.RetryConfig) (string, error) {
	f, err := filesystem.OpenWithRetry(ctx, path, retry)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(h, &ctxReader{ctx: ctx, r: f}); err != nil {
		return "", err
	}

	return checksumPrefix + hex.EncodeToString(h.Sum(nil)), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
