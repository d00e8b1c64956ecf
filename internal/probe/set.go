package probe

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

// Config holds the command lines of the four probes.
type Config struct {
	Spotlight string
	Xattr     string
	FFProbe   string
	Identify  string
	Timeout   time.Duration
}

// DefaultConfig returns the stock command lines with no timeout.
func DefaultConfig() Config {
	return Config{
		Spotlight: DefaultSpotlightCommand,
		Xattr:     DefaultXattrCommand,
		FFProbe:   DefaultFFProbeCommand,
		Identify:  DefaultIdentifyCommand,
	}
}

// Set is a ready-to-use group of probes sharing one Runner.
type Set struct {
	runner    Runner
	spotlight Command
	xattr     Command
	ffprobe   Command
	identify  Command
}

// NewSet parses the configured command lines.
func NewSet(cfg Config) (*Set, error) {
	s := &Set{runner: Runner{Timeout: cfg.Timeout}}

	for _, p := range []struct {
		name string
		line string
		dst  *Command
	}{
		{"spotlight", cfg.Spotlight, &s.spotlight},
		{"xattr", cfg.Xattr, &s.xattr},
		{"ffprobe", cfg.FFProbe, &s.ffprobe},
		{"identify", cfg.Identify, &s.identify},
	} {
		cmd, err := ParseCommand(p.line)
		if err != nil {
			return nil, errors.Wrapf(err, "%s probe", p.name)
		}
		*p.dst = cmd
	}

	return s, nil
}

// Commands returns the parsed commands keyed by probe name.
func (s *Set) Commands() map[string]Command {
	return map[string]Command{
		"mdls":     s.spotlight,
		"xattr":    s.xattr,
		"ffprobe":  s.ffprobe,
		"identify": s.identify,
	}
}

// Spotlight queries the platform metadata index for path.
func (s *Set) Spotlight(ctx context.Context, path string) (map[string]string, error) {
	out, err := s.runner.Output(ctx, s.spotlight, path)
	if err != nil {
		return nil, err
	}
	return ParseSpotlight(out)
}

// Xattr dumps the extended filesystem attributes of path.
func (s *Set) Xattr(ctx context.Context, path string) (map[string]string, error) {
	out, err := s.runner.Output(ctx, s.xattr, path)
	if err != nil {
		return nil, err
	}
	return ParseXattr(out), nil
}

// Video returns the container and stream description of path.
func (s *Set) Video(ctx context.Context, path string) (map[string]any, error) {
	out, err := s.runner.Output(ctx, s.ffprobe, path)
	if err != nil {
		return nil, err
	}
	return ParseFFProbe(out)
}

// Image returns the verbose image inspection text of path.
func (s *Set) Image(ctx context.Context, path string) (map[string]any, error) {
	out, err := s.runner.Output(ctx, s.identify, path)
	if err != nil {
		return nil, err
	}
	return map[string]any{IdentifyKey: string(out)}, nil
}
