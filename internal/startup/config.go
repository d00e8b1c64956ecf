package startup

import (
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ilyakaznacheev/cleanenv"
	homedir "github.com/mitchellh/go-homedir"

	"media-indexer/internal/database"
	"media-indexer/internal/logging"
	"media-indexer/internal/probe"
)

// ConfigFileEnv names the environment variable holding an optional YAML
// config file. Values from the environment override the file.
const ConfigFileEnv = "CONFIG_FILE"

// Config holds all run configuration.
type Config struct {
	StoreURI      string        `yaml:"store_uri" env:"STORE_URI" env-default:"sqlite://./media.db" env-description:"store target (sqlite://path or postgres://...)"`
	Workers       int           `yaml:"workers" env:"INGEST_WORKERS" env-default:"0" env-description:"extraction workers, 0 = one per CPU (max 8)"`
	BatchSize     int           `yaml:"batch_size" env:"BATCH_SIZE" env-default:"20" env-description:"documents per store write"`
	ProbeTimeout  time.Duration `yaml:"probe_timeout" env:"PROBE_TIMEOUT" env-default:"0s" env-description:"per-probe timeout, 0 = none"`
	Checksum      bool          `yaml:"checksum" env:"CHECKSUM" env-default:"false" env-description:"add a BLAKE2b-256 checksum to each document"`
	MimeTypesFile string        `yaml:"mime_types_file" env:"MIME_TYPES_FILE" env-description:"extra extension mappings in mime.types format"`
	MetricsAddr   string        `yaml:"metrics_addr" env:"METRICS_ADDR" env-description:"serve /metrics, /healthz and /status on this address"`
	MemoryLimit   int64         `yaml:"memory_limit" env:"MEMORY_LIMIT" env-default:"0" env-description:"memory limit in bytes used to derive GOMEMLIMIT"`
	MemoryRatio   float64       `yaml:"memory_ratio" env:"MEMORY_RATIO" env-default:"0.85" env-description:"share of MEMORY_LIMIT given to the Go heap"`
	Probes        ProbeConfig   `yaml:"probes"`
}

// ProbeConfig holds the probe command lines, shell-quoted.
type ProbeConfig struct {
	Spotlight string `yaml:"mdls" env:"MDLS_CMD" env-default:"mdls"`
	Xattr     string `yaml:"xattr" env:"XATTR_CMD" env-default:"xattr -l"`
	FFProbe   string `yaml:"ffprobe" env:"FFPROBE_CMD" env-default:"ffprobe -v quiet -print_format json -show_format -show_streams"`
	Identify  string `yaml:"identify" env:"IDENTIFY_CMD" env-default:"identify -verbose"`
}

// LoadConfig reads configuration from configFile (if non-empty) and the
// environment, then validates it.
func LoadConfig(configFile string) (*Config, error) {
	cfg := &Config{}

	if configFile == "" {
		configFile = os.Getenv(ConfigFileEnv)
	}

	if configFile != "" {
		path, err := homedir.Expand(configFile)
		if err != nil {
			return nil, errors.Wrapf(err, "expanding %s", configFile)
		}
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to load configuration from %s", path)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to read configuration from environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and expands ~ in file paths.
func (c *Config) Validate() error {
	if c.BatchSize < 1 {
		return errors.WithHint(errors.Newf("invalid BATCH_SIZE %d", c.BatchSize), "use a positive batch size")
	}
	if c.Workers < 0 {
		return errors.Newf("invalid INGEST_WORKERS %d", c.Workers)
	}
	if c.ProbeTimeout < 0 {
		return errors.Newf("invalid PROBE_TIMEOUT %v", c.ProbeTimeout)
	}
	if c.MemoryRatio <= 0 || c.MemoryRatio > 1 {
		return errors.Newf("invalid MEMORY_RATIO %v, expected (0, 1]", c.MemoryRatio)
	}
	if _, err := database.ParseURI(c.StoreURI); err != nil {
		return errors.Wrap(err, "invalid STORE_URI")
	}
	if c.MimeTypesFile != "" {
		path, err := homedir.Expand(c.MimeTypesFile)
		if err != nil {
			return errors.Wrapf(err, "expanding %s", c.MimeTypesFile)
		}
		c.MimeTypesFile = path
	}
	return nil
}

// ProbeSet returns the probe configuration in the form the probe package
// expects.
func (c *Config) ProbeSet() probe.Config {
	return probe.Config{
		Spotlight: c.Probes.Spotlight,
		Xattr:     c.Probes.Xattr,
		FFProbe:   c.Probes.FFProbe,
		Identify:  c.Probes.Identify,
		Timeout:   c.ProbeTimeout,
	}
}

// Log prints the effective configuration.
func (c *Config) Log() {
	target, _ := database.ParseURI(c.StoreURI)

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  STORE_URI:        %s", target)
	logging.Info("  INGEST_WORKERS:   %s", workersString(c.Workers))
	logging.Info("  BATCH_SIZE:       %d", c.BatchSize)
	logging.Info("  PROBE_TIMEOUT:    %s", timeoutString(c.ProbeTimeout))
	logging.Info("  CHECKSUM:         %v", c.Checksum)
	logging.Info("  MIME_TYPES_FILE:  %s", valueOrNone(c.MimeTypesFile))
	logging.Info("  METRICS_ADDR:     %s", valueOrNone(c.MetricsAddr))
	logging.Info("  LOG_LEVEL:        %s", logging.GetLevel())
	logging.Debug("  MDLS_CMD:         %s", c.Probes.Spotlight)
	logging.Debug("  XATTR_CMD:        %s", c.Probes.Xattr)
	logging.Debug("  FFPROBE_CMD:      %s", c.Probes.FFProbe)
	logging.Debug("  IDENTIFY_CMD:     %s", c.Probes.Identify)
	logging.Info("")
}

// Usage returns a description of every environment variable.
func Usage() string {
	text, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return ""
	}
	return text
}

func workersString(n int) string {
	if n == 0 {
		return "auto"
	}
	return strconv.Itoa(n)
}

func timeoutString(d time.Duration) string {
	if d == 0 {
		return "none"
	}
	return d.String()
}

func valueOrNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
