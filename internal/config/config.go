// Package config loads the aethertag server configuration.
//
// The file is chosen by the --config flag or the AETHERTAG_CONFIG
// environment variable. Without either, defaults are used.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yyyoichi/aethertag/internal/auth"
	"github.com/yyyoichi/aethertag/internal/imagecodec"
)

// EnvVar names the environment variable holding the config path.
const EnvVar = "AETHERTAG_CONFIG"

const (
	AuthPresence = "presence"
	AuthStatic   = "static"
)

var (
	ErrInvalid = errors.New("invalid configuration")
)

type Config struct {
	// Listen is the HTTP listen address.
	// Default: :3000
	Listen string `yaml:"listen"`

	// MaxUploadBytes bounds multipart request bodies.
	// Default: 25 MiB
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// MaxPixels bounds the width*height of decoded images. It is checked
	// against the image header before decoding.
	// Default: 50 megapixels
	MaxPixels int `yaml:"max_pixels"`

	// LedgerPath is the SQLite file recording issued payloads.
	// Empty disables the ledger.
	LedgerPath string `yaml:"ledger_path"`

	// LogLevel is one of debug, info, warn, error.
	// Default: info
	LogLevel string `yaml:"log_level"`

	Auth  AuthConfig  `yaml:"auth"`
	Fetch FetchConfig `yaml:"fetch"`
}

type AuthConfig struct {
	// Mode is "presence" (any non-empty key) or "static" (Keys only).
	// Default: presence
	Mode string   `yaml:"mode"`
	Keys []string `yaml:"keys"`
}

type FetchConfig struct {
	// CacheDir stores fetched images for remote detection.
	// Default: $TMPDIR/aethertag_http_cache
	CacheDir string `yaml:"cache_dir"`

	// MinInterval spaces requests that miss the cache.
	// Default: 250ms
	MinInterval time.Duration `yaml:"min_interval"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads path, or the file named by EnvVar when path is empty.
// With neither, Default is returned.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":3000"
	}
	if c.MaxUploadBytes == 0 {
		c.MaxUploadBytes = 25 << 20
	}
	if c.MaxPixels == 0 {
		c.MaxPixels = imagecodec.DefaultMaxPixels
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Auth.Mode == "" {
		c.Auth.Mode = AuthPresence
	}
	if c.Fetch.CacheDir == "" {
		c.Fetch.CacheDir = os.TempDir() + string(os.PathSeparator) + "aethertag_http_cache"
	}
	if c.Fetch.MinInterval == 0 {
		c.Fetch.MinInterval = 250 * time.Millisecond
	}
}

func (c *Config) Validate() error {
	if c.MaxUploadBytes < 0 {
		return fmt.Errorf("%w: max_upload_bytes must be positive", ErrInvalid)
	}
	if c.MaxPixels < 0 {
		return fmt.Errorf("%w: max_pixels must be positive", ErrInvalid)
	}
	if c.Fetch.MinInterval < 0 {
		return fmt.Errorf("%w: fetch.min_interval must not be negative", ErrInvalid)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.Auth.Mode {
	case AuthPresence:
	case AuthStatic:
		if len(c.Auth.Keys) == 0 {
			return fmt.Errorf("%w: auth.mode static requires auth.keys", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown auth.mode %q", ErrInvalid, c.Auth.Mode)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(strings.ToLower(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return lv, nil
}

// Authenticator builds the configured authenticator.
func (c *Config) Authenticator() auth.Authenticator {
	if c.Auth.Mode == AuthStatic {
		return auth.NewStaticKeys(c.Auth.Keys...)
	}
	return auth.PresenceOnly{}
}
