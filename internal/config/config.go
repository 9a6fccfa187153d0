// Package config defines the client configuration and how it is loaded.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and ONBOARD_ environment variables on top.
// - Errors wrap this package's sentinel errors.
package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Defaults.
const (
	DefaultBaseURL           = "http://localhost:8000/api/v1"
	defaultRequestTimeout    = 10 * time.Second
	defaultRefreshInterval   = 30 * time.Second
	defaultMaxUploadBytes    = 10 << 20
	defaultUploadConcurrency = 3
	defaultMetricsAddr       = ":9464"
	defaultRedisKeyPrefix    = "onboard:"
	sessionFileName          = "session.yaml"
)

// Session backends.
const (
	SessionFile   = "file"
	SessionRedis  = "redis"
	SessionMemory = "memory"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// BaseURL is the backend API origin including the /api/v1 prefix.
	BaseURL string `koanf:"base_url"`

	// RequestTimeout bounds every request. There are no retries.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// SessionBackend selects token persistence: file, redis or memory.
	SessionBackend string `koanf:"session_backend"`

	// SessionFile is the token file of the file backend.
	SessionFile string `koanf:"session_file"`

	// SessionTTL expires tokens kept in Redis; zero keeps them until logout.
	SessionTTL time.Duration `koanf:"session_ttl"`

	// RedisURL and RedisKeyPrefix configure the redis backend.
	RedisURL       string `koanf:"redis_url"`
	RedisKeyPrefix string `koanf:"redis_key_prefix"`

	// MetricsAddr is where `onboard watch` serves /metrics and /healthz.
	MetricsAddr string `koanf:"metrics_addr"`

	// RefreshInterval is how often `onboard watch` reloads the portal.
	RefreshInterval time.Duration `koanf:"refresh_interval"`

	// MaxUploadBytes lowers the 10 MiB upload cap.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// UploadConcurrency bounds parallel uploads of one command.
	UploadConcurrency int `koanf:"upload_concurrency"`

	baseURLDefaulted bool
}

// New creates a Config holding the defaults. The context is reserved for
// future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         LogFormatText,
		BaseURL:           DefaultBaseURL,
		RequestTimeout:    defaultRequestTimeout,
		SessionBackend:    SessionFile,
		SessionFile:       defaultSessionFile(),
		RedisKeyPrefix:    defaultRedisKeyPrefix,
		MetricsAddr:       defaultMetricsAddr,
		RefreshInterval:   defaultRefreshInterval,
		MaxUploadBytes:    defaultMaxUploadBytes,
		UploadConcurrency: defaultUploadConcurrency,
		baseURLDefaulted:  true,
	}
}

// BaseURLDefaulted reports whether no base URL was configured and the
// hardcoded default is in use.
func (c *Config) BaseURLDefaulted() bool { return c.baseURLDefaulted }

// Validate checks the values Load cannot check by type alone.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: base_url %q must be an http(s) url", ErrInvalidConfig, c.BaseURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request_timeout must be positive", ErrInvalidConfig)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("%w: refresh_interval must be positive", ErrInvalidConfig)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("%w: max_upload_bytes must be positive", ErrInvalidConfig)
	}
	if c.UploadConcurrency <= 0 {
		return fmt.Errorf("%w: upload_concurrency must be positive", ErrInvalidConfig)
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("%w: session_ttl must not be negative", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	switch c.SessionBackend {
	case SessionFile:
		if c.SessionFile == "" {
			return fmt.Errorf("%w: session_file is required for the file backend", ErrInvalidConfig)
		}
	case SessionRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%w: redis_url is required for the redis backend", ErrInvalidConfig)
		}
	case SessionMemory:
	default:
		return fmt.Errorf("%w: session_backend %q", ErrInvalidConfig, c.SessionBackend)
	}
	return nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".onboard-" + sessionFileName
	}
	return filepath.Join(dir, "onboard", sessionFileName)
}
