package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"

	"github.com/GriffinCanCode/weaverest/internal/codec"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Files     FilesConfig     `yaml:"files"`
	Logging   LogConfig       `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
	Gzip      GzipConfig      `yaml:"gzip"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" yaml:"port"`
	Host            string        `envconfig:"HOST" yaml:"host"`
	Debug           bool          `envconfig:"DEBUG" yaml:"debug"`
	MetricsAddr     string        `envconfig:"METRICS_ADDR" yaml:"metrics_addr"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout"`
	MaxBodySize     int64         `envconfig:"MAX_BODY_SIZE" yaml:"max_body_size"`
}

// FilesConfig describes the served tree.
type FilesConfig struct {
	ServeDir string `envconfig:"SERVE_DIR" yaml:"serve_dir"`
	Encoding string `envconfig:"ENCODING" yaml:"encoding"`
	MaxSize  int64  `envconfig:"MAX_SIZE" yaml:"max_size"`
	Umask    string `envconfig:"UMASK" yaml:"umask"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" yaml:"development"`
	File        string `envconfig:"LOG_FILE" yaml:"file"`
	MaxSizeMB   int    `envconfig:"LOG_MAX_SIZE_MB" yaml:"max_size_mb"`
	MaxBackups  int    `envconfig:"LOG_MAX_BACKUPS" yaml:"max_backups"`
	MaxAgeDays  int    `envconfig:"LOG_MAX_AGE_DAYS" yaml:"max_age_days"`
	Compress    bool   `envconfig:"LOG_COMPRESS" yaml:"compress"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" yaml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" yaml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" yaml:"enabled"`
	PerClient         bool `envconfig:"RATE_LIMIT_PER_CLIENT" yaml:"per_client"`
}

// CORSConfig holds cross-origin configuration.
type CORSConfig struct {
	Enabled bool     `envconfig:"CORS_ENABLED" yaml:"enabled"`
	Origins []string `envconfig:"CORS_ORIGINS" yaml:"origins"`
}

// GzipConfig holds response compression configuration.
type GzipConfig struct {
	Enabled bool `envconfig:"GZIP_ENABLED" yaml:"enabled"`
	Level   int  `envconfig:"GZIP_LEVEL" yaml:"level"`
}

// Load loads configuration from environment variables over the defaults.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile layers an optional YAML file and then the environment over the
// defaults. Keys absent from the file or the environment keep their previous
// value.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			Debug:           false,
			MetricsAddr:     ":9090",
			ShutdownTimeout: 10 * time.Second,
			MaxBodySize:     8 << 20,
		},
		Files: FilesConfig{
			ServeDir: ".",
			Encoding: "utf-8",
			MaxSize:  1 << 20,
			Umask:    "000",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
			MaxSizeMB:   100,
			MaxBackups:  3,
			MaxAgeDays:  7,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           false,
			PerClient:         true,
		},
		CORS: CORSConfig{
			Enabled: true,
			Origins: []string{"*"},
		},
		Gzip: GzipConfig{
			Enabled: true,
			Level:   -1,
		},
	}
}

// Address returns the host:port the API listens on.
func (c *ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// UmaskBits parses the octal umask.
func (c *FilesConfig) UmaskBits() (int, error) {
	bits, err := strconv.ParseUint(c.Umask, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("umask %q is not octal: %w", c.Umask, err)
	}
	if bits > 0o777 {
		return 0, fmt.Errorf("umask %q out of range", c.Umask)
	}
	return int(bits), nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %q", c.Server.Port))
	}
	if c.Server.MaxBodySize <= 0 {
		errs = append(errs, fmt.Errorf("max body size must be positive, got %d", c.Server.MaxBodySize))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("shutdown timeout must not be negative"))
	}
	if c.Files.ServeDir == "" {
		errs = append(errs, errors.New("serve directory is required"))
	}
	if c.Files.MaxSize < 0 {
		errs = append(errs, fmt.Errorf("max size must not be negative, got %d", c.Files.MaxSize))
	}
	if _, err := c.Files.UmaskBits(); err != nil {
		errs = append(errs, err)
	}
	if _, err := codec.Lookup(c.Files.Encoding); err != nil {
		errs = append(errs, err)
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		errs = append(errs, errors.New("rate limit requires positive requests per second and burst"))
	}
	if c.Gzip.Level < -2 || c.Gzip.Level > 9 {
		errs = append(errs, fmt.Errorf("invalid gzip level %d", c.Gzip.Level))
	}

	return errors.Join(errs...)
}
