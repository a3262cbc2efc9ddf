package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, ":9090", cfg.Server.MetricsAddr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, int64(8<<20), cfg.Server.MaxBodySize)

	// Files config
	assert.Equal(t, ".", cfg.Files.ServeDir)
	assert.Equal(t, "utf-8", cfg.Files.Encoding)
	assert.Equal(t, int64(1<<20), cfg.Files.MaxSize)
	assert.Equal(t, "000", cfg.Files.Umask)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
	assert.Empty(t, cfg.Logging.File)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.True(t, cfg.RateLimit.PerClient)

	assert.True(t, cfg.CORS.Enabled)
	assert.Equal(t, []string{"*"}, cfg.CORS.Origins)
	assert.True(t, cfg.Gzip.Enabled)

	assert.NoError(t, cfg.Validate())
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":               "9000",
		"HOST":               "127.0.0.1",
		"SHUTDOWN_TIMEOUT":   "3s",
		"SERVE_DIR":          "/srv/data",
		"ENCODING":           "latin1",
		"MAX_SIZE":           "2048",
		"UMASK":              "022",
		"LOG_LEVEL":          "debug",
		"LOG_DEV":            "true",
		"RATE_LIMIT_RPS":     "500",
		"RATE_LIMIT_BURST":   "1000",
		"RATE_LIMIT_ENABLED": "true",
		"CORS_ORIGINS":       "http://a.example,http://b.example",
		"GZIP_ENABLED":       "false",
	}

	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, "/srv/data", cfg.Files.ServeDir)
	assert.Equal(t, "latin1", cfg.Files.Encoding)
	assert.Equal(t, int64(2048), cfg.Files.MaxSize)
	assert.Equal(t, "022", cfg.Files.Umask)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORS.Origins)
	assert.False(t, cfg.Gzip.Enabled)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Verify overridden values
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Verify default values still apply
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "utf-8", cfg.Files.Encoding)
	assert.Equal(t, int64(1<<20), cfg.Files.MaxSize)
}

func TestLoadFile_Layering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weaverest.yaml")
	content := `
server:
  port: "8080"
  shutdown_timeout: 5s
files:
  serve_dir: /data
  encoding: latin1
logging:
  level: debug
rate_limit:
  enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("PORT", "9999")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	// environment wins over the file
	assert.Equal(t, "9999", cfg.Server.Port)
	// file wins over defaults
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "/data", cfg.Files.ServeDir)
	assert.Equal(t, "latin1", cfg.Files.Encoding)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.RateLimit.Enabled)
	// untouched keys keep defaults
	assert.Equal(t, int64(1<<20), cfg.Files.MaxSize)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))
	_, err = LoadFile(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"port not numeric", func(c *Config) { c.Server.Port = "http" }, true},
		{"port out of range", func(c *Config) { c.Server.Port = "70000" }, true},
		{"zero body size", func(c *Config) { c.Server.MaxBodySize = 0 }, true},
		{"negative max size", func(c *Config) { c.Files.MaxSize = -1 }, true},
		{"zero max size", func(c *Config) { c.Files.MaxSize = 0 }, false},
		{"empty serve dir", func(c *Config) { c.Files.ServeDir = "" }, true},
		{"umask not octal", func(c *Config) { c.Files.Umask = "089" }, true},
		{"unknown encoding", func(c *Config) { c.Files.Encoding = "klingon" }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"rate limit without rate", func(c *Config) {
			c.RateLimit.Enabled = true
			c.RateLimit.RequestsPerSecond = 0
		}, true},
		{"gzip level", func(c *Config) { c.Gzip.Level = 11 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUmaskBits(t *testing.T) {
	files := FilesConfig{Umask: "022"}
	bits, err := files.UmaskBits()
	require.NoError(t, err)
	assert.Equal(t, 0o022, bits)

	files.Umask = "1777"
	_, err = files.UmaskBits()
	assert.Error(t, err)
}

func TestServerAddress(t *testing.T) {
	tests := []struct {
		host, port, expected string
	}{
		{"0.0.0.0", "8000", "0.0.0.0:8000"},
		{"", "8000", ":8000"},
		{"::1", "8080", "[::1]:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			s := ServerConfig{Host: tt.host, Port: tt.port}
			assert.Equal(t, tt.expected, s.Address())
		})
	}
}
