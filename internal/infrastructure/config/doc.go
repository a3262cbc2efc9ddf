// Package config provides 12-factor configuration management for the server.
//
// Configuration is layered: built-in defaults, then an optional YAML file,
// then environment variables. The command line overrides the result.
//
// Configuration Sections:
//   - Server: listen address, metrics address, shutdown and body limits
//   - Files: served directory, text encoding, readable size limit, umask
//   - Logging: level, output format and optional rotating file
//   - RateLimit: token bucket settings, global or per client IP
//   - CORS: allowed origins
//   - Gzip: response compression
//
// Example Usage:
//
//	cfg, err := config.LoadFile("weaverest.yaml")
//	if err == nil {
//		err = cfg.Validate()
//	}
//
// Environment Variables:
//   - PORT, HOST, DEBUG, METRICS_ADDR, SHUTDOWN_TIMEOUT, MAX_BODY_SIZE
//   - SERVE_DIR, ENCODING, MAX_SIZE, UMASK
//   - LOG_LEVEL, LOG_DEV, LOG_FILE, LOG_MAX_SIZE_MB, LOG_MAX_BACKUPS, LOG_MAX_AGE_DAYS, LOG_COMPRESS
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED, RATE_LIMIT_PER_CLIENT
//   - CORS_ENABLED, CORS_ORIGINS
//   - GZIP_ENABLED, GZIP_LEVEL
package config
