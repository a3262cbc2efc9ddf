// Package middleware provides the HTTP middleware stack for the file server.
//
// Middleware stack includes:
//   - Recovery: panic recovery with a JSON 500 body
//   - RequestLogger: one structured zap line per request
//   - CORS: cross-origin resource sharing with configurable origins
//   - RateLimit: per-IP or global token bucket rate limiting
//   - BodyLimit: request body size cap
//   - Gzip: response compression for clients that accept it
//
// Rate Limiting:
//   - Per-IP tracking with eviction of idle clients
//   - Token bucket algorithm
//   - Rejections answer 429 with {"message": "rate limit exceeded"}
//
// Example Usage:
//
//	router.Use(middleware.Recovery(logger))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
