// Package main is the entry point for the weaverest file server.
//
// Configuration is layered: built-in defaults, an optional YAML file
// (--config), a dotenv file (--env-file), the environment, and finally the
// command line.
//
// Usage:
//
//	# Serve the current directory on :8000
//	weaverest
//
//	# Serve /srv/data with latin1 file names, verbose logging
//	weaverest /srv/data --encoding latin1 -vv
//
//	# Development mode (colored logs, gin debug output)
//	weaverest --debug
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
