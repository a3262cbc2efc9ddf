// Package server wires configuration, observability, middleware and the file
// API into running HTTP listeners.
//
// Server Lifecycle:
//  1. Validate configuration
//  2. Initialize logger, metrics and tracer
//  3. Canonicalize the served root and resolve the encoding
//  4. Build the gin router and middleware chain
//  5. Serve the file API and, separately, /metrics and /health
//  6. Graceful shutdown on Shutdown
//
// Example Usage:
//
//	srv, err := server.NewServer(cfg)
//	if err != nil {
//		return err
//	}
//	go srv.Run()
//	defer srv.Shutdown(ctx)
package server
