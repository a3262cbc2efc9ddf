// Package filesystem executes the filesystem side of each request.
//
// This package is organized into specialized modules:
//   - types: ServerConfig, FileNode and the request bodies
//   - paths: request path resolution confined to the served root
//   - metadata: open, fstat and read for GET
//   - basic: append and create/truncate writes
//   - directory: listing, mkdir and delete
//
// All operations:
//   - Acquire descriptors immediately before use and release them on return
//   - Return *apperrors.Error values with client-safe messages
//   - Convert names and content through the configured codec
//
// Example Usage:
//
//	cfg, _ := filesystem.NewServerConfig("/srv/data", "utf-8", 1<<20)
//	exec := filesystem.NewExecutor(cfg)
//	full, err := exec.Resolve("/docs/readme.txt")
//	node, err := exec.Read(full)
package filesystem
