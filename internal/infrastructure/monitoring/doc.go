/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the server,
tracking HTTP requests, filesystem operations and transferred bytes. Each
Metrics value owns a private registry, so several servers (or tests) can live
in one process.

# Features

- HTTP request metrics (latency, throughput, size) by method and status
- Filesystem operation metrics (count by outcome, latency) by operation
- Bytes read from and written to served files
- Go runtime, process and uptime metrics

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))

	timer := monitoring.NewTimer(metrics, "read")
	// ... perform operation ...
	timer.Stop(monitoring.OutcomeOK)

# Metrics Endpoint

	mux.Handle("/metrics", metrics.Handler())
*/
package monitoring
