// Package metric provides Prometheus metrics for nonbloat-db.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: engine counters and histograms, HTTP handler
//   - collector.go: scrape-time gauges read from a live store
//   - sample.go: flattening gathered families for terminal output
//
// Metrics include:
//
//   - Mutations by operation
//   - Log append and snapshot write outcomes
//   - Snapshot write latency and size
//   - Replay and recovery counts
package metric
