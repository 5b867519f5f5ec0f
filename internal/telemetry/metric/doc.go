// Package metric provides Prometheus metrics for minikv.
//
//   - prometheus.go: metric registry and the /metrics HTTP handler
//   - collector.go: custom collector reporting store size per shard
//
// Metrics include:
//
//   - Command counters and latency histograms, labelled by command
//   - Connection gauges and counters
//   - Protocol error and lazy-expiry counters
//   - Key counts from the storage engine
//
// A nil *Registry is valid and records nothing, so components can take
// one unconditionally.
package metric
