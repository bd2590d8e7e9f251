// Package metric provides Prometheus metrics for NoteChain.
//
// Metrics include:
//
//   - Note table size and note operation counters
//   - Restart hook outcomes (save result, restore format)
//   - HTTP request counters and latency histograms
//   - Badger medium sizes (registered by the medium itself)
//
// Metrics are exposed at /metrics in Prometheus format. Every recording
// method is safe to call on a nil *Registry, so components built without
// metrics need no guards.
package metric
