// Package monitoring provides Prometheus metrics for the service: HTTP
// request counters and latencies, state machine operation counters keyed
// by outcome tag, arena size and epoch gauges, and event stream counters.
package monitoring
