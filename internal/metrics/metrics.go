// Package metrics exposes the hot-loop counters and gauges spec.md
// leaves unspecified but doesn't forbid (§1 is silent on observability,
// the same way it's silent on most ambient concerns). The shape follows
// the pack's packet-analysis repo: package-level promauto collectors
// registered at import time, served over a side HTTP listener that
// never shares a goroutine with THE CORE's event loop.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nanokv"

var (
	// CommandsTotal counts dispatched commands by verb, the same
	// per-label counter shape as the pack's sniffer_received_packets_total.
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands dispatched, by verb",
		},
		[]string{"verb"},
	)

	// ArenaBytesInUse reports the bump allocator's current cursor
	// position so an operator can see capacity pressure before SET
	// starts returning out-of-memory errors.
	ArenaBytesInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "arena_bytes_in_use",
			Help:      "Bytes currently allocated from the value arena",
		},
	)

	// ArenaBytesCapacity reports the arena's fixed total size, so bytes
	// in use can be read as a fraction of capacity.
	ArenaBytesCapacity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "arena_bytes_capacity",
			Help:      "Total bytes available in the value arena",
		},
	)

	// OpenConnections tracks concurrently accepted sockets.
	OpenConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_connections",
			Help:      "Currently open client connections",
		},
	)

	// ProtocolViolationsTotal counts connections torn down because the
	// receive buffer filled without yielding a complete command (§4.2's
	// framing-violation teardown path).
	ProtocolViolationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_violations_total",
			Help:      "Connections closed due to a RESP framing violation",
		},
	)
)

// Serve starts the metrics HTTP endpoint at addr. It runs until the
// listener errors (including on process shutdown closing it), and is
// meant to be launched in its own goroutine by cmd/serve.go — it never
// touches the RESP listener's fd or epoll instance.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
