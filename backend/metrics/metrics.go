// Package metrics counts remote calls and transferred bytes. The counters
// are Prometheus collectors so embedders can scrape them; the CLI only takes
// point-in-time snapshots for its end-of-run summary.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "canopy"

type Collector struct {
	registry *prometheus.Registry

	remoteCalls   *prometheus.CounterVec
	remoteErrors  *prometheus.CounterVec
	transferBytes *prometheus.CounterVec

	mu        sync.Mutex
	calls     map[string]uint64
	errors    map[string]uint64
	bytesUp   uint64
	bytesDown uint64
}

// Snapshot is a point-in-time view of the counters, keyed by operation name.
type Snapshot struct {
	RemoteCalls  map[string]uint64
	RemoteErrors map[string]uint64
	BytesUp      uint64
	BytesDown    uint64
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		remoteCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_calls_total",
			Help:      "Remote channel calls issued, by operation.",
		}, []string{"op"}),
		remoteErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_errors_total",
			Help:      "Remote channel calls that returned an error, by operation.",
		}, []string{"op"}),
		transferBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_bytes_total",
			Help:      "Bytes moved through the transfer engine, by direction.",
		}, []string{"direction"}),
		calls:  make(map[string]uint64),
		errors: make(map[string]uint64),
	}
	c.registry.MustRegister(c.remoteCalls, c.remoteErrors, c.transferBytes)
	return c
}

// Registry exposes the collectors for embedders that scrape.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) ObserveCall(op string, err error) {
	c.remoteCalls.WithLabelValues(op).Inc()
	c.mu.Lock()
	c.calls[op]++
	if err != nil {
		c.errors[op]++
	}
	c.mu.Unlock()
	if err != nil {
		c.remoteErrors.WithLabelValues(op).Inc()
	}
}

func (c *Collector) AddBytesUp(n int) {
	if n <= 0 {
		return
	}
	c.transferBytes.WithLabelValues("up").Add(float64(n))
	c.mu.Lock()
	c.bytesUp += uint64(n)
	c.mu.Unlock()
}

func (c *Collector) AddBytesDown(n int) {
	if n <= 0 {
		return
	}
	c.transferBytes.WithLabelValues("down").Add(float64(n))
	c.mu.Lock()
	c.bytesDown += uint64(n)
	c.mu.Unlock()
}

func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		RemoteCalls:  make(map[string]uint64, len(c.calls)),
		RemoteErrors: make(map[string]uint64, len(c.errors)),
		BytesUp:      c.bytesUp,
		BytesDown:    c.bytesDown,
	}
	for op, n := range c.calls {
		snap.RemoteCalls[op] = n
	}
	for op, n := range c.errors {
		snap.RemoteErrors[op] = n
	}
	return snap
}

// TotalCalls sums remote calls across operations.
func (s Snapshot) TotalCalls() uint64 {
	var total uint64
	for _, n := range s.RemoteCalls {
		total += n
	}
	return total
}
