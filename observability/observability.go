// Package observability wraps transport/tcp.Window from the outside with
// Prometheus instrumentation. It never touches Window internals — it only
// reads the same exported accessors (SndNxt, SndUna, SndAvail, QueueLen)
// an enclosing stack already has access to, and is fed RTT samples and
// RTO-start events by the caller after each Window call returns, the way
// exporter.TCPInfoCollector polls a kernel tcp_info struct without the
// struct itself knowing Prometheus exists.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nilsmagnus/tcpsndwnd/transport/tcp"
)

type connEntry struct {
	window *tcp.Window
	labels []string
}

// Collector is a prometheus.Collector over a set of registered
// connections, each identified by an opaque id (a short xid string is the
// expected caller convention; see cmd/tcpsenddemo).
type Collector struct {
	mu          sync.Mutex
	conns       map[string]connEntry
	labelNames  []string
	constLabels prometheus.Labels

	sndNxt    *prometheus.Desc
	sndUna    *prometheus.Desc
	sndAvail  *prometheus.Desc
	queueLen  *prometheus.Desc
	rtt       *prometheus.HistogramVec
	rtoStarts *prometheus.CounterVec
}

// NewCollector builds a Collector. labelNames are the per-connection label
// keys a caller will supply values for on Add/ObserveRTT/ObserveRTOStart;
// constLabels apply to every metric regardless of connection.
func NewCollector(prefix string, labelNames []string, constLabels prometheus.Labels) *Collector {
	c := &Collector{
		conns:       make(map[string]connEntry),
		labelNames:  labelNames,
		constLabels: constLabels,
	}

	c.sndNxt = prometheus.NewDesc(prefix+"_snd_nxt", "Next sequence number to assign to new data.", labelNames, constLabels)
	c.sndUna = prometheus.NewDesc(prefix+"_snd_una", "Oldest unacknowledged sequence number.", labelNames, constLabels)
	c.sndAvail = prometheus.NewDesc(prefix+"_snd_avail", "Currently usable send window, in bytes.", labelNames, constLabels)
	c.queueLen = prometheus.NewDesc(prefix+"_retransmit_queue_len", "Number of outstanding unacknowledged segments.", labelNames, constLabels)

	c.rtt = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        prefix + "_rtt_seconds",
		Help:        "RTT samples computed from acked segments.",
		ConstLabels: constLabels,
		Buckets:     prometheus.DefBuckets,
	}, labelNames)

	c.rtoStarts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        prefix + "_rto_starts_total",
		Help:        "Number of times the retransmit queue transitioned from empty to non-empty.",
		ConstLabels: constLabels,
	}, labelNames)

	return c
}

// Add registers w under id, with per-connection label values matching the
// labelNames passed to NewCollector.
func (c *Collector) Add(id string, w *tcp.Window, labelValues []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conns[id] = connEntry{window: w, labels: labelValues}
}

// Remove unregisters the connection with the given id.
func (c *Collector) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.conns, id)
}

// ObserveRTT records an RTT sample for the connection identified by
// labelValues. Call this after an AckSegment call reports HasRTT.
func (c *Collector) ObserveRTT(labelValues []string, rttSeconds float64) {
	c.rtt.WithLabelValues(labelValues...).Observe(rttSeconds)
}

// ObserveRTOStart increments the RTO-start counter for the connection
// identified by labelValues. Call this whenever a QueueSegment call reports
// StartRTO.
func (c *Collector) ObserveRTOStart(labelValues []string) {
	c.rtoStarts.WithLabelValues(labelValues...).Inc()
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(descs chan<- *prometheus.Desc) {
	descs <- c.sndNxt
	descs <- c.sndUna
	descs <- c.sndAvail
	descs <- c.queueLen
	c.rtt.Describe(descs)
	c.rtoStarts.Describe(descs)
}

// Collect implements prometheus.Collector, reading the current scalar
// state off every registered Window.
func (c *Collector) Collect(metrics chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entry := range c.conns {
		w := entry.window
		metrics <- prometheus.MustNewConstMetric(c.sndNxt, prometheus.GaugeValue, float64(w.SndNxt()), entry.labels...)
		metrics <- prometheus.MustNewConstMetric(c.sndUna, prometheus.GaugeValue, float64(w.SndUna()), entry.labels...)
		metrics <- prometheus.MustNewConstMetric(c.sndAvail, prometheus.GaugeValue, float64(w.SndAvail()), entry.labels...)
		metrics <- prometheus.MustNewConstMetric(c.queueLen, prometheus.GaugeValue, float64(w.QueueLen()), entry.labels...)
	}
	c.rtt.Collect(metrics)
	c.rtoStarts.Collect(metrics)
}
