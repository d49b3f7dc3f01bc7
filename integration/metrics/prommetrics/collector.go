package prommetrics

import (
	"io"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/streamcast/core/logger"
	"github.com/dmitrymomot/streamcast/pkg/broadcast"
)

// StatsProvider is satisfied by broadcast.Handle and broadcast.WeakHandle.
type StatsProvider interface {
	Stats() broadcast.Stats
}

// Option configures a Collector.
type Option func(*Collector)

// WithNamespace sets the metric namespace. Defaults to "streamcast".
func WithNamespace(ns string) Option {
	return func(c *Collector) {
		c.namespace = ns
	}
}

// WithLogger sets the logger used for registration events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Collector) {
		if l != nil {
			c.logger = l
		}
	}
}

// Collector exports broadcast statistics as Prometheus metrics labeled by
// stream name. Values are read from Stats on every scrape.
type Collector struct {
	namespace string
	logger    *slog.Logger

	mu        sync.RWMutex
	providers map[string]StatsProvider

	capacity *prometheus.Desc
	buffered *prometheus.Desc
	produced *prometheus.Desc
	polls    *prometheus.Desc
	missed   *prometheus.Desc
	handles  *prometheus.Desc
	parked   *prometheus.Desc
	active   *prometheus.Desc
	finished *prometheus.Desc
}

// NewCollector creates an empty collector. Register it with a prometheus.Registerer.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		namespace: "streamcast",
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		providers: make(map[string]StatsProvider),
	}
	for _, opt := range opts {
		opt(c)
	}

	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(
			prometheus.BuildFQName(c.namespace, "broadcast", name),
			help,
			append([]string{"stream"}, labels...),
			nil,
		)
	}
	c.capacity = desc("capacity", "Ring buffer capacity")
	c.buffered = desc("buffered_items", "Items currently held in the ring buffer")
	c.produced = desc("produced_items_total", "Items produced by the source")
	c.polls = desc("source_polls_total", "Completed calls into the source")
	c.missed = desc("missed_items_total", "Items skipped by lagging consumers")
	c.handles = desc("handles", "Open handles by kind", "kind")
	c.parked = desc("parked_consumers", "Consumers waiting for the next item")
	c.active = desc("source_active", "1 while a consumer is inside the source")
	c.finished = desc("finished", "1 once the source reported its end")
	return c
}

// Register adds a broadcast under its Stats name. Register a WeakHandle to
// avoid keeping the broadcast alive for metrics alone. Torn down broadcasts
// are dropped on the next scrape.
func (c *Collector) Register(p StatsProvider) error {
	name := p.Stats().Name
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.providers[name]; ok {
		return ErrDuplicateStream
	}
	c.providers[name] = p
	c.logger.Debug("broadcast registered for metrics", logger.Stream(name))
	return nil
}

// Unregister removes the named broadcast.
func (c *Collector) Unregister(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.providers[name]
	delete(c.providers, name)
	return ok
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.capacity, c.buffered, c.produced, c.polls, c.missed,
		c.handles, c.parked, c.active, c.finished,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	snapshot := make(map[string]broadcast.Stats, len(c.providers))
	for name, p := range c.providers {
		snapshot[name] = p.Stats()
	}
	c.mu.RUnlock()

	var gone []string
	for name, s := range snapshot {
		if s.Gone {
			gone = append(gone, name)
			continue
		}
		gauge := func(d *prometheus.Desc, v float64, labels ...string) {
			ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, append([]string{name}, labels...)...)
		}
		counter := func(d *prometheus.Desc, v uint64) {
			ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), name)
		}

		gauge(c.capacity, float64(s.Capacity))
		gauge(c.buffered, float64(s.Buffered))
		counter(c.produced, s.NextSeq)
		counter(c.polls, s.SourcePolls)
		counter(c.missed, s.MissedItems)
		gauge(c.handles, float64(s.StrongHandles), "strong")
		gauge(c.handles, float64(s.WeakHandles), "weak")
		gauge(c.parked, float64(s.Parked))
		gauge(c.active, boolValue(s.Active))
		gauge(c.finished, boolValue(s.Finished))
	}

	if len(gone) == 0 {
		return
	}
	c.mu.Lock()
	for _, name := range gone {
		delete(c.providers, name)
	}
	c.mu.Unlock()
	c.logger.Debug("dropped torn down broadcasts from metrics", logger.Count("streams", len(gone)))
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
