package reactor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures engine metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "reactor").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures engine metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "reactor",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors fed by one or more engines.
// A nil *Metrics records nothing.
type Metrics struct {
	evaluations      *prometheus.CounterVec
	evalDuration     *prometheus.HistogramVec
	cacheHits        *prometheus.CounterVec
	invalidations    *prometheus.CounterVec
	mutations        *prometheus.CounterVec
	mutationDuration *prometheus.HistogramVec
	nodes            prometheus.Counter
}

// NewMetrics creates and registers the engine collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "getter_evaluations_total",
			Help:        "Total number of completed getter evaluations",
			ConstLabels: config.ConstLabels,
		}, []string{"getter"}),

		evalDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "getter_evaluation_duration_seconds",
			Help:        "Getter evaluation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"getter"}),

		cacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "getter_cache_hits_total",
			Help:        "Total number of getter reads served from cache",
			ConstLabels: config.ConstLabels,
		}, []string{"getter"}),

		invalidations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "getter_invalidations_total",
			Help:        "Total number of getter cache invalidations",
			ConstLabels: config.ConstLabels,
		}, []string{"getter"}),

		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mutations_total",
			Help:        "Total number of mutation calls",
			ConstLabels: config.ConstLabels,
		}, []string{"mutation", "status"}),

		mutationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mutation_duration_seconds",
			Help:        "Mutation duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"mutation"}),

		nodes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "nodes_wrapped_total",
			Help:        "Total number of state nodes wrapped",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) evaluated(getter string, d time.Duration) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(getter).Inc()
	m.evalDuration.WithLabelValues(getter).Observe(d.Seconds())
}

func (m *Metrics) hit(getter string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(getter).Inc()
}

func (m *Metrics) invalidated(getter string) {
	if m == nil {
		return
	}
	m.invalidations.WithLabelValues(getter).Inc()
}

func (m *Metrics) committed(mutation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.mutations.WithLabelValues(mutation, status).Inc()
	m.mutationDuration.WithLabelValues(mutation).Observe(d.Seconds())
}

func (m *Metrics) nodeAllocated() {
	if m == nil {
		return
	}
	m.nodes.Inc()
}
