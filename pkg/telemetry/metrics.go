package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Render statuses used as the "status" label of fiber_renders_total.
const (
	StatusCompleted   = "completed"
	StatusInterrupted = "interrupted"
	StatusErrored     = "errored"
)

// Host mutation ops used as the "op" label of fiber_host_mutations_total.
const (
	OpPlacement = "placement"
	OpUpdate    = "update"
	OpDeletion  = "deletion"
)

// Passive effect phases used as the "phase" label.
const (
	PhaseDestroy = "destroy"
	PhaseCreate  = "create"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "fiber").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
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
		Namespace: "fiber",
		// Render slices are short; 50µs to ~1.6s.
		Buckets:  prometheus.ExponentialBuckets(0.00005, 4, 9),
		Registry: prometheus.DefaultRegisterer,
	}
}

// Metrics holds the reconciler's Prometheus collectors.
type Metrics struct {
	renders        *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	commits        prometheus.Counter
	hostMutations  *prometheus.CounterVec
	passiveEffects *prometheus.CounterVec
	rootsActive    prometheus.Gauge
}

// NewMetrics creates and registers the collectors. Registering twice against
// the same registry panics, so share one *Metrics between reconcilers.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of render attempts by lane and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"lane", "status"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Duration of one render slice in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"lane"}),

		commits: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "commits_total",
			Help:        "Total number of committed trees",
			ConstLabels: config.ConstLabels,
		}),

		hostMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "host_mutations_total",
			Help:        "Total number of host mutations applied during commit",
			ConstLabels: config.ConstLabels,
		}, []string{"op"}),

		passiveEffects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "passive_effects_total",
			Help:        "Total number of passive effect callbacks run",
			ConstLabels: config.ConstLabels,
		}, []string{"phase"}),

		rootsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "roots_active",
			Help:        "Number of mounted roots",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// ObserveRender records one render slice.
func (m *Metrics) ObserveRender(lane, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.renders.WithLabelValues(lane, status).Inc()
	m.renderDuration.WithLabelValues(lane).Observe(d.Seconds())
}

// ObserveCommit records one commit and the host mutations it applied.
func (m *Metrics) ObserveCommit(placements, updates, deletions int) {
	if m == nil {
		return
	}
	m.commits.Inc()
	m.hostMutations.WithLabelValues(OpPlacement).Add(float64(placements))
	m.hostMutations.WithLabelValues(OpUpdate).Add(float64(updates))
	m.hostMutations.WithLabelValues(OpDeletion).Add(float64(deletions))
}

// ObservePassive records n passive effect callbacks of the given phase.
func (m *Metrics) ObservePassive(phase string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.passiveEffects.WithLabelValues(phase).Add(float64(n))
}

// RootCreated increments the active roots gauge.
func (m *Metrics) RootCreated() {
	if m == nil {
		return
	}
	m.rootsActive.Inc()
}

// RootUnmounted decrements the active roots gauge.
func (m *Metrics) RootUnmounted() {
	if m == nil {
		return
	}
	m.rootsActive.Dec()
}
