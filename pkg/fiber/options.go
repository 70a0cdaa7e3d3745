package fiber

import (
	"log/slog"

	"github.com/vango-dev/fiber/pkg/telemetry"
)

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics records render and commit activity.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(r *Reconciler) {
		r.metrics = m
	}
}

// WithTracer wraps renders, commits and passive flushes in spans.
func WithTracer(t *telemetry.Tracer) Option {
	return func(r *Reconciler) {
		r.tracer = t
	}
}

// WithErrorHandler is called with every failed render attempt.
func WithErrorHandler(fn func(root *FiberRootNode, err error)) Option {
	return func(r *Reconciler) {
		r.onError = fn
	}
}

// WithCommitObserver is called after every commit, on the goroutine that
// drives the reconciler. Multiple observers run in registration order.
func WithCommitObserver(fn CommitObserver) Option {
	return func(r *Reconciler) {
		r.observers = append(r.observers, fn)
	}
}

// WithMaxRenderRetries retries a render that failed with a transient error
// up to n times before waiting for the next update. Invariant violations
// are never retried.
func WithMaxRenderRetries(n int) Option {
	return func(r *Reconciler) {
		if n >= 0 {
			r.maxRenderRetries = n
		}
	}
}

// WithDebug enables development warnings and phase logging.
func WithDebug(debug bool) Option {
	return func(r *Reconciler) {
		r.debug = debug
	}
}
