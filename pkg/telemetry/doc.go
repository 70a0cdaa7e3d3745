// Package telemetry records reconciler activity as Prometheus metrics and
// OpenTelemetry spans.
//
// Metrics collected (namespace "fiber" by default):
//   - fiber_renders_total: Counter of render attempts by lane and status
//   - fiber_render_duration_seconds: Histogram of render slice duration by lane
//   - fiber_commits_total: Counter of commits
//   - fiber_host_mutations_total: Counter of host mutations by op
//   - fiber_passive_effects_total: Counter of passive effect callbacks by phase
//   - fiber_roots_active: Gauge of mounted roots
//
// Both *Metrics and *Tracer are safe to use as nil, which disables them.
package telemetry
