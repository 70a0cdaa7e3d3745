package fibertest

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/fiber/pkg/fiber"
	"github.com/vango-dev/fiber/pkg/noop"
	"github.com/vango-dev/fiber/pkg/scheduler"
	"github.com/vango-dev/fiber/pkg/vdom"
)

// Harness renders into one root of the in-memory host.
type Harness struct {
	t          testing.TB
	Scheduler  *scheduler.Scheduler
	Host       *noop.Host
	Reconciler *fiber.Reconciler
	Container  *noop.Node
	Root       *fiber.FiberRootNode

	logs    bytes.Buffer
	commits []fiber.CommitRecord
	errs    []error
}

type config struct {
	sliceBudget int
	opts        []fiber.Option
}

// Option configures a Harness.
type Option func(*config)

// WithSliceBudget makes the scheduler yield after n units of work.
func WithSliceBudget(n int) Option {
	return func(c *config) {
		c.sliceBudget = n
	}
}

// WithReconcilerOptions passes extra options to the reconciler.
func WithReconcilerOptions(opts ...fiber.Option) Option {
	return func(c *config) {
		c.opts = append(c.opts, opts...)
	}
}

// New creates a harness with an empty root.
func New(t testing.TB, opts ...Option) *Harness {
	t.Helper()
	cfg := config{sliceBudget: 1 << 20}
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &Harness{t: t}
	logger := slog.New(slog.NewTextHandler(&h.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h.Scheduler = scheduler.New(scheduler.WithSliceBudget(cfg.sliceBudget), scheduler.WithLogger(logger))
	h.Host = noop.New(noop.WithMicrotaskQueue(h.Scheduler.QueueMicrotask))

	base := []fiber.Option{
		fiber.WithLogger(logger),
		fiber.WithDebug(true),
		fiber.WithCommitObserver(func(_ *fiber.FiberRootNode, rec fiber.CommitRecord) {
			h.commits = append(h.commits, rec)
		}),
		fiber.WithErrorHandler(func(_ *fiber.FiberRootNode, err error) {
			h.errs = append(h.errs, err)
		}),
	}
	h.Reconciler = fiber.New(h.Host, h.Scheduler, append(base, cfg.opts...)...)
	h.Container = h.Host.NewContainer()
	h.Root = h.Reconciler.CreateContainer(h.Container)
	return h
}

// Render renders el into the root and drains all scheduled work.
func (h *Harness) Render(el *vdom.VNode) *Harness {
	h.Reconciler.UpdateContainer(el, h.Root)
	h.Flush()
	return h
}

// Act runs fn, typically one or more state updates, and drains all
// scheduled work.
func (h *Harness) Act(fn func()) *Harness {
	fn()
	h.Flush()
	return h
}

// Flush drains the scheduler and returns how many tasks ran.
func (h *Harness) Flush() int {
	return h.Scheduler.FlushAll()
}

// Step runs a single scheduler task. It reports whether one ran.
func (h *Harness) Step() bool {
	return h.Scheduler.RunNext()
}

// Unmount unmounts the root and drains all scheduled work.
func (h *Harness) Unmount() {
	h.Reconciler.Unmount(h.Root)
	h.Flush()
}

// HTML returns the markup of the committed host tree.
func (h *Harness) HTML() string {
	return h.Container.String()
}

// Text returns the text content of the committed host tree.
func (h *Harness) Text() string {
	return h.Container.TextContent()
}

// Mutations returns the host operations that changed the attached tree
// since the last call.
func (h *Harness) Mutations() []noop.Op {
	return noop.Mutations(h.Host.TakeOps())
}

// Commits returns the records of all commits so far.
func (h *Harness) Commits() []fiber.CommitRecord {
	return h.commits
}

// LastCommit returns the most recent commit record.
func (h *Harness) LastCommit() (fiber.CommitRecord, bool) {
	if len(h.commits) == 0 {
		return fiber.CommitRecord{}, false
	}
	return h.commits[len(h.commits)-1], true
}

// Errors returns the errors of failed render attempts.
func (h *Harness) Errors() []error {
	return h.errs
}

// Logs returns everything the reconciler and scheduler logged.
func (h *Harness) Logs() string {
	return h.logs.String()
}

// RenderToString mounts node into a fresh root and returns the committed
// markup.
//
// Example:
//
//	html := fibertest.RenderToString(t, Greeting.El(vdom.Prop("name", "Ada")))
func RenderToString(t testing.TB, node *vdom.VNode) string {
	t.Helper()
	return New(t).Render(node).HTML()
}

// ExpectHTML asserts that the committed markup equals expected.
func ExpectHTML(t testing.TB, h *Harness, expected string) {
	t.Helper()
	if html := h.HTML(); html != expected {
		t.Errorf("expected rendered output\n  %s\ngot\n  %s", expected, truncate(html, 500))
	}
}

// ExpectContains asserts that the committed markup contains expected.
//
// Example:
//
//	fibertest.ExpectContains(t, h, "Welcome Admin")
func ExpectContains(t testing.TB, h *Harness, expected string) {
	t.Helper()
	html := h.HTML()
	if !strings.Contains(html, expected) {
		t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that the committed markup does not contain
// unexpected.
func ExpectNotContains(t testing.TB, h *Harness, unexpected string) {
	t.Helper()
	html := h.HTML()
	if strings.Contains(html, unexpected) {
		t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts that the committed markup contains a tag.
//
// Example:
//
//	fibertest.ExpectElement(t, h, "button")
func ExpectElement(t testing.TB, h *Harness, tag string) {
	t.Helper()
	html := h.HTML()
	if !strings.Contains(html, "<"+tag) {
		t.Errorf("expected rendered output to contain <%s> element, got:\n%s", tag, truncate(html, 500))
	}
}

// ExpectAttribute asserts that the committed markup contains an attribute
// value.
//
// Example:
//
//	fibertest.ExpectAttribute(t, h, "class", "btn-primary")
func ExpectAttribute(t testing.TB, h *Harness, attr, value string) {
	t.Helper()
	html := h.HTML()
	needle := attr + `="` + value + `"`
	if !strings.Contains(html, needle) {
		t.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(html, 500))
	}
}

// ExpectMutations asserts how many host mutations happened since the last
// call to Mutations.
func ExpectMutations(t testing.TB, h *Harness, n int) []noop.Op {
	t.Helper()
	ops := h.Mutations()
	if len(ops) != n {
		lines := make([]string, len(ops))
		for i, op := range ops {
			lines[i] = op.String()
		}
		t.Errorf("expected %d host mutations, got %d:\n  %s", n, len(ops), strings.Join(lines, "\n  "))
	}
	return ops
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
