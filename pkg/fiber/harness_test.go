package fiber

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vango-dev/fiber/pkg/noop"
	"github.com/vango-dev/fiber/pkg/scheduler"
	"github.com/vango-dev/fiber/pkg/vdom"
)

// testEnv wires a reconciler to the in-memory host, with microtasks routed
// through the scheduler so that FlushAll drains everything.
type testEnv struct {
	t         *testing.T
	sched     *scheduler.Scheduler
	host      *noop.Host
	r         *Reconciler
	container *noop.Node
	root      *FiberRootNode
	logs      *bytes.Buffer
	commits   []CommitRecord
	errs      []error
}

type envConfig struct {
	sliceBudget int
	opts        []Option
}

type envOption func(*envConfig)

func sliceBudget(n int) envOption {
	return func(c *envConfig) { c.sliceBudget = n }
}

func reconcilerOptions(opts ...Option) envOption {
	return func(c *envConfig) { c.opts = append(c.opts, opts...) }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	cfg := envConfig{sliceBudget: 1 << 20}
	for _, opt := range opts {
		opt(&cfg)
	}

	env := &testEnv{t: t, logs: &bytes.Buffer{}}
	logger := slog.New(slog.NewTextHandler(env.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	env.sched = scheduler.New(scheduler.WithSliceBudget(cfg.sliceBudget), scheduler.WithLogger(logger))
	env.host = noop.New(noop.WithMicrotaskQueue(env.sched.QueueMicrotask))

	base := []Option{
		WithLogger(logger),
		WithDebug(true),
		WithCommitObserver(func(_ *FiberRootNode, rec CommitRecord) {
			env.commits = append(env.commits, rec)
		}),
		WithErrorHandler(func(_ *FiberRootNode, err error) {
			env.errs = append(env.errs, err)
		}),
	}
	env.r = New(env.host, env.sched, append(base, cfg.opts...)...)
	env.container = env.host.NewContainer()
	env.root = env.r.CreateContainer(env.container)
	return env
}

// render renders el into the root and runs everything that follows,
// passive effects included.
func (e *testEnv) render(el *vdom.VNode) {
	e.t.Helper()
	e.r.UpdateContainer(el, e.root)
	e.flush()
}

func (e *testEnv) flush() {
	e.sched.FlushAll()
}

func (e *testEnv) html() string {
	return e.container.String()
}

func (e *testEnv) lastCommit() CommitRecord {
	e.t.Helper()
	require.NotEmpty(e.t, e.commits, "no commit happened")
	return e.commits[len(e.commits)-1]
}
