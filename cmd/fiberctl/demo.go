package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vango-dev/fiber/internal/config"
	"github.com/vango-dev/fiber/internal/errors"
	"github.com/vango-dev/fiber/pkg/fiber"
	"github.com/vango-dev/fiber/pkg/noop"
	"github.com/vango-dev/fiber/pkg/scheduler"
	"github.com/vango-dev/fiber/pkg/vdom"
)

type scenario struct {
	name    string
	summary string
	run     func(w io.Writer, cfg *config.Config) error
}

var scenarios = []scenario{
	{"reorder", "Keyed list reorder, insert and delete", runReorder},
	{"counter", "Batched state updates committed once", runCounter},
	{"effects", "Passive effect mount, cleanup and unmount order", runEffects},
	{"preempt", "A sync update interrupting a time-sliced render", runPreempt},
}

func findScenario(name string) (scenario, bool) {
	for _, s := range scenarios {
		if s.name == name {
			return s, true
		}
	}
	return scenario{}, false
}

func demoCmd(dir *string) *cobra.Command {
	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.name
	}

	cmd := &cobra.Command{
		Use:   "demo [scenario]",
		Short: "Replay a reconciliation scenario",
		Long: `Replay a scenario against the in-memory host and print the host
operations and commit records of every step.

Run without arguments to list the scenarios.

Examples:
  fiberctl demo
  fiberctl demo reorder
  fiberctl demo preempt`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if len(args) == 0 {
				listScenarios(w)
				return nil
			}
			s, ok := findScenario(args[0])
			if !ok {
				return errors.New("F040").
					WithSubject("%s", args[0]).
					WithSuggestion("Available scenarios: " + strings.Join(names, ", "))
			}
			cfg, err := loadConfig(*dir)
			if err != nil {
				return err
			}
			return s.run(w, cfg)
		},
	}
	return cmd
}

func listScenarios(w io.Writer) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"scenario", "description"})
	for _, s := range scenarios {
		tbl.AppendRow(table.Row{s.name, s.summary})
	}
	tbl.Render()
}

// session is a reconciler rendering one root into the in-memory host.
// Microtasks go through the scheduler so that flush drains everything.
type session struct {
	w         io.Writer
	sched     *scheduler.Scheduler
	host      *noop.Host
	r         *fiber.Reconciler
	container *noop.Node
	root      *fiber.FiberRootNode
	commits   []fiber.CommitRecord
}

func newSession(w io.Writer, cfg *config.Config, schedOpts ...scheduler.Option) *session {
	s := &session{w: w}
	logger := newLogger(io.Discard, cfg)
	s.sched = scheduler.New(append(append(cfg.SchedulerOptions(), scheduler.WithLogger(logger)), schedOpts...)...)
	s.host = noop.New(noop.WithMicrotaskQueue(s.sched.QueueMicrotask))

	opts := append(cfg.ReconcilerOptions(),
		fiber.WithLogger(logger),
		fiber.WithCommitObserver(func(_ *fiber.FiberRootNode, rec fiber.CommitRecord) {
			s.commits = append(s.commits, rec)
		}),
	)
	s.r = fiber.New(s.host, s.sched, opts...)
	s.container = s.host.NewContainer()
	s.root = s.r.CreateContainer(s.container)
	return s
}

// step runs fn, drains all work and prints what reached the host.
func (s *session) step(title string, fn func()) {
	s.host.ResetOps()
	before := len(s.commits)
	fn()
	s.sched.FlushAll()

	fmt.Fprintf(s.w, "\n== %s\n", title)
	info(s.w, "html: %s", s.container.String())
	printOps(s.w, s.host.TakeOps())
	printCommits(s.w, s.commits[before:])
}

func (s *session) render(el *vdom.VNode) func() {
	return func() { s.r.UpdateContainer(el, s.root) }
}

func printOps(w io.Writer, ops []noop.Op) {
	mutations := noop.Mutations(ops)
	if len(mutations) == 0 {
		info(w, "no host mutations")
		return
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle("host mutations (%s created)", humanize.Comma(int64(len(ops)-len(mutations))))
	tbl.AppendHeader(table.Row{"#", "op", "detail"})
	for i, op := range mutations {
		tbl.AppendRow(table.Row{i + 1, op.Kind, op.String()})
	}
	tbl.Render()
}

func printCommits(w io.Writer, commits []fiber.CommitRecord) {
	if len(commits) == 0 {
		info(w, "no commits")
		return
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"commit", "lane", "placed", "updates", "deletions", "took"})
	for _, c := range commits {
		tbl.AppendRow(table.Row{
			c.Sequence,
			c.Lane,
			strings.Join(c.Placed, " "),
			c.Updates,
			c.Deletions,
			formatDuration(c.Duration),
		})
	}
	tbl.Render()
}

func formatDuration(d time.Duration) string {
	return humanize.SIWithDigits(d.Seconds(), 1, "s")
}

func keyedList(items ...string) *vdom.VNode {
	return vdom.Ul(vdom.Range(items, func(item string, _ int) *vdom.VNode {
		return vdom.Li(vdom.Key(item), "item "+item)
	}))
}

func runReorder(w io.Writer, cfg *config.Config) error {
	s := newSession(w, cfg)
	s.step("mount [a b c d e]", s.render(keyedList("a", "b", "c", "d", "e")))
	s.step("reverse to [e d c b a]", s.render(keyedList("e", "d", "c", "b", "a")))
	s.step("insert x, delete b and d: [e c x a]", s.render(keyedList("e", "c", "x", "a")))

	items := []string{"e", "c", "x", "a"}
	sort.Strings(items)
	s.step("sort to "+fmt.Sprint(items), s.render(keyedList(items...)))
	return nil
}

func runCounter(w io.Writer, cfg *config.Config) error {
	s := newSession(w, cfg)

	var setCount *fiber.Setter[int]
	renders := 0
	counter := fiber.FC("Counter", func(h *fiber.Hooks, _ vdom.Props) *vdom.VNode {
		renders++
		count, set := fiber.UseState(h, 0)
		setCount = set
		return vdom.Button(vdom.Textf("clicked %d times", count))
	})

	s.step("mount", s.render(counter.El()))
	s.step("three clicks in one event", func() {
		for i := 0; i < 3; i++ {
			setCount.Update(func(n int) int { return n + 1 })
		}
	})
	s.step("set to the current value", func() { setCount.Set(3) })

	info(w, "component rendered %s times", humanize.Comma(int64(renders)))
	return nil
}

func runEffects(w io.Writer, cfg *config.Config) error {
	s := newSession(w, cfg)

	var log []string
	var setCount *fiber.Setter[int]
	ticker := fiber.FC("Ticker", func(h *fiber.Hooks, _ vdom.Props) *vdom.VNode {
		count, set := fiber.UseState(h, 0)
		setCount = set
		parity := count % 2

		fiber.UseEffect(h, func() func() {
			log = append(log, "mount")
			return func() { log = append(log, "unmount") }
		}, fiber.Deps())
		fiber.UseEffect(h, func() func() {
			log = append(log, "subscribe parity "+strconv.Itoa(parity))
			return func() { log = append(log, "unsubscribe parity "+strconv.Itoa(parity)) }
		}, fiber.Deps(parity))

		return vdom.P(vdom.Textf("tick %d", count))
	})

	flushLog := func() {
		for _, line := range log {
			info(w, "effect: %s", line)
		}
		log = log[:0]
	}

	s.step("mount", s.render(ticker.El()))
	flushLog()
	for i := 1; i <= 2; i++ {
		s.step("tick "+strconv.Itoa(i), func() { setCount.Update(func(n int) int { return n + 1 }) })
		flushLog()
	}
	s.step("unmount", func() { s.r.Unmount(s.root) })
	flushLog()
	return nil
}

func runPreempt(w io.Writer, cfg *config.Config) error {
	s := newSession(w, cfg, scheduler.WithSliceBudget(2))

	var setCount *fiber.Setter[int]
	var setStatus *fiber.Setter[string]
	dashboard := fiber.FC("Dashboard", func(h *fiber.Hooks, _ vdom.Props) *vdom.VNode {
		count, sc := fiber.UseState(h, 0)
		status, ss := fiber.UseState(h, "idle")
		setCount, setStatus = sc, ss
		return vdom.Div(
			vdom.Span(vdom.Textf("count %d", count)),
			vdom.Span("status "+status),
			vdom.Ul(vdom.Repeat(4, func(i int) *vdom.VNode {
				return vdom.Li(vdom.Key(i), vdom.Textf("row %d", i))
			})),
		)
	})

	s.step("mount", s.render(dashboard.El()))
	s.step("default update interrupted by a sync update", func() {
		setCount.Update(func(n int) int { return n + 1 })
		s.sched.RunNext()
		info(w, "paused render on lane %s", fiber.LaneName(s.root.RenderLane()))
		s.sched.RunWithPriority(scheduler.ImmediatePriority, func() {
			setStatus.Set("busy")
		})
	})
	return nil
}
