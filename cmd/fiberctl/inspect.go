package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/fiber/internal/config"
	"github.com/vango-dev/fiber/pkg/fiber"
	"github.com/vango-dev/fiber/pkg/inspect"
	"github.com/vango-dev/fiber/pkg/noop"
	"github.com/vango-dev/fiber/pkg/scheduler"
	"github.com/vango-dev/fiber/pkg/telemetry"
	"github.com/vango-dev/fiber/pkg/vdom"
)

func inspectCmd(dir *string) *cobra.Command {
	var (
		addr     string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Serve the inspector for a live demo app",
		Long: `Start a demo app that updates on every tick and serve its
committed trees over HTTP.

Routes:
  /roots               mounted roots
  /roots/{id}          snapshot of a root
  /roots/{id}/commits  recent commits
  /roots/{id}/stream   websocket stream of commits
  /metrics             Prometheus metrics

Examples:
  fiberctl inspect
  fiberctl inspect --addr :7070 --interval 250ms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*dir)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Inspect.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runInspect(ctx, cmd.OutOrStdout(), cfg, interval)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from fiber.json)")
	cmd.Flags().DurationVarP(&interval, "interval", "i", time.Second, "Time between demo app updates")

	return cmd
}

func runInspect(ctx context.Context, w io.Writer, cfg *config.Config, interval time.Duration) error {
	logger := newLogger(os.Stderr, cfg)

	registry := prometheus.NewRegistry()
	srvOpts := []inspect.Option{inspect.WithLogger(logger), inspect.WithGatherer(registry)}
	reconcilerOpts := append(cfg.ReconcilerOptions(), fiber.WithLogger(logger))
	if cfg.Inspect.Metrics {
		registry.MustRegister(collectors.NewGoCollector())
		metrics := telemetry.NewMetrics(append(cfg.MetricsOptions(), telemetry.WithRegistry(registry))...)
		reconcilerOpts = append(reconcilerOpts, fiber.WithMetrics(metrics))
	}
	if tracer := cfg.Tracer(); tracer != nil {
		reconcilerOpts = append(reconcilerOpts, fiber.WithTracer(tracer))
	}

	srv := inspect.New(srvOpts...)
	defer srv.Close()

	sched := scheduler.New(append(cfg.SchedulerOptions(), scheduler.WithLogger(logger))...)
	host := noop.New(noop.WithMicrotaskQueue(sched.QueueMicrotask))
	r := fiber.New(host, sched, append(reconcilerOpts,
		fiber.WithCommitObserver(srv.Observer()),
		fiber.WithErrorHandler(func(root *fiber.FiberRootNode, err error) {
			logger.Error("render failed", "root", root.ID, "error", err)
		}),
	)...)

	app := newLiveApp()
	for _, el := range app.elements() {
		r.UpdateContainer(el, r.CreateContainer(host.NewContainer()))
	}
	sched.FlushAll()

	httpServer := &http.Server{
		Addr:              cfg.Inspect.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	success(w, "Inspector listening on http://%s", cfg.Inspect.Addr)
	for _, root := range r.Roots() {
		info(w, "root %s", root.ID)
	}
	info(w, "Press Ctrl+C to stop")

	// The reconciler is driven from this goroutine only.
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(w)
			info(w, "Shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		case err := <-errCh:
			return err
		case <-ticker.C:
			app.tick()
			sched.FlushAll()
		}
	}
}

// liveApp renders two roots: a counter that changes every tick and a
// keyed queue that rotates every tick.
type liveApp struct {
	setTicks *fiber.Setter[int]
	setQueue *fiber.Setter[[]string]
}

func newLiveApp() *liveApp {
	return &liveApp{}
}

func (a *liveApp) elements() []*vdom.VNode {
	clock := fiber.FC("Clock", func(h *fiber.Hooks, _ vdom.Props) *vdom.VNode {
		ticks, set := fiber.UseState(h, 0)
		a.setTicks = set
		return vdom.Section(
			vdom.H1("Clock"),
			vdom.P(vdom.Textf("%d ticks", ticks)),
			vdom.If(ticks%2 == 1, vdom.Span(vdom.Class("odd"), "odd")),
		)
	})

	queue := fiber.FC("Queue", func(h *fiber.Hooks, _ vdom.Props) *vdom.VNode {
		items, set := fiber.UseStateFunc(h, func() []string {
			out := make([]string, 5)
			for i := range out {
				out[i] = "job-" + strconv.Itoa(i+1)
			}
			return out
		})
		a.setQueue = set
		return vdom.Ol(vdom.Range(items, func(item string, i int) *vdom.VNode {
			return vdom.Li(vdom.Key(item), vdom.AttrIf(i == 0, vdom.Class("head")), item)
		}))
	})

	return []*vdom.VNode{clock.El(), queue.El()}
}

// tick advances both roots. It must run on the reconciler's goroutine.
func (a *liveApp) tick() {
	a.setTicks.Update(func(n int) int { return n + 1 })
	a.setQueue.Update(func(items []string) []string {
		if len(items) < 2 {
			return items
		}
		out := make([]string, 0, len(items))
		out = append(out, items[1:]...)
		return append(out, items[0])
	})
}
