package fiber

import (
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/vango-dev/fiber/pkg/scheduler"
	"github.com/vango-dev/fiber/pkg/telemetry"
	"github.com/vango-dev/fiber/pkg/vdom"
)

type executionContext uint8

const (
	noContext     executionContext = 0
	renderContext executionContext = 1 << 0
	commitContext executionContext = 1 << 1
)

// Reconciler drives renders and commits for any number of roots sharing a
// host and a scheduler.
type Reconciler struct {
	host      HostConfig
	scheduler Scheduler

	logger    *slog.Logger
	metrics   *telemetry.Metrics
	tracer    *telemetry.Tracer
	onError   func(root *FiberRootNode, err error)
	observers []CommitObserver

	maxRenderRetries int
	debug            bool

	executionContext executionContext
	syncQueue        []func()
	isFlushingSync   bool
	commitSeq        uint64

	roots map[string]*FiberRootNode

	reconcileChildFibers *childReconciler
	mountChildFibers     *childReconciler
}

// New creates a Reconciler rendering into host. A nil sched gets a default
// *scheduler.Scheduler.
func New(host HostConfig, sched Scheduler, opts ...Option) *Reconciler {
	if sched == nil {
		sched = scheduler.New()
	}
	r := &Reconciler{
		host:      host,
		scheduler: sched,
		logger:    slog.Default(),
		roots:     make(map[string]*FiberRootNode),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "fiber")
	r.reconcileChildFibers = &childReconciler{r: r, shouldTrackEffects: true}
	r.mountChildFibers = &childReconciler{r: r, shouldTrackEffects: false}
	return r
}

// Scheduler returns the scheduler the reconciler schedules work on.
func (r *Reconciler) Scheduler() Scheduler {
	return r.scheduler
}

// CreateContainer creates an empty root rendering into container.
func (r *Reconciler) CreateContainer(container Instance) *FiberRootNode {
	hostRootFiber := newFiber(HostRoot, Props{}, "")
	hostRootFiber.UpdateQueue = &UpdateQueue{}

	root := &FiberRootNode{
		ID:        uuid.NewString(),
		Container: container,
		Current:   hostRootFiber,
	}
	hostRootFiber.StateNode = root

	r.roots[root.ID] = root
	r.metrics.RootCreated()
	if r.debug {
		r.logger.Debug("root created", "root", root.ID)
	}
	return root
}

// UpdateContainer schedules element to be rendered into root on the sync
// lane. The render happens in the next microtask, or on FlushSync.
func (r *Reconciler) UpdateContainer(element *vdom.VNode, root *FiberRootNode) {
	hostRootFiber := root.Current
	queue := hostRootFiber.UpdateQueue.(*UpdateQueue)
	queue.enqueue(newUpdate(element, SyncLane))
	r.scheduleUpdateOnFiber(hostRootFiber, SyncLane)
}

// Unmount schedules removal of everything rendered into root. The root is
// forgotten once that commit happens.
func (r *Reconciler) Unmount(root *FiberRootNode) {
	if root.unmounted {
		return
	}
	root.unmounted = true
	r.UpdateContainer(nil, root)
}

// FlushSync runs all queued sync-lane work now instead of waiting for the
// microtask.
func (r *Reconciler) FlushSync() {
	r.flushSyncCallbacks()
}

// FlushPassiveEffects runs root's pending passive effects now. It reports
// whether there were any.
func (r *Reconciler) FlushPassiveEffects(root *FiberRootNode) bool {
	return r.flushPassiveEffects(root)
}

// Root returns the mounted root with the given ID.
func (r *Reconciler) Root(id string) (*FiberRootNode, bool) {
	root, ok := r.roots[id]
	return root, ok
}

// Roots returns the mounted roots ordered by ID.
func (r *Reconciler) Roots() []*FiberRootNode {
	out := make([]*FiberRootNode, 0, len(r.roots))
	for _, root := range r.roots {
		out = append(out, root)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Reconciler) warnDuplicateKey(parent *Fiber, key string) {
	r.logger.Warn("duplicate key among siblings",
		"code", ErrDuplicateKey.Code,
		"parent", parent.Name(),
		"key", key,
	)
}

func (r *Reconciler) warnUnknownVariant(what, name string) {
	if !r.debug {
		return
	}
	r.logger.Warn("unimplemented variant skipped",
		"code", ErrUnknownVariant.Code,
		"kind", what,
		"variant", name,
	)
}
