package fiber

import (
	"context"
	"time"

	"github.com/vango-dev/fiber/pkg/scheduler"
	"github.com/vango-dev/fiber/pkg/telemetry"
)

type rootExitStatus uint8

const (
	rootInProgress rootExitStatus = iota
	rootInComplete
	rootCompleted
	rootErrored
)

// renderSession is the render-phase cursor of one root. Keeping it per
// root lets independent roots render without sharing state.
type renderSession struct {
	wip        *Fiber
	renderLane Lane

	// rootResult is the root queue fold of the current render, applied to
	// the queue's base at commit.
	rootResult processResult

	lastErr error
	stats   commitStats
}

// scheduleUpdateOnFiber records lane as pending on f's root and makes sure
// the root has a task for it.
func (r *Reconciler) scheduleUpdateOnFiber(f *Fiber, lane Lane) {
	root := markUpdateFromFiberToRoot(f)
	if root == nil {
		r.logger.Warn("update on a fiber that is no longer mounted",
			"code", ErrUnmountedUpdate.Code,
			"fiber", f.Name(),
		)
		return
	}

	if s := &root.session; s.wip != nil {
		switch {
		case r.executionContext&renderContext != 0:
			// Updated from inside a render. Keep the lane pending past the
			// upcoming commit.
			root.interleavedLanes = MergeLanes(root.interleavedLanes, lane)
		case IncludesLane(s.renderLane, lane):
			// The paused render may already have passed the updated fiber;
			// start it over when it resumes.
			s.renderLane = NoLane
		}
	}

	root.PendingLanes = MergeLanes(root.PendingLanes, lane)
	r.ensureRootIsScheduled(root)
}

func markUpdateFromFiberToRoot(f *Fiber) *FiberRootNode {
	node := f
	for node.Return != nil {
		node = node.Return
	}
	if node.Tag == HostRoot {
		root, _ := node.StateNode.(*FiberRootNode)
		return root
	}
	return nil
}

// ensureRootIsScheduled keeps exactly one callback scheduled for the most
// urgent pending lane of root.
func (r *Reconciler) ensureRootIsScheduled(root *FiberRootNode) {
	updateLane := GetHighestPriorityLane(root.PendingLanes)
	existing := root.callbackNode

	if updateLane == NoLane {
		if existing != nil {
			r.scheduler.CancelCallback(existing)
		}
		root.callbackNode = nil
		root.callbackPriority = NoLane
		return
	}

	if updateLane == root.callbackPriority {
		return
	}
	if existing != nil {
		r.scheduler.CancelCallback(existing)
	}

	var newCallbackNode *scheduler.Task
	if updateLane == SyncLane {
		r.scheduleSyncCallback(func() { r.performSyncWorkOnRoot(root) })
		r.host.ScheduleMicrotask(r.flushSyncCallbacks)
	} else {
		newCallbackNode = r.scheduler.ScheduleCallback(LaneToPriority(updateLane), func(didTimeout bool) scheduler.Callback {
			return r.performConcurrentWorkOnRoot(root, didTimeout)
		})
	}
	if r.debug {
		r.logger.Debug("root scheduled", "root", root.ID, "lane", LaneName(updateLane))
	}

	root.callbackNode = newCallbackNode
	root.callbackPriority = updateLane
}

func (r *Reconciler) scheduleSyncCallback(cb func()) {
	r.syncQueue = append(r.syncQueue, cb)
}

func (r *Reconciler) flushSyncCallbacks() {
	if r.isFlushingSync {
		return
	}
	r.isFlushingSync = true
	defer func() { r.isFlushingSync = false }()

	for len(r.syncQueue) > 0 {
		queue := r.syncQueue
		r.syncQueue = nil
		for _, cb := range queue {
			cb()
		}
	}
}

func (r *Reconciler) performSyncWorkOnRoot(root *FiberRootNode) {
	if r.executionContext&(renderContext|commitContext) != noContext {
		r.logger.Warn("sync work requested during render or commit, deferring", "root", root.ID)
		r.host.ScheduleMicrotask(func() { r.performSyncWorkOnRoot(root) })
		return
	}

	r.flushPassiveEffects(root)

	lane := GetHighestPriorityLane(root.PendingLanes)
	if lane != SyncLane {
		// Either nothing is left or a lower lane is: hand it to the
		// scheduler.
		r.ensureRootIsScheduled(root)
		return
	}

	switch r.renderRoot(root, SyncLane, false) {
	case rootCompleted:
		root.FinishedWork = root.Current.Alternate
		root.FinishedLane = SyncLane
		r.commitRoot(root)
	case rootErrored:
		r.recoverFromRenderError(root)
	}
}

func (r *Reconciler) performConcurrentWorkOnRoot(root *FiberRootNode, didTimeout bool) scheduler.Callback {
	curCallbackNode := root.callbackNode

	// Effects from the last commit, or sync work flushed with them, may
	// have replaced this task.
	r.flushPassiveEffects(root)
	if root.callbackNode != curCallbackNode {
		return nil
	}

	lane := GetHighestPriorityLane(root.PendingLanes)
	if lane == NoLane {
		return nil
	}
	needsSync := lane == SyncLane || didTimeout

	switch r.renderRoot(root, lane, !needsSync) {
	case rootInComplete:
		r.ensureRootIsScheduled(root)
		if root.callbackNode != curCallbackNode {
			return nil
		}
		return func(didTimeout bool) scheduler.Callback {
			return r.performConcurrentWorkOnRoot(root, didTimeout)
		}
	case rootCompleted:
		root.FinishedWork = root.Current.Alternate
		root.FinishedLane = lane
		r.commitRoot(root)
	case rootErrored:
		r.recoverFromRenderError(root)
	}
	return nil
}

// renderRoot runs the render phase for lane, resuming the paused render if
// it is for the same lane and starting fresh otherwise.
func (r *Reconciler) renderRoot(root *FiberRootNode, lane Lane, shouldTimeSlice bool) rootExitStatus {
	s := &root.session
	if s.wip == nil || s.renderLane != lane {
		r.prepareFreshStack(root, lane)
	}

	start := time.Now()
	_, span := r.tracer.Start(context.Background(), telemetry.SpanRender, root.ID, LaneName(lane))

	prevContext := r.executionContext
	r.executionContext |= renderContext
	err := r.workLoop(s, shouldTimeSlice)
	r.executionContext = prevContext

	elapsed := time.Since(start)
	if err != nil {
		r.handleRenderError(root, lane, err)
		telemetry.End(span, err)
		r.metrics.ObserveRender(LaneName(lane), telemetry.StatusErrored, elapsed)
		return rootErrored
	}

	if s.wip != nil {
		telemetry.End(span, nil)
		r.metrics.ObserveRender(LaneName(lane), telemetry.StatusInterrupted, elapsed)
		if r.debug {
			r.logger.Debug("render yielded", "root", root.ID, "lane", LaneName(lane), "next", s.wip.Name())
		}
		return rootInComplete
	}

	s.renderLane = NoLane
	telemetry.End(span, nil)
	r.metrics.ObserveRender(LaneName(lane), telemetry.StatusCompleted, elapsed)
	return rootCompleted
}

func (r *Reconciler) prepareFreshStack(root *FiberRootNode, lane Lane) {
	s := &root.session
	if r.debug && s.wip != nil {
		r.logger.Debug("discarding in-progress render", "root", root.ID, "lane", LaneName(s.renderLane), "for", LaneName(lane))
	}
	root.FinishedWork = nil
	s.wip = createWorkInProgress(root.Current, Props{})
	s.renderLane = lane
	s.rootResult = processResult{}
	s.lastErr = nil
}

// workLoop performs units of work until the tree is done or, when time
// slicing, until the scheduler asks to yield. A panic in any unit aborts
// the attempt and is returned as an error.
func (r *Reconciler) workLoop(s *renderSession, shouldTimeSlice bool) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = renderPanicError(rec, s.wip)
		}
	}()

	if shouldTimeSlice {
		for s.wip != nil && !r.scheduler.ShouldYield() {
			r.performUnitOfWork(s, s.wip)
		}
		return nil
	}
	for s.wip != nil {
		r.performUnitOfWork(s, s.wip)
	}
	return nil
}

func (r *Reconciler) performUnitOfWork(s *renderSession, f *Fiber) {
	next := r.beginWork(s, f)
	f.MemoizedProps = f.PendingProps

	if next == nil {
		r.completeUnitOfWork(s, f)
		return
	}
	s.wip = next
}

func (r *Reconciler) completeUnitOfWork(s *renderSession, f *Fiber) {
	node := f
	for node != nil {
		r.completeWork(node)

		if node.Sibling != nil {
			s.wip = node.Sibling
			return
		}
		node = node.Return
		s.wip = node
	}
}

func (r *Reconciler) handleRenderError(root *FiberRootNode, lane Lane, err error) {
	s := &root.session
	s.wip = nil
	s.renderLane = NoLane
	s.lastErr = err

	if IsInvariantViolation(err) {
		r.logger.Error("render invariant violated", "root", root.ID, "lane", LaneName(lane), "error", err)
	} else {
		r.logger.Warn("render attempt failed", "code", ErrRenderFailed.Code, "root", root.ID, "lane", LaneName(lane), "error", err)
	}
	if r.onError != nil {
		r.onError(root, err)
	}
}

// recoverFromRenderError leaves the failed lane pending. Transient failures
// are retried up to the configured limit; otherwise the next update
// reschedules the root.
func (r *Reconciler) recoverFromRenderError(root *FiberRootNode) {
	root.callbackNode = nil
	root.callbackPriority = NoLane

	err := root.session.lastErr
	if IsInvariantViolation(err) || root.renderAttempts >= r.maxRenderRetries {
		root.renderAttempts = 0
		return
	}
	root.renderAttempts++
	r.ensureRootIsScheduled(root)
}
