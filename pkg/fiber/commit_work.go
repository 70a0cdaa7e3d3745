package fiber

import (
	"context"
	"time"

	"github.com/vango-dev/fiber/pkg/scheduler"
	"github.com/vango-dev/fiber/pkg/telemetry"
	"github.com/vango-dev/fiber/pkg/vdom"
)

type passiveKind uint8

const (
	passiveUpdate passiveKind = iota
	passiveUnmount
)

// commitStats counts what one commit did.
type commitStats struct {
	placed    []string
	updates   int
	deletions int
}

// commitRoot applies root.FinishedWork to the host and makes it current.
// It cannot be interrupted.
func (r *Reconciler) commitRoot(root *FiberRootNode) {
	finishedWork := root.FinishedWork
	if finishedWork == nil {
		return
	}
	lane := root.FinishedLane
	if lane == NoLane {
		r.logger.Warn("commit without a finished lane", "root", root.ID)
	}

	start := time.Now()
	_, span := r.tracer.Start(context.Background(), telemetry.SpanCommit, root.ID, LaneName(lane))

	root.FinishedWork = nil
	root.FinishedLane = NoLane
	root.PendingLanes = MergeLanes(RemoveLanes(root.PendingLanes, lane), root.interleavedLanes)
	root.interleavedLanes = NoLanes
	root.callbackNode = nil
	root.callbackPriority = NoLane

	if (finishedWork.Flags|finishedWork.SubtreeFlags)&PassiveMask != NoFlags && !root.rootDoesHavePassiveEffects {
		root.rootDoesHavePassiveEffects = true
		r.scheduler.ScheduleCallback(scheduler.NormalPriority, func(bool) scheduler.Callback {
			root.rootDoesHavePassiveEffects = false
			r.flushPassiveEffects(root)
			return nil
		})
	}

	s := &root.session
	s.stats = commitStats{}

	prevContext := r.executionContext
	r.executionContext |= commitContext
	if (finishedWork.Flags|finishedWork.SubtreeFlags)&(MutationMask|PassiveMask) != NoFlags {
		r.commitMutationEffects(root, finishedWork)
	}
	root.Current = finishedWork
	r.executionContext = prevContext

	if queue, ok := finishedWork.UpdateQueue.(*UpdateQueue); ok {
		queue.baseState = s.rootResult.baseState
		queue.baseQueue = s.rootResult.baseQueue
	}
	s.rootResult = processResult{}
	root.renderAttempts = 0

	telemetry.End(span, nil)
	r.metrics.ObserveCommit(len(s.stats.placed), s.stats.updates, s.stats.deletions)
	r.notifyCommit(root, lane, time.Since(start))

	if root.unmounted && root.Current.Child == nil {
		r.forgetRoot(root)
	}

	r.ensureRootIsScheduled(root)
}

func (r *Reconciler) forgetRoot(root *FiberRootNode) {
	if _, ok := r.roots[root.ID]; !ok {
		return
	}
	delete(r.roots, root.ID)
	r.metrics.RootUnmounted()
}

// commitMutationEffects walks the finished tree depth first, descending
// only into subtrees that have flags, and applies each fiber's effects
// children before parents.
func (r *Reconciler) commitMutationEffects(root *FiberRootNode, finishedWork *Fiber) {
	next := finishedWork
	for next != nil {
		child := next.Child
		if next.SubtreeFlags&(MutationMask|PassiveMask) != NoFlags && child != nil {
			next = child
			continue
		}

		for next != nil {
			r.commitMutationEffectsOnFiber(root, next)
			if next == finishedWork {
				return
			}
			if sibling := next.Sibling; sibling != nil {
				next = sibling
				break
			}
			next = next.Return
		}
	}
}

func (r *Reconciler) commitMutationEffectsOnFiber(root *FiberRootNode, f *Fiber) {
	flags := f.Flags

	if flags&Placement != NoFlags {
		r.commitPlacement(root, f)
		f.Flags &^= Placement
	}
	if flags&UpdateFlag != NoFlags {
		r.commitUpdate(root, f)
		f.Flags &^= UpdateFlag
	}
	if flags&ChildDeletion != NoFlags {
		for _, childToDelete := range f.Deletions {
			r.commitDeletion(root, childToDelete)
		}
		f.Deletions = nil
		f.Flags &^= ChildDeletion
	}
	if flags&PassiveEffect != NoFlags {
		r.collectPassiveEffects(root, f, passiveUpdate)
		f.Flags &^= PassiveEffect
	}
}

func (r *Reconciler) commitPlacement(root *FiberRootNode, f *Fiber) {
	parent := getHostParent(f)
	if parent == nil {
		r.logger.Warn("host parent not found", "code", "F008", "fiber", f.Name())
		return
	}
	before := getHostSibling(f)
	r.insertOrAppendPlacementNode(f, parent, before)
	root.session.stats.placed = append(root.session.stats.placed, fiberLabel(f))
}

func (r *Reconciler) insertOrAppendPlacementNode(f *Fiber, parent, before Instance) {
	if f.Tag == HostComponent || f.Tag == HostText {
		if before != nil {
			r.host.InsertChildToContainer(parent, f.StateNode, before)
		} else {
			r.host.AppendChildToContainer(parent, f.StateNode)
		}
		return
	}
	for child := f.Child; child != nil; child = child.Sibling {
		r.insertOrAppendPlacementNode(child, parent, before)
	}
}

func getHostParent(f *Fiber) Instance {
	for parent := f.Return; parent != nil; parent = parent.Return {
		switch parent.Tag {
		case HostComponent:
			return parent.StateNode
		case HostRoot:
			if root, ok := parent.StateNode.(*FiberRootNode); ok {
				return root.Container
			}
			return nil
		}
	}
	return nil
}

// getHostSibling finds the host node f's nodes must be inserted before: the
// first host node after f in the same host parent that is not itself being
// placed. It returns nil when f's nodes belong at the end.
func getHostSibling(f *Fiber) Instance {
	node := f

findSibling:
	for {
		for node.Sibling == nil {
			parent := node.Return
			if parent == nil || parent.Tag == HostComponent || parent.Tag == HostRoot {
				return nil
			}
			node = parent
		}
		node.Sibling.Return = node.Return
		node = node.Sibling

		for node.Tag != HostComponent && node.Tag != HostText {
			// Nodes being placed are not attached yet and can't be used as
			// a reference.
			if node.Flags&Placement != NoFlags || node.Child == nil {
				continue findSibling
			}
			node.Child.Return = node
			node = node.Child
		}

		if node.Flags&Placement == NoFlags {
			return node.StateNode
		}
	}
}

func (r *Reconciler) commitUpdate(root *FiberRootNode, f *Fiber) {
	switch f.Tag {
	case HostText:
		var oldText string
		if current := f.Alternate; current != nil {
			oldText = current.MemoizedProps.Text
		}
		r.host.CommitTextUpdate(f.StateNode, oldText, f.MemoizedProps.Text)
	case HostComponent:
		changes, _ := f.UpdateQueue.([]vdom.PropChange)
		if len(changes) > 0 {
			r.host.CommitUpdate(f.StateNode, f.Type.(string), changes)
		}
		f.UpdateQueue = nil
	default:
		r.warnUnknownVariant("update target", f.Tag.String())
		return
	}
	root.session.stats.updates++
}

// commitDeletion removes the top-level host nodes of childToDelete from
// the host, collects the unmount effects of every component inside it and
// detaches it from the tree.
func (r *Reconciler) commitDeletion(root *FiberRootNode, childToDelete *Fiber) {
	var hostNodes []Instance
	r.unmountSubtree(root, childToDelete, true, &hostNodes)

	if len(hostNodes) > 0 {
		parent := getHostParent(childToDelete)
		if parent == nil {
			r.logger.Warn("host parent not found", "code", "F008", "fiber", childToDelete.Name())
		} else {
			for _, node := range hostNodes {
				r.host.RemoveChild(node, parent)
			}
		}
	}

	childToDelete.Return = nil
	childToDelete.Child = nil
	if alt := childToDelete.Alternate; alt != nil {
		alt.Return = nil
		alt.Child = nil
	}
	root.session.stats.deletions++
}

// unmountSubtree visits node and its descendants. Host nodes without a host
// ancestor inside the deleted subtree are collected for removal.
func (r *Reconciler) unmountSubtree(root *FiberRootNode, node *Fiber, topLevel bool, hostNodes *[]Instance) {
	switch node.Tag {
	case HostComponent, HostText:
		if topLevel {
			*hostNodes = append(*hostNodes, node.StateNode)
		}
		topLevel = false
	case FunctionComponent:
		r.collectPassiveEffects(root, node, passiveUnmount)
	}
	for child := node.Child; child != nil; child = child.Sibling {
		r.unmountSubtree(root, child, topLevel, hostNodes)
	}
}

func (r *Reconciler) collectPassiveEffects(root *FiberRootNode, f *Fiber, kind passiveKind) {
	if f.Tag != FunctionComponent {
		return
	}
	if kind == passiveUpdate && f.Flags&PassiveEffect == NoFlags {
		return
	}
	queue, _ := f.UpdateQueue.(*FCUpdateQueue)
	if queue == nil || queue.LastEffect == nil {
		return
	}
	if kind == passiveUnmount {
		root.PendingPassiveEffects.Unmount = append(root.PendingPassiveEffects.Unmount, queue.LastEffect)
	} else {
		root.PendingPassiveEffects.Update = append(root.PendingPassiveEffects.Update, queue.LastEffect)
	}
}

// flushPassiveEffects runs pending effect cleanups and creates: every
// unmount cleanup, then every cleanup of a re-run effect, then every
// create. It reports whether anything ran.
func (r *Reconciler) flushPassiveEffects(root *FiberRootNode) bool {
	pending := root.PendingPassiveEffects
	root.PendingPassiveEffects = PendingPassiveEffects{}

	if len(pending.Unmount) == 0 && len(pending.Update) == 0 {
		r.flushSyncCallbacks()
		return false
	}

	_, span := r.tracer.Start(context.Background(), telemetry.SpanPassive, root.ID, "")
	destroyed, created := 0, 0

	for _, last := range pending.Unmount {
		forEachEffect(last, HookPassive, func(e *Effect) {
			if e.Destroy != nil {
				r.runEffectCallback(root, e.Destroy)
				destroyed++
			}
			e.Tag &^= HookHasEffect
		})
	}
	for _, last := range pending.Update {
		forEachEffect(last, HookPassive|HookHasEffect, func(e *Effect) {
			if e.Destroy != nil {
				r.runEffectCallback(root, e.Destroy)
				destroyed++
			}
		})
	}
	for _, last := range pending.Update {
		forEachEffect(last, HookPassive|HookHasEffect, func(e *Effect) {
			create := e.Create
			var destroy func()
			r.runEffectCallback(root, func() { destroy = create() })
			e.Destroy = destroy
			created++
		})
	}

	telemetry.End(span, nil)
	r.metrics.ObservePassive(telemetry.PhaseDestroy, destroyed)
	r.metrics.ObservePassive(telemetry.PhaseCreate, created)

	r.flushSyncCallbacks()
	return true
}

// forEachEffect calls fn for the effects of a circular list whose tag
// includes all of flags.
func forEachEffect(last *Effect, flags HookFlags, fn func(*Effect)) {
	if last == nil {
		return
	}
	first := last.next
	e := first
	for {
		if e.Tag&flags == flags {
			fn(e)
		}
		e = e.next
		if e == first {
			return
		}
	}
}

func (r *Reconciler) runEffectCallback(root *FiberRootNode, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("effect callback panicked", "root", root.ID, "panic", rec)
		}
	}()
	fn()
}
