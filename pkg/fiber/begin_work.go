package fiber

import "github.com/vango-dev/fiber/pkg/vdom"

// beginWork renders wip and reconciles its children, returning the first
// child to work on next.
func (r *Reconciler) beginWork(s *renderSession, wip *Fiber) *Fiber {
	switch wip.Tag {
	case HostRoot:
		return r.updateHostRoot(s, wip)
	case HostComponent, Fragment:
		r.reconcileChildren(wip, wip.PendingProps.Children)
		return wip.Child
	case HostText:
		return nil
	case FunctionComponent:
		return r.updateFunctionComponent(s, wip)
	}
	r.warnUnknownVariant("fiber tag", wip.Tag.String())
	return nil
}

func (r *Reconciler) updateHostRoot(s *renderSession, wip *Fiber) *Fiber {
	queue := wip.UpdateQueue.(*UpdateQueue)

	// Same rule as state hooks: pending updates move onto the committed base
	// queue so an abandoned render can be replayed.
	queue.baseQueue = mergeQueues(queue.baseQueue, queue.Pending)
	queue.Pending = nil

	res := processUpdateQueue(queue.baseState, queue.baseQueue, s.renderLane)
	s.rootResult = res
	wip.MemoizedState = res.memoizedState

	var children []*vdom.VNode
	if el, _ := res.memoizedState.(*vdom.VNode); el != nil {
		children = []*vdom.VNode{el}
	}
	r.reconcileChildren(wip, children)
	return wip.Child
}

func (r *Reconciler) updateFunctionComponent(s *renderSession, wip *Fiber) *Fiber {
	comp, ok := wip.Type.(*Component)
	if !ok {
		r.warnUnknownVariant("component", wip.Name())
		return nil
	}

	var children []*vdom.VNode
	if next := r.renderWithHooks(s, wip, comp); next != nil {
		children = []*vdom.VNode{next}
	}
	r.reconcileChildren(wip, children)
	return wip.Child
}

func (r *Reconciler) reconcileChildren(wip *Fiber, children []*vdom.VNode) {
	if current := wip.Alternate; current != nil {
		wip.Child = r.reconcileChildFibers.reconcile(wip, current.Child, children)
		return
	}
	wip.Child = r.mountChildFibers.reconcile(wip, nil, children)
}
