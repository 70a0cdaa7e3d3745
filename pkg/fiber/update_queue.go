package fiber

// StateTransition computes the next state from the previous one. An Update
// whose Action is a StateTransition is applied by calling it; any other
// Action replaces the state.
type StateTransition func(prev any) any

// Update is one queued state change.
type Update struct {
	Action any
	Lane   Lane
	next   *Update
}

func newUpdate(action any, lane Lane) *Update {
	return &Update{Action: action, Lane: lane}
}

// UpdateQueue holds updates for the root or for one state hook. Pending
// points at the most recently enqueued update of a circular list, so
// Pending.next is the oldest.
type UpdateQueue struct {
	Pending *Update

	// Dispatch is the state hook's dispatch function, bound to its fiber.
	Dispatch func(action any)

	// setter caches the typed *Setter[T] handed out by UseState.
	setter any

	// Root queues keep their committed base here. Hook queues use the
	// base fields of their Hook instead.
	baseState any
	baseQueue *Update
}

func (q *UpdateQueue) enqueue(u *Update) {
	if q.Pending == nil {
		u.next = u
	} else {
		u.next = q.Pending.next
		q.Pending.next = u
	}
	q.Pending = u
}

// Len returns the number of pending updates.
func (q *UpdateQueue) Len() int {
	if q == nil || q.Pending == nil {
		return 0
	}
	n := 1
	for u := q.Pending.next; u != q.Pending; u = u.next {
		n++
	}
	return n
}

// mergeQueues joins two circular lists, keeping base before pending, and
// returns the last update of the result.
func mergeQueues(base, pending *Update) *Update {
	if pending == nil {
		return base
	}
	if base == nil {
		return pending
	}
	baseFirst := base.next
	pendingFirst := pending.next
	base.next = pendingFirst
	pending.next = baseFirst
	return pending
}

// processResult is the outcome of folding a queue for one render lane.
type processResult struct {
	memoizedState any
	baseState     any
	baseQueue     *Update
}

func applyAction(state, action any) any {
	if fn, ok := action.(StateTransition); ok {
		return fn(state)
	}
	return action
}

// processUpdateQueue folds the circular list ending at last over baseState,
// applying updates that belong to renderLane in insertion order. Once an
// update is skipped, it and every update after it are kept for the next
// base queue; applied ones among them are kept with NoLane so that they
// replay on top of the skipped one later.
func processUpdateQueue(baseState any, last *Update, renderLane Lane) processResult {
	if last == nil {
		return processResult{memoizedState: baseState, baseState: baseState}
	}

	newState := baseState
	var newBaseState any
	var newBaseFirst, newBaseLast *Update

	first := last.next
	u := first
	for {
		if u.Lane != NoLane && !IncludesLane(renderLane, u.Lane) {
			clone := newUpdate(u.Action, u.Lane)
			if newBaseLast == nil {
				newBaseFirst = clone
				newBaseState = newState
			} else {
				newBaseLast.next = clone
			}
			newBaseLast = clone
		} else {
			if newBaseLast != nil {
				clone := newUpdate(u.Action, NoLane)
				newBaseLast.next = clone
				newBaseLast = clone
			}
			newState = applyAction(newState, u.Action)
		}

		u = u.next
		if u == first {
			break
		}
	}

	if newBaseLast == nil {
		newBaseState = newState
	} else {
		newBaseLast.next = newBaseFirst
	}

	return processResult{
		memoizedState: newState,
		baseState:     newBaseState,
		baseQueue:     newBaseLast,
	}
}
