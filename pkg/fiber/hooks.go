package fiber

import (
	"reflect"

	ferrors "github.com/vango-dev/fiber/internal/errors"
	"github.com/vango-dev/fiber/pkg/vdom"
)

type hookKind uint8

const (
	hookState hookKind = iota + 1
	hookEffect
	hookRef
	hookMemo
)

// String returns a human-readable name for the hook kind.
func (k hookKind) String() string {
	switch k {
	case hookState:
		return "State"
	case hookEffect:
		return "Effect"
	case hookRef:
		return "Ref"
	case hookMemo:
		return "Memo"
	default:
		return "Unknown"
	}
}

// Hook is one slot of a component's hook chain.
type Hook struct {
	MemoizedState any
	BaseState     any
	BaseQueue     *Update
	Queue         *UpdateQueue
	Next          *Hook

	kind hookKind
}

// EffectCallback runs after commit and may return a cleanup function.
type EffectCallback func() func()

// Effect is one entry of a component's circular effect list.
type Effect struct {
	Tag     HookFlags
	Create  EffectCallback
	Destroy func()
	Deps    []any
	next    *Effect
}

// FCUpdateQueue is the UpdateQueue of a function component fiber.
type FCUpdateQueue struct {
	LastEffect *Effect
}

// Hooks is the handle a component uses to call hooks. It is only valid
// while the component is rendering.
type Hooks struct {
	r           *Reconciler
	s           *renderSession
	fiber       *Fiber
	currentHook *Hook
	wipHook     *Hook
	dispatcher  *dispatcher
}

// dispatcher is the table of hook implementations for one render mode.
type dispatcher struct {
	useState  func(h *Hooks, initial func() any) (any, *UpdateQueue)
	useEffect func(h *Hooks, create EffectCallback, deps []any)
	useRef    func(h *Hooks, initial func() any) any
	useMemo   func(h *Hooks, compute func() any, deps []any) any
}

// The tables are assigned in init: mountState reaches renderWithHooks
// through dispatchSetState, which would otherwise be an initialization
// cycle.
var (
	mountDispatcher  *dispatcher
	updateDispatcher *dispatcher
)

func init() {
	mountDispatcher = &dispatcher{
		useState:  mountState,
		useEffect: mountEffect,
		useRef:    mountRef,
		useMemo:   mountMemo,
	}
	updateDispatcher = &dispatcher{
		useState:  updateState,
		useEffect: updateEffect,
		useRef:    updateRef,
		useMemo:   updateMemo,
	}
}

// renderWithHooks calls the component's render function with a fresh hook
// handle. The fiber's hook chain and effect list are rebuilt from scratch.
func (r *Reconciler) renderWithHooks(s *renderSession, wip *Fiber, comp *Component) *vdom.VNode {
	h := &Hooks{r: r, s: s, fiber: wip}
	current := wip.Alternate

	wip.MemoizedState = nil
	wip.UpdateQueue = nil

	if current != nil {
		h.dispatcher = updateDispatcher
	} else {
		h.dispatcher = mountDispatcher
	}
	defer h.finish()

	children := comp.Render(h, wip.PendingProps.Attrs)

	if current != nil {
		remaining := h.nextCurrentHook()
		if remaining != nil {
			panic(ferrors.New("F003").WithSubject("%s", wip.Name()))
		}
	}
	return children
}

func (h *Hooks) finish() {
	h.fiber = nil
	h.dispatcher = nil
	h.currentHook = nil
	h.wipHook = nil
}

func (h *Hooks) resolve() *dispatcher {
	if h == nil || h.fiber == nil || h.dispatcher == nil {
		panic(ferrors.New("F001"))
	}
	return h.dispatcher
}

// Component returns the name of the component being rendered.
func (h *Hooks) Component() string {
	h.resolve()
	return h.fiber.Name()
}

func (h *Hooks) mountWorkInProgressHook(kind hookKind) *Hook {
	hook := &Hook{kind: kind}
	if h.wipHook == nil {
		h.fiber.MemoizedState = hook
	} else {
		h.wipHook.Next = hook
	}
	h.wipHook = hook
	return hook
}

func (h *Hooks) nextCurrentHook() *Hook {
	if h.currentHook == nil {
		if current := h.fiber.Alternate; current != nil {
			next, _ := current.MemoizedState.(*Hook)
			return next
		}
		return nil
	}
	return h.currentHook.Next
}

func (h *Hooks) updateWorkInProgressHook(kind hookKind) *Hook {
	next := h.nextCurrentHook()
	if next == nil {
		panic(ferrors.New("F002").WithSubject("%s", h.fiber.Name()))
	}
	if next.kind != kind {
		panic(ferrors.New("F010").WithSubject("%s: %s hook where %s was expected", h.fiber.Name(), kind, next.kind))
	}
	h.currentHook = next

	hook := &Hook{
		MemoizedState: next.MemoizedState,
		BaseState:     next.BaseState,
		BaseQueue:     next.BaseQueue,
		Queue:         next.Queue,
		kind:          kind,
	}
	if h.wipHook == nil {
		h.fiber.MemoizedState = hook
	} else {
		h.wipHook.Next = hook
	}
	h.wipHook = hook
	return hook
}

// State

func mountState(h *Hooks, initial func() any) (any, *UpdateQueue) {
	hook := h.mountWorkInProgressHook(hookState)
	state := initial()
	hook.MemoizedState = state
	hook.BaseState = state

	queue := &UpdateQueue{}
	hook.Queue = queue

	r, f := h.r, h.fiber
	queue.Dispatch = func(action any) {
		r.dispatchSetState(f, queue, action)
	}
	return state, queue
}

func updateState(h *Hooks, _ func() any) (any, *UpdateQueue) {
	hook := h.updateWorkInProgressHook(hookState)
	queue := hook.Queue
	current := h.currentHook

	// Pending updates join the current hook's base queue first, so that a
	// render thrown away halfway can replay them from the same base state.
	if pending := queue.Pending; pending != nil {
		current.BaseQueue = mergeQueues(current.BaseQueue, pending)
		queue.Pending = nil
	}

	res := processUpdateQueue(current.BaseState, current.BaseQueue, h.s.renderLane)
	hook.MemoizedState = res.memoizedState
	hook.BaseState = res.baseState
	hook.BaseQueue = res.baseQueue
	return hook.MemoizedState, queue
}

func (r *Reconciler) dispatchSetState(f *Fiber, queue *UpdateQueue, action any) {
	lane := r.requestUpdateLane()
	queue.enqueue(newUpdate(action, lane))
	r.scheduleUpdateOnFiber(f, lane)
}

func (r *Reconciler) requestUpdateLane() Lane {
	if lane := PriorityToLane(r.scheduler.CurrentPriorityLevel()); lane != NoLane {
		return lane
	}
	return DefaultLane
}

// Effects

func mountEffect(h *Hooks, create EffectCallback, deps []any) {
	hook := h.mountWorkInProgressHook(hookEffect)
	h.fiber.Flags |= PassiveEffect
	hook.MemoizedState = h.pushEffect(HookPassive|HookHasEffect, create, nil, deps)
}

func updateEffect(h *Hooks, create EffectCallback, deps []any) {
	hook := h.updateWorkInProgressHook(hookEffect)
	var destroy func()

	if prev, ok := h.currentHook.MemoizedState.(*Effect); ok {
		destroy = prev.Destroy
		if deps != nil && areHookInputsEqual(deps, prev.Deps) {
			hook.MemoizedState = h.pushEffect(HookPassive, create, destroy, deps)
			return
		}
	}

	h.fiber.Flags |= PassiveEffect
	hook.MemoizedState = h.pushEffect(HookPassive|HookHasEffect, create, destroy, deps)
}

func (h *Hooks) pushEffect(tag HookFlags, create EffectCallback, destroy func(), deps []any) *Effect {
	effect := &Effect{Tag: tag, Create: create, Destroy: destroy, Deps: deps}

	queue, _ := h.fiber.UpdateQueue.(*FCUpdateQueue)
	if queue == nil {
		queue = &FCUpdateQueue{}
		h.fiber.UpdateQueue = queue
	}
	if queue.LastEffect == nil {
		effect.next = effect
	} else {
		effect.next = queue.LastEffect.next
		queue.LastEffect.next = effect
	}
	queue.LastEffect = effect
	return effect
}

// Refs

func mountRef(h *Hooks, initial func() any) any {
	hook := h.mountWorkInProgressHook(hookRef)
	hook.MemoizedState = initial()
	return hook.MemoizedState
}

func updateRef(h *Hooks, _ func() any) any {
	return h.updateWorkInProgressHook(hookRef).MemoizedState
}

// Memo

type memoState struct {
	value any
	deps  []any
}

func mountMemo(h *Hooks, compute func() any, deps []any) any {
	hook := h.mountWorkInProgressHook(hookMemo)
	v := compute()
	hook.MemoizedState = &memoState{value: v, deps: deps}
	return v
}

func updateMemo(h *Hooks, compute func() any, deps []any) any {
	hook := h.updateWorkInProgressHook(hookMemo)
	if prev, ok := hook.MemoizedState.(*memoState); ok && deps != nil && areHookInputsEqual(deps, prev.deps) {
		return prev.value
	}
	v := compute()
	hook.MemoizedState = &memoState{value: v, deps: deps}
	return v
}

// areHookInputsEqual compares dependency lists entry by entry. A nil list
// never matches, which makes effects without deps run on every commit.
func areHookInputsEqual(next, prev []any) bool {
	if next == nil || prev == nil || len(next) != len(prev) {
		return false
	}
	for i := range next {
		if !depEqual(next[i], prev[i]) {
			return false
		}
	}
	return true
}

// depEqual compares comparable values with ==, reference types by identity
// and treats functions as always changed.
func depEqual(a, b any) (equal bool) {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}
	switch ta.Kind() {
	case reflect.Func:
		return false
	case reflect.Map, reflect.Slice, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
		if ta.Kind() == reflect.Slice && va.Len() != vb.Len() {
			return false
		}
		return va.Pointer() == vb.Pointer()
	}
	if !ta.Comparable() {
		return false
	}
	// Structs and arrays may hold uncomparable interface values.
	defer func() {
		if recover() != nil {
			equal = false
		}
	}()
	return a == b
}
