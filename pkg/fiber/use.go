package fiber

// Setter updates the state of one UseState hook. Its identity is stable
// across renders.
type Setter[T any] struct {
	dispatch func(action any)
}

// Set replaces the state with v.
func (s *Setter[T]) Set(v T) {
	s.dispatch(v)
}

// Update schedules fn to compute the next state from the previous one.
// Queued updates are applied in the order they were made.
func (s *Setter[T]) Update(fn func(prev T) T) {
	s.dispatch(StateTransition(func(prev any) any {
		p, _ := prev.(T)
		return fn(p)
	}))
}

// UseState returns the current state and a setter for it. initial is only
// used on the first render.
func UseState[T any](h *Hooks, initial T) (T, *Setter[T]) {
	return UseStateFunc(h, func() T { return initial })
}

// UseStateFunc is UseState with a lazily computed initial state.
func UseStateFunc[T any](h *Hooks, initial func() T) (T, *Setter[T]) {
	d := h.resolve()
	state, queue := d.useState(h, func() any { return initial() })

	setter, ok := queue.setter.(*Setter[T])
	if !ok {
		setter = &Setter[T]{dispatch: queue.Dispatch}
		queue.setter = setter
	}
	value, _ := state.(T)
	return value, setter
}

// UseReducer keeps state updated by reducer. dispatch may be called from
// effects and event handlers.
func UseReducer[S, A any](h *Hooks, reducer func(state S, action A) S, initial S) (S, func(A)) {
	state, setter := UseState(h, initial)
	return state, func(action A) {
		setter.Update(func(prev S) S { return reducer(prev, action) })
	}
}

// Deps builds a dependency list. Deps() with no values is an empty list,
// which runs an effect once after mount; a nil list runs it after every
// commit.
func Deps(values ...any) []any {
	if values == nil {
		return []any{}
	}
	return values
}

// UseEffect runs create after the commit in which deps changed. The
// function create returns, if any, runs before the next create and on
// unmount.
func UseEffect(h *Hooks, create func() func(), deps []any) {
	h.resolve().useEffect(h, create, deps)
}

// Ref is a mutable box that survives renders.
type Ref[T any] struct {
	Current T
}

// UseRef returns the same *Ref on every render of the component.
func UseRef[T any](h *Hooks, initial T) *Ref[T] {
	v := h.resolve().useRef(h, func() any { return &Ref[T]{Current: initial} })
	ref, _ := v.(*Ref[T])
	return ref
}

// UseMemo returns compute's result, recomputing only when deps change.
func UseMemo[T any](h *Hooks, compute func() T, deps []any) T {
	v := h.resolve().useMemo(h, func() any { return compute() }, deps)
	out, _ := v.(T)
	return out
}

// UseCallback returns fn as it was when deps last changed.
func UseCallback[F any](h *Hooks, fn F, deps []any) F {
	return UseMemo(h, func() F { return fn }, deps)
}
