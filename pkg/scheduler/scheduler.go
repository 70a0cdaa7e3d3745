package scheduler

import (
	"container/heap"
	"log/slog"
	"sync"
	"time"
)

// FrameInterval is the default time slice a task may run before
// ShouldYield starts returning true.
const FrameInterval = 5 * time.Millisecond

// Scheduler is a cooperative priority task queue.
//
// Enqueueing (ScheduleCallback, CancelCallback, QueueMicrotask) is safe from
// any goroutine. Draining (RunNext, FlushAll, FlushMicrotasks) must happen on
// a single goroutine, because callbacks run there without the lock held.
type Scheduler struct {
	mu         sync.Mutex
	queue      taskHeap
	microtasks []func()
	seq        uint64

	current     Priority
	running     bool
	sliceStart  time.Time
	sliceChecks int
	forceYield  bool

	// Configuration
	now         func() time.Time
	sliceBudget int
	frame       time.Duration
	logger      *slog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithSliceBudget makes ShouldYield count calls instead of measuring time:
// it returns true once it has been asked n times within one task slice.
// n <= 0 restores time-based slicing.
func WithSliceBudget(n int) Option {
	return func(s *Scheduler) {
		s.sliceBudget = n
	}
}

// WithFrameInterval sets the time-based slice length.
func WithFrameInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		s.frame = d
	}
}

// WithLogger sets the logger used for recovered callback panics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = l
	}
}

// New creates an empty scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		current: NormalPriority,
		now:     time.Now,
		frame:   FrameInterval,
		logger:  slog.Default().With("component", "scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScheduleCallback queues cb at priority p and returns its handle.
func (s *Scheduler) ScheduleCallback(p Priority, cb Callback) *Task {
	if p == NoPriority {
		p = NormalPriority
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &Task{
		id:         s.seq,
		priority:   p,
		callback:   cb,
		expiration: s.now().Add(timeoutFor(p)),
	}
	heap.Push(&s.queue, t)
	return t
}

// CancelCallback removes t from the queue. Cancelling a task that already
// ran, or a nil task, is a no-op.
func (s *Scheduler) CancelCallback(t *Task) {
	if t == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t.callback = nil
	if t.index >= 0 && t.index < len(s.queue) && s.queue[t.index] == t {
		heap.Remove(&s.queue, t.index)
	}
}

// ShouldYield reports whether the running task has used up its slice.
func (s *Scheduler) ShouldYield() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.forceYield {
		s.forceYield = false
		return true
	}
	if !s.running {
		return false
	}
	if s.sliceBudget > 0 {
		s.sliceChecks++
		return s.sliceChecks > s.sliceBudget
	}
	return s.now().Sub(s.sliceStart) >= s.frame
}

// RequestYield makes the next ShouldYield call return true.
func (s *Scheduler) RequestYield() {
	s.mu.Lock()
	s.forceYield = true
	s.mu.Unlock()
}

// CurrentPriorityLevel returns the ambient priority.
func (s *Scheduler) CurrentPriorityLevel() Priority {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// RunWithPriority runs fn with p as the ambient priority.
func (s *Scheduler) RunWithPriority(p Priority, fn func()) {
	s.mu.Lock()
	prev := s.current
	s.current = p
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.current = prev
		s.mu.Unlock()
	}()
	fn()
}

// QueueMicrotask queues fn to run after the current task.
func (s *Scheduler) QueueMicrotask(fn func()) {
	s.mu.Lock()
	s.microtasks = append(s.microtasks, fn)
	s.mu.Unlock()
}

// FlushMicrotasks runs queued microtasks, including ones queued while
// flushing, and returns how many ran.
func (s *Scheduler) FlushMicrotasks() int {
	n := 0
	for {
		s.mu.Lock()
		batch := s.microtasks
		s.microtasks = nil
		s.mu.Unlock()
		if len(batch) == 0 {
			return n
		}
		for _, fn := range batch {
			s.safeRun(func() { fn() })
			n++
		}
	}
}

// Pending returns the number of queued tasks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Idle reports whether there are neither tasks nor microtasks queued.
func (s *Scheduler) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue) == 0 && len(s.microtasks) == 0
}

// RunNext drains microtasks, then runs one slice of the most urgent task.
// It reports whether anything is left to run afterwards.
func (s *Scheduler) RunNext() bool {
	s.FlushMicrotasks()

	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return false
	}
	t := s.queue[0]
	cb := t.callback
	now := s.now()
	didTimeout := !t.expiration.After(now)

	prevPriority := s.current
	s.current = t.priority
	s.running = true
	s.sliceStart = now
	s.sliceChecks = 0
	s.mu.Unlock()

	var next Callback
	s.safeRun(func() { next = cb(didTimeout) })

	s.mu.Lock()
	s.current = prevPriority
	s.running = false
	if t.index >= 0 && t.index < len(s.queue) && s.queue[t.index] == t {
		if next != nil && t.callback != nil {
			t.callback = next
		} else {
			t.callback = nil
			heap.Remove(&s.queue, t.index)
		}
	}
	s.mu.Unlock()

	s.FlushMicrotasks()
	return !s.Idle()
}

// FlushAll runs tasks until the queue is empty and returns how many slices
// ran.
func (s *Scheduler) FlushAll() int {
	n := 0
	for !s.Idle() {
		s.RunNext()
		n++
	}
	return n
}

// FlushUntil runs slices until cond returns true or the queue drains. It
// reports whether cond was satisfied.
func (s *Scheduler) FlushUntil(cond func() bool) bool {
	for !cond() {
		if s.Idle() {
			return false
		}
		s.RunNext()
	}
	return true
}

func (s *Scheduler) safeRun(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled callback panicked", "panic", r)
		}
	}()
	fn()
}
