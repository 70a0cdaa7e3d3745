package scheduler

import "time"

// Callback is a unit of scheduled work. didTimeout reports whether the task
// expired before it got to run. Returning a non-nil Callback keeps the task
// queued with that continuation.
type Callback func(didTimeout bool) Callback

// Task is a handle to a scheduled callback.
type Task struct {
	id         uint64
	priority   Priority
	callback   Callback
	expiration time.Time
	index      int // position in the heap, -1 once removed
}

// ID returns the task's sequence number.
func (t *Task) ID() uint64 { return t.id }

// Priority returns the priority the task was scheduled with.
func (t *Task) Priority() Priority { return t.priority }

// Cancelled reports whether the task was cancelled or has finished.
func (t *Task) Cancelled() bool { return t.callback == nil }

// taskHeap is a min-heap of tasks ordered by expiration, then insertion.
type taskHeap []*Task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].expiration.Equal(h[j].expiration) {
		return h[i].id < h[j].id
	}
	return h[i].expiration.Before(h[j].expiration)
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*Task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
