// Package scheduler is a cooperative priority task queue.
//
// Tasks are ordered by expiration time: the schedule time plus a timeout
// that depends on the task's Priority. A callback may return a continuation,
// in which case the task stays queued with the continuation as its new
// callback. This is how an interrupted render resumes where it stopped.
//
// Nothing runs on its own. The owner drains the queue with RunNext or
// FlushAll on its own goroutine, which keeps tests fully deterministic:
//
//	s := scheduler.New(scheduler.WithSliceBudget(2))
//	s.ScheduleCallback(scheduler.NormalPriority, work)
//	for s.RunNext() {
//	}
//
// Microtasks queued with QueueMicrotask run after every task and on
// FlushMicrotasks, mirroring the event-loop rule that microtasks drain
// before the next macrotask starts.
package scheduler
