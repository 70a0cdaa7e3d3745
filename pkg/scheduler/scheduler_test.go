package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestScheduler(opts ...Option) (*Scheduler, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	return New(append([]Option{WithClock(clock.now)}, opts...)...), clock
}

func TestPriorityOrdering(t *testing.T) {
	s, _ := newTestScheduler()
	var order []string
	record := func(name string) Callback {
		return func(bool) Callback {
			order = append(order, name)
			return nil
		}
	}

	s.ScheduleCallback(IdlePriority, record("idle"))
	s.ScheduleCallback(NormalPriority, record("normal-1"))
	s.ScheduleCallback(UserBlockingPriority, record("user-blocking"))
	s.ScheduleCallback(NormalPriority, record("normal-2"))
	s.ScheduleCallback(LowPriority, record("low"))

	assert.Equal(t, 5, s.Pending())
	s.FlushAll()
	assert.Equal(t, []string{"user-blocking", "normal-1", "normal-2", "low", "idle"}, order)
	assert.Equal(t, 0, s.Pending())
}

func TestCancelCallback(t *testing.T) {
	s, _ := newTestScheduler()
	ran := false
	task := s.ScheduleCallback(NormalPriority, func(bool) Callback {
		ran = true
		return nil
	})
	s.CancelCallback(task)
	s.CancelCallback(task)
	s.CancelCallback(nil)

	assert.True(t, task.Cancelled())
	assert.False(t, s.RunNext())
	assert.False(t, ran)
}

func TestContinuationKeepsTask(t *testing.T) {
	s, _ := newTestScheduler()
	steps := 0
	var step Callback
	step = func(bool) Callback {
		steps++
		if steps < 3 {
			return step
		}
		return nil
	}
	task := s.ScheduleCallback(NormalPriority, step)

	assert.True(t, s.RunNext())
	assert.Equal(t, 1, steps)
	assert.False(t, task.Cancelled())

	s.FlushAll()
	assert.Equal(t, 3, steps)
	assert.True(t, task.Cancelled())
}

func TestCancelDuringCallbackDropsContinuation(t *testing.T) {
	s, _ := newTestScheduler()
	var task *Task
	calls := 0
	var cb Callback
	cb = func(bool) Callback {
		calls++
		s.CancelCallback(task)
		return cb
	}
	task = s.ScheduleCallback(NormalPriority, cb)

	s.FlushAll()
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, s.Pending())
}

func TestShouldYieldSliceBudget(t *testing.T) {
	s, _ := newTestScheduler(WithSliceBudget(2))
	assert.False(t, s.ShouldYield(), "no task running")

	var got []bool
	s.ScheduleCallback(NormalPriority, func(bool) Callback {
		for i := 0; i < 3; i++ {
			got = append(got, s.ShouldYield())
		}
		return nil
	})
	s.FlushAll()
	assert.Equal(t, []bool{false, false, true}, got)
}

func TestShouldYieldFrameInterval(t *testing.T) {
	s, clock := newTestScheduler(WithFrameInterval(5 * time.Millisecond))
	var before, after bool
	s.ScheduleCallback(NormalPriority, func(bool) Callback {
		before = s.ShouldYield()
		clock.advance(6 * time.Millisecond)
		after = s.ShouldYield()
		return nil
	})
	s.FlushAll()
	assert.False(t, before)
	assert.True(t, after)
}

func TestRequestYield(t *testing.T) {
	s, _ := newTestScheduler()
	s.RequestYield()
	assert.True(t, s.ShouldYield())
	assert.False(t, s.ShouldYield())
}

func TestDidTimeout(t *testing.T) {
	s, clock := newTestScheduler()
	var timedOut []bool
	cb := func(didTimeout bool) Callback {
		timedOut = append(timedOut, didTimeout)
		return nil
	}
	s.ScheduleCallback(UserBlockingPriority, cb)
	s.FlushAll()

	s.ScheduleCallback(UserBlockingPriority, cb)
	clock.advance(time.Second)
	s.FlushAll()

	s.ScheduleCallback(ImmediatePriority, cb)
	s.FlushAll()

	assert.Equal(t, []bool{false, true, true}, timedOut)
}

func TestRunWithPriority(t *testing.T) {
	s, _ := newTestScheduler()
	assert.Equal(t, NormalPriority, s.CurrentPriorityLevel())

	s.RunWithPriority(ImmediatePriority, func() {
		assert.Equal(t, ImmediatePriority, s.CurrentPriorityLevel())
		s.RunWithPriority(IdlePriority, func() {
			assert.Equal(t, IdlePriority, s.CurrentPriorityLevel())
		})
		assert.Equal(t, ImmediatePriority, s.CurrentPriorityLevel())
	})
	assert.Equal(t, NormalPriority, s.CurrentPriorityLevel())

	var during Priority
	s.ScheduleCallback(LowPriority, func(bool) Callback {
		during = s.CurrentPriorityLevel()
		return nil
	})
	s.FlushAll()
	assert.Equal(t, LowPriority, during)
}

func TestMicrotasksRunBeforeNextTask(t *testing.T) {
	s, _ := newTestScheduler()
	var order []string
	s.ScheduleCallback(NormalPriority, func(bool) Callback {
		order = append(order, "task-1")
		s.QueueMicrotask(func() {
			order = append(order, "micro")
			s.QueueMicrotask(func() { order = append(order, "nested-micro") })
		})
		return nil
	})
	s.ScheduleCallback(NormalPriority, func(bool) Callback {
		order = append(order, "task-2")
		return nil
	})

	s.FlushAll()
	assert.Equal(t, []string{"task-1", "micro", "nested-micro", "task-2"}, order)
	assert.True(t, s.Idle())
}

func TestPanickingCallbackIsRecovered(t *testing.T) {
	s, _ := newTestScheduler()
	s.ScheduleCallback(NormalPriority, func(bool) Callback { panic("boom") })
	ran := false
	s.ScheduleCallback(NormalPriority, func(bool) Callback {
		ran = true
		return nil
	})

	require.NotPanics(t, func() { s.FlushAll() })
	assert.True(t, ran)
}

func TestFlushUntil(t *testing.T) {
	s, _ := newTestScheduler()
	count := 0
	for i := 0; i < 3; i++ {
		s.ScheduleCallback(NormalPriority, func(bool) Callback {
			count++
			return nil
		})
	}
	assert.True(t, s.FlushUntil(func() bool { return count == 2 }))
	assert.Equal(t, 1, s.Pending())
	assert.False(t, s.FlushUntil(func() bool { return count == 10 }))
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in   string
		want Priority
		ok   bool
	}{
		{"immediate", ImmediatePriority, true},
		{"user-blocking", UserBlockingPriority, true},
		{"normal", NormalPriority, true},
		{"low", LowPriority, true},
		{"idle", IdlePriority, true},
		{"urgent", NoPriority, false},
	}
	for _, tt := range tests {
		got, ok := ParsePriority(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParsePriority(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
