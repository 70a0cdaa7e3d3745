package scheduler

import "time"

// Priority is a scheduler priority level. Lower values are more urgent.
type Priority int

const (
	NoPriority Priority = iota
	ImmediatePriority
	UserBlockingPriority
	NormalPriority
	LowPriority
	IdlePriority
)

// String returns the lowercase name of the priority.
func (p Priority) String() string {
	switch p {
	case ImmediatePriority:
		return "immediate"
	case UserBlockingPriority:
		return "user-blocking"
	case NormalPriority:
		return "normal"
	case LowPriority:
		return "low"
	case IdlePriority:
		return "idle"
	default:
		return "none"
	}
}

// ParsePriority is the inverse of String.
func ParsePriority(s string) (Priority, bool) {
	for p := ImmediatePriority; p <= IdlePriority; p++ {
		if p.String() == s {
			return p, true
		}
	}
	return NoPriority, false
}

// Timeouts after which a queued task counts as expired.
const (
	ImmediateTimeout    = -1 * time.Millisecond
	UserBlockingTimeout = 250 * time.Millisecond
	NormalTimeout       = 5 * time.Second
	LowTimeout          = 10 * time.Second
	// IdleTimeout is effectively never.
	IdleTimeout = time.Duration(1<<62 - 1)
)

func timeoutFor(p Priority) time.Duration {
	switch p {
	case ImmediatePriority:
		return ImmediateTimeout
	case UserBlockingPriority:
		return UserBlockingTimeout
	case LowPriority:
		return LowTimeout
	case IdlePriority:
		return IdleTimeout
	default:
		return NormalTimeout
	}
}
