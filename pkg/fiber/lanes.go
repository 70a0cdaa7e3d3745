package fiber

import "github.com/vango-dev/fiber/pkg/scheduler"

// Lanes is a bitset of update priorities. The lowest set bit is the most
// urgent.
type Lanes uint32

// Lane is a Lanes value with at most one bit set.
type Lane = Lanes

const (
	NoLane              Lane = 0b0000
	SyncLane            Lane = 0b0001
	InputContinuousLane Lane = 0b0010
	DefaultLane         Lane = 0b0100
	IdleLane            Lane = 0b1000

	NoLanes Lanes = 0
)

// MergeLanes returns the union of a and b.
func MergeLanes(a, b Lanes) Lanes {
	return a | b
}

// RemoveLanes returns set without the bits in subset.
func RemoveLanes(set, subset Lanes) Lanes {
	return set &^ subset
}

// IncludesLane reports whether set contains any bit of lane.
func IncludesLane(set Lanes, lane Lane) bool {
	return set&lane != NoLanes
}

// GetHighestPriorityLane returns the most urgent lane in lanes.
func GetHighestPriorityLane(lanes Lanes) Lane {
	return lanes & -lanes
}

// LaneToPriority maps the most urgent lane in lanes to a scheduler priority.
func LaneToPriority(lanes Lanes) scheduler.Priority {
	switch GetHighestPriorityLane(lanes) {
	case SyncLane:
		return scheduler.ImmediatePriority
	case InputContinuousLane:
		return scheduler.UserBlockingPriority
	case DefaultLane:
		return scheduler.NormalPriority
	default:
		return scheduler.IdlePriority
	}
}

// PriorityToLane maps a scheduler priority to the lane its updates use.
func PriorityToLane(p scheduler.Priority) Lane {
	switch p {
	case scheduler.ImmediatePriority:
		return SyncLane
	case scheduler.UserBlockingPriority:
		return InputContinuousLane
	case scheduler.NormalPriority:
		return DefaultLane
	case scheduler.LowPriority, scheduler.IdlePriority:
		return IdleLane
	default:
		return NoLane
	}
}

// LaneName returns a short label for a single lane, used in logs and
// metrics.
func LaneName(lane Lane) string {
	switch lane {
	case NoLane:
		return "none"
	case SyncLane:
		return "sync"
	case InputContinuousLane:
		return "input-continuous"
	case DefaultLane:
		return "default"
	case IdleLane:
		return "idle"
	default:
		return "mixed"
	}
}
