package fiber

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vango-dev/fiber/pkg/scheduler"
)

func TestGetHighestPriorityLane(t *testing.T) {
	tests := []struct {
		lanes Lanes
		want  Lane
	}{
		{NoLanes, NoLane},
		{SyncLane, SyncLane},
		{DefaultLane | IdleLane, DefaultLane},
		{SyncLane | DefaultLane, SyncLane},
		{InputContinuousLane | DefaultLane | IdleLane, InputContinuousLane},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetHighestPriorityLane(tt.lanes), "lanes %04b", tt.lanes)
	}
}

func TestLaneSetOperations(t *testing.T) {
	set := MergeLanes(SyncLane, DefaultLane)
	assert.True(t, IncludesLane(set, SyncLane))
	assert.True(t, IncludesLane(set, DefaultLane))
	assert.False(t, IncludesLane(set, IdleLane))

	set = RemoveLanes(set, SyncLane)
	assert.Equal(t, DefaultLane, set)
	assert.Equal(t, NoLanes, RemoveLanes(set, DefaultLane))
}

func TestLanePriorityMapping(t *testing.T) {
	for _, lane := range []Lane{SyncLane, InputContinuousLane, DefaultLane, IdleLane} {
		assert.Equal(t, lane, PriorityToLane(LaneToPriority(lane)), LaneName(lane))
	}
	assert.Equal(t, scheduler.NormalPriority, LaneToPriority(DefaultLane|IdleLane))
	assert.Equal(t, IdleLane, PriorityToLane(scheduler.LowPriority))
	assert.Equal(t, NoLane, PriorityToLane(scheduler.NoPriority))
}

func TestLaneName(t *testing.T) {
	assert.Equal(t, "sync", LaneName(SyncLane))
	assert.Equal(t, "default", LaneName(DefaultLane))
	assert.Equal(t, "none", LaneName(NoLane))
	assert.Equal(t, "mixed", LaneName(SyncLane|DefaultLane))
}

func TestFlagsString(t *testing.T) {
	assert.Equal(t, "NoFlags", NoFlags.String())
	assert.Equal(t, "Placement|ChildDeletion", (Placement | ChildDeletion).String())
	assert.Equal(t, "Placement|Update", (Placement | UpdateFlag).String())
	assert.Equal(t, "Update|PassiveEffect", (UpdateFlag | PassiveEffect).String())
	assert.True(t, MutationMask.Has(Placement|UpdateFlag))
	assert.False(t, PassiveMask.Has(UpdateFlag))
}
