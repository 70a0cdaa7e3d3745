package fiber

import (
	"github.com/vango-dev/fiber/pkg/scheduler"
	"github.com/vango-dev/fiber/pkg/vdom"
)

// Instance is an opaque host node handle.
type Instance = any

// HostConfig is the rendering target. The engine creates instances during
// the render phase (detached, built bottom-up) and only mutates attached
// instances during commit.
type HostConfig interface {
	CreateInstance(tag string, props vdom.Props) Instance
	CreateTextInstance(text string) Instance
	AppendInitialChild(parent, child Instance)

	// AppendChildToContainer and InsertChildToContainer are used for every
	// attached parent, container or element. A child that is already
	// attached elsewhere in the parent must be moved.
	AppendChildToContainer(container, child Instance)
	InsertChildToContainer(container, child, before Instance)
	RemoveChild(child, container Instance)

	CommitTextUpdate(instance Instance, oldText, newText string)
	CommitUpdate(instance Instance, tag string, changes []vdom.PropChange)

	// ScheduleMicrotask runs fn after the current task, before any other
	// scheduler task.
	ScheduleMicrotask(fn func())
}

// Scheduler runs prioritized callbacks. *scheduler.Scheduler implements it.
type Scheduler interface {
	ScheduleCallback(p scheduler.Priority, cb scheduler.Callback) *scheduler.Task
	CancelCallback(t *scheduler.Task)
	ShouldYield() bool
	CurrentPriorityLevel() scheduler.Priority
	RunWithPriority(p scheduler.Priority, fn func())
}

var _ Scheduler = (*scheduler.Scheduler)(nil)
