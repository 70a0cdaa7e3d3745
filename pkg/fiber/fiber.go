package fiber

import (
	"maps"

	"github.com/vango-dev/fiber/pkg/scheduler"
	"github.com/vango-dev/fiber/pkg/vdom"
)

// Props are the inputs a fiber was rendered with.
type Props struct {
	Attrs    vdom.Props    // Element attributes, or component props
	Children []*vdom.VNode // Child descriptors of elements and fragments
	Text     string        // Content of text fibers
}

// Fiber is one unit of work: a node of the current tree or of the
// work-in-progress tree. Each node that survives a render has an Alternate
// in the other tree.
type Fiber struct {
	Tag  WorkTag
	Key  string // Empty means no key
	Type any    // Tag name for HostComponent, *Component for FunctionComponent

	PendingProps  Props
	MemoizedProps Props

	// MemoizedState is the hook chain head (*Hook) for components and the
	// current element for the root.
	MemoizedState any

	// UpdateQueue is *UpdateQueue for the root, *FCUpdateQueue for
	// components and the []vdom.PropChange payload for host components.
	UpdateQueue any

	// StateNode is the host instance, or the *FiberRootNode for the root.
	StateNode any

	Return  *Fiber
	Child   *Fiber
	Sibling *Fiber
	Index   int

	Flags        Flags
	SubtreeFlags Flags
	Deletions    []*Fiber

	Alternate *Fiber
}

func newFiber(tag WorkTag, props Props, key string) *Fiber {
	return &Fiber{
		Tag:          tag,
		Key:          key,
		PendingProps: props,
	}
}

// Name returns a short description of the fiber for logs and errors.
func (f *Fiber) Name() string {
	if f == nil {
		return "<nil>"
	}
	switch t := f.Type.(type) {
	case string:
		return t
	case *Component:
		return t.ComponentName()
	}
	return f.Tag.String()
}

// createWorkInProgress returns the alternate of current prepared for a new
// render with the given props, allocating it on first use.
func createWorkInProgress(current *Fiber, pendingProps Props) *Fiber {
	wip := current.Alternate
	if wip == nil {
		wip = newFiber(current.Tag, pendingProps, current.Key)
		wip.StateNode = current.StateNode
		wip.Alternate = current
		current.Alternate = wip
	} else {
		wip.PendingProps = pendingProps
		wip.StateNode = current.StateNode
		wip.Flags = NoFlags
		wip.SubtreeFlags = NoFlags
		wip.Deletions = nil
	}
	wip.Type = current.Type
	wip.UpdateQueue = current.UpdateQueue
	wip.Child = current.Child
	wip.MemoizedProps = current.MemoizedProps
	wip.MemoizedState = current.MemoizedState
	return wip
}

// propsFromElement extracts the fiber props carried by a descriptor.
func propsFromElement(el *vdom.VNode) Props {
	switch el.Kind {
	case vdom.KindComponent:
		return Props{Attrs: componentProps(el)}
	case vdom.KindText:
		return Props{Text: el.Text}
	default:
		return Props{Attrs: el.Props, Children: el.Children}
	}
}

// componentProps hands a component its attributes plus its children under
// vdom.ChildrenProp.
func componentProps(el *vdom.VNode) vdom.Props {
	if len(el.Children) == 0 {
		return el.Props
	}
	props := maps.Clone(el.Props)
	if props == nil {
		props = make(vdom.Props, 1)
	}
	props[vdom.ChildrenProp] = el.Children
	return props
}

// createFiberFromElement returns nil for descriptors the engine cannot
// represent.
func createFiberFromElement(el *vdom.VNode) *Fiber {
	switch el.Kind {
	case vdom.KindElement:
		f := newFiber(HostComponent, propsFromElement(el), el.Key)
		f.Type = el.Tag
		return f
	case vdom.KindComponent:
		c, ok := el.Comp.(*Component)
		if !ok || c == nil || c.Render == nil {
			return nil
		}
		f := newFiber(FunctionComponent, propsFromElement(el), el.Key)
		f.Type = c
		return f
	case vdom.KindFragment:
		return newFiber(Fragment, propsFromElement(el), el.Key)
	case vdom.KindText:
		return createFiberFromText(el.Text)
	}
	return nil
}

func createFiberFromText(text string) *Fiber {
	return newFiber(HostText, Props{Text: text}, "")
}

// matchesElement reports whether f can be reused to render el.
func matchesElement(f *Fiber, el *vdom.VNode) bool {
	switch el.Kind {
	case vdom.KindElement:
		return f.Tag == HostComponent && f.Type == el.Tag
	case vdom.KindComponent:
		c, ok := el.Comp.(*Component)
		return ok && f.Tag == FunctionComponent && f.Type == c
	case vdom.KindFragment:
		return f.Tag == Fragment
	case vdom.KindText:
		return f.Tag == HostText
	}
	return false
}

// PendingPassiveEffects are the effect lists collected by the last commits
// and not flushed yet. Each entry is the last effect of one component's
// circular effect list.
type PendingPassiveEffects struct {
	Unmount []*Effect
	Update  []*Effect
}

// FiberRootNode owns one mounted tree.
type FiberRootNode struct {
	// ID uniquely identifies the root in logs, metrics and the inspector.
	ID string

	// Container is the host instance the tree renders into.
	Container any

	// Current is the HostRoot fiber of the committed tree.
	Current *Fiber

	// FinishedWork is the completed work-in-progress HostRoot awaiting commit.
	FinishedWork *Fiber

	PendingLanes Lanes
	FinishedLane Lane

	PendingPassiveEffects PendingPassiveEffects

	callbackNode     *scheduler.Task
	callbackPriority Lane

	// Lanes updated while this root was rendering; kept pending at commit.
	interleavedLanes Lanes

	rootDoesHavePassiveEffects bool
	renderAttempts             int
	unmounted                  bool

	session renderSession
}

// IsRendering reports whether a render of this root is in progress, either
// running or interrupted and waiting to resume.
func (root *FiberRootNode) IsRendering() bool {
	return root.session.wip != nil
}

// RenderLane returns the lane of the in-progress render, or NoLane.
func (root *FiberRootNode) RenderLane() Lane {
	if root.session.wip == nil {
		return NoLane
	}
	return root.session.renderLane
}

// Unmounted reports whether Unmount was called on the root.
func (root *FiberRootNode) Unmounted() bool {
	return root.unmounted
}
