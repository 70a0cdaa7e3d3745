package fiber

import (
	"reflect"

	"github.com/vango-dev/fiber/pkg/vdom"
)

// Snapshot is a read-only copy of a root's committed tree.
type Snapshot struct {
	RootID       string         `json:"rootId"`
	PendingLanes []string       `json:"pendingLanes,omitempty"`
	Rendering    bool           `json:"rendering"`
	Tree         *FiberSnapshot `json:"tree"`
}

// FiberSnapshot is one node of a Snapshot.
type FiberSnapshot struct {
	Tag      string            `json:"tag"`
	Type     string            `json:"type,omitempty"`
	Key      string            `json:"key,omitempty"`
	Text     string            `json:"text,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Hooks    int               `json:"hooks,omitempty"`
	Effects  int               `json:"effects,omitempty"`
	Children []*FiberSnapshot  `json:"children,omitempty"`
}

// Snapshot copies the committed tree. Call it from the goroutine driving
// the reconciler, e.g. from a CommitObserver.
func (root *FiberRootNode) Snapshot() *Snapshot {
	snap := &Snapshot{
		RootID:    root.ID,
		Rendering: root.IsRendering(),
		Tree:      snapshotFiber(root.Current),
	}
	for _, lane := range []Lane{SyncLane, InputContinuousLane, DefaultLane, IdleLane} {
		if IncludesLane(root.PendingLanes, lane) {
			snap.PendingLanes = append(snap.PendingLanes, LaneName(lane))
		}
	}
	return snap
}

func snapshotFiber(f *Fiber) *FiberSnapshot {
	s := &FiberSnapshot{
		Tag: f.Tag.String(),
		Key: f.Key,
	}
	switch f.Tag {
	case HostComponent, FunctionComponent:
		s.Type = f.Name()
		s.Attrs = snapshotAttrs(f.MemoizedProps.Attrs)
	case HostText:
		s.Text = f.MemoizedProps.Text
	}
	if f.Tag == FunctionComponent {
		for h, _ := f.MemoizedState.(*Hook); h != nil; h = h.Next {
			s.Hooks++
		}
		if q, ok := f.UpdateQueue.(*FCUpdateQueue); ok {
			forEachEffect(q.LastEffect, HookPassive, func(*Effect) { s.Effects++ })
		}
	}
	for child := f.Child; child != nil; child = child.Sibling {
		s.Children = append(s.Children, snapshotFiber(child))
	}
	return s
}

func snapshotAttrs(props vdom.Props) map[string]string {
	if len(props) == 0 {
		return nil
	}
	out := make(map[string]string, len(props))
	for k, v := range props {
		if k == vdom.ChildrenProp || v == nil || reflect.TypeOf(v).Kind() == reflect.Func {
			continue
		}
		out[k] = vdom.PropToString(v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
