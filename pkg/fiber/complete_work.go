package fiber

import "github.com/vango-dev/fiber/pkg/vdom"

func markUpdate(f *Fiber) {
	f.Flags |= UpdateFlag
}

// completeWork creates host instances for new fibers, computes update
// payloads for reused ones, and bubbles subtree flags up.
func (r *Reconciler) completeWork(wip *Fiber) {
	newProps := wip.PendingProps
	current := wip.Alternate

	switch wip.Tag {
	case HostComponent:
		if current != nil && wip.StateNode != nil {
			changes := vdom.DiffProps(current.MemoizedProps.Attrs, newProps.Attrs)
			if len(changes) > 0 {
				wip.UpdateQueue = changes
				markUpdate(wip)
			} else {
				wip.UpdateQueue = nil
			}
		} else {
			instance := r.host.CreateInstance(wip.Type.(string), newProps.Attrs)
			r.appendAllChildren(instance, wip)
			wip.StateNode = instance
		}
		bubbleProperties(wip)

	case HostText:
		if current != nil && wip.StateNode != nil {
			if current.MemoizedProps.Text != newProps.Text {
				markUpdate(wip)
			}
		} else {
			wip.StateNode = r.host.CreateTextInstance(newProps.Text)
		}
		bubbleProperties(wip)

	case HostRoot, FunctionComponent, Fragment:
		bubbleProperties(wip)

	default:
		r.warnUnknownVariant("fiber tag", wip.Tag.String())
	}
}

// appendAllChildren attaches the top-level host nodes below wip to parent,
// looking through components and fragments.
func (r *Reconciler) appendAllChildren(parent Instance, wip *Fiber) {
	node := wip.Child
	for node != nil {
		if node.Tag == HostComponent || node.Tag == HostText {
			r.host.AppendInitialChild(parent, node.StateNode)
		} else if node.Child != nil {
			node.Child.Return = node
			node = node.Child
			continue
		}

		if node == wip {
			return
		}
		for node.Sibling == nil {
			if node.Return == nil || node.Return == wip {
				return
			}
			node = node.Return
		}
		node.Sibling.Return = node.Return
		node = node.Sibling
	}
}

func bubbleProperties(wip *Fiber) {
	subtreeFlags := NoFlags
	for child := wip.Child; child != nil; child = child.Sibling {
		subtreeFlags |= child.SubtreeFlags
		subtreeFlags |= child.Flags
		child.Return = wip
	}
	wip.SubtreeFlags |= subtreeFlags
}
