package fiber

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/vango-dev/fiber/pkg/vdom"
)

// childReconciler diffs a fiber's previous children against new
// descriptors. The tracking variant records placements and deletions; the
// mount variant is used for subtrees that are new as a whole, where only
// the subtree root needs a placement.
type childReconciler struct {
	r                  *Reconciler
	shouldTrackEffects bool
}

func (c *childReconciler) deleteChild(returnFiber, childToDelete *Fiber) {
	if !c.shouldTrackEffects {
		return
	}
	returnFiber.Deletions = append(returnFiber.Deletions, childToDelete)
	returnFiber.Flags |= ChildDeletion
}

func (c *childReconciler) deleteRemainingChildren(returnFiber, currentFirstChild *Fiber) {
	if !c.shouldTrackEffects {
		return
	}
	for child := currentFirstChild; child != nil; child = child.Sibling {
		c.deleteChild(returnFiber, child)
	}
}

func (c *childReconciler) placeSingleChild(f *Fiber) *Fiber {
	if f != nil && c.shouldTrackEffects && f.Alternate == nil {
		f.Flags |= Placement
	}
	return f
}

func useFiber(f *Fiber, props Props) *Fiber {
	clone := createWorkInProgress(f, props)
	clone.Index = 0
	clone.Sibling = nil
	return clone
}

// childKey is the identity of a child among its siblings: its key, or its
// position when it has none.
func childKey(key string, index int) any {
	if key != "" {
		return key
	}
	return index
}

// reconcile returns the first new child of returnFiber.
func (c *childReconciler) reconcile(returnFiber, currentFirstChild *Fiber, children []*vdom.VNode) *Fiber {
	// An unkeyed fragment at the top level is just a list of children.
	if len(children) == 1 {
		if el := children[0]; el != nil && el.Kind == vdom.KindFragment && !el.HasKey() {
			children = el.Children
		}
	}

	switch {
	case len(children) == 1 && children[0] != nil:
		el := children[0]
		switch el.Kind {
		case vdom.KindElement, vdom.KindComponent, vdom.KindFragment:
			return c.placeSingleChild(c.reconcileSingleElement(returnFiber, currentFirstChild, el))
		case vdom.KindText:
			return c.placeSingleChild(c.reconcileSingleTextNode(returnFiber, currentFirstChild, el.Text))
		default:
			c.r.warnUnknownVariant("descriptor kind", el.Kind.String())
		}
	case len(children) > 1:
		return c.reconcileChildrenArray(returnFiber, currentFirstChild, children)
	}

	c.deleteRemainingChildren(returnFiber, currentFirstChild)
	return nil
}

func (c *childReconciler) reconcileSingleElement(returnFiber, currentFirstChild *Fiber, el *vdom.VNode) *Fiber {
	for current := currentFirstChild; current != nil; current = current.Sibling {
		if current.Key != el.Key {
			c.deleteChild(returnFiber, current)
			continue
		}
		if matchesElement(current, el) {
			existing := useFiber(current, propsFromElement(el))
			existing.Return = returnFiber
			c.deleteRemainingChildren(returnFiber, current.Sibling)
			return existing
		}
		// Same key, different type: nothing below can match either.
		c.deleteRemainingChildren(returnFiber, current)
		break
	}

	f := createFiberFromElement(el)
	if f == nil {
		c.r.warnUnknownVariant("component", el.Kind.String())
		return nil
	}
	f.Return = returnFiber
	return f
}

func (c *childReconciler) reconcileSingleTextNode(returnFiber, currentFirstChild *Fiber, text string) *Fiber {
	if currentFirstChild != nil && currentFirstChild.Tag == HostText {
		c.deleteRemainingChildren(returnFiber, currentFirstChild.Sibling)
		existing := useFiber(currentFirstChild, Props{Text: text})
		existing.Return = returnFiber
		return existing
	}
	c.deleteRemainingChildren(returnFiber, currentFirstChild)
	f := createFiberFromText(text)
	f.Return = returnFiber
	return f
}

func (c *childReconciler) reconcileChildrenArray(returnFiber, currentFirstChild *Fiber, children []*vdom.VNode) *Fiber {
	var firstNewFiber, lastNewFiber *Fiber
	lastPlacedIndex := 0

	// Previous children by key or index. A duplicated previous key keeps
	// the later fiber; the earlier one is never claimed and gets deleted.
	existing := make(map[any]*Fiber)
	for current := currentFirstChild; current != nil; current = current.Sibling {
		k := childKey(current.Key, current.Index)
		if _, dup := existing[k]; dup && current.Key != "" {
			c.r.warnDuplicateKey(returnFiber, current.Key)
		}
		existing[k] = current
	}

	seen := mapset.NewThreadUnsafeSet[string]()
	claimed := mapset.NewThreadUnsafeSet[*Fiber]()

	for i, el := range children {
		if el == nil {
			continue
		}
		// The first occurrence of a key claims the previous fiber; later
		// ones find it gone from the map and are created fresh.
		if el.HasKey() && !seen.Add(el.Key) {
			c.r.warnDuplicateKey(returnFiber, el.Key)
		}

		newFiber := c.updateFromMap(existing, i, el)
		if newFiber == nil {
			continue
		}
		newFiber.Index = i
		newFiber.Return = returnFiber

		if lastNewFiber == nil {
			firstNewFiber = newFiber
		} else {
			lastNewFiber.Sibling = newFiber
		}
		lastNewFiber = newFiber

		if !c.shouldTrackEffects {
			continue
		}
		current := newFiber.Alternate
		if current == nil {
			newFiber.Flags |= Placement
			continue
		}
		claimed.Add(current)
		if current.Index < lastPlacedIndex {
			// Moved right past a sibling that stayed put.
			newFiber.Flags |= Placement
			continue
		}
		lastPlacedIndex = current.Index
	}

	if c.shouldTrackEffects {
		for current := currentFirstChild; current != nil; current = current.Sibling {
			if !claimed.Contains(current) {
				c.deleteChild(returnFiber, current)
			}
		}
	}
	return firstNewFiber
}

func (c *childReconciler) updateFromMap(existing map[any]*Fiber, index int, el *vdom.VNode) *Fiber {
	key := childKey(el.Key, index)
	if before, ok := existing[key]; ok && matchesElement(before, el) {
		delete(existing, key)
		return useFiber(before, propsFromElement(el))
	}

	f := createFiberFromElement(el)
	if f == nil {
		c.r.warnUnknownVariant("descriptor kind", el.Kind.String())
	}
	return f
}
