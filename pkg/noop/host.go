package noop

import (
	"fmt"
	"maps"
	"sync"

	"github.com/vango-dev/fiber/pkg/vdom"
)

// Host is an in-memory host renderer. Instances are *Node.
type Host struct {
	mu         sync.Mutex
	nextID     int
	ops        []Op
	microtasks []func()
	queue      func(func())
}

// Option configures a Host.
type Option func(*Host)

// WithMicrotaskQueue routes ScheduleMicrotask to queue instead of the
// host's own queue, e.g. (*scheduler.Scheduler).QueueMicrotask.
func WithMicrotaskQueue(queue func(func())) Option {
	return func(h *Host) {
		h.queue = queue
	}
}

// New creates an empty host.
func New(opts ...Option) *Host {
	h := &Host{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewContainer creates a detached root node to render into.
func (h *Host) NewContainer() *Node {
	return &Node{ID: h.allocID(), Tag: ContainerTag}
}

func (h *Host) allocID() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	return h.nextID
}

func (h *Host) record(op Op) {
	h.mu.Lock()
	h.ops = append(h.ops, op)
	h.mu.Unlock()
}

// Ops returns a copy of the operation log.
func (h *Host) Ops() []Op {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Op(nil), h.ops...)
}

// TakeOps returns the operation log and clears it.
func (h *Host) TakeOps() []Op {
	h.mu.Lock()
	defer h.mu.Unlock()
	ops := h.ops
	h.ops = nil
	return ops
}

// ResetOps clears the operation log.
func (h *Host) ResetOps() {
	h.mu.Lock()
	h.ops = nil
	h.mu.Unlock()
}

func asNode(i any) *Node {
	n, ok := i.(*Node)
	if !ok {
		panic(fmt.Sprintf("noop: instance is %T, not *noop.Node", i))
	}
	return n
}

// CreateInstance creates a detached element.
func (h *Host) CreateInstance(tag string, props vdom.Props) any {
	n := &Node{ID: h.allocID(), Tag: tag, Props: maps.Clone(props)}
	delete(n.Props, vdom.ChildrenProp)
	h.record(Op{Kind: OpCreate, Node: n})
	return n
}

// CreateTextInstance creates a detached text node.
func (h *Host) CreateTextInstance(text string) any {
	n := &Node{ID: h.allocID(), Text: text}
	h.record(Op{Kind: OpCreateText, Node: n, Text: text})
	return n
}

// AppendInitialChild appends child to a parent that is not attached yet.
func (h *Host) AppendInitialChild(parent, child any) {
	p, c := asNode(parent), asNode(child)
	p.append(c)
	h.record(Op{Kind: OpAppendInit, Node: c, Parent: p})
}

// AppendChildToContainer appends child, moving it if already attached.
func (h *Host) AppendChildToContainer(container, child any) {
	p, c := asNode(container), asNode(child)
	p.append(c)
	h.record(Op{Kind: OpAppend, Node: c, Parent: p})
}

// InsertChildToContainer inserts child before the given sibling.
func (h *Host) InsertChildToContainer(container, child, before any) {
	p, c, b := asNode(container), asNode(child), asNode(before)
	p.insertBefore(c, b)
	h.record(Op{Kind: OpInsert, Node: c, Parent: p, Before: b})
}

// RemoveChild detaches child from container.
func (h *Host) RemoveChild(child, container any) {
	p, c := asNode(container), asNode(child)
	p.detach(c)
	h.record(Op{Kind: OpRemove, Node: c, Parent: p})
}

// CommitTextUpdate replaces a text node's content.
func (h *Host) CommitTextUpdate(instance any, oldText, newText string) {
	n := asNode(instance)
	n.Text = newText
	h.record(Op{Kind: OpSetText, Node: n, Text: newText})
}

// CommitUpdate applies attribute changes to an element.
func (h *Host) CommitUpdate(instance any, tag string, changes []vdom.PropChange) {
	n := asNode(instance)
	if n.Props == nil {
		n.Props = make(vdom.Props, len(changes))
	}
	for _, c := range changes {
		if c.Removed {
			delete(n.Props, c.Key)
			continue
		}
		n.Props[c.Key] = c.Value
	}
	h.record(Op{Kind: OpUpdateProps, Node: n, Changes: changes})
}

// ScheduleMicrotask queues fn on the configured microtask queue.
func (h *Host) ScheduleMicrotask(fn func()) {
	if h.queue != nil {
		h.queue(fn)
		return
	}
	h.mu.Lock()
	h.microtasks = append(h.microtasks, fn)
	h.mu.Unlock()
}

// PendingMicrotasks returns the number of queued microtasks.
func (h *Host) PendingMicrotasks() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.microtasks)
}

// FlushMicrotasks runs queued microtasks, including ones queued while
// flushing, and returns how many ran.
func (h *Host) FlushMicrotasks() int {
	n := 0
	for {
		h.mu.Lock()
		batch := h.microtasks
		h.microtasks = nil
		h.mu.Unlock()
		if len(batch) == 0 {
			return n
		}
		for _, fn := range batch {
			fn()
			n++
		}
	}
}
