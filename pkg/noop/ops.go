package noop

import (
	"fmt"
	"strings"

	"github.com/vango-dev/fiber/pkg/vdom"
)

// OpKind is the type of host operation.
type OpKind uint8

const (
	OpCreate      OpKind = 0x01 // Create element instance
	OpCreateText  OpKind = 0x02 // Create text instance
	OpAppendInit  OpKind = 0x03 // Append child while building a detached subtree
	OpAppend      OpKind = 0x04 // Append child to an attached parent
	OpInsert      OpKind = 0x05 // Insert child before a sibling
	OpRemove      OpKind = 0x06 // Remove child
	OpSetText     OpKind = 0x07 // Update text content
	OpUpdateProps OpKind = 0x08 // Apply attribute changes
)

// String returns the string representation of the OpKind.
func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpCreateText:
		return "create-text"
	case OpAppendInit:
		return "append-initial"
	case OpAppend:
		return "append"
	case OpInsert:
		return "insert"
	case OpRemove:
		return "remove"
	case OpSetText:
		return "set-text"
	case OpUpdateProps:
		return "update-props"
	default:
		return "unknown"
	}
}

// IsMutation reports whether the op changes the attached tree, as opposed to
// building a detached subtree.
func (k OpKind) IsMutation() bool {
	switch k {
	case OpAppend, OpInsert, OpRemove, OpSetText, OpUpdateProps:
		return true
	}
	return false
}

// Op records a single host call.
type Op struct {
	Kind    OpKind
	Node    *Node // Instance the op creates or moves
	Parent  *Node // Parent for append/insert/remove
	Before  *Node // Reference sibling for insert
	Text    string
	Changes []vdom.PropChange
}

// String returns a one-line description of the op.
func (o Op) String() string {
	switch o.Kind {
	case OpCreate, OpCreateText:
		return fmt.Sprintf("%s %s", o.Kind, o.Node.Label())
	case OpAppendInit, OpAppend:
		return fmt.Sprintf("%s %s to %s", o.Kind, o.Node.Label(), o.Parent.Label())
	case OpInsert:
		return fmt.Sprintf("insert %s into %s before %s", o.Node.Label(), o.Parent.Label(), o.Before.Label())
	case OpRemove:
		return fmt.Sprintf("remove %s from %s", o.Node.Label(), o.Parent.Label())
	case OpSetText:
		return fmt.Sprintf("set-text %s %q", o.Node.Label(), o.Text)
	case OpUpdateProps:
		parts := make([]string, len(o.Changes))
		for i, c := range o.Changes {
			parts[i] = c.String()
		}
		return fmt.Sprintf("update-props %s %s", o.Node.Label(), strings.Join(parts, " "))
	default:
		return o.Kind.String()
	}
}

// Count returns how many ops of the given kind are in ops.
func Count(ops []Op, kind OpKind) int {
	n := 0
	for _, op := range ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Mutations filters ops down to the ones that touched the attached tree.
func Mutations(ops []Op) []Op {
	var out []Op
	for _, op := range ops {
		if op.Kind.IsMutation() {
			out = append(out, op)
		}
	}
	return out
}
