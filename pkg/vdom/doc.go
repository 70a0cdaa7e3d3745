// Package vdom describes the output the reconciler should produce.
//
// A VNode is an immutable descriptor: element, text, fragment or component.
// The reconciler treats descriptors as opaque apart from their kind, their
// type identity (tag or component) and their key.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Ul(Class("todo"),
//	    Li(Key("a"), "first"),
//	    Li(Key("b"), "second"),
//	)
//
// Slices of nodes (see Range) become siblings; a Key attribute gives a node
// a stable identity among its siblings so it survives reordering.
//
// # Property diffs
//
// DiffProps compares two attribute sets and returns the ordered list of
// PropChange values a host needs to apply to an existing instance.
package vdom
