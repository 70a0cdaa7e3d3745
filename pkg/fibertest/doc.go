// Package fibertest provides testing helpers for fiber components.
//
// A Harness wires a reconciler to the in-memory host and drains the
// scheduler after every step, so tests read like a sequence of renders:
//
//	func TestCounter(t *testing.T) {
//	    h := fibertest.New(t)
//	    h.Render(Counter.El())
//	    fibertest.ExpectHTML(t, h, "<button>0</button>")
//
//	    h.Act(func() { setCount.Set(1) })
//	    fibertest.ExpectContains(t, h, "1")
//	}
//
// # Time slicing
//
// WithSliceBudget makes the scheduler yield after a fixed number of units
// of work. Use Step to run one slice at a time:
//
//	h := fibertest.New(t, fibertest.WithSliceBudget(2))
//	h.Render(App.El())
//	setValue.Set(1)
//	h.Step() // renders part of the tree, commits nothing
//
// # Host operations
//
// Mutations returns the host operations that touched the attached tree
// since the last call, which makes it easy to assert that an update moved
// nodes instead of recreating them.
package fibertest
