// Package noop is an in-memory host for the fiber reconciler.
//
// Instances are *Node values forming a plain tree. Every host call is
// appended to an operation log so tests can assert exactly which mutations
// a commit performed, and String renders the tree as compact markup:
//
//	host := noop.New()
//	root := host.NewContainer()
//	// ... render into root ...
//	fmt.Println(root)        // <ul><li>a</li><li>b</li></ul>
//	for _, op := range host.Ops() {
//	    fmt.Println(op)      // insert li#4 into #root before li#2
//	}
//
// The host also owns the microtask queue the reconciler uses for synchronous
// work, unless one is supplied with WithMicrotaskQueue.
package noop
