// Package fiber is an incremental tree-reconciliation engine.
//
// Given the tree committed last time and a newly described tree (built with
// package vdom), the engine works out the minimal set of host mutations and
// applies them in two phases:
//
//   - The render phase walks a work-in-progress copy of the tree one fiber at
//     a time, calling components and diffing children. It can be interrupted
//     between fibers, restarted at a higher priority, or abandoned, without
//     touching the host.
//   - The commit phase applies the collected mutations to the host in one
//     uninterruptible pass and swaps the work-in-progress tree in as current.
//     Passive effects run later, at normal priority.
//
// # Components and hooks
//
// A component is a RenderFunc wrapped with FC. It receives a *Hooks handle
// that is only valid while the component renders:
//
//	var Counter = fiber.FC("Counter", func(h *fiber.Hooks, props vdom.Props) *vdom.VNode {
//	    count, setCount := fiber.UseState(h, 0)
//	    fiber.UseEffect(h, func() func() {
//	        log.Printf("count is %d", count)
//	        return nil
//	    }, fiber.Deps(count))
//	    return vdom.Button(vdom.Textf("clicked %d times", count))
//	})
//
// Hooks are identified by call order, so a component must call the same
// hooks in the same order on every render.
//
// # Lanes
//
// Every update carries a Lane derived from the scheduler's ambient priority.
// SyncLane work is flushed from a microtask; other lanes run as scheduler
// tasks that yield when Scheduler.ShouldYield says so. A higher lane arriving
// while a lower one is mid-render discards the in-flight work, which is
// redone later from the same base state.
//
// # Concurrency
//
// A Reconciler and everything it renders belongs to one goroutine. Updates
// must be dispatched from that goroutine, typically from scheduler tasks or
// event handlers driven by the same loop.
package fiber
