// Package errors provides the coded errors of the reconciliation engine.
//
// Each error has a stable code (e.g., "F002") that maps to a category, a
// short message, a detailed explanation and, where it helps, a hint:
//
//	err := errors.New("F002").WithSubject("component %s", "Counter")
//	fmt.Println(err.Format())
//	// ERROR F002: Rendered more hooks than during the previous render
//	//
//	//   component Counter
//	//   ...
//
// Errors with the same code match each other under errors.Is, so callers can
// compare against package-level sentinels built with New.
//
// # Code ranges
//
//   - F001-F003: hook invariants (fatal for the render attempt)
//   - F004-F005: reconciliation warnings
//   - F006-F019: render and commit failures
//   - F020-F039: configuration
//   - F040-F059: command line
package errors
