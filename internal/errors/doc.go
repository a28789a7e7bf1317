// Package errors provides structured, actionable error messages for reconcile.
//
// Every error carries a code that maps to a registered template with a short
// message, a longer explanation and a documentation link. Errors can point at
// a location in a scenario or configuration file.
//
// # Error Categories
//
// Errors are organized into categories:
//   - contract: the caller broke an invariant of the patch engine or the
//     transition state machine (duplicate keys, missing live handles,
//     completion callbacks invoked twice). These are raised with panic.
//   - runtime: recoverable problems reported while a transition runs, such
//     as a user hook that panicked.
//   - config: invalid configuration or transition definitions.
//   - scenario: malformed scenario files.
//   - protocol: mutation frames that cannot be decoded.
//
// # Usage
//
//	err := errors.New("E300").
//	    WithLocation("fade.yaml", 12, 5).
//	    WithSuggestion("Steps need exactly one of render, frame, advance or snapshot")
//
//	fmt.Println(err.Format())
package errors
