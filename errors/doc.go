// Package errors provides structured error types for libxstr.
//
// Errors are categorized by Phase (which lifecycle operation was running) and
// Kind (what went wrong). The Error type carries the call site, the offending
// value and an optional cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseTake, errors.KindInvalidState).
//		Site("main.go:42").
//		Value(state).
//		Detail("offer is %s", state).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidState(errors.PhaseGive, "empty")
//	err := errors.AllocationFailed(errors.PhaseAlloc, 4096, cause)
//
// All errors implement the standard error interface and support errors.Is/As.
// Most of them are reported through diag.Fatal and never returned to a caller.
package errors
