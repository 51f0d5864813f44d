// Package diag is the diagnostic channel shared by every libxstr package.
//
// It owns three things:
//
//	Logger()      - the zap logger, a no-op until SetLogger is called
//	Fatal(err)    - contract violations: report to stderr, exit with ExitStatus
//	Trace(rec)    - observational records of lifecycle transitions
//
// # Fatal conditions
//
// Ownership and state violations are programmer errors. The default handler
// writes
//
//	PANIC <file>:<line> XSTR: <detail>
//
// to standard error and terminates the process with status 88. Tests replace
// the handler to turn the exit into a recoverable panic:
//
//	restore := diag.SetFatalHandler(diag.PanicHandler)
//	defer restore()
//
// A handler must not return. If it does, Fatal panics with the error.
//
// # Tracing
//
// Lifecycle operations describe the value before and after the transition
// with a Snapshot. Records go to the logger at debug level and to the
// installed Tracer, if any. Describe renders a Snapshot on one line.
package diag
