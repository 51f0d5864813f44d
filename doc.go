// Package xstr implements explicit ownership transfer for byte strings and
// buffers.
//
// A Value either owns its payload, aliases static caller memory, or is a
// read-only loan of someone else's payload. Every call boundary says which
// of those is happening:
//
//	Loan(&v)      - hand out a read-only alias; v keeps ownership
//	Borrow(&o)    - peek at an offer without accepting it
//	Give(&v)      - move ownership into an offer; v becomes empty
//	Return(&v)    - same as Give, at a return statement
//	Take(&o)      - accept an offer; a loan is cloned into a new allocation
//	Finish(&v)    - release v; a no-op on an empty value
//	Ignore(&o)    - release an offer without looking at it
//
// # Architecture Overview
//
//	xstr/          Value, Offered, Buffer and the transfer protocol
//	├── heap/      Allocators: Go heap and wazero linear memory
//	├── diag/      zap logger, fatal handler, tracing, Describe
//	├── errors/    Structured error types
//	├── internal/
//	│   └── scenario/  Scripted producer/consumer walkthroughs
//	└── cmd/       xstr-trace walkthrough runner
//
// # Quick Start
//
//	func consume(o xstr.Offered) {
//	    s := xstr.Take(&o)
//	    defer xstr.Finish(&s)
//	    use(s.Bytes())
//	}
//
//	buf := xstr.NewBuffer(16)
//	n := copy(buf.Writable(), "hello")
//	buf.SetLen(n)
//	consume(xstr.Give(buf.Value()))  // buf is now empty
//
//	lit := xstr.Literal("Hello world")
//	consume(xstr.Loan(&lit))         // consume receives a private clone
//	xstr.Finish(&lit)
//
// # Contract Violations
//
// Using a value that is empty, or a loan whose lender has been finished,
// is a programmer error. It is reported through diag.Fatal, which by default
// prints the call site to stderr and exits with status 88. There is no
// recoverable error path.
//
// # Copying
//
// Values and offers must move through Give, Return and Take, never by Go
// assignment of an owning value. Two owning copies of one allocation are
// caught by the allocator as a double free when the second is finished.
//
// Values are not safe for concurrent use.
package xstr
