package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// Phase indicates which operation was running when the error occurred
type Phase string

const (
	PhaseConstruct Phase = "construct" // FromLiteral, FromArray, NewBuffer
	PhaseLoan      Phase = "loan"      // read-only alias
	PhaseBorrow    Phase = "borrow"    // peek at an offer
	PhaseGive      Phase = "give"      // ownership leaves a value
	PhaseTake      Phase = "take"      // ownership (or a clone) arrives
	PhaseFinish    Phase = "finish"    // Finish / Ignore
	PhaseAccess    Phase = "access"    // accessors on a live value
	PhaseAlloc     Phase = "alloc"     // allocator obtaining memory
	PhaseFree      Phase = "free"      // allocator releasing memory
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidState Kind = "invalid_state"
	KindAllocation   Kind = "allocation"
	KindNotABuffer   Kind = "not_a_buffer"
	KindWritability  Kind = "writability"
	KindDoubleFree   Kind = "double_free"
	KindForeignBlock Kind = "foreign_block"
	KindOutOfBounds  Kind = "out_of_bounds"
	KindInvalidInput Kind = "invalid_input"
	KindLeak         Kind = "leak"
	KindClosed       Kind = "closed"
)

// Error is the structured error type used throughout libxstr
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Site   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Site != "" {
		b.WriteString(" (")
		b.WriteString(e.Site)
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target with an empty Phase matches any phase of the same Kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if t.Phase == "" {
			return e.Kind == t.Kind
		}
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the operation path, outermost first
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Site sets the file:line of the offending call
func (b *Builder) Site(site string) *Builder {
	b.err.Site = site
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Kind-only sentinels for errors.Is checks that do not care about the phase.
var (
	ErrInvalidState = &Error{Kind: KindInvalidState}
	ErrAllocation   = &Error{Kind: KindAllocation}
	ErrNotABuffer   = &Error{Kind: KindNotABuffer}
	ErrWritability  = &Error{Kind: KindWritability}
	ErrDoubleFree   = &Error{Kind: KindDoubleFree}
	ErrForeignBlock = &Error{Kind: KindForeignBlock}
	ErrOutOfBounds  = &Error{Kind: KindOutOfBounds}
	ErrInvalidInput = &Error{Kind: KindInvalidInput}
	ErrLeak         = &Error{Kind: KindLeak}
	ErrClosed       = &Error{Kind: KindClosed}
)

// Convenience constructors for common error patterns

// InvalidState creates an error for an operation on a value that is not live
func InvalidState(phase Phase, state string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidState,
		Detail: fmt.Sprintf("value is %s, want valid", state),
		Value:  state,
	}
}

// StaleLoan creates an error for a loan whose lender has been finished or given away
func StaleLoan(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidState,
		Detail: "loan outlived its lender",
		Value:  "stale",
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size int, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
		Value:  size,
		Cause:  cause,
	}
}

// NotABuffer creates an error for a buffer operation on a plain value
func NotABuffer(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotABuffer,
		Detail: "not a buffer",
	}
}

// Writability creates an error for a mutable access to read-only data
func Writability(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindWritability,
		Detail: "must not convert unwritable to writable",
	}
}

// DoubleFree creates an error for releasing a block that was already released
func DoubleFree(handle uint32, size int) *Error {
	return &Error{
		Phase:  PhaseFree,
		Kind:   KindDoubleFree,
		Detail: fmt.Sprintf("block %d (%d bytes) already freed", handle, size),
		Value:  handle,
	}
}

// ForeignBlock creates an error for releasing a block through the wrong allocator
func ForeignBlock(handle uint32, owner string) *Error {
	return &Error{
		Phase:  PhaseFree,
		Kind:   KindForeignBlock,
		Detail: fmt.Sprintf("block %d does not belong to %s", handle, owner),
		Value:  handle,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Closed creates an error for use of an allocator after Close
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s closed", what),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// From returns err as an *Error, wrapping it with phase and kind when it is
// not one already. A nil err yields nil.
func From(phase Phase, kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return Wrap(phase, kind, err, "")
}

// Outstanding describes one allocation still live when its allocator closed
type Outstanding struct {
	Site   string // where the block was allocated, "" if unknown
	Handle uint32
	Size   int
}

// LeakError is returned by an allocator's Close when owned values were never finished
type LeakError struct {
	Allocator string
	Blocks    []Outstanding
}

// NewLeakError creates a leak error, ordering blocks by handle
func NewLeakError(allocator string, blocks []Outstanding) *LeakError {
	sorted := make([]Outstanding, len(blocks))
	copy(sorted, blocks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Handle < sorted[j].Handle })
	return &LeakError{Allocator: allocator, Blocks: sorted}
}

// Bytes returns the total size of the leaked blocks
func (e *LeakError) Bytes() int {
	n := 0
	for _, b := range e.Blocks {
		n += b.Size
	}
	return n
}

func (e *LeakError) Error() string {
	if len(e.Blocks) == 0 {
		return "[free] leak: no blocks specified"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d block(s) never freed, %d bytes:\n", e.Allocator, len(e.Blocks), e.Bytes())

	// Group by allocation site for cleaner output
	bySite := make(map[string][]Outstanding)
	var siteOrder []string
	for _, blk := range e.Blocks {
		site := blk.Site
		if site == "" {
			site = "unknown site"
		}
		if _, exists := bySite[site]; !exists {
			siteOrder = append(siteOrder, site)
		}
		bySite[site] = append(bySite[site], blk)
	}

	for _, site := range siteOrder {
		b.WriteString("\n  ")
		b.WriteString(site)
		b.WriteString(":\n")
		for _, blk := range bySite[site] {
			fmt.Fprintf(&b, "    - block %d (%d bytes)\n", blk.Handle, blk.Size)
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type
func (e *LeakError) Is(target error) bool {
	switch t := target.(type) {
	case *LeakError:
		return true
	case *Error:
		return t.Kind == KindLeak
	}
	return false
}
