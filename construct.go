package xstr

import (
	"fmt"
	"unsafe"

	"github.com/kurahaupo/libxstr/errors"
	"github.com/kurahaupo/libxstr/heap"
)

// FromLiteral wraps the first n bytes of b as a read-only value. The caller
// keeps b alive and unchanged for as long as the value or any loan of it
// is in use.
func FromLiteral(b []byte, n int) Value {
	return wrap("Literal", b, n, false)
}

// Literal wraps s without copying it.
func Literal(s string) Value {
	return wrap("Literal", unsafe.Slice(unsafe.StringData(s), len(s)), len(s), false)
}

// FromArray wraps the first n bytes of b as a writable value. The caller
// asserts b is mutable and outlives the value.
func FromArray(b []byte, n int) Value {
	return wrap("Array", b, n, true)
}

func wrap(op string, b []byte, n int, writable bool) Value {
	if n < 0 || n > len(b) {
		fail(errors.InvalidInput(errors.PhaseConstruct, fmt.Sprintf("length %d outside [0, %d]", n, len(b))))
	}
	v := Value{
		data:     b[:n:n],
		life:     &lifetime{},
		state:    Live,
		own:      Static,
		writable: writable,
	}
	begin(op, &Value{}).end(&v, "")
	return v
}

// NewBuffer allocates an empty buffer of the given capacity from the
// default allocator. A zero capacity allocates nothing.
func NewBuffer(capacity int) Buffer {
	return NewBufferFrom(heap.Default(), capacity)
}

// NewBufferFrom allocates an empty buffer from alloc.
func NewBufferFrom(alloc heap.Allocator, capacity int) Buffer {
	if capacity < 0 {
		fail(errors.InvalidInput(errors.PhaseConstruct, fmt.Sprintf("capacity %d is negative", capacity)))
	}
	v := Value{
		alloc:    alloc,
		life:     &lifetime{},
		state:    Live,
		own:      Owned,
		writable: true,
		buffer:   true,
	}
	if capacity > 0 {
		v.block = allocate(alloc, errors.PhaseConstruct, capacity)
		v.data = v.block.Data
	}
	begin("NewBuffer", &Value{}).end(&v, "")
	return Buffer(v)
}

func allocate(alloc heap.Allocator, phase errors.Phase, size int) heap.Block {
	blk, err := alloc.Alloc(size)
	if err != nil {
		e := errors.From(phase, errors.KindAllocation, err)
		if e.Kind != errors.KindAllocation {
			e = errors.AllocationFailed(phase, size, err)
		}
		fail(e)
	}
	return blk
}
