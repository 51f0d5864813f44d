package xstr

import "github.com/kurahaupo/libxstr/errors"

// Buffer is a Value with a used length that may be shorter than its
// capacity. It has the same representation as Value, so
//
//	b.Value()      and      v.AsBuffer()
//
// convert between the two without copying.
type Buffer Value

// Value returns b as a plain *Value, for Loan, Give and Finish.
func (b *Buffer) Value() *Value {
	return (*Value)(b)
}

// Cap returns the allocated capacity.
func (b *Buffer) Cap() int {
	b.mustBeLive()
	return len(b.data)
}

// Len returns the used length.
func (b *Buffer) Len() int {
	b.mustBeLive()
	return b.used
}

// SetLen sets the used length. n must not exceed Cap.
func (b *Buffer) SetLen(n int) {
	b.mustBeLive()
	if !b.writable {
		fail(errors.Writability(errors.PhaseAccess))
	}
	if n < 0 || n > len(b.data) {
		fail(errors.OutOfBounds(errors.PhaseAccess, []string{"buffer", "len"}, n, len(b.data)))
	}
	b.used = n
}

// Bytes returns the used part of the buffer. It must not be modified.
func (b *Buffer) Bytes() []byte {
	b.mustBeLive()
	return b.Value().logical()
}

// Writable returns the whole capacity for filling; follow with SetLen.
func (b *Buffer) Writable() []byte {
	b.mustBeLive()
	if !b.writable {
		fail(errors.Writability(errors.PhaseAccess))
	}
	return b.data[:len(b.data):len(b.data)]
}

func (b *Buffer) mustBeLive() {
	v := b.Value()
	v.mustBeLive(errors.PhaseAccess)
	if !v.buffer {
		fail(errors.NotABuffer(errors.PhaseAccess))
	}
}
