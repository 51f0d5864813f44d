package xstr

import (
	"unsafe"

	"github.com/kurahaupo/libxstr/diag"
	"github.com/kurahaupo/libxstr/errors"
	"github.com/kurahaupo/libxstr/heap"
)

// State is the validity signature of a value.
type State uint8

const (
	// Empty values were never initialised, or were finished or given away.
	Empty State = iota
	// Live values hold a usable payload.
	Live
	// Stale loans outlived the value they were lent from.
	Stale
)

func (s State) String() string {
	switch s {
	case Empty:
		return "null"
	case Live:
		return "valid"
	case Stale:
		return "stale"
	default:
		return "invalid"
	}
}

// Ownership says who is responsible for a value's payload.
type Ownership uint8

const (
	// Static payloads belong to the caller (literals, wrapped arrays).
	Static Ownership = iota
	// Owned payloads were allocated for this value and are freed by Finish.
	Owned
	// Loaned payloads belong to another value; they are read-only.
	Loaned
)

func (o Ownership) String() string {
	switch o {
	case Static:
		return "static"
	case Owned:
		return "owned"
	case Loaned:
		return "loan"
	default:
		return "?"
	}
}

// lifetime is shared by a payload's owner and every loan taken from it.
type lifetime struct {
	ended bool
}

// Value is a byte string or buffer with tagged ownership.
// The zero Value is Empty.
type Value struct {
	data     []byte // whole payload; capacity for buffers
	block    heap.Block
	alloc    heap.Allocator
	life     *lifetime
	used     int // logical length of a buffer
	state    State
	own      Ownership
	writable bool
	buffer   bool
}

// State reports Empty, Live, or Stale for a loan whose lender is gone.
func (v *Value) State() State {
	if v.state == Live && v.own == Loaned && v.life != nil && v.life.ended {
		return Stale
	}
	return v.state
}

// Ownership reports who is responsible for the payload.
func (v *Value) Ownership() Ownership { return v.own }

// OwnsAllocation reports whether Finish will free the payload.
func (v *Value) OwnsAllocation() bool { return v.own == Owned }

// IsLoan reports whether v is a read-only alias of another value's payload.
func (v *Value) IsLoan() bool { return v.own == Loaned }

// IsBuffer reports whether v carries a separate logical length.
func (v *Value) IsBuffer() bool { return v.buffer }

// IsWritable reports whether Writable may be called.
func (v *Value) IsWritable() bool { return v.writable }

// Bytes returns the logical payload. It must not be modified.
func (v *Value) Bytes() []byte {
	v.mustBeLive(errors.PhaseAccess)
	return v.logical()
}

// Writable returns the logical payload for modification.
// It is fatal on a read-only value.
func (v *Value) Writable() []byte {
	v.mustBeLive(errors.PhaseAccess)
	if !v.writable {
		fail(errors.Writability(errors.PhaseAccess))
	}
	return v.logical()
}

// Size returns the payload size; for a buffer, its capacity.
func (v *Value) Size() int {
	v.mustBeLive(errors.PhaseAccess)
	return len(v.data)
}

// Len returns the logical length; for a buffer, the used length.
func (v *Value) Len() int {
	v.mustBeLive(errors.PhaseAccess)
	return v.logicalLen()
}

// LenZ returns the length including room for a terminator. For a plain
// value that is Size, for a buffer the used length plus one.
func (v *Value) LenZ() int {
	v.mustBeLive(errors.PhaseAccess)
	if v.buffer {
		return v.used + 1
	}
	return len(v.data)
}

// AsBuffer returns v as a Buffer. It is fatal if v is not a buffer.
func (v *Value) AsBuffer() *Buffer {
	if !v.buffer {
		fail(errors.NotABuffer(errors.PhaseAccess))
	}
	return (*Buffer)(v)
}

// String describes v for debugging; it does not return the payload.
// It is defined on *Value, so format &v rather than v:
//
//	fmt.Println(&v)  // xstr(s=0x..., base=0x...["Hello"], size=5, ...)
func (v *Value) String() string {
	return diag.Describe("xstr", v.Snapshot())
}

func (v *Value) logicalLen() int {
	if v.buffer {
		return v.used
	}
	return len(v.data)
}

func (v *Value) logical() []byte {
	n := v.logicalLen()
	return v.data[:n:n]
}

func (v *Value) mustBeLive(phase errors.Phase) {
	switch st := v.State(); st {
	case Live:
	case Stale:
		fail(errors.StaleLoan(phase))
	default:
		fail(errors.InvalidState(phase, st.String()))
	}
}

// Snapshot captures v's representation for diagnostics.
func (v *Value) Snapshot() diag.Snapshot {
	s := diag.Snapshot{
		State:    v.State().String(),
		Addr:     uintptr(unsafe.Pointer(v)),
		Size:     len(v.data),
		Len:      v.logicalLen(),
		Writable: v.writable,
		Loan:     v.own == Loaned,
		Owned:    v.own == Owned,
		Buffer:   v.buffer,
	}
	if v.data != nil {
		s.Base = uintptr(unsafe.Pointer(unsafe.SliceData(v.data)))
		s.Preview = append([]byte(nil), v.data[:min(s.Len, diag.SnapLen)]...)
	}
	return s
}

// Offered is a value in transit between a producer and a consumer. The
// consumer must Borrow, Take or Ignore it.
type Offered struct {
	offer Value
}

// State reports the state of the value being offered.
func (o *Offered) State() State { return o.offer.State() }

// IsLoan reports whether the offer is a loan, so Take will clone it.
func (o *Offered) IsLoan() bool { return o.offer.own == Loaned }

// Snapshot captures the offered value's representation for diagnostics.
func (o *Offered) Snapshot() diag.Snapshot { return o.offer.Snapshot() }

// String describes the offer for debugging.
func (o *Offered) String() string {
	return diag.Describe("offer", o.offer.Snapshot())
}
