package diag

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap/zapcore"
)

// SnapLen bounds the payload preview in Describe.
const SnapLen = 128

// Snapshot is an observational copy of a value's representation.
type Snapshot struct {
	Preview  []byte // at most SnapLen bytes of the logical payload
	State    string
	Addr     uintptr // the value holder
	Base     uintptr // first payload byte, 0 if none
	Size     int
	Len      int // logical length; equals Size unless Buffer
	Writable bool
	Loan     bool
	Owned    bool
	Buffer   bool
}

// Describe renders s the way lifecycle traces print a value:
//
//	Loan(s=0xc000010000, base=0x4d2f10["Hello world"], size=11, state=valid, readonly, +loan)
func Describe(op string, s Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s(s=%#x, base=%#x", op, s.Addr, s.Base)
	if s.Base != 0 {
		q := strconv.Quote(string(s.Preview))
		if s.Len > SnapLen {
			q = q[:len(q)-1] + "…\""
		}
		b.WriteByte('[')
		b.WriteString(q)
		b.WriteByte(']')
	}
	fmt.Fprintf(&b, ", size=%d", s.Size)
	if s.Buffer {
		fmt.Fprintf(&b, ", len=%d", s.Len)
	}
	fmt.Fprintf(&b, ", state=%s", s.State)
	if s.Writable {
		b.WriteString(", writable")
	} else {
		b.WriteString(", readonly")
	}
	if s.Loan {
		b.WriteString(", +loan")
	}
	if s.Owned {
		b.WriteString(", data=alloc")
	}
	b.WriteByte(')')
	return b.String()
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (s Snapshot) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("state", s.State)
	enc.AddUintptr("addr", s.Addr)
	enc.AddUintptr("base", s.Base)
	enc.AddInt("size", s.Size)
	if s.Buffer {
		enc.AddInt("len", s.Len)
	}
	enc.AddBool("writable", s.Writable)
	if s.Loan {
		enc.AddBool("loan", true)
	}
	if s.Owned {
		enc.AddBool("owned", true)
	}
	return nil
}
