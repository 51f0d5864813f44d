package xstr

import "github.com/kurahaupo/libxstr/errors"

// Finish releases v. An owned payload is freed; a static or loaned one is
// only dropped. Lending ends, so loans of v become Stale. Finish of an Empty
// value is a no-op, so it is safe to defer.
func Finish(v *Value) {
	release("Finish", v)
}

// Ignore releases an offer the receiver does not want to inspect.
func Ignore(o *Offered) {
	release("Ignore", &o.offer)
}

func release(op string, v *Value) {
	tr := begin(op, v)
	if v.state == Empty {
		tr.end(v, "already null")
		return
	}

	note := "dropped"
	if v.own == Owned && !v.block.IsZero() {
		if err := v.alloc.Free(v.block); err != nil {
			e := errors.From(errors.PhaseFinish, errors.KindDoubleFree, err)
			e.Value = v.block.Handle
			fail(e)
		}
		note = "freed"
	}
	if v.own != Loaned && v.life != nil {
		v.life.ended = true
	}
	v.reset()

	tr.end(v, note)
}

// reset empties v without freeing. A buffer stays a buffer.
func (v *Value) reset() {
	*v = Value{buffer: v.buffer}
}
