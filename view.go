package xstr

import "github.com/kurahaupo/libxstr/errors"

// View is a read-only (bytes, length) window onto a live value, enough to
// hash or compare it without taking ownership. It is valid only while the
// value it came from is live.
type View struct {
	data []byte
}

// ViewOf returns a view of v's logical payload.
func ViewOf(v *Value) View {
	v.mustBeLive(errors.PhaseLoan)
	return View{data: v.logical()}
}

// Len returns the number of bytes in the view.
func (w View) Len() int { return len(w.data) }

// Bytes returns the viewed bytes. They must not be modified.
func (w View) Bytes() []byte { return w.data }
