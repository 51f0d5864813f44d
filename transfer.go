package xstr

import (
	"github.com/kurahaupo/libxstr/errors"
	"github.com/kurahaupo/libxstr/heap"
)

// Loan offers a read-only, non-owning alias of v's logical payload. A
// buffer is lent as a plain value of its used length. v is unchanged and
// must be kept alive while the loan is in use; a loan used after its lender
// is finished is Stale.
func Loan(v *Value) Offered {
	v.mustBeLive(errors.PhaseLoan)
	tr := begin("Loan", v)

	o := Offered{offer: Value{
		data:  v.logical(),
		life:  v.life,
		state: Live,
		own:   Loaned,
	}}

	tr.end(&o.offer, "")
	return o
}

// Borrow returns a read-only view of the offered value without accepting
// it. The offer keeps its ownership and must still be taken or ignored.
func Borrow(o *Offered) Value {
	o.offer.mustBeLive(errors.PhaseBorrow)
	tr := begin("Borrow", &o.offer)

	v := Value{
		data:   o.offer.data,
		life:   o.offer.life,
		used:   o.offer.used,
		state:  Live,
		own:    Loaned,
		buffer: o.offer.buffer,
	}

	tr.end(&v, "no change to offer")
	return v
}

// Give moves v into an offer. v is left Empty, so a later Finish of v is a
// no-op.
func Give(v *Value) Offered {
	return move("Give", v)
}

// Return is Give at a return statement:
//
//	return xstr.Return(&s)
func Return(v *Value) Offered {
	return move("Return", v)
}

func move(op string, v *Value) Offered {
	v.mustBeLive(errors.PhaseGive)
	tr := begin(op, v)

	o := Offered{offer: *v}
	v.reset()

	tr.end(&o.offer, "source emptied")
	return o
}

// Take accepts an offer. An owning or static offer is moved into the result
// and the offer is left Empty. A loan is cloned into a new writable
// allocation from the default allocator, with one spare zero byte after the
// payload; the lender is not touched.
func Take(o *Offered) Value {
	return TakeInto(o, heap.Default())
}

// TakeInto is Take with the allocator used when cloning a loan.
func TakeInto(o *Offered, alloc heap.Allocator) Value {
	o.offer.mustBeLive(errors.PhaseTake)
	tr := begin("Take", &o.offer)

	if o.offer.own != Loaned {
		v := o.offer
		o.offer.reset()
		tr.end(&v, "moved")
		return v
	}

	src := o.offer.logical()
	n := len(src)
	blk := allocate(alloc, errors.PhaseTake, n+1)
	copy(blk.Data, src)
	blk.Data[n] = 0

	v := Value{
		data:     blk.Data[:n:n],
		block:    blk,
		alloc:    alloc,
		life:     &lifetime{},
		state:    Live,
		own:      Owned,
		writable: true,
	}
	o.offer.reset()

	tr.end(&v, "cloned from loan")
	return v
}
