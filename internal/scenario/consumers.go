package scenario

import (
	"github.com/kurahaupo/libxstr"
)

// taker accepts whatever it is offered and finishes it.
func (s *session) taker(o xstr.Offered) {
	s.markOffer("taker(param)", &o)
	v := xstr.Take(&o)
	s.mark("taker(taken)", &v)
	xstr.Finish(&v)
	s.mark("taker(finished)", &v)
}

// peeker borrows its offer, then lets it go unaccepted.
func (s *session) peeker(o xstr.Offered) {
	s.markOffer("peeker(param)", &o)
	v := xstr.Borrow(&o)
	s.mark("peeker(borrowed)", &v)
	xstr.Finish(&v)
	s.mark("peeker(finished)", &v)
	xstr.Ignore(&o)
}

// relay borrows its offer and passes it on twice: lent, then given.
func (s *session) relay(o xstr.Offered) {
	s.markOffer("relay(param)", &o)
	v := xstr.Borrow(&o)
	s.mark("relay(borrowed)", &v)
	s.taker(xstr.Loan(&v))
	s.mark("relay(loaned)", &v)
	s.taker(xstr.Give(&v))
	s.mark("relay(given)", &v)
	xstr.Finish(&v)
	s.mark("relay(finished)", &v)
	xstr.Ignore(&o)
}

// retaker takes its offer and gives it on to a peeker.
func (s *session) retaker(o xstr.Offered) {
	s.markOffer("retaker(param)", &o)
	v := xstr.Take(&o)
	s.mark("retaker(taken)", &v)
	s.peeker(xstr.Give(&v))
	s.mark("retaker(given)", &v)
	xstr.Finish(&v)
	s.mark("retaker(finished)", &v)
}

// lender owns a literal and hands it to peekers, first lent then given.
// Its own offer is ignored.
func (s *session) lender(o xstr.Offered) {
	xstr.Ignore(&o)
	v := xstr.Literal("Hello world")
	s.mark("lender(literal)", &v)
	s.peeker(xstr.Loan(&v))
	s.mark("lender(loaned)", &v)
	s.peeker(xstr.Give(&v))
	s.mark("lender(given)", &v)
	xstr.Finish(&v)
	s.mark("lender(finished)", &v)
}
