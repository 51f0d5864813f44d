package scenario

import (
	"fmt"
	"sort"

	"github.com/kurahaupo/libxstr"
	"github.com/kurahaupo/libxstr/diag"
	"github.com/kurahaupo/libxstr/errors"
	"github.com/kurahaupo/libxstr/heap"
)

// Scenario is one walkthrough.
type Scenario struct {
	Name    string
	Summary string
	// Fails is true when the walkthrough is expected to end in a fatal error.
	Fails bool
	run   func(*session)
}

// Result is the outcome of running a Scenario.
type Result struct {
	Fatal   *errors.Error
	Name    string
	Records []diag.Record
	Stats   heap.Stats
}

// Checkpoint is the Op of a record marking a named point in a walkthrough
// rather than a transition.
const Checkpoint = "checkpoint"

var registry = map[string]Scenario{
	"handoff": {
		Name:    "handoff",
		Summary: "a literal is lent to a peeker, then given to one",
		run:     func(s *session) { s.lender(xstr.Offered{}) },
	},
	"relay": {
		Name:    "relay",
		Summary: "a literal is lent through every consumer shape, then given to a retaker",
		run:     (*session).relayAll,
	},
	"buffer": {
		Name:    "buffer",
		Summary: "a 16-byte buffer is filled, given, taken and finished twice",
		run:     (*session).bufferRoundTrip,
	},
	"give-then-loan": {
		Name:    "give-then-loan",
		Summary: "a literal is given away and then lent: use after give",
		Fails:   true,
		run:     (*session).giveThenLoan,
	},
	"stale-loan": {
		Name:    "stale-loan",
		Summary: "a lender finishes while its loan is outstanding, then the loan is taken",
		Fails:   true,
		run:     (*session).staleLoan,
	},
}

// All returns every scenario ordered by name.
func All() []Scenario {
	out := make([]Scenario, 0, len(registry))
	for _, sc := range registry {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the named scenario.
func Lookup(name string) (Scenario, bool) {
	sc, ok := registry[name]
	return sc, ok
}

// Run executes the named scenario with alloc as the default allocator.
// Contract violations end the walkthrough and are returned in Result.Fatal
// instead of terminating the process.
func Run(name string, alloc heap.Allocator) (*Result, error) {
	sc, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q", name)
	}

	s := &session{}
	defer diag.SetTracer(diag.TracerFunc(s.record))()
	defer heap.SetDefault(alloc)()
	defer diag.SetFatalHandler(diag.PanicHandler)()

	res := &Result{Name: sc.Name}
	res.Fatal = s.guard(sc.run)
	res.Records = s.records
	res.Stats = alloc.Stats()
	return res, nil
}

type session struct {
	records []diag.Record
}

func (s *session) record(r diag.Record) {
	s.records = append(s.records, r)
}

func (s *session) guard(run func(*session)) (fatal *errors.Error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*errors.Error)
			if !ok {
				panic(r)
			}
			fatal = e
		}
	}()
	run(s)
	return nil
}

func (s *session) mark(label string, v *xstr.Value) {
	snap := v.Snapshot()
	s.record(diag.Record{Op: Checkpoint, Note: label, Before: snap, After: snap})
}

func (s *session) markOffer(label string, o *xstr.Offered) {
	snap := o.Snapshot()
	s.record(diag.Record{Op: Checkpoint, Note: label, Before: snap, After: snap})
}

func (s *session) relayAll() {
	v := xstr.Literal("Hello world")
	s.mark("main(literal)", &v)
	s.taker(xstr.Loan(&v))
	s.mark("main(loaned)", &v)
	s.relay(xstr.Loan(&v))
	s.mark("main(loaned)", &v)
	s.peeker(xstr.Loan(&v))
	s.mark("main(loaned)", &v)
	s.lender(xstr.Loan(&v))
	s.mark("main(loaned)", &v)
	s.retaker(xstr.Loan(&v))
	s.mark("main(loaned)", &v)
	s.retaker(xstr.Give(&v))
	s.mark("main(given)", &v)
	xstr.Finish(&v)
	s.mark("main(finished)", &v)
}

func (s *session) bufferRoundTrip() {
	b := xstr.NewBuffer(16)
	b.SetLen(copy(b.Writable(), "sixteen byte buf"))
	v := b.Value()
	s.mark("main(filled)", v)

	o := xstr.Give(v)
	s.mark("main(given)", v)
	r := xstr.Take(&o)
	s.mark("main(taken)", &r)

	xstr.Finish(v)
	s.mark("main(finished source)", v)
	xstr.Finish(&r)
	s.mark("main(finished)", &r)
	xstr.Finish(&r)
	s.mark("main(finished again)", &r)
}

func (s *session) giveThenLoan() {
	v := xstr.Literal("Hello world")
	s.mark("main(literal)", &v)
	s.taker(xstr.Loan(&v))
	s.mark("main(loaned)", &v)
	s.taker(xstr.Give(&v))
	s.mark("main(given)", &v)
	s.taker(xstr.Loan(&v))
	s.mark("main(re-loaned)", &v)
	xstr.Finish(&v)
}

func (s *session) staleLoan() {
	v := xstr.Literal("x")
	o := xstr.Loan(&v)
	s.markOffer("main(loaned)", &o)
	xstr.Finish(&v)
	s.markOffer("main(lender finished)", &o)
	c := xstr.Take(&o)
	xstr.Finish(&c)
}

// Describe renders a record as one trace line.
func Describe(r diag.Record) string {
	if r.Op == Checkpoint {
		return diag.Describe(r.Note, r.After)
	}
	line := diag.Describe(r.Op, r.Before) + " -> " + diag.Describe("", r.After)
	if r.Note != "" {
		line += fmt.Sprintf(" [%s]", r.Note)
	}
	return line
}
