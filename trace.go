package xstr

import "github.com/kurahaupo/libxstr/diag"

// transition records one traced operation. It costs nothing when nobody is
// listening.
type transition struct {
	op     string
	before diag.Snapshot
	on     bool
}

func begin(op string, v *Value) transition {
	t := transition{op: op, on: diag.Tracing()}
	if t.on {
		t.before = v.Snapshot()
	}
	return t
}

func (t transition) end(after *Value, note string) {
	if !t.on {
		return
	}
	diag.Trace(diag.Record{
		Op:     t.op,
		Site:   callSite(),
		Note:   note,
		Before: t.before,
		After:  after.Snapshot(),
	})
}
