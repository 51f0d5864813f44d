package diag

import (
	"sync"

	"go.uber.org/zap"
)

// Record is one traced lifecycle transition.
type Record struct {
	Op     string
	Site   string
	Note   string
	Before Snapshot
	After  Snapshot
}

// Tracer observes lifecycle transitions.
type Tracer interface {
	Trace(Record)
}

// TracerFunc adapts a function to the Tracer interface.
type TracerFunc func(Record)

// Trace calls f(r).
func (f TracerFunc) Trace(r Record) { f(r) }

var (
	tracer   Tracer
	tracerMu sync.RWMutex
)

// SetTracer installs t and returns a function restoring the previous tracer.
func SetTracer(t Tracer) (restore func()) {
	tracerMu.Lock()
	prev := tracer
	tracer = t
	tracerMu.Unlock()

	return func() {
		tracerMu.Lock()
		tracer = prev
		tracerMu.Unlock()
	}
}

// Tracing reports whether a transition would be observed by anyone, so
// callers can skip building snapshots.
func Tracing() bool {
	tracerMu.RLock()
	t := tracer
	tracerMu.RUnlock()
	return t != nil || Logger().Core().Enabled(zap.DebugLevel)
}

// Trace emits r to the logger at debug level and to the installed tracer.
func Trace(r Record) {
	if ce := Logger().Check(zap.DebugLevel, r.Op); ce != nil {
		fields := []zap.Field{
			zap.String("site", r.Site),
			zap.Object("before", r.Before),
			zap.Object("after", r.After),
		}
		if r.Note != "" {
			fields = append(fields, zap.String("note", r.Note))
		}
		ce.Write(fields...)
	}

	tracerMu.RLock()
	t := tracer
	tracerMu.RUnlock()
	if t != nil {
		t.Trace(r)
	}
}
