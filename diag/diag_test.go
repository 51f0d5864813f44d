package diag

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kurahaupo/libxstr/errors"
)

func TestFatal_PanicHandler(t *testing.T) {
	restore := SetFatalHandler(PanicHandler)
	defer restore()

	want := errors.InvalidState(errors.PhaseTake, "empty")
	defer func() {
		r := recover()
		require.NotNil(t, r)
		assert.Same(t, want, r)
	}()
	Fatal(want)
	t.Fatal("Fatal returned")
}

func TestFatal_ReturningHandlerStillPanics(t *testing.T) {
	var seen *errors.Error
	restore := SetFatalHandler(func(err *errors.Error) { seen = err })
	defer restore()

	want := errors.NotABuffer(errors.PhaseAccess)
	assert.PanicsWithValue(t, want, func() { Fatal(want) })
	assert.Same(t, want, seen)
}

func TestFatal_DefaultHandler(t *testing.T) {
	var out bytes.Buffer
	var code int
	prevStderr, prevExit := stderr, exit
	stderr = &out
	exit = func(c int) { code = c }
	defer func() { stderr, exit = prevStderr, prevExit }()

	err := errors.New(errors.PhaseGive, errors.KindInvalidState).
		Site("relay.go:12").
		Detail("value is empty, want valid").
		Build()

	assert.Panics(t, func() { Fatal(err) })
	assert.Equal(t, ExitStatus, code)
	assert.Equal(t, "PANIC relay.go:12 XSTR: give: value is empty, want valid\n", out.String())
}

func TestFatalLine(t *testing.T) {
	err := errors.AllocationFailed(errors.PhaseTake, 12, stderrors.New("out of memory"))
	assert.Equal(t, "PANIC ? XSTR: take: failed to allocate 12 bytes; out of memory", FatalLine(err))

	err.Site = "peek.go:3"
	assert.True(t, strings.HasPrefix(FatalLine(err), "PANIC peek.go:3 XSTR: take: "))
}

func TestFatal_LogsViolation(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	defer SetLogger(zap.New(core))()
	defer SetFatalHandler(PanicHandler)()

	assert.Panics(t, func() { Fatal(errors.Writability(errors.PhaseAccess)) })

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "writability", entries[0].ContextMap()["kind"])
	assert.Equal(t, "access", entries[0].ContextMap()["phase"])
}

func TestCallSite(t *testing.T) {
	site := CallSite()
	assert.True(t, strings.HasPrefix(site, "diag_test.go:"), "got %q", site)

	nested := func() string { return CallSite("github.com/kurahaupo/libxstr/diag") }
	assert.True(t, strings.HasPrefix(nested(), "diag_test.go:"), "test files always count as callers")
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		want string
	}{
		{
			name: "empty",
			snap: Snapshot{State: "null", Addr: 0x10},
			want: "Finish(s=0x10, base=0x0, size=0, state=null, readonly)",
		},
		{
			name: "literal loan",
			snap: Snapshot{
				State: "valid", Addr: 0x10, Base: 0x20,
				Preview: []byte("Hello world"), Size: 11, Len: 11, Loan: true,
			},
			want: `Finish(s=0x10, base=0x20["Hello world"], size=11, state=valid, readonly, +loan)`,
		},
		{
			name: "owned buffer",
			snap: Snapshot{
				State: "valid", Addr: 0x10, Base: 0x20,
				Preview: []byte("ab"), Size: 16, Len: 2, Writable: true, Owned: true, Buffer: true,
			},
			want: `Finish(s=0x10, base=0x20["ab"], size=16, len=2, state=valid, writable, data=alloc)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe("Finish", tt.snap))
		})
	}
}

func TestDescribe_TruncatesPreview(t *testing.T) {
	long := bytes.Repeat([]byte{'x'}, SnapLen)
	got := Describe("Loan", Snapshot{State: "valid", Base: 1, Preview: long, Size: 300, Len: 300})
	assert.Contains(t, got, "…\"]")
	assert.NotContains(t, Describe("Loan", Snapshot{State: "valid", Base: 1, Preview: long, Size: SnapLen, Len: SnapLen}), "…")
}

func TestTrace(t *testing.T) {
	var got []Record
	defer SetTracer(TracerFunc(func(r Record) { got = append(got, r) }))()

	core, logs := observer.New(zap.DebugLevel)
	defer SetLogger(zap.New(core))()

	require.True(t, Tracing())
	Trace(Record{Op: "Give", Site: "x.go:1", Before: Snapshot{State: "valid"}, After: Snapshot{State: "null"}})

	require.Len(t, got, 1)
	assert.Equal(t, "Give", got[0].Op)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Give", entries[0].Message)
	assert.Equal(t, "x.go:1", entries[0].ContextMap()["site"])
}

func TestTracing_DisabledByDefault(t *testing.T) {
	defer SetLogger(nil)()
	defer SetTracer(nil)()
	assert.False(t, Tracing())
}
