package xstr

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurahaupo/libxstr/diag"
	"github.com/kurahaupo/libxstr/errors"
	"github.com/kurahaupo/libxstr/heap"
)

// useHeap installs a fresh Go heap as the default allocator for one test.
func useHeap(t *testing.T, opts ...heap.Option) *heap.GoHeap {
	t.Helper()
	h := heap.NewGoHeap(append([]heap.Option{heap.WithSites()}, opts...)...)
	t.Cleanup(heap.SetDefault(h))
	return h
}

// requireNoLeaks closes h and fails if any block is still live.
func requireNoLeaks(t *testing.T, h heap.Allocator) {
	t.Helper()
	require.NoError(t, h.Close())
}

// expectFatal runs fn, which must hit a contract violation of the given kind.
func expectFatal(t *testing.T, kind errors.Kind, fn func()) *errors.Error {
	t.Helper()
	restore := diag.SetFatalHandler(diag.PanicHandler)
	defer restore()

	var got *errors.Error
	func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			e, ok := r.(*errors.Error)
			if !ok {
				panic(r)
			}
			got = e
		}()
		fn()
	}()

	require.NotNil(t, got, "expected a fatal %s", kind)
	assert.Equal(t, kind, got.Kind, "got %v", got)
	return got
}

func base(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}
