package xstr

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurahaupo/libxstr/errors"
	"github.com/kurahaupo/libxstr/heap"
)

func TestFromLiteral(t *testing.T) {
	raw := []byte("Hello world, and more")
	v := FromLiteral(raw, 11)

	assert.Equal(t, Live, v.State())
	assert.Equal(t, Static, v.Ownership())
	assert.False(t, v.OwnsAllocation())
	assert.False(t, v.IsWritable())
	assert.False(t, v.IsBuffer())
	assert.False(t, v.IsLoan())
	assert.Equal(t, "Hello world", string(v.Bytes()))
	assert.Equal(t, 11, v.Size())
	assert.Equal(t, 11, v.Len())
	assert.Equal(t, 11, v.LenZ())
	assert.Equal(t, base(raw), base(v.Bytes()), "literal must not be copied")

	Finish(&v)
	assert.Equal(t, Empty, v.State())
}

func TestLiteral(t *testing.T) {
	v := Literal("Hello world")
	assert.Equal(t, "Hello world", string(v.Bytes()))
	assert.False(t, v.IsWritable())
	Finish(&v)

	e := Literal("")
	assert.Equal(t, Live, e.State())
	assert.Equal(t, 0, e.Len())
	Finish(&e)
}

func TestFromArray(t *testing.T) {
	arr := []byte("abc")
	v := FromArray(arr, len(arr))
	assert.True(t, v.IsWritable())
	assert.False(t, v.OwnsAllocation())

	v.Writable()[0] = 'X'
	assert.Equal(t, "Xbc", string(arr), "array is wrapped, not copied")
	Finish(&v)
}

func TestConstruct_InvalidLength(t *testing.T) {
	for _, n := range []int{-1, 4} {
		err := expectFatal(t, errors.KindInvalidInput, func() {
			FromLiteral([]byte("abc"), n)
		})
		assert.Equal(t, errors.PhaseConstruct, err.Phase)
	}
	expectFatal(t, errors.KindInvalidInput, func() { NewBuffer(-1) })
}

func TestNewBuffer(t *testing.T) {
	h := useHeap(t)

	b := NewBuffer(16)
	v := b.Value()
	assert.Equal(t, Live, v.State())
	assert.True(t, v.OwnsAllocation())
	assert.True(t, v.IsWritable())
	assert.True(t, v.IsBuffer())
	assert.Equal(t, 16, b.Cap())
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 16, v.Size())
	assert.Equal(t, 0, v.Len())
	assert.Equal(t, 1, v.LenZ())
	assert.Equal(t, 16, h.Stats().LiveBytes)

	n := copy(b.Writable(), "hello")
	b.SetLen(n)
	assert.Equal(t, "hello", string(b.Bytes()))
	assert.Equal(t, "hello", string(v.Bytes()))

	Finish(v)
	assert.Equal(t, Empty, v.State())
	assert.True(t, v.IsBuffer(), "a finished buffer is still a buffer")
	requireNoLeaks(t, h)
}

func TestNewBuffer_ZeroCapacity(t *testing.T) {
	h := useHeap(t)

	b := NewBuffer(0)
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 0, b.Cap())
	assert.Nil(t, b.Bytes())
	assert.Equal(t, 0, h.Stats().Allocs, "zero capacity must not allocate")

	Finish(b.Value())
	requireNoLeaks(t, h)
}

func TestNewBuffer_AllocationFailure(t *testing.T) {
	h := heap.NewGoHeap(heap.WithLimit(8))

	err := expectFatal(t, errors.KindAllocation, func() {
		NewBufferFrom(h, 9)
	})
	assert.Equal(t, errors.PhaseAlloc, err.Phase)
	assert.Contains(t, err.Site, "value_test.go:")
	requireNoLeaks(t, h)
}

func TestNewBuffer_ClosedAllocator(t *testing.T) {
	h := heap.NewGoHeap()
	require.NoError(t, h.Close())

	err := expectFatal(t, errors.KindAllocation, func() { NewBufferFrom(h, 4) })
	assert.ErrorIs(t, err, errors.ErrClosed)
}

func TestBuffer_SetLenOutOfBounds(t *testing.T) {
	useHeap(t)
	b := NewBuffer(4)
	defer Finish(b.Value())

	expectFatal(t, errors.KindOutOfBounds, func() { b.SetLen(5) })
	expectFatal(t, errors.KindOutOfBounds, func() { b.SetLen(-1) })
	b.SetLen(4)
	assert.Equal(t, 4, b.Len())
}

func TestAsBuffer(t *testing.T) {
	useHeap(t)
	b := NewBuffer(8)
	v := b.Value()
	assert.Same(t, &b, (*Buffer)(v))
	assert.Same(t, &b, v.AsBuffer())
	Finish(v)

	lit := Literal("x")
	err := expectFatal(t, errors.KindNotABuffer, func() { lit.AsBuffer() })
	assert.Equal(t, errors.PhaseAccess, err.Phase)
}

func TestWritable_ReadOnly(t *testing.T) {
	lit := Literal("read only")
	err := expectFatal(t, errors.KindWritability, func() { lit.Writable() })
	assert.Contains(t, err.Detail, "unwritable")

	o := Loan(&lit)
	view := Borrow(&o)
	expectFatal(t, errors.KindWritability, func() { view.Writable() })
}

func TestAccessors_OnEmpty(t *testing.T) {
	var v Value
	assert.Equal(t, Empty, v.State())

	for name, fn := range map[string]func(){
		"Bytes":    func() { v.Bytes() },
		"Writable": func() { v.Writable() },
		"Size":     func() { v.Size() },
		"Len":      func() { v.Len() },
		"LenZ":     func() { v.LenZ() },
		"View":     func() { ViewOf(&v) },
	} {
		t.Run(name, func(t *testing.T) {
			err := expectFatal(t, errors.KindInvalidState, fn)
			assert.Equal(t, "null", err.Value)
		})
	}
}

func TestStateNames(t *testing.T) {
	assert.Equal(t, "null", Empty.String())
	assert.Equal(t, "valid", Live.String())
	assert.Equal(t, "stale", Stale.String())
	assert.Equal(t, "invalid", State(9).String())

	assert.Equal(t, "owned", Owned.String())
	assert.Equal(t, "loan", Loaned.String())
	assert.Equal(t, "static", Static.String())
}

func TestString_Describes(t *testing.T) {
	v := Literal("Hello world")
	s := v.String()
	assert.Contains(t, s, `["Hello world"]`)
	assert.Contains(t, s, "size=11")
	assert.Contains(t, s, "state=valid")
	assert.Contains(t, s, "readonly")
	Finish(&v)
	assert.Contains(t, v.String(), "state=null")
}

func TestString_FormatsThroughPointer(t *testing.T) {
	v := Literal("Hi")
	assert.Equal(t, v.String(), fmt.Sprint(&v))
	assert.True(t, strings.HasPrefix(fmt.Sprintf("%v", &v), "xstr(s="))

	o := Loan(&v)
	assert.Contains(t, fmt.Sprint(&o), "+loan")
	Ignore(&o)
	Finish(&v)
}

func TestViewOf(t *testing.T) {
	useHeap(t)
	b := NewBuffer(8)
	n := copy(b.Writable(), "key")
	b.SetLen(n)

	w := ViewOf(b.Value())
	assert.Equal(t, 3, w.Len())
	assert.Equal(t, "key", string(w.Bytes()))
	assert.True(t, b.Value().OwnsAllocation(), "viewing does not take ownership")
	Finish(b.Value())
}
