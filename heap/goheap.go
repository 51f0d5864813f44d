package heap

import (
	"fmt"

	"github.com/kurahaupo/libxstr/errors"
)

// PoisonByte fills freed blocks when poisoning is enabled.
const PoisonByte = 0xdd

// GoHeap allocates blocks as Go byte slices.
type GoHeap struct {
	*Table
	poison bool
}

// NewGoHeap creates a Go heap allocator.
func NewGoHeap(opts ...Option) *GoHeap {
	c := newConfig(opts)
	return &GoHeap{
		Table:  newTable("goheap", c),
		poison: c.poison,
	}
}

// Alloc returns a zeroed block of exactly size bytes.
func (h *GoHeap) Alloc(size int) (Block, error) {
	if size <= 0 {
		return Block{}, errors.InvalidInput(errors.PhaseAlloc, fmt.Sprintf("size %d must be positive", size))
	}
	return h.insert(make([]byte, size), 0)
}

// Free releases a block obtained from h.
func (h *GoHeap) Free(b Block) error {
	if _, err := h.remove(b); err != nil {
		return err
	}
	if h.poison {
		for i := range b.Data {
			b.Data[i] = PoisonByte
		}
	}
	return nil
}

// Close stops the allocator and reports blocks never freed.
func (h *GoHeap) Close() error {
	return h.close()
}
