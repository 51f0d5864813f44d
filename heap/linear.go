package heap

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/kurahaupo/libxstr/errors"
)

const (
	pageSize = 65536
	maxPages = 65535 // 65536 pages would overflow a uint32 byte size

	// linearAlign is the granule of the Linear allocator. Offset 0 is never
	// handed out so that a zero offset can stand for "no block".
	linearAlign = 8
)

// Linear allocates blocks inside a fixed-size WebAssembly linear memory.
// The memory never grows, so block slices stay valid until Close.
type Linear struct {
	*Table
	ctx    context.Context
	rt     wazero.Runtime
	mod    api.Module
	mem    api.Memory
	spans  []span // free spans, sorted by offset, never adjacent
	spanMu sync.Mutex
	poison bool
}

type span struct {
	off  uint32
	size uint32
}

// NewLinear instantiates a memory of WithPages pages (default 1) and
// allocates from it first fit. WithLimit caps live bytes below the memory
// size.
func NewLinear(ctx context.Context, opts ...Option) (*Linear, error) {
	c := newConfig(opts)
	if c.pages == 0 || c.pages > maxPages {
		return nil, errors.InvalidInput(errors.PhaseAlloc, fmt.Sprintf("page count %d out of range", c.pages))
	}

	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithMemoryLimitPages(c.pages))
	mod, err := rt.Instantiate(ctx, memoryModule(c.pages))
	if err != nil {
		rt.Close(ctx)
		return nil, errors.Wrap(errors.PhaseAlloc, errors.KindAllocation, err, "instantiate linear memory")
	}

	mem := mod.ExportedMemory("memory")
	if mem == nil {
		rt.Close(ctx)
		return nil, errors.New(errors.PhaseAlloc, errors.KindAllocation).Detail("linear memory not exported").Build()
	}

	size := mem.Size()
	return &Linear{
		Table:  newTable("linear", c),
		ctx:    ctx,
		rt:     rt,
		mod:    mod,
		mem:    mem,
		spans:  []span{{off: linearAlign, size: size - linearAlign}},
		poison: c.poison,
	}, nil
}

// Alloc returns a zeroed block of exactly size bytes from linear memory.
func (l *Linear) Alloc(size int) (Block, error) {
	if size <= 0 {
		return Block{}, errors.InvalidInput(errors.PhaseAlloc, fmt.Sprintf("size %d must be positive", size))
	}
	if size > int(l.mem.Size()) {
		l.fail(size)
		return Block{}, errors.AllocationFailed(errors.PhaseAlloc, size, fmt.Errorf("larger than linear memory (%d bytes)", l.mem.Size()))
	}

	need := roundUp(uint32(size))
	off, ok := l.carve(need)
	if !ok {
		l.fail(size)
		return Block{}, errors.AllocationFailed(errors.PhaseAlloc, size,
			fmt.Errorf("no free span of %d bytes in %d pages", need, l.mem.Size()/pageSize))
	}

	data, ok := l.mem.Read(off, uint32(size))
	if !ok {
		l.release(off, need)
		return Block{}, errors.OutOfBounds(errors.PhaseAlloc, []string{l.Name()}, int(off), int(l.mem.Size()))
	}
	clear(data)

	blk, err := l.insert(data, off)
	if err != nil {
		l.release(off, need)
		return Block{}, err
	}
	return blk, nil
}

// Free releases a block obtained from l.
func (l *Linear) Free(b Block) error {
	e, err := l.remove(b)
	if err != nil {
		return err
	}
	if l.poison {
		for i := range b.Data {
			b.Data[i] = PoisonByte
		}
	}
	l.release(e.offset, roundUp(uint32(e.size)))
	return nil
}

// Offset returns the linear-memory address of a block allocated by l.
func (l *Linear) Offset(b Block) (uint32, bool) {
	if b.table != l.id {
		return 0, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := int(b.Handle) - 1
	if idx < 0 || idx >= len(l.entries) || !l.entries[idx].valid || l.entries[idx].gen != b.gen {
		return 0, false
	}
	return l.entries[idx].offset, true
}

// Memory exposes the underlying wazero memory.
func (l *Linear) Memory() api.Memory {
	return l.mem
}

// FreeBytes returns the number of unallocated bytes.
func (l *Linear) FreeBytes() int {
	l.spanMu.Lock()
	defer l.spanMu.Unlock()
	n := 0
	for _, s := range l.spans {
		n += int(s.size)
	}
	return n
}

// Close reports blocks never freed and tears down the wazero runtime.
// Block slices must not be used afterwards.
func (l *Linear) Close() error {
	leak := l.close()
	if err := l.rt.Close(l.ctx); err != nil && leak == nil {
		return errors.Wrap(errors.PhaseFree, errors.KindClosed, err, "close wazero runtime")
	}
	return leak
}

// carve removes need bytes from the first span large enough.
func (l *Linear) carve(need uint32) (uint32, bool) {
	l.spanMu.Lock()
	defer l.spanMu.Unlock()

	i := l.firstFit(need)
	if i < 0 {
		return 0, false
	}
	off := l.spans[i].off
	if l.spans[i].size == need {
		l.spans = append(l.spans[:i], l.spans[i+1:]...)
	} else {
		l.spans[i].off += need
		l.spans[i].size -= need
	}
	return off, true
}

// firstFit must be called with spanMu held.
func (l *Linear) firstFit(need uint32) int {
	for i, s := range l.spans {
		if s.size >= need {
			return i
		}
	}
	return -1
}

// release returns [off, off+size) to the free list, merging neighbours.
func (l *Linear) release(off, size uint32) {
	l.spanMu.Lock()
	defer l.spanMu.Unlock()

	i := sort.Search(len(l.spans), func(i int) bool { return l.spans[i].off > off })
	l.spans = append(l.spans, span{})
	copy(l.spans[i+1:], l.spans[i:])
	l.spans[i] = span{off: off, size: size}

	if i+1 < len(l.spans) && l.spans[i].off+l.spans[i].size == l.spans[i+1].off {
		l.spans[i].size += l.spans[i+1].size
		l.spans = append(l.spans[:i+1], l.spans[i+2:]...)
	}
	if i > 0 && l.spans[i-1].off+l.spans[i-1].size == l.spans[i].off {
		l.spans[i-1].size += l.spans[i].size
		l.spans = append(l.spans[:i], l.spans[i+1:]...)
	}
}

func roundUp(n uint32) uint32 {
	return (n + linearAlign - 1) &^ (linearAlign - 1)
}
