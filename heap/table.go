package heap

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kurahaupo/libxstr/diag"
	"github.com/kurahaupo/libxstr/errors"
)

// callerPackages are skipped when recording allocation sites.
var callerPackages = []string{
	"github.com/kurahaupo/libxstr",
	"github.com/kurahaupo/libxstr/heap",
}

var tableIDs atomic.Uint32

// Table tracks the live blocks of one allocator with generation-checked
// handles. Backends embed it; it does not own any memory itself.
type Table struct {
	name      string
	entries   []entry
	freeList  []Handle
	observers []Observer
	stats     Stats
	mu        sync.Mutex
	obsMu     sync.RWMutex
	limit     int
	id        uint32
	sites     bool
	closed    bool
}

type entry struct {
	site   string
	offset uint32
	size   int
	gen    uint32
	valid  bool
}

func newTable(name string, c config) *Table {
	return &Table{
		name:      name,
		id:        tableIDs.Add(1),
		limit:     c.limit,
		sites:     c.sites,
		entries:   make([]entry, 0, 64),
		freeList:  make([]Handle, 0, 16),
		observers: append([]Observer(nil), c.observers...),
	}
}

// Name identifies the allocator in diagnostics.
func (t *Table) Name() string {
	return t.name
}

// insert records a new block over data. offset is backend specific.
// A block that would take the live bytes past the limit is refused and
// counted as a failure.
func (t *Table) insert(data []byte, offset uint32) (Block, error) {
	var site string
	if t.sites {
		site = diag.CallSite(callerPackages...)
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return Block{}, errors.Closed(errors.PhaseAlloc, t.name)
	}
	if t.limit > 0 && t.stats.LiveBytes+len(data) > t.limit {
		t.stats.Failures++
		t.mu.Unlock()
		t.notify(Event{Type: EventFailed, Size: len(data), Site: site})
		return Block{}, errors.AllocationFailed(errors.PhaseAlloc, len(data),
			fmt.Errorf("limit of %d bytes reached", t.limit))
	}

	var handle Handle
	if len(t.freeList) > 0 {
		handle = t.freeList[len(t.freeList)-1]
		t.freeList = t.freeList[:len(t.freeList)-1]
	} else {
		t.entries = append(t.entries, entry{})
		handle = Handle(len(t.entries))
	}

	e := &t.entries[handle-1]
	e.gen++
	e.site = site
	e.offset = offset
	e.size = len(data)
	e.valid = true

	t.stats.Allocs++
	t.stats.LiveBlocks++
	t.stats.LiveBytes += len(data)
	t.stats.TotalBytes += len(data)
	if t.stats.LiveBytes > t.stats.PeakBytes {
		t.stats.PeakBytes = t.stats.LiveBytes
	}
	blk := Block{Data: data[:len(data):len(data)], Handle: handle, gen: e.gen, table: t.id}
	t.mu.Unlock()

	t.notify(Event{Type: EventAllocated, Handle: handle, Size: len(data), Site: site})
	return blk, nil
}

// remove retires b and returns its entry.
func (t *Table) remove(b Block) (entry, error) {
	if b.table != t.id {
		return entry{}, errors.ForeignBlock(uint32(b.Handle), t.name)
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return entry{}, errors.Closed(errors.PhaseFree, t.name)
	}

	idx := int(b.Handle) - 1
	if idx < 0 || idx >= len(t.entries) {
		t.mu.Unlock()
		return entry{}, errors.ForeignBlock(uint32(b.Handle), t.name)
	}

	e := &t.entries[idx]
	if !e.valid || e.gen != b.gen {
		t.mu.Unlock()
		return entry{}, errors.DoubleFree(uint32(b.Handle), len(b.Data))
	}

	removed := *e
	e.valid = false
	e.site = ""
	t.freeList = append(t.freeList, b.Handle)

	t.stats.Frees++
	t.stats.LiveBlocks--
	t.stats.LiveBytes -= removed.size
	t.mu.Unlock()

	t.notify(Event{Type: EventFreed, Handle: b.Handle, Size: removed.size, Site: removed.site})
	return removed, nil
}

// fail records an allocation that could not be satisfied.
func (t *Table) fail(size int) {
	t.mu.Lock()
	t.stats.Failures++
	t.mu.Unlock()

	t.notify(Event{Type: EventFailed, Size: size})
}

// Stats reports allocation counters.
func (t *Table) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Len returns the number of live blocks.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats.LiveBlocks
}

// Each iterates over live blocks in handle order.
func (t *Table) Each(fn func(h Handle, size int, site string) bool) {
	t.mu.Lock()
	live := make([]entry, len(t.entries))
	copy(live, t.entries)
	t.mu.Unlock()

	for i, e := range live {
		if e.valid {
			if !fn(Handle(i+1), e.size, e.site) {
				break
			}
		}
	}
}

// Subscribe adds an observer for allocation events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// close stops accepting operations and reports blocks never freed.
func (t *Table) close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	var leaked []errors.Outstanding
	for i, e := range t.entries {
		if e.valid {
			leaked = append(leaked, errors.Outstanding{Handle: uint32(i + 1), Size: e.size, Site: e.site})
		}
	}
	t.entries = nil
	t.freeList = nil

	if len(leaked) > 0 {
		return errors.NewLeakError(t.name, leaked)
	}
	return nil
}

func (t *Table) notify(e Event) {
	e.Allocator = t.name
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnHeapEvent(e)
	}
}
