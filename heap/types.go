package heap

// Handle identifies a block in its allocator's table.
// Handle 0 is reserved and always invalid.
type Handle uint32

// Block is one allocation. Data has exactly the requested length.
// The zero Block holds no memory and is never freed.
type Block struct {
	Data   []byte
	Handle Handle
	gen    uint32
	table  uint32
}

// IsZero reports whether b refers to no allocation.
func (b Block) IsZero() bool {
	return b.Handle == 0
}

// Size returns the number of bytes in the block.
func (b Block) Size() int {
	return len(b.Data)
}

// Allocator obtains and releases blocks.
type Allocator interface {
	// Name identifies the backend in diagnostics.
	Name() string

	// Alloc returns a block of exactly size bytes. size must be positive.
	Alloc(size int) (Block, error)

	// Free releases a block obtained from this allocator.
	// Releasing it twice, or through another allocator, is an error.
	Free(Block) error

	// Stats reports allocation counters.
	Stats() Stats

	// Close releases the backend. It reports unreleased blocks as a leak.
	Close() error
}

// Stats holds allocation counters for one allocator.
type Stats struct {
	Allocs     int
	Frees      int
	Failures   int
	LiveBlocks int
	LiveBytes  int
	PeakBytes  int
	TotalBytes int
}

// EventType identifies an allocation lifecycle event.
type EventType uint8

const (
	EventAllocated EventType = iota
	EventFreed
	EventFailed
)

func (t EventType) String() string {
	switch t {
	case EventAllocated:
		return "allocated"
	case EventFreed:
		return "freed"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event represents an allocation lifecycle event.
type Event struct {
	Allocator string
	Site      string
	Size      int
	Handle    Handle
	Type      EventType
}

// Observer receives notifications about allocation events.
type Observer interface {
	OnHeapEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// OnHeapEvent calls f(e).
func (f ObserverFunc) OnHeapEvent(e Event) { f(e) }
