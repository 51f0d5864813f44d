// Package heap provides the allocation backends behind owned xstr values.
//
// Every backend hands out Blocks and records them in a handle table, so a
// block can be released exactly once, and only through the allocator that
// produced it:
//
//	h := heap.NewGoHeap()
//	blk, err := h.Alloc(16)
//	...
//	err = h.Free(blk)  // ok
//	err = h.Free(blk)  // double_free
//
// # Backends
//
//	GoHeap  - blocks are Go byte slices; optional byte limit and poisoning
//	Linear  - blocks live in a fixed-size wazero linear memory, first fit
//
// # Observers
//
// Register observers to track allocation events:
//
//	h.Subscribe(heap.ObserverFunc(func(e heap.Event) {
//	    if e.Type == heap.EventFreed {
//	        log.Printf("block %d freed", e.Handle)
//	    }
//	}))
//
// # Leaks
//
// Close reports every block that was never freed as an *errors.LeakError.
// With WithSites, each block remembers where it was allocated.
package heap
