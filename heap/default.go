package heap

import "sync"

var (
	defaultAlloc   Allocator
	defaultAllocMu sync.RWMutex
)

// Default returns the allocator used when none is named explicitly.
// It is a shared GoHeap unless SetDefault replaced it.
func Default() Allocator {
	defaultAllocMu.RLock()
	a := defaultAlloc
	defaultAllocMu.RUnlock()
	if a != nil {
		return a
	}

	defaultAllocMu.Lock()
	defer defaultAllocMu.Unlock()
	if defaultAlloc == nil {
		defaultAlloc = NewGoHeap()
	}
	return defaultAlloc
}

// SetDefault installs a as the default allocator and returns a function
// restoring the previous one. It does not close either allocator.
func SetDefault(a Allocator) (restore func()) {
	defaultAllocMu.Lock()
	prev := defaultAlloc
	defaultAlloc = a
	defaultAllocMu.Unlock()

	return func() {
		defaultAllocMu.Lock()
		defaultAlloc = prev
		defaultAllocMu.Unlock()
	}
}
