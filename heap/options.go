package heap

type config struct {
	observers []Observer
	limit     int
	pages     uint32
	sites     bool
	poison    bool
}

// Option configures an allocator.
type Option func(*config)

// WithLimit caps the number of live bytes. Zero means no limit.
func WithLimit(bytes int) Option {
	return func(c *config) { c.limit = bytes }
}

// WithPages sets the size of a Linear allocator's memory in 64 KiB pages.
func WithPages(pages uint32) Option {
	return func(c *config) { c.pages = pages }
}

// WithSites records the allocating call site of every block for leak reports.
func WithSites() Option {
	return func(c *config) { c.sites = true }
}

// WithPoison overwrites freed blocks with PoisonByte so stale aliases read
// obvious garbage.
func WithPoison() Option {
	return func(c *config) { c.poison = true }
}

// WithObserver subscribes o from the start.
func WithObserver(o Observer) Option {
	return func(c *config) { c.observers = append(c.observers, o) }
}

func newConfig(opts []Option) config {
	c := config{pages: 1}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
