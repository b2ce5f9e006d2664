// Package dedupe tracks Idempotency-Key values so a retried submission
// returns the quotation created by the first attempt.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Entry is the state recorded for an idempotency key.
type Entry struct {
	// Number is the quotation number once the submission completed.
	Number string
	// Done is false while the first submission is still in flight.
	Done bool
}

// Deduper records idempotency keys and the quotation each one produced.
type Deduper interface {
	// SeenAndRecord atomically checks whether key was seen and claims it if not.
	// It returns the recorded entry and true when key was already present.
	SeenAndRecord(ctx context.Context, key string) (Entry, bool)

	// Complete attaches the quotation number to a claimed key.
	Complete(ctx context.Context, key, number string)

	// Unrecord releases a claimed key after a failed submission so the
	// client can retry with the same key.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

type node struct {
	key        string
	entry      Entry
	prev, next *node
}

func (n *node) reset() {
	*n = node{}
}

// inMemoryDeduper keeps keys in a doubly linked list ordered by claim time.
// In bounded mode (maxSize > 0) the oldest key is evicted when full.
type inMemoryDeduper struct {
	mu       sync.Mutex
	seen     map[string]*node
	head     *node // newest
	tail     *node // oldest
	maxSize  int
	size     atomic.Int64
	nodePool sync.Pool
}

// NewInMemoryDeduper creates a new in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 10000,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]*node)
	d.nodePool = sync.Pool{
		New: func() interface{} {
			return &node{}
		},
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) (Entry, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n, ok := d.seen[key]; ok {
		return n.entry, true
	}

	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}

	n := d.nodePool.Get().(*node)
	n.key = key
	d.pushFront(n)
	d.seen[key] = n
	d.size.Add(1)
	return Entry{}, false
}

func (d *inMemoryDeduper) Complete(_ context.Context, key, number string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n, ok := d.seen[key]; ok {
		n.entry = Entry{Number: number, Done: true}
	}
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n, ok := d.seen[key]; ok {
		d.remove(n)
	}
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

// Must be called with d.mu held.
func (d *inMemoryDeduper) pushFront(n *node) {
	n.next = d.head
	if d.head != nil {
		d.head.prev = n
	}
	d.head = n
	if d.tail == nil {
		d.tail = n
	}
}

// Must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	if d.tail != nil {
		d.remove(d.tail)
	}
}

// Must be called with d.mu held.
func (d *inMemoryDeduper) remove(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		d.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		d.tail = n.prev
	}
	delete(d.seen, n.key)
	n.reset()
	d.nodePool.Put(n)
	d.size.Add(-1)
}
