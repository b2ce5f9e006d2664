package catalog

import "sync/atomic"

// Holder publishes the active catalog. Readers take a snapshot once per
// request so a concurrent Store never mixes rates from two versions.
type Holder struct {
	current atomic.Pointer[Catalog]
}

// NewHolder returns a holder publishing c, which may be nil.
func NewHolder(c *Catalog) *Holder {
	h := &Holder{}
	if c != nil {
		h.current.Store(c)
	}
	return h
}

// Store replaces the active catalog.
func (h *Holder) Store(c *Catalog) {
	h.current.Store(c)
}

// Snapshot returns the active catalog or ErrCatalogUnavailable.
func (h *Holder) Snapshot() (*Catalog, error) {
	c := h.current.Load()
	if c == nil {
		return nil, ErrCatalogUnavailable
	}
	return c, nil
}
