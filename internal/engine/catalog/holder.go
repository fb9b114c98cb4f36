// Package catalog keeps the current catalog index and refreshes it from the remote source.
package catalog

import (
	"sync/atomic"

	"go.trai.ch/parcel/internal/core/domain"
)

// Holder publishes the current index. Readers never block; a refresh swaps
// the whole index at once.
type Holder struct {
	idx atomic.Pointer[domain.Index]
}

// NewHolder creates an empty holder.
func NewHolder() *Holder {
	return &Holder{}
}

// Current returns the current index, or ErrCatalogUnavailable before the first refresh.
func (h *Holder) Current() (*domain.Index, error) {
	idx := h.idx.Load()
	if idx == nil {
		return nil, domain.ErrCatalogUnavailable
	}
	return idx, nil
}

// Set replaces the current index.
func (h *Holder) Set(idx *domain.Index) {
	h.idx.Store(idx)
}

// Clear drops the current index.
func (h *Holder) Clear() {
	h.idx.Store(nil)
}
