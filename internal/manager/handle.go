package manager

import (
	"context"
	"sync"

	"modelhostd/pkg/types"
)

// placeholderHandle stands in for a deferred-load modality: it reports loaded
// so the active registry invariant holds, but owns no resources until the
// real backend replaces it on first use.
type placeholderHandle struct {
	mu  sync.Mutex
	raw any
}

func newPlaceholderHandle() *placeholderHandle { return &placeholderHandle{} }

func (h *placeholderHandle) Load(ctx context.Context, onProgress types.ProgressFunc) error {
	if onProgress != nil {
		onProgress(types.Progress{Status: types.ProgressReady})
	}
	return nil
}

func (h *placeholderHandle) Unload(ctx context.Context) error { return nil }

func (h *placeholderHandle) IsLoaded() bool  { return true }
func (h *placeholderHandle) IsLoading() bool { return false }

func (h *placeholderHandle) RawHandle() any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.raw
}

func (h *placeholderHandle) SetRawHandle(raw any) {
	h.mu.Lock()
	h.raw = raw
	h.mu.Unlock()
}
