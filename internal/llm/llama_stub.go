//go:build !llama

package llm

import (
	"context"
	"fmt"
	"sync"

	"modelhostd/pkg/types"
)

// Built indicates this binary carries real llama.cpp support.
const Built = false

// stubHandle stands in when the binary is built without the llama tag. Load
// fails so callers get a clear error instead of a silent no-op, but cache
// restoration via SetRawHandle still works for tests and dry runs.
type stubHandle struct {
	path string
	rt   Runtime

	mu     sync.Mutex
	loaded bool
	raw    any
}

func newHandle(modelsDir string, cfg types.ModelConfig, rt Runtime) types.ModelHandle {
	return &stubHandle{path: modelFile(modelsDir, cfg.Model), rt: rt}
}

// Runtime exposes the backend hints the handle was constructed with.
func (h *stubHandle) Runtime() Runtime { return h.rt }

func (h *stubHandle) Load(ctx context.Context, onProgress types.ProgressFunc) error {
	if onProgress != nil {
		onProgress(types.Progress{Status: types.ProgressError, File: h.path})
	}
	return fmt.Errorf("llama backend not built (rebuild with -tags=llama): %s", h.path)
}

func (h *stubHandle) Unload(ctx context.Context) error {
	h.mu.Lock()
	h.loaded = false
	h.raw = nil
	h.mu.Unlock()
	return nil
}

func (h *stubHandle) IsLoaded() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loaded
}

func (h *stubHandle) IsLoading() bool { return false }

func (h *stubHandle) RawHandle() any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.raw
}

func (h *stubHandle) SetRawHandle(raw any) {
	h.mu.Lock()
	h.loaded = raw != nil
	h.raw = raw
	h.mu.Unlock()
}
