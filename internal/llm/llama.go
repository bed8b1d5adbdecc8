//go:build llama

package llm

import (
	"context"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"

	"modelhostd/pkg/types"
)

// Built indicates this binary carries real llama.cpp support.
const Built = true

// llamaHandle owns one loaded llama.cpp model.
type llamaHandle struct {
	path string
	cfg  types.ModelConfig
	rt   Runtime

	mu      sync.Mutex
	model   *llama.LLama
	loading bool
}

func newHandle(modelsDir string, cfg types.ModelConfig, rt Runtime) types.ModelHandle {
	return &llamaHandle{path: modelFile(modelsDir, cfg.Model), cfg: cfg, rt: rt}
}

func (h *llamaHandle) Load(ctx context.Context, onProgress types.ProgressFunc) error {
	h.mu.Lock()
	if h.model != nil {
		h.mu.Unlock()
		return nil
	}
	h.loading = true
	h.mu.Unlock()

	report := func(p types.Progress) {
		if onProgress != nil {
			onProgress(p)
		}
	}
	report(types.Progress{Status: types.ProgressLoading, File: h.path})

	ctxTokens := h.cfg.TokenBudget
	if ctxTokens <= 0 {
		ctxTokens = defaultContextTokens
	}
	opts := []llama.ModelOption{llama.SetContext(ctxTokens)}
	if h.rt.PreferAccelerated {
		opts = append(opts, llama.SetGPULayers(-1))
	}
	if h.cfg.Precision == types.PrecisionFP16 {
		opts = append(opts, llama.EnableF16Memory)
	}
	m, err := llama.New(h.path, opts...)

	h.mu.Lock()
	defer h.mu.Unlock()
	h.loading = false
	if err != nil {
		report(types.Progress{Status: types.ProgressError, File: h.path})
		return err
	}
	if ctx.Err() != nil {
		m.Free()
		return ctx.Err()
	}
	h.model = m
	report(types.Progress{Status: types.ProgressReady, File: h.path, Percent: 100})
	return nil
}

func (h *llamaHandle) Unload(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.model == nil {
		return nil
	}
	h.model.Free()
	h.model = nil
	return nil
}

func (h *llamaHandle) IsLoaded() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.model != nil
}

func (h *llamaHandle) IsLoading() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loading
}

func (h *llamaHandle) RawHandle() any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.model
}

func (h *llamaHandle) SetRawHandle(raw any) {
	m, ok := raw.(*llama.LLama)
	if !ok {
		return
	}
	h.mu.Lock()
	h.model = m
	h.mu.Unlock()
}

// Runtime exposes the backend hints the handle was constructed with.
func (h *llamaHandle) Runtime() Runtime { return h.rt }

// PredictOptions assembles the per-request options inference callers pair
// with the raw handle: the settled thread count plus the token budget when
// the config carries one. Threads are a per-predict knob in the binding, not
// a model option, so they ride here instead of in Load.
func (h *llamaHandle) PredictOptions() []llama.PredictOption {
	po := []llama.PredictOption{llama.SetThreads(h.rt.Threads)}
	if h.cfg.TokenBudget > 0 {
		po = append(po, llama.SetTokens(h.cfg.TokenBudget))
	}
	return po
}
