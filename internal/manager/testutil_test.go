package manager

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"modelhostd/internal/cache"
	"modelhostd/internal/capability"
	"modelhostd/pkg/types"
)

type fakeProber struct {
	platform types.Platform
	mem      uint64
	accel    bool
}

func (p fakeProber) Platform() types.Platform          { return p.platform }
func (p fakeProber) TotalMemoryBytes() (uint64, error) { return p.mem, nil }
func (p fakeProber) Accelerated() bool                 { return p.accel }

// fakeBackend counts physical loads across every handle it constructs.
type fakeBackend struct {
	loads    int32
	unloads  int32
	delay    time.Duration
	failWith error
}

func (b *fakeBackend) constructor() types.Constructor {
	return func(mod types.Modality, cfg types.ModelConfig) (types.ModelHandle, error) {
		return &fakeHandle{backend: b, payload: "payload:" + cfg.Model}, nil
	}
}

func (b *fakeBackend) loadCount() int32   { return atomic.LoadInt32(&b.loads) }
func (b *fakeBackend) unloadCount() int32 { return atomic.LoadInt32(&b.unloads) }

type fakeHandle struct {
	backend *fakeBackend
	payload string

	mu      sync.Mutex
	raw     any
	loaded  bool
	loading bool
}

func (h *fakeHandle) Load(ctx context.Context, onProgress types.ProgressFunc) error {
	h.mu.Lock()
	h.loading = true
	h.mu.Unlock()
	atomic.AddInt32(&h.backend.loads, 1)
	if onProgress != nil {
		onProgress(types.Progress{Status: types.ProgressDownloading, File: h.payload, Percent: 50})
	}
	if h.backend.delay > 0 {
		select {
		case <-time.After(h.backend.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loading = false
	if h.backend.failWith != nil {
		return h.backend.failWith
	}
	h.loaded = true
	h.raw = h.payload
	if onProgress != nil {
		onProgress(types.Progress{Status: types.ProgressReady, Percent: 100})
	}
	return nil
}

func (h *fakeHandle) Unload(ctx context.Context) error {
	atomic.AddInt32(&h.backend.unloads, 1)
	h.mu.Lock()
	h.loaded = false
	h.raw = nil
	h.mu.Unlock()
	return nil
}

func (h *fakeHandle) IsLoaded() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loaded
}

func (h *fakeHandle) IsLoading() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loading
}

func (h *fakeHandle) RawHandle() any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.raw
}

// SetRawHandle restores a cached payload; the handle counts as loaded without
// another physical load.
func (h *fakeHandle) SetRawHandle(raw any) {
	h.mu.Lock()
	h.raw = raw
	h.loaded = true
	h.mu.Unlock()
}

func newTestManager(b *fakeBackend) *Manager {
	det := capability.NewDetector(fakeProber{platform: types.PlatformServer, mem: 16 << 30})
	m := New(Config{
		Capabilities: det,
		Cache:        cache.New(cache.Config{MaxModels: 8, SweepInterval: time.Hour, Logger: zerolog.Nop()}),
		Constructors: map[types.Modality]types.Constructor{
			types.ModalityLLM:       b.constructor(),
			types.ModalityEmbedding: b.constructor(),
			types.ModalitySTT:       b.constructor(),
			types.ModalityTTS:       b.constructor(),
		},
		Logger: zerolog.Nop(),
	})
	return m
}
