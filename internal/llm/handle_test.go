//go:build !llama

package llm

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"modelhostd/internal/capability"
	"modelhostd/internal/device"
	"modelhostd/pkg/types"
)

type fakeProber struct {
	platform types.Platform
	mem      uint64
	cores    int
	accel    bool
}

func (p fakeProber) Platform() types.Platform          { return p.platform }
func (p fakeProber) TotalMemoryBytes() (uint64, error) { return p.mem, nil }
func (p fakeProber) Accelerated() bool                 { return p.accel }

func newSelector(accel bool) *device.Selector {
	det := capability.NewDetector(fakeProber{
		platform: types.PlatformClient, mem: 8 << 30, accel: accel,
	})
	return device.NewSelector(det)
}

func TestModelFileMapping(t *testing.T) {
	cases := []struct {
		id   string
		want string
	}{
		{"chat-small", "chat-small.gguf"},
		{"chat-large.gguf", "chat-large.gguf"},
		{"Chat-Large.GGUF", "Chat-Large.GGUF"},
	}
	for _, c := range cases {
		got := modelFile("/models", c.id)
		if got != filepath.Join("/models", c.want) {
			t.Fatalf("modelFile(%q) = %q", c.id, got)
		}
	}
}

func TestRuntimeForExplicitThreadsWin(t *testing.T) {
	rt := runtimeFor(newSelector(false), types.ModelConfig{
		Model: "chat-small", Device: types.DevicePortable, Threads: 2,
	})
	if rt.Threads != 2 {
		t.Fatalf("explicit threads overridden: %d", rt.Threads)
	}
	if rt.Device != "cpu" {
		t.Fatalf("portable token not normalized for the backend: %q", rt.Device)
	}
}

func TestRuntimeForPortableThreadPool(t *testing.T) {
	// No explicit thread count: the selector's portable-pool sizing applies.
	rt := runtimeFor(newSelector(false), types.ModelConfig{
		Model: "chat-small", Device: types.DevicePortable,
	})
	if rt.Threads < 1 || rt.Threads > 4 {
		t.Fatalf("portable pool out of bounds: %d", rt.Threads)
	}
}

func TestRuntimeForAcceleratedDevice(t *testing.T) {
	rt := runtimeFor(newSelector(true), types.ModelConfig{
		Model: "chat-small", Device: types.DeviceGPU,
	})
	if !rt.PreferAccelerated {
		t.Fatalf("gpu request did not set the accelerated hint")
	}
	if rt.Device != "gpu" {
		t.Fatalf("unexpected device token: %q", rt.Device)
	}
	if rt.Threads < 1 {
		t.Fatalf("threads must settle to at least 1, got %d", rt.Threads)
	}
}

func TestStubLoadFailsWithHint(t *testing.T) {
	if Built {
		t.Skip("real backend compiled in")
	}
	ctor := NewConstructor(t.TempDir(), newSelector(false))
	h, err := ctor(types.ModalityLLM, types.ModelConfig{Model: "chat-small"})
	if err != nil {
		t.Fatalf("constructor: %v", err)
	}
	err = h.Load(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "-tags=llama") {
		t.Fatalf("expected build-tag hint, got %v", err)
	}
	if h.IsLoaded() {
		t.Fatalf("stub reports loaded after failed load")
	}
}

func TestStubRawHandleRoundTrip(t *testing.T) {
	h := newHandle(t.TempDir(), types.ModelConfig{Model: "chat-small"}, Runtime{Threads: 1})
	h.SetRawHandle("payload")
	if !h.IsLoaded() || h.RawHandle() != "payload" {
		t.Fatalf("raw handle round-trip failed")
	}
	if err := h.Unload(context.Background()); err != nil {
		t.Fatalf("unload: %v", err)
	}
	if h.IsLoaded() || h.RawHandle() != nil {
		t.Fatalf("unload did not clear state")
	}
}
