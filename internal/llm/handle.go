// Package llm provides the chat/completion backend adapter. The real
// llama.cpp binding is compiled in with `-tags=llama`; the default build uses
// a stub so the lifecycle core stays buildable without CGO.
package llm

import (
	"path/filepath"
	"strings"

	"modelhostd/internal/device"
	"modelhostd/pkg/types"
)

const defaultContextTokens = 4096

// Runtime is the backend-facing projection of a resolved config: the device
// token in the binding's vocabulary and the settled thread count.
type Runtime struct {
	// Device is the normalized token the binding understands (the portable
	// backend goes by its CPU name there).
	Device string
	// Threads is the worker count the backend runs with; never zero.
	Threads int
	// PreferAccelerated asks the binding to place weights on the accelerated
	// device when both paths are compiled in.
	PreferAccelerated bool
}

// runtimeFor applies the device selector's backend hints to a resolved config.
// An explicit thread count wins over the selector's portable-pool sizing.
func runtimeFor(devices *device.Selector, cfg types.ModelConfig) Runtime {
	var env device.RuntimeEnv
	if devices != nil {
		devices.ConfigureRuntime(cfg.Device, &env)
	}
	threads := cfg.Threads
	if threads <= 0 {
		threads = env.PortableThreads
	}
	if threads <= 0 {
		threads = 1
	}
	return Runtime{
		Device:            device.NormalizeToken(cfg.Device),
		Threads:           threads,
		PreferAccelerated: env.PreferAccelerated,
	}
}

// modelFile maps a resolved model id to its on-disk artifact.
func modelFile(modelsDir, id string) string {
	name := id
	if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
		name += ".gguf"
	}
	return filepath.Join(modelsDir, name)
}

// NewConstructor returns the chat-model handle constructor for the manager.
// modelsDir is where resolved model ids are looked up as *.gguf artifacts;
// devices supplies the backend hints for the resolved device token.
func NewConstructor(modelsDir string, devices *device.Selector) types.Constructor {
	return func(mod types.Modality, cfg types.ModelConfig) (types.ModelHandle, error) {
		return newHandle(modelsDir, cfg, runtimeFor(devices, cfg)), nil
	}
}
