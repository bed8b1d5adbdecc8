// Package capability probes the host environment once per process and hands
// out an immutable snapshot: platform kind, CPU cores, total memory and
// whether an accelerated execution backend is present.
package capability

import (
	"runtime"
	"sync"

	"modelhostd/pkg/types"
)

// fallbackMemoryBytes is assumed when no reliable memory reading is available.
// Conservative on purpose: better to under-provision than to pick configs the
// host cannot hold.
const fallbackMemoryBytes = 4 << 30

// Prober supplies the platform-specific probes. Headless builds use the
// package default; tests and platform builds inject their own.
type Prober interface {
	// Platform reports whether this process runs as a sandboxed client host
	// or a headless server host.
	Platform() types.Platform
	// TotalMemoryBytes returns total physical memory. An error means no
	// reliable reading is available and the caller should fall back.
	TotalMemoryBytes() (uint64, error)
	// Accelerated reports whether a hardware-assisted backend is usable.
	Accelerated() bool
}

// Detector memoizes a Capabilities snapshot. Safe for concurrent use.
type Detector struct {
	mu     sync.Mutex
	prober Prober
	probed bool
	caps   types.Capabilities
}

// NewDetector builds a detector around the given prober. A nil prober selects
// the platform default.
func NewDetector(p Prober) *Detector {
	if p == nil {
		p = defaultProber{}
	}
	return &Detector{prober: p}
}

// Detect returns the memoized snapshot, probing on first call.
func (d *Detector) Detect() types.Capabilities {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.probed {
		return d.caps
	}
	mem, err := d.prober.TotalMemoryBytes()
	if err != nil || mem == 0 {
		mem = fallbackMemoryBytes
	}
	cores := runtime.NumCPU()
	if cores < 1 {
		cores = 1
	}
	d.caps = types.Capabilities{
		Platform:              d.prober.Platform(),
		TotalMemoryBytes:      mem,
		HasAcceleratedBackend: d.prober.Accelerated(),
		CPUCores:              cores,
	}
	d.probed = true
	return d.caps
}

// Reset clears the memoized snapshot so the next Detect probes again.
// Intended for tests only.
func (d *Detector) Reset() {
	d.mu.Lock()
	d.probed = false
	d.caps = types.Capabilities{}
	d.mu.Unlock()
}

// defaultProber is the headless default: server platform, no accelerator,
// memory from the OS where the build supports it.
type defaultProber struct{}

func (defaultProber) Platform() types.Platform { return types.PlatformServer }

func (defaultProber) TotalMemoryBytes() (uint64, error) { return readTotalMemory() }

func (defaultProber) Accelerated() bool { return false }
