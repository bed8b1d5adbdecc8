// Package device picks execution backends. Given a desired device token and
// the detected environment it returns a deterministic fallback chain, applies
// backend-specific runtime hints, and translates internal device tokens into
// the ones the inference backend's API expects.
package device

import (
	"sync"

	"modelhostd/internal/capability"
	"modelhostd/pkg/types"
)

// portableThreadCap bounds the portable backend's thread pool. The portable
// backend degrades past a handful of workers, so one core is always left free.
const portableThreadCap = 4

// Environment is the subset of capabilities the selector cares about.
type Environment struct {
	Platform    types.Platform
	CPUCores    int
	Accelerated bool
}

// RuntimeEnv collects backend-specific hints applied before a load. The
// inference backend consumes these; the selector only fills them in.
type RuntimeEnv struct {
	// PortableThreads sizes the portable backend's worker pool.
	PortableThreads int
	// PreferAccelerated asks the backend to place weights on the
	// accelerated device when both paths are compiled in.
	PreferAccelerated bool
}

// Selector resolves device fallback chains against a memoized environment.
type Selector struct {
	mu     sync.Mutex
	det    *capability.Detector
	probed bool
	env    Environment
}

// NewSelector builds a selector on top of a capability detector.
func NewSelector(det *capability.Detector) *Selector {
	return &Selector{det: det}
}

// DetectEnvironment returns the memoized environment, probing on first call.
func (s *Selector) DetectEnvironment() Environment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.probed {
		return s.env
	}
	caps := s.det.Detect()
	s.env = Environment{
		Platform:    caps.Platform,
		CPUCores:    caps.CPUCores,
		Accelerated: caps.HasAcceleratedBackend,
	}
	s.probed = true
	return s.env
}

// FallbackOrder returns the ordered list of backends to attempt for the
// desired device.
//
// Client platform: the accelerated backend is attempted only when actually
// detected, and the portable fallback is always last. An unknown or
// unsupported device request collapses straight to the portable fallback.
//
// Server platform: an accelerated request falls back to the default CPU
// backend as the final entry; everything else runs on the CPU backend.
func (s *Selector) FallbackOrder(desired types.Device) []types.Device {
	env := s.DetectEnvironment()
	if env.Platform == types.PlatformServer {
		if desired == types.DeviceGPU && env.Accelerated {
			return []types.Device{types.DeviceGPU, types.DeviceCPU}
		}
		return []types.Device{types.DeviceCPU}
	}
	switch desired {
	case types.DeviceGPU, types.DeviceAuto, "":
		if env.Accelerated {
			return []types.Device{types.DeviceGPU, types.DevicePortable}
		}
		return []types.Device{types.DevicePortable}
	case types.DevicePortable, types.DeviceCPU:
		return []types.Device{types.DevicePortable}
	default:
		// Unknown token on a client platform: portable only.
		return []types.Device{types.DevicePortable}
	}
}

// ConfigureRuntime applies backend hints for the chosen device.
func (s *Selector) ConfigureRuntime(d types.Device, env *RuntimeEnv) {
	if env == nil {
		return
	}
	e := s.DetectEnvironment()
	switch d {
	case types.DevicePortable, types.DeviceCPU:
		threads := e.CPUCores - 1
		if threads < 1 {
			threads = 1
		}
		if threads > portableThreadCap {
			threads = portableThreadCap
		}
		env.PortableThreads = threads
	case types.DeviceGPU:
		env.PreferAccelerated = true
	}
}

// NormalizeToken maps an internal device token to the token the inference
// backend's API expects. The portable backend is exposed by the backend API
// under its CPU name.
func NormalizeToken(d types.Device) string {
	switch d {
	case types.DevicePortable:
		return string(types.DeviceCPU)
	case "":
		return string(types.DeviceAuto)
	default:
		return string(d)
	}
}
