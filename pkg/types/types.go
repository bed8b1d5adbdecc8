package types

// Modality identifies the kind of AI capability a model serves.
type Modality string

const (
	ModalityLLM       Modality = "llm"
	ModalityEmbedding Modality = "embedding"
	ModalitySTT       Modality = "stt"
	ModalityTTS       Modality = "tts"
	ModalityOCR       Modality = "ocr"
)

// Modalities lists every modality the manager knows how to track.
var Modalities = []Modality{ModalityLLM, ModalityEmbedding, ModalitySTT, ModalityTTS, ModalityOCR}

// Known reports whether m is one of the supported modalities.
func (m Modality) Known() bool {
	for _, k := range Modalities {
		if m == k {
			return true
		}
	}
	return false
}

// Platform distinguishes a sandboxed client host from a headless server host.
type Platform string

const (
	PlatformClient Platform = "client"
	PlatformServer Platform = "server"
)

// Device is an internal execution-backend token. The portable backend is the
// universal fallback that works everywhere; the backend API knows it by a
// different name (see device.NormalizeToken).
type Device string

const (
	DeviceAuto     Device = "auto"
	DeviceGPU      Device = "gpu"
	DeviceCPU      Device = "cpu"
	DevicePortable Device = "portable"
)

// Precision is the numeric precision a model is loaded with.
type Precision string

const (
	PrecisionFP16 Precision = "fp16"
	PrecisionQ8   Precision = "q8"
	PrecisionQ4   Precision = "q4"
)

// PerformanceMode trades speed against output quality. ModeAuto is a sentinel
// meaning "let the autoscaler decide".
type PerformanceMode string

const (
	ModeAuto     PerformanceMode = "auto"
	ModeFast     PerformanceMode = "fast"
	ModeBalanced PerformanceMode = "balanced"
	ModeQuality  PerformanceMode = "quality"
)

// Capabilities is an immutable snapshot of the host environment, detected once
// per process and memoized.
type Capabilities struct {
	Platform              Platform `json:"platform"`
	TotalMemoryBytes      uint64   `json:"total_memory_bytes"`
	HasAcceleratedBackend bool     `json:"has_accelerated_backend"`
	CPUCores              int      `json:"cpu_cores"`
}

// ModelConfig describes one model load request. Every field except Model is
// optional; zero values mean "unset" and are candidates for autoscaling.
// Fields set by the caller are always respected verbatim.
//
// Configs are treated as immutable: every resolution step returns a new value.
type ModelConfig struct {
	// Model is the requested model token: either a preset alias or a
	// concrete model identifier.
	Model string `json:"model"`
	// Precision selects the numeric precision; empty means auto.
	Precision Precision `json:"precision,omitempty"`
	// Device selects the execution backend; empty means auto.
	Device Device `json:"device,omitempty"`
	// Threads bounds CPU threads used by the backend; 0 means auto.
	Threads int `json:"threads,omitempty"`
	// TokenBudget caps the context size in tokens; 0 means auto.
	TokenBudget int `json:"token_budget,omitempty"`
	// PerformanceMode trades speed vs quality; "auto" opts into autoscaling.
	PerformanceMode PerformanceMode `json:"performance_mode,omitempty"`
	// AutoTune additionally lets the autoscaler swap the model variant.
	AutoTune bool `json:"auto_tune,omitempty"`
	// SkipLoad registers a placeholder handle without loading. Used by
	// deferred-load modalities that are wired up lazily on first use.
	SkipLoad bool `json:"skip_load,omitempty"`
}
