package types

import "context"

// ProgressStatus is the normalized status of a load progress event.
type ProgressStatus string

const (
	ProgressDownloading ProgressStatus = "downloading"
	ProgressLoading     ProgressStatus = "loading"
	ProgressReady       ProgressStatus = "ready"
	ProgressError       ProgressStatus = "error"
)

// Progress is the normalized shape of backend progress events. Backends report
// whatever granularity they have; absent fields stay zero.
type Progress struct {
	Status  ProgressStatus `json:"status"`
	File    string         `json:"file,omitempty"`
	Percent float64        `json:"percent,omitempty"`
	Loaded  int64          `json:"loaded,omitempty"`
	Total   int64          `json:"total,omitempty"`
}

// ProgressFunc receives progress events during a load. It may be invoked
// arbitrarily many times while the load is in flight and must be cheap.
type ProgressFunc func(Progress)

// ModelHandle is the contract a per-modality backend implements. The manager
// owns the lifecycle; the handle owns the actual inference resources.
type ModelHandle interface {
	// Load acquires the model resources. It settles exactly once and may
	// report progress through onProgress (which may be nil).
	Load(ctx context.Context, onProgress ProgressFunc) error
	// Unload releases the model resources.
	Unload(ctx context.Context) error
	IsLoaded() bool
	IsLoading() bool
	// RawHandle and SetRawHandle round-trip the backend payload through the
	// model cache so a cache hit can restore a handle without reloading.
	RawHandle() any
	SetRawHandle(raw any)
}

// Constructor builds an unloaded handle for a modality from a resolved config.
type Constructor func(m Modality, cfg ModelConfig) (ModelHandle, error)
