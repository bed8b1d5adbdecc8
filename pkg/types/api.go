package types

// LoadRequest is the payload for POST /models/load.
type LoadRequest struct {
	Modality Modality    `json:"modality"`
	Config   ModelConfig `json:"config"`
}

// UnloadRequest is the payload for POST /models/unload.
type UnloadRequest struct {
	Modality Modality `json:"modality"`
}

// ModalityStatus summarizes one active model for /status.
type ModalityStatus struct {
	Modality  Modality        `json:"modality"`
	Model     string          `json:"model"`
	State     string          `json:"state"`
	Precision Precision       `json:"precision,omitempty"`
	Device    Device          `json:"device,omitempty"`
	Mode      PerformanceMode `json:"performance_mode,omitempty"`
}

// CacheStatus is a read-only projection of the model cache for /status.
type CacheStatus struct {
	Models        int              `json:"models"`
	MaxModels     int              `json:"max_models"`
	Hits          uint64           `json:"hits"`
	Misses        uint64           `json:"misses"`
	Evictions     uint64           `json:"evictions"`
	Expirations   uint64           `json:"expirations"`
	TotalSizeHint int64            `json:"total_size_hint"`
	PerModality   map[Modality]int `json:"per_modality,omitempty"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Capabilities Capabilities     `json:"capabilities"`
	Active       []ModalityStatus `json:"active"`
	Cache        CacheStatus      `json:"cache"`
}

// PresetsResponse wraps the preset alias table returned by GET /presets.
type PresetsResponse struct {
	Presets map[string]string `json:"presets"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
