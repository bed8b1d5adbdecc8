package manager

import "modelhostd/pkg/types"

// Status builds the /status projection: detected capabilities, active models
// and cache counters.
func (m *Manager) Status() types.StatusResponse {
	caps := m.caps.Detect()

	m.mu.Lock()
	active := make([]types.ModalityStatus, 0, len(m.active))
	for mod, act := range m.active {
		state := "loaded"
		if act.handle.IsLoading() {
			state = "loading"
		}
		active = append(active, types.ModalityStatus{
			Modality:  mod,
			Model:     act.resolved.Model,
			State:     state,
			Precision: act.resolved.Precision,
			Device:    act.resolved.Device,
			Mode:      act.resolved.PerformanceMode,
		})
	}
	m.mu.Unlock()

	cs := m.cache.Stats()
	return types.StatusResponse{
		Capabilities: caps,
		Active:       active,
		Cache: types.CacheStatus{
			Models:        cs.TotalModels,
			MaxModels:     m.cache.MaxSize(),
			Hits:          cs.Hits,
			Misses:        cs.Misses,
			Evictions:     cs.Evictions,
			Expirations:   cs.Expirations,
			TotalSizeHint: cs.TotalSizeHint,
			PerModality:   cs.PerModality,
		},
	}
}

// Presets returns the alias table for /presets.
func (m *Manager) Presets() map[string]string { return m.presets.List() }

// Ready reports whether the manager can still accept lifecycle requests.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.disposed
}
