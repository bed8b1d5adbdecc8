package manager

import (
	"context"

	"golang.org/x/sync/errgroup"

	"modelhostd/pkg/types"
)

// UnloadModel releases the active handle for a modality, removes it from the
// active registry and emits an unload notification. No-op when nothing is
// active. The corresponding cache entry is kept: a later load of the same
// config restores from cache without reloading.
func (m *Manager) UnloadModel(ctx context.Context, mod types.Modality) error {
	m.mu.Lock()
	act := m.active[mod]
	delete(m.active, mod)
	active := len(m.active)
	m.mu.Unlock()
	if act == nil {
		return nil
	}
	metricActive.Set(float64(active))
	err := act.handle.Unload(ctx)
	m.publish(Event{Type: EventUnload, Modality: mod, Model: act.resolved.Model})
	if err != nil {
		m.log.Warn().Err(err).Str("modality", string(mod)).Msg("unload reported error")
	} else {
		m.log.Info().Str("modality", string(mod)).Str("model", act.resolved.Model).Msg("model unloaded")
	}
	return err
}

// ClearAll unloads every active modality concurrently, then clears the cache.
// One modality's failure does not block the others; the first error is
// returned after all unloads settle.
func (m *Manager) ClearAll(ctx context.Context) error {
	m.mu.Lock()
	mods := make([]types.Modality, 0, len(m.active))
	for mod := range m.active {
		mods = append(mods, mod)
	}
	m.mu.Unlock()

	var g errgroup.Group
	for _, mod := range mods {
		mod := mod
		g.Go(func() error { return m.UnloadModel(ctx, mod) })
	}
	err := g.Wait()
	m.cache.Clear()
	return err
}

// Dispose clears all models and releases the cache's background timer and
// listeners. Idempotent.
func (m *Manager) Dispose(ctx context.Context) error {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return nil
	}
	m.disposed = true
	m.mu.Unlock()

	err := m.ClearAll(ctx)
	m.cache.Dispose()
	m.mu.Lock()
	m.subs = make(map[int]Listener)
	m.mu.Unlock()
	return err
}
