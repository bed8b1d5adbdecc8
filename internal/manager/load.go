package manager

import (
	"context"
	"time"

	"modelhostd/internal/cache"
	"modelhostd/pkg/types"
)

// LoadModel loads (or reuses) the model for a modality. Concurrent calls for
// the same requested token share one in-flight load and observe the same
// outcome. The ticket is registered under the lock, before any suspension
// point; that ordering is what makes the dedup race-free.
func (m *Manager) LoadModel(ctx context.Context, mod types.Modality, cfg types.ModelConfig) (types.ModelHandle, error) {
	if err := validateRequest(mod, cfg); err != nil {
		return nil, err
	}
	key := ticketKey{modality: mod, model: cfg.Model}

	m.mu.Lock()
	// A load for this key is already in flight: join it.
	if t, ok := m.tickets[key]; ok {
		m.mu.Unlock()
		return t.wait(ctx)
	}
	// The requested config is already active: return it synchronously. Set
	// fields must agree with the active entry; a request for a different
	// precision or device goes through a fresh load. If the cache was cleared
	// out from under the still-resident model, repopulate it from the live
	// handle before returning.
	if act := m.active[mod]; act != nil && m.configMatchesLocked(act, cfg) {
		ck := cacheKeyFor(mod, act.resolved)
		if !m.cache.Has(ck) {
			m.cache.Set(ck, act.handle.RawHandle(), act.sizeHint)
		}
		h := act.handle
		m.mu.Unlock()
		return h, nil
	}
	// Deferred-load modality: register a no-op placeholder without loading.
	if cfg.SkipLoad {
		h := newPlaceholderHandle()
		m.active[mod] = &activeModel{handle: h, resolved: cfg}
		m.mu.Unlock()
		m.publish(Event{Type: EventReady, Modality: mod, Model: cfg.Model})
		return h, nil
	}
	t := newTicket()
	m.tickets[key] = t
	m.mu.Unlock()

	h, err := m.doLoad(ctx, mod, cfg)
	t.settle(h, err)
	m.mu.Lock()
	delete(m.tickets, key)
	m.mu.Unlock()
	return h, err
}

// GetOrLoadModel returns the active handle when its config matches the
// request, else delegates to LoadModel.
func (m *Manager) GetOrLoadModel(ctx context.Context, mod types.Modality, cfg types.ModelConfig) (types.ModelHandle, error) {
	m.mu.Lock()
	if act := m.active[mod]; act != nil && m.configMatchesLocked(act, cfg) {
		h := act.handle
		m.mu.Unlock()
		return h, nil
	}
	m.mu.Unlock()
	return m.LoadModel(ctx, mod, cfg)
}

// wait blocks until the ticket settles or the caller's context ends.
func (t *loadTicket) wait(ctx context.Context) (types.ModelHandle, error) {
	select {
	case <-t.done:
		return t.handle, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// doLoad performs the suspendable part of a load: preset resolution,
// autoscaling, cache lookup and the backend load itself. Failures are
// wrapped, published and leave nothing behind.
func (m *Manager) doLoad(ctx context.Context, mod types.Modality, cfg types.ModelConfig) (types.ModelHandle, error) {
	start := time.Now()
	resolved := cfg
	resolved.Model = m.presets.Resolve(cfg.Model)

	scaled, err := m.scaler.AutoScale(ctx, mod, resolved)
	if err != nil {
		return nil, m.failLoad(mod, resolved.Model, err)
	}

	m.mu.Lock()
	ctor, ok := m.constructors[mod]
	m.mu.Unlock()
	if !ok {
		err := ErrModalityUnavailable(mod)
		m.publish(Event{Type: EventError, Modality: mod, Model: scaled.Model, Err: err})
		metricLoads.WithLabelValues(string(mod), "unavailable").Inc()
		return nil, err
	}

	ck := cacheKeyFor(mod, scaled)
	if raw, hit := m.cache.Get(ck); hit {
		h, err := ctor(mod, scaled)
		if err != nil {
			return nil, m.failLoad(mod, scaled.Model, err)
		}
		h.SetRawHandle(raw)
		m.registerActive(mod, h, scaled)
		m.publish(Event{Type: EventReady, Modality: mod, Model: scaled.Model})
		metricLoads.WithLabelValues(string(mod), "cached").Inc()
		m.log.Debug().Str("modality", string(mod)).Str("model", scaled.Model).Msg("restored model from cache")
		return h, nil
	}

	h, err := ctor(mod, scaled)
	if err != nil {
		return nil, m.failLoad(mod, scaled.Model, err)
	}
	onProgress := func(p types.Progress) {
		prog := p
		m.publish(Event{Type: EventProgress, Modality: mod, Model: scaled.Model, Progress: &prog})
	}
	if err := h.Load(ctx, onProgress); err != nil {
		return nil, m.failLoad(mod, scaled.Model, err)
	}

	m.cache.Set(ck, h.RawHandle(), sizeHintOf(h))
	m.registerActive(mod, h, scaled)
	m.publish(Event{Type: EventReady, Modality: mod, Model: scaled.Model})
	metricLoads.WithLabelValues(string(mod), "loaded").Inc()
	metricLoadDuration.WithLabelValues(string(mod)).Observe(time.Since(start).Seconds())
	m.log.Info().
		Str("modality", string(mod)).
		Str("model", scaled.Model).
		Str("precision", string(scaled.Precision)).
		Str("device", string(scaled.Device)).
		Dur("dur", time.Since(start)).
		Msg("model loaded")
	return h, nil
}

// failLoad wraps a load-path failure, publishes the error notification and
// records the metric. The caller settles the ticket with the returned error.
func (m *Manager) failLoad(mod types.Modality, model string, cause error) error {
	le := &LoadError{Model: model, Modality: mod, Cause: cause}
	m.publish(Event{Type: EventError, Modality: mod, Model: model, Err: le})
	metricLoads.WithLabelValues(string(mod), "failed").Inc()
	m.log.Error().Err(cause).Str("modality", string(mod)).Str("model", model).Msg("model load failed")
	return le
}

func (m *Manager) registerActive(mod types.Modality, h types.ModelHandle, resolved types.ModelConfig) {
	m.mu.Lock()
	m.active[mod] = &activeModel{handle: h, resolved: resolved, sizeHint: sizeHintOf(h)}
	active := len(m.active)
	m.mu.Unlock()
	metricActive.Set(float64(active))
}

// configMatchesLocked reports whether the active entry satisfies a request.
// Unset request fields match anything; set fields must agree.
func (m *Manager) configMatchesLocked(act *activeModel, cfg types.ModelConfig) bool {
	if act.resolved.Model != m.presets.Resolve(cfg.Model) {
		return false
	}
	if cfg.Precision != "" && cfg.Precision != act.resolved.Precision {
		return false
	}
	if cfg.Device != "" && cfg.Device != types.DeviceAuto && cfg.Device != act.resolved.Device {
		return false
	}
	return true
}

func cacheKeyFor(mod types.Modality, cfg types.ModelConfig) cache.Key {
	return cache.Key{
		Modality:  mod,
		Model:     cfg.Model,
		Precision: cfg.Precision,
		Device:    cfg.Device,
	}
}

func validateRequest(mod types.Modality, cfg types.ModelConfig) error {
	if !mod.Known() {
		return ErrValidation("unsupported modality: " + string(mod))
	}
	if cfg.Model == "" && !cfg.SkipLoad {
		return ErrValidation("model token is required")
	}
	return nil
}
