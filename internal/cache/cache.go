// Package cache keeps loaded model payloads keyed by everything that changes
// runtime behavior, so two differently-configured loads of the same nominal
// model never collide. Entries expire lazily on read and via a background
// sweep, and the least-recently-accessed entries are evicted synchronously
// whenever an insert pushes the cache past its size limit.
package cache

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"modelhostd/pkg/types"
)

const (
	defaultMaxModels     = 8
	defaultSweepInterval = time.Minute
)

// Key identifies a cached model. Precision and device are part of the key
// because they change the loaded artifact, not just how it is used.
type Key struct {
	Modality  types.Modality
	Model     string
	Precision types.Precision
	Device    types.Device
}

// EvictReason tells eviction listeners why an entry went away.
type EvictReason string

const (
	ReasonLRU         EvictReason = "lru"
	ReasonExpired     EvictReason = "expired"
	ReasonInvalidated EvictReason = "invalidated"
	ReasonCleared     EvictReason = "cleared"
)

// EvictFunc observes removals. Listeners run synchronously; a panicking
// listener is isolated and does not affect the cache or other listeners.
type EvictFunc func(key Key, reason EvictReason, payload any)

// Stats is a point-in-time view of cache counters.
type Stats struct {
	Hits          uint64
	Misses        uint64
	Evictions     uint64
	Expirations   uint64
	TotalModels   int
	TotalSizeHint int64
	PerModality   map[types.Modality]int
}

type entry struct {
	payload      any
	loadedAt     time.Time
	lastAccessed time.Time
	accessCount  int64
	sizeHint     int64
	expiresAt    time.Time // zero means no expiry
}

// Config carries cache construction tunables. Zero values select defaults;
// TTL <= 0 disables expiration, MaxModels < 0 means unlimited.
type Config struct {
	MaxModels     int
	TTL           time.Duration
	SweepInterval time.Duration
	Logger        zerolog.Logger
}

// ModelCache is safe for concurrent use. The sweep goroutine is the only
// autonomous mutator and is stopped by Dispose.
type ModelCache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	maxSize int
	ttl     time.Duration

	hits        uint64
	misses      uint64
	evictions   uint64
	expirations uint64

	onEvict  []EvictFunc
	stopCh   chan struct{}
	disposed bool
	log      zerolog.Logger
}

// New builds a cache and starts its sweep goroutine.
func New(cfg Config) *ModelCache {
	maxSize := cfg.MaxModels
	if maxSize == 0 {
		maxSize = defaultMaxModels
	}
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	c := &ModelCache{
		entries: make(map[Key]*entry),
		maxSize: maxSize,
		ttl:     cfg.TTL,
		stopCh:  make(chan struct{}),
		log:     cfg.Logger,
	}
	go c.sweepLoop(interval)
	return c
}

// Get returns the payload for key. An expired entry is treated as absent and
// removed. Both outcomes update hit/miss counters.
func (c *ModelCache) Get(key Key) (any, bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && c.expiredLocked(key, e) {
		ok = false
	}
	if !ok {
		c.misses++
		c.mu.Unlock()
		metricMisses.Inc()
		return nil, false
	}
	e.lastAccessed = time.Now()
	e.accessCount++
	c.hits++
	payload := e.payload
	c.mu.Unlock()
	metricHits.Inc()
	return payload, true
}

// Has reports presence without touching access order or hit/miss counters.
// Expired entries are reaped lazily here too.
func (c *ModelCache) Has(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return false
	}
	return !c.expiredLocked(key, e)
}

// Set stores a payload. Inserting past the size limit evicts
// least-recently-accessed entries synchronously, within this call.
func (c *ModelCache) Set(key Key, payload any, sizeHint int64) {
	now := time.Now()
	e := &entry{
		payload:      payload,
		loadedAt:     now,
		lastAccessed: now,
		sizeHint:     sizeHint,
	}
	if c.ttl > 0 {
		e.expiresAt = now.Add(c.ttl)
	}
	var evicted []evictedEntry
	c.mu.Lock()
	c.entries[key] = e
	evicted = c.evictOverLimitLocked()
	resident := len(c.entries)
	c.mu.Unlock()
	metricResident.Set(float64(resident))
	c.notify(evicted)
}

// SetExpiry overrides the expiration of an existing entry. Setting an expiry
// on a missing key is a no-op.
func (c *ModelCache) SetExpiry(key Key, at time.Time) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		e.expiresAt = at
	}
	c.mu.Unlock()
}

// Invalidate removes a single entry. Returns whether it was present.
func (c *ModelCache) Invalidate(key Key) bool {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok {
		delete(c.entries, key)
	}
	resident := len(c.entries)
	c.mu.Unlock()
	if !ok {
		return false
	}
	metricResident.Set(float64(resident))
	c.notify([]evictedEntry{{key, ReasonInvalidated, e.payload}})
	return true
}

// Clear removes every entry and resets the hit/miss counters. Idempotent.
func (c *ModelCache) Clear() {
	c.mu.Lock()
	evicted := make([]evictedEntry, 0, len(c.entries))
	for k, e := range c.entries {
		evicted = append(evicted, evictedEntry{k, ReasonCleared, e.payload})
	}
	c.entries = make(map[Key]*entry)
	c.hits, c.misses, c.evictions, c.expirations = 0, 0, 0, 0
	c.mu.Unlock()
	metricResident.Set(0)
	c.notify(evicted)
}

// SetMaxSize changes the size limit, evicting down synchronously if needed.
// n <= 0 means unlimited.
func (c *ModelCache) SetMaxSize(n int) {
	c.mu.Lock()
	c.maxSize = n
	evicted := c.evictOverLimitLocked()
	resident := len(c.entries)
	c.mu.Unlock()
	metricResident.Set(float64(resident))
	c.notify(evicted)
}

// MaxSize returns the current size limit; <= 0 means unlimited.
func (c *ModelCache) MaxSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxSize
}

// Size returns the current number of entries.
func (c *ModelCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Keys returns a snapshot of the current keys.
func (c *ModelCache) Keys() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Key, 0, len(c.entries))
	for k := range c.entries {
		out = append(out, k)
	}
	return out
}

// Stats returns a snapshot of the counters.
func (c *ModelCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Stats{
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
		TotalModels: len(c.entries),
		PerModality: make(map[types.Modality]int),
	}
	for k, e := range c.entries {
		s.TotalSizeHint += e.sizeHint
		s.PerModality[k.Modality]++
	}
	return s
}

// OnEvict registers a removal listener.
func (c *ModelCache) OnEvict(fn EvictFunc) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.onEvict = append(c.onEvict, fn)
	c.mu.Unlock()
}

// Dispose stops the sweep goroutine and detaches listeners. Idempotent.
func (c *ModelCache) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	c.onEvict = nil
	close(c.stopCh)
	c.mu.Unlock()
}

type evictedEntry struct {
	key     Key
	reason  EvictReason
	payload any
}

// expiredLocked reaps e if past its expiry. Caller holds c.mu.
func (c *ModelCache) expiredLocked(key Key, e *entry) bool {
	if e.expiresAt.IsZero() || time.Now().Before(e.expiresAt) {
		return false
	}
	delete(c.entries, key)
	c.expirations++
	metricExpirations.Inc()
	return true
}

// evictOverLimitLocked removes least-recently-accessed entries until the
// cache is back at its limit. Caller holds c.mu.
func (c *ModelCache) evictOverLimitLocked() []evictedEntry {
	if c.maxSize <= 0 {
		return nil
	}
	var out []evictedEntry
	for len(c.entries) > c.maxSize {
		var lruKey Key
		var lru *entry
		for k, e := range c.entries {
			if lru == nil || e.lastAccessed.Before(lru.lastAccessed) {
				lruKey, lru = k, e
			}
		}
		if lru == nil {
			break
		}
		delete(c.entries, lruKey)
		c.evictions++
		metricEvictions.Inc()
		out = append(out, evictedEntry{lruKey, ReasonLRU, lru.payload})
	}
	return out
}

// notify invokes eviction listeners outside the cache lock, isolating each
// call so one misbehaving subscriber cannot take down the cache.
func (c *ModelCache) notify(evicted []evictedEntry) {
	if len(evicted) == 0 {
		return
	}
	c.mu.Lock()
	listeners := make([]EvictFunc, len(c.onEvict))
	copy(listeners, c.onEvict)
	c.mu.Unlock()
	for _, ev := range evicted {
		for _, fn := range listeners {
			c.safeCall(fn, ev)
		}
	}
}

func (c *ModelCache) safeCall(fn EvictFunc, ev evictedEntry) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Warn().Interface("panic", r).Str("model", ev.key.Model).Msg("evict listener panicked")
		}
	}()
	fn(ev.key, ev.reason, ev.payload)
}

// sweepLoop periodically reaps expired entries until Dispose.
func (c *ModelCache) sweepLoop(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-t.C:
			c.sweep()
		}
	}
}

func (c *ModelCache) sweep() {
	now := time.Now()
	var evicted []evictedEntry
	c.mu.Lock()
	for k, e := range c.entries {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(c.entries, k)
			c.expirations++
			metricExpirations.Inc()
			evicted = append(evicted, evictedEntry{k, ReasonExpired, e.payload})
		}
	}
	resident := len(c.entries)
	c.mu.Unlock()
	metricResident.Set(float64(resident))
	c.notify(evicted)
}
