package manager

import (
	"sync"

	"github.com/rs/zerolog"

	"modelhostd/internal/cache"
	"modelhostd/internal/capability"
	"modelhostd/internal/device"
	"modelhostd/internal/registry"
	"modelhostd/internal/scale"
	"modelhostd/pkg/types"
)

// Config carries the manager's collaborators. Nil fields get defaults so
// tests can construct a manager with only what they care about.
type Config struct {
	Cache        *cache.ModelCache
	Capabilities *capability.Detector
	Devices      *device.Selector
	Scaler       *scale.AutoScaler
	Presets      *registry.Presets
	Constructors map[types.Modality]types.Constructor
	Logger       zerolog.Logger
}

// ticketKey dedups in-flight loads. It is computed from the requested,
// pre-resolution model token: two preset names resolving to the same model do
// not dedup against each other while loading, even though they share a cache
// entry afterwards.
type ticketKey struct {
	modality types.Modality
	model    string
}

// loadTicket is a pending-result handle for one in-flight load. It is
// registered synchronously before any suspension point and removed
// unconditionally once the load settles.
type loadTicket struct {
	done   chan struct{}
	handle types.ModelHandle
	err    error
}

func newTicket() *loadTicket { return &loadTicket{done: make(chan struct{})} }

func (t *loadTicket) settle(h types.ModelHandle, err error) {
	t.handle = h
	t.err = err
	close(t.done)
}

// activeModel pairs a loaded handle with the config it resolved to. An entry
// exists iff the handle is fully loaded.
type activeModel struct {
	handle   types.ModelHandle
	resolved types.ModelConfig
	sizeHint int64
}

// Manager is the top-level model lifecycle orchestrator. Safe for concurrent
// use; the mutex guards the ticket table, active registry and subscriber list.
type Manager struct {
	mu           sync.Mutex
	cache        *cache.ModelCache
	caps         *capability.Detector
	devices      *device.Selector
	scaler       *scale.AutoScaler
	presets      *registry.Presets
	constructors map[types.Modality]types.Constructor
	tickets      map[ticketKey]*loadTicket
	active       map[types.Modality]*activeModel
	subs         map[int]Listener
	nextSub      int
	disposed     bool
	log          zerolog.Logger
}

// New constructs a Manager, filling unset collaborators with defaults.
func New(cfg Config) *Manager {
	det := cfg.Capabilities
	if det == nil {
		det = capability.NewDetector(nil)
	}
	dev := cfg.Devices
	if dev == nil {
		dev = device.NewSelector(det)
	}
	scaler := cfg.Scaler
	if scaler == nil {
		scaler = scale.New(det, dev, cfg.Logger)
	}
	c := cfg.Cache
	if c == nil {
		c = cache.New(cache.Config{Logger: cfg.Logger})
	}
	presets := cfg.Presets
	if presets == nil {
		presets = registry.Defaults()
	}
	ctors := make(map[types.Modality]types.Constructor, len(cfg.Constructors))
	for k, v := range cfg.Constructors {
		ctors[k] = v
	}
	return &Manager{
		cache:        c,
		caps:         det,
		devices:      dev,
		scaler:       scaler,
		presets:      presets,
		constructors: ctors,
		tickets:      make(map[ticketKey]*loadTicket),
		active:       make(map[types.Modality]*activeModel),
		subs:         make(map[int]Listener),
		log:          cfg.Logger,
	}
}

// RegisterConstructor installs (or replaces) the backend constructor for a
// modality.
func (m *Manager) RegisterConstructor(mod types.Modality, ctor types.Constructor) {
	m.mu.Lock()
	m.constructors[mod] = ctor
	m.mu.Unlock()
}

// IsLoaded reports whether the modality currently has a loaded active model.
func (m *Manager) IsLoaded(mod types.Modality) bool {
	m.mu.Lock()
	act := m.active[mod]
	m.mu.Unlock()
	return act != nil && act.handle.IsLoaded()
}

// ActiveModel returns the resolved config of the active model for a modality.
func (m *Manager) ActiveModel(mod types.Modality) (types.ModelConfig, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if act := m.active[mod]; act != nil {
		return act.resolved, true
	}
	return types.ModelConfig{}, false
}

// Cache exposes the manager's cache for status reporting.
func (m *Manager) Cache() *cache.ModelCache { return m.cache }

// sizeHintOf pulls an optional size hint off a handle.
func sizeHintOf(h types.ModelHandle) int64 {
	if s, ok := h.(interface{ SizeHint() int64 }); ok {
		return s.SizeHint()
	}
	return 0
}
