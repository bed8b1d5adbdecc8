package manager

import "modelhostd/pkg/types"

// EventType names a lifecycle notification.
type EventType string

const (
	EventProgress EventType = "progress"
	EventReady    EventType = "ready"
	EventError    EventType = "error"
	EventUnload   EventType = "unload"
)

// Event is a manager lifecycle notification.
type Event struct {
	Type     EventType
	Modality types.Modality
	Model    string
	Progress *types.Progress
	Err      error
}

// Listener receives lifecycle events. Listeners run synchronously on the
// emitting goroutine and must be cheap; a panicking listener is isolated.
type Listener func(Event)

// Subscribe registers a listener and returns its cleanup handle. Subscribers
// are independent; unsubscribing one does not affect the others.
func (m *Manager) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// publish fans an event out to subscribers outside the manager lock, so a
// listener may call back into the manager without deadlocking.
func (m *Manager) publish(e Event) {
	m.mu.Lock()
	listeners := make([]Listener, 0, len(m.subs))
	for _, fn := range m.subs {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()
	for _, fn := range listeners {
		m.safePublish(fn, e)
	}
}

func (m *Manager) safePublish(fn Listener, e Event) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Warn().Interface("panic", r).Str("event", string(e.Type)).Msg("event listener panicked")
		}
	}()
	fn(e)
}
