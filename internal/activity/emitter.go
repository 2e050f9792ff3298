package activity

import (
	"sync"
	"time"

	"backend/internal/storage"
)

// DefaultDebounceWindow is the settle time for interactive bursts such as
// slider dragging: only the value still current after the window fires is
// actually emitted.
const DefaultDebounceWindow = 800 * time.Millisecond

type EmitFunc func(slug, action string, details storage.Details)

// Emitter deduplicates calculator-field-change events at the emitting
// edge with a trailing debounce keyed by (slug, action). Other action
// kinds pass through immediately.
type Emitter struct {
	window time.Duration
	emit   EmitFunc

	mu      sync.Mutex
	pending map[string]*pendingEvent
}

type pendingEvent struct {
	timer   *time.Timer
	slug    string
	action  string
	details storage.Details
}

func NewEmitter(window time.Duration, emit EmitFunc) *Emitter {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Emitter{
		window:  window,
		emit:    emit,
		pending: make(map[string]*pendingEvent),
	}
}

func debounced(action string) bool {
	switch action {
	case storage.ChangedEventsAction, storage.ChangedTicketsAction, storage.ChangedPriceAction:
		return true
	}
	return false
}

// Emit records an event. Field-change kinds are held back until the value
// settles; each new value cancels the previous timer and restarts the
// window.
func (e *Emitter) Emit(slug, action string, details storage.Details) {
	if !debounced(action) {
		e.emit(slug, action, details)
		return
	}

	key := slug + "\x00" + action

	e.mu.Lock()
	defer e.mu.Unlock()

	if existing, ok := e.pending[key]; ok {
		existing.timer.Stop()
	}

	entry := &pendingEvent{slug: slug, action: action, details: details}
	entry.timer = time.AfterFunc(e.window, func() {
		e.mu.Lock()
		current, ok := e.pending[key]
		if ok && current == entry {
			delete(e.pending, key)
		}
		e.mu.Unlock()

		if ok && current == entry {
			e.emit(entry.slug, entry.action, entry.details)
		}
	})
	e.pending[key] = entry
}

// Flush emits every held-back event immediately. Called on session end so
// a settled-but-unsent value is not lost.
func (e *Emitter) Flush() {
	e.mu.Lock()
	entries := make([]*pendingEvent, 0, len(e.pending))
	for key, entry := range e.pending {
		entry.timer.Stop()
		entries = append(entries, entry)
		delete(e.pending, key)
	}
	e.mu.Unlock()

	for _, entry := range entries {
		e.emit(entry.slug, entry.action, entry.details)
	}
}
