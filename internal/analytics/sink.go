package analytics

import (
	"log/slog"
	"sync"
)

// TagSink is the in-page tagging runtime's event intake. The router holds an
// explicit sink capability instead of reaching for a globally registered emit
// function.
type TagSink interface {
	Emit(name string, params map[string]any)
}

type queuedEvent struct {
	name   string
	params map[string]any
}

// BufferedSink queues events until the tagging runtime reports ready, then
// flushes them in arrival order and emits directly from then on. Calls before
// readiness are never lost and never crash the caller.
type BufferedSink struct {
	mu      sync.Mutex
	ready   bool
	pending []queuedEvent
	emit    func(name string, params map[string]any)
}

// NewBufferedSink wraps the runtime's raw emit function. A nil emit drops
// events with a warning instead of panicking.
func NewBufferedSink(emit func(name string, params map[string]any)) *BufferedSink {
	return &BufferedSink{emit: emit}
}

// Ready marks the runtime loaded and flushes everything queued so far.
func (s *BufferedSink) Ready() {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.ready = true
	s.mu.Unlock()

	for _, ev := range pending {
		s.send(ev.name, ev.params)
	}
}

// Emit hands one event to the runtime, or queues it while the runtime is
// still loading.
func (s *BufferedSink) Emit(name string, params map[string]any) {
	s.mu.Lock()
	if !s.ready {
		s.pending = append(s.pending, queuedEvent{name: name, params: params})
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.send(name, params)
}

func (s *BufferedSink) send(name string, params map[string]any) {
	if s.emit == nil {
		slog.Warn("Tag runtime emit not configured, dropping event", "event", name)
		return
	}
	s.emit(name, params)
}
