// Package events carries run lifecycle notifications (compiler resets,
// warm-up invocations, degraded features) from the appliers to whoever
// observes a run: metrics, the HTTP report, tests.
package events

import (
	"sync"

	"github.com/rs/zerolog"
)

// Well-known event names.
const (
	CompilerReset      = "compiler_reset"
	WarmupInvocation   = "warmup_invocation"
	BackendApplied     = "backend_applied"
	FeatureUnavailable = "feature_unavailable"
	StateChanged       = "state_changed"
)

// Event is a single notification: a name, the model it concerns and optional
// fields.
type Event struct {
	Name    string
	ModelID string
	Fields  map[string]any
}

// Publisher receives events. Implementations should be lightweight and
// non-blocking; Publish must not panic.
type Publisher interface {
	Publish(Event)
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(Event) {}

// Memory stores events in-memory.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func NewMemory() *Memory { return &Memory{} }

func (p *Memory) Publish(e Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *Memory) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// Count returns how many events named name were published.
func (p *Memory) Count(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Name == name {
			n++
		}
	}
	return n
}

// Fanout publishes to every non-nil publisher in order.
type Fanout []Publisher

func (f Fanout) Publish(e Event) {
	for _, p := range f {
		if p != nil {
			p.Publish(e)
		}
	}
}

// Log writes events to a zerolog logger at debug level, warnings at warn.
type Log struct{ L zerolog.Logger }

func (l Log) Publish(e Event) {
	ev := l.L.Debug()
	if e.Name == FeatureUnavailable {
		ev = l.L.Warn()
	}
	ev = ev.Str("event", e.Name)
	if e.ModelID != "" {
		ev = ev.Str("model", e.ModelID)
	}
	if len(e.Fields) > 0 {
		ev = ev.Fields(e.Fields)
	}
	ev.Msg("run event")
}
