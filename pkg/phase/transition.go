package phase

import (
	"log/slog"
	"sync"
	"time"
)

// Transition is one accepted phase change, recorded for debrief and
// debugging. The state machine itself never consults past transitions.
type Transition struct {
	From Phase     `json:"from"`
	To   Phase     `json:"to"`
	At   time.Time `json:"at"`

	AltitudeMSL       float64 `json:"altitudeMSL"`
	IndicatedAirspeed float64 `json:"indicatedAirspeed"`
	VerticalSpeed     float64 `json:"verticalSpeed"`
}

// Bus fans transitions out to subscribers. Subscribers run synchronously in
// the publishing (detector) goroutine, in registration order; a panicking
// subscriber is logged and isolated so the others still run.
type Bus struct {
	mu     sync.Mutex
	subs   []func(Transition)
	logger *slog.Logger
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{logger: slog.Default().With("component", "phasebus")}
}

// Subscribe registers a transition callback.
func (b *Bus) Subscribe(fn func(Transition)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

// Publish delivers a transition to every subscriber.
func (b *Bus) Publish(tr Transition) {
	b.mu.Lock()
	subs := b.subs
	b.mu.Unlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("transition subscriber panicked",
						"from", tr.From, "to", tr.To, "panic", r)
				}
			}()
			fn(tr)
		}()
	}
}

// historyCap bounds the in-memory transition log. The recorder keeps the
// full log on disk.
const historyCap = 512

// History is a bounded, append-only transition log.
type History struct {
	mu      sync.Mutex
	entries []Transition
}

// Append records a transition, evicting the oldest entry past capacity.
func (h *History) Append(tr Transition) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, tr)
	if len(h.entries) > historyCap {
		h.entries = h.entries[1:]
	}
}

// All returns a copy of the recorded transitions, oldest first.
func (h *History) All() []Transition {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Transition, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of recorded transitions.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
