package trace

import (
	"sync"
	"time"

	"github.com/examwatch/examwatch/internal/signal"
)

// ScriptedHost implements signal.Host for traces and the stdin bridge. It
// records the side effects the engine requests (suppressed defaults, leave
// confirmations) so they can be asserted or surfaced.
type ScriptedHost struct {
	mu            sync.Mutex
	nextID        int
	handlers      map[signal.Kind]map[int]func(signal.Event)
	unsupported   map[signal.Kind]bool
	cancelled     int
	confirmations []string
}

// NewScriptedHost creates a host supporting every event kind.
func NewScriptedHost() *ScriptedHost {
	return &ScriptedHost{
		handlers:    make(map[signal.Kind]map[int]func(signal.Event)),
		unsupported: make(map[signal.Kind]bool),
	}
}

// DropChannel marks a kind as unsupported; Bind for it fails afterwards.
func (h *ScriptedHost) DropChannel(kind signal.Kind) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unsupported[kind] = true
}

// Bind implements signal.Host.
func (h *ScriptedHost) Bind(kind signal.Kind, fn func(signal.Event)) (func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.unsupported[kind] {
		return nil, &UnsupportedChannelError{Kind: kind}
	}

	h.nextID++
	id := h.nextID
	if h.handlers[kind] == nil {
		h.handlers[kind] = make(map[int]func(signal.Event))
	}
	h.handlers[kind][id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.handlers[kind], id)
	}, nil
}

// Deliver dispatches one event to every bound handler, synchronously on the
// calling goroutine, mirroring a single-threaded host event loop.
func (h *ScriptedHost) Deliver(kind signal.Kind, at time.Time, detail map[string]any) {
	h.mu.Lock()
	fns := make([]func(signal.Event), 0, len(h.handlers[kind]))
	for _, fn := range h.handlers[kind] {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	ev := signal.Event{
		Kind:   kind,
		At:     at,
		Detail: detail,
		Cancel: func() {
			h.mu.Lock()
			h.cancelled++
			h.mu.Unlock()
		},
		Confirm: func(prompt string) {
			h.mu.Lock()
			h.confirmations = append(h.confirmations, prompt)
			h.mu.Unlock()
		},
	}
	for _, fn := range fns {
		fn(ev)
	}
}

// Cancelled returns how many events had their default handling suppressed.
func (h *ScriptedHost) Cancelled() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancelled
}

// Confirmations returns the leave prompts the engine requested.
func (h *ScriptedHost) Confirmations() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.confirmations))
	copy(out, h.confirmations)
	return out
}

// BoundKinds returns the kinds with at least one live handler.
func (h *ScriptedHost) BoundKinds() []signal.Kind {
	h.mu.Lock()
	defer h.mu.Unlock()
	kinds := make([]signal.Kind, 0, len(h.handlers))
	for _, k := range signal.Kinds() {
		if len(h.handlers[k]) > 0 {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// UnsupportedChannelError reports a host channel an adapter cannot bind.
type UnsupportedChannelError struct {
	Kind signal.Kind
}

func (e *UnsupportedChannelError) Error() string {
	return "host does not support channel " + string(e.Kind)
}
