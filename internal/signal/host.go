package signal

import "time"

// Kind identifies a host-level event channel.
type Kind string

const (
	KindVisibilityHidden  Kind = "visibility_hidden"
	KindVisibilityVisible Kind = "visibility_visible"
	KindWindowBlur        Kind = "window_blur"
	KindWindowFocus       Kind = "window_focus"
	KindContextMenu       Kind = "context_menu"
	KindKeyDown           Kind = "key_down"
	KindBeforeUnload      Kind = "before_unload"
)

// Kinds returns all host event kinds in stable order.
func Kinds() []Kind {
	return []Kind{
		KindVisibilityHidden,
		KindVisibilityVisible,
		KindWindowBlur,
		KindWindowFocus,
		KindContextMenu,
		KindKeyDown,
		KindBeforeUnload,
	}
}

// Valid reports whether k is a known event kind.
func (k Kind) Valid() bool {
	switch k {
	case KindVisibilityHidden, KindVisibilityVisible, KindWindowBlur,
		KindWindowFocus, KindContextMenu, KindKeyDown, KindBeforeUnload:
		return true
	}
	return false
}

// Event is one discrete host-delivered event. Cancel suppresses the host's
// default handling of the event and Confirm requests a host-side navigation
// confirmation; either may be nil when the host offers no such hook.
type Event struct {
	Kind    Kind
	At      time.Time
	Detail  map[string]any
	Cancel  func()
	Confirm func(prompt string)
}

// Host binds engine handlers to the embedding environment's event channels.
// Bind returns an unbind function, or an error when the host does not
// support the channel; an unsupported channel degrades that adapter only.
type Host interface {
	Bind(kind Kind, fn func(Event)) (func(), error)
}

// Sink receives adapter output. Candidate signals may still be debounced
// downstream; Recovered reports that a channel's adverse state cleared.
type Sink interface {
	Candidate(RawSignal)
	Recovered(Category)
}
