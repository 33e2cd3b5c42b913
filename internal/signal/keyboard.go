package signal

import "strings"

// KeyStroke is a normalized key-down event.
type KeyStroke struct {
	Key   string
	Ctrl  bool
	Alt   bool
	Shift bool
	Meta  bool
}

// combo is one prohibited key combination. Modifier matching is exact, so
// Ctrl+Tab and Ctrl+Shift+Tab are distinct entries.
type combo struct {
	key     string
	ctrl    bool
	alt     bool
	shift   bool
	meta    bool
	display string
}

var prohibitedCombos = []combo{
	{key: "tab", alt: true, display: "Alt+Tab"},
	{key: "tab", ctrl: true, display: "Ctrl+Tab"},
	{key: "tab", ctrl: true, shift: true, display: "Ctrl+Shift+Tab"},
	{key: "t", ctrl: true, display: "Ctrl+T"},
	{key: "w", ctrl: true, display: "Ctrl+W"},
	{key: "n", ctrl: true, display: "Ctrl+N"},
	{key: "f5", display: "F5"},
	{key: "r", ctrl: true, display: "Ctrl+R"},
	{key: "f12", display: "F12"},
	{key: "i", ctrl: true, shift: true, display: "Ctrl+Shift+I"},
	{key: "u", ctrl: true, display: "Ctrl+U"},
	{key: "j", ctrl: true, shift: true, display: "Ctrl+Shift+J"},
	{key: "c", ctrl: true, shift: true, display: "Ctrl+Shift+C"},
}

// MatchProhibited reports whether ks is a prohibited combination, returning
// its display name when matched.
func MatchProhibited(ks KeyStroke) (string, bool) {
	for _, c := range prohibitedCombos {
		if strings.EqualFold(ks.Key, c.key) &&
			ks.Ctrl == c.ctrl && ks.Alt == c.alt && ks.Shift == c.shift && ks.Meta == c.meta {
			return c.display, true
		}
	}
	return "", false
}

// KeyStrokeFromEvent extracts the key stroke carried in a key-down event's
// detail map.
func KeyStrokeFromEvent(ev Event) KeyStroke {
	ks := KeyStroke{}
	if v, ok := ev.Detail["key"].(string); ok {
		ks.Key = v
	}
	ks.Ctrl, _ = ev.Detail["ctrl"].(bool)
	ks.Alt, _ = ev.Detail["alt"].(bool)
	ks.Shift, _ = ev.Detail["shift"].(bool)
	ks.Meta, _ = ev.Detail["meta"].(bool)
	return ks
}

// KeyboardAdapter matches key-down events against the prohibited combination
// table. Matched events are cancelled on the host before the signal is
// emitted; unmatched events pass through untouched.
type KeyboardAdapter struct {
	sink    Sink
	unbinds []func()
}

func NewKeyboardAdapter(sink Sink) *KeyboardAdapter {
	return &KeyboardAdapter{sink: sink}
}

func (a *KeyboardAdapter) Name() string { return "keyboard" }

func (a *KeyboardAdapter) Attach(h Host) error {
	unbinds, err := bindAll(h, []struct {
		kind Kind
		fn   func(Event)
	}{
		{KindKeyDown, a.onKeyDown},
	})
	if err != nil {
		return err
	}
	a.unbinds = unbinds
	return nil
}

func (a *KeyboardAdapter) Detach() { detachAll(&a.unbinds) }

func (a *KeyboardAdapter) onKeyDown(ev Event) {
	ks := KeyStrokeFromEvent(ev)
	display, ok := MatchProhibited(ks)
	if !ok {
		return
	}
	if ev.Cancel != nil {
		ev.Cancel()
	}
	a.sink.Candidate(RawSignal{
		Category:   CategoryKeyboardShortcut,
		ObservedAt: ev.At,
		Details:    map[string]any{"combination": display},
	})
}
