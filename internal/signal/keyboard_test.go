package signal

import "testing"

func TestMatchProhibited(t *testing.T) {
	tests := []struct {
		name    string
		ks      KeyStroke
		want    string
		matched bool
	}{
		{"alt tab", KeyStroke{Key: "tab", Alt: true}, "Alt+Tab", true},
		{"ctrl tab", KeyStroke{Key: "tab", Ctrl: true}, "Ctrl+Tab", true},
		{"ctrl shift tab", KeyStroke{Key: "tab", Ctrl: true, Shift: true}, "Ctrl+Shift+Tab", true},
		{"ctrl t", KeyStroke{Key: "t", Ctrl: true}, "Ctrl+T", true},
		{"ctrl t uppercase", KeyStroke{Key: "T", Ctrl: true}, "Ctrl+T", true},
		{"ctrl w", KeyStroke{Key: "w", Ctrl: true}, "Ctrl+W", true},
		{"ctrl n", KeyStroke{Key: "n", Ctrl: true}, "Ctrl+N", true},
		{"f5", KeyStroke{Key: "F5"}, "F5", true},
		{"ctrl r", KeyStroke{Key: "r", Ctrl: true}, "Ctrl+R", true},
		{"f12", KeyStroke{Key: "f12"}, "F12", true},
		{"devtools inspect", KeyStroke{Key: "i", Ctrl: true, Shift: true}, "Ctrl+Shift+I", true},
		{"view source", KeyStroke{Key: "u", Ctrl: true}, "Ctrl+U", true},
		{"console", KeyStroke{Key: "j", Ctrl: true, Shift: true}, "Ctrl+Shift+J", true},
		{"element picker", KeyStroke{Key: "c", Ctrl: true, Shift: true}, "Ctrl+Shift+C", true},
		{"plain t", KeyStroke{Key: "t"}, "", false},
		{"plain tab", KeyStroke{Key: "tab"}, "", false},
		{"ctrl c not prohibited", KeyStroke{Key: "c", Ctrl: true}, "", false},
		{"extra modifier breaks match", KeyStroke{Key: "t", Ctrl: true, Alt: true}, "", false},
		{"meta breaks match", KeyStroke{Key: "t", Ctrl: true, Meta: true}, "", false},
		{"meta tab not prohibited", KeyStroke{Key: "tab", Meta: true}, "", false},
		{"shift only i", KeyStroke{Key: "i", Shift: true}, "", false},
		{"f5 with ctrl", KeyStroke{Key: "f5", Ctrl: true}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchProhibited(tt.ks)
			if ok != tt.matched {
				t.Fatalf("MatchProhibited(%+v) matched = %v, want %v", tt.ks, ok, tt.matched)
			}
			if got != tt.want {
				t.Errorf("MatchProhibited(%+v) = %q, want %q", tt.ks, got, tt.want)
			}
		})
	}
}

func TestKeyStrokeFromEvent(t *testing.T) {
	ev := Event{
		Kind: KindKeyDown,
		Detail: map[string]any{
			"key":   "tab",
			"ctrl":  true,
			"shift": true,
		},
	}

	ks := KeyStrokeFromEvent(ev)
	if ks.Key != "tab" || !ks.Ctrl || !ks.Shift || ks.Alt || ks.Meta {
		t.Errorf("unexpected key stroke: %+v", ks)
	}

	// Missing or mistyped fields default to zero values.
	ks = KeyStrokeFromEvent(Event{Kind: KindKeyDown, Detail: map[string]any{"key": 42, "ctrl": "yes"}})
	if ks.Key != "" || ks.Ctrl {
		t.Errorf("expected zero key stroke, got %+v", ks)
	}
}

func TestCategoryValid(t *testing.T) {
	for _, cat := range Categories() {
		if !cat.Valid() {
			t.Errorf("category %s should be valid", cat)
		}
	}
	if Category("mouse_jiggle").Valid() {
		t.Error("unknown category should not be valid")
	}
}

func TestKindValid(t *testing.T) {
	for _, k := range Kinds() {
		if !k.Valid() {
			t.Errorf("kind %s should be valid", k)
		}
	}
	if Kind("page_scroll").Valid() {
		t.Error("unknown kind should not be valid")
	}
}
