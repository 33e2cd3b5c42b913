// Package signal defines the canonical violation signals and the host port
// through which adapters bind to the embedding environment.
package signal

import "time"

// Category classifies a proctoring violation. The set is closed: adding a
// category requires an explicit escalation policy entry.
type Category string

const (
	CategoryTabSwitch        Category = "tab_switch"
	CategoryVisibilityChange Category = "visibility_change"
	CategoryFocusLoss        Category = "focus_loss"
	CategoryContextMenu      Category = "context_menu"
	CategoryKeyboardShortcut Category = "keyboard_shortcut"
)

// Categories returns all known categories in stable order.
func Categories() []Category {
	return []Category{
		CategoryTabSwitch,
		CategoryVisibilityChange,
		CategoryFocusLoss,
		CategoryContextMenu,
		CategoryKeyboardShortcut,
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryTabSwitch, CategoryVisibilityChange, CategoryFocusLoss,
		CategoryContextMenu, CategoryKeyboardShortcut:
		return true
	}
	return false
}

// Label returns a human-readable name for the category, used in warning
// messages and CLI output.
func (c Category) Label() string {
	switch c {
	case CategoryTabSwitch:
		return "tab switch"
	case CategoryVisibilityChange:
		return "visibility change"
	case CategoryFocusLoss:
		return "focus loss"
	case CategoryContextMenu:
		return "context menu"
	case CategoryKeyboardShortcut:
		return "prohibited keyboard shortcut"
	}
	return string(c)
}

// RawSignal is one normalized candidate violation emitted by an adapter.
// Raw signals are ephemeral: they are either discarded by the debounce gate
// or committed to the ledger, never stored.
type RawSignal struct {
	Category   Category
	ObservedAt time.Time
	Details    map[string]any
}
