package signal

// LeavePrompt is the confirmation text requested from the host when the
// candidate attempts to navigate away mid-session.
const LeavePrompt = "Are you sure you want to leave? Your exam session is being monitored."

// Adapter translates one host event channel into canonical raw signals.
// Adapters emit at most one signal per discrete host event and perform no
// debouncing or counting themselves.
type Adapter interface {
	Name() string
	Attach(h Host) error
	Detach()
}

// bindAll binds every handler or none: a failed Bind unwinds the bindings
// made so far and returns the error.
func bindAll(h Host, binds []struct {
	kind Kind
	fn   func(Event)
}) ([]func(), error) {
	unbinds := make([]func(), 0, len(binds))
	for _, b := range binds {
		unbind, err := h.Bind(b.kind, b.fn)
		if err != nil {
			for _, u := range unbinds {
				u()
			}
			return nil, err
		}
		unbinds = append(unbinds, unbind)
	}
	return unbinds, nil
}

func detachAll(unbinds *[]func()) {
	for _, u := range *unbinds {
		u()
	}
	*unbinds = nil
}

// VisibilityAdapter reports document hidden/visible transitions. A hidden
// document during an exam is committed as a tab switch once the debounce
// window confirms it.
type VisibilityAdapter struct {
	sink    Sink
	unbinds []func()
}

func NewVisibilityAdapter(sink Sink) *VisibilityAdapter {
	return &VisibilityAdapter{sink: sink}
}

func (a *VisibilityAdapter) Name() string { return "visibility" }

func (a *VisibilityAdapter) Attach(h Host) error {
	unbinds, err := bindAll(h, []struct {
		kind Kind
		fn   func(Event)
	}{
		{KindVisibilityHidden, a.onHidden},
		{KindVisibilityVisible, a.onVisible},
	})
	if err != nil {
		return err
	}
	a.unbinds = unbinds
	return nil
}

func (a *VisibilityAdapter) Detach() { detachAll(&a.unbinds) }

func (a *VisibilityAdapter) onHidden(ev Event) {
	a.sink.Candidate(RawSignal{
		Category:   CategoryTabSwitch,
		ObservedAt: ev.At,
		Details:    map[string]any{"reason": "document hidden"},
	})
}

func (a *VisibilityAdapter) onVisible(Event) {
	a.sink.Recovered(CategoryTabSwitch)
}

// FocusAdapter reports window blur/focus transitions.
type FocusAdapter struct {
	sink    Sink
	unbinds []func()
}

func NewFocusAdapter(sink Sink) *FocusAdapter {
	return &FocusAdapter{sink: sink}
}

func (a *FocusAdapter) Name() string { return "focus" }

func (a *FocusAdapter) Attach(h Host) error {
	unbinds, err := bindAll(h, []struct {
		kind Kind
		fn   func(Event)
	}{
		{KindWindowBlur, a.onBlur},
		{KindWindowFocus, a.onFocus},
	})
	if err != nil {
		return err
	}
	a.unbinds = unbinds
	return nil
}

func (a *FocusAdapter) Detach() { detachAll(&a.unbinds) }

func (a *FocusAdapter) onBlur(ev Event) {
	a.sink.Candidate(RawSignal{
		Category:   CategoryFocusLoss,
		ObservedAt: ev.At,
		Details:    map[string]any{"reason": "window blurred"},
	})
}

func (a *FocusAdapter) onFocus(Event) {
	a.sink.Recovered(CategoryFocusLoss)
}

// ContextMenuAdapter reports secondary-pointer-button requests. The host's
// default context menu is suppressed synchronously, before the signal is
// emitted.
type ContextMenuAdapter struct {
	sink    Sink
	unbinds []func()
}

func NewContextMenuAdapter(sink Sink) *ContextMenuAdapter {
	return &ContextMenuAdapter{sink: sink}
}

func (a *ContextMenuAdapter) Name() string { return "context-menu" }

func (a *ContextMenuAdapter) Attach(h Host) error {
	unbinds, err := bindAll(h, []struct {
		kind Kind
		fn   func(Event)
	}{
		{KindContextMenu, a.onContextMenu},
	})
	if err != nil {
		return err
	}
	a.unbinds = unbinds
	return nil
}

func (a *ContextMenuAdapter) Detach() { detachAll(&a.unbinds) }

func (a *ContextMenuAdapter) onContextMenu(ev Event) {
	if ev.Cancel != nil {
		ev.Cancel()
	}
	a.sink.Candidate(RawSignal{
		Category:   CategoryContextMenu,
		ObservedAt: ev.At,
		Details:    map[string]any{"reason": "context menu requested"},
	})
}

// NavigationAdapter intercepts navigation-away attempts. It only asks the
// host for leave confirmation; navigation attempts are never counted as
// ledger violations.
type NavigationAdapter struct {
	unbinds []func()
}

func NewNavigationAdapter() *NavigationAdapter {
	return &NavigationAdapter{}
}

func (a *NavigationAdapter) Name() string { return "navigation" }

func (a *NavigationAdapter) Attach(h Host) error {
	unbinds, err := bindAll(h, []struct {
		kind Kind
		fn   func(Event)
	}{
		{KindBeforeUnload, a.onBeforeUnload},
	})
	if err != nil {
		return err
	}
	a.unbinds = unbinds
	return nil
}

func (a *NavigationAdapter) Detach() { detachAll(&a.unbinds) }

func (a *NavigationAdapter) onBeforeUnload(ev Event) {
	if ev.Confirm != nil {
		ev.Confirm(LeavePrompt)
	}
}
