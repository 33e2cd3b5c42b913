package trace

import (
	"sort"
	"time"

	"github.com/examwatch/examwatch/internal/debounce"
)

// Player replays a trace deterministically: events are delivered in offset
// order against a manual scheduler, so debounce windows and the settle delay
// elapse in virtual time.
type Player struct {
	host  *ScriptedHost
	sched *debounce.ManualScheduler
	start time.Time
}

// NewPlayer creates a player whose virtual clock starts at start.
func NewPlayer(start time.Time) *Player {
	return &Player{
		host:  NewScriptedHost(),
		sched: debounce.NewManualScheduler(start),
		start: start,
	}
}

// Host returns the scripted host to hand to the monitor.
func (p *Player) Host() *ScriptedHost { return p.host }

// Scheduler returns the virtual scheduler to hand to the monitor.
func (p *Player) Scheduler() *debounce.ManualScheduler { return p.sched }

// Run delivers every event at its offset, then advances by tail so pending
// confirmation windows and settle delays can fire.
func (p *Player) Run(events []Event, tail time.Duration) {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OffsetMS < sorted[j].OffsetMS
	})

	for _, ev := range sorted {
		at := p.start.Add(time.Duration(ev.OffsetMS) * time.Millisecond)
		if d := at.Sub(p.sched.Now()); d > 0 {
			p.sched.Advance(d)
		}
		p.host.Deliver(ev.Kind, at, ev.Detail)
	}

	if tail > 0 {
		p.sched.Advance(tail)
	}
}
