// Package trace provides a JSON-lines encoding of host events, a scripted
// host implementation for replay and bridging, and a deterministic player
// that drives the engine through a virtual clock.
package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/examwatch/examwatch/internal/signal"
)

// Event is one line of a host trace. OffsetMS is the event's delivery time
// relative to the start of the trace.
type Event struct {
	Kind     signal.Kind    `json:"kind"`
	OffsetMS int64          `json:"offset_ms"`
	Detail   map[string]any `json:"detail,omitempty"`
}

// DecodeLine parses a single trace line.
func DecodeLine(line []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(line, &ev); err != nil {
		return Event{}, fmt.Errorf("malformed trace line: %w", err)
	}
	if !ev.Kind.Valid() {
		return Event{}, fmt.Errorf("unknown event kind: %q", ev.Kind)
	}
	if ev.OffsetMS < 0 {
		return Event{}, fmt.Errorf("negative offset: %d", ev.OffsetMS)
	}
	return ev, nil
}

// Decode reads a full trace. Blank lines and #-comments are skipped.
func Decode(r io.Reader) ([]Event, error) {
	events := make([]Event, 0)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ev, err := DecodeLine([]byte(line))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	return events, nil
}
