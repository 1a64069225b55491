// Package signal collects raw interaction events (keystrokes, pointer
// movement, visibility changes) into bounded counters and sample buffers
// for the aggregation window to drain.
package signal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Kind identifies an interaction event type.
type Kind string

// The five event kinds the collector understands.
const (
	KeyDown          Kind = "key_down"
	PointerMove      Kind = "pointer_move"
	PointerClick     Kind = "pointer_click"
	VisibilityChange Kind = "visibility_change"
	WindowBlur       Kind = "window_blur"
)

// Event is a single raw interaction event as delivered by the event source.
type Event struct {
	Kind Kind      `json:"kind"`
	Time time.Time `json:"time"`

	// Key is the key name for KeyDown events ("a", "Backspace", ...).
	Key string `json:"key,omitempty"`

	// X, Y is the pointer position for PointerMove and PointerClick events.
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`

	// Hidden is true for VisibilityChange events that hide the page.
	Hidden bool `json:"hidden,omitempty"`
}

// backspaceKeys are the key names counted toward the error rate.
var backspaceKeys = map[string]bool{
	"Backspace": true,
	"Delete":    true,
}

// Valid reports whether the event is well-formed enough to record. Invalid
// events are discarded silently by the collector so that malformed payloads
// cannot corrupt counters.
func (e Event) Valid() bool {
	if e.Time.IsZero() {
		return false
	}
	switch e.Kind {
	case KeyDown, VisibilityChange, WindowBlur:
		return true
	case PointerMove, PointerClick:
		return e.X >= 0 && e.Y >= 0
	default:
		return false
	}
}

// DecodeEvents reads a JSONL event stream, one event object per line.
// Blank lines are skipped; a malformed line aborts the decode with the
// line number in the error.
func DecodeEvents(r io.Reader) ([]Event, error) {
	var events []Event
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading events: %w", err)
	}
	return events, nil
}

// EncodeEvents writes events as JSONL, one object per line.
func EncodeEvents(w io.Writer, events []Event) error {
	enc := json.NewEncoder(w)
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return fmt.Errorf("encoding event: %w", err)
		}
	}
	return nil
}
