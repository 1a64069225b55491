package signal

import (
	"sync"
	"time"
)

// Default buffer bounds.
const (
	DefaultKeyTimeCap = 100
	DefaultPointerCap = 50
)

// PointerSample is one recorded pointer position.
type PointerSample struct {
	X, Y float64
	Time time.Time
}

// WindowData is the raw material drained by the aggregation window at the
// end of each period. Draining resets the per-window counters but leaves the
// keystroke-timestamp buffer intact (typing rhythm spans windows).
type WindowData struct {
	Keys         int
	Backspaces   int
	TabSwitches  int
	Pointer      []PointerSample
	LastActivity time.Time
}

// Collector accumulates raw interaction events for the current window.
// Record never blocks and never errors; it is safe to call at arbitrary
// event rates from multiple goroutines.
type Collector struct {
	mu           sync.Mutex
	keys         int
	backspaces   int
	tabSwitches  int
	lastActivity time.Time
	keyTimes     *Ring[time.Time]
	pointer      *Ring[PointerSample]
}

// NewCollector creates a collector with the given buffer capacities.
// Non-positive capacities fall back to the defaults.
func NewCollector(keyTimeCap, pointerCap int) *Collector {
	if keyTimeCap <= 0 {
		keyTimeCap = DefaultKeyTimeCap
	}
	if pointerCap <= 0 {
		pointerCap = DefaultPointerCap
	}
	return &Collector{
		keyTimes: NewRing[time.Time](keyTimeCap),
		pointer:  NewRing[PointerSample](pointerCap),
	}
}

// Record accumulates one event. Malformed events are discarded silently.
func (c *Collector) Record(ev Event) {
	if !ev.Valid() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Kind {
	case KeyDown:
		c.keys++
		if backspaceKeys[ev.Key] {
			c.backspaces++
		}
		c.keyTimes.Push(ev.Time)
		c.lastActivity = ev.Time
	case PointerMove:
		c.pointer.Push(PointerSample{X: ev.X, Y: ev.Y, Time: ev.Time})
		c.lastActivity = ev.Time
	case PointerClick:
		c.lastActivity = ev.Time
	case VisibilityChange:
		if ev.Hidden {
			c.tabSwitches++
		}
	case WindowBlur:
		c.tabSwitches++
	}
}

// DrainWindow returns the accumulated window data and resets the per-window
// state: key, backspace and tab-switch counters and the pointer buffer.
// Keystroke timestamps are kept — they are bounded only by their own cap.
func (c *Collector) DrainWindow() WindowData {
	c.mu.Lock()
	defer c.mu.Unlock()

	data := WindowData{
		Keys:         c.keys,
		Backspaces:   c.backspaces,
		TabSwitches:  c.tabSwitches,
		Pointer:      c.pointer.Items(),
		LastActivity: c.lastActivity,
	}

	c.keys = 0
	c.backspaces = 0
	c.tabSwitches = 0
	c.pointer.Reset()

	return data
}

// KeyTimes returns a copy of the recorded keystroke timestamps in arrival order.
func (c *Collector) KeyTimes() []time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keyTimes.Items()
}

// LastActivity returns the timestamp of the most recent input event, or the
// zero time if nothing has been recorded.
func (c *Collector) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActivity
}

// Reset clears all counters and buffers. Called when a session ends.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = 0
	c.backspaces = 0
	c.tabSwitches = 0
	c.lastActivity = time.Time{}
	c.keyTimes.Reset()
	c.pointer.Reset()
}
