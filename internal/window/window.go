// Package window turns the signal collector's raw counters into normalized
// per-window metric snapshots on a fixed cadence.
package window

import (
	"math"
	"time"

	"github.com/blackwell-systems/flowwatch/internal/signal"
)

// Defaults for the aggregation cadence.
const (
	DefaultPeriod      = 10 * time.Second
	DefaultPointerNorm = 10.0
)

// Snapshot is one immutable per-window metrics capture. All fields are
// non-negative. It is consumed by the scorer and the intervention policy
// and then discarded.
type Snapshot struct {
	// TypingRate is keystrokes per minute over the window.
	TypingRate float64 `json:"typing_rate"`

	// BackspaceRate is backspace/delete presses per minute, treated as an
	// error rate.
	BackspaceRate float64 `json:"backspace_rate"`

	// PointerDistance is the normalized pointer path length for the window.
	PointerDistance float64 `json:"pointer_distance"`

	// TabSwitches counts visibility-loss and blur events in the window.
	TabSwitches int `json:"tab_switches"`

	// IdleSeconds is the time since the last observed input at tick time.
	IdleSeconds float64 `json:"idle_seconds"`

	// TakenAt is the tick time the snapshot was produced at.
	TakenAt time.Time `json:"taken_at"`
}

// Aggregator drains a collector into snapshots. It is not safe for
// concurrent use; the session manager owns it and ticks it from one place.
type Aggregator struct {
	collector   *signal.Collector
	period      time.Duration
	pointerNorm float64
	baseline    time.Time // idle reference before any input arrives
}

// NewAggregator creates an aggregator over the given collector. Non-positive
// period or norm fall back to the defaults.
func NewAggregator(c *signal.Collector, period time.Duration, pointerNorm float64) *Aggregator {
	if period <= 0 {
		period = DefaultPeriod
	}
	if pointerNorm <= 0 {
		pointerNorm = DefaultPointerNorm
	}
	return &Aggregator{collector: c, period: period, pointerNorm: pointerNorm}
}

// Period returns the aggregation period.
func (a *Aggregator) Period() time.Duration { return a.period }

// Reset stamps the idle baseline. Called when a session starts so that a
// session with no input yet reports idle time since the session began.
func (a *Aggregator) Reset(now time.Time) {
	a.baseline = now
}

// Tick drains the collector and produces the snapshot for the window ending
// at now. An empty window yields zero rates and a growing idle time.
func (a *Aggregator) Tick(now time.Time) Snapshot {
	data := a.collector.DrainWindow()

	perMinute := 60.0 / a.period.Seconds()

	last := data.LastActivity
	if last.IsZero() {
		last = a.baseline
	}
	idle := now.Sub(last).Seconds()
	if idle < 0 || last.IsZero() {
		idle = 0
	}

	return Snapshot{
		TypingRate:      float64(data.Keys) * perMinute,
		BackspaceRate:   float64(data.Backspaces) * perMinute,
		PointerDistance: pathDistance(data.Pointer) / a.pointerNorm,
		TabSwitches:     data.TabSwitches,
		IdleSeconds:     idle,
		TakenAt:         now,
	}
}

// pathDistance sums the Euclidean distances between consecutive samples.
func pathDistance(samples []signal.PointerSample) float64 {
	total := 0.0
	for i := 1; i < len(samples); i++ {
		dx := samples[i].X - samples[i-1].X
		dy := samples[i].Y - samples[i-1].Y
		total += math.Hypot(dx, dy)
	}
	return total
}
