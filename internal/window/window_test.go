package window

import (
	"math"
	"testing"
	"time"

	"github.com/blackwell-systems/flowwatch/internal/signal"
)

var base = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newTestAggregator() (*signal.Collector, *Aggregator) {
	c := signal.NewCollector(0, 0)
	a := NewAggregator(c, 10*time.Second, 10)
	a.Reset(base)
	return c, a
}

func TestTick_TypingRates(t *testing.T) {
	c, a := newTestAggregator()

	// 12 keys in a 10s window scale to 72/min; 3 of them are corrections.
	for i := 0; i < 9; i++ {
		c.Record(signal.Event{Kind: signal.KeyDown, Key: "a", Time: base.Add(time.Duration(i) * time.Second)})
	}
	for i := 0; i < 3; i++ {
		c.Record(signal.Event{Kind: signal.KeyDown, Key: "Backspace", Time: base.Add(9 * time.Second)})
	}

	snap := a.Tick(base.Add(10 * time.Second))
	if snap.TypingRate != 72 {
		t.Errorf("typing rate = %v, want 72", snap.TypingRate)
	}
	if snap.BackspaceRate != 18 {
		t.Errorf("backspace rate = %v, want 18", snap.BackspaceRate)
	}
	if snap.IdleSeconds != 1 {
		t.Errorf("idle = %v, want 1 (last key at t+9s, tick at t+10s)", snap.IdleSeconds)
	}
}

func TestTick_PointerDistanceNormalized(t *testing.T) {
	c, a := newTestAggregator()

	// Path (0,0) -> (30,40) -> (30,140): lengths 50 + 100 = 150, norm 10 -> 15.
	c.Record(signal.Event{Kind: signal.PointerMove, X: 0, Y: 0, Time: base})
	c.Record(signal.Event{Kind: signal.PointerMove, X: 30, Y: 40, Time: base.Add(time.Second)})
	c.Record(signal.Event{Kind: signal.PointerMove, X: 30, Y: 140, Time: base.Add(2 * time.Second)})

	snap := a.Tick(base.Add(10 * time.Second))
	if math.Abs(snap.PointerDistance-15) > 1e-9 {
		t.Errorf("pointer distance = %v, want 15", snap.PointerDistance)
	}
}

func TestTick_EmptyWindowIsIdempotent(t *testing.T) {
	_, a := newTestAggregator()

	snap := a.Tick(base.Add(10 * time.Second))
	if snap.TypingRate != 0 || snap.BackspaceRate != 0 || snap.TabSwitches != 0 || snap.PointerDistance != 0 {
		t.Errorf("expected all-zero snapshot for empty window, got %+v", snap)
	}
	if snap.IdleSeconds != 10 {
		t.Errorf("idle = %v, want 10 (since session start)", snap.IdleSeconds)
	}

	// Idle keeps growing across empty windows.
	next := a.Tick(base.Add(20 * time.Second))
	if next.IdleSeconds <= snap.IdleSeconds {
		t.Errorf("idle should be non-decreasing across empty windows: %v then %v", snap.IdleSeconds, next.IdleSeconds)
	}
}

func TestTick_ResetsCountersBetweenWindows(t *testing.T) {
	c, a := newTestAggregator()

	c.Record(signal.Event{Kind: signal.KeyDown, Key: "a", Time: base.Add(time.Second)})
	c.Record(signal.Event{Kind: signal.WindowBlur, Time: base.Add(2 * time.Second)})

	first := a.Tick(base.Add(10 * time.Second))
	if first.TypingRate != 6 || first.TabSwitches != 1 {
		t.Fatalf("unexpected first snapshot: %+v", first)
	}

	second := a.Tick(base.Add(20 * time.Second))
	if second.TypingRate != 0 || second.TabSwitches != 0 {
		t.Errorf("counters must reset between windows, got %+v", second)
	}
	if second.IdleSeconds != 19 {
		t.Errorf("idle = %v, want 19 (last key at t+1s)", second.IdleSeconds)
	}
}

func TestTick_SnapshotFieldsNonNegative(t *testing.T) {
	c, a := newTestAggregator()
	c.Record(signal.Event{Kind: signal.KeyDown, Key: "a", Time: base.Add(15 * time.Second)})

	// Tick time earlier than the last event clamps idle at zero rather than
	// producing a negative field.
	snap := a.Tick(base.Add(10 * time.Second))
	if snap.IdleSeconds < 0 {
		t.Errorf("idle must be non-negative, got %v", snap.IdleSeconds)
	}
}
