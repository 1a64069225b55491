// Package score maps metric snapshots to a bounded 0-100 flow score.
package score

import (
	"math"
	"time"

	"github.com/blackwell-systems/flowwatch/internal/window"
)

// Baseline is the starting score before any rule fires.
const Baseline = 50.0

// Rhythm bonus parameters: +5 when at least MinRhythmSamples inter-key
// intervals have a standard deviation under RhythmStdDevMs.
const (
	MinRhythmSamples = 5
	RhythmStdDevMs   = 100.0
	RhythmBonus      = 5.0
)

// LongIdleSeconds is the harsher second idle horizon applied outside the
// rule ladder.
const (
	LongIdleSeconds = 60.0
	LongIdlePenalty = 15.0
)

// Compute calculates the flow score for one snapshot. Each rule is evaluated
// independently and summed onto the baseline, then clamped to [0, 100].
//
// Rule ladder:
//   - Typing rate:      >60/min +15, >40/min +10, <20/min -10
//   - Tab switches:     <3 +15, >10 -20
//   - Pointer activity: 20-80 +10, >150 -15
//   - Backspace rate:   <5/min +10, >15/min -15
//   - Idle time:        <5s +5, >30s -20
//
// Bonuses that reward low interruption and low error counts require typing
// evidence: a window with no keystrokes has no tab switches and no errors
// either, and scores baseline rather than being rewarded for inactivity.
// Penalties always apply.
func Compute(s window.Snapshot) float64 {
	total := Baseline
	typed := s.TypingRate > 0

	switch {
	case s.TypingRate > 60:
		total += 15
	case s.TypingRate > 40:
		total += 10
	case typed && s.TypingRate < 20:
		total -= 10
	}

	switch {
	case s.TabSwitches > 10:
		total -= 20
	case typed && s.TabSwitches < 3:
		total += 15
	}

	switch {
	case s.PointerDistance > 20 && s.PointerDistance < 80:
		total += 10
	case s.PointerDistance > 150:
		total -= 15
	}

	switch {
	case s.BackspaceRate > 15:
		total -= 15
	case typed && s.BackspaceRate < 5:
		total += 10
	}

	switch {
	case s.IdleSeconds < 5:
		total += 5
	case s.IdleSeconds > 30:
		total -= 20
	}

	return Clamp(total)
}

// Adjust applies the cross-tick adjustments the pure ladder cannot see: the
// typing-rhythm bonus and the long-idle penalty. The result is clamped to
// [0, 100].
func Adjust(base, rhythmStdDevMs float64, rhythmSamples int, idleSeconds float64) float64 {
	total := base
	if rhythmSamples >= MinRhythmSamples && rhythmStdDevMs < RhythmStdDevMs {
		total += RhythmBonus
	}
	if idleSeconds > LongIdleSeconds {
		total -= LongIdlePenalty
	}
	return Clamp(total)
}

// InterKeyStdDev computes the standard deviation of inter-keystroke
// intervals in milliseconds, along with the number of intervals used.
func InterKeyStdDev(times []time.Time) (stdDevMs float64, intervals int) {
	if len(times) < 2 {
		return 0, 0
	}

	gaps := make([]float64, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		gaps = append(gaps, float64(times[i].Sub(times[i-1]).Milliseconds()))
	}

	mean := 0.0
	for _, g := range gaps {
		mean += g
	}
	mean /= float64(len(gaps))

	variance := 0.0
	for _, g := range gaps {
		d := g - mean
		variance += d * d
	}
	variance /= float64(len(gaps))

	return math.Sqrt(variance), len(gaps)
}

// Clamp bounds a score to [0, 100].
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
