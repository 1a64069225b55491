// Package intervene decides when a metrics snapshot warrants a wellness
// intervention. Rules are checked in a fixed priority order and at most one
// intervention is produced per tick.
package intervene

import (
	"time"

	"github.com/blackwell-systems/flowwatch/internal/window"
)

// Kind identifies the intervention type.
type Kind string

const (
	Fatigue     Kind = "fatigue"
	EyeStrain   Kind = "eye_strain"
	Distraction Kind = "distraction"
	Generic     Kind = "generic"
)

// Event is one triggered intervention.
type Event struct {
	Kind        Kind      `json:"kind"`
	Reason      string    `json:"reason"`
	TriggeredAt time.Time `json:"triggered_at"`
}

// Rule inspects one snapshot+score pair and either triggers or returns nil.
type Rule func(s window.Snapshot, score float64) *Event

// rules is the fixed-priority rule order. First match wins.
var rules = []Rule{
	fatigueRule,
	eyeStrainRule,
	distractionRule,
}

// Evaluate runs the rules in priority order against one tick's snapshot and
// score. It is stateless; suppression of repeated triggers belongs to the
// consumer.
func Evaluate(s window.Snapshot, score float64) *Event {
	for _, rule := range rules {
		if ev := rule(s, score); ev != nil {
			ev.TriggeredAt = s.TakenAt
			return ev
		}
	}
	return nil
}

// fatigueRule fires on slow, error-heavy typing: low throughput combined
// with a high correction rate.
func fatigueRule(s window.Snapshot, _ float64) *Event {
	if s.TypingRate < 30 && s.BackspaceRate > 12 {
		return &Event{
			Kind:   Fatigue,
			Reason: "signs of fatigue detected",
		}
	}
	return nil
}

// eyeStrainRule fires on sustained high focus with no breaks.
func eyeStrainRule(s window.Snapshot, score float64) *Event {
	if s.IdleSeconds < 2 && score > 70 {
		return &Event{
			Kind:   EyeStrain,
			Reason: "sustained high focus — apply 20-20-20 rule",
		}
	}
	return nil
}

// distractionRule fires on heavy tab switching.
func distractionRule(s window.Snapshot, _ float64) *Event {
	if s.TabSwitches > 15 {
		return &Event{
			Kind:   Distraction,
			Reason: "high distraction detected — breathing suggested",
		}
	}
	return nil
}
