package session

import (
	"github.com/blackwell-systems/flowwatch/internal/signal"
	"github.com/blackwell-systems/flowwatch/internal/window"
)

// History keeps bounded per-metric sample series for charting. Each series
// holds the last N values, oldest first.
type History struct {
	typingRate      *signal.Ring[float64]
	backspaceRate   *signal.Ring[float64]
	pointerDistance *signal.Ring[float64]
	tabSwitches     *signal.Ring[float64]
	idleSeconds     *signal.Ring[float64]
	scores          *signal.Ring[float64]
}

// HistoryView is a copy of the history series handed to readers.
type HistoryView struct {
	TypingRate      []float64 `json:"typing_rate"`
	BackspaceRate   []float64 `json:"backspace_rate"`
	PointerDistance []float64 `json:"pointer_distance"`
	TabSwitches     []float64 `json:"tab_switches"`
	IdleSeconds     []float64 `json:"idle_seconds"`
	Scores          []float64 `json:"scores"`
}

// NewHistory creates history series capped at the given length.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCap
	}
	return &History{
		typingRate:      signal.NewRing[float64](capacity),
		backspaceRate:   signal.NewRing[float64](capacity),
		pointerDistance: signal.NewRing[float64](capacity),
		tabSwitches:     signal.NewRing[float64](capacity),
		idleSeconds:     signal.NewRing[float64](capacity),
		scores:          signal.NewRing[float64](capacity),
	}
}

// Append records one tick's snapshot and score.
func (h *History) Append(s window.Snapshot, score float64) {
	h.typingRate.Push(s.TypingRate)
	h.backspaceRate.Push(s.BackspaceRate)
	h.pointerDistance.Push(s.PointerDistance)
	h.tabSwitches.Push(float64(s.TabSwitches))
	h.idleSeconds.Push(s.IdleSeconds)
	h.scores.Push(score)
}

// Reset clears all series.
func (h *History) Reset() {
	h.typingRate.Reset()
	h.backspaceRate.Reset()
	h.pointerDistance.Reset()
	h.tabSwitches.Reset()
	h.idleSeconds.Reset()
	h.scores.Reset()
}

// View returns copies of every series.
func (h *History) View() HistoryView {
	return HistoryView{
		TypingRate:      h.typingRate.Items(),
		BackspaceRate:   h.backspaceRate.Items(),
		PointerDistance: h.pointerDistance.Items(),
		TabSwitches:     h.tabSwitches.Items(),
		IdleSeconds:     h.idleSeconds.Items(),
		Scores:          h.scores.Items(),
	}
}
