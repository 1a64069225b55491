// Package session owns the Idle/Monitoring state machine. The manager wires
// the collector, aggregation window, scorer, intervention policy and
// attention estimator together, keeps bounded metric history for charting,
// and syncs the session record to the external store on every tick.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/blackwell-systems/flowwatch/internal/attention"
	"github.com/blackwell-systems/flowwatch/internal/clock"
	"github.com/blackwell-systems/flowwatch/internal/intervene"
	"github.com/blackwell-systems/flowwatch/internal/score"
	"github.com/blackwell-systems/flowwatch/internal/signal"
	"github.com/blackwell-systems/flowwatch/internal/window"
)

// State is the lifecycle state of the manager.
type State int

const (
	Idle State = iota
	Monitoring
)

// String returns the state name.
func (s State) String() string {
	if s == Monitoring {
		return "monitoring"
	}
	return "idle"
}

// DefaultHistoryCap bounds the per-metric history kept for charting.
const DefaultHistoryCap = 30

// persistTimeout bounds each fire-and-forget store call.
const persistTimeout = 5 * time.Second

// Update is the payload synced to the external session record on each tick.
type Update struct {
	DurationSeconds float64
	Score           float64
	Snapshot        window.Snapshot
}

// Store is the external session persistence collaborator. Failures are
// non-fatal: the manager logs and continues, and the next tick is a fresh
// attempt.
type Store interface {
	CreateSession(ctx context.Context, startedAt time.Time) (int64, error)
	UpdateSession(ctx context.Context, id int64, update Update) error
	EndSession(ctx context.Context, id int64, endedAt time.Time) error
}

// Manager owns all engine state for the lifetime of one monitoring period.
// One logical writer at a time: ticks execute serially, readers get copies.
type Manager struct {
	mu sync.Mutex

	clockSrc  clock.Clock
	store     Store
	collector *signal.Collector
	agg       *window.Aggregator
	estimator *attention.Estimator // nil when the estimator is inactive

	state        State
	sessionID    int64
	startedAt    time.Time
	lastSnapshot window.Snapshot
	lastScore    float64
	active       *intervene.Event
	lastTrigger  string // dedup key: suppress identical repeated triggers

	history *History

	// Logf receives persistence warnings and lifecycle notes. Defaults to a
	// no-op so the engine never writes anywhere uninvited.
	Logf func(format string, args ...any)

	// OnTick, when set, is called after each tick with the snapshot and the
	// published score.
	OnTick func(window.Snapshot, float64)

	// OnIntervention, when set, is called once per newly triggered
	// intervention.
	OnIntervention func(intervene.Event)

	// pending tracks in-flight persistence calls so Stop can wait for them
	// in tests; updates themselves are fire-and-forget.
	pending sync.WaitGroup
}

// Config carries the manager's construction parameters.
type Config struct {
	Clock      clock.Clock
	Store      Store
	Collector  *signal.Collector
	Aggregator *window.Aggregator
	Estimator  *attention.Estimator
	HistoryCap int
}

// NewManager creates an Idle manager. Clock defaults to the system clock,
// history capacity to DefaultHistoryCap.
func NewManager(cfg Config) *Manager {
	if cfg.Clock == nil {
		cfg.Clock = clock.System()
	}
	if cfg.HistoryCap <= 0 {
		cfg.HistoryCap = DefaultHistoryCap
	}
	return &Manager{
		clockSrc:  cfg.Clock,
		store:     cfg.Store,
		collector: cfg.Collector,
		agg:       cfg.Aggregator,
		estimator: cfg.Estimator,
		history:   NewHistory(cfg.HistoryCap),
		Logf:      func(string, ...any) {},
	}
}

// Start transitions Idle -> Monitoring: requests an external session id,
// resets all buffers, and stamps the session start. Starting an already
// monitoring manager is a no-op.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == Monitoring {
		return nil
	}

	now := m.clockSrc.Now()

	if m.store != nil {
		id, err := m.store.CreateSession(ctx, now)
		if err != nil {
			return err
		}
		m.sessionID = id
	}

	m.collector.Reset()
	m.agg.Reset(now)
	m.history.Reset()
	m.startedAt = now
	m.lastSnapshot = window.Snapshot{}
	m.lastScore = 0
	m.active = nil
	m.lastTrigger = ""
	m.state = Monitoring
	return nil
}

// Stop transitions Monitoring -> Idle: clears the session id and buffers.
// Idempotent; stopping an Idle manager is a no-op, not an error.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.state == Idle {
		m.mu.Unlock()
		return
	}

	id := m.sessionID
	now := m.clockSrc.Now()
	m.state = Idle
	m.sessionID = 0
	m.active = nil
	m.lastTrigger = ""
	m.collector.Reset()
	store := m.store
	logf := m.Logf
	m.mu.Unlock()

	if store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := store.EndSession(ctx, id, now); err != nil {
			logf("ending session %d: %v", id, err)
		}
	}
}

// Run blocks, ticking the aggregation window on its period until ctx is
// cancelled. The manager must be Monitoring.
func (m *Manager) Run(ctx context.Context) error {
	ticker := m.clockSrc.NewTicker(m.agg.Period())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.pending.Wait()
			return ctx.Err()
		case now := <-ticker.C():
			m.Step(now)
		}
	}
}

// Step runs one aggregation tick: snapshot, score, intervention evaluation,
// history append, and an asynchronous persistence update. Exposed so tests
// and the replay command can drive the engine with virtual time.
func (m *Manager) Step(now time.Time) {
	m.mu.Lock()
	if m.state != Monitoring {
		m.mu.Unlock()
		return
	}

	snap := m.agg.Tick(now)

	base := score.Compute(snap)
	stdDev, samples := score.InterKeyStdDev(m.collector.KeyTimes())
	final := score.Adjust(base, stdDev, samples, snap.IdleSeconds)

	// While the estimator is active its engagement scalar overwrites the
	// scorer output.
	if m.estimator != nil {
		final = m.estimator.Engagement() * 100
	}

	ev := intervene.Evaluate(snap, final)
	var fired *intervene.Event
	if ev != nil {
		key := string(ev.Kind) + ":" + ev.Reason
		if m.active == nil && key != m.lastTrigger {
			m.active = ev
			m.lastTrigger = key
			fired = ev
		}
	} else {
		m.lastTrigger = ""
	}

	m.lastSnapshot = snap
	m.lastScore = final
	m.history.Append(snap, final)

	id := m.sessionID
	startedAt := m.startedAt
	onTick := m.OnTick
	onIntervention := m.OnIntervention
	m.mu.Unlock()

	if onTick != nil {
		onTick(snap, final)
	}
	if fired != nil && onIntervention != nil {
		onIntervention(*fired)
	}

	if m.store != nil {
		update := Update{
			DurationSeconds: now.Sub(startedAt).Seconds(),
			Score:           final,
			Snapshot:        snap,
		}
		m.pending.Add(1)
		go func() {
			defer m.pending.Done()
			ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
			defer cancel()
			if err := m.store.UpdateSession(ctx, id, update); err != nil {
				m.Logf("session sync failed (will retry next tick): %v", err)
			}
		}()
	}
}

// Record forwards one raw event to the collector.
func (m *Manager) Record(ev signal.Event) {
	m.collector.Record(ev)
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Score returns the most recently published flow score.
func (m *Manager) Score() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastScore
}

// Snapshot returns the most recent metrics snapshot.
func (m *Manager) Snapshot() window.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSnapshot
}

// SessionID returns the external session identifier, 0 when Idle.
func (m *Manager) SessionID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// StartedAt returns the session start time.
func (m *Manager) StartedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startedAt
}

// ActiveIntervention returns the live intervention, or nil.
func (m *Manager) ActiveIntervention() *intervene.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil
	}
	ev := *m.active
	return &ev
}

// Dismiss clears the live intervention so the next qualifying tick can
// trigger again.
func (m *Manager) Dismiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = nil
}

// History returns a copy of the bounded metric history.
func (m *Manager) History() HistoryView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.View()
}

// Wait blocks until in-flight persistence calls settle. Test helper.
func (m *Manager) Wait() {
	m.pending.Wait()
}
