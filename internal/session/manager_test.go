package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/flowwatch/internal/attention"
	"github.com/blackwell-systems/flowwatch/internal/clock"
	"github.com/blackwell-systems/flowwatch/internal/intervene"
	"github.com/blackwell-systems/flowwatch/internal/signal"
	"github.com/blackwell-systems/flowwatch/internal/window"
)

var base = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

// fakeStore records persistence calls and optionally fails updates.
type fakeStore struct {
	mu        sync.Mutex
	nextID    int64
	creates   int
	updates   []Update
	ends      int
	updateErr error
	createErr error
}

func (f *fakeStore) CreateSession(ctx context.Context, startedAt time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.creates++
	f.nextID++
	return f.nextID, nil
}

func (f *fakeStore) UpdateSession(ctx context.Context, id int64, update Update) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, update)
	return nil
}

func (f *fakeStore) EndSession(ctx context.Context, id int64, endedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ends++
	return nil
}

func (f *fakeStore) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func newTestManager(t *testing.T, st Store, est *attention.Estimator) (*Manager, *clock.Fake, *signal.Collector) {
	t.Helper()
	fc := clock.NewFake(base)
	collector := signal.NewCollector(0, 0)
	agg := window.NewAggregator(collector, 10*time.Second, 10)
	mgr := NewManager(Config{
		Clock:      fc,
		Store:      st,
		Collector:  collector,
		Aggregator: agg,
		Estimator:  est,
		HistoryCap: 5,
	})
	return mgr, fc, collector
}

func TestManager_StartStop(t *testing.T) {
	st := &fakeStore{}
	mgr, _, _ := newTestManager(t, st, nil)

	require.Equal(t, Idle, mgr.State())

	require.NoError(t, mgr.Start(context.Background()))
	require.Equal(t, Monitoring, mgr.State())
	require.Equal(t, int64(1), mgr.SessionID())

	// Starting again is a no-op, not a second session.
	require.NoError(t, mgr.Start(context.Background()))
	require.Equal(t, 1, st.creates)

	mgr.Stop()
	require.Equal(t, Idle, mgr.State())
	require.Equal(t, int64(0), mgr.SessionID())
	require.Equal(t, 1, st.ends)

	// Stopping when already Idle is a no-op.
	mgr.Stop()
	require.Equal(t, 1, st.ends)
}

func TestManager_StartPropagatesStoreError(t *testing.T) {
	st := &fakeStore{createErr: errors.New("disk full")}
	mgr, _, _ := newTestManager(t, st, nil)

	err := mgr.Start(context.Background())
	require.Error(t, err)
	require.Equal(t, Idle, mgr.State())
}

func TestManager_StepScoresAndSyncs(t *testing.T) {
	st := &fakeStore{}
	mgr, fc, collector := newTestManager(t, st, nil)
	require.NoError(t, mgr.Start(context.Background()))

	// A productive window: 12 keys (72/min) at even cadence, light pointer use.
	for i := 0; i < 12; i++ {
		collector.Record(signal.Event{Kind: signal.KeyDown, Key: "a", Time: base.Add(time.Duration(i) * 120 * time.Millisecond)})
	}
	collector.Record(signal.Event{Kind: signal.PointerMove, X: 0, Y: 0, Time: base.Add(time.Second)})
	collector.Record(signal.Event{Kind: signal.PointerMove, X: 300, Y: 400, Time: base.Add(2 * time.Second)})

	fc.Advance(10 * time.Second)
	mgr.Step(fc.Now())
	mgr.Wait()

	// 50 +15 typing +15 tabs +10 pointer +10 backspace, then the +5 rhythm
	// bonus, clamped to 100.
	require.Equal(t, 100.0, mgr.Score())
	require.Equal(t, 72.0, mgr.Snapshot().TypingRate)

	require.Equal(t, 1, st.updateCount())
	st.mu.Lock()
	up := st.updates[0]
	st.mu.Unlock()
	require.Equal(t, 10.0, up.DurationSeconds)
	require.Equal(t, 100.0, up.Score)
}

func TestManager_HistoryBounded(t *testing.T) {
	st := &fakeStore{}
	mgr, fc, _ := newTestManager(t, st, nil)
	require.NoError(t, mgr.Start(context.Background()))

	for i := 0; i < 8; i++ {
		fc.Advance(10 * time.Second)
		mgr.Step(fc.Now())
	}
	mgr.Wait()

	view := mgr.History()
	require.Len(t, view.Scores, 5, "history must cap at the configured length")
	require.Len(t, view.TypingRate, 5)
	require.Len(t, view.IdleSeconds, 5)

	// Oldest entries were evicted: idle grows by 10s per empty window, so
	// the first surviving sample is from the 4th tick.
	require.Equal(t, 40.0, view.IdleSeconds[0])
}

func TestManager_PersistenceFailureIsNonFatal(t *testing.T) {
	st := &fakeStore{updateErr: errors.New("connection refused")}
	mgr, fc, _ := newTestManager(t, st, nil)

	var logged []string
	mgr.Logf = func(format string, args ...any) {
		logged = append(logged, format)
	}
	require.NoError(t, mgr.Start(context.Background()))

	fc.Advance(10 * time.Second)
	mgr.Step(fc.Now())
	mgr.Wait()

	// Monitoring continues; the failure was logged, not raised.
	require.Equal(t, Monitoring, mgr.State())
	require.NotEmpty(t, logged)

	// Next tick is a fresh attempt.
	st.mu.Lock()
	st.updateErr = nil
	st.mu.Unlock()
	fc.Advance(10 * time.Second)
	mgr.Step(fc.Now())
	mgr.Wait()
	require.Equal(t, 1, st.updateCount())
}

func TestManager_InterventionDedup(t *testing.T) {
	st := &fakeStore{}
	mgr, fc, collector := newTestManager(t, st, nil)

	var fired []intervene.Event
	mgr.OnIntervention = func(ev intervene.Event) { fired = append(fired, ev) }
	require.NoError(t, mgr.Start(context.Background()))

	// Two consecutive fatigue windows: slow typing, heavy corrections.
	for tick := 0; tick < 2; tick++ {
		start := fc.Now()
		for i := 0; i < 4; i++ {
			key := "Backspace"
			if i == 3 {
				key = "a"
			}
			collector.Record(signal.Event{Kind: signal.KeyDown, Key: key, Time: start.Add(time.Duration(i) * time.Second)})
		}
		fc.Advance(10 * time.Second)
		mgr.Step(fc.Now())
	}
	mgr.Wait()

	require.Len(t, fired, 1, "identical consecutive triggers must be suppressed")
	require.Equal(t, intervene.Fatigue, fired[0].Kind)

	active := mgr.ActiveIntervention()
	require.NotNil(t, active)
	require.Equal(t, intervene.Fatigue, active.Kind)

	mgr.Dismiss()
	require.Nil(t, mgr.ActiveIntervention())
}

func TestManager_EstimatorOverwritesScore(t *testing.T) {
	st := &fakeStore{}
	est := attention.NewEstimator(attention.WithRand(func() float64 { return 0 }))
	mgr, fc, _ := newTestManager(t, st, est)
	require.NoError(t, mgr.Start(context.Background()))

	// With no observations the display distribution stays uniform, so the
	// published score is the neutral engagement scaled to [0,100].
	fc.Advance(10 * time.Second)
	mgr.Step(fc.Now())
	mgr.Wait()

	want := attention.Engagement(attention.Uniform()) * 100
	require.InDelta(t, want, mgr.Score(), 1e-9)
}

func TestManager_StepWhenIdleIsNoOp(t *testing.T) {
	st := &fakeStore{}
	mgr, fc, _ := newTestManager(t, st, nil)

	fc.Advance(10 * time.Second)
	mgr.Step(fc.Now())
	mgr.Wait()

	require.Equal(t, 0, st.updateCount())
	require.Empty(t, mgr.History().Scores)
}
