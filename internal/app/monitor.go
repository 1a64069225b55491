package app

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/flowwatch/internal/attention"
	"github.com/blackwell-systems/flowwatch/internal/clock"
	"github.com/blackwell-systems/flowwatch/internal/config"
	"github.com/blackwell-systems/flowwatch/internal/intervene"
	"github.com/blackwell-systems/flowwatch/internal/output"
	"github.com/blackwell-systems/flowwatch/internal/session"
	sig "github.com/blackwell-systems/flowwatch/internal/signal"
	"github.com/blackwell-systems/flowwatch/internal/store"
	"github.com/blackwell-systems/flowwatch/internal/window"
)

var (
	monitorInput     string
	monitorDemo      bool
	monitorQuiet     bool
	monitorAttention bool
	monitorNoStore   bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the live monitoring engine against an event stream",
	Long: `Start a monitoring session. Interaction events are read as JSONL from a
file or stdin (one event object per line) and fed into the engine. Every
aggregation window the current flow score and metrics are rendered, and
triggered interventions are printed as alerts.

Examples:
  some-agent | flowwatch monitor --input -     # events piped on stdin
  flowwatch monitor --input events.jsonl       # tail a capture file
  flowwatch monitor --demo                     # synthetic event stream
  flowwatch monitor --demo --attention         # engagement estimator active`,
	RunE: runMonitor,
}

func init() {
	monitorCmd.Flags().StringVar(&monitorInput, "input", "-", "JSONL event source: file path or - for stdin")
	monitorCmd.Flags().BoolVar(&monitorDemo, "demo", false, "Generate a synthetic event stream instead of reading input")
	monitorCmd.Flags().BoolVar(&monitorQuiet, "quiet", false, "Suppress per-tick output, only print interventions")
	monitorCmd.Flags().BoolVar(&monitorAttention, "attention", false, "Enable the attention estimator (overrides config)")
	monitorCmd.Flags().BoolVar(&monitorNoStore, "no-store", false, "Skip session persistence")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if flagNoColor {
		output.SetNoColor(true)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)
	go func() {
		<-sigCh
		cancel()
	}()

	var sessionStore session.Store
	if !monitorNoStore {
		db, err := store.Open(config.DBPath())
		if err != nil {
			return fmt.Errorf("opening session store: %w", err)
		}
		defer db.Close()
		sessionStore = db
	}

	var est *attention.Estimator
	if monitorAttention || cfg.Attention.Enabled {
		est = attention.NewEstimator(
			attention.WithExponent(cfg.Attention.Exponent),
			attention.WithSmoothing(cfg.Attention.SmoothingFactor, cfg.Attention.NoiseScale),
		)
	}

	clk := clock.System()
	collector := sig.NewCollector(cfg.Buffers.KeyTimes, cfg.Buffers.PointerSamples)
	agg := window.NewAggregator(collector, cfg.Window.Period(), cfg.Window.PointerNorm)

	mgr := session.NewManager(session.Config{
		Clock:      clk,
		Store:      sessionStore,
		Collector:  collector,
		Aggregator: agg,
		Estimator:  est,
		HistoryCap: cfg.Buffers.History,
	})
	if flagVerbose {
		mgr.Logf = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "flowwatch: "+format+"\n", args...)
		}
	}
	mgr.OnTick = func(snap window.Snapshot, score float64) {
		if monitorQuiet {
			return
		}
		fmt.Printf("[%s] %s  typing %.0f/min  err %.0f/min  pointer %.0f  tabs %d  idle %.0fs\n",
			snap.TakenAt.Format("15:04:05"),
			output.ScoreBar(score, 20),
			snap.TypingRate, snap.BackspaceRate, snap.PointerDistance,
			snap.TabSwitches, snap.IdleSeconds)
		if est != nil && flagVerbose {
			fmt.Print(output.DistributionBars(est.Display(), 20))
		}
	}
	mgr.OnIntervention = func(ev intervene.Event) {
		fmt.Println(output.InterventionLine(ev))
		if db, ok := sessionStore.(*store.DB); ok {
			pctx, pcancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer pcancel()
			if err := db.RecordIntervention(pctx, mgr.SessionID(), string(ev.Kind), ev.Reason, ev.TriggeredAt); err != nil && flagVerbose {
				fmt.Fprintf(os.Stderr, "flowwatch: recording intervention: %v\n", err)
			}
		}
	}

	if err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	defer mgr.Stop()

	if !monitorQuiet {
		fmt.Printf("flowwatch monitoring... (window %s, session %d)\n", cfg.Window.Period(), mgr.SessionID())
	}

	g, gctx := errgroup.WithContext(ctx)

	// Event pump: demo generator or JSONL reader.
	if monitorDemo {
		g.Go(func() error {
			return runDemoSource(gctx, clk, mgr, est, cfg.Attention)
		})
	} else {
		reader, closeFn, err := openInput(monitorInput)
		if err != nil {
			return err
		}
		defer closeFn()
		g.Go(func() error {
			return pumpEvents(gctx, reader, clk, mgr, est, cfg.Attention)
		})
	}

	// Attention smoothing tick.
	if est != nil {
		g.Go(func() error {
			ticker := clk.NewTicker(cfg.Attention.Tick())
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case <-ticker.C():
					est.Step()
				}
			}
		})
	}

	// Aggregation loop.
	g.Go(func() error {
		return mgr.Run(gctx)
	})

	err = g.Wait()
	if err == context.Canceled {
		if !monitorQuiet {
			fmt.Println("\nStopped.")
		}
		return nil
	}
	return err
}

// openInput returns a reader for the JSONL event source.
func openInput(path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening event input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// pumpEvents streams JSONL events into the engine as they arrive. Events
// without a timestamp are stamped with the current time; malformed lines are
// skipped (bad payloads must not corrupt the counters).
func pumpEvents(ctx context.Context, r io.Reader, clk clock.Clock, mgr *session.Manager, est *attention.Estimator, att config.Attention) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var ev sig.Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			continue
		}
		if ev.Time.IsZero() {
			ev.Time = clk.Now()
		}
		mgr.Record(ev)
		if est != nil && (ev.Kind == sig.PointerMove || ev.Kind == sig.PointerClick) {
			est.Observe(ev.X, ev.Y, att.ViewportWidth, att.ViewportHeight)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading events: %w", err)
	}
	// Input exhausted; keep monitoring until interrupted.
	<-ctx.Done()
	return ctx.Err()
}
