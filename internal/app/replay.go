package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/flowwatch/internal/clock"
	"github.com/blackwell-systems/flowwatch/internal/config"
	"github.com/blackwell-systems/flowwatch/internal/intervene"
	"github.com/blackwell-systems/flowwatch/internal/output"
	"github.com/blackwell-systems/flowwatch/internal/session"
	sig "github.com/blackwell-systems/flowwatch/internal/signal"
	"github.com/blackwell-systems/flowwatch/internal/window"
)

var replayCmd = &cobra.Command{
	Use:   "replay <events.jsonl>",
	Short: "Replay a recorded event capture through the engine",
	Long: `Feed a JSONL event capture through the monitoring engine using virtual
time: windows close exactly at the recorded timestamps, so the output is
deterministic regardless of wall-clock speed. Prints one row per
aggregation window with the snapshot metrics, engine score, and any
triggered intervention.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

// replayRow is one aggregation window's result.
type replayRow struct {
	Snapshot     window.Snapshot  `json:"snapshot"`
	Score        float64          `json:"score"`
	Intervention *intervene.Event `json:"intervention,omitempty"`
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if flagNoColor {
		output.SetNoColor(true)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening capture: %w", err)
	}
	defer f.Close()

	events, err := sig.DecodeEvents(f)
	if err != nil {
		return fmt.Errorf("decoding capture: %w", err)
	}
	if len(events) == 0 {
		return fmt.Errorf("capture %s contains no events", args[0])
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.Before(events[j].Time)
	})

	fc := clock.NewFake(events[0].Time)
	collector := sig.NewCollector(cfg.Buffers.KeyTimes, cfg.Buffers.PointerSamples)
	agg := window.NewAggregator(collector, cfg.Window.Period(), cfg.Window.PointerNorm)
	mgr := session.NewManager(session.Config{
		Clock:      fc,
		Collector:  collector,
		Aggregator: agg,
		HistoryCap: cfg.Buffers.History,
	})

	var rows []replayRow
	mgr.OnTick = func(snap window.Snapshot, score float64) {
		rows = append(rows, replayRow{Snapshot: snap, Score: score})
	}
	mgr.OnIntervention = func(ev intervene.Event) {
		if len(rows) > 0 {
			e := ev
			rows[len(rows)-1].Intervention = &e
		}
	}

	if err := mgr.Start(context.Background()); err != nil {
		return err
	}
	defer mgr.Stop()

	// Close windows at exact period boundaries of virtual time, clearing the
	// live intervention between windows so each qualifying window reports.
	period := cfg.Window.Period()
	boundary := events[0].Time.Add(period)
	for _, ev := range events {
		for ev.Time.After(boundary) {
			mgr.Step(boundary)
			mgr.Dismiss()
			boundary = boundary.Add(period)
		}
		mgr.Record(ev)
	}
	mgr.Step(boundary)

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	table := output.NewTable("WINDOW", "SCORE", "TYPING", "ERRORS", "POINTER", "TABS", "IDLE", "INTERVENTION")
	for _, r := range rows {
		interv := ""
		if r.Intervention != nil {
			interv = string(r.Intervention.Kind)
		}
		table.AddRow(
			r.Snapshot.TakenAt.Format("15:04:05"),
			fmt.Sprintf("%.0f", r.Score),
			fmt.Sprintf("%.0f/min", r.Snapshot.TypingRate),
			fmt.Sprintf("%.0f/min", r.Snapshot.BackspaceRate),
			fmt.Sprintf("%.0f", r.Snapshot.PointerDistance),
			fmt.Sprintf("%d", r.Snapshot.TabSwitches),
			fmt.Sprintf("%.0fs", r.Snapshot.IdleSeconds),
			interv,
		)
	}
	table.Print()
	fmt.Printf("\n%d windows replayed from %d events\n", len(rows), len(events))
	return nil
}
