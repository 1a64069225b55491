package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/flowwatch/internal/config"
	"github.com/blackwell-systems/flowwatch/internal/output"
	"github.com/blackwell-systems/flowwatch/internal/store"
)

var sessionsLimit int

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List persisted monitoring sessions",
	Long: `Browse past monitoring sessions from the local database: when they ran,
how long they lasted, and the last synced flow score and metrics.

Examples:
  flowwatch sessions              # recent sessions
  flowwatch sessions --limit 5    # five most recent
  flowwatch sessions --json       # machine-readable output`,
	RunE: runSessions,
}

func init() {
	sessionsCmd.Flags().IntVar(&sessionsLimit, "limit", 15, "Maximum sessions to display")
	rootCmd.AddCommand(sessionsCmd)
}

func runSessions(cmd *cobra.Command, args []string) error {
	if flagNoColor {
		output.SetNoColor(true)
	}

	db, err := store.Open(config.DBPath())
	if err != nil {
		return fmt.Errorf("opening session store: %w", err)
	}
	defer db.Close()

	rows, err := db.ListSessions(context.Background(), sessionsLimit)
	if err != nil {
		return err
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Println("No sessions recorded yet. Run 'flowwatch monitor' to start one.")
		return nil
	}

	table := output.NewTable("ID", "STARTED", "DURATION", "SCORE", "TYPING", "TABS", "IDLE")
	for _, r := range rows {
		table.AddRow(
			fmt.Sprintf("%d", r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			formatDuration(r.DurationSeconds),
			fmt.Sprintf("%.0f", r.Score),
			fmt.Sprintf("%.0f/min", r.Metrics.TypingRate),
			fmt.Sprintf("%d", r.Metrics.TabSwitches),
			fmt.Sprintf("%.0fs", r.Metrics.IdleSeconds),
		)
	}
	table.Print()
	return nil
}

// formatDuration renders seconds as a compact duration string.
func formatDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
