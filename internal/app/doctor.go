package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/flowwatch/internal/config"
	"github.com/blackwell-systems/flowwatch/internal/output"
	"github.com/blackwell-systems/flowwatch/internal/store"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check whether the flowwatch setup is healthy",
	Long: `Run a series of health checks against your flowwatch configuration and
local database. Prints a pass/fail line for each check and a summary of
how many checks passed.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck holds the result of a single health check.
type doctorCheck struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// doctorOutput is the JSON-serializable result of the doctor command.
type doctorOutput struct {
	Checks      []doctorCheck `json:"checks"`
	PassedCount int           `json:"passed"`
	TotalCount  int           `json:"total"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	if flagNoColor {
		output.SetNoColor(true)
	}

	var checks []doctorCheck

	// 1. Config — loads without error and has sane values.
	cfg, err := config.Load(flagConfig)
	if err != nil {
		checks = append(checks, doctorCheck{
			Name:    "config",
			Message: fmt.Sprintf("failed to load: %v", err),
		})
	} else {
		checks = append(checks, checkConfigValues(cfg))
	}

	// 2. Config directory — exists or can be created.
	checks = append(checks, checkConfigDir())

	// 3. Database — opens, migrates, and reports the current schema.
	checks = append(checks, checkDatabase())

	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doctorOutput{Checks: checks, PassedCount: passed, TotalCount: len(checks)})
	}

	for _, c := range checks {
		mark := output.StyleAlert.Render("✗")
		if c.Passed {
			mark = output.StyleFlow.Render("✓")
		}
		fmt.Printf("%s %s: %s\n", mark, c.Name, c.Message)
	}
	fmt.Printf("\n%d/%d checks passed\n", passed, len(checks))
	return nil
}

// checkConfigValues validates the loaded configuration.
func checkConfigValues(cfg *config.Config) doctorCheck {
	if cfg.Window.PeriodSeconds <= 0 {
		return doctorCheck{Name: "config", Message: "window.period_seconds must be positive"}
	}
	if cfg.Attention.SmoothingFactor <= 0 || cfg.Attention.SmoothingFactor > 1 {
		return doctorCheck{Name: "config", Message: "attention.smoothing_factor must be in (0, 1]"}
	}
	return doctorCheck{
		Name:    "config",
		Passed:  true,
		Message: fmt.Sprintf("loaded (window %ds, history %d)", cfg.Window.PeriodSeconds, cfg.Buffers.History),
	}
}

// checkConfigDir verifies the config directory exists or can be created.
func checkConfigDir() doctorCheck {
	dir := config.ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return doctorCheck{Name: "config dir", Message: fmt.Sprintf("cannot create %s: %v", dir, err)}
	}
	return doctorCheck{Name: "config dir", Passed: true, Message: dir}
}

// checkDatabase opens the database, running migrations in the process.
func checkDatabase() doctorCheck {
	db, err := store.Open(config.DBPath())
	if err != nil {
		return doctorCheck{Name: "database", Message: fmt.Sprintf("cannot open %s: %v", config.DBPath(), err)}
	}
	defer db.Close()

	version, err := db.SchemaVersion()
	if err != nil {
		return doctorCheck{Name: "database", Message: fmt.Sprintf("schema version: %v", err)}
	}
	return doctorCheck{
		Name:    "database",
		Passed:  true,
		Message: fmt.Sprintf("%s (schema v%d)", config.DBPath(), version),
	}
}
