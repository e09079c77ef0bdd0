package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Majid-Chaudhary/oltp-sample/internal/runner"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the continuous generator loop",
	Long: `Read first_load, continuous_loading, batch_size and pause_seconds from the
settings store, seed or look up reference data, then generate batch_size
order groups, sleep pause_seconds and re-read the settings until
continuous_loading is 0. Ctrl+C stops the loop between order groups.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg)

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		conns, err := openAll(ctx, cfg)
		if err != nil {
			return err
		}
		defer conns.Close()

		provider, closeSettings, err := newSettingsStore(cfg, conns.byName(cfg.Settings.Store))
		if err != nil {
			return err
		}
		defer closeSettings()

		runID := uuid.NewString()
		gen, closer := newGenerator(cfg, conns, log, runID)
		defer closer.Close()

		r := runner.New(provider, conns.newLoader(cfg, log), gen, log, runID)

		color.Cyan("🔁 Starting generator loop (run %s, settings from %s)", runID, cfg.Settings.Source)
		summary, err := r.Run(ctx)
		if err != nil {
			return err
		}

		printSummary(summary)
		return nil
	},
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func init() {
	rootCmd.AddCommand(runCmd)
}
