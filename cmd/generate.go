package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Majid-Chaudhary/oltp-sample/internal/config"
	"github.com/Majid-Chaudhary/oltp-sample/internal/events"
	"github.com/Majid-Chaudhary/oltp-sample/internal/generator"
	"github.com/Majid-Chaudhary/oltp-sample/internal/runner"
	"github.com/Majid-Chaudhary/oltp-sample/internal/settings"
	"github.com/Majid-Chaudhary/oltp-sample/internal/store"
)

var (
	generateCount     int
	generateFirstLoad bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a fixed number of order groups",
	Long: `Load reference data (or seed it with --first-load) and write --count
order groups in one pass. The settings store is not consulted.`,
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

		count := generateCount
		if count <= 0 {
			count = cfg.Generator.Count
		}

		runID := uuid.NewString()
		gen, closer := newGenerator(cfg, conns, log, runID)
		defer closer.Close()

		r := runner.New(settings.Static{}, conns.newLoader(cfg, log), gen, log, runID)

		color.Cyan("🚚 Generating %d order groups...", count)
		summary, err := r.RunOnce(ctx, generateFirstLoad, count)
		if err != nil {
			return err
		}

		printSummary(summary)
		return nil
	},
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newGenerator wires the stores and the configured sinks. The returned
// closer flushes the event publisher.
func newGenerator(cfg *config.Config, conns *connections, log logrus.FieldLogger, runID string) (*generator.Generator, io.Closer) {
	var closer io.Closer = nopCloser{}
	sinks := generator.Sinks{generator.LogSink{Log: log}}

	if cfg.Events.Enabled {
		publisher := events.NewPublisher(events.Config{
			Brokers: cfg.Events.Brokers,
			Topic:   cfg.Events.Topic,
			RunID:   runID,
		})
		sinks = append(sinks, publisher)
		closer = publisher
		log.WithFields(logrus.Fields{"topic": cfg.Events.Topic, "brokers": cfg.Events.Brokers}).Info("publishing order groups")
	}

	gen := generator.New(
		store.NewRetail(conns.retail),
		store.NewLogistics(conns.logistics),
		store.NewAccounts(conns.accounts),
		generator.Options{
			MaxItems:    cfg.Generator.MaxItems,
			MaxQuantity: cfg.Generator.MaxQuantity,
			OrderDate:   cfg.Generator.OrderDate,
			Sink:        sinks,
		},
		log,
	)
	return gen, closer
}

func printSummary(summary runner.Summary) {
	fmt.Println()
	color.Green("✅ Run %s stopped: %s", summary.RunID, summary.Reason)
	color.White("   Batches:   %d", summary.Batches)
	color.White("   Attempted: %d", summary.Stats.Attempted)
	color.Green("   Committed: %d", summary.Stats.Committed)
	if summary.Stats.Failed > 0 {
		color.Yellow("   Failed:    %d (orphaned %d, missing id %d)",
			summary.Stats.Failed, summary.Stats.Orphaned, summary.Stats.MissingID)
	}
	color.White("   Elapsed:   %s", summary.Elapsed.Round(time.Millisecond))
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().IntVarP(&generateCount, "count", "n", 0, "number of order groups (default generator.count)")
	generateCmd.Flags().BoolVar(&generateFirstLoad, "first-load", false, "seed reference data before generating")
}
