package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Majid-Chaudhary/oltp-sample/internal/seeder"
	"github.com/Majid-Chaudhary/oltp-sample/internal/store"
	"github.com/Majid-Chaudhary/oltp-sample/internal/utils"
)

var (
	seedLookup bool
	seedForce  bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert reference data",
	Long: `Insert the fixed cities and payment methods (existing names are skipped),
then seed.warehouses warehouses, seed.customers customers with distinct
emails and seed.products products. With --lookup nothing is written and the
existing identifiers are counted instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg)
		ctx := cmd.Context()

		conns, err := openAll(ctx, cfg)
		if err != nil {
			return err
		}
		defer conns.Close()

		mode := seeder.ModeFirstLoad
		if seedLookup {
			mode = seeder.ModeLookup
		} else {
			existing, err := store.NewCounter(conns.retail).Count(ctx, "customers")
			if err != nil {
				return err
			}
			if existing > 0 {
				msg := fmt.Sprintf("⚠️  retail already has %d customers, seeding adds more. Continue?", existing)
				if !utils.AskConfirmation(os.Stdin, os.Stdout, msg, seedForce) {
					color.Yellow("Seeding cancelled")
					return nil
				}
			}
			color.Cyan("🌱 Seeding reference data...")
		}

		refs, err := conns.newLoader(cfg, log).SeedOrLoad(ctx, mode)
		if err != nil {
			return err
		}

		fmt.Println()
		color.Green("📊 Reference data (%s)", mode)
		color.White("   cities:          %d", len(refs.Cities))
		color.White("   payment methods: %d", len(refs.PaymentMethods))
		color.White("   warehouses:      %d", len(refs.Warehouses))
		color.White("   customers:       %d", len(refs.Customers))
		color.White("   products:        %d", len(refs.Products))
		if missing := refs.Missing(); len(missing) > 0 {
			color.Yellow("⚠️  Empty: %v", missing)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().BoolVar(&seedLookup, "lookup", false, "only read existing identifiers")
	seedCmd.Flags().BoolVarP(&seedForce, "force", "f", false, "skip the confirmation when data already exists")
}
