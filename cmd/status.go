package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Majid-Chaudhary/oltp-sample/internal/config"
	"github.com/Majid-Chaudhary/oltp-sample/internal/store"
)

var storeTables = []struct {
	store  string
	tables []string
}{
	{config.StoreRetail, []string{"customers", "products", "orders", "order_items"}},
	{config.StoreLogistics, []string{"cities", "warehouses", "shipments"}},
	{config.StoreAccounts, []string{"payment_methods", "transactions"}},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show row counts of every store",
	Long: `Count the rows of every table in the three stores. Orders without a
shipment or transaction show up as orders > shipments or orders > transactions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		conns, err := openAll(ctx, cfg)
		if err != nil {
			return err
		}
		defer conns.Close()

		counts := make(map[string]int64)
		for _, st := range storeTables {
			db := conns.byName(st.store)
			counter := store.NewCounter(db)

			color.Cyan("📦 %s (%s)", st.store, db.Provider())
			for _, table := range st.tables {
				n, err := counter.Count(ctx, table)
				if err != nil {
					color.Red("   %-16s error: %v", table, err)
					continue
				}
				counts[table] = n
				fmt.Printf("   %-16s %d\n", table, n)
			}
		}

		fmt.Println()
		noShipment := counts["orders"] - counts["shipments"]
		noTransaction := counts["orders"] - counts["transactions"]
		if noShipment > 0 {
			color.Yellow("⚠️  %d orders without a shipment", noShipment)
		}
		if noTransaction > 0 {
			color.Yellow("⚠️  %d orders without a transaction", noTransaction)
		}
		if noShipment <= 0 && noTransaction <= 0 {
			color.Green("✅ Every order has a shipment and a transaction")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
