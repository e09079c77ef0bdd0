package generator_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/Majid-Chaudhary/oltp-sample/internal/database"
	"github.com/Majid-Chaudhary/oltp-sample/internal/database/common"
	"github.com/Majid-Chaudhary/oltp-sample/internal/generator"
	"github.com/Majid-Chaudhary/oltp-sample/internal/seeder"
	"github.com/Majid-Chaudhary/oltp-sample/internal/store"
)

// setupPostgres uses TEST_PG_DSN when set, otherwise starts a container
// when OLTP_TESTCONTAINERS=1. All three schemas go into one database.
func setupPostgres(t *testing.T) database.Adapter {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test")
	}
	ctx := context.Background()

	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		if os.Getenv("OLTP_TESTCONTAINERS") != "1" {
			t.Skip("set TEST_PG_DSN or OLTP_TESTCONTAINERS=1 to run against postgres")
		}

		pgC, err := postgres.Run(ctx,
			"postgres:15-alpine",
			postgres.WithDatabase("oltp"),
			postgres.WithUsername("user"),
			postgres.WithPassword("pass"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
		t.Cleanup(func() { _ = pgC.Terminate(ctx) })

		dsn, err = pgC.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)
	}

	db, err := database.Open(ctx, "postgresql", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for _, name := range []string{"retail.sql", "logistics.sql", "accounts.sql"} {
		script, err := os.ReadFile(filepath.Join("..", "..", "db", "schema", name))
		require.NoError(t, err)
		require.NoError(t, common.ExecScript(ctx, db, string(script)))
	}

	_, err = db.Exec(ctx, squirrel.Expr(
		"TRUNCATE order_items, orders, customers, products, shipments, warehouses, cities, transactions, payment_methods RESTART IDENTITY CASCADE"))
	require.NoError(t, err)

	return db
}

func TestPostgresOrderGroups(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	logger, _ := test.NewNullLogger()

	retail := store.NewRetail(db)
	logistics := store.NewLogistics(db)
	accounts := store.NewAccounts(db)

	loader := seeder.NewLoader(retail, logistics, accounts, seeder.NewDataGenerator(),
		seeder.SeedConfig{Warehouses: 3, Customers: 50, Products: 20, EmailAttempts: 10}, logger)
	refs, err := loader.SeedOrLoad(ctx, seeder.ModeFirstLoad)
	require.NoError(t, err)
	require.Empty(t, refs.Missing())

	again, err := loader.SeedOrLoad(ctx, seeder.ModeFirstLoad)
	require.NoError(t, err)
	assert.Len(t, again.Cities, len(seeder.Cities))

	gen := generator.New(retail, logistics, accounts, generator.Options{OrderDate: generator.OrderDateRandom}, logger)
	stats := gen.Generate(ctx, refs, 200)
	require.Equal(t, 200, stats.Committed)

	type row struct {
		order, items, shipment, transaction decimal.Decimal
		shipped, delivered                  time.Time
	}
	q := db.Builder().
		Select("o.total_amount", "SUM(i.subtotal)", "s.total_amount", "t.amount", "s.shipment_date", "s.delivery_date").
		From("orders o").
		Join("order_items i ON i.order_id = o.order_id").
		Join("shipments s ON s.order_id = o.order_id").
		Join("transactions t ON t.order_id = o.order_id").
		GroupBy("o.order_id", "o.total_amount", "s.total_amount", "t.amount", "s.shipment_date", "s.delivery_date")

	var rows []row
	require.NoError(t, db.Query(ctx, q, func(s database.Scanner) error {
		var r row
		if err := s.Scan(&r.order, &r.items, &r.shipment, &r.transaction, &r.shipped, &r.delivered); err != nil {
			return err
		}
		rows = append(rows, r)
		return nil
	}))

	require.Len(t, rows, 200)
	for _, r := range rows {
		assert.True(t, r.order.Equal(r.items))
		assert.True(t, r.order.Equal(r.shipment))
		assert.True(t, r.order.Equal(r.transaction))
		assert.False(t, r.delivered.Before(r.shipped))
	}
}
