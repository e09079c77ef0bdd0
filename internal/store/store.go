package store

import (
	"context"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/Majid-Chaudhary/oltp-sample/internal/database"
	"github.com/Majid-Chaudhary/oltp-sample/internal/types"
)

// RetailStore owns customers, products, orders and order items.
type RetailStore interface {
	InsertCustomer(ctx context.Context, c types.Customer) (int64, error)
	InsertProduct(ctx context.Context, p types.Product) (int64, error)
	CustomerIDs(ctx context.Context) ([]int64, error)
	ProductIDs(ctx context.Context) ([]int64, error)
	ProductPrices(ctx context.Context, ids []int64) (map[int64]decimal.Decimal, error)
	// CreateOrder writes the order and its items in one transaction and
	// returns the order id assigned by the store.
	CreateOrder(ctx context.Context, order types.Order, items []types.OrderItem) (int64, error)
}

// LogisticsStore owns cities, warehouses and shipments.
type LogisticsStore interface {
	InsertCity(ctx context.Context, name string) (bool, error)
	InsertWarehouse(ctx context.Context, w types.Warehouse) (int64, error)
	CityIDs(ctx context.Context) ([]int64, error)
	WarehouseIDs(ctx context.Context) ([]int64, error)
	CreateShipment(ctx context.Context, s types.Shipment) error
}

// AccountsStore owns payment methods and transactions.
type AccountsStore interface {
	InsertPaymentMethod(ctx context.Context, name string) (bool, error)
	PaymentMethodIDs(ctx context.Context) ([]int64, error)
	CreateTransaction(ctx context.Context, t types.Transaction) error
}

type Counter interface {
	Count(ctx context.Context, table string) (int64, error)
}

func NewCounter(db database.Adapter) Counter {
	return base{db: db}
}

var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type base struct {
	db database.Adapter
}

func (b base) Count(ctx context.Context, table string) (int64, error) {
	if !validIdentifier.MatchString(table) {
		return 0, fmt.Errorf("invalid table name: %s", table)
	}

	var count int64
	q := b.db.Builder().Select("COUNT(*)").From(table)
	err := b.db.Query(ctx, q, func(row database.Scanner) error {
		return row.Scan(&count)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}

func (b base) ids(ctx context.Context, table, column string) ([]int64, error) {
	var ids []int64
	q := b.db.Builder().Select(column).From(table).OrderBy(column)
	err := b.db.Query(ctx, q, func(row database.Scanner) error {
		var id int64
		if err := row.Scan(&id); err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load %s ids: %w", table, err)
	}
	return ids, nil
}

// inTx runs fn inside a transaction and commits when fn succeeds.
func (b base) inTx(ctx context.Context, fn func(tx database.Tx) error) error {
	tx, err := b.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
