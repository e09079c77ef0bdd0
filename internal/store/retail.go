package store

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/Majid-Chaudhary/oltp-sample/internal/database"
	"github.com/Majid-Chaudhary/oltp-sample/internal/types"
)

type Retail struct {
	base
}

func NewRetail(db database.Adapter) *Retail {
	return &Retail{base{db: db}}
}

func (r *Retail) InsertCustomer(ctx context.Context, c types.Customer) (int64, error) {
	insert := r.db.Builder().Insert("customers").
		Columns("name", "email", "address", "phone").
		Values(c.Name, c.Email, c.Address, c.Phone)
	return r.db.InsertReturningID(ctx, insert, "customer_id")
}

func (r *Retail) InsertProduct(ctx context.Context, p types.Product) (int64, error) {
	insert := r.db.Builder().Insert("products").
		Columns("product_name", "category", "price").
		Values(p.Name, p.Category, p.Price.StringFixed(2))
	return r.db.InsertReturningID(ctx, insert, "product_id")
}

func (r *Retail) CustomerIDs(ctx context.Context) ([]int64, error) {
	return r.ids(ctx, "customers", "customer_id")
}

func (r *Retail) ProductIDs(ctx context.Context) ([]int64, error) {
	return r.ids(ctx, "products", "product_id")
}

// ProductPrices returns the current price of every id that exists.
func (r *Retail) ProductPrices(ctx context.Context, ids []int64) (map[int64]decimal.Decimal, error) {
	prices := make(map[int64]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return prices, nil
	}

	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	q := r.db.Builder().Select("product_id", "price").
		From("products").
		Where(squirrel.Eq{"product_id": unique})
	err := r.db.Query(ctx, q, func(row database.Scanner) error {
		var id int64
		var price decimal.Decimal
		if err := row.Scan(&id, &price); err != nil {
			return err
		}
		prices[id] = price
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load product prices: %w", err)
	}
	return prices, nil
}

func (r *Retail) CreateOrder(ctx context.Context, order types.Order, items []types.OrderItem) (int64, error) {
	var orderID int64
	err := r.inTx(ctx, func(tx database.Tx) error {
		insert := r.db.Builder().Insert("orders").
			Columns("customer_id", "order_date", "total_amount").
			Values(order.CustomerID, order.OrderDate, order.TotalAmount.StringFixed(2))

		id, err := tx.InsertReturningID(ctx, insert, "order_id")
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}
		orderID = id

		if len(items) == 0 {
			return nil
		}

		itemsInsert := r.db.Builder().Insert("order_items").
			Columns("order_id", "product_id", "quantity", "subtotal")
		for _, item := range items {
			itemsInsert = itemsInsert.Values(orderID, item.ProductID, item.Quantity, item.Subtotal.StringFixed(2))
		}
		if _, err := tx.Exec(ctx, itemsInsert); err != nil {
			return fmt.Errorf("failed to insert order items for order %d: %w", orderID, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return orderID, nil
}
