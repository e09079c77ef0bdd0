package store

import (
	"context"
	"fmt"

	"github.com/Majid-Chaudhary/oltp-sample/internal/database"
	"github.com/Majid-Chaudhary/oltp-sample/internal/types"
)

type Accounts struct {
	base
}

func NewAccounts(db database.Adapter) *Accounts {
	return &Accounts{base{db: db}}
}

// InsertPaymentMethod reports false when the method already exists.
func (a *Accounts) InsertPaymentMethod(ctx context.Context, name string) (bool, error) {
	insert := a.db.Builder().Insert("payment_methods").Columns("method_name").Values(name)
	affected, err := a.db.Exec(ctx, a.db.IgnoreConflict(insert, "method_name"))
	if err != nil {
		return false, fmt.Errorf("failed to insert payment method %q: %w", name, err)
	}
	return affected > 0, nil
}

func (a *Accounts) PaymentMethodIDs(ctx context.Context) ([]int64, error) {
	return a.ids(ctx, "payment_methods", "payment_method_id")
}

func (a *Accounts) CreateTransaction(ctx context.Context, t types.Transaction) error {
	return a.inTx(ctx, func(tx database.Tx) error {
		insert := a.db.Builder().Insert("transactions").
			Columns("order_id", "customer_id", "payment_method_id", "transaction_date", "amount").
			Values(t.OrderID, t.CustomerID, t.PaymentMethodID, t.TransactionDate, t.Amount.StringFixed(2))
		if _, err := tx.Exec(ctx, insert); err != nil {
			return fmt.Errorf("failed to insert transaction for order %d: %w", t.OrderID, err)
		}
		return nil
	})
}
