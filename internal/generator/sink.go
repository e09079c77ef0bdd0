package generator

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/Majid-Chaudhary/oltp-sample/internal/types"
)

// Sink is told about every order group whose three writes all committed.
type Sink interface {
	Committed(ctx context.Context, group types.OrderGroup) error
}

type Sinks []Sink

func (s Sinks) Committed(ctx context.Context, group types.OrderGroup) error {
	var errs []error
	for _, sink := range s {
		if err := sink.Committed(ctx, group); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type LogSink struct {
	Log logrus.FieldLogger
}

func (s LogSink) Committed(ctx context.Context, group types.OrderGroup) error {
	s.Log.WithFields(logrus.Fields{
		"order_id":     group.Order.ID,
		"customer_id":  group.Order.CustomerID,
		"items":        len(group.Items),
		"total_amount": group.Order.TotalAmount.StringFixed(2),
	}).Debug("order group committed")
	return nil
}
