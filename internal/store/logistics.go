package store

import (
	"context"
	"fmt"

	"github.com/Majid-Chaudhary/oltp-sample/internal/database"
	"github.com/Majid-Chaudhary/oltp-sample/internal/types"
)

type Logistics struct {
	base
}

func NewLogistics(db database.Adapter) *Logistics {
	return &Logistics{base{db: db}}
}

// InsertCity reports false when the city already exists.
func (l *Logistics) InsertCity(ctx context.Context, name string) (bool, error) {
	insert := l.db.Builder().Insert("cities").Columns("city_name").Values(name)
	affected, err := l.db.Exec(ctx, l.db.IgnoreConflict(insert, "city_name"))
	if err != nil {
		return false, fmt.Errorf("failed to insert city %q: %w", name, err)
	}
	return affected > 0, nil
}

func (l *Logistics) InsertWarehouse(ctx context.Context, w types.Warehouse) (int64, error) {
	insert := l.db.Builder().Insert("warehouses").
		Columns("location", "capacity").
		Values(w.Location, w.Capacity)
	return l.db.InsertReturningID(ctx, insert, "warehouse_id")
}

func (l *Logistics) CityIDs(ctx context.Context) ([]int64, error) {
	return l.ids(ctx, "cities", "city_id")
}

func (l *Logistics) WarehouseIDs(ctx context.Context) ([]int64, error) {
	return l.ids(ctx, "warehouses", "warehouse_id")
}

func (l *Logistics) CreateShipment(ctx context.Context, s types.Shipment) error {
	return l.inTx(ctx, func(tx database.Tx) error {
		insert := l.db.Builder().Insert("shipments").
			Columns("order_id", "warehouse_id", "shipment_date", "delivery_date", "total_amount", "city_id").
			Values(s.OrderID, s.WarehouseID, s.ShipmentDate, s.DeliveryDate, s.TotalAmount.StringFixed(2), s.CityID)
		if _, err := tx.Exec(ctx, insert); err != nil {
			return fmt.Errorf("failed to insert shipment for order %d: %w", s.OrderID, err)
		}
		return nil
	})
}
