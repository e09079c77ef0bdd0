package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID      int64
	Name    string
	Email   string
	Address string
	Phone   string
}

type Product struct {
	ID       int64
	Name     string
	Category string // free text, no categories table is assumed
	Price    decimal.Decimal
}

type Warehouse struct {
	ID       int64
	Location string
	Capacity int
}

type City struct {
	ID   int64
	Name string
}

type PaymentMethod struct {
	ID   int64
	Name string
}

type Order struct {
	ID          int64           `json:"order_id"`
	CustomerID  int64           `json:"customer_id"`
	OrderDate   time.Time       `json:"order_date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type OrderItem struct {
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Shipment lives in the logistics store. OrderID points into the retail
// store and is not backed by a foreign key.
type Shipment struct {
	OrderID      int64           `json:"order_id"`
	WarehouseID  int64           `json:"warehouse_id"`
	CityID       int64           `json:"city_id"`
	ShipmentDate time.Time       `json:"shipment_date"`
	DeliveryDate time.Time       `json:"delivery_date"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// Transaction lives in the accounts store, see Shipment.
type Transaction struct {
	OrderID         int64           `json:"order_id"`
	CustomerID      int64           `json:"customer_id"`
	PaymentMethodID int64           `json:"payment_method_id"`
	TransactionDate time.Time       `json:"transaction_date"`
	Amount          decimal.Decimal `json:"amount"`
}

// OrderGroup is the set of rows sharing one order id across the three stores.
type OrderGroup struct {
	Order       Order       `json:"order"`
	Items       []OrderItem `json:"items"`
	Shipment    Shipment    `json:"shipment"`
	Transaction Transaction `json:"transaction"`
}

// ItemsTotal sums the item subtotals and rounds to currency precision.
func (g OrderGroup) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range g.Items {
		total = total.Add(item.Subtotal)
	}
	return total.Round(2)
}

// ReferenceSet holds the identifiers the fact generator samples from.
type ReferenceSet struct {
	Customers      []int64
	Products       []int64
	Warehouses     []int64
	Cities         []int64
	PaymentMethods []int64
}

// Missing returns the names of the empty identifier sets.
func (r ReferenceSet) Missing() []string {
	var missing []string
	sets := []struct {
		name string
		ids  []int64
	}{
		{"customers", r.Customers},
		{"products", r.Products},
		{"warehouses", r.Warehouses},
		{"cities", r.Cities},
		{"payment_methods", r.PaymentMethods},
	}
	for _, s := range sets {
		if len(s.ids) == 0 {
			missing = append(missing, s.name)
		}
	}
	return missing
}
