package seeder

import "github.com/shopspring/decimal"

type Mode int

const (
	// ModeLookup reads the identifiers already present in the stores.
	ModeLookup Mode = iota
	// ModeFirstLoad inserts reference data and returns the new identifiers.
	ModeFirstLoad
)

func (m Mode) String() string {
	if m == ModeFirstLoad {
		return "first_load"
	}
	return "lookup"
}

type SeedConfig struct {
	Warehouses    int
	Customers     int
	Products      int
	EmailAttempts int
}

var Cities = []string{
	"New York", "Los Angeles", "Chicago", "Houston", "Phoenix",
	"Philadelphia", "San Antonio", "San Diego", "Dallas", "San Jose",
}

var PaymentMethods = []string{
	"Credit Card", "Debit Card", "PayPal", "Bank Transfer", "Cash on Delivery", "Gift Card",
}

const (
	minCapacity    = 100
	maxCapacity    = 10000
	maxPhoneLength = 15
)

var (
	minPrice = decimal.RequireFromString("1.00")
	maxPrice = decimal.RequireFromString("500.00")
)
