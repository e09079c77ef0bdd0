package generator

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Majid-Chaudhary/oltp-sample/internal/database"
	"github.com/Majid-Chaudhary/oltp-sample/internal/types"
)

// scriptedRand returns the queued values in order, then zeros.
type scriptedRand struct {
	values []int
	calls  []int
}

func (r *scriptedRand) Intn(n int) int {
	r.calls = append(r.calls, n)
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[0]
	r.values = r.values[1:]
	if v >= n {
		panic("scripted value out of range")
	}
	return v
}

type memRetail struct {
	prices   map[int64]decimal.Decimal
	orders   []types.Order
	items    []types.OrderItem
	nextID   int64
	noID     bool
	orderErr error
}

func (m *memRetail) InsertCustomer(ctx context.Context, c types.Customer) (int64, error) { return 0, nil }
func (m *memRetail) InsertProduct(ctx context.Context, p types.Product) (int64, error)   { return 0, nil }
func (m *memRetail) CustomerIDs(ctx context.Context) ([]int64, error)                    { return nil, nil }
func (m *memRetail) ProductIDs(ctx context.Context) ([]int64, error)                     { return nil, nil }

func (m *memRetail) ProductPrices(ctx context.Context, ids []int64) (map[int64]decimal.Decimal, error) {
	out := make(map[int64]decimal.Decimal)
	for _, id := range ids {
		if p, ok := m.prices[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (m *memRetail) CreateOrder(ctx context.Context, order types.Order, items []types.OrderItem) (int64, error) {
	if m.orderErr != nil {
		return 0, m.orderErr
	}
	if m.noID {
		return 0, nil
	}
	m.nextID++
	order.ID = m.nextID
	m.orders = append(m.orders, order)
	for _, item := range items {
		item.OrderID = order.ID
		m.items = append(m.items, item)
	}
	return order.ID, nil
}

type memLogistics struct {
	shipments []types.Shipment
	err       error
}

func (m *memLogistics) InsertCity(ctx context.Context, name string) (bool, error) { return true, nil }
func (m *memLogistics) InsertWarehouse(ctx context.Context, w types.Warehouse) (int64, error) {
	return 0, nil
}
func (m *memLogistics) CityIDs(ctx context.Context) ([]int64, error)      { return nil, nil }
func (m *memLogistics) WarehouseIDs(ctx context.Context) ([]int64, error) { return nil, nil }

func (m *memLogistics) CreateShipment(ctx context.Context, s types.Shipment) error {
	if m.err != nil {
		return m.err
	}
	m.shipments = append(m.shipments, s)
	return nil
}

type memAccounts struct {
	transactions []types.Transaction
	err          error
}

func (m *memAccounts) InsertPaymentMethod(ctx context.Context, name string) (bool, error) {
	return true, nil
}
func (m *memAccounts) PaymentMethodIDs(ctx context.Context) ([]int64, error) { return nil, nil }

func (m *memAccounts) CreateTransaction(ctx context.Context, t types.Transaction) error {
	if m.err != nil {
		return m.err
	}
	m.transactions = append(m.transactions, t)
	return nil
}

type recordingSink struct {
	groups []types.OrderGroup
}

func (s *recordingSink) Committed(ctx context.Context, group types.OrderGroup) error {
	s.groups = append(s.groups, group)
	return nil
}

var fixedNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func refs() types.ReferenceSet {
	return types.ReferenceSet{
		Customers:      []int64{1, 2, 3},
		Products:       []int64{10, 20},
		Warehouses:     []int64{100},
		Cities:         []int64{5, 6},
		PaymentMethods: []int64{7},
	}
}

func prices() map[int64]decimal.Decimal {
	return map[int64]decimal.Decimal{
		10: decimal.RequireFromString("5.00"),
		20: decimal.RequireFromString("3.00"),
	}
}

type fixture struct {
	retail    *memRetail
	logistics *memLogistics
	accounts  *memAccounts
	sink      *recordingSink
	hook      *test.Hook
}

func newGenerator(r Rand, orderDate string) (*Generator, *fixture) {
	logger, hook := test.NewNullLogger()
	f := &fixture{
		retail:    &memRetail{prices: prices()},
		logistics: &memLogistics{},
		accounts:  &memAccounts{},
		sink:      &recordingSink{},
		hook:      hook,
	}
	g := New(f.retail, f.logistics, f.accounts, Options{
		MaxItems:    5,
		MaxQuantity: 10,
		OrderDate:   orderDate,
		Rand:        r,
		Now:         func() time.Time { return fixedNow },
		Sink:        f.sink,
	}, logger)
	return g, f
}

func TestScriptedOrderTotals(t *testing.T) {
	// customer idx, k-1, (product idx, qty-1) x2, warehouse, city, payment, ship delay, delivery days-1
	r := &scriptedRand{values: []int{0, 1, 0, 1, 1, 0, 0, 1, 0, 5, 2}}
	g, f := newGenerator(r, OrderDateNow)

	group, err := g.GenerateOne(context.Background(), refs())
	require.NoError(t, err)

	thirteen := decimal.RequireFromString("13.00")
	assert.True(t, thirteen.Equal(group.Order.TotalAmount), group.Order.TotalAmount.String())
	assert.True(t, thirteen.Equal(group.Shipment.TotalAmount))
	assert.True(t, thirteen.Equal(group.Transaction.Amount))
	assert.Equal(t, "13.00", group.Order.TotalAmount.StringFixed(2))

	require.Len(t, group.Items, 2)
	assert.Equal(t, int64(10), group.Items[0].ProductID)
	assert.Equal(t, 2, group.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("10.00").Equal(group.Items[0].Subtotal))
	assert.Equal(t, int64(20), group.Items[1].ProductID)
	assert.Equal(t, 1, group.Items[1].Quantity)

	assert.Equal(t, int64(1), group.Order.CustomerID)
	assert.Equal(t, int64(6), group.Shipment.CityID)
	assert.Equal(t, int64(100), group.Shipment.WarehouseID)
	assert.Equal(t, int64(7), group.Transaction.PaymentMethodID)
	assert.Equal(t, fixedNow, group.Order.OrderDate)
	assert.Equal(t, fixedNow.Add(5*time.Hour), group.Shipment.ShipmentDate)
	assert.Equal(t, fixedNow.Add(5*time.Hour).AddDate(0, 0, 3), group.Shipment.DeliveryDate)

	require.Len(t, f.retail.orders, 1)
	orderID := f.retail.orders[0].ID
	assert.Equal(t, orderID, group.Order.ID)
	require.Len(t, f.logistics.shipments, 1)
	assert.Equal(t, orderID, f.logistics.shipments[0].OrderID)
	assert.True(t, thirteen.Equal(f.logistics.shipments[0].TotalAmount))
	require.Len(t, f.accounts.transactions, 1)
	assert.Equal(t, orderID, f.accounts.transactions[0].OrderID)
	assert.True(t, thirteen.Equal(f.accounts.transactions[0].Amount))

	assert.Len(t, f.sink.groups, 1)
	assert.Equal(t, []int{3, 5, 2, 10, 2, 10, 1, 2, 1, maxShipDelay, maxDeliveryDays}, r.calls)
}

func TestDuplicateProductLinesAreKept(t *testing.T) {
	r := &scriptedRand{values: []int{2, 1, 0, 0, 0, 3}}
	g, f := newGenerator(r, OrderDateNow)

	group, err := g.GenerateOne(context.Background(), refs())
	require.NoError(t, err)

	require.Len(t, group.Items, 2)
	assert.Equal(t, int64(10), group.Items[0].ProductID)
	assert.Equal(t, int64(10), group.Items[1].ProductID)
	assert.Len(t, f.retail.items, 2)
	assert.True(t, decimal.RequireFromString("25.00").Equal(group.Order.TotalAmount))
}

func TestGroupInvariants(t *testing.T) {
	g, f := newGenerator(rand.New(rand.NewSource(42)), OrderDateRandom)

	stats := g.Generate(context.Background(), refs(), 500)
	assert.Equal(t, Stats{Attempted: 500, Committed: 500}, stats)
	require.Len(t, f.sink.groups, 500)

	yearStart := time.Date(fixedNow.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	for _, group := range f.sink.groups {
		require.GreaterOrEqual(t, len(group.Items), 1)
		require.LessOrEqual(t, len(group.Items), 5)

		sum := decimal.Zero
		for _, item := range group.Items {
			require.GreaterOrEqual(t, item.Quantity, 1)
			require.LessOrEqual(t, item.Quantity, 10)
			require.Equal(t, group.Order.ID, item.OrderID)
			sum = sum.Add(item.Subtotal)
		}
		require.True(t, sum.Equal(group.Order.TotalAmount))
		require.True(t, group.Order.TotalAmount.Equal(group.Shipment.TotalAmount))
		require.True(t, group.Order.TotalAmount.Equal(group.Transaction.Amount))

		require.False(t, group.Order.OrderDate.Before(yearStart))
		require.False(t, group.Order.OrderDate.After(fixedNow))
		require.False(t, group.Shipment.ShipmentDate.Before(group.Order.OrderDate))
		require.False(t, group.Shipment.DeliveryDate.Before(group.Shipment.ShipmentDate))
		require.True(t, group.Shipment.DeliveryDate.After(fixedNow))
	}
}

func TestAccountsFailureLeavesOrphan(t *testing.T) {
	g, f := newGenerator(rand.New(rand.NewSource(7)), OrderDateNow)
	f.accounts.err = errors.New("accounts store unavailable")

	group, err := g.GenerateOne(context.Background(), refs())
	require.Error(t, err)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageAccounts, stageErr.Stage)
	assert.True(t, stageErr.Orphaned())
	assert.NotZero(t, stageErr.OrderID)
	assert.Equal(t, stageErr.OrderID, group.Order.ID)

	// order, items and shipment stay committed
	require.Len(t, f.retail.orders, 1)
	assert.Equal(t, stageErr.OrderID, f.retail.orders[0].ID)
	assert.NotEmpty(t, f.retail.items)
	require.Len(t, f.logistics.shipments, 1)
	assert.Equal(t, stageErr.OrderID, f.logistics.shipments[0].OrderID)
	assert.Empty(t, f.accounts.transactions)
	assert.Empty(t, f.sink.groups)
}

func TestGenerateCountsFailures(t *testing.T) {
	g, f := newGenerator(rand.New(rand.NewSource(9)), OrderDateNow)
	f.logistics.err = errors.New("logistics down")

	stats := g.Generate(context.Background(), refs(), 4)
	assert.Equal(t, Stats{Attempted: 4, Failed: 4, Orphaned: 4}, stats)
	assert.Len(t, f.retail.orders, 4)

	entry := f.hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "logistics", entry.Data["stage"])
}

func TestMissingOrderIDSkipsIteration(t *testing.T) {
	g, f := newGenerator(rand.New(rand.NewSource(11)), OrderDateNow)
	f.retail.noID = true

	_, err := g.GenerateOne(context.Background(), refs())
	require.ErrorIs(t, err, database.ErrNoGeneratedID)

	stats := g.Generate(context.Background(), refs(), 3)
	assert.Equal(t, Stats{Attempted: 3, Failed: 3, MissingID: 3}, stats)
	assert.Empty(t, f.logistics.shipments)
	assert.Empty(t, f.accounts.transactions)
}

func TestRetailFailureIsNotOrphan(t *testing.T) {
	g, f := newGenerator(rand.New(rand.NewSource(13)), OrderDateNow)
	f.retail.orderErr = errors.New("insert failed")

	_, err := g.GenerateOne(context.Background(), refs())
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageRetail, stageErr.Stage)
	assert.False(t, stageErr.Orphaned())
	assert.Empty(t, f.logistics.shipments)
}

func TestUnknownProductPrice(t *testing.T) {
	g, f := newGenerator(rand.New(rand.NewSource(15)), OrderDateNow)
	f.retail.prices = map[int64]decimal.Decimal{}

	_, err := g.GenerateOne(context.Background(), refs())
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StagePricing, stageErr.Stage)
	assert.Empty(t, f.retail.orders)
}

func TestEmptyReferenceData(t *testing.T) {
	g, f := newGenerator(rand.New(rand.NewSource(17)), OrderDateNow)
	empty := refs()
	empty.Warehouses = nil

	_, err := g.GenerateOne(context.Background(), empty)
	require.ErrorIs(t, err, ErrNoReferenceData)

	stats := g.Generate(context.Background(), empty, 10)
	assert.Zero(t, stats.Attempted)
	assert.Empty(t, f.retail.orders)
}

func TestGenerateStopsOnCancel(t *testing.T) {
	g, f := newGenerator(rand.New(rand.NewSource(19)), OrderDateNow)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats := g.Generate(ctx, refs(), 100)
	assert.Zero(t, stats.Attempted)
	assert.Empty(t, f.retail.orders)
}
