package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Majid-Chaudhary/oltp-sample/internal/database"
	"github.com/Majid-Chaudhary/oltp-sample/internal/store"
	"github.com/Majid-Chaudhary/oltp-sample/internal/types"
)

const (
	OrderDateNow    = "now"
	OrderDateRandom = "random"

	progressEvery   = 1000
	maxShipDelay    = 72 // hours after the order
	maxDeliveryDays = 14
)

type Rand interface {
	Intn(n int) int
}

type Options struct {
	MaxItems    int
	MaxQuantity int
	OrderDate   string

	// Optional. Rand and Now default to a time-seeded source and time.Now.
	Rand Rand
	Now  func() time.Time
	Sink Sink
}

// Generator writes linked order groups across the retail, logistics and
// accounts stores. The three stores commit independently, so a failure
// after the retail commit leaves an order without its shipment or
// transaction.
type Generator struct {
	retail    store.RetailStore
	logistics store.LogisticsStore
	accounts  store.AccountsStore
	opts      Options
	log       logrus.FieldLogger
}

type Stats struct {
	Attempted int
	Committed int
	Failed    int
	Orphaned  int
	MissingID int
}

func (s *Stats) Add(o Stats) {
	s.Attempted += o.Attempted
	s.Committed += o.Committed
	s.Failed += o.Failed
	s.Orphaned += o.Orphaned
	s.MissingID += o.MissingID
}

func New(retail store.RetailStore, logistics store.LogisticsStore, accounts store.AccountsStore,
	opts Options, log logrus.FieldLogger) *Generator {
	if opts.MaxItems < 1 {
		opts.MaxItems = 5
	}
	if opts.MaxQuantity < 1 {
		opts.MaxQuantity = 10
	}
	if opts.OrderDate == "" {
		opts.OrderDate = OrderDateNow
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sink == nil {
		opts.Sink = LogSink{Log: log}
	}
	return &Generator{
		retail:    retail,
		logistics: logistics,
		accounts:  accounts,
		opts:      opts,
		log:       log,
	}
}

type line struct {
	productID int64
	quantity  int
}

// plan holds every random choice of one group so all sampling happens
// before the first write.
type plan struct {
	customerID      int64
	lines           []line
	warehouseID     int64
	cityID          int64
	paymentMethodID int64
	orderDate       time.Time
	shipmentDate    time.Time
	deliveryDate    time.Time
}

func (g *Generator) plan(refs types.ReferenceSet) plan {
	r := g.opts.Rand
	var p plan

	p.customerID = refs.Customers[r.Intn(len(refs.Customers))]

	k := r.Intn(g.opts.MaxItems) + 1
	p.lines = make([]line, 0, k)
	for i := 0; i < k; i++ {
		p.lines = append(p.lines, line{
			productID: refs.Products[r.Intn(len(refs.Products))],
			quantity:  r.Intn(g.opts.MaxQuantity) + 1,
		})
	}

	p.warehouseID = refs.Warehouses[r.Intn(len(refs.Warehouses))]
	p.cityID = refs.Cities[r.Intn(len(refs.Cities))]
	p.paymentMethodID = refs.PaymentMethods[r.Intn(len(refs.PaymentMethods))]

	now := g.opts.Now()
	p.orderDate = now
	if g.opts.OrderDate == OrderDateRandom {
		yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		if span := int(now.Sub(yearStart) / time.Second); span > 0 {
			p.orderDate = yearStart.Add(time.Duration(r.Intn(span+1)) * time.Second)
		}
	}

	p.shipmentDate = p.orderDate.Add(time.Duration(r.Intn(maxShipDelay)) * time.Hour)
	from := p.shipmentDate
	if now.After(from) {
		from = now
	}
	p.deliveryDate = from.AddDate(0, 0, r.Intn(maxDeliveryDays)+1)

	return p
}

// GenerateOne writes one order group. The retail transaction commits the
// order and its items before the shipment and transaction are attempted.
func (g *Generator) GenerateOne(ctx context.Context, refs types.ReferenceSet) (types.OrderGroup, error) {
	if missing := refs.Missing(); len(missing) > 0 {
		return types.OrderGroup{}, fmt.Errorf("%w: %s", ErrNoReferenceData, strings.Join(missing, ", "))
	}

	p := g.plan(refs)

	ids := make([]int64, len(p.lines))
	for i, l := range p.lines {
		ids[i] = l.productID
	}
	prices, err := g.retail.ProductPrices(ctx, ids)
	if err != nil {
		return types.OrderGroup{}, &StageError{Stage: StagePricing, Err: err}
	}

	group := types.OrderGroup{Items: make([]types.OrderItem, 0, len(p.lines))}
	for _, l := range p.lines {
		price, ok := prices[l.productID]
		if !ok {
			return types.OrderGroup{}, &StageError{Stage: StagePricing, Err: fmt.Errorf("no price for product %d", l.productID)}
		}
		group.Items = append(group.Items, types.OrderItem{
			ProductID: l.productID,
			Quantity:  l.quantity,
			Subtotal:  price.Mul(decimal.NewFromInt(int64(l.quantity))).Round(2),
		})
	}

	total := group.ItemsTotal()
	group.Order = types.Order{
		CustomerID:  p.customerID,
		OrderDate:   p.orderDate,
		TotalAmount: total,
	}

	orderID, err := g.retail.CreateOrder(ctx, group.Order, group.Items)
	if err != nil {
		return types.OrderGroup{}, &StageError{Stage: StageRetail, Err: err}
	}
	if orderID == 0 {
		return types.OrderGroup{}, &StageError{Stage: StageRetail, Err: database.ErrNoGeneratedID}
	}

	group.Order.ID = orderID
	for i := range group.Items {
		group.Items[i].OrderID = orderID
	}

	group.Shipment = types.Shipment{
		OrderID:      orderID,
		WarehouseID:  p.warehouseID,
		CityID:       p.cityID,
		ShipmentDate: p.shipmentDate,
		DeliveryDate: p.deliveryDate,
		TotalAmount:  total,
	}
	if err := g.logistics.CreateShipment(ctx, group.Shipment); err != nil {
		return group, &StageError{Stage: StageLogistics, OrderID: orderID, Err: err}
	}

	group.Transaction = types.Transaction{
		OrderID:         orderID,
		CustomerID:      p.customerID,
		PaymentMethodID: p.paymentMethodID,
		TransactionDate: p.orderDate,
		Amount:          total,
	}
	if err := g.accounts.CreateTransaction(ctx, group.Transaction); err != nil {
		return group, &StageError{Stage: StageAccounts, OrderID: orderID, Err: err}
	}

	if err := g.opts.Sink.Committed(ctx, group); err != nil {
		g.log.WithError(err).WithField("order_id", orderID).Warn("failed to publish order group")
	}

	return group, nil
}

// Generate runs n iterations in sequence. Failed iterations are logged and
// skipped. It stops early when ctx is done.
func (g *Generator) Generate(ctx context.Context, refs types.ReferenceSet, n int) Stats {
	var stats Stats

	if missing := refs.Missing(); len(missing) > 0 {
		g.log.WithField("missing", strings.Join(missing, ", ")).Error("cannot generate orders without reference data")
		return stats
	}

	started := time.Now()
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}

		stats.Attempted++
		_, err := g.GenerateOne(ctx, refs)
		if err != nil {
			stats.Failed++
			g.record(&stats, err)
		} else {
			stats.Committed++
		}

		if stats.Attempted%progressEvery == 0 {
			g.log.WithFields(logrus.Fields{
				"attempted": stats.Attempted,
				"committed": stats.Committed,
				"failed":    stats.Failed,
				"elapsed":   time.Since(started).Round(time.Millisecond).String(),
			}).Info("generation progress")
		}
	}

	return stats
}

func (g *Generator) record(stats *Stats, err error) {
	entry := g.log.WithError(err)

	var stageErr *StageError
	if errors.As(err, &stageErr) {
		entry = entry.WithField("stage", string(stageErr.Stage))
		if stageErr.OrderID != 0 {
			entry = entry.WithField("order_id", stageErr.OrderID)
		}
		if stageErr.Orphaned() {
			stats.Orphaned++
		}
	}
	if errors.Is(err, database.ErrNoGeneratedID) {
		stats.MissingID++
	}

	entry.Warn("order group failed, skipping")
}
