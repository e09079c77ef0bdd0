package seeder

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Majid-Chaudhary/oltp-sample/internal/database"
	"github.com/Majid-Chaudhary/oltp-sample/internal/store"
	"github.com/Majid-Chaudhary/oltp-sample/internal/types"
)

// Loader populates or looks up the reference data of the three stores.
type Loader struct {
	retail    store.RetailStore
	logistics store.LogisticsStore
	accounts  store.AccountsStore
	faker     Faker
	config    SeedConfig
	log       logrus.FieldLogger
}

func NewLoader(retail store.RetailStore, logistics store.LogisticsStore, accounts store.AccountsStore,
	faker Faker, cfg SeedConfig, log logrus.FieldLogger) *Loader {
	if cfg.EmailAttempts < 1 {
		cfg.EmailAttempts = 1
	}
	return &Loader{
		retail:    retail,
		logistics: logistics,
		accounts:  accounts,
		faker:     faker,
		config:    cfg,
		log:       log,
	}
}

// SeedOrLoad returns the identifier sets the generator samples from. In
// ModeFirstLoad the customers, products and warehouses are the rows just
// inserted. Cities and payment methods are always read back from the store.
// A failing insert stops seeding and leaves earlier rows in place.
func (l *Loader) SeedOrLoad(ctx context.Context, mode Mode) (types.ReferenceSet, error) {
	var refs types.ReferenceSet
	var err error

	l.log.WithField("mode", mode.String()).Info("loading reference data")

	if mode == ModeFirstLoad {
		refs, err = l.seed(ctx)
	} else {
		refs, err = l.lookup(ctx)
	}
	if err != nil {
		return types.ReferenceSet{}, err
	}

	if refs.Cities, err = l.logistics.CityIDs(ctx); err != nil {
		return types.ReferenceSet{}, err
	}
	if refs.PaymentMethods, err = l.accounts.PaymentMethodIDs(ctx); err != nil {
		return types.ReferenceSet{}, err
	}

	l.log.WithFields(logrus.Fields{
		"customers":       len(refs.Customers),
		"products":        len(refs.Products),
		"warehouses":      len(refs.Warehouses),
		"cities":          len(refs.Cities),
		"payment_methods": len(refs.PaymentMethods),
	}).Info("reference data ready")

	return refs, nil
}

func (l *Loader) lookup(ctx context.Context) (types.ReferenceSet, error) {
	var refs types.ReferenceSet
	var err error

	if refs.Customers, err = l.retail.CustomerIDs(ctx); err != nil {
		return refs, err
	}
	if refs.Products, err = l.retail.ProductIDs(ctx); err != nil {
		return refs, err
	}
	if refs.Warehouses, err = l.logistics.WarehouseIDs(ctx); err != nil {
		return refs, err
	}
	return refs, nil
}

func (l *Loader) seed(ctx context.Context) (types.ReferenceSet, error) {
	var refs types.ReferenceSet
	var err error

	if err = l.seedCities(ctx); err != nil {
		return refs, err
	}
	if err = l.seedPaymentMethods(ctx); err != nil {
		return refs, err
	}
	if refs.Warehouses, err = l.seedWarehouses(ctx); err != nil {
		return refs, err
	}
	if refs.Customers, err = l.seedCustomers(ctx); err != nil {
		return refs, err
	}
	if refs.Products, err = l.seedProducts(ctx); err != nil {
		return refs, err
	}
	return refs, nil
}

func (l *Loader) seedCities(ctx context.Context) error {
	inserted := 0
	for _, name := range Cities {
		ok, err := l.logistics.InsertCity(ctx, name)
		if err != nil {
			return err
		}
		if ok {
			inserted++
		}
	}
	l.log.WithFields(logrus.Fields{"inserted": inserted, "skipped": len(Cities) - inserted}).Info("cities populated")
	return nil
}

func (l *Loader) seedPaymentMethods(ctx context.Context) error {
	inserted := 0
	for _, name := range PaymentMethods {
		ok, err := l.accounts.InsertPaymentMethod(ctx, name)
		if err != nil {
			return err
		}
		if ok {
			inserted++
		}
	}
	l.log.WithFields(logrus.Fields{"inserted": inserted, "skipped": len(PaymentMethods) - inserted}).Info("payment methods populated")
	return nil
}

func (l *Loader) seedWarehouses(ctx context.Context) ([]int64, error) {
	ids := make([]int64, 0, l.config.Warehouses)
	for i := 0; i < l.config.Warehouses; i++ {
		w := types.Warehouse{
			Location: l.faker.City(),
			Capacity: l.faker.IntRange(minCapacity, maxCapacity),
		}
		id, err := l.logistics.InsertWarehouse(ctx, w)
		if err != nil {
			return nil, fmt.Errorf("failed to insert warehouse: %w", err)
		}
		ids = append(ids, id)
	}
	l.log.WithField("count", len(ids)).Info("warehouses populated")
	return ids, nil
}

func (l *Loader) seedCustomers(ctx context.Context) ([]int64, error) {
	ids := make([]int64, 0, l.config.Customers)
	used := make(map[string]bool, l.config.Customers)

	for i := 0; i < l.config.Customers; i++ {
		id, err := l.insertCustomer(ctx, used)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	l.log.WithField("count", len(ids)).Info("customers populated")
	return ids, nil
}

// insertCustomer retries the email on local or store-side collisions, then
// falls back to a suffixed address that is unused locally.
func (l *Loader) insertCustomer(ctx context.Context, used map[string]bool) (int64, error) {
	c := types.Customer{
		Name:    l.faker.Name(),
		Address: l.faker.Address(),
		Phone:   truncate(l.faker.Phone(), maxPhoneLength),
	}

	for attempt := 0; attempt < l.config.EmailAttempts; attempt++ {
		email := l.faker.Email()
		if used[email] {
			continue
		}
		used[email] = true
		c.Email = email

		id, err := l.retail.InsertCustomer(ctx, c)
		if err == nil {
			return id, nil
		}
		if !database.IsUniqueViolation(err) {
			return 0, fmt.Errorf("failed to insert customer: %w", err)
		}
		l.log.WithField("email", email).Debug("email already stored, regenerating")
	}

	base := l.faker.Email()
	for n := len(used) + 1; ; n++ {
		email := suffixEmail(base, n)
		if used[email] {
			continue
		}
		used[email] = true
		c.Email = email

		id, err := l.retail.InsertCustomer(ctx, c)
		if err == nil {
			return id, nil
		}
		if !database.IsUniqueViolation(err) {
			return 0, fmt.Errorf("failed to insert customer: %w", err)
		}
	}
}

func (l *Loader) seedProducts(ctx context.Context) ([]int64, error) {
	ids := make([]int64, 0, l.config.Products)
	for i := 1; i <= l.config.Products; i++ {
		p := types.Product{
			Name:     fmt.Sprintf("Product %04d", i),
			Category: l.faker.Word(),
			Price:    l.faker.Price(minPrice, maxPrice),
		}
		id, err := l.retail.InsertProduct(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to insert product %s: %w", p.Name, err)
		}
		ids = append(ids, id)
	}
	l.log.WithField("count", len(ids)).Info("products populated")
	return ids, nil
}

// suffixEmail turns local@domain into local+n@domain.
func suffixEmail(email string, n int) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return fmt.Sprintf("%s+%d", email, n)
	}
	return fmt.Sprintf("%s+%d%s", email[:at], n, email[at:])
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
