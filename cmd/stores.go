package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Majid-Chaudhary/oltp-sample/internal/config"
	"github.com/Majid-Chaudhary/oltp-sample/internal/database"
	"github.com/Majid-Chaudhary/oltp-sample/internal/logging"
	"github.com/Majid-Chaudhary/oltp-sample/internal/seeder"
	"github.com/Majid-Chaudhary/oltp-sample/internal/store"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logrus.Logger {
	return logging.New(cfg.Log)
}

func openStore(ctx context.Context, cfg *config.Config, name string) (database.Adapter, error) {
	db, err := cfg.Database(name)
	if err != nil {
		return nil, err
	}
	url, err := db.GetURL()
	if err != nil {
		return nil, err
	}
	adapter, err := database.Open(ctx, db.Provider, url)
	if err != nil {
		return nil, fmt.Errorf("%s store: %w", name, err)
	}
	return adapter, nil
}

// connections holds one adapter per store for the life of a command.
type connections struct {
	retail    database.Adapter
	logistics database.Adapter
	accounts  database.Adapter
}

// openAll connects to the three stores. Any failure closes what was
// already opened.
func openAll(ctx context.Context, cfg *config.Config) (*connections, error) {
	c := &connections{}
	var err error

	if c.retail, err = openStore(ctx, cfg, config.StoreRetail); err != nil {
		return nil, err
	}
	if c.logistics, err = openStore(ctx, cfg, config.StoreLogistics); err != nil {
		c.Close()
		return nil, err
	}
	if c.accounts, err = openStore(ctx, cfg, config.StoreAccounts); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// byName returns the adapter of the named store.
func (c *connections) byName(name string) database.Adapter {
	switch name {
	case config.StoreLogistics:
		return c.logistics
	case config.StoreAccounts:
		return c.accounts
	default:
		return c.retail
	}
}

func (c *connections) Close() {
	for _, db := range []database.Adapter{c.accounts, c.logistics, c.retail} {
		if db != nil {
			db.Close()
		}
	}
}

func (c *connections) newLoader(cfg *config.Config, log logrus.FieldLogger) *seeder.Loader {
	return seeder.NewLoader(
		store.NewRetail(c.retail),
		store.NewLogistics(c.logistics),
		store.NewAccounts(c.accounts),
		seeder.NewDataGenerator(),
		seeder.SeedConfig{
			Warehouses:    cfg.Seed.Warehouses,
			Customers:     cfg.Seed.Customers,
			Products:      cfg.Seed.Products,
			EmailAttempts: cfg.Seed.EmailAttempts,
		},
		log,
	)
}
