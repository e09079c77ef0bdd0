package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Majid-Chaudhary/oltp-sample/internal/database"
)

const (
	StoreRetail    = "retail"
	StoreLogistics = "logistics"
	StoreAccounts  = "accounts"
)

type Config struct {
	Version   string    `json:"version" mapstructure:"version"`
	Databases Databases `json:"databases" mapstructure:"databases"`
	Seed      Seed      `json:"seed" mapstructure:"seed"`
	Generator Generator `json:"generator" mapstructure:"generator"`
	Settings  Settings  `json:"settings" mapstructure:"settings"`
	Events    Events    `json:"events" mapstructure:"events"`
	Log       Log       `json:"log" mapstructure:"log"`
}

type Databases struct {
	Retail    Database `json:"retail" mapstructure:"retail"`
	Logistics Database `json:"logistics" mapstructure:"logistics"`
	Accounts  Database `json:"accounts" mapstructure:"accounts"`
}

type Database struct {
	Provider string `json:"provider" mapstructure:"provider"`
	URLEnv   string `json:"url_env" mapstructure:"url_env"`
}

type Seed struct {
	Warehouses    int `json:"warehouses" mapstructure:"warehouses"`
	Customers     int `json:"customers" mapstructure:"customers"`
	Products      int `json:"products" mapstructure:"products"`
	EmailAttempts int `json:"email_attempts" mapstructure:"email_attempts"`
}

type Generator struct {
	MaxItems    int    `json:"max_items" mapstructure:"max_items"`
	MaxQuantity int    `json:"max_quantity" mapstructure:"max_quantity"`
	OrderDate   string `json:"order_date" mapstructure:"order_date"` // "now" or "random"
	Count       int    `json:"count" mapstructure:"count"`           // bulk mode default
}

type Settings struct {
	Source string `json:"source" mapstructure:"source"` // table, redis, file
	Store  string `json:"store" mapstructure:"store"`   // which database holds the table
	Table  string `json:"table" mapstructure:"table"`
	File   string `json:"file" mapstructure:"file"`
	Redis  Redis  `json:"redis" mapstructure:"redis"`
}

type Redis struct {
	Addr     string `json:"addr" mapstructure:"addr"`
	Password string `json:"password" mapstructure:"password"`
	DB       int    `json:"db" mapstructure:"db"`
	Key      string `json:"key" mapstructure:"key"`
}

type Events struct {
	Enabled bool     `json:"enabled" mapstructure:"enabled"`
	Brokers []string `json:"brokers" mapstructure:"brokers"`
	Topic   string   `json:"topic" mapstructure:"topic"`
}

type Log struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"` // text or json
}

func Load() (*Config, error) {
	var cfg Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Version == "" {
		c.Version = "3"
	}

	defaultDatabase(&c.Databases.Retail, "RETAIL_DATABASE_URL")
	defaultDatabase(&c.Databases.Logistics, "LOGISTICS_DATABASE_URL")
	defaultDatabase(&c.Databases.Accounts, "ACCOUNTS_DATABASE_URL")

	if c.Seed.Warehouses == 0 {
		c.Seed.Warehouses = 10
	}
	if c.Seed.Customers == 0 {
		c.Seed.Customers = 1000
	}
	if c.Seed.Products == 0 {
		c.Seed.Products = 100
	}
	if c.Seed.EmailAttempts == 0 {
		c.Seed.EmailAttempts = 10
	}

	if c.Generator.MaxItems == 0 {
		c.Generator.MaxItems = 5
	}
	if c.Generator.MaxQuantity == 0 {
		c.Generator.MaxQuantity = 10
	}
	if c.Generator.OrderDate == "" {
		c.Generator.OrderDate = "now"
	}
	if c.Generator.Count == 0 {
		c.Generator.Count = 100000
	}

	if c.Settings.Source == "" {
		c.Settings.Source = "table"
	}
	if c.Settings.Store == "" {
		c.Settings.Store = StoreRetail
	}
	if c.Settings.Table == "" {
		c.Settings.Table = "settings"
	}
	if c.Settings.File == "" {
		c.Settings.File = "settings.yaml"
	}
	if c.Settings.Redis.Addr == "" {
		c.Settings.Redis.Addr = "localhost:6379"
	}
	if c.Settings.Redis.Key == "" {
		c.Settings.Redis.Key = "oltp:settings"
	}

	if c.Events.Topic == "" {
		c.Events.Topic = "order-groups"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func defaultDatabase(db *Database, urlEnv string) {
	if db.Provider == "" {
		db.Provider = "postgresql"
	}
	if db.URLEnv == "" {
		db.URLEnv = urlEnv
	}
}

// Database returns the connection settings of the named store.
func (c *Config) Database(store string) (Database, error) {
	switch store {
	case StoreRetail:
		return c.Databases.Retail, nil
	case StoreLogistics:
		return c.Databases.Logistics, nil
	case StoreAccounts:
		return c.Databases.Accounts, nil
	default:
		return Database{}, fmt.Errorf("unknown store: %s", store)
	}
}

func (d Database) GetURL() (string, error) {
	dbURL := os.Getenv(d.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", d.URLEnv)
	}
	return dbURL, nil
}

func (c *Config) Validate() error {
	for _, name := range []string{StoreRetail, StoreLogistics, StoreAccounts} {
		db, _ := c.Database(name)
		if !database.IsSupportedProvider(db.Provider) {
			return fmt.Errorf("unsupported database provider for %s: %s. Supported providers: %v",
				name, db.Provider, database.SupportedProviders)
		}
		if db.URLEnv == "" {
			return fmt.Errorf("url_env for %s cannot be empty", name)
		}
	}

	if c.Seed.Warehouses < 1 || c.Seed.Customers < 1 || c.Seed.Products < 1 {
		return fmt.Errorf("seed counts must be positive")
	}
	if c.Seed.EmailAttempts < 1 {
		return fmt.Errorf("seed.email_attempts must be positive")
	}

	if c.Generator.MaxItems < 1 {
		return fmt.Errorf("generator.max_items must be at least 1")
	}
	if c.Generator.MaxQuantity < 1 {
		return fmt.Errorf("generator.max_quantity must be at least 1")
	}
	switch c.Generator.OrderDate {
	case "now", "random":
	default:
		return fmt.Errorf("generator.order_date must be \"now\" or \"random\", got %q", c.Generator.OrderDate)
	}

	switch c.Settings.Source {
	case "table":
		if _, err := c.Database(c.Settings.Store); err != nil {
			return fmt.Errorf("settings.store: %w", err)
		}
	case "redis", "file":
	default:
		return fmt.Errorf("unsupported settings source: %s", c.Settings.Source)
	}

	if c.Events.Enabled && len(c.Events.Brokers) == 0 {
		return fmt.Errorf("events.brokers cannot be empty when events are enabled")
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", c.Log.Format)
	}

	return nil
}
