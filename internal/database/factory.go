package database

import (
	"context"
	"fmt"

	"github.com/Majid-Chaudhary/oltp-sample/internal/database/mysql"
	"github.com/Majid-Chaudhary/oltp-sample/internal/database/postgres"
	"github.com/Majid-Chaudhary/oltp-sample/internal/database/sqlite"
)

func NewAdapter(provider string) Adapter {
	switch provider {
	case "postgresql", "postgres":
		return postgres.New()
	case "pq":
		return postgres.NewPQ()
	case "mysql":
		return mysql.New()
	case "sqlite", "sqlite3":
		return sqlite.New()
	default:
		return postgres.New()
	}
}

// Open creates the adapter for provider and connects it.
func Open(ctx context.Context, provider, url string) (Adapter, error) {
	adapter := NewAdapter(provider)
	if err := adapter.Connect(ctx, url); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", provider, err)
	}
	return adapter, nil
}
