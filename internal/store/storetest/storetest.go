// Package storetest opens throwaway sqlite databases carrying the three
// store schemas.
package storetest

import (
	"context"
	_ "embed"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Majid-Chaudhary/oltp-sample/internal/database"
	"github.com/Majid-Chaudhary/oltp-sample/internal/database/common"
	"github.com/Majid-Chaudhary/oltp-sample/internal/database/sqlite"
)

var (
	//go:embed retail.sql
	RetailSchema string
	//go:embed logistics.sql
	LogisticsSchema string
	//go:embed accounts.sql
	AccountsSchema string
)

// Open creates a sqlite file under t.TempDir, applies schema and closes
// the adapter when the test ends.
func Open(t *testing.T, name, schema string) database.Adapter {
	t.Helper()
	ctx := context.Background()

	adapter := sqlite.New()
	path := filepath.Join(t.TempDir(), name+".db")
	require.NoError(t, adapter.Connect(ctx, "sqlite://"+path))
	t.Cleanup(func() { adapter.Close() })

	require.NoError(t, common.ExecScript(ctx, adapter, schema))
	return adapter
}

type Stores struct {
	Retail    database.Adapter
	Logistics database.Adapter
	Accounts  database.Adapter
}

func OpenAll(t *testing.T) Stores {
	t.Helper()
	return Stores{
		Retail:    Open(t, "retail", RetailSchema),
		Logistics: Open(t, "logistics", LogisticsSchema),
		Accounts:  Open(t, "accounts", AccountsSchema),
	}
}
