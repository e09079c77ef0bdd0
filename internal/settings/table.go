package settings

import (
	"context"
	"fmt"

	"github.com/Majid-Chaudhary/oltp-sample/internal/database"
)

// TableProvider reads setting_name/setting_value rows from a SQL table.
type TableProvider struct {
	db    database.Adapter
	table string
}

func NewTableProvider(db database.Adapter, table string) *TableProvider {
	if table == "" {
		table = "settings"
	}
	return &TableProvider{db: db, table: table}
}

func (p *TableProvider) Fetch(ctx context.Context) (Settings, error) {
	raw, err := p.Raw(ctx)
	if err != nil {
		return Settings{}, err
	}
	return FromMap(raw), nil
}

// Raw returns every row of the table, including keys FromMap ignores.
func (p *TableProvider) Raw(ctx context.Context) (map[string]string, error) {
	raw := make(map[string]string)
	q := p.db.Builder().Select("setting_name", "setting_value").From(p.table)
	err := p.db.Query(ctx, q, func(row database.Scanner) error {
		var name string
		var value *string
		if err := row.Scan(&name, &value); err != nil {
			return err
		}
		if value != nil {
			raw[name] = *value
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p.table, err)
	}
	return raw, nil
}

func (p *TableProvider) Set(ctx context.Context, key, value string) error {
	insert := p.db.Builder().Insert(p.table).
		Columns("setting_name", "setting_value").
		Values(key, value)
	if _, err := p.db.Exec(ctx, p.db.Upsert(insert, "setting_name", "setting_value")); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}
