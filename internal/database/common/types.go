package common

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
)

// ErrNoGeneratedID is returned when an insert completes without yielding
// the store-assigned identifier.
var ErrNoGeneratedID = errors.New("insert returned no generated id")

type Scanner interface {
	Scan(dest ...any) error
}

type Querier interface {
	Exec(ctx context.Context, q squirrel.Sqlizer) (int64, error)
	InsertReturningID(ctx context.Context, insert squirrel.InsertBuilder, idColumn string) (int64, error)
	Query(ctx context.Context, q squirrel.Sqlizer, scan func(Scanner) error) error
}

type Tx interface {
	Querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Dialect covers the statement shapes that differ between providers.
type Dialect interface {
	Builder() squirrel.StatementBuilderType
	IgnoreConflict(insert squirrel.InsertBuilder, column string) squirrel.InsertBuilder
	Upsert(insert squirrel.InsertBuilder, column string, update ...string) squirrel.InsertBuilder
}

type Adapter interface {
	Querier
	Dialect
	Connect(ctx context.Context, url string) error
	Ping(ctx context.Context) error
	Close() error
	Provider() string
	Begin(ctx context.Context) (Tx, error)
}
