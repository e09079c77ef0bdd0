package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"github.com/Majid-Chaudhary/oltp-sample/internal/database/common"
)

// PQAdapter talks to postgres through database/sql and lib/pq. It is
// selected with the "pq" provider.
type PQAdapter struct {
	*common.SQLDB
}

func NewPQ() *PQAdapter {
	return &PQAdapter{
		SQLDB: common.NewSQLDB(common.SQLDialect{
			Provider:    "pq",
			Driver:      "postgres",
			Placeholder: squirrel.Dollar,
			Conflict:    common.OnConflict,
			Returning:   true,
		}),
	}
}

func (p *PQAdapter) Connect(ctx context.Context, url string) error {
	return p.Open(ctx, url)
}
