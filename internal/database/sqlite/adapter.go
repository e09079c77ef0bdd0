package sqlite

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Majid-Chaudhary/oltp-sample/internal/database/common"
)

type Adapter struct {
	*common.SQLDB
	path string
}

func New() *Adapter {
	return &Adapter{
		SQLDB: common.NewSQLDB(common.SQLDialect{
			Provider:    "sqlite",
			Driver:      "sqlite3",
			Placeholder: squirrel.Question,
			Conflict:    common.OnConflict,
		}),
	}
}

func (s *Adapter) Connect(ctx context.Context, url string) error {
	dbPath := strings.TrimPrefix(url, "sqlite://")
	s.path = dbPath
	if idx := strings.Index(s.path, "?"); idx > 0 {
		s.path = s.path[:idx]
	}
	if !strings.Contains(dbPath, "?") {
		dbPath += "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	}
	return s.Open(ctx, dbPath)
}

// Path is the database file without connection parameters.
func (s *Adapter) Path() string {
	return s.path
}
