package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
)

// SQLDialect describes a database/sql backed provider.
type SQLDialect struct {
	Provider    string
	Driver      string
	Placeholder squirrel.PlaceholderFormat
	Conflict    ConflictStyle
	// Returning selects "INSERT ... RETURNING id" over Result.LastInsertId.
	Returning bool
}

// SQLDB implements Adapter on top of database/sql. Provider packages embed
// it and supply Connect.
type SQLDB struct {
	db      *sql.DB
	dialect SQLDialect
	qb      squirrel.StatementBuilderType
}

type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func NewSQLDB(dialect SQLDialect) *SQLDB {
	return &SQLDB{
		dialect: dialect,
		qb:      squirrel.StatementBuilder.PlaceholderFormat(dialect.Placeholder),
	}
}

// Open opens and pings the pool. The pool is sized for a single writer.
func (s *SQLDB) Open(ctx context.Context, dsn string) error {
	db, err := sql.Open(s.dialect.Driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s connection: %w", s.dialect.Provider, err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(3 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping %s: %w", s.dialect.Provider, err)
	}

	s.db = db
	return nil
}

func (s *SQLDB) DB() *sql.DB {
	return s.db
}

func (s *SQLDB) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLDB) Provider() string {
	return s.dialect.Provider
}

func (s *SQLDB) Builder() squirrel.StatementBuilderType {
	return s.qb
}

func (s *SQLDB) IgnoreConflict(insert squirrel.InsertBuilder, column string) squirrel.InsertBuilder {
	return s.dialect.Conflict.IgnoreConflict(insert, column)
}

func (s *SQLDB) Upsert(insert squirrel.InsertBuilder, column string, update ...string) squirrel.InsertBuilder {
	return s.dialect.Conflict.Upsert(insert, column, update...)
}

func (s *SQLDB) Exec(ctx context.Context, q squirrel.Sqlizer) (int64, error) {
	return sqlExec(ctx, s.db, q)
}

func (s *SQLDB) InsertReturningID(ctx context.Context, insert squirrel.InsertBuilder, idColumn string) (int64, error) {
	return sqlInsertReturningID(ctx, s.db, s.dialect, insert, idColumn)
}

func (s *SQLDB) Query(ctx context.Context, q squirrel.Sqlizer, scan func(Scanner) error) error {
	return sqlQuery(ctx, s.db, q, scan)
}

func (s *SQLDB) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &sqlTx{tx: tx, dialect: s.dialect}, nil
}

type sqlTx struct {
	tx      *sql.Tx
	dialect SQLDialect
}

func (t *sqlTx) Exec(ctx context.Context, q squirrel.Sqlizer) (int64, error) {
	return sqlExec(ctx, t.tx, q)
}

func (t *sqlTx) InsertReturningID(ctx context.Context, insert squirrel.InsertBuilder, idColumn string) (int64, error) {
	return sqlInsertReturningID(ctx, t.tx, t.dialect, insert, idColumn)
}

func (t *sqlTx) Query(ctx context.Context, q squirrel.Sqlizer, scan func(Scanner) error) error {
	return sqlQuery(ctx, t.tx, q, scan)
}

func (t *sqlTx) Commit(ctx context.Context) error {
	return t.tx.Commit()
}

func (t *sqlTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

func sqlExec(ctx context.Context, q sqlQuerier, stmt squirrel.Sqlizer) (int64, error) {
	query, args, err := stmt.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build statement: %w", err)
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}

func sqlInsertReturningID(ctx context.Context, q sqlQuerier, dialect SQLDialect, insert squirrel.InsertBuilder, idColumn string) (int64, error) {
	if dialect.Returning {
		query, args, err := insert.Suffix("RETURNING " + idColumn).ToSql()
		if err != nil {
			return 0, fmt.Errorf("failed to build insert: %w", err)
		}
		var id int64
		if err := q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, ErrNoGeneratedID
			}
			return 0, err
		}
		return id, nil
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert: %w", err)
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoGeneratedID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return 0, ErrNoGeneratedID
	}
	if id == 0 {
		return 0, ErrNoGeneratedID
	}
	return id, nil
}

func sqlQuery(ctx context.Context, q sqlQuerier, stmt squirrel.Sqlizer, scan func(Scanner) error) error {
	query, args, err := stmt.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
