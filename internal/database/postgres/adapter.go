package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Majid-Chaudhary/oltp-sample/internal/database/common"
)

type Adapter struct {
	pool *pgxpool.Pool
	qb   squirrel.StatementBuilderType
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func New() *Adapter {
	return &Adapter{
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (p *Adapter) Connect(ctx context.Context, url string) error {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return fmt.Errorf("failed to parse connection URL: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = 15 * time.Minute
	config.MaxConnIdleTime = 3 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	p.pool = pool
	return nil
}

func (p *Adapter) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func (p *Adapter) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Adapter) Provider() string {
	return "postgresql"
}

func (p *Adapter) Builder() squirrel.StatementBuilderType {
	return p.qb
}

func (p *Adapter) IgnoreConflict(insert squirrel.InsertBuilder, column string) squirrel.InsertBuilder {
	return common.OnConflict.IgnoreConflict(insert, column)
}

func (p *Adapter) Upsert(insert squirrel.InsertBuilder, column string, update ...string) squirrel.InsertBuilder {
	return common.OnConflict.Upsert(insert, column, update...)
}

func (p *Adapter) Exec(ctx context.Context, q squirrel.Sqlizer) (int64, error) {
	return pgxExec(ctx, p.pool, q)
}

func (p *Adapter) InsertReturningID(ctx context.Context, insert squirrel.InsertBuilder, idColumn string) (int64, error) {
	return pgxInsertReturningID(ctx, p.pool, insert, idColumn)
}

func (p *Adapter) Query(ctx context.Context, q squirrel.Sqlizer, scan func(common.Scanner) error) error {
	return pgxQuery(ctx, p.pool, q, scan)
}

func (p *Adapter) Begin(ctx context.Context) (common.Tx, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &pgxTx{tx: tx}, nil
}

type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) Exec(ctx context.Context, q squirrel.Sqlizer) (int64, error) {
	return pgxExec(ctx, t.tx, q)
}

func (t *pgxTx) InsertReturningID(ctx context.Context, insert squirrel.InsertBuilder, idColumn string) (int64, error) {
	return pgxInsertReturningID(ctx, t.tx, insert, idColumn)
}

func (t *pgxTx) Query(ctx context.Context, q squirrel.Sqlizer, scan func(common.Scanner) error) error {
	return pgxQuery(ctx, t.tx, q, scan)
}

func (t *pgxTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgxTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

func pgxExec(ctx context.Context, q pgxQuerier, stmt squirrel.Sqlizer) (int64, error) {
	query, args, err := stmt.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build statement: %w", err)
	}
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func pgxInsertReturningID(ctx context.Context, q pgxQuerier, insert squirrel.InsertBuilder, idColumn string) (int64, error) {
	query, args, err := insert.Suffix("RETURNING " + idColumn).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert: %w", err)
	}
	var id int64
	if err := q.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, common.ErrNoGeneratedID
		}
		return 0, err
	}
	return id, nil
}

func pgxQuery(ctx context.Context, q pgxQuerier, stmt squirrel.Sqlizer, scan func(common.Scanner) error) error {
	query, args, err := stmt.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
