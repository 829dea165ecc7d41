package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/ridoystarlord/fixturegen/schema"
)

// PgStore reads and writes through a pgx connection pool.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps pool.
func NewPostgres(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// Pool returns the underlying pool.
func (p *PgStore) Pool() *pgxpool.Pool {
	return p.pool
}

func (p *PgStore) ExistingValues(ctx context.Context, table, column string) ([]any, error) {
	rows, err := p.pool.Query(ctx, Postgres.SelectColumn(table, column))
	if err != nil {
		return nil, errors.Wrapf(err, "reading existing values of %s.%s", table, column)
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, errors.Wrapf(err, "decoding %s.%s", table, column)
		}
		out = append(out, vals[0])
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading existing values of %s.%s", table, column)
	}
	return out, nil
}

func (p *PgStore) Insert(ctx context.Context, model schema.Model, rec map[string]any) error {
	cols := Columns(model, rec)
	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = rec[c]
	}
	if _, err := p.pool.Exec(ctx, Postgres.InsertRow(model.TableName(), cols), args...); err != nil {
		return errors.Wrapf(err, "inserting into %s", model.TableName())
	}
	return nil
}

// Ping checks the connection.
func (p *PgStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close releases the pool.
func (p *PgStore) Close() error {
	p.pool.Close()
	return nil
}
