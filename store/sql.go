package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/ridoystarlord/fixturegen/schema"
)

// Dialect selects identifier quoting and placeholder syntax.
type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite"
)

// ParseDialect accepts the dialect names plus a few common aliases.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "mysql", "mariadb":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return "", fmt.Errorf("unsupported dialect %q", name)
}

// Quote quotes an identifier, doubling any embedded quote character.
func (d Dialect) Quote(ident string) string {
	if d == MySQL {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// Placeholder returns the n-th (1-based) bind parameter.
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// SelectColumn renders the existing-values query.
func (d Dialect) SelectColumn(table, column string) string {
	return fmt.Sprintf("SELECT %s FROM %s", d.Quote(column), d.Quote(table))
}

// InsertRow renders a parameterized INSERT for cols.
func (d Dialect) InsertRow(table string, cols []string) string {
	quoted := make([]string, len(cols))
	params := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = d.Quote(c)
		params[i] = d.Placeholder(i + 1)
	}
	if len(cols) == 0 {
		if d == MySQL {
			return fmt.Sprintf("INSERT INTO %s () VALUES ()", d.Quote(table))
		}
		return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", d.Quote(table))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.Quote(table), strings.Join(quoted, ", "), strings.Join(params, ", "))
}

// SQL is a database/sql backed store.
type SQL struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQL wraps db.
func NewSQL(db *sql.DB, dialect Dialect) *SQL {
	return &SQL{db: db, dialect: dialect}
}

// DB returns the underlying handle.
func (s *SQL) DB() *sql.DB {
	return s.db
}

func (s *SQL) ExistingValues(ctx context.Context, table, column string) ([]any, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.SelectColumn(table, column))
	if err != nil {
		return nil, errors.Wrapf(err, "reading existing values of %s.%s", table, column)
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, errors.Wrapf(err, "scanning %s.%s", table, column)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading existing values of %s.%s", table, column)
	}
	return out, nil
}

func (s *SQL) Insert(ctx context.Context, model schema.Model, rec map[string]any) error {
	cols := Columns(model, rec)
	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = rec[c]
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.InsertRow(model.TableName(), cols), args...); err != nil {
		return errors.Wrapf(err, "inserting into %s", model.TableName())
	}
	return nil
}

// Ping checks the connection.
func (s *SQL) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying handle.
func (s *SQL) Close() error {
	return s.db.Close()
}
