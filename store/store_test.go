package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/fixturegen/schema"
)

var users = schema.Model{
	Name:  "User",
	Table: "users",
	Fields: []schema.Field{
		{Name: "id", Type: schema.TypeInteger, Primary: true, Auto: true},
		{Name: "email", Type: schema.TypeEmail, Unique: true},
		{Name: "age", Type: schema.TypeInteger},
	},
}

func TestColumnsOrder(t *testing.T) {
	rec := map[string]any{"zeta": 1, "age": 3, "email": "a@b.c", "alpha": 2}
	want := []string{"email", "age", "alpha", "zeta"}
	if diff := cmp.Diff(want, Columns(users, rec)); diff != "" {
		t.Errorf("Columns mismatch (-want +got):\n%s", diff)
	}
}

func TestKeyCanonicalizes(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("X", 3600))
	id := uuid.New()

	assert.Equal(t, Key(int64(7)), Key(int32(7)))
	assert.Equal(t, Key(7), Key(uint8(7)))
	assert.Equal(t, Key(7), Key(7.0))
	assert.NotEqual(t, Key(7), Key(7.5))
	assert.Equal(t, Key("abc"), Key([]byte("abc")))
	assert.Equal(t, Key(now), Key(now.UTC()))
	assert.Equal(t, Key(id), Key([16]byte(id)))
	assert.Equal(t, Key(id), Key(id.String()))
	assert.NotEqual(t, Key("7"), Key(7))
	assert.Equal(t, Key([]int{1, 2}), Key([]int{1, 2}))
}

func TestKeyNumericMatchesFloat(t *testing.T) {
	price := pgtype.Numeric{Int: big.NewInt(1234), Exp: -2, Valid: true}
	assert.Equal(t, Key(12.34), Key(price))
	assert.True(t, NewSet([]any{price}).Contains(12.34))

	whole := pgtype.Numeric{Int: big.NewInt(12), Exp: 0, Valid: true}
	assert.Equal(t, Key(int64(12)), Key(whole))
	assert.Nil(t, Key(pgtype.Numeric{}))
}

func TestSetContains(t *testing.T) {
	s := NewSet([]any{int64(1), []byte("x"), nil})
	assert.True(t, s.Contains(1))
	assert.True(t, s.Contains("x"))
	assert.True(t, s.Contains(nil))
	assert.False(t, s.Contains(2))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Insert(ctx, users, map[string]any{"email": "a@x.io", "age": int64(1)}))
	require.NoError(t, m.Insert(ctx, users, map[string]any{"email": "b@x.io"}))

	vals, err := m.ExistingValues(ctx, "users", "email")
	require.NoError(t, err)
	assert.Equal(t, []any{"a@x.io", "b@x.io"}, vals)

	ages, err := m.ExistingValues(ctx, "users", "age")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1)}, ages)

	err = m.Insert(ctx, users, map[string]any{"email": "a@x.io"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUniqueViolation))
	assert.True(t, IsUniqueViolation(err))
	assert.Len(t, m.Rows("users"), 2)

	none, err := m.ExistingValues(ctx, "missing", "email")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryRowsAreCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	rec := map[string]any{"email": "a@x.io"}
	require.NoError(t, m.Insert(ctx, users, rec))
	rec["email"] = "changed"
	m.Rows("users")[0]["email"] = "changed"
	assert.Equal(t, "a@x.io", m.Rows("users")[0]["email"])
}

func TestOverlay(t *testing.T) {
	ctx := context.Background()
	base := NewMemory()
	require.NoError(t, base.Insert(ctx, users, map[string]any{"email": "a@x.io"}))

	o := NewOverlay(base)
	require.NoError(t, o.Insert(ctx, users, map[string]any{"email": "b@x.io"}))

	vals, err := o.ExistingValues(ctx, "users", "email")
	require.NoError(t, err)
	assert.Equal(t, []any{"a@x.io", "b@x.io"}, vals)
	assert.Len(t, base.Rows("users"), 1)
	assert.Len(t, o.Rows("users"), 1)
}

func TestDialectRendering(t *testing.T) {
	cases := []struct {
		dialect Dialect
		sel     string
		insert  string
		empty   string
	}{
		{Postgres, `SELECT "email" FROM "users"`, `INSERT INTO "users" ("email", "age") VALUES ($1, $2)`, `INSERT INTO "users" DEFAULT VALUES`},
		{MySQL, "SELECT `email` FROM `users`", "INSERT INTO `users` (`email`, `age`) VALUES (?, ?)", "INSERT INTO `users` () VALUES ()"},
		{SQLite, `SELECT "email" FROM "users"`, `INSERT INTO "users" ("email", "age") VALUES (?, ?)`, `INSERT INTO "users" DEFAULT VALUES`},
	}
	for _, c := range cases {
		t.Run(string(c.dialect), func(t *testing.T) {
			assert.Equal(t, c.sel, c.dialect.SelectColumn("users", "email"))
			assert.Equal(t, c.insert, c.dialect.InsertRow("users", []string{"email", "age"}))
			assert.Equal(t, c.empty, c.dialect.InsertRow("users", nil))
		})
	}
	assert.Equal(t, `"we""ird"`, Postgres.Quote(`we"ird`))
	assert.Equal(t, "`we``ird`", MySQL.Quote("we`ird"))
}

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect("PostgreSQL")
	require.NoError(t, err)
	assert.Equal(t, Postgres, d)
	d, err = ParseDialect("sqlite3")
	require.NoError(t, err)
	assert.Equal(t, SQLite, d)
	_, err = ParseDialect("oracle")
	assert.Error(t, err)
}

func TestSQLStoreWithMock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := NewSQL(db, MySQL)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT `email` FROM `users`")).
		WillReturnRows(sqlmock.NewRows([]string{"email"}).AddRow([]byte("a@x.io")).AddRow([]byte("b@x.io")))
	vals, err := s.ExistingValues(ctx, "users", "email")
	require.NoError(t, err)
	require.Len(t, vals, 2)
	assert.True(t, NewSet(vals).Contains("b@x.io"))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `users` (`email`, `age`) VALUES (?, ?)")).
		WithArgs("c@x.io", int64(4)).
		WillReturnResult(sqlmock.NewResult(3, 1))
	require.NoError(t, s.Insert(ctx, users, map[string]any{"email": "c@x.io", "age": int64(4)}))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `users`")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'c@x.io' for key 'email'"})
	err = s.Insert(ctx, users, map[string]any{"email": "c@x.io"})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	mock.ExpectQuery("SELECT").WillReturnError(fmt.Errorf("connection reset"))
	_, err = s.ExistingValues(ctx, "users", "email")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "users.email")
	assert.False(t, IsUniqueViolation(err))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreWithSQLite(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()
	ctx := context.Background()

	_, err = db.ExecContext(ctx, `CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, email TEXT UNIQUE, age INTEGER)`)
	require.NoError(t, err)

	s := NewSQL(db, SQLite)
	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Insert(ctx, users, map[string]any{"email": "a@x.io", "age": int64(30)}))
	require.NoError(t, s.Insert(ctx, users, map[string]any{"email": "b@x.io", "age": int64(31)}))

	emails, err := s.ExistingValues(ctx, "users", "email")
	require.NoError(t, err)
	assert.ElementsMatch(t, []any{"a@x.io", "b@x.io"}, emails)

	ages, err := s.ExistingValues(ctx, "users", "age")
	require.NoError(t, err)
	assert.True(t, NewSet(ages).Contains(30))

	err = s.Insert(ctx, users, map[string]any{"email": "a@x.io"})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"postgres", errors.Wrap(&pgconn.PgError{Code: "23505"}, "insert"), true},
		{"postgres other", &pgconn.PgError{Code: "23503"}, false},
		{"mysql", &mysql.MySQLError{Number: 1062}, true},
		{"mysql other", &mysql.MySQLError{Number: 1105}, false},
		{"sqlite text", errors.New("constraint failed: UNIQUE constraint failed: users.email"), true},
		{"memory", errors.Wrap(ErrUniqueViolation, "users.email"), true},
		{"other", errors.New("boom"), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, IsUniqueViolation(c.err))
		})
	}
}
