package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/fixturegen/schema"
	"github.com/ridoystarlord/fixturegen/store"
)

func TestParseURL(t *testing.T) {
	cases := []struct {
		url     string
		dialect store.Dialect
		dsn     string
	}{
		{"postgres://u:p@localhost:5432/app", store.Postgres, "postgres://u:p@localhost:5432/app"},
		{"postgresql://localhost/app", store.Postgres, "postgresql://localhost/app"},
		{"mysql://root:secret@db:3306/app", store.MySQL, "root:secret@tcp(db:3306)/app?parseTime=true"},
		{"mysql://db:3306/app?charset=utf8mb4", store.MySQL, "tcp(db:3306)/app?charset=utf8mb4&parseTime=true"},
		{"mysql://root@tcp(db:3306)/app", store.MySQL, "root@tcp(db:3306)/app"},
		{"sqlite://fixtures.db", store.SQLite, "fixtures.db"},
		{"file:test.db?mode=memory", store.SQLite, "file:test.db?mode=memory"},
	}
	for _, c := range cases {
		t.Run(c.url, func(t *testing.T) {
			d, dsn, err := ParseURL(c.url)
			require.NoError(t, err)
			assert.Equal(t, c.dialect, d)
			assert.Equal(t, c.dsn, dsn)
		})
	}

	_, _, err := ParseURL("")
	assert.Error(t, err)
	_, _, err = ParseURL("oracle://x")
	assert.Error(t, err)
}

func TestOpenSQLite(t *testing.T) {
	ctx := context.Background()
	conn, dialect, err := Open(ctx, "sqlite://:memory:")
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, store.SQLite, dialect)
	require.NoError(t, conn.Ping(ctx))

	sqlStore, ok := conn.(*store.SQL)
	require.True(t, ok)
	_, err = sqlStore.DB().ExecContext(ctx, `CREATE TABLE tags (name TEXT UNIQUE)`)
	require.NoError(t, err)

	model := schema.Model{Name: "Tag", Table: "tags", Fields: []schema.Field{{Name: "name", Type: schema.TypeSlug, Unique: true}}}
	require.NoError(t, conn.Insert(ctx, model, map[string]any{"name": "go"}))
	vals, err := conn.ExistingValues(ctx, "tags", "name")
	require.NoError(t, err)
	assert.Equal(t, []any{"go"}, vals)
}

func TestOpenSQLRejectsPostgres(t *testing.T) {
	_, err := OpenSQL(store.Postgres, "postgres://localhost/app")
	assert.Error(t, err)
}
