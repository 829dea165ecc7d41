package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/fixturegen/config"
	"github.com/ridoystarlord/fixturegen/factory"
	"github.com/ridoystarlord/fixturegen/schema"
	"github.com/ridoystarlord/fixturegen/store"
)

var ticketModel = schema.Model{
	Name:  "Ticket",
	Table: "tickets",
	Fields: []schema.Field{
		{Name: "id", Type: schema.TypeInteger, Primary: true, Auto: true},
		{Name: "seat", Type: schema.TypeInteger, Unique: true, Validators: []schema.Validator{
			{Code: schema.MinValue, Limit: int64(1)},
			{Code: schema.MaxValue, Limit: int64(5)},
		}},
		{Name: "holder", Type: schema.TypeName},
	},
}

var flagModel = schema.Model{
	Name:   "Flag",
	Table:  "flags",
	Fields: []schema.Field{{Name: "on", Type: schema.TypeBoolean, Unique: true}},
}

func newSeeder(t *testing.T, s store.Store) *Seeder {
	t.Helper()
	f, err := factory.New(config.Default(), s, factory.WithTolerance(200))
	require.NoError(t, err)
	return NewSeeder(f, s)
}

func TestSeedFillsUniqueRange(t *testing.T) {
	mem := store.NewMemory()
	report, err := newSeeder(t, mem).Seed(context.Background(), ticketModel, 5, nil)
	require.NoError(t, err)

	assert.Equal(t, 5, report.Inserted)
	assert.Zero(t, report.Skipped)
	assert.Zero(t, report.Exhausted)
	assert.Equal(t, "tickets", report.Table)

	seats := map[int64]bool{}
	for _, row := range mem.Rows("tickets") {
		n, ok := schema.ToInt64(row["seat"])
		require.True(t, ok)
		seats[n] = true
	}
	assert.Equal(t, map[int64]bool{1: true, 2: true, 3: true, 4: true, 5: true}, seats)
}

func TestSeedSkipsUniqueViolation(t *testing.T) {
	mem := store.NewMemory()
	report, err := newSeeder(t, mem).Seed(context.Background(), flagModel, 3, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Inserted)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Exhausted)
	assert.Len(t, report.Records, 2)
	assert.Len(t, mem.Rows("flags"), 2)
}

type brokenWriter struct {
	store.Reader
	err error
}

func (b brokenWriter) Insert(context.Context, schema.Model, map[string]any) error {
	return b.err
}

func TestSeedStopsOnInsertError(t *testing.T) {
	boom := errors.New("connection reset")
	s := brokenWriter{Reader: store.NewMemory(), err: boom}

	report, err := newSeeder(t, s).Seed(context.Background(), ticketModel, 3, nil)
	require.ErrorIs(t, err, boom)
	assert.Zero(t, report.Inserted)
}

func TestSeedStopsOnConfigError(t *testing.T) {
	model := schema.Model{Name: "Shape", Fields: []schema.Field{{Name: "outline", Type: "geometry"}}}
	_, err := newSeeder(t, store.NewMemory()).Seed(context.Background(), model, 1, nil)
	assert.True(t, config.IsConfigurationError(err))
}

func TestSeedNegativeCount(t *testing.T) {
	_, err := newSeeder(t, store.NewMemory()).Seed(context.Background(), ticketModel, -1, nil)
	assert.Error(t, err)
}

func TestSeedCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newSeeder(t, store.NewMemory()).Seed(ctx, ticketModel, 1, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSeedAllAppliesMatchingOverrides(t *testing.T) {
	mem := store.NewMemory()
	reports, err := newSeeder(t, mem).SeedAll(context.Background(),
		[]schema.Model{ticketModel, flagModel}, 1, map[string]string{"holder": "Ada", "seat": "3"})
	require.NoError(t, err)
	require.Len(t, reports, 2)

	row := mem.Rows("tickets")[0]
	assert.Equal(t, "Ada", row["holder"])
	assert.Equal(t, int64(3), row["seat"])
	_, ok := mem.Rows("flags")[0]["holder"]
	assert.False(t, ok)
}

func TestOverrides(t *testing.T) {
	got, err := Overrides(ticketModel, map[string]string{"seat": " 4 ", "holder": "null", "other": "x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"seat": int64(4), "holder": nil}, got)

	_, err = Overrides(ticketModel, map[string]string{"seat": "four"})
	assert.ErrorContains(t, err, "override Ticket.seat")

	got, err = Overrides(ticketModel, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDryRunLeavesBaseUntouched(t *testing.T) {
	ctx := context.Background()
	base := store.NewMemory()
	for _, seat := range []int64{1, 2, 3, 4} {
		require.NoError(t, base.Insert(ctx, ticketModel, map[string]any{"seat": seat}))
	}

	overlay := store.NewOverlay(base)
	report, err := newSeeder(t, overlay).Seed(ctx, ticketModel, 1, nil)
	require.NoError(t, err)

	require.Equal(t, 1, report.Inserted)
	assert.Equal(t, int64(5), report.Records[0]["seat"])
	assert.Len(t, base.Rows("tickets"), 4)
	assert.Len(t, overlay.Rows("tickets"), 1)
}
