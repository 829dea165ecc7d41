package unique

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/fixturegen/schema"
	"github.com/ridoystarlord/fixturegen/store"
)

var model = schema.Model{
	Name:   "Account",
	Table:  "accounts",
	Fields: []schema.Field{{Name: "code", Type: schema.TypeInteger, Unique: true}},
}

// countingReader counts reads so tests can assert one read per call.
type countingReader struct {
	store.Reader
	reads int
}

func (c *countingReader) ExistingValues(ctx context.Context, table, column string) ([]any, error) {
	c.reads++
	return c.Reader.ExistingValues(ctx, table, column)
}

type failingReader struct{ err error }

func (f failingReader) ExistingValues(context.Context, string, string) ([]any, error) {
	return nil, f.err
}

func seeded(t *testing.T, values ...any) *countingReader {
	t.Helper()
	m := store.NewMemory()
	for _, v := range values {
		require.NoError(t, m.Insert(context.Background(), model, map[string]any{"code": v}))
	}
	return &countingReader{Reader: m}
}

func sequence(values ...any) (func() (any, error), *int) {
	calls := 0
	return func() (any, error) {
		v := values[min(calls, len(values)-1)]
		calls++
		return v, nil
	}, &calls
}

func TestResolveNoCollision(t *testing.T) {
	src := seeded(t, int64(1))
	gen, calls := sequence(int64(99))

	out, err := Resolve(context.Background(), src, "accounts", "code", 10, int64(2), gen)
	require.NoError(t, err)
	assert.Equal(t, Outcome{Value: int64(2)}, out)
	assert.Zero(t, *calls)
	assert.Equal(t, 1, src.reads)
}

func TestResolveRetriesUntilFree(t *testing.T) {
	src := seeded(t, int64(5))
	gen, calls := sequence(int64(5), int64(6))

	out, err := Resolve(context.Background(), src, "accounts", "code", 10, int64(5), gen)
	require.NoError(t, err)
	assert.Equal(t, int64(6), out.Value)
	assert.Equal(t, 2, out.Retries)
	assert.LessOrEqual(t, *calls, 10)
	assert.False(t, out.Exhausted)
	assert.Equal(t, 1, src.reads)
}

func TestResolveExhaustedReturnsLastCandidate(t *testing.T) {
	src := seeded(t, int64(5))
	gen, calls := sequence(int64(5))

	out, err := Resolve(context.Background(), src, "accounts", "code", 10, int64(5), gen)
	require.NoError(t, err)
	assert.Equal(t, int64(5), out.Value)
	assert.True(t, out.Exhausted)
	assert.Equal(t, 10, out.Retries)
	assert.Equal(t, 10, *calls)
}

func TestResolveZeroTolerance(t *testing.T) {
	src := seeded(t, int64(5))
	gen, calls := sequence(int64(6))

	out, err := Resolve(context.Background(), src, "accounts", "code", 0, int64(5), gen)
	require.NoError(t, err)
	assert.Equal(t, Outcome{Value: int64(5), Exhausted: true}, out)
	assert.Zero(t, *calls)

	out, err = Resolve(context.Background(), src, "accounts", "code", 0, int64(7), gen)
	require.NoError(t, err)
	assert.Equal(t, Outcome{Value: int64(7)}, out)
}

func TestResolveMatchesAcrossIntegerKinds(t *testing.T) {
	src := seeded(t, int32(5))
	gen, _ := sequence(int64(8))

	out, err := Resolve(context.Background(), src, "accounts", "code", 3, 5, gen)
	require.NoError(t, err)
	assert.Equal(t, int64(8), out.Value)
}

func TestResolvePropagatesErrors(t *testing.T) {
	readErr := errors.New("db down")
	_, err := Resolve(context.Background(), failingReader{readErr}, "accounts", "code", 3, 1, nil)
	assert.ErrorIs(t, err, readErr)

	genErr := errors.New("bad strategy")
	src := seeded(t, int64(1))
	_, err = Resolve(context.Background(), src, "accounts", "code", 3, int64(1), func() (any, error) {
		return nil, genErr
	})
	assert.ErrorIs(t, err, genErr)
}
