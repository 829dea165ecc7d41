package synth

import (
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/fixturegen/config"
	"github.com/ridoystarlord/fixturegen/constraint"
	"github.com/ridoystarlord/fixturegen/schema"
)

const trials = 200

func newSynth(t *testing.T, cfg *config.Config) *Synthesizer {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	s, err := New(cfg, WithRand(rand.New(rand.NewSource(7))))
	require.NoError(t, err)
	return s
}

func intp(n int) *int { return &n }

func TestTextLengthWithinBounds(t *testing.T) {
	s := newSynth(t, nil)
	rec := constraint.Record{MinLength: intp(3), MaxLength: intp(8)}
	for i := 0; i < trials; i++ {
		res, err := s.Synthesize(schema.TypeChar, rec)
		require.NoError(t, err)
		str := res.Value.(string)
		assert.GreaterOrEqual(t, len(str), 3)
		assert.LessOrEqual(t, len(str), 8)
		assert.Equal(t, len(str), res.Params[ParamMaxChars])
		assert.Equal(t, "text", res.Strategy)
		assert.True(t, res.Generated())
	}
}

func TestTextDefaultLengthRange(t *testing.T) {
	s := newSynth(t, nil)
	for i := 0; i < trials; i++ {
		res, err := s.Synthesize(schema.TypeChar, constraint.Record{})
		require.NoError(t, err)
		n := len(res.Value.(string))
		assert.GreaterOrEqual(t, n, DefaultMinLength)
		assert.LessOrEqual(t, n, DefaultMaxLength)
	}
}

func TestTextInvertedBoundsPreferMax(t *testing.T) {
	s := newSynth(t, nil)
	res, err := s.Synthesize(schema.TypeChar, constraint.Record{MinLength: intp(10), MaxLength: intp(4)})
	require.NoError(t, err)
	assert.Len(t, res.Value, 4)
}

func TestIntegerWithinBounds(t *testing.T) {
	s := newSynth(t, nil)
	rec := constraint.Record{MinValue: 1, MaxValue: 10}
	for i := 0; i < trials; i++ {
		res, err := s.Synthesize(schema.TypeInteger, rec)
		require.NoError(t, err)
		assert.Equal(t, Params{ParamMin: int64(1), ParamMax: int64(10)}, res.Params)
		v := res.Value.(int64)
		assert.GreaterOrEqual(t, v, int64(1))
		assert.LessOrEqual(t, v, int64(10))
	}
}

func TestIntegerUnboundedHasEmptyParams(t *testing.T) {
	s := newSynth(t, nil)
	res, err := s.Synthesize(schema.TypeInteger, constraint.Record{})
	require.NoError(t, err)
	assert.Empty(t, res.Params)
	assert.IsType(t, int64(0), res.Value)
}

func TestIntegerOneSidedUsesSentinel(t *testing.T) {
	s := newSynth(t, nil)

	res, err := s.Synthesize(schema.TypeInteger, constraint.Record{MinValue: 5})
	require.NoError(t, err)
	assert.Equal(t, Params{ParamMin: int64(5), ParamMax: int64(2147483647)}, res.Params)

	res, err = s.Synthesize(schema.TypeSmallInteger, constraint.Record{MaxValue: -3})
	require.NoError(t, err)
	assert.Equal(t, Params{ParamMin: int64(-32768), ParamMax: int64(-3)}, res.Params)
	assert.LessOrEqual(t, res.Value.(int64), int64(-3))
}

func TestFloatAndDecimalWithinBounds(t *testing.T) {
	s := newSynth(t, nil)
	rec := constraint.Record{MinValue: 0.5, MaxValue: 1.5}
	for i := 0; i < trials; i++ {
		res, err := s.Synthesize(schema.TypeFloat, rec)
		require.NoError(t, err)
		f := res.Value.(float64)
		assert.GreaterOrEqual(t, f, 0.5)
		assert.LessOrEqual(t, f, 1.5)

		res, err = s.Synthesize(schema.TypeDecimal, rec)
		require.NoError(t, err)
		d := res.Value.(float64)
		assert.GreaterOrEqual(t, d, 0.5)
		assert.LessOrEqual(t, d, 1.5)
		assert.InDelta(t, d, float64(int64(d*100+0.5))/100, 1e-9)
		assert.Equal(t, 2, res.Params[ParamDecimalPlaces])
	}
}

func TestDateTimeWithinBounds(t *testing.T) {
	s := newSynth(t, nil)
	lo := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	hi := time.Date(2021, 3, 10, 12, 0, 0, 0, time.UTC)
	rec := constraint.Record{MinValue: lo, MaxValue: "2021-03-10T12:00:00Z"}
	for i := 0; i < trials; i++ {
		res, err := s.Synthesize(schema.TypeDateTime, rec)
		require.NoError(t, err)
		v := res.Value.(time.Time)
		assert.False(t, v.Before(lo), v)
		assert.False(t, v.After(hi), v)

		res, err = s.Synthesize(schema.TypeDate, rec)
		require.NoError(t, err)
		d := res.Value.(time.Time)
		assert.Equal(t, d, d.Truncate(24*time.Hour))
		assert.False(t, d.Before(lo), d)
		assert.False(t, d.After(hi), d)
	}
}

func TestDateTimeUnboundedUsesWindow(t *testing.T) {
	s := newSynth(t, nil)
	res, err := s.Synthesize(schema.TypeDateTime, constraint.Record{})
	require.NoError(t, err)
	assert.Empty(t, res.Params)
	v := res.Value.(time.Time)
	assert.Equal(t, time.UTC, v.Location())
	assert.True(t, v.Year() >= 2000 && v.Year() <= 2030, v)
}

func TestClockWithinBounds(t *testing.T) {
	s := newSynth(t, nil)
	rec := constraint.Record{MinValue: "09:00", MaxValue: "17:30:00"}
	for i := 0; i < trials; i++ {
		res, err := s.Synthesize(schema.TypeTime, rec)
		require.NoError(t, err)
		v := res.Value.(string)
		assert.Regexp(t, `^\d{2}:\d{2}:\d{2}$`, v)
		assert.GreaterOrEqual(t, v, "09:00:00")
		assert.LessOrEqual(t, v, "17:30:00")
	}
}

func TestUUIDIsValidAndSeeded(t *testing.T) {
	a, err := New(config.Default(), WithRand(rand.New(rand.NewSource(1))))
	require.NoError(t, err)
	b, err := New(config.Default(), WithRand(rand.New(rand.NewSource(1))))
	require.NoError(t, err)

	ra, err := a.Synthesize(schema.TypeUUID, constraint.Record{})
	require.NoError(t, err)
	rb, err := b.Synthesize(schema.TypeUUID, constraint.Record{})
	require.NoError(t, err)

	_, err = uuid.Parse(ra.Value.(string))
	assert.NoError(t, err)
	assert.Equal(t, ra.Value, rb.Value)
}

func TestSameSeedSameSequence(t *testing.T) {
	a, err := New(config.Default(), WithRand(rand.New(rand.NewSource(42))))
	require.NoError(t, err)
	b, err := New(config.Default(), WithRand(rand.New(rand.NewSource(42))))
	require.NoError(t, err)

	types := []schema.SemanticType{schema.TypeChar, schema.TypeEmail, schema.TypeText, schema.TypeURL, schema.TypeName}
	for i := 0; i < 10; i++ {
		for _, typ := range types {
			ra, err := a.Synthesize(typ, constraint.Record{})
			require.NoError(t, err)
			rb, err := b.Synthesize(typ, constraint.Record{})
			require.NoError(t, err)
			assert.Equal(t, ra.Value, rb.Value, "draw %d of %s", i, typ)
		}
	}
}

func TestProviderFallsBackUnderTightBounds(t *testing.T) {
	s := newSynth(t, nil)
	rec := constraint.Record{MinLength: intp(2), MaxLength: intp(3)}
	for i := 0; i < 20; i++ {
		res, err := s.Synthesize(schema.TypeEmail, rec)
		require.NoError(t, err)
		n := len(res.Value.(string))
		assert.True(t, n >= 2 && n <= 3, res.Value)
	}
}

func TestProviderUnbounded(t *testing.T) {
	s := newSynth(t, nil)
	res, err := s.Synthesize(schema.TypeEmail, constraint.Record{})
	require.NoError(t, err)
	assert.Contains(t, res.Value, "@")
	assert.Equal(t, "email", res.Strategy)
}

func TestDefaultIsPassedThrough(t *testing.T) {
	s := newSynth(t, nil)
	res, err := s.Synthesize(schema.TypeInteger, constraint.Record{Default: schema.DefaultOf(int64(-1))})
	require.NoError(t, err)
	assert.Equal(t, int64(-1), res.Value)
	assert.Equal(t, OriginDefault, res.Origin)
	assert.False(t, res.Generated())
	assert.Empty(t, res.Strategy)
}

func TestDeclaredNilDefaultIsStillADefault(t *testing.T) {
	s := newSynth(t, nil)
	res, err := s.Synthesize(schema.TypeChar, constraint.Record{Default: schema.DefaultOf(nil)})
	require.NoError(t, err)
	assert.Nil(t, res.Value)
	assert.False(t, res.Generated())
}

func TestDefaultFactorZeroSynthesizes(t *testing.T) {
	cfg := config.Default().With(func(c *config.Config) { c.DefaultValueFactor = 0 })
	s := newSynth(t, cfg)
	res, err := s.Synthesize(schema.TypeInteger, constraint.Record{Default: schema.DefaultOf(int64(-1)), MinValue: 0, MaxValue: 5})
	require.NoError(t, err)
	assert.True(t, res.Generated())
	assert.GreaterOrEqual(t, res.Value.(int64), int64(0))
}

func TestChoiceMembership(t *testing.T) {
	s := newSynth(t, nil)
	rec := constraint.Record{Choices: []schema.Choice{{Value: int64(0), Label: "value0"}, {Value: int64(1), Label: "value1"}}}
	seen := map[any]bool{}
	for i := 0; i < trials; i++ {
		res, err := s.Synthesize(schema.TypeInteger, rec)
		require.NoError(t, err)
		assert.Contains(t, []any{int64(0), int64(1)}, res.Value)
		assert.Equal(t, OriginChoice, res.Origin)
		assert.Equal(t, ChoiceStrategy, res.Strategy)
		assert.True(t, res.Generated())
		seen[res.Value] = true
	}
	assert.Len(t, seen, 2)
}

func TestDefaultBeatsChoices(t *testing.T) {
	s := newSynth(t, nil)
	rec := constraint.Record{
		Default: schema.DefaultOf(int64(1)),
		Choices: []schema.Choice{{Value: int64(0)}, {Value: int64(1)}},
	}
	res, err := s.Synthesize(schema.TypeInteger, rec)
	require.NoError(t, err)
	assert.Equal(t, OriginDefault, res.Origin)
}

func TestUnregisteredType(t *testing.T) {
	s := newSynth(t, nil)
	_, err := s.Synthesize("geometry", constraint.Record{})
	require.Error(t, err)
	assert.True(t, config.IsConfigurationError(err))
	assert.True(t, config.IsConfigurationError(s.Check("geometry")))
	assert.NoError(t, s.Check(schema.TypeText))
}

func TestUnknownStrategyFailsAtConstruction(t *testing.T) {
	cfg := config.Default().With(func(c *config.Config) {
		c.Types["geometry"] = config.TypeConfig{Strategy: "polygon"}
	})
	_, err := New(cfg)
	require.Error(t, err)
	assert.True(t, config.IsConfigurationError(err))
	assert.Contains(t, err.Error(), "polygon")
}

func TestUnknownPostProcessorFailsAtConstruction(t *testing.T) {
	cfg := config.Default().With(func(c *config.Config) {
		tc := c.Types[schema.TypeChar]
		tc.Post = []string{"rot13"}
		c.Types[schema.TypeChar] = tc
	})
	_, err := New(cfg)
	assert.True(t, config.IsConfigurationError(err))
}

func TestCustomStrategy(t *testing.T) {
	cfg := config.Default().With(func(c *config.Config) {
		c.Types["geometry"] = config.TypeConfig{Strategy: "point"}
	})
	s, err := New(cfg, WithStrategy("point", fixedStrategy{"POINT(0 0)"}))
	require.NoError(t, err)
	res, err := s.Synthesize("geometry", constraint.Record{})
	require.NoError(t, err)
	assert.Equal(t, "POINT(0 0)", res.Value)
	assert.Equal(t, "point", res.Strategy)
}

func TestSlugPostProcessorKeepsLength(t *testing.T) {
	s := newSynth(t, nil)
	slug := regexp.MustCompile(`^[a-z0-9-]+$`)
	rec := constraint.Record{MinLength: intp(5), MaxLength: intp(20)}
	for i := 0; i < 50; i++ {
		res, err := s.Synthesize(schema.TypeSlug, rec)
		require.NoError(t, err)
		v := res.Value.(string)
		assert.Regexp(t, slug, v)
		assert.Equal(t, res.Params[ParamMaxChars], len(v))
	}
}

func TestPostProcessors(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"lower", "MiXeD", "mixed"},
		{"upper", "MiXeD", "MIXED"},
		{"trim", "  padded ", "padded"},
		{"title", "hello world", "Hello World"},
		{"slugify", "Hello, World!  Again", "hello-world-again"},
		{"slugify", "--", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, postProcessors[c.name](c.in))
		})
	}
}

func TestCandidateResynthesizes(t *testing.T) {
	s := newSynth(t, nil)
	gen := s.Candidate(schema.TypeInteger, constraint.Record{MinValue: 0, MaxValue: 1000000})
	seen := map[any]bool{}
	for i := 0; i < 20; i++ {
		v, err := gen()
		require.NoError(t, err)
		seen[v] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestNeedsStrategy(t *testing.T) {
	s := newSynth(t, nil)
	withDefault := constraint.Record{Default: schema.DefaultOf("x")}
	withChoices := constraint.Record{Choices: []schema.Choice{{Value: "a"}}}
	assert.True(t, s.NeedsStrategy(constraint.Record{}))
	assert.False(t, s.NeedsStrategy(withDefault))
	assert.False(t, s.NeedsStrategy(withChoices))

	scaled := newSynth(t, config.Default().With(func(c *config.Config) { c.DefaultValueFactor = 0.5 }))
	assert.True(t, scaled.NeedsStrategy(withDefault))
	assert.False(t, scaled.NeedsStrategy(withChoices))
}

type fixedStrategy struct{ v string }

func (fixedStrategy) Params(*rand.Rand, constraint.Record, config.TypeConfig) Params { return Params{} }

func (f fixedStrategy) Generate(*rand.Rand, config.TypeConfig, Params) (any, error) {
	return f.v, nil
}
