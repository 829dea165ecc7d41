package synth

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"

	"github.com/ridoystarlord/fixturegen/config"
	"github.com/ridoystarlord/fixturegen/constraint"
	"github.com/ridoystarlord/fixturegen/schema"
)

// Default text length range, used when neither the field nor the type
// config bounds the length.
const (
	DefaultMinLength = 1
	DefaultMaxLength = 50
)

const (
	defaultIntMax      = 9999
	defaultWindowStart = 946684800  // 2000-01-01T00:00:00Z
	defaultWindowEnd   = 1893456000 // 2030-01-01T00:00:00Z
	secondsPerDay      = 86400
	providerAttempts   = 8
)

// Strategy turns a constraint record into generation parameters and
// parameters into a value.
type Strategy interface {
	// Params derives the extra generation parameters. Empty means
	// unconstrained.
	Params(r *rand.Rand, rec constraint.Record, tc config.TypeConfig) Params
	// Generate produces a value honoring p.
	Generate(r *rand.Rand, tc config.TypeConfig, p Params) (any, error)
}

func builtinStrategies() map[string]Strategy {
	return map[string]Strategy{
		"text":     textStrategy{},
		"integer":  integerStrategy{},
		"float":    floatStrategy{},
		"decimal":  floatStrategy{decimal: true},
		"boolean":  booleanStrategy{},
		"date":     temporalStrategy{dateOnly: true},
		"datetime": temporalStrategy{},
		"time":     clockStrategy{},
		"uuid":     uuidStrategy{},
		"email":    providerStrategy{provider: func() string { return faker.Email() }},
		"url":      providerStrategy{provider: func() string { return faker.URL() }},
		"ipv4":     providerStrategy{provider: func() string { return faker.IPv4() }},
		"name":     providerStrategy{provider: func() string { return faker.Name() }},
	}
}

// StrategyNames lists the built-in strategies.
func StrategyNames() []string {
	names := make([]string, 0)
	for name := range builtinStrategies() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type textStrategy struct{}

func (textStrategy) Params(r *rand.Rand, rec constraint.Record, tc config.TypeConfig) Params {
	lo, hi := lengthRange(rec, tc)
	return Params{ParamMaxChars: lo + r.Intn(hi-lo+1)}
}

func (textStrategy) Generate(r *rand.Rand, _ config.TypeConfig, p Params) (any, error) {
	n, ok := p.Int(ParamMaxChars)
	if !ok {
		n = DefaultMaxLength
	}
	return fillText(r, n), nil
}

// lengthRange resolves the text length range. Declared bounds win over
// defaults; when both are declared and inverted the maximum wins.
func lengthRange(rec constraint.Record, tc config.TypeConfig) (int, int) {
	lo, hi := DefaultMinLength, DefaultMaxLength
	if tc.Min != nil {
		lo = int(*tc.Min)
	}
	if tc.Max != nil {
		hi = int(*tc.Max)
	}
	if rec.MinLength != nil {
		lo = *rec.MinLength
	}
	if rec.MaxLength != nil {
		hi = *rec.MaxLength
	}
	lo, hi = max(lo, 0), max(hi, 0)
	if hi < lo {
		if rec.MaxLength != nil {
			lo = hi
		} else {
			hi = lo
		}
	}
	return lo, hi
}

type integerStrategy struct{}

func (integerStrategy) Params(_ *rand.Rand, rec constraint.Record, tc config.TypeConfig) Params {
	lo, loOK := intBound(rec.MinValue, true)
	hi, hiOK := intBound(rec.MaxValue, false)
	if !loOK && !hiOK {
		return Params{}
	}
	if !loOK {
		lo = sentinelInt(tc.SentinelMin, math.MinInt32)
	}
	if !hiOK {
		hi = sentinelInt(tc.SentinelMax, math.MaxInt32)
	}
	if hi < lo {
		if loOK && !hiOK {
			hi = lo
		} else {
			lo = hi
		}
	}
	return Params{ParamMin: lo, ParamMax: hi}
}

func (integerStrategy) Generate(r *rand.Rand, tc config.TypeConfig, p Params) (any, error) {
	lo, loOK := p.Int64(ParamMin)
	hi, hiOK := p.Int64(ParamMax)
	if !loOK {
		lo = sentinelInt(tc.Min, 0)
	}
	if !hiOK {
		hi = sentinelInt(tc.Max, defaultIntMax)
	}
	return randInt64(r, lo, hi), nil
}

type floatStrategy struct {
	decimal bool
}

func (floatStrategy) Params(_ *rand.Rand, rec constraint.Record, tc config.TypeConfig) Params {
	lo, loOK := floatBound(rec.MinValue)
	hi, hiOK := floatBound(rec.MaxValue)
	if !loOK && !hiOK {
		return Params{}
	}
	if !loOK {
		lo = sentinelFloat(tc.SentinelMin, -1e12)
	}
	if !hiOK {
		hi = sentinelFloat(tc.SentinelMax, 1e12)
	}
	if hi < lo {
		if loOK && !hiOK {
			hi = lo
		} else {
			lo = hi
		}
	}
	return Params{ParamMin: lo, ParamMax: hi}
}

func (s floatStrategy) Generate(r *rand.Rand, tc config.TypeConfig, p Params) (any, error) {
	lo, loOK := p.Float64(ParamMin)
	hi, hiOK := p.Float64(ParamMax)
	if !loOK {
		lo = sentinelFloat(tc.Min, 0)
	}
	if !hiOK {
		hi = sentinelFloat(tc.Max, defaultIntMax)
	}
	v := lo + r.Float64()*(hi-lo)
	if !s.decimal {
		return math.Min(math.Max(v, lo), hi), nil
	}
	places, ok := p.Int(ParamDecimalPlaces)
	if !ok || places < 0 {
		places = 2
	}
	scale := math.Pow10(places)
	v = math.Round(v*scale) / scale
	if v > hi {
		v = math.Floor(hi*scale) / scale
	}
	if v < lo {
		v = math.Ceil(lo*scale) / scale
	}
	return v, nil
}

type booleanStrategy struct{}

func (booleanStrategy) Params(*rand.Rand, constraint.Record, config.TypeConfig) Params {
	return Params{}
}

func (booleanStrategy) Generate(r *rand.Rand, _ config.TypeConfig, _ Params) (any, error) {
	return r.Intn(2) == 1, nil
}

type temporalStrategy struct {
	dateOnly bool
}

func (temporalStrategy) Params(_ *rand.Rand, rec constraint.Record, tc config.TypeConfig) Params {
	start, startOK := timeBound(rec.MinValue)
	end, endOK := timeBound(rec.MaxValue)
	if !startOK && !endOK {
		return Params{}
	}
	if !startOK {
		start = time.Unix(sentinelInt(tc.Min, defaultWindowStart), 0).UTC()
	}
	if !endOK {
		end = time.Unix(sentinelInt(tc.Max, defaultWindowEnd), 0).UTC()
	}
	if end.Before(start) {
		if startOK && !endOK {
			end = start
		} else {
			start = end
		}
	}
	return Params{ParamStart: start, ParamEnd: end}
}

func (s temporalStrategy) Generate(r *rand.Rand, tc config.TypeConfig, p Params) (any, error) {
	start, ok := p.Time(ParamStart)
	if !ok {
		start = time.Unix(sentinelInt(tc.Min, defaultWindowStart), 0)
	}
	end, ok := p.Time(ParamEnd)
	if !ok {
		end = time.Unix(sentinelInt(tc.Max, defaultWindowEnd), 0)
	}
	lo, hi := start.Unix(), end.Unix()
	if start.Nanosecond() > 0 && lo < hi {
		lo++
	}
	if s.dateOnly {
		firstDay, lastDay := ceilDiv(lo, secondsPerDay), floorDiv(hi, secondsPerDay)
		if firstDay > lastDay {
			return start.UTC().Truncate(24 * time.Hour), nil
		}
		return time.Unix(randInt64(r, firstDay, lastDay)*secondsPerDay, 0).UTC(), nil
	}
	return time.Unix(randInt64(r, lo, hi), 0).UTC(), nil
}

// clockStrategy produces HH:MM:SS strings.
type clockStrategy struct{}

func (clockStrategy) Params(_ *rand.Rand, rec constraint.Record, _ config.TypeConfig) Params {
	lo, loOK := clockSeconds(rec.MinValue)
	hi, hiOK := clockSeconds(rec.MaxValue)
	if !loOK && !hiOK {
		return Params{}
	}
	if !loOK {
		lo = 0
	}
	if !hiOK {
		hi = secondsPerDay - 1
	}
	if hi < lo {
		if loOK && !hiOK {
			hi = lo
		} else {
			lo = hi
		}
	}
	return Params{ParamStart: formatClock(lo), ParamEnd: formatClock(hi)}
}

func (clockStrategy) Generate(r *rand.Rand, _ config.TypeConfig, p Params) (any, error) {
	lo, ok := clockSeconds(p[ParamStart])
	if !ok {
		lo = 0
	}
	hi, ok := clockSeconds(p[ParamEnd])
	if !ok {
		hi = secondsPerDay - 1
	}
	return formatClock(randInt64(r, lo, hi)), nil
}

type uuidStrategy struct{}

func (uuidStrategy) Params(*rand.Rand, constraint.Record, config.TypeConfig) Params {
	return Params{}
}

func (uuidStrategy) Generate(r *rand.Rand, _ config.TypeConfig, _ Params) (any, error) {
	id, err := uuid.NewRandomFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("generating uuid: %w", err)
	}
	return id.String(), nil
}

// providerStrategy wraps a faker provider. When length bounds are declared
// and the provider does not fit after a few draws it falls back to plain
// text of a fitting length.
type providerStrategy struct {
	provider func() string
}

func (providerStrategy) Params(_ *rand.Rand, rec constraint.Record, tc config.TypeConfig) Params {
	if !rec.HasLengthBounds() {
		return Params{}
	}
	lo, hi := lengthRange(rec, tc)
	return Params{ParamMinLength: lo, ParamMaxLength: hi}
}

func (s providerStrategy) Generate(r *rand.Rand, _ config.TypeConfig, p Params) (any, error) {
	lo, loOK := p.Int(ParamMinLength)
	hi, hiOK := p.Int(ParamMaxLength)
	if !loOK || !hiOK {
		return fake(r, s.provider), nil
	}
	for i := 0; i < providerAttempts; i++ {
		if v := fake(r, s.provider); len(v) >= lo && len(v) <= hi {
			return v, nil
		}
	}
	return fillText(r, lo+r.Intn(hi-lo+1)), nil
}

// fillText returns exactly n bytes of lorem words.
func fillText(r *rand.Rand, n int) string {
	if n <= 0 {
		return ""
	}
	words := fake(r, func() string {
		var b strings.Builder
		for b.Len() < n {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(faker.Word())
		}
		return b.String()
	})
	return fitLength(r, words, n)
}

// fakerMu guards faker's package-level random source.
var fakerMu sync.Mutex

// fake runs provider with faker reseeded from r, so provider output
// follows the synthesizer's seed.
func fake(r *rand.Rand, provider func() string) string {
	seed := r.Int63()
	fakerMu.Lock()
	defer fakerMu.Unlock()
	faker.SetRandomSource(rand.NewSource(seed))
	return provider()
}

// fitLength truncates or pads s to exactly n bytes without a trailing space.
func fitLength(r *rand.Rand, s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) > n {
		s = s[:n]
	}
	s = strings.TrimRight(s, " ")
	var b strings.Builder
	b.WriteString(s)
	for b.Len() < n {
		b.WriteByte(byte('a' + r.Intn(26)))
	}
	return b.String()
}

func randInt64(r *rand.Rand, lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	span := uint64(hi - lo)
	if span == math.MaxUint64 {
		return int64(r.Uint64())
	}
	n := span + 1
	if n <= math.MaxInt64 {
		return lo + r.Int63n(int64(n))
	}
	for {
		if v := r.Uint64(); v < n {
			return int64(uint64(lo) + v)
		}
	}
}

func intBound(v any, ceil bool) (int64, bool) {
	if v == nil {
		return 0, false
	}
	if n, ok := schema.ToInt64(v); ok {
		return n, true
	}
	f, ok := schema.ToFloat64(v)
	if !ok {
		return 0, false
	}
	if ceil {
		return clampInt64(math.Ceil(f)), true
	}
	return clampInt64(math.Floor(f)), true
}

func floatBound(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	return schema.ToFloat64(v)
}

func timeBound(v any) (time.Time, bool) {
	if v == nil {
		return time.Time{}, false
	}
	t, ok := schema.ToTime(v)
	return t.UTC(), ok
}

func sentinelInt(p *float64, fallback int64) int64 {
	if p == nil {
		return fallback
	}
	return clampInt64(*p)
}

func sentinelFloat(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}

func clampInt64(f float64) int64 {
	switch {
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	return -floorDiv(-a, b)
}

func clockSeconds(v any) (int64, bool) {
	switch c := v.(type) {
	case nil:
		return 0, false
	case time.Time:
		return int64(c.Hour()*3600 + c.Minute()*60 + c.Second()), true
	case string:
		for _, layout := range []string{"15:04:05", "15:04"} {
			if t, err := time.Parse(layout, strings.TrimSpace(c)); err == nil {
				return int64(t.Hour()*3600 + t.Minute()*60 + t.Second()), true
			}
		}
	}
	return 0, false
}

func formatClock(secs int64) string {
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}
