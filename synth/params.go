package synth

import (
	"time"

	"github.com/ridoystarlord/fixturegen/schema"
)

// Parameter keys understood by the built-in strategies.
const (
	ParamMaxChars      = "max_nb_chars"
	ParamMin           = "min"
	ParamMax           = "max"
	ParamStart         = "start"
	ParamEnd           = "end"
	ParamMinLength     = "min_length"
	ParamMaxLength     = "max_length"
	ParamDecimalPlaces = "decimal_places"
)

// Params are the extra generation parameters a strategy derives from a
// constraint record. An empty Params asks for the type's unconstrained
// behavior.
type Params map[string]any

// Int returns an integer parameter.
func (p Params) Int(key string) (int, bool) {
	n, ok := p.Int64(key)
	return int(n), ok
}

// Int64 returns an integer parameter.
func (p Params) Int64(key string) (int64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	return schema.ToInt64(v)
}

// Float64 returns a numeric parameter.
func (p Params) Float64(key string) (float64, bool) {
	v, ok := p[key]
	if !ok {
		return 0, false
	}
	return schema.ToFloat64(v)
}

// Time returns a time parameter.
func (p Params) Time(key string) (time.Time, bool) {
	v, ok := p[key]
	if !ok {
		return time.Time{}, false
	}
	return schema.ToTime(v)
}
