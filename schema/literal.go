package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseLiteral converts a textual value (from YAML, struct tags or database
// metadata) into the Go value used for the semantic type.
func ParseLiteral(t SemanticType, raw string) (any, error) {
	return Coerce(t, strings.TrimSpace(raw))
}

// Coerce normalizes v to the representation used for the semantic type:
// int64 for integers, float64 for floats and decimals, bool, time.Time for
// dates and datetimes, and string for everything else.
func Coerce(t SemanticType, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch {
	case t.IsIntegral():
		n, ok := ToInt64(v)
		if !ok {
			return nil, fmt.Errorf("value %v is not an integer", v)
		}
		return n, nil
	case t == TypeFloat || t == TypeDecimal:
		f, ok := ToFloat64(v)
		if !ok {
			return nil, fmt.Errorf("value %v is not a number", v)
		}
		return f, nil
	case t == TypeBoolean:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			parsed, err := strconv.ParseBool(b)
			if err != nil {
				return nil, fmt.Errorf("value %q is not a boolean", b)
			}
			return parsed, nil
		}
		return nil, fmt.Errorf("value %v is not a boolean", v)
	case t == TypeDate || t == TypeDateTime:
		tm, ok := ToTime(v)
		if !ok {
			return nil, fmt.Errorf("value %v is not a date or datetime", v)
		}
		if t == TypeDate {
			return tm.UTC().Truncate(24 * time.Hour), nil
		}
		return tm, nil
	default:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprint(v), nil
	}
}

// ToInt64 converts any integer kind, an integral float or a numeric string.
func ToInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), n <= math.MaxInt64
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), n <= math.MaxInt64
	case float32:
		return ToInt64(float64(n))
	case float64:
		if n != math.Trunc(n) || n >= math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(strings.TrimSpace(n), 64)
			if ferr != nil {
				return 0, false
			}
			return ToInt64(f)
		}
		return parsed, true
	}
	return 0, false
}

// ToFloat64 converts any numeric kind or a numeric string.
func ToFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(string(n), 64)
		return f, err == nil
	}
	if i, ok := ToInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

// ToTime converts a time.Time or a string in one of the accepted layouts.
func ToTime(v any) (time.Time, bool) {
	switch tm := v.(type) {
	case time.Time:
		return tm, true
	case *time.Time:
		if tm == nil {
			return time.Time{}, false
		}
		return *tm, true
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, strings.TrimSpace(tm)); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}
