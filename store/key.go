package store

import (
	"database/sql/driver"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ridoystarlord/fixturegen/schema"
)

// Key returns a comparable canonical form of v, so a value read back from a
// driver compares equal to the synthesized value it was written from.
// Integer kinds compare by value, as do floats holding an integral value;
// times compare by instant; byte slices and UUIDs compare as strings.
func Key(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string, bool:
		return x
	case []byte:
		return string(x)
	case [16]byte:
		return uuid.UUID(x).String()
	case uuid.UUID:
		return x.String()
	case time.Time:
		return x.UTC()
	case float32:
		return floatKey(float64(x))
	case float64:
		return floatKey(x)
	case pgtype.Numeric:
		// pgx decodes numeric columns to Numeric, whose driver value is text.
		if f, err := x.Float64Value(); err == nil {
			if !f.Valid {
				return nil
			}
			return floatKey(f.Float64)
		}
	case driver.Valuer:
		dv, err := x.Value()
		if err == nil && dv != nil {
			if _, again := dv.(driver.Valuer); !again {
				return Key(dv)
			}
		}
	}
	if n, ok := schema.ToInt64(v); ok {
		return n
	}
	if reflect.TypeOf(v).Comparable() {
		return v
	}
	return fmt.Sprintf("%T:%v", v, v)
}

func floatKey(f float64) any {
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return int64(f)
	}
	return f
}

// Set is a membership index over canonical keys.
type Set map[any]struct{}

// NewSet indexes values.
func NewSet(values []any) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[Key(v)] = struct{}{}
	}
	return s
}

// Contains reports whether v's canonical key is in the set.
func (s Set) Contains(v any) bool {
	_, ok := s[Key(v)]
	return ok
}
