// Package constraint derives generation constraints from a field's validators.
package constraint

import (
	"github.com/ridoystarlord/fixturegen/schema"
)

// Record holds the resolved bounds and flags of one field for one
// generation call. Nil means the bound was not declared.
type Record struct {
	MinLength *int
	MaxLength *int
	MinValue  any
	MaxValue  any
	Unique    bool
	Default   *schema.Literal
	Choices   []schema.Choice
}

// Extract scans the full validator list of f. When a code appears more than
// once the last occurrence wins; unknown codes are ignored.
func Extract(f schema.Field) Record {
	rec := Record{
		Unique:  f.Unique,
		Default: f.Default,
		Choices: f.Choices,
	}
	for _, v := range f.Validators {
		switch v.Code {
		case schema.MinLength:
			if n, ok := lengthLimit(v.Limit); ok {
				rec.MinLength = &n
			}
		case schema.MaxLength:
			if n, ok := lengthLimit(v.Limit); ok {
				rec.MaxLength = &n
			}
		case schema.MinValue:
			rec.MinValue = v.Limit
		case schema.MaxValue:
			rec.MaxValue = v.Limit
		}
	}
	return rec
}

// HasLengthBounds reports whether either length bound is set.
func (r Record) HasLengthBounds() bool {
	return r.MinLength != nil || r.MaxLength != nil
}

// HasValueBounds reports whether either value bound is set.
func (r Record) HasValueBounds() bool {
	return r.MinValue != nil || r.MaxValue != nil
}

func lengthLimit(limit any) (int, bool) {
	n, ok := schema.ToInt64(limit)
	if !ok {
		return 0, false
	}
	return int(n), true
}
