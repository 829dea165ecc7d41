// Package unique resolves uniqueness collisions for generated values against
// the values already stored for a field.
package unique

import (
	"context"

	"github.com/ridoystarlord/fixturegen/store"
)

// Outcome is the value chosen for a unique field.
type Outcome struct {
	Value any
	// Retries is the number of times generate was called.
	Retries int
	// Exhausted is set when every candidate collided. Value is then the
	// last candidate and may still violate the constraint at insert time.
	Exhausted bool
}

// Resolve returns initial if it is not among the stored values of
// table.column. Otherwise it calls generate up to tolerance times and
// returns the first candidate that does not collide.
//
// The stored values are read once per call. The first check always happens;
// a tolerance of zero or less only disables retries. Exhausting the
// tolerance is not an error: the last candidate is returned with Exhausted
// set. Errors from src or generate are returned unmodified.
func Resolve(ctx context.Context, src store.Reader, table, column string, tolerance int, initial any, generate func() (any, error)) (Outcome, error) {
	existing, err := src.ExistingValues(ctx, table, column)
	if err != nil {
		return Outcome{}, err
	}
	taken := store.NewSet(existing)
	if !taken.Contains(initial) {
		return Outcome{Value: initial}, nil
	}

	out := Outcome{Value: initial}
	for out.Retries < tolerance {
		candidate, err := generate()
		if err != nil {
			return Outcome{}, err
		}
		out.Retries++
		out.Value = candidate
		if !taken.Contains(candidate) {
			return out, nil
		}
	}
	out.Exhausted = true
	return out, nil
}
