package store

import (
	"context"

	"github.com/ridoystarlord/fixturegen/schema"
)

// Overlay reads through to a base reader and keeps its own writes in memory.
// A dry run seeds into an Overlay so records see both the database and each
// other without touching the database.
type Overlay struct {
	base Reader
	top  *Memory
}

// NewOverlay layers an empty Memory store over base.
func NewOverlay(base Reader) *Overlay {
	return &Overlay{base: base, top: NewMemory()}
}

// ExistingValues returns the base values followed by the in-memory ones.
func (o *Overlay) ExistingValues(ctx context.Context, table, column string) ([]any, error) {
	vals, err := o.base.ExistingValues(ctx, table, column)
	if err != nil {
		return nil, err
	}
	mem, _ := o.top.ExistingValues(ctx, table, column)
	return append(vals, mem...), nil
}

// Insert stores rec in memory only. Collisions with the base are not checked.
func (o *Overlay) Insert(ctx context.Context, model schema.Model, rec map[string]any) error {
	return o.top.Insert(ctx, model, rec)
}

// Rows returns the rows written through the overlay.
func (o *Overlay) Rows(table string) []map[string]any {
	return o.top.Rows(table)
}
