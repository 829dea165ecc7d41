// Package store reads the values already persisted for a model field and
// writes generated records.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/ridoystarlord/fixturegen/schema"
)

// Reader returns the Existing-Values Set of a (table, column) pair. Every
// call reads fresh; implementations must not cache.
type Reader interface {
	ExistingValues(ctx context.Context, table, column string) ([]any, error)
}

// Writer persists one generated record.
type Writer interface {
	Insert(ctx context.Context, model schema.Model, rec map[string]any) error
}

// Store is both.
type Store interface {
	Reader
	Writer
}

// ErrUniqueViolation is returned by Memory when an insert repeats a value of
// a unique field.
var ErrUniqueViolation = errors.New("unique constraint violated")

// Columns orders the keys of rec: model fields first in declaration order,
// then any extra keys sorted by name.
func Columns(model schema.Model, rec map[string]any) []string {
	cols := make([]string, 0, len(rec))
	seen := make(map[string]bool, len(rec))
	for _, f := range model.Fields {
		if _, ok := rec[f.Name]; ok {
			cols = append(cols, f.Name)
			seen[f.Name] = true
		}
	}
	var extra []string
	for k := range rec {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(cols, extra...)
}

// Memory is an in-process store. Offline generation uses it so a batch is
// unique within itself.
type Memory struct {
	mu   sync.RWMutex
	rows map[string][]map[string]any
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{rows: map[string][]map[string]any{}}
}

// ExistingValues returns the column's values in insertion order. Rows that
// do not carry the column are skipped.
func (m *Memory) ExistingValues(_ context.Context, table, column string) ([]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []any
	for _, row := range m.rows[table] {
		if v, ok := row[column]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

// Insert stores a copy of rec, enforcing the model's unique fields.
func (m *Memory) Insert(_ context.Context, model schema.Model, rec map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := model.TableName()
	for _, f := range model.UniqueFields() {
		v, ok := rec[f.Name]
		if !ok || v == nil {
			continue
		}
		key := Key(v)
		for _, row := range m.rows[table] {
			if existing, ok := row[f.Name]; ok && Key(existing) == key {
				return errors.Wrapf(ErrUniqueViolation, "%s.%s = %v", table, f.Name, v)
			}
		}
	}
	row := make(map[string]any, len(rec))
	for k, v := range rec {
		row[k] = v
	}
	m.rows[table] = append(m.rows[table], row)
	return nil
}

// Rows returns copies of the rows stored for table.
func (m *Memory) Rows(table string) []map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]map[string]any, 0, len(m.rows[table]))
	for _, row := range m.rows[table] {
		c := make(map[string]any, len(row))
		for k, v := range row {
			c[k] = v
		}
		out = append(out, c)
	}
	return out
}
