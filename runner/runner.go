// Package runner drives a factory over many records and writes them to a
// store.
package runner

import (
	"context"
	"fmt"

	"github.com/ridoystarlord/fixturegen/factory"
	"github.com/ridoystarlord/fixturegen/schema"
	"github.com/ridoystarlord/fixturegen/store"
	"github.com/ridoystarlord/fixturegen/utils"
)

// SeedReport summarizes one model's run.
type SeedReport struct {
	Model    string
	Table    string
	Inserted int
	// Skipped counts records the store rejected for a unique violation.
	Skipped int
	// Exhausted counts unique fields that ran out of retries.
	Exhausted int
	Records   []factory.Record
}

// Seeder builds records and inserts them one at a time, so each record's
// unique fields are resolved against every record inserted before it.
type Seeder struct {
	factory *factory.Factory
	dst     store.Writer
}

// NewSeeder returns a Seeder writing to dst. The factory should read from the
// same store, otherwise records of one run can collide with each other.
func NewSeeder(f *factory.Factory, dst store.Writer) *Seeder {
	return &Seeder{factory: f, dst: dst}
}

// Seed inserts count records for model. A unique violation skips the record;
// any other error stops the run and is returned with the partial report.
func (s *Seeder) Seed(ctx context.Context, model schema.Model, count int, overrides map[string]any) (SeedReport, error) {
	report := SeedReport{Model: model.Name, Table: model.TableName()}
	if count < 0 {
		return report, fmt.Errorf("count must not be negative, got %d", count)
	}

	utils.Infof("Seeding %d %s record(s) into %s", count, model.Name, model.TableName())
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		rec, traces, err := s.factory.BuildTrace(ctx, model, overrides)
		if err != nil {
			return report, fmt.Errorf("build %s record %d: %w", model.Name, i+1, err)
		}
		for _, tr := range traces {
			if tr.Exhausted {
				report.Exhausted++
			}
		}

		if err := s.dst.Insert(ctx, model, rec); err != nil {
			if store.IsUniqueViolation(err) {
				utils.Warnf("%s record %d skipped: %v", model.Name, i+1, err)
				report.Skipped++
				continue
			}
			return report, fmt.Errorf("insert %s record %d: %w", model.Name, i+1, err)
		}
		report.Inserted++
		report.Records = append(report.Records, rec)
	}
	return report, nil
}

// SeedAll seeds each model in order and stops at the first error. The raw
// overrides are parsed per model for the fields it declares; keys a model
// does not declare are ignored for it.
func (s *Seeder) SeedAll(ctx context.Context, models []schema.Model, count int, raw map[string]string) ([]SeedReport, error) {
	reports := make([]SeedReport, 0, len(models))
	for _, model := range models {
		overrides, err := Overrides(model, raw)
		if err != nil {
			return reports, err
		}
		report, err := s.Seed(ctx, model, count, overrides)
		reports = append(reports, report)
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}

// Overrides converts textual field=value pairs into values of each field's
// semantic type. The literal null means a nil value.
func Overrides(model schema.Model, raw map[string]string) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(raw))
	for name, text := range raw {
		field, ok := model.FieldByName(name)
		if !ok {
			continue
		}
		if text == "null" {
			out[name] = nil
			continue
		}
		v, err := schema.ParseLiteral(field.Type, text)
		if err != nil {
			return nil, fmt.Errorf("override %s.%s: %w", model.Name, name, err)
		}
		out[name] = v
	}
	return out, nil
}
