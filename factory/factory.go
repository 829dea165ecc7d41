// Package factory assembles complete records for a model: each field is
// extracted, synthesized and, when flagged unique, resolved against the
// values already stored.
package factory

import (
	"context"

	"github.com/ridoystarlord/fixturegen/config"
	"github.com/ridoystarlord/fixturegen/constraint"
	"github.com/ridoystarlord/fixturegen/schema"
	"github.com/ridoystarlord/fixturegen/store"
	"github.com/ridoystarlord/fixturegen/synth"
	"github.com/ridoystarlord/fixturegen/unique"
	"github.com/ridoystarlord/fixturegen/utils"
)

// Record maps field names to values for one model instance.
type Record map[string]any

// Columns returns the record's keys in model order, extras last.
func (r Record) Columns(model schema.Model) []string {
	return store.Columns(model, r)
}

// FieldTrace tells how one value of a built record was produced.
type FieldTrace struct {
	Field      string
	Origin     synth.Origin
	Strategy   string
	Params     synth.Params
	Retries    int
	Exhausted  bool
	Overridden bool
}

// Factory builds records. It is not safe for concurrent use.
type Factory struct {
	synth     *synth.Synthesizer
	src       store.Reader
	tolerance *int
}

// Option configures a Factory.
type Option func(*Factory)

// WithSynthesizer uses s instead of building one from the config.
func WithSynthesizer(s *synth.Synthesizer) Option {
	return func(f *Factory) { f.synth = s }
}

// WithTolerance overrides the config's uniqueness retry budget.
func WithTolerance(n int) Option {
	return func(f *Factory) { f.tolerance = &n }
}

// New returns a Factory reading existing values from src. A nil cfg means
// config.Default(); a nil src means nothing is stored yet.
func New(cfg *config.Config, src store.Reader, opts ...Option) (*Factory, error) {
	f := &Factory{src: src}
	for _, opt := range opts {
		opt(f)
	}
	if f.src == nil {
		f.src = store.NewMemory()
	}
	if f.synth == nil {
		if cfg == nil {
			cfg = config.Default()
		}
		s, err := synth.New(cfg)
		if err != nil {
			return nil, err
		}
		f.synth = s
	}
	return f, nil
}

// Synthesizer returns the synthesizer used for field values.
func (f *Factory) Synthesizer() *synth.Synthesizer {
	return f.synth
}

// Tolerance returns the uniqueness retry budget.
func (f *Factory) Tolerance() int {
	if f.tolerance != nil {
		return *f.tolerance
	}
	return f.synth.Config().Tolerance
}

// Build returns a complete record for model. Overridden fields take the
// override verbatim, auto fields are left to the database, and every other
// field is synthesized.
func (f *Factory) Build(ctx context.Context, model schema.Model, overrides map[string]any) (Record, error) {
	rec, _, err := f.BuildTrace(ctx, model, overrides)
	return rec, err
}

// BuildTrace is Build plus a per-field account of how each value was produced.
// A configuration error in any field aborts before any value is generated.
func (f *Factory) BuildTrace(ctx context.Context, model schema.Model, overrides map[string]any) (Record, []FieldTrace, error) {
	if err := f.check(model, overrides); err != nil {
		return nil, nil, err
	}

	rec := make(Record, len(model.Fields)+len(overrides))
	traces := make([]FieldTrace, 0, len(model.Fields)+len(overrides))
	for _, field := range model.Fields {
		if v, ok := overrides[field.Name]; ok {
			rec[field.Name] = v
			traces = append(traces, FieldTrace{Field: field.Name, Overridden: true})
			continue
		}
		if field.Auto {
			continue
		}

		tr, err := f.buildField(ctx, model, field, rec)
		if err != nil {
			return nil, nil, err
		}
		traces = append(traces, tr)
		utils.Debugf("%s.%s = %v (%s %s %v, retries %d)",
			model.Name, field.Name, rec[field.Name], tr.Origin, tr.Strategy, tr.Params, tr.Retries)
	}

	for k, v := range overrides {
		if _, known := model.FieldByName(k); !known {
			rec[k] = v
			traces = append(traces, FieldTrace{Field: k, Overridden: true})
		}
	}
	return rec, traces, nil
}

func (f *Factory) buildField(ctx context.Context, model schema.Model, field schema.Field, rec Record) (FieldTrace, error) {
	cons := constraint.Extract(field)
	res, err := f.synth.Synthesize(field.Type, cons)
	if err != nil {
		return FieldTrace{}, err
	}
	tr := FieldTrace{
		Field:    field.Name,
		Origin:   res.Origin,
		Strategy: res.Strategy,
		Params:   res.Params,
	}
	value := res.Value

	if field.Unique {
		out, err := unique.Resolve(ctx, f.src, model.TableName(), field.Name, f.Tolerance(), value, f.synth.Candidate(field.Type, cons))
		if err != nil {
			return FieldTrace{}, err
		}
		value = out.Value
		tr.Retries = out.Retries
		tr.Exhausted = out.Exhausted
		if out.Exhausted {
			utils.Warnf("%s.%s: no free value after %d retries, keeping %v", model.Name, field.Name, out.Retries, value)
		}
	}
	rec[field.Name] = value
	return tr, nil
}

func (f *Factory) check(model schema.Model, overrides map[string]any) error {
	for _, field := range model.Fields {
		if _, ok := overrides[field.Name]; ok || field.Auto {
			continue
		}
		if !f.synth.NeedsStrategy(constraint.Extract(field)) {
			continue
		}
		if err := f.synth.Check(field.Type); err != nil {
			return err
		}
	}
	return nil
}
