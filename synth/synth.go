// Package synth produces candidate values for fields from their semantic
// type and constraint record.
package synth

import (
	"math/rand"
	"strings"
	"time"

	"github.com/ridoystarlord/fixturegen/config"
	"github.com/ridoystarlord/fixturegen/constraint"
	"github.com/ridoystarlord/fixturegen/schema"
)

// Origin tells how a value was produced.
type Origin int

const (
	// OriginSynthesized values come from a strategy.
	OriginSynthesized Origin = iota
	// OriginDefault values are the field's declared default, passed through.
	OriginDefault
	// OriginChoice values are a member of the field's choice set.
	OriginChoice
)

func (o Origin) String() string {
	switch o {
	case OriginDefault:
		return "default"
	case OriginChoice:
		return "choice"
	default:
		return "synthesized"
	}
}

// ChoiceStrategy is the strategy name reported for choice-set values.
const ChoiceStrategy = "choice"

// Result is a produced value plus how it was produced.
type Result struct {
	Value    any
	Origin   Origin
	Strategy string
	Params   Params
}

// Generated reports whether the value was produced rather than supplied as
// the declared default.
func (r Result) Generated() bool {
	return r.Origin != OriginDefault
}

type resolvedType struct {
	tc       config.TypeConfig
	strategy Strategy
	post     []PostProcessor
}

// Synthesizer resolves strategies once at construction and then produces
// values. It is not safe for concurrent use.
type Synthesizer struct {
	cfg        *config.Config
	rand       *rand.Rand
	strategies map[string]Strategy
	types      map[schema.SemanticType]resolvedType
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithRand sets the random source.
func WithRand(r *rand.Rand) Option {
	return func(s *Synthesizer) { s.rand = r }
}

// WithStrategy registers an additional strategy under name, or replaces a
// built-in one.
func WithStrategy(name string, strategy Strategy) Option {
	return func(s *Synthesizer) { s.strategies[name] = strategy }
}

// New builds a Synthesizer for cfg. Every configured type's strategy and
// post-processors are resolved here, so an unknown name surfaces as a
// ConfigurationError before any value is produced.
func New(cfg *config.Config, opts ...Option) (*Synthesizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Synthesizer{
		cfg:        cfg.Clone(),
		strategies: builtinStrategies(),
		types:      map[schema.SemanticType]resolvedType{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rand == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		s.rand = rand.New(rand.NewSource(seed))
	}

	for _, t := range s.cfg.SemanticTypes() {
		tc := s.cfg.Types[t]
		strategy, ok := s.strategies[tc.Strategy]
		if !ok {
			return nil, &config.ConfigurationError{Type: t, Strategy: tc.Strategy, Reason: "unknown strategy (built-in: " + strings.Join(StrategyNames(), ", ") + ")"}
		}
		rt := resolvedType{tc: tc, strategy: strategy}
		for _, name := range tc.Post {
			pp, ok := postProcessors[name]
			if !ok {
				return nil, &config.ConfigurationError{Type: t, Strategy: tc.Strategy, Reason: "unknown post-processor " + name}
			}
			rt.post = append(rt.post, pp)
		}
		s.types[t] = rt
	}
	return s, nil
}

// Config returns the synthesizer's private copy of the generation config.
func (s *Synthesizer) Config() *config.Config {
	return s.cfg
}

// Check returns a ConfigurationError if t cannot be synthesized.
func (s *Synthesizer) Check(t schema.SemanticType) error {
	if _, ok := s.types[t]; !ok {
		return config.NewUnregisteredTypeError(t)
	}
	return nil
}

// NeedsStrategy reports whether a field with rec may reach a strategy:
// fields with a choice set never do, fields with a default only when the
// default value factor lets synthesis happen.
func (s *Synthesizer) NeedsStrategy(rec constraint.Record) bool {
	if len(rec.Choices) > 0 {
		return rec.Default != nil && s.cfg.DefaultValueFactor < 1
	}
	return rec.Default == nil || s.cfg.DefaultValueFactor < 1
}

// StrategyFor returns the strategy name configured for t.
func (s *Synthesizer) StrategyFor(t schema.SemanticType) (string, error) {
	rt, ok := s.types[t]
	if !ok {
		return "", config.NewUnregisteredTypeError(t)
	}
	return rt.tc.Strategy, nil
}

// Synthesize produces a value for a field of type t. A declared default
// wins (subject to the default value factor), then a non-empty choice set,
// then the type's strategy.
func (s *Synthesizer) Synthesize(t schema.SemanticType, rec constraint.Record) (Result, error) {
	if rec.Default != nil && s.useDefault() {
		return Result{Value: rec.Default.Value, Origin: OriginDefault}, nil
	}
	if len(rec.Choices) > 0 {
		c := rec.Choices[s.rand.Intn(len(rec.Choices))]
		return Result{Value: c.Value, Origin: OriginChoice, Strategy: ChoiceStrategy}, nil
	}

	rt, ok := s.types[t]
	if !ok {
		return Result{}, config.NewUnregisteredTypeError(t)
	}
	params := rt.strategy.Params(s.rand, rec, rt.tc)
	for k, v := range rt.tc.Params {
		if _, set := params[k]; !set {
			params[k] = v
		}
	}
	v, err := rt.strategy.Generate(s.rand, rt.tc, params)
	if err != nil {
		return Result{}, err
	}
	if str, ok := v.(string); ok && len(rt.post) > 0 {
		v = s.postProcess(rt, str, params)
	}
	return Result{Value: v, Origin: OriginSynthesized, Strategy: rt.tc.Strategy, Params: params}, nil
}

// Candidate returns a closure that re-synthesizes under the same
// constraints. It is the retry generator for unique fields.
func (s *Synthesizer) Candidate(t schema.SemanticType, rec constraint.Record) func() (any, error) {
	return func() (any, error) {
		res, err := s.Synthesize(t, rec)
		if err != nil {
			return nil, err
		}
		return res.Value, nil
	}
}

func (s *Synthesizer) useDefault() bool {
	switch f := s.cfg.DefaultValueFactor; {
	case f >= 1:
		return true
	case f <= 0:
		return false
	default:
		return s.rand.Float64() < f
	}
}

func (s *Synthesizer) postProcess(rt resolvedType, v string, params Params) string {
	for _, pp := range rt.post {
		v = pp(v)
	}
	if n, ok := params.Int(ParamMaxChars); ok {
		v = fitLength(s.rand, v, n)
	}
	return v
}
