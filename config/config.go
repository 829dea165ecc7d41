// Package config holds the generation config: the mapping from semantic type
// to synthesis strategy, plus the process-wide generation options.
//
// The base config is built once and never handed out directly. Default,
// Clone, With and Load all return independent copies, so callers can scale
// an option for one test without affecting anybody else.
package config

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ridoystarlord/fixturegen/schema"
)

// Config captures the options consulted during generation.
type Config struct {
	// DefaultValueFactor is the probability that a field with a declared
	// default receives it. 1 always uses the default.
	DefaultValueFactor float64 `yaml:"default_value_factor"`
	// Tolerance is the number of retries allowed for a unique field.
	Tolerance int `yaml:"tolerance"`
	// Seed seeds the random source; 0 picks a time-based seed.
	Seed  int64                                `yaml:"seed"`
	Types map[schema.SemanticType]TypeConfig `yaml:"types"`
}

// TypeConfig selects and parameterizes the strategy for one semantic type.
type TypeConfig struct {
	Strategy string `yaml:"strategy"`
	// Min and Max are the range used when the field declares no bound.
	Min *float64 `yaml:"min,omitempty"`
	Max *float64 `yaml:"max,omitempty"`
	// SentinelMin and SentinelMax fill the unset side when only one bound
	// is declared.
	SentinelMin *float64       `yaml:"sentinel_min,omitempty"`
	SentinelMax *float64       `yaml:"sentinel_max,omitempty"`
	Params      map[string]any `yaml:"params,omitempty"`
	Post        []string       `yaml:"post,omitempty"`
}

var (
	base     *Config
	baseOnce sync.Once
)

func f64(v float64) *float64 { return &v }

func buildBase() *Config {
	const (
		int32Min = -2147483648
		int32Max = 2147483647
		// 2000-01-01 and 2030-01-01, unix seconds
		epochStart = 946684800
		epochEnd   = 1893456000
	)
	return &Config{
		DefaultValueFactor: 1,
		Tolerance:          10,
		Types: map[schema.SemanticType]TypeConfig{
			schema.TypeChar:  {Strategy: "text"},
			schema.TypeText:  {Strategy: "text", Max: f64(200)},
			schema.TypeSlug:  {Strategy: "text", Post: []string{"slugify"}},
			schema.TypeEmail: {Strategy: "email"},
			schema.TypeURL:   {Strategy: "url"},
			schema.TypeIPv4:  {Strategy: "ipv4"},
			schema.TypeName:  {Strategy: "name"},
			schema.TypeUUID:  {Strategy: "uuid"},
			schema.TypeInteger: {
				Strategy: "integer", Min: f64(0), Max: f64(9999),
				SentinelMin: f64(int32Min), SentinelMax: f64(int32Max),
			},
			schema.TypeSmallInteger: {
				Strategy: "integer", Min: f64(0), Max: f64(9999),
				SentinelMin: f64(-32768), SentinelMax: f64(32767),
			},
			schema.TypeBigInteger: {
				Strategy: "integer", Min: f64(0), Max: f64(9999),
				SentinelMin: f64(-9223372036854775808), SentinelMax: f64(9223372036854775807),
			},
			schema.TypePositiveInteger: {
				Strategy: "integer", Min: f64(0), Max: f64(9999),
				SentinelMin: f64(0), SentinelMax: f64(int32Max),
			},
			schema.TypeFloat: {
				Strategy: "float", Min: f64(0), Max: f64(9999),
				SentinelMin: f64(-1e12), SentinelMax: f64(1e12),
			},
			schema.TypeDecimal: {
				Strategy: "decimal", Min: f64(0), Max: f64(9999),
				SentinelMin: f64(-1e12), SentinelMax: f64(1e12),
				Params: map[string]any{"decimal_places": 2},
			},
			schema.TypeBoolean:  {Strategy: "boolean"},
			schema.TypeDate:     {Strategy: "date", Min: f64(epochStart), Max: f64(epochEnd)},
			schema.TypeDateTime: {Strategy: "datetime", Min: f64(epochStart), Max: f64(epochEnd)},
			schema.TypeTime:     {Strategy: "time"},
		},
	}
}

// Default returns a copy of the process-wide base config.
func Default() *Config {
	baseOnce.Do(func() { base = buildBase() })
	return base.Clone()
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Types = make(map[schema.SemanticType]TypeConfig, len(c.Types))
	for t, tc := range c.Types {
		out.Types[t] = tc.clone()
	}
	return &out
}

func (tc TypeConfig) clone() TypeConfig {
	out := tc
	out.Min = copyF64(tc.Min)
	out.Max = copyF64(tc.Max)
	out.SentinelMin = copyF64(tc.SentinelMin)
	out.SentinelMax = copyF64(tc.SentinelMax)
	if tc.Params != nil {
		out.Params = make(map[string]any, len(tc.Params))
		for k, v := range tc.Params {
			out.Params[k] = v
		}
	}
	if tc.Post != nil {
		out.Post = append([]string(nil), tc.Post...)
	}
	return out
}

func copyF64(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// With returns a copy of c with the mutators applied.
func (c *Config) With(mutators ...func(*Config)) *Config {
	out := c.Clone()
	for _, m := range mutators {
		m(out)
	}
	return out
}

// Lookup returns the type config registered for t.
func (c *Config) Lookup(t schema.SemanticType) (TypeConfig, error) {
	tc, ok := c.Types[t]
	if !ok || tc.Strategy == "" {
		return TypeConfig{}, NewUnregisteredTypeError(t)
	}
	return tc, nil
}

// SemanticTypes returns the registered types in sorted order.
func (c *Config) SemanticTypes() []schema.SemanticType {
	out := make([]schema.SemanticType, 0, len(c.Types))
	for t := range c.Types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Validate checks option ranges. Strategy names are checked by the synthesizer.
func (c *Config) Validate() error {
	if c.DefaultValueFactor < 0 || c.DefaultValueFactor > 1 {
		return &ConfigurationError{Reason: fmt.Sprintf("default_value_factor %v outside [0, 1]", c.DefaultValueFactor)}
	}
	if c.Tolerance < 0 {
		return &ConfigurationError{Reason: fmt.Sprintf("tolerance %d is negative", c.Tolerance)}
	}
	for _, t := range c.SemanticTypes() {
		tc := c.Types[t]
		if tc.Strategy == "" {
			return &ConfigurationError{Type: t, Reason: "strategy is empty"}
		}
		if tc.Min != nil && tc.Max != nil && *tc.Min > *tc.Max {
			return &ConfigurationError{Type: t, Strategy: tc.Strategy, Reason: "min is greater than max"}
		}
		if tc.SentinelMin != nil && tc.SentinelMax != nil && *tc.SentinelMin > *tc.SentinelMax {
			return &ConfigurationError{Type: t, Strategy: tc.Strategy, Reason: "sentinel_min is greater than sentinel_max"}
		}
	}
	return nil
}

type fileConfig struct {
	DefaultValueFactor *float64                           `yaml:"default_value_factor"`
	Tolerance          *int                               `yaml:"tolerance"`
	Seed               *int64                             `yaml:"seed"`
	Types              map[schema.SemanticType]TypeConfig `yaml:"types"`
}

// Load reads a YAML file and overlays it onto a copy of the base config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse overlays YAML data onto a copy of the base config.
func Parse(data []byte) (*Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg := Default()
	cfg.overlay(fc)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) overlay(fc fileConfig) {
	if fc.DefaultValueFactor != nil {
		c.DefaultValueFactor = *fc.DefaultValueFactor
	}
	if fc.Tolerance != nil {
		c.Tolerance = *fc.Tolerance
	}
	if fc.Seed != nil {
		c.Seed = *fc.Seed
	}
	for t, override := range fc.Types {
		tc := c.Types[t].clone()
		if override.Strategy != "" {
			tc.Strategy = override.Strategy
		}
		if override.Min != nil {
			tc.Min = copyF64(override.Min)
		}
		if override.Max != nil {
			tc.Max = copyF64(override.Max)
		}
		if override.SentinelMin != nil {
			tc.SentinelMin = copyF64(override.SentinelMin)
		}
		if override.SentinelMax != nil {
			tc.SentinelMax = copyF64(override.SentinelMax)
		}
		for k, v := range override.Params {
			if tc.Params == nil {
				tc.Params = map[string]any{}
			}
			tc.Params[k] = v
		}
		if override.Post != nil {
			tc.Post = append([]string(nil), override.Post...)
		}
		c.Types[t] = tc
	}
}
