package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ridoystarlord/fixturegen/schema"
)

type yamlFile struct {
	Models []yamlModel `yaml:"models"`
}

type yamlModel struct {
	Name   string      `yaml:"name"`
	Table  string      `yaml:"table"`
	Fields []yamlField `yaml:"fields"`
}

type yamlField struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Primary  bool   `yaml:"primary"`
	Unique   bool   `yaml:"unique"`
	Auto     bool   `yaml:"auto"`
	Nullable bool   `yaml:"nullable"`
	// not a pointer: "default: null" must stay distinguishable from no default
	Default    yaml.Node       `yaml:"default"`
	Choices    []yaml.Node     `yaml:"choices"`
	Validators []yamlValidator `yaml:"validators"`
	MinLength  *int            `yaml:"min_length"`
	MaxLength  *int            `yaml:"max_length"`
	MinValue   *yaml.Node      `yaml:"min_value"`
	MaxValue   *yaml.Node      `yaml:"max_value"`
}

type yamlValidator struct {
	Code  string    `yaml:"code"`
	Limit yaml.Node `yaml:"limit"`
}

type yamlChoice struct {
	Value any    `yaml:"value"`
	Label string `yaml:"label"`
}

// LoadModelsFromYAML reads model definitions from a YAML file.
func LoadModelsFromYAML(filename string) ([]schema.Model, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	return ParseModelsYAML(data)
}

// ParseModelsYAML parses model definitions.
func ParseModelsYAML(data []byte) ([]schema.Model, error) {
	var yf yamlFile
	if err := yaml.Unmarshal(data, &yf); err != nil {
		return nil, fmt.Errorf("unmarshalling YAML: %w", err)
	}

	var models []schema.Model
	for _, m := range yf.Models {
		if m.Name == "" {
			return nil, fmt.Errorf("model without a name")
		}
		model := schema.Model{Name: m.Name, Table: m.Table}
		if model.Table == "" {
			model.Table = schema.TableNameFor(m.Name)
		}
		for _, f := range m.Fields {
			field, err := f.toField()
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", m.Name, f.Name, err)
			}
			model.Fields = append(model.Fields, field)
		}
		models = append(models, model)
	}
	return models, nil
}

func (f yamlField) toField() (schema.Field, error) {
	field := schema.Field{
		Name:     f.Name,
		Type:     schema.SemanticType(f.Type),
		Primary:  f.Primary,
		Unique:   f.Unique,
		Auto:     f.Auto,
		Nullable: f.Nullable,
	}
	if field.Type == "" {
		field.Type = schema.TypeText
	}

	for _, v := range f.Validators {
		limit, err := decodeLimit(field.Type, schema.ValidatorCode(v.Code), &v.Limit)
		if err != nil {
			return schema.Field{}, err
		}
		field.Validators = append(field.Validators, schema.Validator{Code: schema.ValidatorCode(v.Code), Limit: limit})
	}
	if f.MinLength != nil {
		field.Validators = append(field.Validators, schema.Validator{Code: schema.MinLength, Limit: *f.MinLength})
	}
	if f.MaxLength != nil {
		field.Validators = append(field.Validators, schema.Validator{Code: schema.MaxLength, Limit: *f.MaxLength})
	}
	bounds := []struct {
		code schema.ValidatorCode
		node *yaml.Node
	}{{schema.MinValue, f.MinValue}, {schema.MaxValue, f.MaxValue}}
	for _, b := range bounds {
		if b.node == nil {
			continue
		}
		limit, err := decodeLimit(field.Type, b.code, b.node)
		if err != nil {
			return schema.Field{}, err
		}
		field.Validators = append(field.Validators, schema.Validator{Code: b.code, Limit: limit})
	}

	if f.Default.Kind != 0 {
		v, err := decodeValue(field.Type, &f.Default)
		if err != nil {
			return schema.Field{}, fmt.Errorf("default: %w", err)
		}
		field.Default = schema.DefaultOf(v)
	}

	for i := range f.Choices {
		c, err := decodeChoice(field.Type, &f.Choices[i])
		if err != nil {
			return schema.Field{}, fmt.Errorf("choice %d: %w", i, err)
		}
		field.Choices = append(field.Choices, c)
	}
	return field, nil
}

func decodeValue(t schema.SemanticType, node *yaml.Node) (any, error) {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return nil, err
	}
	return schema.Coerce(t, raw)
}

func decodeLimit(t schema.SemanticType, code schema.ValidatorCode, node *yaml.Node) (any, error) {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return nil, err
	}
	switch code {
	case schema.MinLength, schema.MaxLength:
		n, ok := schema.ToInt64(raw)
		if !ok {
			return nil, fmt.Errorf("%s limit %v is not an integer", code, raw)
		}
		return int(n), nil
	case schema.MinValue, schema.MaxValue:
		return schema.Coerce(t, raw)
	}
	return raw, nil
}

func decodeChoice(t schema.SemanticType, node *yaml.Node) (schema.Choice, error) {
	if node.Kind == yaml.MappingNode {
		var yc yamlChoice
		if err := node.Decode(&yc); err != nil {
			return schema.Choice{}, err
		}
		v, err := schema.Coerce(t, yc.Value)
		if err != nil {
			return schema.Choice{}, err
		}
		label := yc.Label
		if label == "" {
			label = fmt.Sprint(yc.Value)
		}
		return schema.Choice{Value: v, Label: label}, nil
	}
	v, err := decodeValue(t, node)
	if err != nil {
		return schema.Choice{}, err
	}
	return schema.Choice{Value: v, Label: node.Value}, nil
}

// MarshalModelsYAML renders models in the format LoadModelsFromYAML reads.
func MarshalModelsYAML(models []schema.Model) ([]byte, error) {
	out := struct {
		Models []map[string]any `yaml:"models"`
	}{}
	for _, m := range models {
		fields := make([]map[string]any, 0, len(m.Fields))
		for _, f := range m.Fields {
			fields = append(fields, fieldToMap(f))
		}
		out.Models = append(out.Models, map[string]any{
			"name":   m.Name,
			"table":  m.TableName(),
			"fields": fields,
		})
	}
	return yaml.Marshal(out)
}

func fieldToMap(f schema.Field) map[string]any {
	out := map[string]any{"name": f.Name, "type": string(f.Type)}
	for key, set := range map[string]bool{"primary": f.Primary, "unique": f.Unique, "auto": f.Auto, "nullable": f.Nullable} {
		if set {
			out[key] = true
		}
	}
	if f.Default != nil {
		out["default"] = f.Default.Value
	}
	if len(f.Choices) > 0 {
		choices := make([]map[string]any, 0, len(f.Choices))
		for _, c := range f.Choices {
			choices = append(choices, map[string]any{"value": c.Value, "label": c.Label})
		}
		out["choices"] = choices
	}
	if len(f.Validators) > 0 {
		validators := make([]map[string]any, 0, len(f.Validators))
		for _, v := range f.Validators {
			validators = append(validators, map[string]any{"code": string(v.Code), "limit": v.Limit})
		}
		out["validators"] = validators
	}
	return out
}
