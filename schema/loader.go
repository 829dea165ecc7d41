package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-openapi/inflect"
)

// TagKey is the struct tag read by FromStruct and the source loader.
const TagKey = "fixture"

// FromStruct builds a Model from a struct value or pointer using its
// `fixture` tags. Untagged exported fields are included with a type
// inferred from their Go type; fields tagged "-" are skipped.
func FromStruct(v any) (Model, error) {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return Model{}, fmt.Errorf("expected a struct, got %T", v)
	}

	model := Model{
		Name:  t.Name(),
		Table: TableNameFor(t.Name()),
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		field, skip, err := ParseTag(sf.Name, sf.Type.String(), sf.Tag.Get(TagKey))
		if err != nil {
			return Model{}, fmt.Errorf("error parsing tag on %s.%s: %w", t.Name(), sf.Name, err)
		}
		if skip {
			continue
		}
		model.Fields = append(model.Fields, field)
	}
	return model, nil
}

// ParseTag parses a fixture tag such as
// "column:email;type:email;unique;max_length:254;default:x;choices:a|b".
// Choices may carry labels as "value=label".
func ParseTag(goName, goType, tag string) (Field, bool, error) {
	tag = strings.TrimSpace(tag)
	if tag == "-" {
		return Field{}, true, nil
	}

	field := Field{Name: ToSnakeCase(goName)}
	var rawDefault, rawChoices *string
	limits := map[ValidatorCode]string{}
	var order []ValidatorCode

	for _, part := range strings.Split(tag, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, hasValue := strings.Cut(part, ":")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if !hasValue {
			switch key {
			case "primary":
				field.Primary = true
			case "unique":
				field.Unique = true
			case "auto":
				field.Auto = true
			case "null", "nullable":
				field.Nullable = true
			default:
				return Field{}, false, fmt.Errorf("unknown tag option %q", key)
			}
			continue
		}
		switch key {
		case "column":
			field.Name = value
		case "type":
			field.Type = SemanticType(value)
		case "default":
			v := value
			rawDefault = &v
		case "choices":
			v := value
			rawChoices = &v
		default:
			// everything else is a validator code, including ones we do not know
			code := ValidatorCode(key)
			if _, seen := limits[code]; !seen {
				order = append(order, code)
			}
			limits[code] = value
		}
	}

	if field.Type == "" {
		field.Type = InferFromGoType(goType)
	}
	for _, code := range order {
		limit, err := parseLimit(field.Type, code, limits[code])
		if err != nil {
			return Field{}, false, fmt.Errorf("validator %s: %w", code, err)
		}
		field.Validators = append(field.Validators, Validator{Code: code, Limit: limit})
	}
	if rawDefault != nil {
		v, err := ParseLiteral(field.Type, *rawDefault)
		if err != nil {
			return Field{}, false, fmt.Errorf("default: %w", err)
		}
		field.Default = DefaultOf(v)
	}
	if rawChoices != nil {
		choices, err := parseChoices(field.Type, *rawChoices)
		if err != nil {
			return Field{}, false, err
		}
		field.Choices = choices
	}
	return field, false, nil
}

func parseLimit(t SemanticType, code ValidatorCode, raw string) (any, error) {
	switch code {
	case MinLength, MaxLength:
		n, ok := ToInt64(raw)
		if !ok {
			return nil, fmt.Errorf("length limit %q is not an integer", raw)
		}
		return int(n), nil
	case MinValue, MaxValue:
		return ParseLiteral(t, raw)
	default:
		return raw, nil
	}
}

func parseChoices(t SemanticType, raw string) ([]Choice, error) {
	var choices []Choice
	for _, item := range strings.Split(raw, "|") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		value, label, _ := strings.Cut(item, "=")
		v, err := ParseLiteral(t, value)
		if err != nil {
			return nil, fmt.Errorf("choice %q: %w", item, err)
		}
		if label == "" {
			label = strings.TrimSpace(value)
		}
		choices = append(choices, Choice{Value: v, Label: strings.TrimSpace(label)})
	}
	return choices, nil
}

// TableNameFor converts a struct name to a pluralized snake_case table name.
func TableNameFor(structName string) string {
	return inflect.Pluralize(ToSnakeCase(structName))
}

// ToSnakeCase converts PascalCase to snake_case.
func ToSnakeCase(s string) string {
	var b strings.Builder
	var prev rune
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' && ((prev >= 'a' && prev <= 'z') || (prev >= '0' && prev <= '9')) {
			b.WriteByte('_')
		}
		b.WriteRune(r)
		prev = r
	}
	return strings.ToLower(b.String())
}
