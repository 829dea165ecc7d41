package schema

// Model describes a data model whose records get synthetic field values.
type Model struct {
	Name   string
	Table  string
	Fields []Field
}

// Field is the descriptor of one model attribute. It is read-only for the
// duration of a generation pass.
type Field struct {
	Name       string
	Type       SemanticType
	Validators []Validator
	// Default is nil when no default was declared.
	Default  *Literal
	Choices  []Choice
	Unique   bool
	Primary  bool
	Auto     bool // value assigned by the database (serial, identity, auto-increment)
	Nullable bool
}

// ValidatorCode names a validation rule attached to a field.
type ValidatorCode string

const (
	MinLength ValidatorCode = "min_length"
	MaxLength ValidatorCode = "max_length"
	MinValue  ValidatorCode = "min_value"
	MaxValue  ValidatorCode = "max_value"
)

// Validator is a (code, limit) pair.
type Validator struct {
	Code  ValidatorCode
	Limit any
}

// Literal wraps a declared value so that a declared nil default can be told
// apart from an undeclared one.
type Literal struct {
	Value any
}

// DefaultOf returns a declared default holding v.
func DefaultOf(v any) *Literal {
	return &Literal{Value: v}
}

// Choice is one member of a field's ordered choice set.
type Choice struct {
	Value any
	Label string
}

// TableName returns the storage name of the model.
func (m Model) TableName() string {
	if m.Table != "" {
		return m.Table
	}
	return m.Name
}

// FieldByName returns a field by name if present.
func (m Model) FieldByName(name string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// UniqueFields returns the fields flagged unique, in declaration order.
func (m Model) UniqueFields() []Field {
	var out []Field
	for _, f := range m.Fields {
		if f.Unique {
			out = append(out, f)
		}
	}
	return out
}

// HasDefault reports whether a default was declared.
func (f Field) HasDefault() bool {
	return f.Default != nil
}

// HasChoices reports whether the field declares a non-empty choice set.
func (f Field) HasChoices() bool {
	return len(f.Choices) > 0
}

// ChoiceValues returns the stored values of the choice set.
func (f Field) ChoiceValues() []any {
	out := make([]any, 0, len(f.Choices))
	for _, c := range f.Choices {
		out = append(out, c.Value)
	}
	return out
}

// ValidatorLimit returns the limit of the last validator with the given code.
func (f Field) ValidatorLimit(code ValidatorCode) (any, bool) {
	var (
		limit any
		found bool
	)
	for _, v := range f.Validators {
		if v.Code == code {
			limit, found = v.Limit, true
		}
	}
	return limit, found
}
