package validator

import (
	"fmt"

	"github.com/ridoystarlord/fixturegen/constraint"
	"github.com/ridoystarlord/fixturegen/schema"
	"github.com/ridoystarlord/fixturegen/store"
	"github.com/ridoystarlord/fixturegen/synth"
)

// ValidationError represents a validation finding with details
type ValidationError struct {
	Type     string `json:"type"`
	Model    string `json:"model,omitempty"`
	Field    string `json:"field,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // "error", "warning", "info"
}

// ValidationResult contains all validation results
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings"`
	Info     []ValidationError `json:"info"`
}

func newResult() *ValidationResult {
	return &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
		Info:     []ValidationError{},
	}
}

func (r *ValidationResult) add(severity, typ, model, field, format string, args ...any) {
	e := ValidationError{
		Type:     typ,
		Model:    model,
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
		Severity: severity,
	}
	switch severity {
	case "error":
		r.Errors = append(r.Errors, e)
		r.Valid = false
	case "warning":
		r.Warnings = append(r.Warnings, e)
	default:
		r.Info = append(r.Info, e)
	}
}

// ModelValidator checks model definitions against what the synthesizer can
// produce.
type ModelValidator struct {
	synth *synth.Synthesizer
}

// NewModelValidator creates a validator for models generated with s.
func NewModelValidator(s *synth.Synthesizer) *ModelValidator {
	return &ModelValidator{synth: s}
}

// ValidateModels lints models. Errors make generation fail or produce values
// outside the declared bounds; warnings point at fields that are likely to
// collide or never vary.
func ValidateModels(models []schema.Model, s *synth.Synthesizer) *ValidationResult {
	return NewModelValidator(s).Validate(models)
}

// Validate runs every model and cross-model check.
func (v *ModelValidator) Validate(models []schema.Model) *ValidationResult {
	result := newResult()
	seen := map[string]bool{}
	for _, model := range models {
		if seen[model.Name] {
			result.add("error", "duplicate_model", model.Name, "", "Duplicate model name '%s'", model.Name)
			continue
		}
		seen[model.Name] = true
		v.validateModel(model, result)
	}
	return result
}

// CheckTables reports models whose table is missing from the database.
func CheckTables(models []schema.Model, existing map[string]bool, result *ValidationResult) {
	for _, model := range models {
		if !existing[model.TableName()] {
			result.add("warning", "table_missing", model.Name, "",
				"Table '%s' does not exist in the database; seeding it will fail", model.TableName())
		}
	}
}

func (v *ModelValidator) validateModel(model schema.Model, result *ValidationResult) {
	if err := validateIdentifier("model", model.Name); err != nil {
		result.add("error", "model_name", model.Name, "", "%v", err)
	}
	if len(model.Fields) == 0 {
		result.add("error", "no_fields", model.Name, "", "Model '%s' must have at least one field", model.Name)
		return
	}

	names := map[string]bool{}
	hasPrimary := false
	for _, field := range model.Fields {
		if names[field.Name] {
			result.add("error", "duplicate_field", model.Name, field.Name,
				"Duplicate field name '%s' in model '%s'", field.Name, model.Name)
			continue
		}
		names[field.Name] = true
		if err := validateIdentifier("field", field.Name); err != nil {
			result.add("error", "field_name", model.Name, field.Name, "%v", err)
		}
		hasPrimary = hasPrimary || field.Primary
		v.validateField(model, field, result)
	}

	if !hasPrimary {
		result.add("info", "no_primary_key", model.Name, "", "Model '%s' has no primary key", model.Name)
	}
}

func (v *ModelValidator) validateField(model schema.Model, field schema.Field, result *ValidationResult) {
	rec := constraint.Extract(field)

	if err := v.synth.Check(field.Type); err != nil {
		if field.Auto || !v.synth.NeedsStrategy(rec) {
			result.add("info", "type_unregistered", model.Name, field.Name,
				"Type '%s' has no strategy; the field is never synthesized", field.Type)
		} else {
			result.add("error", "type_unregistered", model.Name, field.Name, "%v", err)
		}
	}

	for _, val := range field.Validators {
		switch val.Code {
		case schema.MinLength, schema.MaxLength:
			if !field.Type.IsTextual() {
				result.add("info", "ignored_validator", model.Name, field.Name,
					"%s has no effect on type '%s'", val.Code, field.Type)
			}
		case schema.MinValue, schema.MaxValue:
			if !field.Type.IsNumeric() && !field.Type.IsTemporal() {
				result.add("info", "ignored_validator", model.Name, field.Name,
					"%s has no effect on type '%s'", val.Code, field.Type)
			}
		default:
			result.add("info", "unknown_validator", model.Name, field.Name,
				"Validator '%s' is not used for generation", val.Code)
		}
	}

	validateBounds(model, field, rec, result)
	validateDefault(model, field, result)
	validateUniqueness(model, field, result)
}

func validateBounds(model schema.Model, field schema.Field, rec constraint.Record, result *ValidationResult) {
	for _, n := range []*int{rec.MinLength, rec.MaxLength} {
		if n != nil && *n < 0 {
			result.add("error", "negative_length", model.Name, field.Name, "Length bound %d is negative", *n)
		}
	}
	if rec.MinLength != nil && rec.MaxLength != nil && *rec.MinLength > *rec.MaxLength {
		result.add("error", "inverted_bounds", model.Name, field.Name,
			"min_length %d is greater than max_length %d", *rec.MinLength, *rec.MaxLength)
	}
	if rec.MinValue != nil && rec.MaxValue != nil && greater(rec.MinValue, rec.MaxValue) {
		result.add("error", "inverted_bounds", model.Name, field.Name,
			"min_value %v is greater than max_value %v", rec.MinValue, rec.MaxValue)
	}
}

func greater(a, b any) bool {
	if x, ok := schema.ToFloat64(a); ok {
		if y, ok := schema.ToFloat64(b); ok {
			return x > y
		}
	}
	if x, ok := schema.ToTime(a); ok {
		if y, ok := schema.ToTime(b); ok {
			return x.After(y)
		}
	}
	if x, ok := a.(string); ok {
		if y, ok := b.(string); ok {
			// HH:MM:SS compares lexically
			return x > y
		}
	}
	return false
}

func validateDefault(model schema.Model, field schema.Field, result *ValidationResult) {
	if field.Default == nil || len(field.Choices) == 0 {
		return
	}
	members := store.NewSet(field.ChoiceValues())
	if !members.Contains(field.Default.Value) {
		result.add("warning", "default_not_in_choices", model.Name, field.Name,
			"Default %v is not one of the field's choices", field.Default.Value)
	}
}

func validateUniqueness(model schema.Model, field schema.Field, result *ValidationResult) {
	if !field.Unique || field.Auto {
		return
	}
	switch {
	case field.Default != nil:
		result.add("warning", "unique_default", model.Name, field.Name,
			"Unique field has a default; every record after the first collides")
	case field.Type == schema.TypeBoolean:
		result.add("warning", "unique_boolean", model.Name, field.Name,
			"Unique boolean field allows at most 2 records")
	case len(field.Choices) > 0:
		result.add("warning", "unique_choices", model.Name, field.Name,
			"Unique choice field allows at most %d records", len(field.Choices))
	}
}

// validateIdentifier applies the usual SQL identifier rules
func validateIdentifier(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%s name cannot be empty", kind)
	}
	if len(name) > 63 {
		return fmt.Errorf("%s name '%s' is too long (max 63 characters)", kind, name)
	}
	for _, char := range name {
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '_') {
			return fmt.Errorf("%s name '%s' contains invalid character '%c'", kind, name, char)
		}
	}
	return nil
}
