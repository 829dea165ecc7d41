package schema

import "strings"

// SemanticType is the logical type of a field, independent of its storage
// representation.
type SemanticType string

// Semantic types known to the default generation config.
const (
	TypeChar            SemanticType = "char"
	TypeText            SemanticType = "text"
	TypeSlug            SemanticType = "slug"
	TypeEmail           SemanticType = "email"
	TypeURL             SemanticType = "url"
	TypeIPv4            SemanticType = "ipv4"
	TypeName            SemanticType = "name"
	TypeUUID            SemanticType = "uuid"
	TypeInteger         SemanticType = "integer"
	TypeSmallInteger    SemanticType = "small_integer"
	TypeBigInteger      SemanticType = "big_integer"
	TypePositiveInteger SemanticType = "positive_integer"
	TypeFloat           SemanticType = "float"
	TypeDecimal         SemanticType = "decimal"
	TypeBoolean         SemanticType = "boolean"
	TypeDate            SemanticType = "date"
	TypeDateTime        SemanticType = "datetime"
	TypeTime            SemanticType = "time"
)

// IsTextual reports whether values of the type are strings bounded by
// length validators.
func (t SemanticType) IsTextual() bool {
	switch t {
	case TypeChar, TypeText, TypeSlug, TypeEmail, TypeURL, TypeIPv4, TypeName, TypeUUID:
		return true
	}
	return false
}

// IsNumeric reports whether values of the type are bounded by value validators.
func (t SemanticType) IsNumeric() bool {
	switch t {
	case TypeInteger, TypeSmallInteger, TypeBigInteger, TypePositiveInteger, TypeFloat, TypeDecimal:
		return true
	}
	return false
}

// IsIntegral reports whether values of the type are integers.
func (t SemanticType) IsIntegral() bool {
	switch t {
	case TypeInteger, TypeSmallInteger, TypeBigInteger, TypePositiveInteger:
		return true
	}
	return false
}

// IsTemporal reports whether values of the type are dates or times.
func (t SemanticType) IsTemporal() bool {
	return t == TypeDate || t == TypeDateTime || t == TypeTime
}

// InferFromGoType maps a Go type name, as written in source, to a semantic type.
func InferFromGoType(goType string) SemanticType {
	switch strings.TrimPrefix(goType, "*") {
	case "int", "int32", "uint", "uint32":
		return TypeInteger
	case "int8", "int16", "uint8", "uint16":
		return TypeSmallInteger
	case "int64", "uint64":
		return TypeBigInteger
	case "float32", "float64":
		return TypeFloat
	case "bool":
		return TypeBoolean
	case "string":
		return TypeChar
	case "time.Time":
		return TypeDateTime
	case "time.Duration":
		return TypeBigInteger
	case "uuid.UUID":
		return TypeUUID
	case "decimal.Decimal":
		return TypeDecimal
	default:
		return TypeText
	}
}

// InferFromSQLType maps a database column type to a semantic type.
func InferFromSQLType(dataType string) SemanticType {
	dataType = strings.ToLower(strings.TrimSpace(dataType))
	switch {
	case dataType == "smallint" || dataType == "smallserial" || dataType == "tinyint":
		return TypeSmallInteger
	case dataType == "bigint" || dataType == "bigserial":
		return TypeBigInteger
	case dataType == "integer" || dataType == "int" || dataType == "serial" || dataType == "mediumint":
		return TypeInteger
	case dataType == "real" || dataType == "double precision" || dataType == "double" || dataType == "float":
		return TypeFloat
	case strings.HasPrefix(dataType, "numeric") || strings.HasPrefix(dataType, "decimal"):
		return TypeDecimal
	case dataType == "boolean" || dataType == "bool":
		return TypeBoolean
	case dataType == "date":
		return TypeDate
	case strings.HasPrefix(dataType, "timestamp") || dataType == "datetime":
		return TypeDateTime
	case strings.HasPrefix(dataType, "time"):
		return TypeTime
	case dataType == "uuid":
		return TypeUUID
	case dataType == "inet":
		return TypeIPv4
	case strings.HasPrefix(dataType, "character varying") || strings.HasPrefix(dataType, "varchar") ||
		strings.HasPrefix(dataType, "character") || strings.HasPrefix(dataType, "char"):
		return TypeChar
	default:
		return TypeText
	}
}
