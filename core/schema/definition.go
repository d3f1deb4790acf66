// Package schema describes the records a filter is evaluated against: the
// kinds of values a field can hold, the Value union that carries them, and the
// Record capability used to look fields up by name.
package schema

// LogicalOperator for combining conditions.
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "and" // All conditions must be true
	LogicalOr  LogicalOperator = "or"  // At least one condition must be true
)

// FieldType represents the kind of value resolved from a record field.
type FieldType string

const (
	FieldTypeNull    FieldType = "null"    // Absent or nil
	FieldTypeString  FieldType = "string"  // Text data
	FieldTypeNumber  FieldType = "number"  // Numeric data
	FieldTypeBoolean FieldType = "boolean" // True/false values
	FieldTypeEnum    FieldType = "enum"    // One out of a set of pre-defined items, compared by name
	FieldTypeArray   FieldType = "array"   // Ordered list of items
	FieldTypeSet     FieldType = "set"     // Unordered list with unique items
	FieldTypeObject  FieldType = "object"  // Structured data with nested fields
)

// IsSequence reports whether values of this type hold multiple elements.
func (t FieldType) IsSequence() bool {
	return t == FieldTypeArray || t == FieldTypeSet
}

// IsScalar reports whether values of this type are single comparable values.
func (t FieldType) IsScalar() bool {
	switch t {
	case FieldTypeString, FieldTypeNumber, FieldTypeBoolean, FieldTypeEnum:
		return true
	}
	return false
}

// Record is implemented by anything that can look up a named field.
// A missing field reports (Null, false); lookups never fail.
type Record interface {
	FieldByName(name string) (Value, bool)
}

// Document is a schemaless record backed by a map, as produced by decoding
// JSON or scanning database rows.
type Document map[string]any

// FieldByName implements Record.
func (d Document) FieldByName(name string) (Value, bool) {
	v, ok := d[name]
	if !ok {
		return Null, false
	}
	return ValueOf(v), true
}
