package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Sequence is an ordered or unordered collection of values. Elements are
// produced on demand so that broadcasting over a large slice does not copy it.
type Sequence interface {
	Len() int
	Index(i int) Value
}

// Values is a Sequence backed by a slice.
type Values []Value

// Len implements Sequence.
func (v Values) Len() int { return len(v) }

// Index implements Sequence.
func (v Values) Index(i int) Value { return v[i] }

// Value is the tagged union of everything a field path can resolve to:
// null, number, boolean, string, enum symbol, a sequence of values, or a
// nested record. The zero Value is Null.
type Value struct {
	typ FieldType
	num Number
	b   bool
	str string
	seq Sequence
	obj Record
}

// Null is the absent value.
var Null = Value{}

// NumberValue returns a number value.
func NumberValue(n Number) Value {
	return Value{typ: FieldTypeNumber, num: n}
}

// BoolValue returns a boolean value.
func BoolValue(b bool) Value {
	return Value{typ: FieldTypeBoolean, b: b}
}

// StringValue returns a string value.
func StringValue(s string) Value {
	return Value{typ: FieldTypeString, str: s}
}

// EnumValue returns an enumerated value identified by its symbolic name.
func EnumValue(name string) Value {
	return Value{typ: FieldTypeEnum, str: name}
}

// ArrayValue returns an ordered sequence value.
func ArrayValue(seq Sequence) Value {
	if seq == nil {
		seq = Values(nil)
	}
	return Value{typ: FieldTypeArray, seq: seq}
}

// SetValue returns an unordered sequence value.
func SetValue(seq Sequence) Value {
	if seq == nil {
		seq = Values(nil)
	}
	return Value{typ: FieldTypeSet, seq: seq}
}

// ObjectValue returns a nested record value. A nil record is Null.
func ObjectValue(r Record) Value {
	if r == nil {
		return Null
	}
	return Value{typ: FieldTypeObject, obj: r}
}

// Type returns the kind of the value.
func (v Value) Type() FieldType {
	if v.typ == "" {
		return FieldTypeNull
	}
	return v.typ
}

// IsNull reports whether v is the absent value.
func (v Value) IsNull() bool {
	return v.typ == "" || v.typ == FieldTypeNull
}

// Number returns the numeric value if v is a number.
func (v Value) Number() (Number, bool) {
	return v.num, v.typ == FieldTypeNumber
}

// Bool returns the boolean value if v is a boolean.
func (v Value) Bool() (bool, bool) {
	return v.b, v.typ == FieldTypeBoolean
}

// Str returns the text if v is a string. Enum symbols are not strings;
// use Text to accept both.
func (v Value) Str() (string, bool) {
	return v.str, v.typ == FieldTypeString
}

// Symbol returns the symbolic name if v is an enum value.
func (v Value) Symbol() (string, bool) {
	return v.str, v.typ == FieldTypeEnum
}

// Text returns the text of a string or the name of an enum value.
func (v Value) Text() (string, bool) {
	return v.str, v.typ == FieldTypeString || v.typ == FieldTypeEnum
}

// Sequence returns the elements if v is an array or set.
func (v Value) Sequence() (Sequence, bool) {
	return v.seq, v.typ.IsSequence()
}

// Record returns the nested record if v is an object.
func (v Value) Record() (Record, bool) {
	return v.obj, v.typ == FieldTypeObject
}

// String renders v for logs and error messages.
func (v Value) String() string {
	switch v.Type() {
	case FieldTypeNumber:
		return v.num.String()
	case FieldTypeBoolean:
		return strconv.FormatBool(v.b)
	case FieldTypeString:
		return strconv.Quote(v.str)
	case FieldTypeEnum:
		return v.str
	case FieldTypeArray, FieldTypeSet:
		var sb strings.Builder
		sb.WriteByte('[')
		for i := range v.seq.Len() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(v.seq.Index(i).String())
		}
		sb.WriteByte(']')
		return sb.String()
	case FieldTypeObject:
		return fmt.Sprintf("object(%T)", v.obj)
	default:
		return "null"
	}
}
