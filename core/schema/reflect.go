package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unsafe"

	"github.com/shopspring/decimal"
)

// Enum is implemented by types that are compared by a symbolic name rather
// than by their underlying representation.
type Enum interface {
	EnumName() string
}

var (
	stringerType = reflect.TypeFor[fmt.Stringer]()
	emptyStruct  = reflect.TypeFor[struct{}]()
)

// ValueOf converts an arbitrary Go value into a Value.
//
// Pointers and interfaces are followed; nil ones are Null. Integer types with
// a String method, and Enum implementers, are enum symbols. Slices and
// arrays are arrays, except []byte which is a string. A map[K]struct{} is a
// set of its keys, any other map with string keys is an object, as is any
// struct. Fields of structs are looked up by Go name, json tag or a
// case-insensitive snake/camel match, including promoted and unexported
// fields.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null
	case Value:
		return x
	case Document:
		return ObjectValue(x)
	case bool:
		return BoolValue(x)
	case string:
		return StringValue(x)
	case int:
		return NumberValue(NumberFromInt(int64(x)))
	case int64:
		return NumberValue(NumberFromInt(x))
	case float64:
		return NumberValue(NumberFromFloat(x))
	case decimal.Decimal:
		return NumberValue(NumberFromDecimal(x))
	case json.Number:
		if n, ok := ParseNumber(string(x)); ok {
			return NumberValue(n)
		}
		return StringValue(string(x))
	case []byte:
		return StringValue(string(x))
	case []any:
		return ArrayValue(anySlice(x))
	case map[string]any:
		return ObjectValue(Document(x))
	}
	return valueOfReflect(reflect.ValueOf(v))
}

// valueOfReflect converts rv. Values read from unexported fields must have
// been passed through exported first, or their methods are not seen.
func valueOfReflect(rv reflect.Value) Value {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return Null
		}
		if rv.Kind() == reflect.Pointer && rv.CanInterface() {
			if r, ok := rv.Interface().(Record); ok {
				return ObjectValue(r)
			}
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return Null
	}

	if rv.CanInterface() {
		switch x := rv.Interface().(type) {
		case Value:
			return x
		case Enum:
			return EnumValue(x.EnumName())
		case Record:
			return ObjectValue(x)
		case decimal.Decimal:
			return NumberValue(NumberFromDecimal(x))
		case json.Number:
			return ValueOf(x)
		}
	}

	switch rv.Kind() {
	case reflect.Bool:
		return BoolValue(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.CanInterface() && rv.Type().Implements(stringerType) {
			return EnumValue(rv.Interface().(fmt.Stringer).String())
		}
		return NumberValue(NumberFromInt(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if rv.CanInterface() && rv.Type().Implements(stringerType) {
			return EnumValue(rv.Interface().(fmt.Stringer).String())
		}
		return NumberValue(NumberFromUint(rv.Uint()))
	case reflect.Float32:
		return NumberValue(NumberFromFloat32(float32(rv.Float())))
	case reflect.Float64:
		return NumberValue(NumberFromFloat(rv.Float()))
	case reflect.String:
		return StringValue(rv.String())
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return StringValue(string(rv.Bytes()))
		}
		return ArrayValue(reflectSequence{rv})
	case reflect.Array:
		return ArrayValue(reflectSequence{rv})
	case reflect.Map:
		if rv.Type().Elem() == emptyStruct {
			return SetValue(keySequence(rv.MapKeys()))
		}
		if rv.Type().Key().Kind() == reflect.String {
			return ObjectValue(mapRecord{rv})
		}
		return Null
	case reflect.Struct:
		if !rv.CanAddr() && rv.CanInterface() {
			// Unexported fields can only be exposed on an addressable struct.
			c := reflect.New(rv.Type()).Elem()
			c.Set(rv)
			rv = c
		}
		return ObjectValue(structRecord{rv})
	default:
		return Null
	}
}

type anySlice []any

func (s anySlice) Len() int          { return len(s) }
func (s anySlice) Index(i int) Value { return ValueOf(s[i]) }

// reflectSequence is a slice or array seen through reflection.
type reflectSequence struct {
	rv reflect.Value
}

func (s reflectSequence) Len() int { return s.rv.Len() }

func (s reflectSequence) Index(i int) Value { return valueOfReflect(s.rv.Index(i)) }

// keySequence holds the keys of a map used as a set.
type keySequence []reflect.Value

func (s keySequence) Len() int          { return len(s) }
func (s keySequence) Index(i int) Value { return valueOfReflect(s[i]) }

// mapRecord is a map with string keys seen through reflection.
type mapRecord struct {
	rv reflect.Value
}

func (m mapRecord) FieldByName(name string) (Value, bool) {
	key := reflect.ValueOf(name).Convert(m.rv.Type().Key())
	v := m.rv.MapIndex(key)
	if !v.IsValid() {
		return Null, false
	}
	return valueOfReflect(v), true
}

// structRecord is a struct seen through reflection.
type structRecord struct {
	rv reflect.Value
}

func (s structRecord) FieldByName(name string) (Value, bool) {
	index, ok := fieldIndex(s.rv.Type(), name)
	if !ok {
		return Null, false
	}
	fv, err := s.rv.FieldByIndexErr(index)
	if err != nil {
		// Nil embedded pointer along the way.
		return Null, false
	}
	return valueOfReflect(exported(fv)), true
}

// exported returns an unexported field as a value whose Interface can be
// called, so Enum, fmt.Stringer and decimal fields convert like exported
// ones. fv must be addressable.
func exported(fv reflect.Value) reflect.Value {
	if fv.CanInterface() || !fv.CanAddr() {
		return fv
	}
	return reflect.NewAt(fv.Type(), unsafe.Pointer(fv.UnsafeAddr())).Elem()
}

type fieldKey struct {
	typ  reflect.Type
	name string
}

type fieldLookup struct {
	index []int
	ok    bool
}

var fieldCache sync.Map // fieldKey -> fieldLookup

// fieldIndex finds a field by name in a struct type, caching the result.
func fieldIndex(typ reflect.Type, name string) ([]int, bool) {
	key := fieldKey{typ, name}
	if l, ok := fieldCache.Load(key); ok {
		l := l.(fieldLookup)
		return l.index, l.ok
	}
	sf, ok := fieldName(typ, name)
	l := fieldLookup{index: sf.Index, ok: ok}
	fieldCache.Store(key, l)
	return l.index, l.ok
}

// fieldName looks for a field by name in a type. An exact Go field name
// wins, then an exact json tag, then a match ignoring case and underscores
// on either.
func fieldName(typ reflect.Type, field string) (reflect.StructField, bool) {
	if sf, ok := typ.FieldByName(field); ok {
		return sf, ok
	}

	fields := reflect.VisibleFields(typ)
	for _, sf := range fields {
		if tag := jsonName(sf); tag != "" && tag == field {
			return sf, true
		}
	}
	for _, sf := range fields {
		if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
			continue
		}
		if looseMatch(field, sf.Name) || looseMatch(field, jsonName(sf)) {
			return sf, true
		}
	}
	return reflect.StructField{}, false
}

func jsonName(sf reflect.StructField) string {
	tag, ok := sf.Tag.Lookup("json")
	if !ok || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}

// looseMatch reports whether a and b are the same identifier in camel or
// snake case, so "first_name" matches "FirstName".
func looseMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(strings.ReplaceAll(a, "_", ""), strings.ReplaceAll(b, "_", ""))
}
