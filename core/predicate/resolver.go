package predicate

import (
	"github.com/asaidimu/go-rsql/core/schema"
)

// resolve walks path on record and applies test to the value at its end.
//
// A null record, wherever it is met, is handed to test directly. A sequence
// met before the last segment is broadcast: every element is resolved against
// the rest of the path and the record matches if any element does. Missing
// fields resolve to null.
func resolve(record schema.Value, path []string, test Test) (bool, error) {
	if record.IsNull() {
		return test(record)
	}
	field := lookup(record, path[0])
	rest := path[1:]
	if len(rest) == 0 {
		return test(field)
	}
	if seq, ok := field.Sequence(); ok {
		for i := 0; i < seq.Len(); i++ {
			matched, err := resolve(seq.Index(i), rest, test)
			if err != nil || matched {
				return matched, err
			}
		}
		return false, nil
	}
	return resolve(field, rest, test)
}

// lookup returns the named field of v, or null if v is not a record or has
// no such field.
func lookup(v schema.Value, name string) schema.Value {
	r, ok := v.Record()
	if !ok {
		return schema.Null
	}
	field, _ := r.FieldByName(name)
	return field
}
