package schema

import (
	"encoding/json"
	"fmt"
	"io"
)

// DecodeDocuments reads a JSON array of objects, or a stream of
// whitespace-separated objects, into Documents. Numbers are kept as
// json.Number so integers beyond float64 precision compare exactly.
func DecodeDocuments(r io.Reader) ([]Document, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var docs []Document
	for {
		var v any
		if err := dec.Decode(&v); err == io.EOF {
			return docs, nil
		} else if err != nil {
			return nil, fmt.Errorf("failed to decode documents: %w", err)
		}

		switch x := v.(type) {
		case map[string]any:
			docs = append(docs, Document(x))
		case []any:
			for i, el := range x {
				m, ok := el.(map[string]any)
				if !ok {
					return nil, fmt.Errorf("failed to decode documents: element %d is %T, not an object", i, el)
				}
				docs = append(docs, Document(m))
			}
		default:
			return nil, fmt.Errorf("failed to decode documents: expected an object or array, got %T", v)
		}
	}
}
