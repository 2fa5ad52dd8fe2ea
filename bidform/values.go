package bidform

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// OrderedValues is an insertion-ordered string-to-value mapping used for the
// raw field values extracted from a vendor document. Key order matters:
// synonym resolution returns the first qualifying candidate, so iteration
// must follow the order in which labels appeared in the source.
type OrderedValues struct {
	keys   []string
	values map[string]any
}

// NewOrderedValues builds an OrderedValues from alternating key/value pairs.
func NewOrderedValues(pairs ...any) OrderedValues {
	ov := OrderedValues{}
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			continue
		}
		ov.Set(key, pairs[i+1])
	}
	return ov
}

// Set stores value under key, appending the key on first insertion.
func (ov *OrderedValues) Set(key string, value any) {
	if ov.values == nil {
		ov.values = make(map[string]any)
	}
	if _, exists := ov.values[key]; !exists {
		ov.keys = append(ov.keys, key)
	}
	ov.values[key] = value
}

// Get returns the value stored under key.
func (ov OrderedValues) Get(key string) (any, bool) {
	v, ok := ov.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (ov OrderedValues) Keys() []string {
	return append([]string(nil), ov.keys...)
}

// Len returns the number of stored keys.
func (ov OrderedValues) Len() int {
	return len(ov.keys)
}

// IsEmpty reports whether the mapping holds no values.
func (ov OrderedValues) IsEmpty() bool {
	return len(ov.keys) == 0
}

// MarshalJSON writes the mapping as a JSON object in insertion order.
func (ov OrderedValues) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range ov.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		valJSON, err := json.Marshal(ov.values[key])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", key, err)
		}
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object preserving key order. Numbers decode as
// json.Number so that monetary values survive round-trips without float
// formatting drift.
func (ov *OrderedValues) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*ov = OrderedValues{}
		return nil
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return fmt.Errorf("ordered values: expected object, got %v", tok)
	}

	ov.keys = nil
	ov.values = make(map[string]any)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("ordered values: non-string key %v", keyTok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("ordered values: decode value for %q: %w", key, err)
		}
		ov.Set(key, value)
	}

	// Consume closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// String renders the mapping for logs.
func (ov OrderedValues) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, key := range ov.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", key, ov.values[key])
	}
	b.WriteByte('}')
	return b.String()
}
