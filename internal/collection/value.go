package collection

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Kind identifies the shape of a Value.
type Kind int

const (
	Invalid Kind = iota
	Scalar
	Sequence
	Mapping
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Sequence:
		return "sequence"
	case Mapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is a generic JSON value: a scalar, an ordered sequence, or a mapping
// with unique string keys kept in insertion order. The zero Value is Invalid.
//
// Values are treated as immutable; slices returned by accessors must not be
// modified.
type Value struct {
	scalar any // nil, bool, string or json.Number
	items  []Value
	keys   []string
	fields map[string]Value
	kind   Kind
}

// Field is a key/value pair used to build mappings.
type Field struct {
	Key   string
	Value Value
}

// NewScalar wraps a JSON scalar. Numbers should be json.Number to keep their
// exact text; other Go numbers are encoded with encoding/json.
func NewScalar(v any) Value {
	return Value{kind: Scalar, scalar: v}
}

// NewSequence returns a sequence holding items.
func NewSequence(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}

	return Value{kind: Sequence, items: items}
}

// NewMapping returns a mapping with fields in the given order. A repeated key
// replaces the earlier value but keeps its position.
func NewMapping(fields ...Field) Value {
	v := Value{kind: Mapping, fields: make(map[string]Value, len(fields))}
	for _, f := range fields {
		v.set(f.Key, f.Value)
	}

	return v
}

func (v *Value) set(key string, val Value) {
	if _, exists := v.fields[key]; !exists {
		v.keys = append(v.keys, key)
	}
	v.fields[key] = val
}

// Kind returns the shape of v.
func (v Value) Kind() Kind { return v.kind }

// Len returns the number of elements of a sequence, the number of keys of a
// mapping, 1 for a scalar and 0 for an invalid value.
func (v Value) Len() int {
	switch v.kind {
	case Sequence:
		return len(v.items)
	case Mapping:
		return len(v.keys)
	case Scalar:
		return 1
	default:
		return 0
	}
}

// Items returns the elements of a sequence.
func (v Value) Items() []Value { return v.items }

// Keys returns the keys of a mapping in insertion order.
func (v Value) Keys() []string { return v.keys }

// Get returns the value stored under key in a mapping.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Mapping {
		return Value{}, false
	}
	val, ok := v.fields[key]

	return val, ok
}

// Interface returns the Go value of a scalar.
func (v Value) Interface() any { return v.scalar }

// Str returns the string held by a string scalar.
func (v Value) Str() (string, bool) {
	if v.kind != Scalar {
		return "", false
	}
	s, ok := v.scalar.(string)

	return s, ok
}

// StringField returns the string stored under key, or "" when the key is
// missing or holds something else.
func (v Value) StringField(key string) string {
	f, ok := v.Get(key)
	if !ok {
		return ""
	}
	s, _ := f.Str()

	return s
}

// HasURL reports whether v is a mapping with a url field.
func (v Value) HasURL() bool {
	_, ok := v.Get(FieldURL)
	return ok
}

// Record converts a mapping with a non-empty string url into a Record.
func (v Value) Record() (Record, bool) {
	u := v.StringField(FieldURL)
	if u == "" {
		return Record{}, false
	}

	return Record{URL: u, File: v.StringField(FieldFile)}, true
}

// MarshalJSON encodes v compactly, keeping mapping key order and leaving HTML
// characters unescaped.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.appendJSON(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// UnmarshalJSON decodes any JSON document into v.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*v = decoded

	return nil
}

func (v Value) appendJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case Scalar:
		return appendScalar(buf, v.scalar)

	case Sequence:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.appendJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')

	case Mapping:
		buf.WriteByte('{')
		for i, key := range v.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendScalar(buf, key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := v.fields[key].appendJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')

	default:
		buf.WriteString("null")
	}

	return nil
}

func appendScalar(buf *bytes.Buffer, s any) error {
	switch s := s.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case json.Number:
		buf.WriteString(s.String())
		return nil
	default:
		enc := json.NewEncoder(buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(s); err != nil {
			return err
		}
		// Encode terminates every value with a newline.
		buf.Truncate(buf.Len() - 1)
		return nil
	}
}

// Decode reads exactly one JSON document from r. Trailing non-whitespace
// data is an error.
func Decode(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("unexpected data after top-level value")
	}

	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return NewScalar(tok), nil
	}

	switch delim {
	case '[':
		items := []Value{}
		for dec.More() {
			item, err := decodeValue(dec)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		if _, err := dec.Token(); err != nil {
			return Value{}, err
		}
		return NewSequence(items...), nil

	case '{':
		m := NewMapping()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return Value{}, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return Value{}, fmt.Errorf("unexpected object key %v", keyTok)
			}
			val, err := decodeValue(dec)
			if err != nil {
				return Value{}, err
			}
			m.set(key, val)
		}
		if _, err := dec.Token(); err != nil {
			return Value{}, err
		}
		return m, nil

	default:
		return Value{}, fmt.Errorf("unexpected delimiter %q", delim)
	}
}
