// Package aggregate merges several JSON documents into one.
//
// Documents are folded left to right. Sequences are concatenated, mappings
// are merged key by key and anything else is replaced by the later value.
// Replacing a value of a different shape is reported as a Warning rather
// than an error, so heterogeneous inputs still produce a combined result.
package aggregate

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/btraven00/linkmine/internal/collection"
)

// Warning records a position where a later value replaced an earlier value
// of a different shape.
type Warning struct {
	Path string
	Prev collection.Kind
	Next collection.Kind
}

func (w Warning) String() string {
	return fmt.Sprintf("shape mismatch at %s: %s replaced by %s", w.Path, w.Prev, w.Next)
}

// Combine folds values into a single value. Combining no values yields an
// empty sequence. Inputs are never modified.
func Combine(values []collection.Value) (collection.Value, []Warning) {
	if len(values) == 0 {
		return collection.NewSequence(), nil
	}

	var warnings []Warning

	acc := values[0]
	for _, next := range values[1:] {
		acc = merge(acc, next, "$", &warnings)
	}

	return acc, warnings
}

func merge(acc, next collection.Value, path string, warnings *[]Warning) collection.Value {
	switch {
	case acc.Kind() == collection.Sequence && next.Kind() == collection.Sequence:
		items := make([]collection.Value, 0, acc.Len()+next.Len())
		items = append(items, acc.Items()...)
		items = append(items, next.Items()...)
		return collection.NewSequence(items...)

	case acc.Kind() == collection.Mapping && next.Kind() == collection.Mapping:
		fields := make([]collection.Field, 0, acc.Len()+next.Len())
		for _, key := range acc.Keys() {
			prev, _ := acc.Get(key)
			if later, ok := next.Get(key); ok {
				prev = merge(prev, later, childPath(path, key), warnings)
			}
			fields = append(fields, collection.Field{Key: key, Value: prev})
		}
		for _, key := range next.Keys() {
			if _, ok := acc.Get(key); ok {
				continue
			}
			later, _ := next.Get(key)
			fields = append(fields, collection.Field{Key: key, Value: later})
		}
		return collection.NewMapping(fields...)

	case acc.Kind() != next.Kind():
		*warnings = append(*warnings, Warning{Path: path, Prev: acc.Kind(), Next: next.Kind()})
		return next

	default:
		return next
	}
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// childPath extends a JSON path with a mapping key.
func childPath(path, key string) string {
	if identifier.MatchString(key) {
		return path + "." + key
	}

	return path + "[" + strconv.Quote(key) + "]"
}
