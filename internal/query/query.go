// Package query filters record collections.
package query

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"github.com/btraven00/linkmine/internal/collection"
)

// ErrNotSequence is returned when the searched document is not a JSON array.
var ErrNotSequence = errors.New("input must be a list of objects")

// Options controls a search.
type Options struct {
	Term          string
	CaseSensitive bool
	// SearchFiles also matches Term against the file field.
	SearchFiles bool
	// Regex treats Term as a regular expression.
	Regex bool
}

// Search returns the elements of v whose url (or, with SearchFiles, file)
// contains the term, in input order. Elements that are not mappings are
// skipped; a mapping without a url is searched as if its url were empty.
// Matching elements are returned unchanged.
func Search(v collection.Value, opts Options) ([]collection.Value, error) {
	if v.Kind() != collection.Sequence {
		return nil, fmt.Errorf("%w, got %s", ErrNotSequence, v.Kind())
	}

	match, err := newMatcher(opts)
	if err != nil {
		return nil, err
	}

	matches := []collection.Value{}
	for _, item := range v.Items() {
		if item.Kind() != collection.Mapping {
			continue
		}

		if match(item.StringField(collection.FieldURL)) ||
			(opts.SearchFiles && match(item.StringField(collection.FieldFile))) {
			matches = append(matches, item)
		}
	}

	return matches, nil
}

func newMatcher(opts Options) (func(string) bool, error) {
	if opts.Regex {
		expr := opts.Term
		if !opts.CaseSensitive {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid search pattern %q: %w", opts.Term, err)
		}
		return re.MatchString, nil
	}

	if opts.CaseSensitive {
		return func(s string) bool { return strings.Contains(s, opts.Term) }, nil
	}

	fold := cases.Fold()
	term := fold.String(opts.Term)

	return func(s string) bool { return strings.Contains(fold.String(s), term) }, nil
}

// Dedupe drops every record whose (url, file) pair was already seen and
// returns the remaining elements with the number removed. Elements that are
// not records are kept.
func Dedupe(v collection.Value) ([]collection.Value, int, error) {
	if v.Kind() != collection.Sequence {
		return nil, 0, fmt.Errorf("%w, got %s", ErrNotSequence, v.Kind())
	}

	seen := make(map[collection.Record]struct{}, v.Len())
	kept := make([]collection.Value, 0, v.Len())
	removed := 0

	for _, item := range v.Items() {
		record, ok := item.Record()
		if !ok {
			kept = append(kept, item)
			continue
		}
		if _, dup := seen[record]; dup {
			removed++
			continue
		}
		seen[record] = struct{}{}
		kept = append(kept, item)
	}

	return kept, removed, nil
}
