// Package report describes the structure of a JSON document: its shape, size,
// the fields its elements carry and whether it looks like a URL collection.
//
// Summarize never fails. Input it cannot interpret is reported with the
// "unknown" shape.
package report

import (
	"net/url"
	"sort"
	"strings"

	"github.com/btraven00/linkmine/internal/collection"
)

// DefaultSampleSize is the number of leading elements inspected for field
// names and record shape.
const DefaultSampleSize = 100

// Options controls what Summarize inspects.
type Options struct {
	// SampleSize bounds the prefix of elements inspected; <= 0 uses
	// DefaultSampleSize.
	SampleSize int
	// Domains is the number of most frequent hosts to report; 0 disables
	// the domain count.
	Domains int
}

// Report is the structural summary of one document.
type Report struct {
	Source                 string        `json:"source,omitempty" yaml:"source,omitempty"`
	Shape                  string        `json:"shape" yaml:"shape"`
	Description            string        `json:"description" yaml:"description"`
	ElementType            string        `json:"element_type,omitempty" yaml:"element_type,omitempty"`
	Fields                 []string      `json:"fields,omitempty" yaml:"fields,omitempty"`
	Keys                   []string      `json:"keys,omitempty" yaml:"keys,omitempty"`
	NonURLEntries          []int         `json:"non_url_entries,omitempty" yaml:"non_url_entries,omitempty"`
	TopDomains             []DomainCount `json:"top_domains,omitempty" yaml:"top_domains,omitempty"`
	Count                  int           `json:"count" yaml:"count"`
	SampleSize             int           `json:"sample_size" yaml:"sample_size"`
	LooksLikeURLCollection bool          `json:"looks_like_url_collection" yaml:"looks_like_url_collection"`
}

// DomainCount is the number of records pointing at one host.
type DomainCount struct {
	Domain string `json:"domain" yaml:"domain"`
	Count  int    `json:"count" yaml:"count"`
}

// Summarize builds the report for v.
func Summarize(v collection.Value, opts Options) Report {
	sampleSize := opts.SampleSize
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}

	r := Report{
		Shape:      v.Kind().String(),
		Count:      v.Len(),
		SampleSize: sampleSize,
	}

	switch v.Kind() {
	case collection.Sequence:
		r.Description = "list items"
		summarizeSequence(&r, v.Items(), sampleSize)

	case collection.Mapping:
		r.Description = "dictionary keys"
		r.Keys = append([]string{}, v.Keys()...)
		kinds := make([]collection.Kind, 0, min(len(r.Keys), sampleSize))
		for _, key := range r.Keys[:min(len(r.Keys), sampleSize)] {
			field, _ := v.Get(key)
			kinds = append(kinds, field.Kind())
		}
		r.ElementType = elementType(kinds)

	case collection.Scalar:
		r.Description = "scalar value"

	default:
		r.Description = "unrecognised document"
	}

	if opts.Domains > 0 {
		r.TopDomains = TopDomains(v, opts.Domains)
	}

	return r
}

func summarizeSequence(r *Report, items []collection.Value, sampleSize int) {
	sample := items[:min(len(items), sampleSize)]

	seen := make(map[string]bool)
	kinds := make([]collection.Kind, 0, len(sample))

	for i, item := range sample {
		kinds = append(kinds, item.Kind())

		if !item.HasURL() {
			r.NonURLEntries = append(r.NonURLEntries, i)
		}

		for _, key := range item.Keys() {
			if !seen[key] {
				seen[key] = true
				r.Fields = append(r.Fields, key)
			}
		}
	}

	r.ElementType = elementType(kinds)
	r.LooksLikeURLCollection = len(sample) > 0 && len(r.NonURLEntries) == 0
}

// elementType names the common kind of kinds, "mixed" when they differ and
// "" when there are none.
func elementType(kinds []collection.Kind) string {
	if len(kinds) == 0 {
		return ""
	}

	for _, k := range kinds[1:] {
		if k != kinds[0] {
			return "mixed"
		}
	}

	return kinds[0].String()
}

// Total sums the counts of reports.
func Total(reports []Report) int {
	total := 0
	for _, r := range reports {
		total += r.Count
	}

	return total
}

// TopDomains counts the hosts of every record found anywhere in v and returns
// the n most frequent, ties broken alphabetically.
func TopDomains(v collection.Value, n int) []DomainCount {
	counts := make(map[string]int)
	walkRecords(v, func(r collection.Record) {
		if host := hostOf(r.URL); host != "" {
			counts[host]++
		}
	})

	domains := make([]DomainCount, 0, len(counts))
	for domain, count := range counts {
		domains = append(domains, DomainCount{Domain: domain, Count: count})
	}

	sort.Slice(domains, func(i, j int) bool {
		if domains[i].Count != domains[j].Count {
			return domains[i].Count > domains[j].Count
		}
		return domains[i].Domain < domains[j].Domain
	})

	if len(domains) > n {
		domains = domains[:n]
	}

	return domains
}

func walkRecords(v collection.Value, visit func(collection.Record)) {
	switch v.Kind() {
	case collection.Sequence:
		for _, item := range v.Items() {
			walkRecords(item, visit)
		}
	case collection.Mapping:
		if r, ok := v.Record(); ok {
			visit(r)
			return
		}
		for _, key := range v.Keys() {
			field, _ := v.Get(key)
			walkRecords(field, visit)
		}
	}
}

// hostOf returns the lower-cased host of a matched URL. Matches without a
// scheme (www. and bare domains) are parsed as http URLs.
func hostOf(raw string) string {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	return strings.ToLower(u.Hostname())
}
