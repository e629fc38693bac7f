// Package collection defines URL records, the generic JSON value they are
// persisted in, and the on-disk store for both.
package collection

// Field names of a persisted URL record.
const (
	FieldURL  = "url"
	FieldFile = "file"
)

// Record is one matched reference and the corpus file it came from.
type Record struct {
	URL  string `json:"url"`
	File string `json:"file"`
}

// Collection is an ordered sequence of records in discovery order. Duplicate
// records are legitimate: one per textual occurrence.
type Collection []Record

// Value converts the collection into a sequence of mappings.
func (c Collection) Value() Value {
	items := make([]Value, 0, len(c))
	for _, r := range c {
		items = append(items, NewMapping(
			Field{Key: FieldURL, Value: NewScalar(r.URL)},
			Field{Key: FieldFile, Value: NewScalar(r.File)},
		))
	}

	return NewSequence(items...)
}

// URLs returns the url of every record, in order.
func (c Collection) URLs() []string {
	urls := make([]string, 0, len(c))
	for _, r := range c {
		urls = append(urls, r.URL)
	}

	return urls
}

// RecordsOf extracts the records held by a sequence. Elements that are not
// mappings with a non-empty string url are skipped and counted.
func RecordsOf(v Value) (Collection, int) {
	if v.Kind() != Sequence {
		return nil, v.Len()
	}

	records := make(Collection, 0, v.Len())
	skipped := 0
	for _, item := range v.Items() {
		r, ok := item.Record()
		if !ok {
			skipped++
			continue
		}
		records = append(records, r)
	}

	return records, skipped
}
