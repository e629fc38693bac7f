package collection

import (
	"encoding/json"
	"io"
	"strings"
)

// DefaultIndent is the number of spaces per level used when saving.
const DefaultIndent = 2

// JSONEncoder wraps json.Encoder with the formatting used for collections:
// HTML characters and non-ASCII text are written verbatim.
type JSONEncoder struct {
	encoder *json.Encoder
}

// NewJSONEncoder creates an encoder indenting by indent spaces per level.
// A non-positive indent produces compact output.
func NewJSONEncoder(w io.Writer, indent int) *JSONEncoder {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if indent > 0 {
		encoder.SetIndent("", strings.Repeat(" ", indent))
	}

	return &JSONEncoder{encoder: encoder}
}

// Encode writes v followed by a newline.
func (e *JSONEncoder) Encode(v any) error {
	return e.encoder.Encode(v)
}
