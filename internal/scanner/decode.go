package scanner

import (
	"bytes"
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var errInvalidUTF8 = errors.New("invalid UTF-8 replaced with U+FFFD")

// decodeText converts raw file content to a string. A UTF-8 or UTF-16 byte
// order mark selects the encoding; everything else is read as UTF-8 with
// invalid sequences replaced. lossy reports whether any replacement happened.
func decodeText(data []byte) (text string, lossy bool) {
	lossy = !utf8.Valid(data) && !hasUTF16BOM(data)

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return string(bytes.ToValidUTF8(data, []byte("�"))), true
	}

	return string(out), lossy
}

func hasUTF16BOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xFE, 0xFF}) || bytes.HasPrefix(data, []byte{0xFF, 0xFE})
}
