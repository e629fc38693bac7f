package matcher

import (
	"regexp"
)

// urlChars is the set of characters a match may extend over.
const urlChars = `[\p{L}\p{N}./:?#\[\]@!$&'()*+,;=%_~-]`

// domainLabel is a single hostname label: letters and digits in any script,
// with inner hyphens.
const domainLabel = `[\p{L}\p{N}](?:[\p{L}\p{N}-]*[\p{L}\p{N}])?`

// pattern pairs a compiled expression with the name used in diagnostics.
// The first capture group of every expression marks the part of the match
// that trailing-punctuation stripping must never cut into.
type pattern struct {
	Regex       *regexp.Regexp
	Name        string
	Description string
	Examples    []string
	// PrefixIsMatch allows a match consisting of the protected group alone.
	PrefixIsMatch bool
	// WholeWord rejects a protected group that starts or ends inside a word.
	WholeWord bool
}

// strictPatterns returns the patterns applied in strict mode.
func strictPatterns() []pattern {
	return []pattern{
		{
			Name:        "Scheme URLs",
			Regex:       regexp.MustCompile(`(?i)(https?://|www\.)` + urlChars + `+`),
			Description: "URLs with an explicit http(s) scheme or a leading www.",
			Examples:    []string{"https://example.com/page", "www.example.org"},
		},
	}
}

// lenientPatterns returns the patterns applied in lenient mode, in priority
// order. Later patterns only see the text not claimed by earlier ones.
func lenientPatterns() []pattern {
	return append(strictPatterns(),
		pattern{
			Name:        "FTP URLs",
			Regex:       regexp.MustCompile(`(?i)(ftp://)` + urlChars + `+`),
			Description: "FTP URLs, common for large dataset mirrors",
			Examples:    []string{"ftp://ftp.ncbi.nlm.nih.gov/geo/series/"},
		},
		pattern{
			Name: "Bare domains",
			Regex: regexp.MustCompile(`(?i)(` + domainLabel + `(?:\.` + domainLabel + `)*\.\p{L}{2,6})` +
				`(?:[/?#]` + urlChars + `*)?`),
			Description:   "Scheme-less domains with an optional path",
			Examples:      []string{"example.com", "doi.org/10.1234/abc"},
			PrefixIsMatch: true,
			WholeWord:     true,
		},
	)
}

// PatternInfo describes one matching pattern.
type PatternInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Expression  string   `json:"expression"`
	Examples    []string `json:"examples"`
}

// Patterns lists the patterns applied in mode, in priority order.
func (m *Matcher) Patterns(mode Mode) []PatternInfo {
	patterns := m.strict
	if mode == Lenient {
		patterns = m.lenient
	}

	infos := make([]PatternInfo, 0, len(patterns))
	for _, p := range patterns {
		infos = append(infos, PatternInfo{
			Name:        p.Name,
			Description: p.Description,
			Expression:  p.Regex.String(),
			Examples:    p.Examples,
		})
	}

	return infos
}
