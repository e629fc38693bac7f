// Package matcher finds URL references in unstructured text.
//
// Two policies are supported. Strict mode only accepts candidates that start
// with http://, https:// or www. Lenient mode additionally accepts ftp:// URLs
// and scheme-less domains such as example.com or doi.org/10.1234/x, trading
// precision for recall. Every strict match is also a lenient match.
//
// Matches are returned exactly as they appear in the text, apart from the
// boundary rules: an unbalanced closing bracket ends a match, a quote opened
// just before the match closes it, and trailing sentence punctuation is
// stripped. URLs broken across lines by the text extractor are not rejoined.
package matcher

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Mode selects the matching policy.
type Mode int

const (
	Strict Mode = iota
	Lenient
)

func (m Mode) String() string {
	switch m {
	case Strict:
		return "strict"
	case Lenient:
		return "lenient"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode converts a mode name into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	default:
		return Strict, fmt.Errorf("unknown matching mode: %q", s)
	}
}

// Matcher holds the compiled patterns for both modes. It carries no state
// between calls and is safe for concurrent use.
type Matcher struct {
	strict  []pattern
	lenient []pattern
}

// New compiles the matching patterns.
func New() *Matcher {
	return &Matcher{
		strict:  strictPatterns(),
		lenient: lenientPatterns(),
	}
}

// span is a half-open byte range of a match in the scanned text.
type span struct {
	start, end int
}

// Match returns the URLs found in text, in left-to-right order. Repeated
// occurrences are all reported.
func (m *Matcher) Match(text string, mode Mode) []string {
	patterns := m.strict
	if mode == Lenient {
		patterns = m.lenient
	}

	spans := m.scan(text, 0, len(text), patterns)
	if len(spans) == 0 {
		return nil
	}

	urls := make([]string, 0, len(spans))
	for _, s := range spans {
		urls = append(urls, text[s.start:s.end])
	}

	return urls
}

// scan applies patterns[0] to text[lo:hi] and hands the gaps between its
// matches to the remaining patterns. Results are ordered by position.
func (m *Matcher) scan(text string, lo, hi int, patterns []pattern) []span {
	if len(patterns) == 0 || lo >= hi {
		return nil
	}

	var spans []span
	for _, s := range find(text, lo, hi, patterns[0]) {
		spans = append(spans, m.scan(text, lo, s.start, patterns[1:])...)
		spans = append(spans, s)
		lo = s.end
	}

	return append(spans, m.scan(text, lo, hi, patterns[1:])...)
}

// find returns the bounded and trimmed matches of p inside text[lo:hi].
// Matching resumes where the previous candidate was cut, so a URL that
// follows a closing bracket or quote is found on its own.
func find(text string, lo, hi int, p pattern) []span {
	var spans []span

	for pos := lo; pos < hi; {
		loc := p.Regex.FindStringSubmatchIndex(text[pos:hi])
		if len(loc) < 4 {
			break
		}

		start, end, keep := pos+loc[0], pos+loc[1], pos+loc[3]

		if p.WholeWord {
			if isWordBefore(text, start) {
				pos = skipWord(text, start, hi)
				continue
			}
			if isWordAt(text, keep) {
				pos = skipWord(text, keep, hi)
				continue
			}
		}

		end = bound(text, start, end)
		end = trimTrailing(text, end, keep)

		// A scheme prefix on its own is not a URL; a bare domain is.
		if end < keep || (end == keep && !p.PrefixIsMatch) {
			_, size := utf8.DecodeRuneInString(text[start:])
			pos = max(end, start+size)
			continue
		}

		spans = append(spans, span{start: start, end: end})
		pos = end
	}

	return spans
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// isWordBefore reports whether the rune ending at i is a word character.
func isWordBefore(text string, i int) bool {
	if i <= 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return isWordRune(r)
}

// isWordAt reports whether the rune starting at i is a word character.
func isWordAt(text string, i int) bool {
	if i >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return isWordRune(r)
}

// skipWord returns the end of the run of word characters starting at i,
// never going past hi.
func skipWord(text string, i, hi int) int {
	for i < hi {
		r, size := utf8.DecodeRuneInString(text[i:hi])
		if !isWordRune(r) {
			break
		}
		i += size
	}
	return i
}

// bound shortens a raw match at the first closing bracket that was not opened
// inside it, or at a quote that was opened right before it.
func bound(text string, start, end int) int {
	quoted := start > 0 && text[start-1] == '\''
	parens, brackets := 0, 0

	for i := start; i < end; i++ {
		switch text[i] {
		case '(':
			parens++
		case ')':
			if parens == 0 {
				return i
			}
			parens--
		case '[':
			brackets++
		case ']':
			if brackets == 0 {
				return i
			}
			brackets--
		case '\'':
			if quoted {
				return i
			}
		}
	}

	return end
}

// trimTrailing strips sentence punctuation from the end of a match without
// cutting below keep, whatever character follows the match. Closing
// brackets that survive bound are balanced and belong to the URL, so only
// . , ; : are removed.
func trimTrailing(text string, end, keep int) int {
	for end > keep {
		switch text[end-1] {
		case '.', ',', ';', ':':
			end--
		default:
			return end
		}
	}

	return end
}
