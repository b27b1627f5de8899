package ruleset

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MatchMode selects how keywords are found inside text.
type MatchMode string

const (
	// MatchSubstring is plain containment: "sim" matches inside "similar".
	MatchSubstring MatchMode = "substring"

	// MatchWord requires the keyword to sit between non-alphanumeric boundaries.
	MatchWord MatchMode = "word"
)

// Matcher tests lowercase text against lowercase keywords.
// The zero value matches by substring.
type Matcher struct {
	mode MatchMode
}

// NewMatcher returns a Matcher for mode. An empty mode means substring.
func NewMatcher(mode MatchMode) (Matcher, error) {
	switch mode {
	case "", MatchSubstring:
		return Matcher{mode: MatchSubstring}, nil
	case MatchWord:
		return Matcher{mode: MatchWord}, nil
	default:
		return Matcher{}, fmt.Errorf("unknown match mode %q (want substring or word)", mode)
	}
}

// Mode reports the active match mode.
func (m Matcher) Mode() MatchMode {
	if m.mode == "" {
		return MatchSubstring
	}
	return m.mode
}

// Contains reports whether keyword occurs in text.
func (m Matcher) Contains(text, keyword string) bool {
	if keyword == "" {
		return false
	}
	if m.Mode() == MatchSubstring {
		return strings.Contains(text, keyword)
	}

	offset := 0
	for {
		idx := strings.Index(text[offset:], keyword)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(keyword)
		if isBoundaryBefore(text, start) && isBoundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
}

// ContainsAny reports whether any keyword occurs in text.
func (m Matcher) ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if m.Contains(text, kw) {
			return true
		}
	}
	return false
}

// ContainsAll reports whether every keyword occurs in text.
func (m Matcher) ContainsAll(text string, keywords []string) bool {
	for _, kw := range keywords {
		if !m.Contains(text, kw) {
			return false
		}
	}
	return true
}

// Count returns how many entries of keywords occur in text.
func (m Matcher) Count(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if m.Contains(text, kw) {
			n++
		}
	}
	return n
}

func isBoundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func isBoundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
