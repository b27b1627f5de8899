package core

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	epicMarker       = regexp.MustCompile(`(?i)^EPIC-(\d+)\b\s*[:.\-]?\s*(.*)$`)
	requirementsHead = regexp.MustCompile(`(?i)^(functional\s+)?requirements\s*:?\s*$`)
	listItemOpen     = regexp.MustCompile(`(?i)<li[^>]*>`)
	lineBreakTag     = regexp.MustCompile(`(?i)</li>|<br\s*/?>|</p>|</h[1-6]>|</div>|</tr>|</ul>|</ol>`)
	markupTag        = regexp.MustCompile(`(?i)</?(li|ul|ol|p|br|h[1-6]|div|tr|td|th|table|span|strong|em|b|i|html|body|head|title|section)\b[^<>]*>`)
	anyTag           = regexp.MustCompile(`<[a-zA-Z/!][^<>]*>`)
	numbering        = regexp.MustCompile(`^(\d+[.)]|[a-z][.)])\s+`)
	modalVerb        = regexp.MustCompile(`(?i)\b(shall|must|should|will|can|may)\b`)
	leadingTo        = regexp.MustCompile(`(?i)^to\s+`)
	abilityTo        = regexp.MustCompile(`(?i)\bability to\b`)
)

// structuredMinLen is the length a structured requirement line must exceed.
const structuredMinLen = 10

// Extract turns a raw requirements block into requirement statements.
//
// Text containing EPIC-NN markers is read in structured mode: only bullet
// lines under a "Requirements:" heading are kept, tagged with the current
// EPIC. Anything else is read line by line in freeform mode.
func (e *Engine) Extract(raw string) []Requirement {
	lines := splitLines(raw)
	if isStructured(lines) {
		return e.extractStructured(lines)
	}
	return e.extractFreeform(lines)
}

// IsStructured reports whether raw carries EPIC markers.
func IsStructured(raw string) bool {
	return isStructured(splitLines(raw))
}

func isStructured(lines []string) bool {
	for _, l := range lines {
		if epicMarker.MatchString(strings.TrimLeft(l, "# ")) {
			return true
		}
	}
	return false
}

func (e *Engine) extractFreeform(lines []string) []Requirement {
	var reqs []Requirement
	for _, l := range lines {
		text, _ := stripBullet(l)
		if text == "" {
			continue
		}
		reqs = append(reqs, Requirement{Text: text, Priority: e.priorityOf(text)})
	}
	return reqs
}

func (e *Engine) extractStructured(lines []string) []Requirement {
	var (
		reqs      []Requirement
		epicID    string
		epicTitle string
		inBlock   bool
	)

	for _, l := range lines {
		heading := strings.TrimLeft(l, "# ")
		if m := epicMarker.FindStringSubmatch(heading); m != nil {
			n, _ := strconv.Atoi(m[1])
			epicID = FormatEpicID(n)
			epicTitle = strings.TrimSpace(m[2])
			inBlock = false
			continue
		}
		if requirementsHead.MatchString(strings.Trim(heading, "*_ ")) {
			inBlock = epicID != ""
			continue
		}

		text, bullet := stripBullet(l)
		if !bullet {
			inBlock = false
			continue
		}
		if !inBlock || utf8.RuneCountInString(text) <= structuredMinLen {
			continue
		}
		reqs = append(reqs, Requirement{
			Text:      text,
			EpicID:    epicID,
			EpicTitle: epicTitle,
			Priority:  e.priorityOf(text),
		})
	}
	return reqs
}

func (e *Engine) priorityOf(text string) Priority {
	t := lower(text)
	switch {
	case e.match.ContainsAny(t, []string{"must", "critical"}):
		return PriorityHigh
	case e.match.ContainsAny(t, []string{"should", "important"}):
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// splitLines flattens HTML to text lines and drops blanks. A line that
// opens with a bullet is split at every further bullet.
func splitLines(raw string) []string {
	if markupTag.MatchString(raw) {
		raw = listItemOpen.ReplaceAllString(raw, "\n• ")
		raw = lineBreakTag.ReplaceAllString(raw, "\n")
		raw = anyTag.ReplaceAllString(raw, "")
		raw = html.UnescapeString(raw)
	}
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var out []string
	for _, l := range strings.Split(raw, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if !strings.HasPrefix(l, "•") {
			out = append(out, l)
			continue
		}
		for _, p := range strings.Split(l, "•") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, "• "+p)
			}
		}
	}
	return out
}

// stripBullet removes a leading bullet or list number and reports whether
// one was present.
func stripBullet(line string) (string, bool) {
	line = strings.TrimSpace(line)
	for _, b := range []string{"•", "◦", "▪"} {
		if strings.HasPrefix(line, b) {
			return strings.TrimSpace(strings.TrimPrefix(line, b)), true
		}
	}
	// Markdown bullets need a following space so **bold** and -5% stay text.
	for _, b := range []string{"- ", "* ", "+ "} {
		if strings.HasPrefix(line, b) {
			return strings.TrimSpace(line[len(b):]), true
		}
	}
	if line == "-" || line == "*" {
		return "", true
	}
	if loc := numbering.FindStringIndex(lower(line)); loc != nil {
		return strings.TrimSpace(line[loc[1]:]), true
	}
	return line, false
}

// FormatEpicID renders the EPIC-NN identifier for n.
func FormatEpicID(n int) string {
	return fmt.Sprintf("EPIC-%02d", n)
}

// epicNumber parses the number out of an EPIC-NN id.
func epicNumber(id string) (int, bool) {
	m := epicMarker.FindStringSubmatch(id)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	return n, err == nil
}

// Statement renders the requirement as a "The system shall ..." sentence
// unless it already carries a modal verb.
func (r Requirement) Statement() string {
	return normalizeStatement(r.Text)
}

func normalizeStatement(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if modalVerb.MatchString(s) {
		return terminate(s)
	}

	s = leadingTo.ReplaceAllString(s, "")
	s = abilityTo.ReplaceAllString(s, "be able to")
	s = lowerFirst(s)
	return "The system shall " + strings.TrimRight(s, ". ") + "."
}

func terminate(s string) string {
	switch s[len(s)-1] {
	case '.', '!', '?':
		return s
	}
	return s + "."
}

// lowerFirst lowercases the first letter unless the word looks like an acronym.
func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if !unicode.IsUpper(r) {
		return s
	}
	if next, _ := utf8.DecodeRuneInString(s[size:]); unicode.IsUpper(next) {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
