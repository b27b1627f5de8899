package core

import (
	"html"
	"regexp"
	"strings"
)

// DomainScore is one row of a classification breakdown.
type DomainScore struct {
	Domain  Domain   `json:"domain"`
	Score   int      `json:"score"`
	Matched []string `json:"matched,omitempty"`
}

// Classify returns the domain whose keywords occur most often in text.
//
// Ties go to the domain listed first in the keyword table. A winning score
// below the table threshold yields Generic.
func (e *Engine) Classify(text string) Domain {
	d, _ := e.classify(text)
	return d
}

// Scores returns the per-domain breakdown in table order alongside the winner.
func (e *Engine) Scores(text string) (Domain, []DomainScore) {
	return e.classify(text)
}

func (e *Engine) classify(text string) (Domain, []DomainScore) {
	text = lower(text)
	table := e.rules.Keywords

	scores := make([]DomainScore, 0, len(table.Domains))
	best, bestScore := Generic, 0
	for _, row := range table.Domains {
		s := DomainScore{Domain: Domain(row.Domain)}
		for _, kw := range row.Keywords {
			if e.match.Contains(text, kw) {
				s.Score++
				s.Matched = append(s.Matched, kw)
			}
		}
		scores = append(scores, s)
		// Strictly greater keeps the earliest domain on ties.
		if s.Score > bestScore {
			best, bestScore = s.Domain, s.Score
		}
	}

	if bestScore < table.Threshold {
		return Generic, scores
	}
	return best, scores
}

var declaredDomainLine = regexp.MustCompile(`(?i)\bDomain:\s*([^<|·*\n]+)`)

// DeclaredDomain reads the "Domain: <label>" line a rendered BRD carries and
// maps the label back to its domain.
func (e *Engine) DeclaredDomain(brd string) (Domain, bool) {
	m := declaredDomainLine.FindStringSubmatch(brd)
	if m == nil {
		return "", false
	}
	label := strings.TrimSpace(html.UnescapeString(m[1]))
	for name, p := range e.rules.Profiles {
		if strings.EqualFold(label, p.Label) || strings.EqualFold(label, name) {
			return Domain(name), true
		}
	}
	return "", false
}

// domainOf classifies an input. A BRD being converted keeps the domain it
// declares; otherwise only its extracted EPIC titles and requirements are
// scored, never the document's own headings and boilerplate.
func (e *Engine) domainOf(in Input, reqs []Requirement) Domain {
	if strings.TrimSpace(in.BRDText) == "" {
		return e.Classify(in.ClassificationText())
	}
	if d, ok := e.DeclaredDomain(in.BRDText); ok {
		return d
	}
	parts := []string{in.ClassificationText()}
	title := ""
	for _, r := range reqs {
		if r.EpicTitle != title {
			title = r.EpicTitle
			parts = append(parts, title)
		}
		parts = append(parts, r.Text)
	}
	return e.Classify(strings.Join(parts, " "))
}
