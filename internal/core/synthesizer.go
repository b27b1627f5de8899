package core

import (
	"strconv"
	"strings"

	"github.com/dhabedank/brdgen/internal/ruleset"
)

const maxEpicCriteria = 4

// Synthesize groups requirements into EPICs.
//
// Requirements tagged with an EPIC id keep that grouping. Untagged ones are
// grouped sequentially by count and split words. The result is never empty
// and never longer than the table's max_epics; overflow merges into the last
// EPIC.
func (e *Engine) Synthesize(reqs []Requirement, domain Domain) []Epic {
	if len(reqs) == 0 {
		return []Epic{e.emptyEpic(domain)}
	}

	groups := e.group(reqs)
	if limit := e.rules.Titles.MaxEpics; len(groups) > limit {
		last := groups[limit-1]
		for _, g := range groups[limit:] {
			last.reqs = append(last.reqs, g.reqs...)
		}
		groups = append(groups[:limit-1], last)
	}

	epics := make([]Epic, 0, len(groups))
	for _, g := range groups {
		epics = append(epics, e.buildEpic(g.id, g.title, g.reqs, domain))
	}
	return epics
}

type reqGroup struct {
	id    string
	title string
	reqs  []Requirement
}

func (e *Engine) group(reqs []Requirement) []reqGroup {
	var (
		groups []reqGroup
		index  = map[string]int{}
		cur    []Requirement
	)
	flush := func() {
		if len(cur) > 0 {
			groups = append(groups, reqGroup{reqs: cur})
			cur = nil
		}
	}

	size := e.rules.Titles.GroupSize
	for _, r := range reqs {
		if r.EpicID != "" {
			flush()
			if i, ok := index[r.EpicID]; ok {
				groups[i].reqs = append(groups[i].reqs, r)
				continue
			}
			index[r.EpicID] = len(groups)
			groups = append(groups, reqGroup{id: r.EpicID, title: r.EpicTitle, reqs: []Requirement{r}})
			continue
		}

		if len(cur) >= size || (len(cur) > 0 && e.match.ContainsAny(lower(r.Text), e.rules.Titles.SplitOn)) {
			flush()
		}
		cur = append(cur, r)
	}
	flush()

	// Tagged and untagged groups can collide on ids; renumber the untagged.
	used := map[string]bool{}
	for _, g := range groups {
		if g.id != "" {
			used[g.id] = true
		}
	}
	next := 1
	for i := range groups {
		if groups[i].id != "" {
			continue
		}
		for used[FormatEpicID(next)] {
			next++
		}
		groups[i].id = FormatEpicID(next)
		used[groups[i].id] = true
	}
	return groups
}

func (e *Engine) emptyEpic(domain Domain) Epic {
	t := e.rules.Titles
	reqs := []Requirement{{Text: t.EmptyText, Priority: PriorityMedium}}
	return e.buildEpic(FormatEpicID(1), t.EmptyEpic, reqs, domain)
}

func (e *Engine) buildEpic(id, sourceTitle string, reqs []Requirement, domain Domain) Epic {
	statements := make([]string, 0, len(reqs))
	texts := make([]string, 0, len(reqs))
	priority := PriorityLow
	for _, r := range reqs {
		statements = append(statements, r.Statement())
		texts = append(texts, r.Text)
		if r.Priority.Rank() > priority.Rank() {
			priority = r.Priority
		}
	}

	title := strings.TrimSpace(sourceTitle)
	if title == "" || strings.EqualFold(title, e.rules.Titles.Default) {
		title = e.Title(texts, domain)
	}

	vars := strings.NewReplacer(
		"{id}", id,
		"{title}", title,
		"{domain}", e.Profile(domain).Label,
		"{count}", strconv.Itoa(len(statements)),
		"{first}", strings.TrimSuffix(statements[0], "."),
		"{requirements}", strings.TrimSuffix(strings.Join(statements, " "), "."),
	)

	criteria := make([]string, 0, len(e.rules.Titles.EpicCriteria))
	for _, c := range e.rules.Titles.EpicCriteria {
		criteria = append(criteria, vars.Replace(c))
	}

	return Epic{
		ID:                     id,
		Title:                  title,
		Description:            vars.Replace(e.rules.Titles.Description),
		BusinessValue:          vars.Replace(e.rules.Titles.Value),
		AcceptanceCriteria:     ruleset.Cap(ruleset.Dedupe(criteria), maxEpicCriteria),
		FunctionalRequirements: statements,
		Priority:               priority,
	}
}

// Title resolves an EPIC title for requirement texts: domain rules first,
// then generic rules, then the default title.
func (e *Engine) Title(texts []string, domain Domain) string {
	text := lower(strings.Join(texts, " "))
	if t, ok := ruleset.First(text, e.rules.Titles.Domains[string(domain)], e.match); ok {
		return t
	}
	if t, ok := ruleset.First(text, e.rules.Titles.Generic, e.match); ok {
		return t
	}
	return e.rules.Titles.Default
}
