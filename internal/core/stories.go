package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dhabedank/brdgen/internal/ruleset"
)

var systemPrefix = regexp.MustCompile(`(?i)^the system (shall|must|should|will)( be able to)?\s+`)

type storyGroup struct {
	label string
	reqs  []string
}

// GenerateStories decomposes an EPIC into user stories.
//
// Story ids are US-EE-SS where EE is the EPIC's number. Every story carries
// the EPIC's id.
func (e *Engine) GenerateStories(epic Epic, domain Domain) []UserStory {
	epicNum, ok := epicNumber(epic.ID)
	if !ok {
		epicNum = 1
	}

	groups := e.storyGroups(epic, domain)
	stories := make([]UserStory, 0, len(groups))
	for i, g := range groups {
		stories = append(stories, e.buildStory(epic, domain, g, epicNum, i+1))
	}
	return stories
}

// StoriesForEpics generates stories for every EPIC in order.
func (e *Engine) StoriesForEpics(epics []Epic, domain Domain) []UserStory {
	var out []UserStory
	for _, ep := range epics {
		out = append(out, e.GenerateStories(ep, domain)...)
	}
	return out
}

func (e *Engine) storyGroups(epic Epic, domain Domain) []storyGroup {
	reqs := epic.FunctionalRequirements
	title := lower(epic.Title)

	for _, gr := range e.rules.Stories.Groupers {
		if gr.Domain != string(domain) || !e.match.ContainsAny(title, gr.EpicTitleAny) {
			continue
		}
		if groups := e.applyGrouper(gr, reqs); len(groups) > 0 {
			return groups
		}
	}

	gg := e.rules.Stories.GenericGroups
	switch {
	case len(reqs) == 0:
		return []storyGroup{{label: gg.Single, reqs: []string{e.rules.Titles.EmptyText}}}
	case len(reqs) == 1:
		return []storyGroup{{label: gg.Single, reqs: reqs}}
	}

	mid := len(reqs)/2 + 1
	groups := []storyGroup{{label: gg.Primary, reqs: reqs[:mid]}}
	if mid < len(reqs) {
		groups = append(groups, storyGroup{label: gg.Secondary, reqs: reqs[mid:]})
	}
	return groups
}

// applyGrouper buckets requirements by the grouper's rules. Unmatched
// requirements join the first non-empty group.
func (e *Engine) applyGrouper(gr ruleset.Grouper, reqs []string) []storyGroup {
	buckets := make([][]string, len(gr.Groups))
	var rest []string
	for _, r := range reqs {
		t := lower(r)
		placed := false
		for i, g := range gr.Groups {
			if e.match.ContainsAny(t, g.Any) {
				buckets[i] = append(buckets[i], r)
				placed = true
				break
			}
		}
		if !placed {
			rest = append(rest, r)
		}
	}

	var groups []storyGroup
	for i, b := range buckets {
		if len(b) > 0 {
			groups = append(groups, storyGroup{label: gr.Groups[i].Label, reqs: b})
		}
	}
	if len(groups) > 0 {
		groups[0].reqs = append(groups[0].reqs, rest...)
	}
	return groups
}

func (e *Engine) buildStory(epic Epic, domain Domain, g storyGroup, epicNum, storyNum int) UserStory {
	persona := e.ResolvePersona(g.reqs, domain)
	priority := epic.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	return UserStory{
		ID:                 fmt.Sprintf("US-%02d-%02d", epicNum, storyNum),
		EpicID:             epic.ID,
		Title:              epic.Title + " - " + g.label,
		Action:             g.label,
		Persona:            persona,
		Want:               e.want(g.reqs[0], domain),
		SoThat:             e.soThat(g.reqs[0], domain),
		Requirements:       g.reqs,
		AcceptanceCriteria: e.acceptance(g.reqs, domain),
		ValidationCriteria: e.ResolveValidation(domain, epic.Title, g.label, persona),
		Priority:           priority,
		MoSCoW:             priority.MoSCoW(),
		StoryPoints:        e.storyPoints(g.reqs),
	}
}

func (e *Engine) want(first string, domain Domain) string {
	t := e.rules.Stories.Want
	text := lower(first)
	if w, ok := ruleset.First(text, t.Domains[string(domain)], e.match); ok {
		return w
	}
	if w, ok := ruleset.First(text, t.Common, e.match); ok {
		return w
	}
	return t.Default + " " + firstClause(first)
}

// firstClause echoes the opening clause of a requirement as a want phrase.
func firstClause(req string) string {
	s := systemPrefix.ReplaceAllString(strings.TrimSpace(req), "")
	if i := strings.IndexAny(s, ".;"); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(strings.TrimSpace(s))
}

func (e *Engine) soThat(first string, domain Domain) string {
	t := e.rules.Stories.SoThat
	text := lower(first)
	if s, ok := ruleset.First(text, t.Domains[string(domain)], e.match); ok {
		return s
	}
	if s, ok := ruleset.First(text, t.Common, e.match); ok {
		return s
	}
	return t.Default
}

// acceptance collects generic then domain criteria for every requirement,
// falls back to the defaults when nothing fired, and always appends the
// performance criterion before capping.
func (e *Engine) acceptance(reqs []string, domain Domain) []string {
	t := e.rules.Stories.Acceptance
	var out []string
	for _, r := range reqs {
		text := lower(r)
		for _, c := range ruleset.All(text, t.Generic, e.match) {
			out = append(out, c...)
		}
		for _, c := range ruleset.All(text, t.Domains[string(domain)], e.match) {
			out = append(out, c...)
		}
	}
	if len(out) == 0 {
		out = append(out, t.Defaults...)
	}
	out = append(out, t.Always)
	return ruleset.Cap(ruleset.Dedupe(out), t.Max)
}

func (e *Engine) storyPoints(reqs []string) int {
	text := lower(strings.Join(reqs, " "))
	if p, ok := ruleset.First(text, e.rules.Stories.Points.Tiers, e.match); ok {
		return p
	}
	return e.rules.Stories.Points.Default
}
