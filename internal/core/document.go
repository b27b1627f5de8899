package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dhabedank/brdgen/internal/ruleset"
)

// brdValidationAction is the action label BRD-level validations resolve with.
const brdValidationAction = "Create and Manage"

const maxBRDValidations = 12

var itemSplit = regexp.MustCompile(`\r?\n|;|•|\t`)

// Item is an identified line in a document section.
type Item struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// BRD is the business requirements document model handed to the renderer.
type BRD struct {
	Project          string         `json:"project"`
	Version          int            `json:"version"`
	Domain           Domain         `json:"domain"`
	DomainLabel      string         `json:"domain_label"`
	ExecutiveSummary string         `json:"executive_summary"`
	Scope            string         `json:"scope"`
	Objectives       []Item         `json:"objectives"` // OBJ-N then KPI-N
	Stakeholders     []string       `json:"stakeholders"`
	Budget           string         `json:"budget"`
	Epics            []Epic         `json:"epics"`
	Assumptions      []string       `json:"assumptions"`
	Constraints      []Item         `json:"constraints"` // RISK-N
	Validations      []string       `json:"validations"`
	UserValidations  bool           `json:"user_validations"` // Validations came from the input
	Glossary         []ruleset.Term `json:"glossary"`
}

// FRD is the functional requirements document model handed to the renderer.
type FRD struct {
	Project      string         `json:"project"`
	Version      int            `json:"version"`
	Domain       Domain         `json:"domain"`
	DomainLabel  string         `json:"domain_label"`
	Summary      string         `json:"summary"`
	Epics        []Epic         `json:"epics"`
	Stories      []UserStory    `json:"stories"`
	Requirements []FRItem       `json:"requirements"` // FR-NNN
	Validations  []Item         `json:"validations"`  // V-NNN
	NFRs         []string       `json:"nfrs"`
	Entities     []string       `json:"entities"`
	Interfaces   []string       `json:"interfaces"`
	Glossary     []ruleset.Term `json:"glossary"`
}

// FRItem is a numbered functional requirement traced to its EPIC.
type FRItem struct {
	ID       string   `json:"id"`
	EpicID   string   `json:"epic_id"`
	Text     string   `json:"text"`
	Priority Priority `json:"priority"`
}

// Analysis is the engine's full result for one input, before rendering.
type Analysis struct {
	Input  Input
	Domain Domain
	Epics  []Epic
}

// Analyze classifies the input and synthesizes its EPICs.
func (e *Engine) Analyze(in Input) Analysis {
	in = in.Normalized()
	reqs := e.Extract(in.RequirementsText())
	domain := e.domainOf(in, reqs)
	return Analysis{Input: in, Domain: domain, Epics: e.Synthesize(reqs, domain)}
}

// BuildBRD assembles the BRD model for an analysis.
func (e *Engine) BuildBRD(a Analysis) BRD {
	in := a.Input.Normalized()
	profile := e.Profile(a.Domain)

	scope := strings.TrimSpace(in.Scope)
	if scope == "" {
		scope = profile.Scope
	}

	var objectives []Item
	for i, o := range SplitItems(in.Objectives) {
		objectives = append(objectives, Item{ID: fmt.Sprintf("OBJ-%d", i+1), Text: o})
	}
	for i, k := range profile.KPIs {
		objectives = append(objectives, Item{ID: fmt.Sprintf("KPI-%d", i+1), Text: k})
	}

	var constraints []Item
	for i, c := range SplitItems(in.Constraints) {
		constraints = append(constraints, Item{ID: fmt.Sprintf("RISK-%d", i+1), Text: c})
	}

	brd := BRD{
		Project:          in.Project,
		Version:          in.Version,
		Domain:           a.Domain,
		DomainLabel:      profile.Label,
		ExecutiveSummary: e.executiveSummary(in, a),
		Scope:            scope,
		Objectives:       objectives,
		Stakeholders:     profile.Stakeholders,
		Budget:           strings.TrimSpace(in.Budget),
		Epics:            a.Epics,
		Assumptions:      SplitItems(in.Assumptions),
		Constraints:      constraints,
		Glossary:         profile.Glossary,
	}

	if user := SplitItems(in.Validations); len(user) > 0 {
		brd.Validations = user
		brd.UserValidations = true
		return brd
	}

	var vals []string
	for _, ep := range a.Epics {
		persona := e.ResolvePersona(ep.FunctionalRequirements, a.Domain)
		vals = append(vals, e.ResolveValidation(a.Domain, ep.Title, brdValidationAction, persona)...)
	}
	brd.Validations = ruleset.Cap(ruleset.Dedupe(vals), maxBRDValidations)
	return brd
}

// BuildFRD assembles the FRD model: stories for every EPIC plus traced
// functional requirements and validations.
func (e *Engine) BuildFRD(a Analysis) FRD {
	in := a.Input.Normalized()
	profile := e.Profile(a.Domain)
	stories := e.StoriesForEpics(a.Epics, a.Domain)

	var frs []FRItem
	for _, ep := range a.Epics {
		for _, r := range ep.FunctionalRequirements {
			frs = append(frs, FRItem{
				ID:       fmt.Sprintf("FR-%03d", len(frs)+1),
				EpicID:   ep.ID,
				Text:     r,
				Priority: ep.Priority,
			})
		}
	}

	var all []string
	for _, s := range stories {
		all = append(all, s.ValidationCriteria...)
	}
	var vals []Item
	for i, v := range ruleset.Dedupe(all) {
		vals = append(vals, Item{ID: fmt.Sprintf("V-%03d", i+1), Text: v})
	}

	return FRD{
		Project:      in.Project,
		Version:      in.Version,
		Domain:       a.Domain,
		DomainLabel:  profile.Label,
		Summary:      fmt.Sprintf("Functional specification for %s (%s): %d EPIC(s) decomposed into %d user stor%s and %d functional requirement(s).", in.Project, profile.Label, len(a.Epics), len(stories), plural(len(stories), "y", "ies"), len(frs)),
		Epics:        a.Epics,
		Stories:      stories,
		Requirements: frs,
		Validations:  vals,
		NFRs:         profile.NFRs,
		Entities:     profile.Entities,
		Interfaces:   profile.Interfaces,
		Glossary:     profile.Glossary,
	}
}

func (e *Engine) executiveSummary(in Input, a Analysis) string {
	lead := firstLine(in.Scope)
	if lead == "" {
		lead = firstLine(in.BriefRequirements)
	}
	if lead == "" {
		lead = e.Profile(a.Domain).Scope
	}
	if r := []rune(lead); len(r) > 220 {
		lead = string(r[:217]) + "..."
	}
	if lead != "" {
		lead = terminate(lead) + " "
	}
	titles := make([]string, 0, len(a.Epics))
	for _, ep := range a.Epics {
		titles = append(titles, ep.Title)
	}
	return fmt.Sprintf("%s is a %s initiative. %sThis document organises the business requirements into %d EPIC(s): %s.",
		in.Project, e.Profile(a.Domain).Label, lead, len(a.Epics), strings.Join(titles, ", "))
}

// SplitItems breaks a free-text block into list items on newlines,
// semicolons, bullets and tabs, dropping leading numbering. A single item
// holding commas is split on commas.
func SplitItems(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []string
	for _, part := range itemSplit.Split(text, -1) {
		s, _ := stripBullet(part)
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 1 && strings.Contains(out[0], ",") {
		var parts []string
		for _, p := range strings.Split(out[0], ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		return parts
	}
	return out
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
