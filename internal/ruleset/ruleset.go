// Package ruleset holds the static business rule tables the engine reads:
// domain keywords, EPIC titles, personas, story phrasing, acceptance and
// validation criteria, and per-domain document profiles.
//
// Tables ship as embedded YAML and can be overlaid from a directory so
// analysts can edit rules without rebuilding the binary. A loaded Ruleset is
// never mutated and is safe for concurrent use.
package ruleset

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// Rule table files. Each one can be replaced independently by a rules dir.
const (
	KeywordsFile   = "keywords.yaml"
	TitlesFile     = "titles.yaml"
	PersonasFile   = "personas.yaml"
	StoriesFile    = "stories.yaml"
	ValidationFile = "validation.yaml"
	ProfilesFile   = "profiles.yaml"
)

// Files lists every rule table file in load order.
var Files = []string{KeywordsFile, TitlesFile, PersonasFile, StoriesFile, ValidationFile, ProfilesFile}

// DomainKeywords is one row of the classifier table.
type DomainKeywords struct {
	Domain   string   `yaml:"domain" json:"domain"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// KeywordTable is the ordered domain keyword table. Row order is the
// classifier's tie-break order.
type KeywordTable struct {
	Domains   []DomainKeywords `yaml:"domains" json:"domains"`
	Threshold int              `yaml:"threshold" json:"threshold"`
}

// TitleTable maps requirement text to EPIC titles.
type TitleTable struct {
	Domains      map[string][]Rule[string] `yaml:"domains" json:"domains"`
	Generic      []Rule[string]            `yaml:"generic" json:"generic"`
	Default      string                    `yaml:"default" json:"default"`
	EmptyEpic    string                    `yaml:"empty_epic" json:"empty_epic"`
	EmptyText    string                    `yaml:"empty_requirement" json:"empty_requirement"`
	MaxEpics     int                       `yaml:"max_epics" json:"max_epics"`
	GroupSize    int                       `yaml:"group_size" json:"group_size"`
	SplitOn      []string                  `yaml:"split_on" json:"split_on"`
	EpicCriteria []string                  `yaml:"epic_criteria" json:"epic_criteria"`
	Description  string                    `yaml:"description" json:"description"`
	Value        string                    `yaml:"business_value" json:"business_value"`
}

// PersonaTable is one domain's persona rules plus its default list.
type PersonaTable struct {
	Rules    []Rule[string] `yaml:"rules" json:"rules"`
	Defaults []string       `yaml:"defaults" json:"defaults"`
}

// PersonaTables maps domains to persona tables.
type PersonaTables struct {
	Domains  map[string]PersonaTable `yaml:"domains" json:"domains"`
	Fallback string                  `yaml:"fallback" json:"fallback"`
}

// StoryGroupRule assigns requirements to a named story group.
type StoryGroupRule struct {
	Label string   `yaml:"label" json:"label"`
	Any   []string `yaml:"any" json:"any"`
}

// Grouper splits an EPIC's requirements into story groups when the EPIC
// belongs to Domain and its title mentions one of EpicTitleAny.
type Grouper struct {
	Domain       string           `yaml:"domain" json:"domain"`
	EpicTitleAny []string         `yaml:"epic_title_any" json:"epic_title_any"`
	Groups       []StoryGroupRule `yaml:"groups" json:"groups"`
}

// GenericGroups names the fallback story split.
type GenericGroups struct {
	Primary   string `yaml:"primary" json:"primary"`
	Secondary string `yaml:"secondary" json:"secondary"`
	Single    string `yaml:"single" json:"single"`
}

// PhraseTable resolves a phrase first against domain rules then common rules.
type PhraseTable struct {
	Domains map[string][]Rule[string] `yaml:"domains" json:"domains"`
	Common  []Rule[string]            `yaml:"common" json:"common"`
	Default string                    `yaml:"default" json:"default"`
}

// AcceptanceTable collects story acceptance criteria.
type AcceptanceTable struct {
	Generic  []Rule[[]string]            `yaml:"generic" json:"generic"`
	Domains  map[string][]Rule[[]string] `yaml:"domains" json:"domains"`
	Defaults []string                    `yaml:"defaults" json:"defaults"`
	Always   string                      `yaml:"always" json:"always"`
	Max      int                         `yaml:"max" json:"max"`
}

// PointsTable is the story complexity heuristic.
type PointsTable struct {
	Tiers   []Rule[int] `yaml:"tiers" json:"tiers"`
	Default int         `yaml:"default" json:"default"`
}

// StoryRules gathers every table the story generator reads.
type StoryRules struct {
	Groupers      []Grouper       `yaml:"groupers" json:"groupers"`
	GenericGroups GenericGroups   `yaml:"generic_groups" json:"generic_groups"`
	Want          PhraseTable     `yaml:"want" json:"want"`
	SoThat        PhraseTable     `yaml:"so_that" json:"so_that"`
	Acceptance    AcceptanceTable `yaml:"acceptance" json:"acceptance"`
	Points        PointsTable     `yaml:"points" json:"points"`
}

// ContextRule is a narrow validation rule keyed on persona and context phrases.
type ContextRule struct {
	Name       string   `yaml:"name" json:"name"`
	PersonaAny []string `yaml:"persona_any,omitempty" json:"persona_any,omitempty"`
	ContextAny []string `yaml:"context_any,omitempty" json:"context_any,omitempty"`
	ContextAll []string `yaml:"context_all,omitempty" json:"context_all,omitempty"`
	Result     []string `yaml:"result" json:"result"`
}

// PoolFilter narrows a domain pool to entries relevant to an EPIC title.
type PoolFilter struct {
	TitleAny []string `yaml:"title_any" json:"title_any"`
	KeepAny  []string `yaml:"keep_any" json:"keep_any"`
}

// ValidationPool is one domain's validation sentences and their filters.
type ValidationPool struct {
	Entries []string     `yaml:"entries" json:"entries"`
	Filters []PoolFilter `yaml:"filters" json:"filters"`
}

// ValidationLimits bounds how much each layer contributes.
type ValidationLimits struct {
	Pool   int `yaml:"pool" json:"pool"`
	Action int `yaml:"action" json:"action"`
	Total  int `yaml:"total" json:"total"`
}

// ValidationRules feeds the layered validation criteria resolver.
type ValidationRules struct {
	Contextual []ContextRule             `yaml:"contextual" json:"contextual"`
	Pools      map[string]ValidationPool `yaml:"pools" json:"pools"`
	Actions    []Rule[[]string]          `yaml:"actions" json:"actions"`
	Personas   map[string][]string       `yaml:"personas" json:"personas"`
	Baseline   []string                  `yaml:"baseline" json:"baseline"`
	Limits     ValidationLimits          `yaml:"limits" json:"limits"`
}

// Term is a glossary entry.
type Term struct {
	Term       string `yaml:"term" json:"term"`
	Definition string `yaml:"definition" json:"definition"`
}

// Profile is the per-domain boilerplate that fills BRD and FRD sections.
type Profile struct {
	Label        string   `yaml:"label" json:"label"`
	Scope        string   `yaml:"scope" json:"scope"`
	KPIs         []string `yaml:"kpis" json:"kpis"`
	Stakeholders []string `yaml:"stakeholders" json:"stakeholders"`
	NFRs         []string `yaml:"nfrs" json:"nfrs"`
	Entities     []string `yaml:"entities" json:"entities"`
	Interfaces   []string `yaml:"interfaces" json:"interfaces"`
	Glossary     []Term   `yaml:"glossary" json:"glossary"`
}

// Ruleset is the complete, immutable set of rule tables.
type Ruleset struct {
	Keywords   KeywordTable       `json:"keywords"`
	Titles     TitleTable         `json:"titles"`
	Personas   PersonaTables      `json:"personas"`
	Stories    StoryRules         `json:"stories"`
	Validation ValidationRules    `json:"validation"`
	Profiles   map[string]Profile `json:"profiles"`
}

// LoadError reports a rule file that could not be read or parsed.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("rules file %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

var (
	defaultOnce sync.Once
	defaultSet  *Ruleset
	defaultErr  error
)

// Default returns the embedded rule tables. It panics if the embedded data is
// broken, which the package tests rule out.
func Default() *Ruleset {
	defaultOnce.Do(func() {
		defaultSet, defaultErr = load(nil)
	})
	if defaultErr != nil {
		panic(defaultErr)
	}
	return defaultSet
}

// Load returns the embedded tables with any file present in dir replacing
// its embedded counterpart. An empty dir yields the embedded tables.
func Load(dir string) (*Ruleset, error) {
	if dir == "" {
		return Default(), nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("rules dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("rules dir %s is not a directory", dir)
	}
	return load(os.DirFS(dir))
}

func load(overlay fs.FS) (*Ruleset, error) {
	rs := &Ruleset{}
	targets := map[string]any{
		KeywordsFile:   &rs.Keywords,
		TitlesFile:     &rs.Titles,
		PersonasFile:   &rs.Personas,
		StoriesFile:    &rs.Stories,
		ValidationFile: &rs.Validation,
		ProfilesFile:   &rs.Profiles,
	}

	for _, name := range Files {
		data, src, err := readTable(overlay, name)
		if err != nil {
			return nil, &LoadError{File: src, Err: err}
		}
		if err := yaml.Unmarshal(data, targets[name]); err != nil {
			return nil, &LoadError{File: src, Err: err}
		}
	}

	rs.normalize()
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return rs, nil
}

func readTable(overlay fs.FS, name string) ([]byte, string, error) {
	if overlay != nil {
		data, err := fs.ReadFile(overlay, name)
		if err == nil {
			return data, name, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, name, err
		}
	}
	data, err := dataFS.ReadFile(filepath.ToSlash(filepath.Join("data", name)))
	return data, "embedded:" + name, err
}

// normalize lowercases every keyword so matching can assume lowercase on
// both sides, and fills limits left at zero.
func (rs *Ruleset) normalize() {
	for i := range rs.Keywords.Domains {
		d := &rs.Keywords.Domains[i]
		d.Domain = strings.ToLower(strings.TrimSpace(d.Domain))
		d.Keywords = lowerAll(d.Keywords)
	}
	if rs.Keywords.Threshold <= 0 {
		rs.Keywords.Threshold = 2
	}

	for k, rules := range rs.Titles.Domains {
		rs.Titles.Domains[k] = lowerRules(rules)
	}
	rs.Titles.Generic = lowerRules(rs.Titles.Generic)
	rs.Titles.SplitOn = lowerAll(rs.Titles.SplitOn)
	if rs.Titles.MaxEpics <= 0 {
		rs.Titles.MaxEpics = 8
	}
	if rs.Titles.GroupSize <= 0 {
		rs.Titles.GroupSize = 3
	}

	for k, pt := range rs.Personas.Domains {
		pt.Rules = lowerRules(pt.Rules)
		rs.Personas.Domains[k] = pt
	}

	for i := range rs.Stories.Groupers {
		g := &rs.Stories.Groupers[i]
		g.EpicTitleAny = lowerAll(g.EpicTitleAny)
		for j := range g.Groups {
			g.Groups[j].Any = lowerAll(g.Groups[j].Any)
		}
	}
	for _, pt := range []*PhraseTable{&rs.Stories.Want, &rs.Stories.SoThat} {
		for k, rules := range pt.Domains {
			pt.Domains[k] = lowerRules(rules)
		}
		pt.Common = lowerRules(pt.Common)
	}
	rs.Stories.Acceptance.Generic = lowerRules(rs.Stories.Acceptance.Generic)
	for k, rules := range rs.Stories.Acceptance.Domains {
		rs.Stories.Acceptance.Domains[k] = lowerRules(rules)
	}
	if rs.Stories.Acceptance.Max <= 0 {
		rs.Stories.Acceptance.Max = 4
	}
	rs.Stories.Points.Tiers = lowerRules(rs.Stories.Points.Tiers)

	for i := range rs.Validation.Contextual {
		c := &rs.Validation.Contextual[i]
		c.PersonaAny = lowerAll(c.PersonaAny)
		c.ContextAny = lowerAll(c.ContextAny)
		c.ContextAll = lowerAll(c.ContextAll)
	}
	for k, pool := range rs.Validation.Pools {
		for j := range pool.Filters {
			pool.Filters[j].TitleAny = lowerAll(pool.Filters[j].TitleAny)
			pool.Filters[j].KeepAny = lowerAll(pool.Filters[j].KeepAny)
		}
		rs.Validation.Pools[k] = pool
	}
	rs.Validation.Actions = lowerRules(rs.Validation.Actions)
	personas := make(map[string][]string, len(rs.Validation.Personas))
	for k, v := range rs.Validation.Personas {
		personas[strings.ToLower(k)] = v
	}
	rs.Validation.Personas = personas

	lim := &rs.Validation.Limits
	if lim.Pool <= 0 {
		lim.Pool = 3
	}
	if lim.Action <= 0 {
		lim.Action = 2
	}
	if lim.Total <= 0 {
		lim.Total = 7
	}
}

// Validate checks invariants every lookup chain relies on: each chain must end
// in an explicit default.
func (rs *Ruleset) Validate() error {
	if len(rs.Keywords.Domains) == 0 {
		return &LoadError{File: KeywordsFile, Err: errors.New("at least one domain required")}
	}
	seen := map[string]bool{}
	for i, d := range rs.Keywords.Domains {
		switch {
		case d.Domain == "":
			return &LoadError{File: KeywordsFile, Err: fmt.Errorf("domains[%d]: name required", i)}
		case d.Domain == "generic":
			return &LoadError{File: KeywordsFile, Err: errors.New("generic is the implicit fallback and cannot be listed")}
		case seen[d.Domain]:
			return &LoadError{File: KeywordsFile, Err: fmt.Errorf("duplicate domain %q", d.Domain)}
		case len(d.Keywords) == 0:
			return &LoadError{File: KeywordsFile, Err: fmt.Errorf("domain %q has no keywords", d.Domain)}
		}
		seen[d.Domain] = true
	}
	if rs.Titles.Default == "" || rs.Titles.EmptyEpic == "" || rs.Titles.EmptyText == "" {
		return &LoadError{File: TitlesFile, Err: errors.New("default, empty_epic and empty_requirement are required")}
	}
	if rs.Titles.Description == "" || rs.Titles.Value == "" {
		return &LoadError{File: TitlesFile, Err: errors.New("description and business_value templates are required")}
	}
	if rs.Personas.Fallback == "" {
		return &LoadError{File: PersonasFile, Err: errors.New("fallback persona required")}
	}
	g := rs.Stories.GenericGroups
	if g.Primary == "" || g.Secondary == "" || g.Single == "" {
		return &LoadError{File: StoriesFile, Err: errors.New("generic_groups needs primary, secondary and single")}
	}
	if rs.Stories.SoThat.Default == "" || rs.Stories.Want.Default == "" {
		return &LoadError{File: StoriesFile, Err: errors.New("want and so_that defaults required")}
	}
	if len(rs.Stories.Acceptance.Defaults) == 0 || rs.Stories.Acceptance.Always == "" {
		return &LoadError{File: StoriesFile, Err: errors.New("acceptance defaults and always criterion required")}
	}
	if rs.Stories.Points.Default == 0 {
		return &LoadError{File: StoriesFile, Err: errors.New("points default required")}
	}
	if len(rs.Validation.Baseline) == 0 {
		return &LoadError{File: ValidationFile, Err: errors.New("baseline validations required")}
	}
	if _, ok := rs.Profiles["generic"]; !ok {
		return &LoadError{File: ProfilesFile, Err: errors.New("generic profile required")}
	}
	return nil
}

// DomainNames returns the classifier domains in table order.
func (rs *Ruleset) DomainNames() []string {
	names := make([]string, 0, len(rs.Keywords.Domains))
	for _, d := range rs.Keywords.Domains {
		names = append(names, d.Domain)
	}
	return names
}

// Profile returns the profile for domain, falling back to the generic one.
func (rs *Ruleset) Profile(domain string) Profile {
	if p, ok := rs.Profiles[domain]; ok {
		return p
	}
	return rs.Profiles["generic"]
}

// Marshal renders the effective tables as YAML, keyed by file name.
func (rs *Ruleset) Marshal() ([]byte, error) {
	return yaml.Marshal(map[string]any{
		KeywordsFile:   rs.Keywords,
		TitlesFile:     rs.Titles,
		PersonasFile:   rs.Personas,
		StoriesFile:    rs.Stories,
		ValidationFile: rs.Validation,
		ProfilesFile:   rs.Profiles,
	})
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

func lowerRules[T any](rules []Rule[T]) []Rule[T] {
	for i := range rules {
		rules[i].Any = lowerAll(rules[i].Any)
		rules[i].All = lowerAll(rules[i].All)
	}
	return rules
}
