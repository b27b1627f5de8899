// Package core turns free-text project input into requirement documents:
// domain classification, requirement extraction, EPIC synthesis, personas,
// user stories and validation criteria.
//
// Every operation is a pure function of its arguments and the rule tables.
// An Engine holds no mutable state and is safe for concurrent use.
package core

import (
	"strings"

	"github.com/dhabedank/brdgen/internal/ruleset"
)

// Engine evaluates rule tables against requirement text.
type Engine struct {
	rules *ruleset.Ruleset
	match ruleset.Matcher
}

// New returns an Engine over rules. A nil ruleset means the embedded tables.
func New(rules *ruleset.Ruleset, match ruleset.Matcher) *Engine {
	if rules == nil {
		rules = ruleset.Default()
	}
	return &Engine{rules: rules, match: match}
}

// NewDefault returns an Engine over the embedded tables with substring matching.
func NewDefault() *Engine {
	return New(nil, ruleset.Matcher{})
}

// Rules exposes the tables the engine evaluates.
func (e *Engine) Rules() *ruleset.Ruleset {
	return e.rules
}

// Matcher exposes the keyword matcher in use.
func (e *Engine) Matcher() ruleset.Matcher {
	return e.match
}

// Profile returns the document profile for domain.
func (e *Engine) Profile(d Domain) ruleset.Profile {
	return e.rules.Profile(string(d))
}

func lower(s string) string {
	return strings.ToLower(s)
}
