package core

import (
	"strings"

	"github.com/dhabedank/brdgen/internal/ruleset"
)

// ResolvePersona names the actor for a group of requirement texts.
//
// The first domain rule whose keywords appear wins, not the best-scoring one.
// Without a match the domain's first default persona is used; a domain with
// no persona table resolves to the fallback persona.
func (e *Engine) ResolvePersona(texts []string, domain Domain) string {
	table, ok := e.rules.Personas.Domains[string(domain)]
	if !ok {
		return e.rules.Personas.Fallback
	}

	text := lower(strings.Join(texts, " "))
	if p, ok := ruleset.First(text, table.Rules, e.match); ok {
		return p
	}
	if len(table.Defaults) > 0 {
		return table.Defaults[0]
	}
	return e.rules.Personas.Fallback
}
