package core

import (
	"strings"

	"github.com/dhabedank/brdgen/internal/ruleset"
)

// ResolveValidation layers validation criteria for a story.
//
// A contextual rule match returns its list alone. Otherwise the domain pool
// (filtered by EPIC title), action rules, persona rules and the baseline are
// concatenated. The result is deduplicated and capped at the total limit.
func (e *Engine) ResolveValidation(domain Domain, epicTitle, action, persona string) []string {
	v := e.rules.Validation
	lim := v.Limits
	context := lower(epicTitle + " " + action + " " + persona)
	personaText := lower(persona)

	for _, c := range v.Contextual {
		if e.contextMatches(c, personaText, context) {
			return ruleset.Cap(ruleset.Dedupe(c.Result), lim.Total)
		}
	}

	var out []string
	if pool, ok := v.Pools[string(domain)]; ok {
		out = append(out, ruleset.Cap(e.filterPool(pool, lower(epicTitle)), lim.Pool)...)
	}
	if actions, ok := ruleset.First(lower(action), v.Actions, e.match); ok {
		out = append(out, ruleset.Cap(actions, lim.Action)...)
	}
	out = append(out, v.Personas[strings.ToLower(strings.TrimSpace(persona))]...)
	out = append(out, v.Baseline...)

	return ruleset.Cap(ruleset.Dedupe(out), lim.Total)
}

func (e *Engine) contextMatches(c ruleset.ContextRule, persona, context string) bool {
	if len(c.PersonaAny) > 0 && !e.match.ContainsAny(persona, c.PersonaAny) {
		return false
	}
	if len(c.ContextAny) > 0 && !e.match.ContainsAny(context, c.ContextAny) {
		return false
	}
	if len(c.ContextAll) > 0 && !e.match.ContainsAll(context, c.ContextAll) {
		return false
	}
	return len(c.PersonaAny)+len(c.ContextAny)+len(c.ContextAll) > 0
}

// filterPool keeps the entries relevant to the first filter whose title
// keywords match. No matching filter, or a filter that keeps nothing, falls
// back to the pool in table order.
func (e *Engine) filterPool(pool ruleset.ValidationPool, title string) []string {
	for _, f := range pool.Filters {
		if !e.match.ContainsAny(title, f.TitleAny) {
			continue
		}
		var kept []string
		for _, entry := range pool.Entries {
			if e.match.ContainsAny(lower(entry), f.KeepAny) {
				kept = append(kept, entry)
			}
		}
		if len(kept) > 0 {
			return kept
		}
		break
	}
	return pool.Entries
}
