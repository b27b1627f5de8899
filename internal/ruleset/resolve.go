package ruleset

// Rule pairs a keyword predicate with a result.
//
// A rule matches when every All keyword is present and, if Any is set, at
// least one Any keyword is present. A rule with neither set matches anything.
type Rule[T any] struct {
	Any    []string `yaml:"any,omitempty" json:"any,omitempty"`
	All    []string `yaml:"all,omitempty" json:"all,omitempty"`
	Result T        `yaml:"result" json:"result"`
}

// Matches reports whether the rule fires for lowercase text.
func (r Rule[T]) Matches(text string, m Matcher) bool {
	if len(r.All) > 0 && !m.ContainsAll(text, r.All) {
		return false
	}
	if len(r.Any) > 0 && !m.ContainsAny(text, r.Any) {
		return false
	}
	return true
}

// First returns the result of the first rule that matches text.
// Order is the rule table order; later rules are never consulted once one fires.
func First[T any](text string, rules []Rule[T], m Matcher) (T, bool) {
	for _, r := range rules {
		if r.Matches(text, m) {
			return r.Result, true
		}
	}
	var zero T
	return zero, false
}

// All returns the results of every rule that matches text, in table order.
func All[T any](text string, rules []Rule[T], m Matcher) []T {
	var out []T
	for _, r := range rules {
		if r.Matches(text, m) {
			out = append(out, r.Result)
		}
	}
	return out
}

// Dedupe drops exact duplicates, keeping first-seen order.
func Dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

// Cap truncates items to at most n entries.
func Cap(items []string, n int) []string {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}
