package ruleset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoads(t *testing.T) {
	rs := Default()

	assert.Equal(t, []string{"marketing", "financial", "healthcare", "ecommerce", "telecom", "airline"}, rs.DomainNames())
	assert.Equal(t, 2, rs.Keywords.Threshold)
	assert.Equal(t, 8, rs.Titles.MaxEpics)
	assert.Equal(t, 3, rs.Titles.GroupSize)
	assert.Equal(t, "User", rs.Personas.Fallback)
	assert.Len(t, rs.Validation.Baseline, 4)
	assert.Equal(t, ValidationLimits{Pool: 3, Action: 2, Total: 7}, rs.Validation.Limits)
	assert.Equal(t, 4, rs.Stories.Acceptance.Max)
}

func TestDefaultKeywordsAreLowercase(t *testing.T) {
	for _, d := range Default().Keywords.Domains {
		for _, kw := range d.Keywords {
			assert.Equal(t, kw, strings.ToLower(kw), "domain %s keyword %q", d.Domain, kw)
		}
	}
}

func TestEveryClassifiedDomainHasAProfile(t *testing.T) {
	rs := Default()
	for _, name := range rs.DomainNames() {
		_, ok := rs.Profiles[name]
		assert.True(t, ok, "missing profile for %s", name)
	}
	assert.Equal(t, "General Business", rs.Profile("unknown").Label)
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	overlay := `threshold: 1
domains:
  - domain: Insurance
    keywords: [Policy, Claim, Premium]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, KeywordsFile), []byte(overlay), 0644))

	rs, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"insurance"}, rs.DomainNames())
	assert.Equal(t, []string{"policy", "claim", "premium"}, rs.Keywords.Domains[0].Keywords)
	assert.Equal(t, 1, rs.Keywords.Threshold)
	// Files absent from the overlay keep the embedded tables.
	assert.Equal(t, Default().Titles.Default, rs.Titles.Default)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		keywords string
	}{
		{"malformed yaml", "domains: [\n"},
		{"no domains", "domains: []\n"},
		{"generic listed", "domains:\n  - domain: generic\n    keywords: [a]\n"},
		{"duplicate domain", "domains:\n  - domain: a\n    keywords: [x]\n  - domain: a\n    keywords: [y]\n"},
		{"empty keywords", "domains:\n  - domain: a\n    keywords: []\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, KeywordsFile), []byte(tt.keywords), 0644))

			_, err := Load(dir)
			require.Error(t, err)

			var loadErr *LoadError
			require.True(t, errors.As(err, &loadErr), "want *LoadError, got %T", err)
			assert.Contains(t, loadErr.File, KeywordsFile)
		})
	}
}

func TestLoadMissingDir(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestMarshalRoundTripsFileNames(t *testing.T) {
	out, err := Default().Marshal()
	require.NoError(t, err)
	for _, name := range Files {
		assert.Contains(t, string(out), name)
	}
}

func TestFirstIsFirstMatch(t *testing.T) {
	rules := []Rule[string]{
		{Any: []string{"billing"}, Result: "billing"},
		{Any: []string{"sim", "billing"}, Result: "sim"},
		{All: []string{"investor", "onboard"}, Result: "both"},
	}
	m := Matcher{}

	tests := []struct {
		text   string
		want   string
		wantOK bool
	}{
		{"sim billing", "billing", true},
		{"esim swap", "sim", true},
		{"investor onboarding", "both", true},
		{"investor only", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := First(tt.text, rules, m)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("First(%q) = %q, %v; want %q, %v", tt.text, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestAllCollectsInOrder(t *testing.T) {
	rules := []Rule[[]string]{
		{Any: []string{"form"}, Result: []string{"a"}},
		{Any: []string{"upload"}, Result: []string{"b", "c"}},
		{Any: []string{"missing"}, Result: []string{"d"}},
	}
	got := All("upload the form", rules, Matcher{})
	want := [][]string{{"a"}, {"b", "c"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("All() mismatch (-want +got):\n%s", diff)
	}
}

func TestCatchAllRule(t *testing.T) {
	got, ok := First("anything", []Rule[int]{{Result: 7}}, Matcher{})
	assert.True(t, ok)
	assert.Equal(t, 7, got)
}

func TestDedupeAndCap(t *testing.T) {
	got := Cap(Dedupe([]string{"a", "b", "a", "c", "b", "d"}), 3)
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"x"}, Cap([]string{"x"}, 5))
}
