package core

import (
	"testing"

	"github.com/dhabedank/brdgen/internal/ruleset"
)

func TestClassify(t *testing.T) {
	e := NewDefault()

	tests := []struct {
		name string
		text string
		want Domain
	}{
		{"marketing", "email campaign lead CRM automation", Marketing},
		{"healthcare", "Patients book an appointment with a doctor", Healthcare},
		{"airline", "Passengers complete online check-in and pick a seat", Airline},
		{"financial", "Investor portfolio and trading dashboard", Financial},
		{"ecommerce", "Shopping cart, checkout and order tracking", Ecommerce},
		{"telecom", "eSIM activation with KYC for prepaid subscribers", Telecom},
		{"below threshold", "A single patient record", Generic},
		{"empty", "", Generic},
		{"whitespace", "   \n\t", Generic},
		{"tie goes to the earlier domain", "customer brand product", Marketing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Classify(tt.text); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestClassifyAlwaysInClosedSet(t *testing.T) {
	e := NewDefault()
	valid := map[Domain]bool{Generic: true}
	for _, name := range e.Rules().DomainNames() {
		valid[Domain(name)] = true
	}

	inputs := []string{
		"", "x", "similar words only", "SIM SIM SIM", "flight booking", "🚀 launch",
		"The system shall do many unrelated things quickly",
	}
	for _, in := range inputs {
		if d := e.Classify(in); !valid[d] {
			t.Errorf("Classify(%q) = %q, not in the domain set", in, d)
		}
	}
}

func TestScoresReportsEveryDomain(t *testing.T) {
	e := NewDefault()
	winner, scores := e.Scores("email campaign lead CRM automation")

	if winner != Marketing {
		t.Fatalf("winner = %q, want marketing", winner)
	}
	if len(scores) != len(e.Rules().Keywords.Domains) {
		t.Fatalf("got %d scores, want one per domain", len(scores))
	}
	if scores[0].Domain != Marketing || scores[0].Score != 5 {
		t.Errorf("scores[0] = %+v, want marketing with 5", scores[0])
	}
}

func TestClassifyWordMode(t *testing.T) {
	word, err := ruleset.NewMatcher(ruleset.MatchWord)
	if err != nil {
		t.Fatal(err)
	}
	text := "similar data plans for dotted networks"

	// Substring matching counts "sim", "data", "plan", "dot" and "network".
	if got := NewDefault().Classify(text); got != Telecom {
		t.Errorf("substring Classify = %q, want telecom", got)
	}
	// Word matching only counts "data".
	if got := New(nil, word).Classify(text); got != Generic {
		t.Errorf("word Classify = %q, want generic", got)
	}
}

func TestDeclaredDomain(t *testing.T) {
	e := NewDefault()

	tests := []struct {
		name   string
		brd    string
		want   Domain
		wantOK bool
	}{
		{"html meta line", `<p class="meta">Version 2 | Domain: General Business</p>`, Generic, true},
		{"markdown meta line", "**Business Requirements Document** · Version 1 · Domain: Telecommunications", Telecom, true},
		{"hyphenated label", `<p class="meta">Version 1 | Domain: E-commerce</p>`, Ecommerce, true},
		{"domain key", "Domain: airline\n", Airline, true},
		{"unknown label", "Domain: Space Mining", "", false},
		{"no meta line", "EPIC-01: Billing\nRequirements:\n• Generate invoices", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.DeclaredDomain(tt.brd)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("DeclaredDomain() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestAnalyzeBRDIgnoresBoilerplate(t *testing.T) {
	e := NewDefault()
	brd := `Business Requirements Document
5. Budget
No specific budget provided. Cost estimates and risk review pending compliance audit.
EPIC-01: Account Access
Requirements:
• Users sign in with their work account
• Admins manage user roles and groups`

	if got := e.Classify(brd); got != Financial {
		t.Fatalf("Classify(whole document) = %q, want financial", got)
	}
	if got := e.Analyze(Input{BRDText: brd}).Domain; got != Generic {
		t.Errorf("Analyze(BRD).Domain = %q, want generic", got)
	}
}

func TestAnalyzeBRDKeepsDeclaredDomain(t *testing.T) {
	e := NewDefault()
	brd := `<p class="meta">Version 1 | Domain: Healthcare</p>
<h4>EPIC-01: Account Access</h4>
<p><strong>Requirements:</strong></p>
<ul><li>Users sign in with their work account</li></ul>`

	if got := e.Analyze(Input{BRDText: brd}).Domain; got != Healthcare {
		t.Errorf("Analyze(BRD).Domain = %q, want healthcare", got)
	}
}
