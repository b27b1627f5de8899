package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dhabedank/brdgen/internal/core"
	"github.com/dhabedank/brdgen/internal/llm"
	"github.com/dhabedank/brdgen/internal/render"
)

type stubAdapter struct {
	reply string
	err   error
	calls int
}

func (s *stubAdapter) Name() string      { return "stub" }
func (s *stubAdapter) IsAvailable() bool { return true }

func (s *stubAdapter) Generate(ctx context.Context, _, _ string) (string, error) {
	s.calls++
	return s.reply, s.err
}

var campaign = core.Input{
	Project:           "Campaign Hub",
	Scope:             "Email campaign automation with lead scoring and CRM sync",
	BriefRequirements: "Launch promotion journeys\nCapture leads from landing forms",
}

func TestGenerateLocal(t *testing.T) {
	g := New(nil)
	res, err := g.Generate(context.Background(), Request{Name: "hub", Input: campaign})
	require.NoError(t, err)

	assert.Equal(t, SourceLocal, res.Source)
	assert.Empty(t, res.Fallback)
	assert.Equal(t, core.DocBRD, res.Document.Type)
	assert.Equal(t, core.Marketing, res.Document.Domain)
	assert.Contains(t, res.Document.HTML, "EPIC-01")
	assert.NotEmpty(t, res.Stories)
}

func TestGenerateUsesAcceptedAIReply(t *testing.T) {
	stub := &stubAdapter{reply: "<h3>EPIC-01: Campaigns</h3>"}
	g := New(nil, WithAI(llm.NewEnhancer(stub, 0, nil)))

	res, err := g.Generate(context.Background(), Request{Input: campaign})
	require.NoError(t, err)
	assert.Equal(t, SourceAI, res.Source)
	assert.Equal(t, "stub", res.Adapter)
	assert.Positive(t, res.PromptChars)
	assert.Equal(t, len("<h3>EPIC-01: Campaigns</h3>"), res.ReplyChars)
	assert.Contains(t, res.Document.HTML, "<h3>EPIC-01: Campaigns</h3>")
	assert.Contains(t, res.Document.HTML, "<title>Campaign Hub - Business Requirements Document</title>")
	assert.Equal(t, core.Marketing, res.Document.Domain)
}

func TestGenerateFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		stub    *stubAdapter
		docType core.DocType
		reason  string
		kind    llm.Kind
	}{
		{"no epic marker", &stubAdapter{reply: "<p>Business Requirements</p>"}, core.DocBRD, "no EPIC", llm.KindMarker},
		{"short frd", &stubAdapter{reply: "<p>EPIC-01 FR-001</p>"}, core.DocFRD, "too short", llm.KindMarker},
		{"api failure", &stubAdapter{err: errors.New("rate limited")}, core.DocBRD, "rate limited", llm.KindAPI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(nil, WithAI(llm.NewEnhancer(tt.stub, 0, nil)))
			res, err := g.Generate(context.Background(), Request{Input: campaign, Type: tt.docType})
			require.NoError(t, err)
			assert.Equal(t, SourceLocal, res.Source)
			assert.Contains(t, res.Fallback, tt.reason)
			assert.Equal(t, tt.kind, res.FallbackKind)
			assert.Zero(t, res.PromptChars)
			assert.Contains(t, res.Document.HTML, "EPIC-01")
		})
	}
}

func TestGenerateMarkdownSkipsAI(t *testing.T) {
	stub := &stubAdapter{reply: "<h3>EPIC-01</h3>"}
	g := New(nil, WithAI(llm.NewEnhancer(stub, 0, nil)))

	res, err := g.Generate(context.Background(), Request{Input: campaign, Format: render.Markdown})
	require.NoError(t, err)
	assert.Zero(t, stub.calls)
	assert.True(t, strings.HasPrefix(res.Document.HTML, "# "), "expected markdown, got %q", res.Document.HTML[:40])
}

func TestGenerateReview(t *testing.T) {
	stub := &stubAdapter{reply: "<h3>EPIC-01</h3>"}
	review := func(_ context.Context, _ core.Domain, epics []core.Epic) ([]core.Epic, error) {
		epics[0].Title = "Reviewed Title"
		return epics, nil
	}
	g := New(nil, WithAI(llm.NewEnhancer(stub, 0, nil)), WithReview(review))

	res, err := g.Generate(context.Background(), Request{Input: campaign})
	require.NoError(t, err)
	assert.Zero(t, stub.calls)
	assert.Contains(t, res.Document.HTML, "EPIC-01: Reviewed Title")

	failing := New(nil, WithReview(func(context.Context, core.Domain, []core.Epic) ([]core.Epic, error) {
		return nil, errors.New("editor exited")
	}))
	_, err = failing.Generate(context.Background(), Request{Input: campaign})
	assert.ErrorContains(t, err, "editor exited")
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil).Generate(ctx, Request{Input: campaign})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateAll(t *testing.T) {
	defer goleak.VerifyNone(t)

	g := New(nil)
	var reqs []Request
	for i := 0; i < 12; i++ {
		in := campaign
		in.Project = fmt.Sprintf("Project %d", i)
		reqs = append(reqs, Request{Name: in.Project, Input: in, Type: core.DocFRD})
	}

	results, err := g.GenerateAll(context.Background(), reqs, 4)
	require.NoError(t, err)
	require.Len(t, results, len(reqs))
	for i, res := range results {
		assert.Equal(t, reqs[i].Name, res.Name)
		assert.Equal(t, reqs[i].Input.Project, res.Document.Project)
		assert.Equal(t, core.DocFRD, res.Document.Type)
	}
}

func TestGenerateAllStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil).GenerateAll(ctx, []Request{{Name: "a"}, {Name: "b"}}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "telco-billing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: 2
scope: Prepaid billing for mobile subscribers
requirements: |
  Rate data usage in real time
  Generate monthly invoices
`), 0o644))

	in, err := LoadInput(path)
	require.NoError(t, err)
	assert.Equal(t, "Telco Billing", in.Project)
	assert.Equal(t, 2, in.Version)
	assert.Contains(t, in.BriefRequirements, "Generate monthly invoices")
}

func TestLoadInputErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"empty", "  \n", "file"},
		{"unknown key", "requirement: typo\n", "yaml"},
		{"bad yaml", "project: [unclosed\n", "yaml"},
		{"negative version", "version: -3\n", "version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "in.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))

			_, err := LoadInput(path)
			var ie *InputError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.field, ie.Field)
			assert.Equal(t, path, ie.Path)
		})
	}
}

func TestProjectFromPath(t *testing.T) {
	tests := map[string]string{
		"campaign-hub.yaml":       "Campaign Hub",
		"/tmp/flight_ops.yml":     "Flight Ops",
		"single.json":             "Single",
		"dir/éclair-service.yaml": "Éclair Service",
	}
	for in, want := range tests {
		if got := ProjectFromPath(in); got != want {
			t.Errorf("ProjectFromPath(%q) = %q, want %q", in, got, want)
		}
	}
}
