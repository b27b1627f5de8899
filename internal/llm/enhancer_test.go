package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhabedank/brdgen/internal/core"
)

type fakeAdapter struct {
	reply  string
	err    error
	delay  time.Duration
	system string
	user   string
}

func (f *fakeAdapter) Name() string      { return "fake" }
func (f *fakeAdapter) IsAvailable() bool { return true }

func (f *fakeAdapter) Generate(ctx context.Context, system, user string) (string, error) {
	f.system, f.user = system, user
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply, f.err
}

func TestCheckMarkers(t *testing.T) {
	longFRD := "<h2>EPIC-01</h2><p>FR-001 " + strings.Repeat("x", frdMinLength) + "</p>"

	tests := []struct {
		name    string
		docType core.DocType
		out     string
		wantOK  bool
	}{
		{"brd ok", core.DocBRD, "<h3>EPIC-01: Billing</h3>", true},
		{"brd empty", core.DocBRD, "   ", false},
		{"brd plain text", core.DocBRD, "EPIC-01 Billing", false},
		{"brd no epic", core.DocBRD, "<p>Business Requirements</p>", false},
		{"frd ok", core.DocFRD, longFRD, true},
		{"frd no fr ids", core.DocFRD, "<h2>EPIC-01</h2>" + strings.Repeat("x", 2000), false},
		{"frd too short", core.DocFRD, "<h2>EPIC-01</h2><p>FR-001</p>", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckMarkers(tt.docType, tt.out)
			if tt.wantOK {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, KindMarker, err.Kind)
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<p>x</p>", "<p>x</p>"},
		{"```html\n<p>x</p>\n```", "<p>x</p>"},
		{"```\n<p>x</p>\n```\n", "<p>x</p>"},
		{"```html\n<p>x</p>", "<p>x</p>"},
	}
	for _, tt := range tests {
		if got := StripCodeFences(tt.in); got != tt.want {
			t.Errorf("StripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnhancerAcceptsMarkedReply(t *testing.T) {
	fake := &fakeAdapter{reply: "```html\n<h3>EPIC-01: Billing</h3>\n```"}
	e := NewEnhancer(fake, time.Second, nil)

	reply, err := e.Generate(context.Background(), core.DocBRD, core.Input{Project: "Telco", Scope: "Prepaid billing"})
	require.NoError(t, err)
	assert.Equal(t, "<h3>EPIC-01: Billing</h3>", reply.HTML)
	assert.Equal(t, utf8.RuneCountInString(fake.system+fake.user), reply.PromptChars)
	assert.Equal(t, len(reply.HTML), reply.ReplyChars)
	assert.Empty(t, reply.Model)
	assert.Contains(t, fake.user, "Project: Telco")
	assert.Contains(t, fake.user, "Scope:\nPrepaid billing")
	assert.NotContains(t, fake.user, "Budget:")
}

func TestEnhancerReportsAdapterModel(t *testing.T) {
	e := NewEnhancer(NewCodexCLIAdapter(Config{Model: "gpt-4o"}), 0, nil)
	assert.Equal(t, "gpt-4o", e.Model())

	e = NewEnhancer(NewClaudeCLIAdapter(Config{}), 0, nil)
	assert.Equal(t, defaultClaudeModel, e.Model())
}

func TestEnhancerRejectsUnmarkedReply(t *testing.T) {
	e := NewEnhancer(&fakeAdapter{reply: "Sorry, I cannot help with that."}, 0, nil)

	_, err := e.Generate(context.Background(), core.DocBRD, core.Input{})
	ge, ok := IsGenerationError(err)
	require.True(t, ok)
	assert.Equal(t, KindMarker, ge.Kind)
	assert.Equal(t, "fake", ge.Adapter)
}

func TestEnhancerClassifiesFailures(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name    string
		adapter *fakeAdapter
		timeout time.Duration
		want    Kind
	}{
		{"api error", &fakeAdapter{err: boom}, 0, KindAPI},
		{"timeout", &fakeAdapter{delay: time.Second}, 10 * time.Millisecond, KindTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEnhancer(tt.adapter, tt.timeout, nil)
			_, err := e.Generate(context.Background(), core.DocFRD, core.Input{BRDText: "EPIC-01: X"})
			ge, ok := IsGenerationError(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, tt.want, ge.Kind)
		})
	}

	_, err := NewEnhancer(&fakeAdapter{err: boom}, 0, nil).Generate(context.Background(), core.DocBRD, core.Input{})
	assert.ErrorIs(t, err, boom)
}

func TestPromptsByType(t *testing.T) {
	in := core.Input{Project: "P", BriefRequirements: "Book flights", BRDText: "EPIC-01: Booking"}

	system, user := Prompts(core.DocBRD, in)
	assert.Equal(t, brdSystemPrompt, system)
	assert.Contains(t, user, "Requirements:\nBook flights")

	system, user = Prompts(core.DocFRD, in)
	assert.Equal(t, frdSystemPrompt, system)
	assert.Contains(t, user, "BRD Content:\nEPIC-01: Booking")
}

func TestGenerationErrorMessage(t *testing.T) {
	err := &GenerationError{Kind: KindAPI, Adapter: "claude-cli", Message: "exit 1", Err: errors.New("stderr")}
	assert.Equal(t, "ai generation api (claude-cli): exit 1: stderr", err.Error())
}
