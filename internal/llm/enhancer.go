package llm

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/dhabedank/brdgen/internal/core"
)

// frdMinLength is the length an AI FRD must exceed to be accepted.
const frdMinLength = 1000

// Enhancer asks an adapter for a whole document and rejects replies that
// lack the markers a usable document carries.
type Enhancer struct {
	adapter Adapter
	timeout time.Duration
	log     *zap.Logger
}

// NewEnhancer wraps an adapter. A zero timeout means no extra deadline.
func NewEnhancer(adapter Adapter, timeout time.Duration, log *zap.Logger) *Enhancer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Enhancer{adapter: adapter, timeout: timeout, log: log}
}

// Adapter returns the wrapped adapter.
func (e *Enhancer) Adapter() Adapter {
	return e.adapter
}

// Model returns the model the adapter calls, or "" when it does not say.
func (e *Enhancer) Model() string {
	if m, ok := e.adapter.(interface{ Model() string }); ok {
		return m.Model()
	}
	return ""
}

// Reply is an accepted AI document and the size of the exchange that
// produced it.
type Reply struct {
	HTML        string
	Model       string
	PromptChars int
	ReplyChars  int
}

// Generate returns AI-written HTML for the document, or a *GenerationError
// when the call fails or the reply is unusable.
func (e *Enhancer) Generate(ctx context.Context, t core.DocType, in core.Input) (*Reply, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	system, user := Prompts(t, in)
	name := e.adapter.Name()
	promptChars := utf8.RuneCountInString(system) + utf8.RuneCountInString(user)
	e.log.Debug("ai generation started",
		zap.String("adapter", name),
		zap.String("type", string(t)),
		zap.Int("prompt_chars", promptChars),
	)

	start := time.Now()
	out, err := e.adapter.Generate(ctx, system, user)
	if err != nil {
		return nil, classify(name, err)
	}

	out = StripCodeFences(out)
	if err := CheckMarkers(t, out); err != nil {
		err.Adapter = name
		return nil, err
	}

	e.log.Info("ai generation accepted",
		zap.String("adapter", name),
		zap.String("type", string(t)),
		zap.Int("chars", len(out)),
		zap.Duration("took", time.Since(start)),
	)
	return &Reply{
		HTML:        out,
		Model:       e.Model(),
		PromptChars: promptChars,
		ReplyChars:  utf8.RuneCountInString(out),
	}, nil
}

// CheckMarkers verifies an AI reply looks like the requested document. A BRD
// needs markup and an EPIC; an FRD additionally needs FR- identifiers and
// more than frdMinLength characters.
func CheckMarkers(t core.DocType, out string) *GenerationError {
	missing := func(what string) *GenerationError {
		return &GenerationError{Kind: KindMarker, Message: "reply " + what}
	}

	if strings.TrimSpace(out) == "" {
		return missing("is empty")
	}
	if !strings.Contains(out, "<") {
		return missing("has no HTML markup")
	}
	if !strings.Contains(out, "EPIC") {
		return missing("has no EPIC section")
	}
	if t == core.DocFRD {
		if !strings.Contains(out, "FR-") {
			return missing("has no FR- requirements")
		}
		if utf8.RuneCountInString(out) <= frdMinLength {
			return missing("is too short for an FRD")
		}
	}
	return nil
}

// StripCodeFences removes a surrounding ``` fence, with or without a
// language tag.
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	lines = lines[1:]
	if n := len(lines); n > 0 && strings.HasPrefix(strings.TrimSpace(lines[n-1]), "```") {
		lines = lines[:n-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
