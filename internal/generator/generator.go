// Package generator turns inputs into rendered documents, trying the AI
// enhancer first when one is configured and falling back to the local
// engine otherwise.
package generator

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dhabedank/brdgen/internal/core"
	"github.com/dhabedank/brdgen/internal/llm"
	"github.com/dhabedank/brdgen/internal/render"
)

// Source values recorded on a Result.
const (
	SourceLocal = "local"
	SourceAI    = "ai"
)

// ReviewFunc lets a caller edit the synthesized EPICs before stories and
// documents are built from them.
type ReviewFunc func(ctx context.Context, domain core.Domain, epics []core.Epic) ([]core.Epic, error)

// Request is one document to generate.
type Request struct {
	Name   string // label for logs and batch results, usually the input path
	Input  core.Input
	Type   core.DocType
	Format render.Format
}

// Result is a generated document with its provenance.
type Result struct {
	Name     string
	Document core.Document
	Analysis core.Analysis
	Stories  []core.UserStory
	Source   string // local or ai
	Adapter  string // adapter name when Source is ai
	Fallback string // why the AI reply was not used, if one was tried

	// FallbackKind classifies Fallback when the enhancer reported it.
	FallbackKind llm.Kind

	// Set when Source is ai.
	Model       string
	PromptChars int
	ReplyChars  int
}

// Generator runs requests against the engine and an optional AI enhancer.
type Generator struct {
	engine *core.Engine
	ai     *llm.Enhancer
	review ReviewFunc
	log    *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithAI enables the AI path for HTML documents.
func WithAI(e *llm.Enhancer) Option {
	return func(g *Generator) { g.ai = e }
}

// WithReview installs an EPIC review step. Reviewed runs always use the
// local engine, since the AI path never exposes EPICs to edit.
func WithReview(fn ReviewFunc) Option {
	return func(g *Generator) { g.review = fn }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(g *Generator) { g.log = log }
}

// New creates a Generator. A nil engine uses the built-in rule tables.
func New(engine *core.Engine, opts ...Option) *Generator {
	if engine == nil {
		engine = core.NewDefault()
	}
	g := &Generator{engine: engine, log: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Engine returns the local engine.
func (g *Generator) Engine() *core.Engine {
	return g.engine
}

// Generate produces one document. It only fails when the context ends, the
// review step fails, or rendering fails; AI problems fall back to the engine.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Type == "" {
		req.Type = core.DocBRD
	}
	if req.Format == "" {
		req.Format = render.HTML
	}

	a := g.engine.Analyze(req.Input)
	res := &Result{
		Name:     req.Name,
		Analysis: a,
		Source:   SourceLocal,
	}

	if g.review != nil {
		epics, err := g.review(ctx, a.Domain, a.Epics)
		if err != nil {
			return nil, fmt.Errorf("review epics: %w", err)
		}
		if len(epics) > 0 {
			res.Analysis.Epics = epics
		}
	} else if g.ai != nil && req.Format == render.HTML {
		reply, err := g.ai.Generate(ctx, req.Type, a.Input)
		switch {
		case err == nil:
			html, err := render.Wrap(a.Input.Project, req.Type, reply.HTML)
			if err != nil {
				return nil, err
			}
			res.Source = SourceAI
			res.Adapter = g.ai.Adapter().Name()
			res.Model = reply.Model
			res.PromptChars = reply.PromptChars
			res.ReplyChars = reply.ReplyChars
			res.Document = core.Document{
				Project: a.Input.Project,
				Version: a.Input.Version,
				Type:    req.Type,
				Domain:  a.Domain,
				HTML:    html,
			}
			return res, nil
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			res.Fallback = err.Error()
			if ge, ok := llm.IsGenerationError(err); ok {
				res.FallbackKind = ge.Kind
			}
			g.log.Warn("ai generation rejected, using local engine",
				zap.String("name", req.Name),
				zap.String("kind", string(res.FallbackKind)),
				zap.Error(err),
			)
		}
	}

	doc, err := render.Document(g.engine, res.Analysis, req.Type, req.Format)
	if err != nil {
		return nil, err
	}
	res.Document = doc
	res.Stories = g.engine.StoriesForEpics(res.Analysis.Epics, res.Analysis.Domain)

	g.log.Debug("document generated",
		zap.String("name", req.Name),
		zap.String("type", string(req.Type)),
		zap.String("domain", string(a.Domain)),
		zap.Int("epics", len(res.Analysis.Epics)),
		zap.String("source", res.Source),
	)
	return res, nil
}

// GenerateAll runs requests concurrently, at most limit at a time (0 means
// unlimited). Results keep request order. The first error cancels the rest.
func (g *Generator) GenerateAll(ctx context.Context, reqs []Request, limit int) ([]*Result, error) {
	results := make([]*Result, len(reqs))

	eg, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		eg.SetLimit(limit)
	}
	for i, req := range reqs {
		eg.Go(func() error {
			res, err := g.Generate(ctx, req)
			if err != nil {
				return fmt.Errorf("%s: %w", req.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
