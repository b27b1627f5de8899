package output

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dhabedank/brdgen/internal/core"
	"github.com/dhabedank/brdgen/internal/generator"
)

// Export is the JSON shape of a generated document.
type Export struct {
	Document core.Document    `json:"document"`
	Epics    []core.Epic      `json:"epics"`
	Stories  []core.UserStory `json:"stories,omitempty"`
	Source   string           `json:"source"`
	Adapter  string           `json:"adapter,omitempty"`
	Fallback string           `json:"fallback,omitempty"`
}

// NewExport builds the JSON shape for a result.
func NewExport(res *generator.Result) Export {
	return Export{
		Document: res.Document,
		Epics:    res.Analysis.Epics,
		Stories:  res.Stories,
		Source:   res.Source,
		Adapter:  res.Adapter,
		Fallback: res.Fallback,
	}
}

// JSONAdapter outputs the document with its EPICs and stories as JSON.
type JSONAdapter struct{}

// NewJSONAdapter creates a JSON adapter.
func NewJSONAdapter() *JSONAdapter {
	return &JSONAdapter{}
}

func (a *JSONAdapter) Name() string {
	return "json"
}

func (a *JSONAdapter) IsAvailable() (bool, error) {
	return true, nil // Always available
}

func (a *JSONAdapter) Write(_ context.Context, res *generator.Result, config Config) (*WriteResult, error) {
	out, err := json.MarshalIndent(NewExport(res), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return writeBytes(a.Name(), append(out, '\n'), FileName(res, "json"), config)
}
