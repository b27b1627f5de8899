package output

import (
	"context"

	"github.com/dhabedank/brdgen/internal/generator"
	"github.com/dhabedank/brdgen/internal/store"
)

// StoreAdapter records documents in the history database.
type StoreAdapter struct {
	store  *store.Store
	format string
}

// NewStoreAdapter creates a store adapter. format labels the stored body.
func NewStoreAdapter(s *store.Store, format string) *StoreAdapter {
	return &StoreAdapter{store: s, format: format}
}

func (a *StoreAdapter) Name() string {
	return "store"
}

func (a *StoreAdapter) IsAvailable() (bool, error) {
	return a.store != nil, nil
}

func (a *StoreAdapter) Write(ctx context.Context, res *generator.Result, config Config) (*WriteResult, error) {
	result := &WriteResult{Adapter: a.Name(), Bytes: len(res.Document.HTML)}
	if config.DryRun {
		return result, nil
	}

	in := res.Analysis.Input
	rec, err := a.store.Save(ctx, store.Record{
		Project: res.Document.Project,
		Version: res.Document.Version,
		Type:    res.Document.Type,
		Domain:  res.Document.Domain,
		Format:  a.format,
		Source:  res.Source,
		Body:    res.Document.HTML,
		Input:   &in,
	})
	if err != nil {
		return nil, err
	}
	result.ID = rec.ID
	return result, nil
}
