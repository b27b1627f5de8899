package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dhabedank/brdgen/internal/generator"
	"github.com/dhabedank/brdgen/internal/render"
)

// FileAdapter writes the rendered document body.
type FileAdapter struct {
	format render.Format
}

// NewFileAdapter creates an adapter for html or markdown documents.
func NewFileAdapter(f render.Format) *FileAdapter {
	return &FileAdapter{format: f}
}

func (a *FileAdapter) Name() string {
	return string(a.format)
}

// Format is the render format the generator must produce for this adapter.
func (a *FileAdapter) Format() render.Format {
	return a.format
}

func (a *FileAdapter) IsAvailable() (bool, error) {
	return true, nil
}

func (a *FileAdapter) Write(_ context.Context, res *generator.Result, config Config) (*WriteResult, error) {
	ext := "html"
	if a.format == render.Markdown {
		ext = "md"
	}
	return writeBytes(a.Name(), []byte(res.Document.HTML), FileName(res, ext), config)
}

func writeBytes(name string, body []byte, file string, config Config) (*WriteResult, error) {
	result := &WriteResult{Adapter: name, Bytes: len(body)}

	if config.Dir == "-" {
		result.Path = "-"
		if config.DryRun {
			return result, nil
		}
		if _, err := config.stdout().Write(body); err != nil {
			return nil, fmt.Errorf("failed to write output: %w", err)
		}
		return result, nil
	}

	dir := config.Dir
	if dir == "" {
		dir = "."
	}
	result.Path = filepath.Join(dir, file)
	if config.DryRun {
		return result, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := os.WriteFile(result.Path, body, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	return result, nil
}
