// Package output writes generated documents to their destinations.
package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/dhabedank/brdgen/internal/generator"
	"github.com/dhabedank/brdgen/internal/render"
)

// Adapter is the interface all output adapters must implement.
type Adapter interface {
	// Name returns the adapter identifier for logging.
	Name() string

	// IsAvailable checks if the adapter can be used.
	IsAvailable() (bool, error)

	// Write stores one generated document.
	Write(ctx context.Context, res *generator.Result, config Config) (*WriteResult, error)
}

// WriteResult describes where a document went.
type WriteResult struct {
	Adapter string
	Path    string // file path, or "-" for stdout
	ID      string // store id, for the store adapter
	Bytes   int
}

// Config configures output adapter behavior.
type Config struct {
	// Dir receives files; "-" writes to Stdout.
	Dir string

	// Stdout is used when Dir is "-". Defaults to os.Stdout.
	Stdout io.Writer

	// DryRun reports destinations without writing.
	DryRun bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Dir: "."}
}

func (c Config) stdout() io.Writer {
	if c.Stdout != nil {
		return c.Stdout
	}
	return os.Stdout
}

// Names lists the accepted output adapter names.
var Names = []string{"html", "markdown", "json"}

// ForName returns the file adapter for an output name.
func ForName(name string) (Adapter, error) {
	switch strings.ToLower(name) {
	case "", "html":
		return NewFileAdapter(render.HTML), nil
	case "markdown", "md":
		return NewFileAdapter(render.Markdown), nil
	case "json":
		return NewJSONAdapter(), nil
	}
	return nil, fmt.Errorf("unknown output %q (want one of %s)", name, strings.Join(Names, ", "))
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// FileName builds "<project>-<type>-v<version>.<ext>" for a result.
func FileName(res *generator.Result, ext string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(res.Document.Project), "-"), "-")
	if slug == "" {
		slug = "document"
	}
	return fmt.Sprintf("%s-%s-v%d.%s", slug, strings.ToLower(string(res.Document.Type)), res.Document.Version, ext)
}
