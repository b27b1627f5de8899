package generator

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/dhabedank/brdgen/internal/core"
)

// InputError reports an input file that cannot be turned into a core.Input.
type InputError struct {
	Path    string
	Field   string
	Message string
}

func (e *InputError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("input error: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("input error in %s: %s - %s", e.Path, e.Field, e.Message)
}

// LoadInput reads a YAML (or JSON) input file. Unknown keys are rejected so
// typos such as "requirement:" do not silently drop content.
func LoadInput(path string) (core.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.Input{}, fmt.Errorf("failed to read input: %w", err)
	}
	in, err := DecodeInput(data)
	if err != nil {
		var ie *InputError
		if errors.As(err, &ie) {
			ie.Path = path
		}
		return core.Input{}, err
	}
	if in.Project == "" {
		in.Project = ProjectFromPath(path)
	}
	return in, nil
}

// DecodeInput parses input YAML and validates it.
func DecodeInput(data []byte) (core.Input, error) {
	var in core.Input
	if len(bytes.TrimSpace(data)) == 0 {
		return in, &InputError{Field: "file", Message: "empty input"}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		return in, &InputError{Field: "yaml", Message: err.Error()}
	}

	if err := in.Validate(); err != nil {
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			return in, &InputError{Field: ve.Field, Message: ve.Message}
		}
		return in, err
	}
	return in, nil
}

// ProjectFromPath derives a project name from a file name:
// "campaign-hub.yaml" becomes "Campaign Hub".
func ProjectFromPath(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	words := strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_' || r == ' ' || r == '.'
	})
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
