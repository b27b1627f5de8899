// Package review lets a person edit synthesized EPICs in $EDITOR before
// user stories and documents are built from them.
package review

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/dhabedank/brdgen/internal/core"
)

// ErrCancelled is returned when the edited file is left empty.
var ErrCancelled = errors.New("review cancelled")

// EditFunc opens path for editing and returns once the user is done.
type EditFunc func(ctx context.Context, path string) error

// Reviewer round-trips EPICs through a text file.
type Reviewer struct {
	engine *core.Engine
	edit   EditFunc
}

// New creates a Reviewer. A nil edit func uses OpenEditor.
func New(engine *core.Engine, edit EditFunc) *Reviewer {
	if edit == nil {
		edit = OpenEditor
	}
	return &Reviewer{engine: engine, edit: edit}
}

// Review writes the EPICs to a temp file, opens it, and rebuilds EPICs from
// what was saved.
func (r *Reviewer) Review(ctx context.Context, domain core.Domain, epics []core.Epic) ([]core.Epic, error) {
	tmpFile, err := os.CreateTemp("", "brdgen-epics-*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.WriteString(Format(epics)); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	tmpFile.Close()

	if err := r.edit(ctx, tmpFile.Name()); err != nil {
		return nil, fmt.Errorf("failed to open editor: %w", err)
	}

	edited, err := os.ReadFile(tmpFile.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to read edited file: %w", err)
	}
	return r.Parse(string(edited), domain)
}

// Format renders EPICs in the editable layout.
func Format(epics []core.Epic) string {
	var sb strings.Builder

	sb.WriteString("# EPIC Review\n")
	sb.WriteString("# -----------\n")
	sb.WriteString("# Reorder blocks to change EPIC order; numbers are reassigned on save.\n")
	sb.WriteString("# Edit titles after the colon and requirement bullets inline.\n")
	sb.WriteString("# Delete a bullet to drop a requirement; an EPIC with no bullets is removed.\n")
	sb.WriteString("# Add an EPIC with a new \"EPIC-NN: Title\" line, \"Requirements:\" and bullets.\n")
	sb.WriteString("# Requirements of 10 characters or fewer are ignored.\n")
	sb.WriteString("# Lines starting with # are ignored. Empty file to cancel.\n")
	sb.WriteString("# ---\n\n")

	for _, epic := range epics {
		fmt.Fprintf(&sb, "%s: %s\n", epic.ID, epic.Title)
		sb.WriteString("Requirements:\n")
		for _, fr := range epic.FunctionalRequirements {
			fmt.Fprintf(&sb, "• %s\n", fr)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Parse rebuilds EPICs from edited text. EPIC ids are renumbered in the
// order they appear.
func (r *Reviewer) Parse(content string, domain core.Domain) ([]core.Epic, error) {
	var kept []string
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		kept = append(kept, line)
	}
	text := strings.Join(kept, "\n")
	if strings.TrimSpace(text) == "" {
		return nil, ErrCancelled
	}
	if !core.IsStructured(text) {
		return nil, fmt.Errorf("no EPIC-NN headings in edited file")
	}

	reqs := r.engine.Extract(text)
	renumber := map[string]string{}
	for i := range reqs {
		id, ok := renumber[reqs[i].EpicID]
		if !ok {
			id = core.FormatEpicID(len(renumber) + 1)
			renumber[reqs[i].EpicID] = id
		}
		reqs[i].EpicID = id
	}
	return r.engine.Synthesize(reqs, domain), nil
}

// OpenEditor opens $EDITOR (or $VISUAL, nano, vim, vi) on path.
func OpenEditor(ctx context.Context, path string) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"nano", "vim", "vi"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found - set $EDITOR environment variable")
	}

	// $EDITOR may carry flags, e.g. "code --wait".
	args := strings.Fields(editor)
	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
