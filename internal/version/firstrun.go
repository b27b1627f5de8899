package version

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dhabedank/brdgen/internal/tui"
)

// IsFirstRun reports whether neither ~/.brdgen.yaml nor the
// initialization marker exist.
func IsFirstRun() bool {
	home, err := os.UserHomeDir()
	if err != nil {
		return false
	}
	if _, err := os.Stat(filepath.Join(home, ".brdgen.yaml")); err == nil {
		return false
	}
	if _, err := os.Stat(filepath.Join(stateDir(), ".initialized")); err == nil {
		return false
	}
	return true
}

// MarkInitialized creates the first-run marker.
func MarkInitialized() {
	dir := stateDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(dir, ".initialized"), nil, 0o644)
}

// PrintFirstRunNotice welcomes a new user and records that it did.
func PrintFirstRunNotice(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s Welcome to brdgen!\n", tui.TitleStyle.Render("*"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Quick start:")
	fmt.Fprintf(w, "    1. Describe your project in a YAML file: %s\n", tui.ModelStyle.Render("project, scope, objectives, requirements"))
	fmt.Fprintf(w, "    2. Generate the BRD: %s\n", tui.ModelStyle.Render("brdgen generate project.yaml"))
	fmt.Fprintf(w, "    3. Turn it into an FRD: %s\n", tui.ModelStyle.Render("brdgen frd project-brd-v1.html"))
	fmt.Fprintf(w, "    Optional: %s to enable AI drafting\n", tui.ModelStyle.Render("brdgen setup"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", tui.HelpStyle.Render("Run 'brdgen --help' for all options"))
	fmt.Fprintln(w)

	MarkInitialized()
}
