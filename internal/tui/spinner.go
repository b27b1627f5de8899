package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

type taskDoneMsg struct{ err error }

// spinnerModel shows a spinner next to a label until its task finishes.
type spinnerModel struct {
	spinner spinner.Model
	label   string
	task    func() error
	start   time.Time
	elapsed time.Duration
	done    bool
	err     error
}

func newSpinnerModel(label string, task func() error) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle
	return spinnerModel{spinner: s, label: label, task: task, start: time.Now()}
}

func (m spinnerModel) Init() tea.Cmd {
	run := func() tea.Msg { return taskDoneMsg{err: m.task()} }
	return tea.Batch(m.spinner.Tick, run)
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDoneMsg:
		m.done = true
		m.err = msg.err
		m.elapsed = time.Since(m.start)
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if !m.done {
		return fmt.Sprintf("%s %s...\n", m.spinner.View(), m.label)
	}
	return RenderStep(m.label, m.elapsed, m.err)
}

// RenderStep formats a finished step as a single status line.
func RenderStep(label string, elapsed time.Duration, err error) string {
	if err != nil {
		return fmt.Sprintf("%s %s %s\n", ErrorStyle.Render("✗"), label, HelpStyle.Render(err.Error()))
	}
	return fmt.Sprintf("%s %s %s\n", SuccessStyle.Render("✓"), label,
		HelpStyle.Render(fmt.Sprintf("(%.1fs)", elapsed.Seconds())))
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// RunWithSpinner runs task while animating label on out. When out is not a
// terminal the spinner is skipped and only the final status line is
// written. The task's error is returned unchanged.
func RunWithSpinner(ctx context.Context, out io.Writer, label string, task func(ctx context.Context) error) error {
	run := func() error { return task(ctx) }

	if !IsTerminal(out) {
		start := time.Now()
		err := run()
		fmt.Fprint(out, RenderStep(label, time.Since(start), err))
		return err
	}

	p := tea.NewProgram(newSpinnerModel(label, run), tea.WithOutput(out), tea.WithInput(nil))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("spinner: %w", err)
	}
	return final.(spinnerModel).err
}
