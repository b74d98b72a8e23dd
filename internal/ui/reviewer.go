package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/iishyfishyy/llmcmd/internal/logging"
)

// MultilineNotice tells the user how to submit a multi-line command
const MultilineNotice = "Multiline command - Meta-Enter or Esc Enter to execute"

var (
	// ErrAborted is returned when the user interrupts the review
	ErrAborted = errors.New("review aborted")
	// ErrNotTerminal is returned when stdin cannot host an interactive prompt
	ErrNotTerminal = errors.New("interactive review requires a terminal")
)

// IsMultiline reports whether command needs the multi-line prompt
func IsMultiline(command string) bool {
	return strings.Contains(command, "\n")
}

// Reviewer lets the user edit a command before it runs
type Reviewer struct {
	In  io.Reader
	Out io.Writer
	// IsTerminal reports whether In is interactive
	IsTerminal  func() bool
	Log         *logging.Logger
	Highlighter *Highlighter
}

// NewReviewer creates a reviewer on the process's stdin and stdout
func NewReviewer(log *logging.Logger) *Reviewer {
	if log == nil {
		log = logging.Discard()
	}
	return &Reviewer{
		In:  os.Stdin,
		Out: os.Stdout,
		IsTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
		Log:         log,
		Highlighter: NewHighlighter("monokai"),
	}
}

// Review opens a prompt pre-filled with command and returns whatever the
// user leaves in the buffer, possibly empty. Log output is held back while
// the prompt owns the terminal.
func (r *Reviewer) Review(ctx context.Context, command string) (string, error) {
	if r.IsTerminal != nil && !r.IsTerminal() {
		return "", ErrNotTerminal
	}

	release := r.Log.Hold()
	defer release()

	model := r.prepare(command)
	program := tea.NewProgram(model,
		tea.WithInput(r.In),
		tea.WithOutput(r.Out),
		tea.WithContext(ctx),
	)
	final, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	ed, ok := final.(*editor)
	if !ok || ed.aborted {
		return "", ErrAborted
	}
	return ed.Value(), nil
}

// prepare announces multi-line mode when needed and builds the editor
func (r *Reviewer) prepare(command string) *editor {
	multiline := IsMultiline(command)
	if multiline {
		fmt.Fprintln(r.Out, MultilineNotice)
	}
	return newEditor(command, multiline, r.Highlighter)
}
