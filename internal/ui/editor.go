package ui

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	promptPrefix       = "> "
	continuationPrefix = "  "
)

var cursorStyle = lipgloss.NewStyle().Reverse(true)

// editor keeps the command buffer in a bubbles textinput (single-line) or
// textarea (multi-line) and renders it with shell highlighting. In
// single-line mode Enter submits; in multi-line mode Enter inserts a line
// break and Meta-Enter, Esc followed by Enter, or Ctrl-D submit.
type editor struct {
	input       textinput.Model
	area        textarea.Model
	multiline   bool
	escPending  bool
	submitted   bool
	aborted     bool
	highlighter *Highlighter
}

func newEditor(text string, multiline bool, h *Highlighter) *editor {
	e := &editor{multiline: multiline, highlighter: h}
	if multiline {
		ta := textarea.New()
		ta.Prompt = ""
		ta.ShowLineNumbers = false
		ta.CharLimit = 0
		ta.MaxHeight = 0
		ta.MaxWidth = 0
		ta.SetWidth(4096)
		ta.Focus()
		ta.SetValue(text)
		e.area = ta
	} else {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 0
		ti.Focus()
		ti.SetValue(text)
		ti.CursorEnd()
		e.input = ti
	}
	return e
}

// Value returns the current buffer
func (e *editor) Value() string {
	if e.multiline {
		return e.area.Value()
	}
	return e.input.Value()
}

// cursor returns the rune offset of the cursor in Value
func (e *editor) cursor() int {
	if !e.multiline {
		return e.input.Position()
	}
	lines := strings.Split(e.area.Value(), "\n")
	pos := 0
	for _, line := range lines[:e.area.Line()] {
		pos += utf8.RuneCountInString(line) + 1
	}
	li := e.area.LineInfo()
	return pos + li.StartColumn + li.ColumnOffset
}

func (e *editor) Init() tea.Cmd {
	return nil
}

func (e *editor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if cmd, handled := e.handleKey(key); handled {
			return e, cmd
		}
		msg = e.flatten(key)
	}

	var cmd tea.Cmd
	if e.multiline {
		e.area, cmd = e.area.Update(msg)
	} else {
		e.input, cmd = e.input.Update(msg)
	}
	return e, cmd
}

// handleKey deals with submit and abort; everything else goes to the buffer
func (e *editor) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	escPending := e.escPending
	e.escPending = false

	switch msg.Type {
	case tea.KeyCtrlC:
		e.aborted = true
		return tea.Quit, true
	case tea.KeyEsc:
		e.escPending = true
		return nil, true
	case tea.KeyEnter:
		if !e.multiline || msg.Alt || escPending {
			e.submitted = true
			return tea.Quit, true
		}
	case tea.KeyCtrlD:
		if e.multiline || e.Value() == "" {
			e.submitted = true
			return tea.Quit, true
		}
	}
	return nil, false
}

// flatten drops carriage returns and, in single-line mode, turns pasted
// line breaks into spaces
func (e *editor) flatten(msg tea.KeyMsg) tea.KeyMsg {
	if len(msg.Runes) == 0 {
		return msg
	}
	runes := make([]rune, 0, len(msg.Runes))
	for _, r := range msg.Runes {
		switch {
		case r == '\r':
			continue
		case r == '\n' && !e.multiline:
			r = ' '
		}
		runes = append(runes, r)
	}
	msg.Runes = runes
	return msg
}

func (e *editor) View() string {
	var styles []lipgloss.Style
	if e.highlighter != nil {
		styles = e.highlighter.Styles(e.Value())
	}
	showCursor := !e.submitted && !e.aborted

	var b strings.Builder
	var run strings.Builder
	runStyle := -1
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if runStyle >= 0 && runStyle < len(styles) {
			b.WriteString(styles[runStyle].Render(run.String()))
		} else {
			b.WriteString(run.String())
		}
		run.Reset()
	}

	b.WriteString(promptPrefix)
	buf := []rune(e.Value())
	cursor := e.cursor()
	for i, r := range buf {
		atCursor := showCursor && i == cursor
		if r == '\n' || atCursor {
			flush()
			runStyle = -1
			if r == '\n' {
				if atCursor {
					b.WriteString(cursorStyle.Render(" "))
				}
				b.WriteString("\n" + continuationPrefix)
			} else {
				b.WriteString(cursorStyle.Render(string(r)))
			}
			continue
		}
		if i < len(styles) && (runStyle < 0 || !sameStyle(styles[runStyle], styles[i])) {
			flush()
			runStyle = i
		}
		run.WriteRune(r)
	}
	flush()
	if showCursor && cursor == len(buf) {
		b.WriteString(cursorStyle.Render(" "))
	}
	if !showCursor {
		b.WriteString("\n")
	}
	return b.String()
}

func sameStyle(a, b lipgloss.Style) bool {
	return a.GetForeground() == b.GetForeground() &&
		a.GetBold() == b.GetBold() &&
		a.GetItalic() == b.GetItalic()
}
