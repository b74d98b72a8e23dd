package ui

import (
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

// Highlighter assigns a terminal style to every rune of a shell command
type Highlighter struct {
	lexer chroma.Lexer
	style *chroma.Style
}

// NewHighlighter creates a bash highlighter using the named chroma style
func NewHighlighter(styleName string) *Highlighter {
	lexer := lexers.Get("bash")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return &Highlighter{
		lexer: chroma.Coalesce(lexer),
		style: styles.Get(styleName),
	}
}

// Styles returns one style per rune of text. Runes the lexer did not
// account for get the zero style.
func (h *Highlighter) Styles(text string) []lipgloss.Style {
	out := make([]lipgloss.Style, utf8.RuneCountInString(text))
	for i := range out {
		out[i] = lipgloss.NewStyle()
	}

	// EnsureLF is left off so token offsets line up with the buffer.
	it, err := h.lexer.Tokenise(&chroma.TokeniseOptions{State: "root"}, text)
	if err != nil {
		return out
	}

	pos := 0
	for _, tok := range it.Tokens() {
		style := h.tokenStyle(tok.Type)
		for range tok.Value {
			if pos >= len(out) {
				return out
			}
			out[pos] = style
			pos++
		}
	}
	return out
}

func (h *Highlighter) tokenStyle(t chroma.TokenType) lipgloss.Style {
	entry := h.style.Get(t)
	s := lipgloss.NewStyle()
	if entry.Colour.IsSet() {
		s = s.Foreground(lipgloss.Color(entry.Colour.String()))
	}
	if entry.Bold == chroma.Yes {
		s = s.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		s = s.Italic(true)
	}
	return s
}
