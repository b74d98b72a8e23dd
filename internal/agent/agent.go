package agent

import (
	"context"
	"errors"
)

// SystemPrompt is sent with every request unless the user overrides it
const SystemPrompt = `Return only the command to be executed as a raw string, no string delimiters
wrapping it, no yapping, no markdown, no fenced code blocks, what you return
will be passed to the shell directly.
For example, if the user asks: undo last git commit
You return only: git reset --soft HEAD~1`

var (
	// ErrUnknownModel is returned when a model identifier matches no definition
	ErrUnknownModel = errors.New("unknown model")
	// ErrMissingKey is returned when a model needs a key and none can be found
	ErrMissingKey = errors.New("missing API key")
)

// Model represents a language model backend that answers a prompt with text
type Model interface {
	// Prompt sends prompt together with the system instruction and returns
	// the raw response text
	Prompt(ctx context.Context, prompt, system string) (string, error)
}

// ModelFunc adapts a function to the Model interface
type ModelFunc func(ctx context.Context, prompt, system string) (string, error)

// Prompt calls f
func (f ModelFunc) Prompt(ctx context.Context, prompt, system string) (string, error) {
	return f(ctx, prompt, system)
}
