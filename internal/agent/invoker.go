package agent

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/iishyfishyy/llmcmd/internal/config"
	"github.com/iishyfishyy/llmcmd/internal/logging"
)

// Invoker resolves a model, its key and the system instruction
type Invoker struct {
	Registry *Registry
	Keys     config.Keys
	// Getenv looks up key environment variables; defaults to os.Getenv
	Getenv func(string) string
	Log    *logging.Logger
}

// Session is a resolved model ready to be prompted. Every prompt uses the
// same model and system instruction.
type Session struct {
	ModelID string
	System  string
	model   Model
	log     *logging.Logger
}

// Open resolves modelID (falling back to the default model), the key and
// the system instruction. Unknown models and missing keys fail here,
// before anything is sent.
func (i *Invoker) Open(modelID, system, key string) (*Session, error) {
	if modelID == "" {
		modelID = i.Registry.DefaultID()
	}
	def, err := i.Registry.Lookup(modelID)
	if err != nil {
		return nil, err
	}

	resolvedKey := ""
	if def.KeyAlias != "" {
		getenv := i.Getenv
		if getenv == nil {
			getenv = os.Getenv
		}
		resolvedKey, err = ResolveKey(key, def.KeyAlias, def.KeyEnvVar, i.Keys, getenv)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", def.ID, err)
		}
	}

	model, err := i.Registry.Open(def, resolvedKey)
	if err != nil {
		return nil, err
	}

	if system == "" {
		system = SystemPrompt
	}

	log := i.Log
	if log == nil {
		log = logging.Discard()
	}

	return &Session{
		ModelID: def.ID,
		System:  system,
		model:   model,
		log:     log.WithComponent("agent"),
	}, nil
}

// Prompt sends prompt to the model and returns the trimmed response
func (s *Session) Prompt(ctx context.Context, prompt string) (string, error) {
	s.log.WithField("model", s.ModelID).Debug("prompting model")

	response, err := s.model.Prompt(ctx, prompt, s.System)
	if err != nil {
		return "", fmt.Errorf("failed to prompt model %s: %w", s.ModelID, err)
	}
	return strings.TrimSpace(response), nil
}

// ResolveKey finds the key for a model. An explicit value wins; if it names
// a stored alias the stored key is used instead. Then the stored key under
// alias, then the environment variable.
func ResolveKey(explicit, alias, envVar string, keys config.Keys, getenv func(string) string) (string, error) {
	if explicit != "" {
		if stored, ok := keys[explicit]; ok {
			return stored, nil
		}
		return explicit, nil
	}
	if stored, ok := keys[alias]; ok && stored != "" {
		return stored, nil
	}
	if envVar != "" {
		if value := getenv(envVar); value != "" {
			return value, nil
		}
	}

	hint := fmt.Sprintf("run 'llmcmd keys set %s'", alias)
	if envVar != "" {
		hint += fmt.Sprintf(" or set $%s", envVar)
	}
	return "", fmt.Errorf("%w (%s)", ErrMissingKey, hint)
}
