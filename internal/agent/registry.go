package agent

import (
	"fmt"
	"net/http"
	"time"

	"github.com/iishyfishyy/llmcmd/internal/config"
)

// Factory builds a Model for a definition using the resolved key
type Factory func(def config.ModelDefinition, key string) (Model, error)

// BuiltinModels are always available; user definitions with the same ID
// replace them
var BuiltinModels = []config.ModelDefinition{
	{
		ID:        "gpt-4o-mini",
		Aliases:   []string{"4o-mini"},
		Provider:  config.ProviderOpenAI,
		KeyAlias:  "openai",
		KeyEnvVar: "OPENAI_API_KEY",
	},
	{
		ID:        "gpt-4o",
		Aliases:   []string{"4o"},
		Provider:  config.ProviderOpenAI,
		KeyAlias:  "openai",
		KeyEnvVar: "OPENAI_API_KEY",
	},
	{
		ID:        "claude-3-5-sonnet-latest",
		Aliases:   []string{"claude-3.5-sonnet"},
		Provider:  config.ProviderAnthropic,
		KeyAlias:  "anthropic",
		KeyEnvVar: "ANTHROPIC_API_KEY",
		MaxTokens: 1024,
	},
	{
		ID:       "llama3.2",
		Provider: config.ProviderOllama,
	},
	{
		ID:       "claude-code",
		Provider: config.ProviderClaudeCLI,
	},
}

// Registry resolves model identifiers to definitions and builds backends
type Registry struct {
	defs      []config.ModelDefinition
	defaultID string
	factories map[config.ProviderType]Factory
}

// NewRegistry creates a registry from the built-in models plus the ones
// declared in cfg
func NewRegistry(cfg *config.Config) *Registry {
	r := &Registry{
		defaultID: cfg.DefaultModel,
		factories: map[config.ProviderType]Factory{},
	}

	overridden := map[string]bool{}
	for _, def := range cfg.Models {
		overridden[def.ID] = true
	}
	for _, def := range BuiltinModels {
		if !overridden[def.ID] {
			r.defs = append(r.defs, def)
		}
	}
	r.defs = append(r.defs, cfg.Models...)

	client := &http.Client{Timeout: 60 * time.Second}
	r.Register(config.ProviderOpenAI, func(def config.ModelDefinition, key string) (Model, error) {
		return NewOpenAIModel(def, key), nil
	})
	r.Register(config.ProviderOllama, func(def config.ModelDefinition, key string) (Model, error) {
		return NewOpenAIModel(def, key), nil
	})
	r.Register(config.ProviderAnthropic, func(def config.ModelDefinition, key string) (Model, error) {
		return NewAnthropicModel(def, key, client), nil
	})
	r.Register(config.ProviderClaudeCLI, func(def config.ModelDefinition, key string) (Model, error) {
		if !IsClaudeCLIInstalled() {
			return nil, fmt.Errorf("claude CLI not found in PATH")
		}
		return NewClaudeCLIModel(""), nil
	})

	return r
}

// Register sets the factory used for a provider
func (r *Registry) Register(provider config.ProviderType, factory Factory) {
	r.factories[provider] = factory
}

// DefaultID returns the configured default model identifier
func (r *Registry) DefaultID() string {
	return r.defaultID
}

// Definitions returns every known model, built-ins first
func (r *Registry) Definitions() []config.ModelDefinition {
	return append([]config.ModelDefinition(nil), r.defs...)
}

// Lookup finds a model by ID or alias. Later definitions win, so user
// models shadow built-in aliases.
func (r *Registry) Lookup(id string) (config.ModelDefinition, error) {
	for i := len(r.defs) - 1; i >= 0; i-- {
		def := r.defs[i]
		if def.ID == id {
			return def, nil
		}
		for _, alias := range def.Aliases {
			if alias == id {
				return def, nil
			}
		}
	}
	return config.ModelDefinition{}, fmt.Errorf("%w: %s", ErrUnknownModel, id)
}

// Open builds the backend for def
func (r *Registry) Open(def config.ModelDefinition, key string) (Model, error) {
	factory, ok := r.factories[def.Provider]
	if !ok {
		return nil, fmt.Errorf("model %s: unsupported provider %q", def.ID, def.Provider)
	}
	return factory(def, key)
}
