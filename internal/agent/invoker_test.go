package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iishyfishyy/llmcmd/internal/config"
)

type call struct {
	prompt, system string
}

func newTestInvoker(keys config.Keys, env map[string]string) (*Invoker, *[]call, *string) {
	var calls []call
	var usedKey string
	r := NewRegistry(config.Default())
	fake := func(def config.ModelDefinition, key string) (Model, error) {
		usedKey = key
		return ModelFunc(func(ctx context.Context, prompt, system string) (string, error) {
			calls = append(calls, call{prompt, system})
			return "  git status\n", nil
		}), nil
	}
	r.Register(config.ProviderOpenAI, fake)
	r.Register(config.ProviderOllama, fake)

	return &Invoker{
		Registry: r,
		Keys:     keys,
		Getenv:   func(name string) string { return env[name] },
	}, &calls, &usedKey
}

func TestInvoker_DefaultModelAndSystemPrompt(t *testing.T) {
	inv, calls, key := newTestInvoker(config.Keys{"openai": "stored"}, nil)

	session, err := inv.Open("", "", "")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultModel, session.ModelID)
	assert.Equal(t, SystemPrompt, session.System)
	assert.Equal(t, "stored", *key)

	out, err := session.Prompt(context.Background(), "show status")
	require.NoError(t, err)
	assert.Equal(t, "git status", out)
	require.Len(t, *calls, 1)
	assert.Equal(t, call{"show status", SystemPrompt}, (*calls)[0])
}

func TestInvoker_SystemOverride(t *testing.T) {
	inv, calls, _ := newTestInvoker(config.Keys{"openai": "stored"}, nil)

	session, err := inv.Open("4o", "be terse", "")
	require.NoError(t, err)
	_, err = session.Prompt(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "be terse", (*calls)[0].system)
	assert.Equal(t, "gpt-4o", session.ModelID)
}

func TestInvoker_UnknownModel(t *testing.T) {
	inv, _, _ := newTestInvoker(nil, nil)
	_, err := inv.Open("nope", "", "")
	assert.True(t, errors.Is(err, ErrUnknownModel))
}

func TestInvoker_MissingKey(t *testing.T) {
	inv, _, _ := newTestInvoker(nil, nil)
	_, err := inv.Open("gpt-4o", "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingKey))
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestInvoker_ModelWithoutKey(t *testing.T) {
	inv, _, key := newTestInvoker(nil, nil)
	session, err := inv.Open("llama3.2", "", "ignored")
	require.NoError(t, err)
	assert.Equal(t, "llama3.2", session.ModelID)
	assert.Empty(t, *key)
}

func TestInvoker_BackendError(t *testing.T) {
	r := NewRegistry(config.Default())
	r.Register(config.ProviderOllama, func(config.ModelDefinition, string) (Model, error) {
		return ModelFunc(func(context.Context, string, string) (string, error) {
			return "", errors.New("connection refused")
		}), nil
	})
	inv := &Invoker{Registry: r}

	session, err := inv.Open("llama3.2", "", "")
	require.NoError(t, err)
	_, err = session.Prompt(context.Background(), "p")
	assert.ErrorContains(t, err, "failed to prompt model llama3.2: connection refused")
}

func TestResolveKey(t *testing.T) {
	keys := config.Keys{"openai": "stored-openai", "work": "stored-work"}
	env := map[string]string{"OPENAI_API_KEY": "from-env"}
	getenv := func(name string) string { return env[name] }

	tests := []struct {
		name     string
		explicit string
		keys     config.Keys
		want     string
	}{
		{"explicit literal", "sk-literal", keys, "sk-literal"},
		{"explicit alias", "work", keys, "stored-work"},
		{"stored alias", "", keys, "stored-openai"},
		{"environment", "", config.Keys{}, "from-env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveKey(tt.explicit, "openai", "OPENAI_API_KEY", tt.keys, getenv)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ResolveKey("", "anthropic", "ANTHROPIC_API_KEY", config.Keys{}, getenv)
	assert.True(t, errors.Is(err, ErrMissingKey))
}
