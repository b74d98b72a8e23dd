package agent

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/iishyfishyy/llmcmd/internal/config"
)

const defaultOllamaURL = "http://localhost:11434/v1"

// OpenAIModel talks to the OpenAI chat completion API, or to any
// OpenAI-compatible endpoint such as Ollama's
type OpenAIModel struct {
	client    *openai.Client
	name      string
	maxTokens int
}

// NewOpenAIModel creates a chat completion backend for def
func NewOpenAIModel(def config.ModelDefinition, key string) *OpenAIModel {
	cfg := openai.DefaultConfig(key)
	switch {
	case def.BaseURL != "":
		cfg.BaseURL = def.BaseURL
	case def.Provider == config.ProviderOllama:
		cfg.BaseURL = defaultOllamaURL
	}

	name := def.Name
	if name == "" {
		name = def.ID
	}

	return &OpenAIModel{
		client:    openai.NewClientWithConfig(cfg),
		name:      name,
		maxTokens: def.MaxTokens,
	}
}

// Prompt implements Model
func (o *OpenAIModel) Prompt(ctx context.Context, prompt, system string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.name,
		MaxTokens: o.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: system,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", o.name)
	}
	return resp.Choices[0].Message.Content, nil
}
