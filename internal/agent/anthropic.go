package agent

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/iishyfishyy/llmcmd/internal/config"
)

// AnthropicModel calls the Anthropic Messages API
type AnthropicModel struct {
	client    anthropic.Client
	name      string
	maxTokens int64
}

// NewAnthropicModel creates a Messages API backend for def. Requests are
// not retried.
func NewAnthropicModel(def config.ModelDefinition, key string, client *http.Client) *AnthropicModel {
	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithMaxRetries(0),
	}
	if def.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(def.BaseURL))
	}
	if client != nil {
		opts = append(opts, option.WithHTTPClient(client))
	}

	name := def.Name
	if name == "" {
		name = def.ID
	}
	maxTokens := int64(def.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 1024
	}
	return &AnthropicModel{
		client:    anthropic.NewClient(opts...),
		name:      name,
		maxTokens: maxTokens,
	}
}

// Prompt implements Model
func (a *AnthropicModel) Prompt(ctx context.Context, prompt, system string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.name),
		MaxTokens: a.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	message, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return text.String(), nil
}
