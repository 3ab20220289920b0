// Package llm constructs chat models for the two reasoning tiers used by
// the agents: a quick-think model for routine extraction and a deep-think
// model for planning and synthesis.
package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/aletheia-intel/aletheia/config"
)

// ChatModel is the surface the agents need from a language model. Both
// eino model implementations satisfy it, and tests substitute stubs.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// ToolableChatModel additionally supports binding tool definitions, used
// by the strategist for function calling.
type ToolableChatModel interface {
	ChatModel
	WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error)
}

// NewQuickThinkModel builds the fast model used for extraction and
// routing decisions.
func NewQuickThinkModel(ctx context.Context, cfg *config.Config) (ToolableChatModel, error) {
	return newModel(ctx, cfg, cfg.QuickThinkLLM)
}

// NewDeepThinkModel builds the reasoning model used for planning, risk
// assessment and report synthesis.
func NewDeepThinkModel(ctx context.Context, cfg *config.Config) (ToolableChatModel, error) {
	return newModel(ctx, cfg, cfg.DeepThinkLLM)
}

func newModel(ctx context.Context, cfg *config.Config, name string) (ToolableChatModel, error) {
	if cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("llm: missing API key for provider %q", cfg.LLMProvider)
	}

	switch cfg.LLMProvider {
	case "deepseek":
		return deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			BaseURL:   cfg.BackendURL,
			APIKey:    cfg.LLMAPIKey,
			Model:     name,
			MaxTokens: 4096,
		})
	default:
		maxTokens := 4096
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:   cfg.BackendURL,
			APIKey:    cfg.LLMAPIKey,
			Model:     name,
			MaxTokens: &maxTokens,
		})
	}
}
