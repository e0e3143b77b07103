package pipeline

import (
	"log/slog"

	"github.com/joseph-ayodele/pa-autofill/internal/common"
	"github.com/joseph-ayodele/pa-autofill/internal/llm"
	"github.com/joseph-ayodele/pa-autofill/internal/llm/anthropic"
	"github.com/joseph-ayodele/pa-autofill/internal/llm/openai"
)

// NewFieldExtractor builds the configured provider client.
func NewFieldExtractor(cfg common.LLMConfig, logger *slog.Logger) (llm.FieldExtractor, error) {
	switch cfg.Provider {
	case common.ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, common.NewConfigError("OPENAI_API_KEY is required for provider openai")
		}
		return openai.NewClient(openai.Config{
			APIKey:      cfg.OpenAIKey,
			Model:       cfg.OpenAIModel,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
			RetryMax:    cfg.RetryMax,
		}, logger), nil
	case common.ProviderAnthropic:
		if cfg.AnthropicKey == "" {
			return nil, common.NewConfigError("ANTHROPIC_API_KEY is required for provider anthropic")
		}
		return anthropic.NewClient(anthropic.Config{
			APIKey:      cfg.AnthropicKey,
			Model:       cfg.AnthropicModel,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
			RetryMax:    cfg.RetryMax,
		}, logger), nil
	default:
		return nil, common.NewConfigError("unsupported provider: " + cfg.Provider)
	}
}
