package ai

import (
	"context"
	"fmt"

	"github.com/receiptlab/receipt-extraction-service/internal/models"
)

// Provider is the single capability every model back-end exposes: given a
// prompt and an optional image payload, return the model's free-form text.
// Vision-capable and text-only providers implement the same interface;
// text-only ones reject image input with an error.
type Provider interface {
	Name() string
	Invoke(ctx context.Context, prompt string, image []byte) (string, error)
}

// NewProvider builds the adapter for a provider name using the configured
// credentials. The model argument overrides the configured default model when
// non-empty, so several strategies can share one provider with different
// models.
func NewProvider(ctx context.Context, name, model string, cfg models.AIConfig) (Provider, error) {
	switch name {
	case "openai":
		if model == "" {
			model = cfg.OpenAI.Model
		}
		return NewOpenAIProvider(cfg.OpenAI, model), nil
	case "gemini":
		if model == "" {
			model = cfg.Gemini.Model
		}
		return NewGeminiProvider(ctx, cfg.Gemini, model)
	case "ollama":
		if model == "" {
			model = cfg.Ollama.Model
		}
		return NewOllamaProvider(cfg.Ollama, model), nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", name)
	}
}
