package vision

import (
	"context"
	"fmt"

	"github.com/Terryzhang-jp/floorplan-label-maker/config"
)

// NewModel creates the model selected by cfg.Provider.
func NewModel(ctx context.Context, cfg config.Config) (Model, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiModel(ctx, GeminiConfig{APIKey: cfg.APIKey, Model: cfg.Model})
	case config.ProviderOpenAI:
		return NewOpenAIModel(OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.Model,
			BaseURL: cfg.OpenAIBaseURL,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", config.ErrConfiguration, cfg.Provider)
	}
}
