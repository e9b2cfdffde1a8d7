package assistant

import (
	"context"

	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/iliyamo/food-ordering-assistant/internal/config"
)

// NewGoogleAI returns a Gemini client for the configured model.
func NewGoogleAI(ctx context.Context, cfg config.AssistantConfig) (*googleai.GoogleAI, error) {
	return googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(cfg.Model),
	)
}
