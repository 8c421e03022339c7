package vision

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// GeminiConfig configures a GeminiModel.
type GeminiConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint. Empty uses the public endpoint.
	BaseURL string
}

// GeminiModel uses Google's Gemini API for image analysis.
type GeminiModel struct {
	client *genai.Client
	model  string
}

// NewGeminiModel creates a new Gemini-backed model.
func NewGeminiModel(ctx context.Context, cfg GeminiConfig) (*GeminiModel, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiModel{client: client, model: cfg.Model}, nil
}

// Name implements Model.
func (g *GeminiModel) Name() string {
	return g.model
}

// Generate implements Model. The prompt goes first, followed by the image.
func (g *GeminiModel) Generate(ctx context.Context, prompt string, image Image) (*Response, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		{InlineData: &genai.Blob{Data: image.Data, MIMEType: image.MIMEType}},
	}

	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from Gemini")
	}

	text := result.Text()
	log.Debug().Str("response", text).Msg("gemini vision response")

	usage := Usage{}
	if result.UsageMetadata != nil {
		usage.InputTokens = int64(result.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int64(result.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int64(result.UsageMetadata.TotalTokenCount)
		usage.CostUSD = calculateCost(g.model, usage.InputTokens, usage.OutputTokens)
	}

	return &Response{Text: text, Usage: usage}, nil
}
