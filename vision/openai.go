package vision

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"
)

// OpenAIConfig configures an OpenAIModel.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIModel uses OpenAI's chat completions API with image input.
type OpenAIModel struct {
	client openai.Client
	model  string
}

// NewOpenAIModel creates a new OpenAI-backed model. Extra request options
// are appended after the ones derived from cfg.
func NewOpenAIModel(cfg OpenAIConfig, opts ...option.RequestOption) *OpenAIModel {
	clientOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}
	clientOpts = append(clientOpts, opts...)

	return &OpenAIModel{client: openai.NewClient(clientOpts...), model: cfg.Model}
}

// Name implements Model.
func (o *OpenAIModel) Name() string {
	return o.model
}

// Generate implements Model.
func (o *OpenAIModel) Generate(ctx context.Context, prompt string, image Image) (*Response, error) {
	// Encode image as base64 data URL
	b64Data := base64.StdEncoding.EncodeToString(image.Data)
	dataURL := fmt.Sprintf("data:%s;base64,%s", image.MIMEType, b64Data)

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: dataURL,
				}),
			}),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	text := resp.Choices[0].Message.Content
	log.Debug().Str("response", text).Msg("openai vision response")

	usage := Usage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		TotalTokens:  resp.Usage.TotalTokens,
		CostUSD:      calculateCost(o.model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens),
	}

	return &Response{Text: text, Usage: usage}, nil
}
