package vision

import "context"

// Image is a loaded image ready to be sent to a model.
type Image struct {
	Data     []byte
	MIMEType string
	Source   string // Local path or URL the image was loaded from
}

// Usage contains token usage and cost information.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
	CostUSD      float64
}

// Response is the raw reply of a model call.
type Response struct {
	Text  string
	Usage Usage
}

// Model submits a prompt together with an image to a multimodal model and
// returns whatever text the model replied with. The text is not guaranteed
// to be valid JSON.
type Model interface {
	Generate(ctx context.Context, prompt string, image Image) (*Response, error)
	// Name returns the model identifier used for requests.
	Name() string
}

// Per million tokens
type pricing struct {
	input  float64
	output float64
}

var modelPricing = map[string]pricing{
	"gemini-1.5-flash":       {input: 0.075, output: 0.30},
	"gemini-1.5-pro":         {input: 1.25, output: 5.00},
	"gemini-2.0-flash":       {input: 0.10, output: 0.40},
	"gemini-2.5-flash":       {input: 0.30, output: 2.50},
	"gemini-2.5-flash-lite":  {input: 0.10, output: 0.40},
	"gemini-3-flash-preview": {input: 0.50, output: 3.00},
	"gpt-4o-mini":            {input: 0.15, output: 0.60},
	"gpt-4o":                 {input: 2.50, output: 10.00},
}

// calculateCost estimates the USD cost of a call. Unknown models cost 0.
func calculateCost(model string, inputTokens, outputTokens int64) float64 {
	p, ok := modelPricing[model]
	if !ok {
		return 0
	}
	inputCost := float64(inputTokens) / 1_000_000 * p.input
	outputCost := float64(outputTokens) / 1_000_000 * p.output
	return inputCost + outputCost
}
