package floorplan

import (
	"context"
	"fmt"
	"time"

	"github.com/Terryzhang-jp/floorplan-label-maker/config"
	"github.com/Terryzhang-jp/floorplan-label-maker/vision"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Analyzer sends floor plans to a vision model and parses the replies.
// It holds no mutable state and is safe for concurrent use.
type Analyzer struct {
	cfg   config.Config
	model vision.Model
}

// New creates an Analyzer around an existing model. The config is
// validated first; a config error aborts construction.
func New(cfg config.Config, model vision.Model) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if model == nil {
		return nil, fmt.Errorf("%w: no model provided", config.ErrConfiguration)
	}
	return &Analyzer{cfg: cfg, model: model}, nil
}

// NewFromConfig creates an Analyzer with the provider selected in cfg.
func NewFromConfig(ctx context.Context, cfg config.Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	model, err := vision.NewModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(cfg, model)
}

// Config returns the configuration the analyzer was built with.
func (a *Analyzer) Config() config.Config {
	return a.cfg
}

// ValidateFeatures checks features against the configured word range.
func (a *Analyzer) ValidateFeatures(features []string) bool {
	return ValidateFeatures(features, a.cfg.MinWordsPerFeature, a.cfg.MaxWordsPerFeature)
}

// CheckQuality checks result against the configured feature rules.
func (a *Analyzer) CheckQuality(result *Result) []Issue {
	return CheckQuality(result, a.cfg)
}

// Analyze loads the image at imageRef, asks the model for its features and
// parses the reply. Any failure yields a nil Analysis and an error whose
// kind can be tested with errors.Is.
func (a *Analyzer) Analyze(ctx context.Context, imageRef string) (*Analysis, error) {
	requestID := uuid.NewString()
	logger := log.With().Str("requestID", requestID).Str("image", imageRef).Logger()

	analysis, err := a.analyze(ctx, requestID, imageRef)
	if err != nil {
		logger.Error().Err(err).Msg("error analyzing floor plan")
		return nil, fmt.Errorf("error analyzing floor plan %s: %w", imageRef, err)
	}
	return analysis, nil
}

func (a *Analyzer) analyze(ctx context.Context, requestID, imageRef string) (*Analysis, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, a.cfg.RequestTimeout)
	defer cancel()

	image, err := vision.LoadImage(ctx, imageRef, a.cfg.MaxImageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImageLoad, err)
	}

	req := AnalysisRequest{
		ID:     requestID,
		Image:  image,
		Prompt: BuildPrompt(),
	}

	resp, err := a.model.Generate(ctx, req.Prompt, req.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExternalService, err)
	}

	log.Debug().Str("requestID", req.ID).Str("response", resp.Text).Msg("model response")

	result, err := ParseResponse(resp.Text)
	if err != nil {
		return nil, err
	}

	duration := time.Since(start)

	log.Info().
		Str("requestID", req.ID).
		Str("model", a.model.Name()).
		Int("interiorCount", len(result.Interior)).
		Int("exteriorCount", len(result.Exterior)).
		Int64("inputTokens", resp.Usage.InputTokens).
		Int64("outputTokens", resp.Usage.OutputTokens).
		Float64("costUSD", resp.Usage.CostUSD).
		Dur("duration", duration).
		Msg("floor plan vision llm call")

	return &Analysis{
		RequestID: req.ID,
		Source:    image.Source,
		Model:     a.model.Name(),
		Result:    result,
		Usage:     resp.Usage,
		Duration:  duration,
	}, nil
}
