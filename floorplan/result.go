package floorplan

import (
	"time"

	"github.com/Terryzhang-jp/floorplan-label-maker/vision"
)

// Result is the structured reply of the model. Exterior is nil when the
// model omitted the exterior key.
type Result struct {
	Interior []string `json:"interior_design_features" yaml:"interior_design_features"`
	Exterior []string `json:"exterior_design_features,omitempty" yaml:"exterior_design_features,omitempty"`
}

// HasExterior reports whether the model returned an exterior list.
func (r *Result) HasExterior() bool {
	return r.Exterior != nil
}

// AnalysisRequest is the transient input of a single model call.
type AnalysisRequest struct {
	ID     string
	Image  vision.Image
	Prompt string
}

// Analysis is the outcome of a successful Analyze call.
type Analysis struct {
	RequestID string
	Source    string
	Model     string
	Result    *Result
	Usage     vision.Usage
	Duration  time.Duration
}
