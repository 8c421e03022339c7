package floorplan

import (
	"fmt"
	"strings"

	"github.com/Terryzhang-jp/floorplan-label-maker/config"
)

// ValidateFeatures reports whether every feature has between minWords and
// maxWords whitespace-separated words, inclusive.
func ValidateFeatures(features []string, minWords, maxWords int) bool {
	for _, feature := range features {
		words := len(strings.Fields(feature))
		if words < minWords || words > maxWords {
			return false
		}
	}
	return true
}

// HasDuplicates reports whether any feature appears more than once.
// Comparison is exact.
func HasDuplicates(features []string) bool {
	seen := make(map[string]struct{}, len(features))
	for _, f := range features {
		if _, ok := seen[f]; ok {
			return true
		}
		seen[f] = struct{}{}
	}
	return false
}

// IssueKind classifies a quality issue.
type IssueKind string

const (
	IssueEmptyInterior    IssueKind = "empty_interior"
	IssueTooFewFeatures   IssueKind = "too_few_features"
	IssueDuplicateFeature IssueKind = "duplicate_feature"
	IssueWordCount        IssueKind = "word_count"
)

// Issue is a single quality problem found in a Result.
type Issue struct {
	Kind     IssueKind `json:"kind" yaml:"kind"`
	Category string    `json:"category" yaml:"category"`
	Feature  string    `json:"feature,omitempty" yaml:"feature,omitempty"`
	Message  string    `json:"message" yaml:"message"`
}

func (i Issue) String() string {
	return i.Message
}

// CheckQuality reports every way result deviates from the configured
// feature rules. The result is not modified. A nil result has no issues.
func CheckQuality(result *Result, cfg config.Config) []Issue {
	if result == nil {
		return nil
	}

	var issues []Issue

	if len(result.Interior) == 0 {
		issues = append(issues, Issue{
			Kind:     IssueEmptyInterior,
			Category: InteriorFeaturesKey,
			Message:  "interior feature list is empty",
		})
	} else if len(result.Interior) < cfg.MinFeatures {
		issues = append(issues, Issue{
			Kind:     IssueTooFewFeatures,
			Category: InteriorFeaturesKey,
			Message:  fmt.Sprintf("interior features should have at least %d items, got %d", cfg.MinFeatures, len(result.Interior)),
		})
	}

	issues = append(issues, checkCategory(InteriorFeaturesKey, result.Interior, cfg)...)
	issues = append(issues, checkCategory(ExteriorFeaturesKey, result.Exterior, cfg)...)

	return issues
}

func checkCategory(category string, features []string, cfg config.Config) []Issue {
	var issues []Issue

	seen := make(map[string]bool, len(features))
	for _, f := range features {
		if seen[f] {
			issues = append(issues, Issue{
				Kind:     IssueDuplicateFeature,
				Category: category,
				Feature:  f,
				Message:  fmt.Sprintf("%s contains duplicate %q", category, f),
			})
			continue
		}
		seen[f] = true

		if !ValidateFeatures([]string{f}, cfg.MinWordsPerFeature, cfg.MaxWordsPerFeature) {
			issues = append(issues, Issue{
				Kind:     IssueWordCount,
				Category: category,
				Feature:  f,
				Message: fmt.Sprintf("feature %q has %d words, expected %d-%d",
					f, len(strings.Fields(f)), cfg.MinWordsPerFeature, cfg.MaxWordsPerFeature),
			})
		}
	}

	return issues
}
