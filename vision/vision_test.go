package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateCost(t *testing.T) {
	// 1M input at $0.075 + 1M output at $0.30
	assert.InDelta(t, 0.375, calculateCost("gemini-1.5-flash", 1_000_000, 1_000_000), 1e-9)
	assert.InDelta(t, 0.00015, calculateCost("gpt-4o-mini", 1000, 0), 1e-12)
	assert.Equal(t, 0.0, calculateCost("unknown-model", 1000, 1000))
}
