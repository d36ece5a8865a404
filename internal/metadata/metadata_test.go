package metadata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usercue/thematic-cli/internal/cost"
	"github.com/usercue/thematic-cli/internal/model"
	"github.com/usercue/thematic-cli/pkg/anthropic"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	calc := NewCalculator(cost.DefaultRates())
	usage := anthropic.TokenUsage{InputTokens: 2000, OutputTokens: 500}

	meta := calc.Calculate("claude-haiku-4-5-20251001", usage, 1234, 12)

	assert.Equal(t, "claude-haiku-4-5-20251001", meta.Model)
	assert.Equal(t, int64(1234), meta.DurationMS)
	assert.Equal(t, 1.23, meta.DurationSeconds)
	assert.Equal(t, 12, meta.ParticipantCount)
	assert.Equal(t, int64(2000), meta.Tokens.Input)
	assert.Equal(t, int64(500), meta.Tokens.Output)
	assert.Equal(t, int64(2500), meta.Tokens.Total)
	// 2.0 * 0.00015 = 0.0003 input; 0.5 * 0.0006 = 0.0003 output
	assert.InDelta(t, 0.0003, meta.Costs.Input, 1e-9)
	assert.InDelta(t, 0.0003, meta.Costs.Output, 1e-9)
	assert.InDelta(t, 0.0006, meta.Costs.Total, 1e-9)

	ts, err := time.Parse(time.RFC3339, meta.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), ts, time.Minute)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	entries := map[string]*model.CallMetadata{
		"q1": {
			Model:            "claude-haiku-4-5-20251001",
			DurationMS:       700,
			ParticipantCount: 10,
			Tokens:           model.TokenCounts{Input: 100, Output: 80, Total: 180},
			Costs:            model.CostBreakdown{Total: 0.02},
		},
		"q2": {
			Model:            "claude-haiku-4-5-20251001",
			DurationMS:       500,
			ParticipantCount: 7,
			Tokens:           model.TokenCounts{Input: 70, Output: 50, Total: 120},
			Costs:            model.CostBreakdown{Total: 0.01},
		},
	}

	s := Summarize(entries)

	assert.Equal(t, int64(300), s.TotalTokens)
	assert.InDelta(t, 0.03, s.TotalCost, 1e-9)
	assert.Equal(t, int64(1200), s.TotalDurationMS)
	assert.Equal(t, 1.2, s.TotalDurationSeconds)
	assert.Equal(t, 10, s.TotalParticipants, "participant total is the max, not the sum")
	assert.Equal(t, 2, s.QuestionsCompleted)
	assert.Equal(t, "claude-haiku-4-5-20251001", s.Model)
	assert.Equal(t, int64(150), s.AvgTokensPerQuestion)
	assert.InDelta(t, 0.015, s.AvgCostPerQuestion, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()

	s := Summarize(nil)
	assert.Zero(t, s.TotalTokens)
	assert.Zero(t, s.QuestionsCompleted)

	s = Summarize(map[string]*model.CallMetadata{"q": nil})
	assert.Zero(t, s.QuestionsCompleted)
}
