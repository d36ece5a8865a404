// Package metadata derives per-call and aggregate metrics from LLM token
// usage statistics.
package metadata

import (
	"math"
	"time"

	"github.com/usercue/thematic-cli/internal/cost"
	"github.com/usercue/thematic-cli/internal/model"
	"github.com/usercue/thematic-cli/pkg/anthropic"
)

// Calculator turns raw token usage into CallMetadata using a pricing table.
type Calculator struct {
	calc *cost.Calculator
}

// NewCalculator creates a Calculator with the given pricing rates.
func NewCalculator(rates cost.Rates) *Calculator {
	return &Calculator{calc: cost.NewCalculator(rates)}
}

// Calculate computes the metrics for one LLM call.
func (c *Calculator) Calculate(modelName string, usage anthropic.TokenUsage, durationMS int64, participantCount int) *model.CallMetadata {
	in, out, total := c.calc.Call(modelName, usage.InputTokens, usage.OutputTokens)

	return &model.CallMetadata{
		Model:            modelName,
		DurationMS:       durationMS,
		DurationSeconds:  math.Round(float64(durationMS)/1000*100) / 100,
		ParticipantCount: participantCount,
		Tokens: model.TokenCounts{
			Input:  usage.InputTokens,
			Output: usage.OutputTokens,
			Total:  usage.InputTokens + usage.OutputTokens,
		},
		Costs: model.CostBreakdown{
			Input:  in,
			Output: out,
			Total:  total,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Summarize aggregates per-question call metadata across a project. Tokens,
// costs, and durations are summed; the participant total is the maximum
// observed count because the same participant pool answers every question.
func Summarize(entries map[string]*model.CallMetadata) model.MetadataSummary {
	var s model.MetadataSummary
	if len(entries) == 0 {
		return s
	}

	var totalCost float64
	for _, m := range entries {
		if m == nil {
			continue
		}
		s.QuestionsCompleted++
		s.TotalTokens += m.Tokens.Total
		totalCost += m.Costs.Total
		s.TotalDurationMS += m.DurationMS
		if m.ParticipantCount > s.TotalParticipants {
			s.TotalParticipants = m.ParticipantCount
		}
		if s.Model == "" && m.Model != "" {
			s.Model = m.Model
		}
	}

	s.TotalCost = cost.Round4(totalCost)
	s.TotalDurationSeconds = math.Round(float64(s.TotalDurationMS)/1000*100) / 100
	if s.QuestionsCompleted > 0 {
		s.AvgTokensPerQuestion = int64(math.Round(float64(s.TotalTokens) / float64(s.QuestionsCompleted)))
		s.AvgCostPerQuestion = cost.Round4(totalCost / float64(s.QuestionsCompleted))
	}
	return s
}
