package model

// TokenCounts breaks down token consumption for one LLM call.
type TokenCounts struct {
	Input  int64 `json:"input"`
	Output int64 `json:"output"`
	Total  int64 `json:"total"`
}

// CostBreakdown holds the dollar cost of one LLM call, rounded to six
// decimal places.
type CostBreakdown struct {
	Input  float64 `json:"input"`
	Output float64 `json:"output"`
	Total  float64 `json:"total"`
}

// CallMetadata captures the per-call metrics for one question analysis or
// the business summary generation.
type CallMetadata struct {
	Model            string        `json:"model"`
	DurationMS       int64         `json:"duration_ms"`
	DurationSeconds  float64       `json:"duration_seconds"`
	ParticipantCount int           `json:"participant_count"`
	Tokens           TokenCounts   `json:"tokens"`
	Costs            CostBreakdown `json:"costs"`
	Timestamp        string        `json:"timestamp"`
}

// MetadataSummary aggregates per-question call metadata across a project.
// TotalParticipants is the maximum observed participant count, not a sum:
// the same participant pool answers every question.
type MetadataSummary struct {
	TotalTokens          int64   `json:"total_tokens"`
	TotalCost            float64 `json:"total_cost"`
	TotalDurationMS      int64   `json:"total_duration_ms"`
	TotalDurationSeconds float64 `json:"total_duration_seconds"`
	TotalParticipants    int     `json:"total_participants"`
	QuestionsCompleted   int     `json:"questions_completed"`
	Model                string  `json:"model,omitempty"`
	AvgTokensPerQuestion int64   `json:"avg_tokens_per_question"`
	AvgCostPerQuestion   float64 `json:"avg_cost_per_question"`
}
