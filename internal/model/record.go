package model

// Quote is one verbatim supporting quote, tagged with the participant it
// came from.
type Quote struct {
	Text          string `json:"text"`
	ParticipantID string `json:"participant_id"`
}

// Theme is a named, described cluster of participant responses. A valid
// theme carries exactly three quotes; the parser does not enforce this,
// the validator does.
type Theme struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Participants int     `json:"participants"`
	Quotes       []Quote `json:"quotes"`
}

// ThemeRecord is the structured result of analyzing one question.
type ThemeRecord struct {
	Question     string  `json:"question"`
	Participants int     `json:"participants"`
	Headline     string  `json:"headline"`
	Summary      string  `json:"summary"`
	Themes       []Theme `json:"themes"`
}

// Recommendation is one actionable item in the business summary.
type Recommendation struct {
	Priority  string `json:"priority"` // High | Medium | Low
	Action    string `json:"action"`
	Rationale string `json:"rationale"`
	Impact    string `json:"impact"`
}

// RisksOpportunities pairs the downside and upside findings.
type RisksOpportunities struct {
	Risks         []string `json:"risks"`
	Opportunities []string `json:"opportunities"`
}

// BusinessSummaryRecord is the cross-question executive synthesis. All five
// top-level fields are mandatory; the parser backfills missing ones with
// empty containers so the record is always structurally complete.
type BusinessSummaryRecord struct {
	ExecutiveSummary      string              `json:"executive_summary"`
	KeyInsights           []string            `json:"key_insights"`
	Recommendations       []Recommendation    `json:"recommendations"`
	RisksAndOpportunities *RisksOpportunities `json:"risks_and_opportunities"`
	NextSteps             []string            `json:"next_steps"`
}
