package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/usercue/thematic-cli/internal/model"
)

func validTheme() model.Theme {
	return model.Theme{
		Title:        "Speed First",
		Description:  "Connection speed decides the purchase.",
		Participants: 8,
		Quotes: []model.Quote{
			{Text: "one", ParticipantID: "1"},
			{Text: "two", ParticipantID: "2"},
			{Text: "three", ParticipantID: "3"},
		},
	}
}

func TestThemeOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(rec *model.ThemeRecord)
		want   bool
	}{
		{
			name:   "valid record",
			mutate: func(rec *model.ThemeRecord) {},
			want:   true,
		},
		{
			name:   "no themes",
			mutate: func(rec *model.ThemeRecord) { rec.Themes = nil },
			want:   false,
		},
		{
			name:   "missing title",
			mutate: func(rec *model.ThemeRecord) { rec.Themes[0].Title = "" },
			want:   false,
		},
		{
			name:   "missing description",
			mutate: func(rec *model.ThemeRecord) { rec.Themes[1].Description = "" },
			want:   false,
		},
		{
			name:   "two quotes",
			mutate: func(rec *model.ThemeRecord) { rec.Themes[0].Quotes = rec.Themes[0].Quotes[:2] },
			want:   false,
		},
		{
			name: "four quotes",
			mutate: func(rec *model.ThemeRecord) {
				rec.Themes[0].Quotes = append(rec.Themes[0].Quotes, model.Quote{Text: "extra", ParticipantID: "4"})
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := &model.ThemeRecord{
				Question: "q",
				Themes:   []model.Theme{validTheme(), validTheme()},
			}
			tt.mutate(rec)
			assert.Equal(t, tt.want, ThemeOutput(rec))
		})
	}

	t.Run("nil record", func(t *testing.T) {
		t.Parallel()
		assert.False(t, ThemeOutput(nil))
	})
}

func validSummary() *model.BusinessSummaryRecord {
	return &model.BusinessSummaryRecord{
		ExecutiveSummary: "Speed drives the market.",
		KeyInsights:      []string{},
		Recommendations:  []model.Recommendation{},
		RisksAndOpportunities: &model.RisksOpportunities{
			Risks:         []string{},
			Opportunities: []string{},
		},
		NextSteps: []string{},
	}
}

func TestBusinessSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(rec *model.BusinessSummaryRecord)
		want   bool
	}{
		{
			name:   "valid record with empty containers",
			mutate: func(rec *model.BusinessSummaryRecord) {},
			want:   true,
		},
		{
			name:   "blank executive summary",
			mutate: func(rec *model.BusinessSummaryRecord) { rec.ExecutiveSummary = "   " },
			want:   false,
		},
		{
			name:   "missing key insights",
			mutate: func(rec *model.BusinessSummaryRecord) { rec.KeyInsights = nil },
			want:   false,
		},
		{
			name:   "missing recommendations",
			mutate: func(rec *model.BusinessSummaryRecord) { rec.Recommendations = nil },
			want:   false,
		},
		{
			name:   "missing next steps",
			mutate: func(rec *model.BusinessSummaryRecord) { rec.NextSteps = nil },
			want:   false,
		},
		{
			name:   "missing risks structure",
			mutate: func(rec *model.BusinessSummaryRecord) { rec.RisksAndOpportunities = nil },
			want:   false,
		},
		{
			name:   "missing risks list",
			mutate: func(rec *model.BusinessSummaryRecord) { rec.RisksAndOpportunities.Risks = nil },
			want:   false,
		},
		{
			name:   "missing opportunities list",
			mutate: func(rec *model.BusinessSummaryRecord) { rec.RisksAndOpportunities.Opportunities = nil },
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := validSummary()
			tt.mutate(rec)
			assert.Equal(t, tt.want, BusinessSummary(rec))
		})
	}

	t.Run("nil record", func(t *testing.T) {
		t.Parallel()
		assert.False(t, BusinessSummary(nil))
	})
}
