package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usercue/thematic-cli/internal/model"
	"github.com/usercue/thematic-cli/internal/parse"
)

func sampleRecord() *model.ThemeRecord {
	return &model.ThemeRecord{
		Question:     "What factors influence VPN selection decisions?",
		Participants: 12,
		Headline:     "Speed and trust dominate VPN choice",
		Summary:      "Participants choose VPNs primarily on connection speed.",
		Themes: []model.Theme{
			{
				Title:        "Speed First",
				Description:  "Connection speed is the deciding factor.",
				Participants: 8,
				Quotes: []model.Quote{
					{Text: "the old one was slow", ParticipantID: "3"},
					{Text: "speed is everything", ParticipantID: "7"},
					{Text: "I picked the fastest", ParticipantID: "11"},
				},
			},
			{
				Title:        "Provider Trust",
				Description:  "Users want audited providers.",
				Participants: 5,
				Quotes: []model.Quote{
					{Text: "only audited services", ParticipantID: "2"},
					{Text: "reputation over price", ParticipantID: "9"},
					{Text: "I read reviews for weeks", ParticipantID: "4"},
				},
			},
		},
	}
}

func TestThemeRecordRoundTrip(t *testing.T) {
	t.Parallel()

	original := sampleRecord()
	rendered := ThemeRecord(original)
	reparsed := parse.ThemeOutput(rendered)

	assert.Equal(t, original.Question, reparsed.Question)
	assert.Equal(t, original.Participants, reparsed.Participants)
	assert.Equal(t, original.Headline, reparsed.Headline)
	assert.Equal(t, original.Summary, reparsed.Summary)
	require.Equal(t, len(original.Themes), len(reparsed.Themes))
	for i := range original.Themes {
		assert.Equal(t, original.Themes[i], reparsed.Themes[i], "theme %d", i)
	}
}

func TestBusinessSummaryMarkdown(t *testing.T) {
	t.Parallel()

	rec := &model.BusinessSummaryRecord{
		ExecutiveSummary: "Speed drives the market.",
		KeyInsights:      []string{"insight one"},
		Recommendations: []model.Recommendation{
			{Priority: "high", Action: "ship faster servers", Rationale: "demand", Impact: "retention"},
		},
		RisksAndOpportunities: &model.RisksOpportunities{
			Risks:         []string{"churn"},
			Opportunities: []string{"upsell"},
		},
		NextSteps: []string{"validate pricing"},
	}

	md := BusinessSummary(rec)
	assert.Contains(t, md, "# Executive Business Summary")
	assert.Contains(t, md, "Speed drives the market.")
	assert.Contains(t, md, "- insight one")
	assert.Contains(t, md, "- **[high]** ship faster servers")
	assert.Contains(t, md, "- Rationale: demand")
	assert.Contains(t, md, "## Risks")
	assert.Contains(t, md, "- churn")
	assert.Contains(t, md, "## Opportunities")
	assert.Contains(t, md, "1. validate pricing")
}

func TestProject(t *testing.T) {
	t.Parallel()

	p := &model.ProjectContext{
		Name:   "vpn-analysis",
		Status: model.StatusCompleted,
		Progress: model.Progress{
			Total: 2, Completed: 2, Percent: 100,
		},
		AnalysisResults: map[string]*model.ThemeRecord{
			"vpn_selection": sampleRecord(),
			"off_study_key": sampleRecord(),
		},
		BusinessSummary: &model.BusinessSummaryRecord{
			ExecutiveSummary: "Done.",
			KeyInsights:      []string{},
			Recommendations:  []model.Recommendation{},
			RisksAndOpportunities: &model.RisksOpportunities{
				Risks: []string{}, Opportunities: []string{},
			},
			NextSteps: []string{},
		},
	}

	md := Project(p, []string{"vpn_selection"})
	assert.Contains(t, md, "# Vpn-Analysis")
	assert.Contains(t, md, "Status: completed | Questions: 2/2 (100%)")
	// Both the ordered and the off-order record render.
	assert.Equal(t, 2, strings.Count(md, "## Question: What factors influence VPN selection decisions?"))
	assert.Contains(t, md, "# Executive Business Summary")
}
