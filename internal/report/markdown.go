// Package report renders committed analysis results into human-readable
// markdown for export and review.
package report

import (
	"fmt"
	"strings"

	"github.com/usercue/thematic-cli/internal/model"
	"github.com/usercue/thematic-cli/internal/prompt"
)

// ThemeRecord renders a structured theme record back into the fixed markdown
// schema the analysis prompt mandates. Rendering then re-parsing reproduces
// the record, which keeps the exported reports machine-readable.
func ThemeRecord(rec *model.ThemeRecord) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## Question: %s\n", rec.Question)
	fmt.Fprintf(&sb, "**Participants:** %d\n", rec.Participants)
	fmt.Fprintf(&sb, "**Headline:** %s\n\n", rec.Headline)

	sb.WriteString("### Summary\n")
	fmt.Fprintf(&sb, "%s\n\n", rec.Summary)

	sb.WriteString("### Themes\n\n")
	for i, theme := range rec.Themes {
		fmt.Fprintf(&sb, "**Theme %d: %s**\n", i+1, theme.Title)
		fmt.Fprintf(&sb, "Description: %s\n", theme.Description)
		fmt.Fprintf(&sb, "Participants: %d\n", theme.Participants)
		sb.WriteString("Supporting Quotes:\n")
		for _, q := range theme.Quotes {
			fmt.Fprintf(&sb, "- \"%s\" - Participant %s\n", q.Text, q.ParticipantID)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// BusinessSummary renders the executive summary record as markdown.
func BusinessSummary(rec *model.BusinessSummaryRecord) string {
	var sb strings.Builder

	sb.WriteString("# Executive Business Summary\n\n")
	fmt.Fprintf(&sb, "%s\n\n", rec.ExecutiveSummary)

	if len(rec.KeyInsights) > 0 {
		sb.WriteString("## Key Insights\n\n")
		for _, insight := range rec.KeyInsights {
			fmt.Fprintf(&sb, "- %s\n", insight)
		}
		sb.WriteString("\n")
	}

	if len(rec.Recommendations) > 0 {
		sb.WriteString("## Recommendations\n\n")
		for _, r := range rec.Recommendations {
			fmt.Fprintf(&sb, "- **[%s]** %s\n", r.Priority, r.Action)
			if r.Rationale != "" {
				fmt.Fprintf(&sb, "  - Rationale: %s\n", r.Rationale)
			}
			if r.Impact != "" {
				fmt.Fprintf(&sb, "  - Impact: %s\n", r.Impact)
			}
		}
		sb.WriteString("\n")
	}

	if rec.RisksAndOpportunities != nil {
		if len(rec.RisksAndOpportunities.Risks) > 0 {
			sb.WriteString("## Risks\n\n")
			for _, risk := range rec.RisksAndOpportunities.Risks {
				fmt.Fprintf(&sb, "- %s\n", risk)
			}
			sb.WriteString("\n")
		}
		if len(rec.RisksAndOpportunities.Opportunities) > 0 {
			sb.WriteString("## Opportunities\n\n")
			for _, opp := range rec.RisksAndOpportunities.Opportunities {
				fmt.Fprintf(&sb, "- %s\n", opp)
			}
			sb.WriteString("\n")
		}
	}

	if len(rec.NextSteps) > 0 {
		sb.WriteString("## Next Steps\n\n")
		for i, step := range rec.NextSteps {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// Project renders the full project report: every committed question record
// in study order followed by the business summary, if present.
func Project(p *model.ProjectContext, questionOrder []string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", prompt.DisplayTitle(p.Name))
	fmt.Fprintf(&sb, "Status: %s | Questions: %d/%d (%d%%)\n\n",
		p.Status, p.Progress.Completed, p.Progress.Total, p.Progress.Percent)

	seen := make(map[string]bool, len(questionOrder))
	for _, key := range questionOrder {
		seen[key] = true
		if rec, ok := p.AnalysisResults[key]; ok && rec != nil {
			sb.WriteString(ThemeRecord(rec))
			sb.WriteString("\n")
		}
	}
	// Committed results for keys outside the study order still get rendered.
	for key, rec := range p.AnalysisResults {
		if !seen[key] && key != model.BusinessSummaryKey && rec != nil {
			sb.WriteString(ThemeRecord(rec))
			sb.WriteString("\n")
		}
	}

	if p.BusinessSummary != nil {
		sb.WriteString(BusinessSummary(p.BusinessSummary))
	}

	return sb.String()
}
