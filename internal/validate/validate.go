// Package validate enforces the structural invariants on parsed LLM output.
// Both checks are pure predicates: no mutation, no I/O beyond logging.
// Callers treat a false result as fatal for that task attempt.
package validate

import (
	"strings"

	"go.uber.org/zap"

	"github.com/usercue/thematic-cli/internal/model"
)

// ThemeOutput checks a parsed theme record: a non-empty theme list where
// every theme has a title, a description, and exactly three quotes. Over-
// and under-collection of quotes are both invalid.
func ThemeOutput(rec *model.ThemeRecord) bool {
	if rec == nil || len(rec.Themes) == 0 {
		zap.L().Warn("validate: no themes found in output")
		return false
	}

	for i, theme := range rec.Themes {
		if theme.Title == "" || theme.Description == "" {
			zap.L().Warn("validate: theme missing title or description",
				zap.Int("theme", i),
				zap.String("title", theme.Title),
			)
			return false
		}
		if len(theme.Quotes) != 3 {
			zap.L().Warn("validate: theme quote count is not exactly 3",
				zap.Int("theme", i),
				zap.Int("quotes", len(theme.Quotes)),
			)
			return false
		}
	}

	return true
}

// BusinessSummary checks a parsed summary record: all five mandatory fields
// present (non-nil containers), and a non-blank executive summary.
func BusinessSummary(rec *model.BusinessSummaryRecord) bool {
	if rec == nil {
		zap.L().Warn("validate: business summary record is nil")
		return false
	}

	if strings.TrimSpace(rec.ExecutiveSummary) == "" {
		zap.L().Warn("validate: business summary has blank executive_summary")
		return false
	}

	if rec.KeyInsights == nil || rec.NextSteps == nil || rec.Recommendations == nil {
		zap.L().Warn("validate: business summary missing list field")
		return false
	}

	if rec.RisksAndOpportunities == nil ||
		rec.RisksAndOpportunities.Risks == nil ||
		rec.RisksAndOpportunities.Opportunities == nil {
		zap.L().Warn("validate: business summary missing risks_and_opportunities structure")
		return false
	}

	return true
}
