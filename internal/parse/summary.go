package parse

import (
	"encoding/json"
	"regexp"

	"go.uber.org/zap"

	"github.com/usercue/thematic-cli/internal/model"
)

// FailureMessage is the executive summary text of the canonical record
// returned when no JSON can be recovered from the LLM output.
const FailureMessage = "Failed to parse business summary"

var (
	fencedJSONPattern = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")
	bareJSONPattern   = regexp.MustCompile(`(?s)(\{.*\})`)
)

// BusinessSummary locates and decodes the JSON object embedded in the LLM's
// business summary output. A fenced block is preferred; otherwise the first
// top-level brace span is tried. Decode failure or absence of any JSON span
// yields the canonical failure record instead of an error. Missing mandatory
// fields are backfilled with empty containers so the record is always
// structurally complete.
func BusinessSummary(output string) *model.BusinessSummaryRecord {
	var jsonContent string
	if m := fencedJSONPattern.FindStringSubmatch(output); m != nil {
		jsonContent = m[1]
	} else if m := bareJSONPattern.FindStringSubmatch(output); m != nil {
		jsonContent = m[1]
	} else {
		zap.L().Error("parse: no JSON found in business summary output")
		return failureRecord()
	}

	var rec model.BusinessSummaryRecord
	if err := json.Unmarshal([]byte(jsonContent), &rec); err != nil {
		zap.L().Error("parse: business summary JSON decode failed", zap.Error(err))
		return failureRecord()
	}

	backfill(&rec)
	return &rec
}

// IsParseFailure reports whether a record is the canonical parse-failure
// record. Its executive summary is non-blank, so it would slip through the
// validator; callers treat it as an explicit, fatal parse error instead of
// a silently valid degraded result.
func IsParseFailure(rec *model.BusinessSummaryRecord) bool {
	return rec != nil && rec.ExecutiveSummary == FailureMessage
}

func failureRecord() *model.BusinessSummaryRecord {
	rec := &model.BusinessSummaryRecord{ExecutiveSummary: FailureMessage}
	backfill(rec)
	return rec
}

func backfill(rec *model.BusinessSummaryRecord) {
	if rec.KeyInsights == nil {
		rec.KeyInsights = []string{}
	}
	if rec.Recommendations == nil {
		rec.Recommendations = []model.Recommendation{}
	}
	if rec.NextSteps == nil {
		rec.NextSteps = []string{}
	}
	if rec.RisksAndOpportunities == nil {
		rec.RisksAndOpportunities = &model.RisksOpportunities{}
	}
	if rec.RisksAndOpportunities.Risks == nil {
		rec.RisksAndOpportunities.Risks = []string{}
	}
	if rec.RisksAndOpportunities.Opportunities == nil {
		rec.RisksAndOpportunities.Opportunities = []string{}
	}
}
