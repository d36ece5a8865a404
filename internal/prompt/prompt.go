// Package prompt renders the fixed analysis and business-summary prompts
// from templates plus project data. Pure templating, no I/O.
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/usercue/thematic-cli/internal/model"
)

// AnalysisSystem is the system prompt for per-question theme extraction.
const AnalysisSystem = "You are a skilled research assistant performing thematic analysis on qualitative " +
	"interview data. Your task is to identify meaningful themes and provide supporting evidence through " +
	"direct quotes."

// SummarySystem is the system prompt for the cross-question business summary.
const SummarySystem = "You are a senior business analyst creating executive summaries from thematic " +
	"analysis results. Your task is to synthesize findings into actionable business insights and " +
	"recommendations."

var titleCaser = cases.Title(language.English)

// Question renders the per-question analysis prompt: project background,
// question title, the numbered participant responses, and the instruction
// block that mandates 3-5 mutually exclusive themes with exactly 3 verbatim
// quotes each, in the fixed markdown output schema.
func Question(responses []model.Response, rc model.ReasoningContext, questionKey string) string {
	info := rc.Questions[questionKey]

	var sb strings.Builder
	fmt.Fprintf(&sb, "PROJECT BACKGROUND:\n%s\n\n", rc.ProjectBackground)
	fmt.Fprintf(&sb, "QUESTION BEING ANALYZED:\n%s\n\n", info.Title)
	fmt.Fprintf(&sb, "PARTICIPANT RESPONSES (%d total):\n%s\n\n", len(responses), formatResponses(responses))

	sb.WriteString(`ANALYSIS INSTRUCTIONS:
1. Identify 3-5 key themes that capture the main patterns in the responses
2. Each theme should be "necessary and sufficient" - meaningful but not too broad or too narrow
3. Themes should be mutually exclusive (no significant overlap)
4. For each theme, provide:
   - A clear, descriptive title that directly answers the question
   - A brief description explaining the theme
   - Count of participants who fit this theme
   - Exactly 3 supporting quotes (verbatim, with participant IDs)

CRITICAL REQUIREMENTS:
- Use quotes EXACTLY as written - no rewording or paraphrasing
- Each quote must include the participant ID (format: "Quote text" - Participant 1234)
- Don't use the same quote for multiple themes
- Don't use multiple quotes from the same participant for one theme
- Ensure participant counts are accurate

OUTPUT FORMAT:
Please structure your response as follows:

## Question: [Question Title]
`)
	fmt.Fprintf(&sb, "**Participants:** %d\n", len(responses))
	sb.WriteString(`**Headline:** [Engaging headline that captures the key insight]

### Summary
[1-2 sentences providing high-level overview of findings]

### Themes

**Theme 1: [Title]**
Description: [Brief description]
Participants: [Count]
Supporting Quotes:
- "Quote 1" - Participant [ID]
- "Quote 2" - Participant [ID]
- "Quote 3" - Participant [ID]

**Theme 2: [Title]**
[Continue same format...]
`)

	return sb.String()
}

func formatResponses(responses []model.Response) string {
	lines := make([]string, len(responses))
	for i, r := range responses {
		lines[i] = fmt.Sprintf("Participant %s: %s", r.ParticipantID, r.Response)
	}
	return strings.Join(lines, "\n\n")
}

// Summary renders the cross-question executive summary prompt from the
// committed theme records. Each question contributes its theme digests
// (title, description, participant count, first quote only). Question keys
// are visited in sorted order so the prompt is deterministic.
func Summary(results map[string]*model.ThemeRecord, totalParticipants int) string {
	var sb strings.Builder
	sb.WriteString("# Executive Business Summary Request\n\n")
	sb.WriteString("Please create a comprehensive executive summary based on the thematic analysis results below.\n\n")
	sb.WriteString("## Study Overview\n")
	if totalParticipants > 0 {
		fmt.Fprintf(&sb, "- Participants: %d\n", totalParticipants)
	} else {
		sb.WriteString("- Participants: Unknown\n")
	}

	keys := make([]string, 0, len(results))
	for key := range results {
		if key == model.BusinessSummaryKey {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	fmt.Fprintf(&sb, "- Questions Analyzed: %d\n\n", len(keys))
	sb.WriteString("## Analysis Results by Question\n\n")

	for _, key := range keys {
		rec := results[key]
		fmt.Fprintf(&sb, "### Question: %s\n\n", DisplayTitle(key))
		if rec != nil {
			for _, theme := range rec.Themes {
				fmt.Fprintf(&sb, "**Theme:** %s\n", theme.Title)
				fmt.Fprintf(&sb, "**Description:** %s\n", theme.Description)
				fmt.Fprintf(&sb, "**Participants:** %d\n", theme.Participants)
				if len(theme.Quotes) > 0 {
					fmt.Fprintf(&sb, "**Key Quote:** %q\n", theme.Quotes[0].Text)
				}
				sb.WriteString("\n")
			}
		}
		sb.WriteString("---\n\n")
	}

	sb.WriteString(`## Required Output Format

Please provide your response in the following JSON structure:

` + "```json" + `
{
  "executive_summary": "Brief high-level overview of key findings",
  "key_insights": [
    "Insight 1",
    "Insight 2",
    "Insight 3"
  ],
  "recommendations": [
    {
      "priority": "High|Medium|Low",
      "action": "Specific recommendation",
      "rationale": "Why this is important",
      "impact": "Expected business impact"
    }
  ],
  "risks_and_opportunities": {
    "risks": ["Risk 1", "Risk 2"],
    "opportunities": ["Opportunity 1", "Opportunity 2"]
  },
  "next_steps": ["Step 1", "Step 2", "Step 3"]
}
` + "```" + `

Focus on actionable insights that can drive business decisions. Synthesize themes across questions to identify overarching patterns and strategic implications.`)

	return sb.String()
}

// DisplayTitle converts a question key like "vpn_selection" into a
// human-readable heading like "Vpn Selection".
func DisplayTitle(questionKey string) string {
	return titleCaser.String(strings.ReplaceAll(questionKey, "_", " "))
}
