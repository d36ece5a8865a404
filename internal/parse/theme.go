// Package parse turns the LLM's semi-structured text output into validated
// model records. Both parsers are tolerant of formatting drift: they produce
// possibly-partial records and never error. All strictness lives in the
// validate package, so "couldn't parse" and "invalid data" stay separate
// code paths.
package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/usercue/thematic-cli/internal/model"
)

var (
	questionPattern          = regexp.MustCompile(`^## Question: (.+)`)
	participantsPattern      = regexp.MustCompile(`\*\*Participants:\*\* (\d+)`)
	headlinePattern          = regexp.MustCompile(`\*\*Headline:\*\* (.+)`)
	themeTitlePattern        = regexp.MustCompile(`\*\*Theme \d+: (.+)\*\*`)
	themeParticipantsPattern = regexp.MustCompile(`Participants: (\d+)`)
	quotePattern             = regexp.MustCompile(`- "(.+)" - Participant (\d+)`)
)

// ThemeOutput scans the LLM's markdown theme report into a ThemeRecord. The
// scan is a single left-to-right pass over non-blank lines keeping a current
// theme accumulator and a current section tag. Unrecognized lines inside the
// summary section join the summary text; everything else is ignored.
func ThemeOutput(output string) *model.ThemeRecord {
	result := &model.ThemeRecord{}

	var (
		current  *model.Theme
		inQuotes bool
		section  string
	)

	flush := func() {
		if current != nil {
			result.Themes = append(result.Themes, *current)
			current = nil
		}
	}

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := questionPattern.FindStringSubmatch(line); m != nil {
			result.Question = m[1]
			continue
		}

		if m := participantsPattern.FindStringSubmatch(line); m != nil {
			result.Participants, _ = strconv.Atoi(m[1])
			continue
		}

		if m := headlinePattern.FindStringSubmatch(line); m != nil {
			result.Headline = m[1]
			continue
		}

		if strings.Contains(line, "### Summary") {
			section = "summary"
			continue
		}

		if strings.Contains(line, "### Themes") {
			section = "themes"
			continue
		}

		if m := themeTitlePattern.FindStringSubmatch(line); m != nil {
			flush()
			current = &model.Theme{Title: m[1]}
			inQuotes = false
			continue
		}

		if strings.HasPrefix(line, "Description:") {
			if current != nil {
				current.Description = strings.TrimSpace(strings.TrimPrefix(line, "Description:"))
			}
			continue
		}

		if m := themeParticipantsPattern.FindStringSubmatch(line); m != nil {
			if current != nil {
				current.Participants, _ = strconv.Atoi(m[1])
			}
			continue
		}

		if strings.Contains(line, "Supporting Quotes:") {
			inQuotes = true
			continue
		}

		if inQuotes && strings.HasPrefix(line, `- "`) {
			if m := quotePattern.FindStringSubmatch(line); m != nil && current != nil {
				current.Quotes = append(current.Quotes, model.Quote{
					Text:          m[1],
					ParticipantID: m[2],
				})
			}
			continue
		}

		if section == "summary" && !strings.HasPrefix(line, "#") {
			if result.Summary != "" {
				result.Summary += " "
			}
			result.Summary += line
		}
	}

	flush()
	return result
}
