// Package extract pulls per-participant answer text for a question column
// out of raw tabular interview rows.
package extract

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/usercue/thematic-cli/internal/model"
)

// Row is one spreadsheet row keyed by column name.
type Row map[string]string

// RowsFromTable zips a header row with data rows into column-keyed rows.
// Short rows are padded with empty cells; extra cells are discarded.
func RowsFromTable(header []string, table [][]string) []Row {
	rows := make([]Row, 0, len(table))
	for _, cells := range table {
		row := make(Row, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			if i < len(cells) {
				row[col] = cells[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// userTurnPattern captures the text of each user turn in a conversational
// transcript, up to the next assistant turn or end of input.
var userTurnPattern = regexp.MustCompile(`(?s)user:\s*(.+?)(?:\nassistant:|\z)`)

// UserTurns isolates the participant's side of a conversational transcript.
// Segments following a "user:" marker are concatenated with single spaces.
// Text without any user-turn marker is returned trimmed as-is.
func UserTurns(text string) string {
	matches := userTurnPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return strings.TrimSpace(text)
	}

	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		if seg := strings.TrimSpace(m[1]); seg != "" {
			parts = append(parts, seg)
		}
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// Responses extracts the ordered participant responses for one question
// column. Rows missing a participant id or with a blank response after
// transcript cleanup are dropped.
func Responses(rows []Row, questionKey string) []model.Response {
	var out []model.Response
	for _, row := range rows {
		id := participantID(row)
		if id == "" {
			continue
		}

		raw, ok := row[questionKey]
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}

		cleaned := UserTurns(raw)
		if cleaned == "" {
			continue
		}

		out = append(out, model.Response{
			ParticipantID: id,
			Response:      cleaned,
		})
	}

	zap.L().Debug("extract: responses collected",
		zap.String("question", questionKey),
		zap.Int("rows", len(rows)),
		zap.Int("responses", len(out)),
	)
	return out
}

func participantID(row Row) string {
	for _, col := range []string{"id", "ID"} {
		if v, ok := row[col]; ok {
			if id := strings.TrimSpace(v); id != "" {
				return id
			}
		}
	}
	return ""
}
