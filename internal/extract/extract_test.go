package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserTurns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text passes through trimmed",
			in:   "  I mostly care about speed.  ",
			want: "I mostly care about speed.",
		},
		{
			name: "assistant turns stripped, user turns joined",
			in:   "assistant: hi\nuser: I like speed\nassistant: ok\nuser: also price",
			want: "I like speed also price",
		},
		{
			name: "single user turn",
			in:   "user: privacy is everything",
			want: "privacy is everything",
		},
		{
			name: "multiline user turn kept until next assistant turn",
			in:   "user: first line\nsecond line\nassistant: noted",
			want: "first line\nsecond line",
		},
		{
			name: "empty user turn dropped",
			in:   "user: \nassistant: go on\nuser: fine",
			want: "fine",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, UserTurns(tt.in))
		})
	}
}

func TestRowsFromTable(t *testing.T) {
	t.Parallel()

	header := []string{"id", "vpn_selection", "current_vpn_feedback"}
	table := [][]string{
		{"1", "speed", "fine"},
		{"2", "price"}, // short row padded
		{"3", "privacy", "slow", "extra ignored"},
	}

	rows := RowsFromTable(header, table)
	require.Len(t, rows, 3)
	assert.Equal(t, "speed", rows[0]["vpn_selection"])
	assert.Equal(t, "", rows[1]["current_vpn_feedback"])
	assert.Equal(t, "slow", rows[2]["current_vpn_feedback"])
	assert.NotContains(t, rows[2], "extra ignored")
}

func TestResponses(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{"id": "1", "vpn_selection": "assistant: why?\nuser: speed matters"},
		{"id": "", "vpn_selection": "dropped, no id"},
		{"id": "3", "vpn_selection": "   "},
		{"id": "4", "vpn_selection": "user:  \nassistant: anything else?"},
		{"id": "5", "vpn_selection": "price", "other": "noise"},
		{"id": "6"},
	}

	got := Responses(rows, "vpn_selection")
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ParticipantID)
	assert.Equal(t, "speed matters", got[0].Response)
	assert.Equal(t, "5", got[1].ParticipantID)
	assert.Equal(t, "price", got[1].Response)
}

func TestResponsesUppercaseIDColumn(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{"ID": "p-9", "q": "an answer"},
	}
	got := Responses(rows, "q")
	require.Len(t, got, 1)
	assert.Equal(t, "p-9", got[0].ParticipantID)
}
