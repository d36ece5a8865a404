package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleThemeOutput = `## Question: What factors influence VPN selection decisions?
**Participants:** 12
**Headline:** Speed and trust dominate VPN choice

### Summary
Participants choose VPNs primarily on connection speed.
Trust in the provider comes a close second.

### Themes

**Theme 1: Speed First**
Description: Connection speed is the deciding factor for most users.
Participants: 8
Supporting Quotes:
- "I switched because the old one was slow" - Participant 3
- "Speed is everything for streaming" - Participant 7
- "I tested three before picking the fastest" - Participant 11

**Theme 2: Provider Trust**
Description: Users want audited, reputable providers.
Participants: 5
Supporting Quotes:
- "I only use audited services" - Participant 2
- "Reputation matters more than price" - Participant 9
- "I read reviews for weeks" - Participant 4
`

func TestThemeOutput(t *testing.T) {
	t.Parallel()

	rec := ThemeOutput(sampleThemeOutput)

	assert.Equal(t, "What factors influence VPN selection decisions?", rec.Question)
	assert.Equal(t, 12, rec.Participants)
	assert.Equal(t, "Speed and trust dominate VPN choice", rec.Headline)
	assert.Equal(t, "Participants choose VPNs primarily on connection speed. Trust in the provider comes a close second.", rec.Summary)

	require.Len(t, rec.Themes, 2)

	first := rec.Themes[0]
	assert.Equal(t, "Speed First", first.Title)
	assert.Equal(t, "Connection speed is the deciding factor for most users.", first.Description)
	assert.Equal(t, 8, first.Participants)
	require.Len(t, first.Quotes, 3)
	assert.Equal(t, "I switched because the old one was slow", first.Quotes[0].Text)
	assert.Equal(t, "3", first.Quotes[0].ParticipantID)

	second := rec.Themes[1]
	assert.Equal(t, "Provider Trust", second.Title)
	assert.Equal(t, 5, second.Participants)
	require.Len(t, second.Quotes, 3)
}

func TestThemeOutputTolerant(t *testing.T) {
	t.Parallel()

	t.Run("empty input yields empty record", func(t *testing.T) {
		t.Parallel()
		rec := ThemeOutput("")
		assert.Empty(t, rec.Question)
		assert.Zero(t, rec.Participants)
		assert.Empty(t, rec.Themes)
	})

	t.Run("quotes outside a quotes block are ignored", func(t *testing.T) {
		t.Parallel()
		rec := ThemeOutput("**Theme 1: Orphan**\n- \"stray quote\" - Participant 1\n")
		require.Len(t, rec.Themes, 1)
		assert.Empty(t, rec.Themes[0].Quotes)
	})

	t.Run("quote block resets on new theme", func(t *testing.T) {
		t.Parallel()
		in := "**Theme 1: A**\nSupporting Quotes:\n- \"one\" - Participant 1\n" +
			"**Theme 2: B**\n- \"two\" - Participant 2\n"
		rec := ThemeOutput(in)
		require.Len(t, rec.Themes, 2)
		assert.Len(t, rec.Themes[0].Quotes, 1)
		assert.Empty(t, rec.Themes[1].Quotes)
	})

	t.Run("description before any theme is dropped", func(t *testing.T) {
		t.Parallel()
		rec := ThemeOutput("Description: floating\n**Theme 1: Real**\nDescription: attached\n")
		require.Len(t, rec.Themes, 1)
		assert.Equal(t, "attached", rec.Themes[0].Description)
	})

	t.Run("summary stops at the themes heading", func(t *testing.T) {
		t.Parallel()
		rec := ThemeOutput("### Summary\nline one\nline two\n### Themes\nnot summary\n")
		assert.Equal(t, "line one line two", rec.Summary)
	})

	t.Run("malformed quote lines are skipped", func(t *testing.T) {
		t.Parallel()
		in := "**Theme 1: A**\nSupporting Quotes:\n- \"good\" - Participant 5\n- \"no attribution\"\n"
		rec := ThemeOutput(in)
		require.Len(t, rec.Themes, 1)
		require.Len(t, rec.Themes[0].Quotes, 1)
		assert.Equal(t, "good", rec.Themes[0].Quotes[0].Text)
	})
}
