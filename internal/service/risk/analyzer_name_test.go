package risk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservable/booking-risk-engine/internal/domain/risk"
)

func analyzeName(t *testing.T, name string) risk.CategoryResult {
	t.Helper()
	analyzer := NewNameAnalyzer(nil)
	return analyzer.Analyze(context.Background(), risk.Submission{BookingRef: "bk-1", FullName: name})
}

func TestNameAnalyzer_CleanNames(t *testing.T) {
	for _, name := range []string{
		"Michelle Smith",
		"Emily Dickinson",
		"Alan Cockburn",
		"Maria Garcia-Lopez",
	} {
		result := analyzeName(t, name)
		assert.Equal(t, 0, result.Score, name)
		assert.Empty(t, result.Reasons, name)
	}
}

func TestNameAnalyzer_LegitimateSurnamesNeverFlag(t *testing.T) {
	for _, name := range []string{
		"Dick Johnson",
		"Susan Blow",
		"Peter Cox",
		"Harold Wang",
		"Seymour Butts",
	} {
		result := analyzeName(t, name)
		assert.False(t, result.Features.ProfaneName, name)
		assert.Less(t, result.Score, 30, name)
	}
}

func TestNameAnalyzer_ExtremeProfanity(t *testing.T) {
	result := analyzeName(t, "Fuck You")
	assert.GreaterOrEqual(t, result.Score, 100)
	assert.True(t, result.Features.ProfaneName)
	require.Len(t, result.Reasons, 1)
	assert.Equal(t, risk.ReasonExtremeProfanityName, result.Reasons[0].Code)
	assert.Equal(t, "Extreme profanity in name", result.Reasons[0].String())
}

func TestNameAnalyzer_OffensiveLeadToken(t *testing.T) {
	result := analyzeName(t, "Suck It")
	assert.GreaterOrEqual(t, result.Score, 60)
	assert.True(t, result.Features.ProfaneName)
	require.Len(t, result.Reasons, 1)
	assert.Equal(t, "Offensive/profane name", result.Reasons[0].String())
}

func TestNameAnalyzer_LeadProfanityOutscoresLaterToken(t *testing.T) {
	lead := analyzeName(t, "Ass Hat")
	later := analyzeName(t, "Norman Ass")
	assert.Greater(t, lead.Score, later.Score)
}

func TestNameAnalyzer_PlaceholderName(t *testing.T) {
	result := analyzeName(t, "John Doe")
	assert.Equal(t, 50, result.Score)
	assert.True(t, result.Features.PlaceholderName)
	require.Len(t, result.Reasons, 1)
	assert.Equal(t, "Known placeholder name", result.Reasons[0].String())
}

func TestNameAnalyzer_RepeatedTokens(t *testing.T) {
	result := analyzeName(t, "Smith Smith")
	assert.Equal(t, 30, result.Score)
	assert.True(t, result.Features.RepeatedNameTokens)
}

func TestNameAnalyzer_PlaceholderWithRepeatedTokens(t *testing.T) {
	// "Test Test" is both a placeholder and a repeated token; the placeholder
	// score wins by max.
	result := analyzeName(t, "Test Test")
	assert.Equal(t, 50, result.Score)
	assert.True(t, result.Features.PlaceholderName)
	assert.True(t, result.Features.RepeatedNameTokens)
}

func TestNameAnalyzer_SingleLetterToken(t *testing.T) {
	result := analyzeName(t, "J Smith")
	assert.Equal(t, 40, result.Score)
	assert.True(t, result.Features.ShortNameToken)
}

func TestNameAnalyzer_MononymLeftAlone(t *testing.T) {
	result := analyzeName(t, "Cher")
	assert.Equal(t, 0, result.Score)
}

func TestNameAnalyzer_EmptyNameScoresZero(t *testing.T) {
	result := analyzeName(t, "   ")
	assert.Equal(t, 0, result.Score)
}

func TestNameAnalyzer_ExtraPlaceholders(t *testing.T) {
	analyzer := NewNameAnalyzer([]string{"Max  Mustermann"})
	result := analyzer.Analyze(context.Background(), risk.Submission{FullName: "max mustermann"})
	assert.True(t, result.Features.PlaceholderName)
}
