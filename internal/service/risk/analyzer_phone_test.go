package risk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reservable/booking-risk-engine/internal/domain/risk"
	"github.com/reservable/booking-risk-engine/internal/domain/values"
)

func analyzePhone(t *testing.T, number string) risk.CategoryResult {
	t.Helper()
	analyzer := NewPhoneAnalyzer(NewNANPPlan())
	sub := risk.Submission{BookingRef: "bk-1"}
	if number != "" {
		sub.Phone = values.MustNewPhoneNumber(number)
	}
	return analyzer.Analyze(context.Background(), sub)
}

func TestPhoneAnalyzer_CleanNumber(t *testing.T) {
	result := analyzePhone(t, "+12024561414")
	assert.Equal(t, 0, result.Score)
	assert.Empty(t, result.Reasons)
}

func TestPhoneAnalyzer_MissingPhoneScoresZero(t *testing.T) {
	result := analyzePhone(t, "")
	assert.Equal(t, 0, result.Score)
}

func TestPhoneAnalyzer_AllSameDigits(t *testing.T) {
	result := analyzePhone(t, "+15555555555")
	assert.True(t, result.Features.TestNumber)
	assert.True(t, result.Features.RepeatingDigitsPhone)
	// Test number dominates the repeating-digit score.
	assert.Equal(t, 60, result.Score)
}

func TestPhoneAnalyzer_SequentialTestNumber(t *testing.T) {
	result := analyzePhone(t, "+11234567890")
	assert.True(t, result.Features.TestNumber)
	assert.True(t, result.Features.SequentialPhone)
	assert.Equal(t, 60, result.Score)
}

func TestPhoneAnalyzer_FictionalExchange(t *testing.T) {
	result := analyzePhone(t, "+12125550147")
	assert.True(t, result.Features.TestNumber)
	assert.Equal(t, 60, result.Score)
}

func TestPhoneAnalyzer_RepeatingDigitRun(t *testing.T) {
	result := analyzePhone(t, "+12027777712")
	assert.True(t, result.Features.RepeatingDigitsPhone)
	assert.False(t, result.Features.TestNumber)
	assert.Equal(t, 40, result.Score)
}

func TestPhoneAnalyzer_ShortRunDoesNotFlag(t *testing.T) {
	// Four repeated digits are common in real numbers.
	result := analyzePhone(t, "+12024577770")
	assert.False(t, result.Features.RepeatingDigitsPhone)
}

func TestPhoneAnalyzer_SequentialRun(t *testing.T) {
	ascending := analyzePhone(t, "+12023456719")
	assert.True(t, ascending.Features.SequentialPhone)
	assert.Equal(t, 30, ascending.Score)

	descending := analyzePhone(t, "+12098765412")
	assert.True(t, descending.Features.SequentialPhone)
}

func TestPhoneAnalyzer_InvalidAreaCode(t *testing.T) {
	result := analyzePhone(t, "+10992684105")
	assert.True(t, result.Features.InvalidAreaCode)
	assert.Equal(t, 25, result.Score)
}

func TestPhoneAnalyzer_NonNANPSkipsAreaCodeCheck(t *testing.T) {
	// UK number: national structure is out of the NANP plan's remit.
	result := analyzePhone(t, "+442072923000")
	assert.False(t, result.Features.InvalidAreaCode)
}

func TestNANPPlan_ValidArea(t *testing.T) {
	plan := NewNANPPlan()
	assert.True(t, plan.ValidArea("", "212"))
	assert.False(t, plan.ValidArea("", "055"))
	assert.False(t, plan.ValidArea("", "155"))
	assert.False(t, plan.ValidArea("", "555"))
}
