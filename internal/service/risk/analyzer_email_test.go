package risk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservable/booking-risk-engine/internal/domain/risk"
	"github.com/reservable/booking-risk-engine/internal/domain/values"
)

func analyzeEmail(t *testing.T, address string) risk.CategoryResult {
	t.Helper()
	analyzer := NewEmailAnalyzer(nil)
	sub := risk.Submission{BookingRef: "bk-1"}
	if address != "" {
		sub.Email = values.MustNewEmail(address)
	}
	return analyzer.Analyze(context.Background(), sub)
}

func TestEmailAnalyzer_CleanAddress(t *testing.T) {
	result := analyzeEmail(t, "maria.garcia@gmail.com")
	assert.Equal(t, 0, result.Score)
	assert.Empty(t, result.Reasons)
	assert.True(t, result.Features.IsZero())
}

func TestEmailAnalyzer_MissingEmailScoresZero(t *testing.T) {
	result := analyzeEmail(t, "")
	assert.Equal(t, 0, result.Score)
}

func TestEmailAnalyzer_DisposableDomain(t *testing.T) {
	result := analyzeEmail(t, "guest123@mailinator.com")
	assert.Equal(t, 40, result.Score)
	assert.True(t, result.Features.DisposableEmail)
	require.Len(t, result.Reasons, 1)
	assert.Equal(t, "Disposable email domain", result.Reasons[0].String())
}

func TestEmailAnalyzer_DisposableIsExactDomainMatch(t *testing.T) {
	result := analyzeEmail(t, "guest@notmailinator.com")
	assert.False(t, result.Features.DisposableEmail)
}

func TestEmailAnalyzer_NoReplyLocalPart(t *testing.T) {
	result := analyzeEmail(t, "noreply@company.com")
	assert.Equal(t, 25, result.Score)
	assert.True(t, result.Features.NoReplyEmail)
}

func TestEmailAnalyzer_GibberishLocalPart(t *testing.T) {
	result := analyzeEmail(t, "xkcdqwrtzp@gmail.com")
	assert.Equal(t, 20, result.Score)
	assert.True(t, result.Features.GibberishEmail)
}

func TestEmailAnalyzer_ShortLocalPartNotGibberish(t *testing.T) {
	result := analyzeEmail(t, "jd@gmail.com")
	assert.False(t, result.Features.GibberishEmail)
}

func TestEmailAnalyzer_OffensiveLocalPart(t *testing.T) {
	// "dick" flags in an email even though it is a legitimate name token.
	result := analyzeEmail(t, "dick.johnson@gmail.com")
	assert.Equal(t, 80, result.Score)
	assert.True(t, result.Features.ProfaneEmail)
	require.Len(t, result.Reasons, 1)
	assert.Equal(t, risk.ReasonProfaneEmail, result.Reasons[0].Code)
	assert.Equal(t, "Offensive/profane email address", result.Reasons[0].String())
}

func TestEmailAnalyzer_ExtremeProfanity(t *testing.T) {
	tests := []struct {
		address string
	}{
		{"fucker@dick.com"},
		{"fuck@shit.com"},
	}
	for _, tt := range tests {
		result := analyzeEmail(t, tt.address)
		assert.Equal(t, 100, result.Score, tt.address)
		assert.True(t, result.Features.ProfaneEmail)
		found := false
		for _, r := range result.Reasons {
			if r.Code == risk.ReasonExtremeProfanityEmail {
				found = true
				assert.Equal(t, "Extreme profanity in email", r.String())
			}
		}
		assert.True(t, found, tt.address)
	}
}

func TestEmailAnalyzer_SignalsCombineByMax(t *testing.T) {
	// Disposable domain and no-reply local part together stay at the higher
	// of the two scores.
	result := analyzeEmail(t, "noreply@mailinator.com")
	assert.Equal(t, 40, result.Score)
	assert.True(t, result.Features.DisposableEmail)
	assert.True(t, result.Features.NoReplyEmail)
	assert.Len(t, result.Reasons, 2)
}

func TestEmailAnalyzer_ExtraDisposableDomains(t *testing.T) {
	analyzer := NewEmailAnalyzer([]string{"Shady.Example"})
	result := analyzer.Analyze(context.Background(), risk.Submission{
		Email: values.MustNewEmail("x.y.z@shady.example"),
	})
	assert.True(t, result.Features.DisposableEmail)
}
