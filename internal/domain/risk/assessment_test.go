package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reservable/booking-risk-engine/internal/domain/values"
)

func TestStateForScore(t *testing.T) {
	tests := []struct {
		score int
		want  State
	}{
		{0, StateNone},
		{39, StateNone},
		{40, StateSoft},
		{69, StateSoft},
		{70, StateHard},
		{100, StateHard},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StateForScore(tt.score, 40, 70), "score %d", tt.score)
	}
}

func TestFlattenReasons_DedupsByCodeInCategoryOrder(t *testing.T) {
	breakdown := map[Category]CategoryResult{
		CategoryEmail: {Reasons: []Reason{
			{Code: ReasonDisposableEmail},
			{Code: ReasonNoReplyEmail},
		}},
		CategoryBehavioral: {Reasons: []Reason{
			{Code: ReasonDisposableEmail, Detail: "duplicate from another category"},
			{Code: ReasonRapidBurst, Detail: "Rapid burst: 5 bookings in 5 minutes"},
		}},
	}

	reasons := FlattenReasons(breakdown)
	assert.Equal(t, []Reason{
		{Code: ReasonDisposableEmail},
		{Code: ReasonNoReplyEmail},
		{Code: ReasonRapidBurst, Detail: "Rapid burst: 5 bookings in 5 minutes"},
	}, reasons)
}

func TestMergedFeatures(t *testing.T) {
	breakdown := map[Category]CategoryResult{
		CategoryEmail:      {Features: FeatureVector{DisposableEmail: true}},
		CategoryBehavioral: {Features: FeatureVector{IPBookings5m: 7, VelocityBurst: true}},
	}

	merged := MergedFeatures(breakdown)
	assert.True(t, merged.DisposableEmail)
	assert.True(t, merged.VelocityBurst)
	assert.Equal(t, 7, merged.IPBookings5m)
}

func TestSubmissionRedact_MasksPII(t *testing.T) {
	sub := Submission{
		Email:    values.MustNewEmail("maria.garcia@gmail.com"),
		Phone:    values.MustNewPhoneNumber("+12024561414"),
		FullName: "Maria Garcia",
		IP:       values.MustNewIPAddress("203.0.113.7"),
	}

	redacted := sub.Redact()
	assert.NotContains(t, redacted.Email, "maria.garcia")
	assert.NotContains(t, redacted.Phone, "2024561414")
	assert.NotEqual(t, "Maria Garcia", redacted.Name)
	assert.NotContains(t, redacted.IP, "203.0.113.7")
}

func TestReasonCodeSeverity(t *testing.T) {
	assert.True(t, ReasonExtremeProfanityName.IsExtreme())
	assert.True(t, ReasonExtremeBurst.IsExtreme())
	assert.False(t, ReasonDisposableEmail.IsExtreme())
	assert.Equal(t, SeverityHigh, ReasonDisposableEmail.Severity())
}

func TestReasonString_PrefersDetail(t *testing.T) {
	assert.Equal(t, "Disposable email domain", Reason{Code: ReasonDisposableEmail}.String())
	assert.Equal(t, "custom", Reason{Code: ReasonDisposableEmail, Detail: "custom"}.String())
}
