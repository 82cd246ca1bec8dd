package risk

import (
	"fmt"
	"sort"

	"github.com/reservable/booking-risk-engine/internal/domain/risk"
)

// fallbackTier splits signals into high and medium bands for combination
type fallbackTier int

const (
	tierMedium fallbackTier = iota
	tierHigh
)

// fallbackSignal is one row of the deterministic scoring table
type fallbackSignal struct {
	fired  func(risk.FeatureVector) bool
	code   risk.ReasonCode
	detail string
	weight int
	tier   fallbackTier
}

// fallbackTable is exhaustive over the boolean fields of FeatureVector.
// Ordered by weight so reason selection is stable.
var fallbackTable = []fallbackSignal{
	{func(f risk.FeatureVector) bool { return f.ProfaneEmail }, risk.ReasonProfaneEmail, "Offensive email address", 70, tierHigh},
	{func(f risk.FeatureVector) bool { return f.ProfaneName }, risk.ReasonProfaneName, "Offensive name", 70, tierHigh},
	{func(f risk.FeatureVector) bool { return f.VelocityBurst }, risk.ReasonRapidBurst, "Burst of bookings from the same address", 60, tierHigh},
	{func(f risk.FeatureVector) bool { return f.DeviceAbuse }, risk.ReasonExtremeDeviceAbuse, "Excessive bookings from one device", 55, tierHigh},
	{func(f risk.FeatureVector) bool { return f.TestNumber }, risk.ReasonTestNumber, "Known test phone number", 50, tierHigh},
	{func(f risk.FeatureVector) bool { return f.DisposableEmail }, risk.ReasonDisposableEmail, "Disposable email service detected", 45, tierHigh},
	{func(f risk.FeatureVector) bool { return f.TorExitIP }, risk.ReasonTorExit, "IP is a known Tor exit node", 40, tierHigh},
	{func(f risk.FeatureVector) bool { return f.PlaceholderName }, risk.ReasonPlaceholderName, "Placeholder name detected", 35, tierMedium},
	{func(f risk.FeatureVector) bool { return f.GibberishEmail }, risk.ReasonGibberishEmail, "Email address looks machine-generated", 30, tierMedium},
	{func(f risk.FeatureVector) bool { return f.RepeatingDigitsPhone }, risk.ReasonRepeatingDigits, "Phone number uses repeating digits", 30, tierMedium},
	{func(f risk.FeatureVector) bool { return f.SequentialPhone }, risk.ReasonSequentialDigits, "Phone number uses sequential digits", 25, tierMedium},
	{func(f risk.FeatureVector) bool { return f.ShortNameToken }, risk.ReasonShortNameToken, "Name contains single-letter tokens", 25, tierMedium},
	{func(f risk.FeatureVector) bool { return f.InvalidAreaCode }, risk.ReasonInvalidAreaCode, "Phone area code is not assignable", 25, tierMedium},
	{func(f risk.FeatureVector) bool { return f.NoReplyEmail }, risk.ReasonNoReplyEmail, "No-reply email address used", 20, tierMedium},
	{func(f risk.FeatureVector) bool { return f.VelocityVolume }, risk.ReasonHighVolume, "High booking volume from the same address", 20, tierMedium},
	{func(f risk.FeatureVector) bool { return f.RepeatedNameTokens }, risk.ReasonRepeatedNameTokens, "Name repeats the same token", 20, tierMedium},
	{func(f risk.FeatureVector) bool { return f.DatacenterIP }, risk.ReasonDatacenterIP, "IP belongs to a datacenter range", 15, tierMedium},
}

// maxFallbackReasons caps the reason list on the fallback path
const maxFallbackReasons = 5

// FallbackEvaluator scores a merged feature vector without any external
// dependency. It stands in for the AI evaluator whenever that path is
// disabled, rate limited, timed out, or failing.
type FallbackEvaluator struct{}

// NewFallbackEvaluator returns the deterministic table evaluator
func NewFallbackEvaluator() *FallbackEvaluator {
	return &FallbackEvaluator{}
}

// Evaluate scores the feature vector. The dominant signal sets the base;
// additional signals add 10 (high) or 5 (medium) points. Two or more high
// signals floor the score at 70, medium-only vectors stay below 70.
func (e *FallbackEvaluator) Evaluate(features risk.FeatureVector) Evaluation {
	var fired []fallbackSignal
	highCount, medCount := 0, 0

	for _, sig := range fallbackTable {
		if !sig.fired(features) {
			continue
		}
		fired = append(fired, sig)
		if sig.tier == tierHigh {
			highCount++
		} else {
			medCount++
		}
	}

	if len(fired) == 0 {
		return Evaluation{Narrative: "No risk signals present"}
	}

	sort.SliceStable(fired, func(i, j int) bool {
		return fired[i].weight > fired[j].weight
	})

	score := fired[0].weight
	for _, sig := range fired[1:] {
		if sig.tier == tierHigh {
			score += 10
		} else {
			score += 5
		}
	}

	if highCount >= 2 && score < 70 {
		score = 70
	}
	if highCount == 0 {
		if medCount >= 2 && score < 30 {
			score = 30
		}
		if score > 69 {
			score = 69
		}
	}
	score = clampScore(score)

	reasons := make([]risk.Reason, 0, maxFallbackReasons)
	for _, sig := range fired {
		if len(reasons) == maxFallbackReasons {
			break
		}
		reasons = append(reasons, risk.Reason{Code: sig.code, Detail: sig.detail})
	}

	return Evaluation{
		RiskScore: score,
		Reasons:   reasons,
		Narrative: fmt.Sprintf("Deterministic evaluation of %d signals, dominant: %s", len(fired), fired[0].detail),
	}
}
