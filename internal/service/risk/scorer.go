package risk

import (
	"math"

	"github.com/reservable/booking-risk-engine/internal/domain/risk"
	"github.com/reservable/booking-risk-engine/internal/infrastructure/config"
)

// Override rule constants. These apply after the weighted sum and are
// deliberately not configurable: they encode review policy, not tuning.
const (
	extremeReasonFloor    = 70
	compoundingScore      = 100
	compoundingThreshold  = 50
	compoundingCategories = 2
)

// Scorer folds per-category results into the composite total. Pure and
// stateless; the same breakdown always produces the same total.
type Scorer struct {
	weights config.WeightsConfig
}

// NewScorer builds a scorer from validated category weights
func NewScorer(weights config.WeightsConfig) *Scorer {
	return &Scorer{weights: weights}
}

// Score computes the composite total: weighted sum, then the extreme-reason
// floor, then the compounding override, clamped to [0,100].
func (s *Scorer) Score(breakdown map[risk.Category]risk.CategoryResult) int {
	var weighted float64
	elevated := 0
	extreme := false

	for _, cat := range risk.Categories() {
		result, ok := breakdown[cat]
		if !ok {
			continue
		}
		weighted += s.weightFor(cat) * float64(result.Score)
		if result.Score >= compoundingThreshold {
			elevated++
		}
		if result.HasExtremeReason() {
			extreme = true
		}
	}

	total := int(math.Floor(weighted))

	// A single extreme signal must survive dilution by clean categories.
	if extreme && total < extremeReasonFloor {
		total = extremeReasonFloor
	}

	// Independent elevated categories compound rather than average out.
	if elevated >= compoundingCategories {
		total = compoundingScore
	}

	return clampScore(total)
}

func (s *Scorer) weightFor(cat risk.Category) float64 {
	switch cat {
	case risk.CategoryEmail:
		return s.weights.Email
	case risk.CategoryPhone:
		return s.weights.Phone
	case risk.CategoryName:
		return s.weights.Name
	case risk.CategoryIP:
		return s.weights.IP
	case risk.CategoryBehavioral:
		return s.weights.Behavioral
	default:
		return 0
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
