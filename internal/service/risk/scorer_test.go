package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reservable/booking-risk-engine/internal/domain/risk"
	"github.com/reservable/booking-risk-engine/internal/infrastructure/config"
)

func defaultScorer() *Scorer {
	return NewScorer(config.Defaults().Risk.Weights)
}

func breakdownWith(scores map[risk.Category]int) map[risk.Category]risk.CategoryResult {
	breakdown := make(map[risk.Category]risk.CategoryResult)
	for _, cat := range risk.Categories() {
		breakdown[cat] = risk.CategoryResult{Score: scores[cat]}
	}
	return breakdown
}

func TestScorer_EmptyBreakdownScoresZero(t *testing.T) {
	assert.Equal(t, 0, defaultScorer().Score(breakdownWith(nil)))
}

func TestScorer_WeightedSum(t *testing.T) {
	// 0.25*40 + 0.25*0 + 0.15*0 + 0.20*15 + 0.15*0 = 13
	total := defaultScorer().Score(breakdownWith(map[risk.Category]int{
		risk.CategoryEmail: 40,
		risk.CategoryIP:    15,
	}))
	assert.Equal(t, 13, total)
}

func TestScorer_ExtremeReasonFloorsDilutedScore(t *testing.T) {
	// A single extreme category weighted at 0.15 would otherwise land at 15.
	breakdown := breakdownWith(map[risk.Category]int{risk.CategoryName: 100})
	result := breakdown[risk.CategoryName]
	result.Reasons = []risk.Reason{risk.NewReason(risk.ReasonExtremeProfanityName)}
	breakdown[risk.CategoryName] = result

	total := defaultScorer().Score(breakdown)
	assert.GreaterOrEqual(t, total, 70)
}

func TestScorer_NoFloorWithoutExtremeReason(t *testing.T) {
	total := defaultScorer().Score(breakdownWith(map[risk.Category]int{risk.CategoryName: 100}))
	assert.Equal(t, 15, total)
}

func TestScorer_CompoundingElevatedCategories(t *testing.T) {
	total := defaultScorer().Score(breakdownWith(map[risk.Category]int{
		risk.CategoryEmail: 50,
		risk.CategoryPhone: 60,
	}))
	assert.Equal(t, 100, total)
}

func TestScorer_SingleElevatedCategoryDoesNotCompound(t *testing.T) {
	total := defaultScorer().Score(breakdownWith(map[risk.Category]int{
		risk.CategoryEmail: 80,
		risk.CategoryPhone: 40,
	}))
	assert.Equal(t, 30, total)
}

func TestScorer_AllCategoriesMaxedClampsTo100(t *testing.T) {
	total := defaultScorer().Score(breakdownWith(map[risk.Category]int{
		risk.CategoryEmail:      100,
		risk.CategoryPhone:      100,
		risk.CategoryName:       100,
		risk.CategoryIP:         100,
		risk.CategoryBehavioral: 100,
	}))
	assert.Equal(t, 100, total)
}

func TestScorer_MissingCategoriesContributeNothing(t *testing.T) {
	breakdown := map[risk.Category]risk.CategoryResult{
		risk.CategoryEmail: {Score: 40},
	}
	assert.Equal(t, 10, defaultScorer().Score(breakdown))
}

func TestScorer_DeterministicForSameBreakdown(t *testing.T) {
	breakdown := breakdownWith(map[risk.Category]int{
		risk.CategoryEmail:      25,
		risk.CategoryBehavioral: 70,
	})
	scorer := defaultScorer()
	first := scorer.Score(breakdown)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, scorer.Score(breakdown))
	}
}
