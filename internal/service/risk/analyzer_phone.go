package risk

import (
	"context"

	"github.com/reservable/booking-risk-engine/internal/domain/risk"
)

// Phone category scores, combined by max
const (
	scoreTestNumber      = 60
	scoreRepeatingDigits = 40
	scoreSequential      = 30
	scoreInvalidAreaCode = 25
)

// NumberingPlan validates region-specific number structure. The default NANP
// plan covers +1 numbers; other regions plug in their own rules.
type NumberingPlan interface {
	// ValidArea reports whether the number's area code is assignable
	ValidArea(phone string, area string) bool
}

type nanpPlan struct{}

// NewNANPPlan returns the North American numbering plan rules
func NewNANPPlan() NumberingPlan {
	return nanpPlan{}
}

// ValidArea rejects area codes that cannot be assigned under NANP: leading
// 0 or 1, and the fictional 555.
func (nanpPlan) ValidArea(_ string, area string) bool {
	if len(area) != 3 {
		return false
	}
	if area[0] == '0' || area[0] == '1' {
		return false
	}
	return area != "555"
}

type phoneAnalyzer struct {
	plan NumberingPlan
}

// NewPhoneAnalyzer builds the phone analyzer with a numbering plan
func NewPhoneAnalyzer(plan NumberingPlan) Analyzer {
	return &phoneAnalyzer{plan: plan}
}

func (a *phoneAnalyzer) Category() risk.Category {
	return risk.CategoryPhone
}

func (a *phoneAnalyzer) Analyze(_ context.Context, sub risk.Submission) risk.CategoryResult {
	var result risk.CategoryResult
	if sub.Phone.IsEmpty() {
		return result
	}

	digits := sub.Phone.NationalDigits()

	if testPhoneNumbers[digits] || isFictionalExchange(digits) {
		result.Features.TestNumber = true
		result.Score = max(result.Score, scoreTestNumber)
		result.Reasons = append(result.Reasons, risk.NewReason(risk.ReasonTestNumber))
	}

	if longestDigitRun(digits) >= 5 {
		result.Features.RepeatingDigitsPhone = true
		result.Score = max(result.Score, scoreRepeatingDigits)
		result.Reasons = append(result.Reasons, risk.NewReason(risk.ReasonRepeatingDigits))
	}

	if longestSequentialRun(digits) >= 5 {
		result.Features.SequentialPhone = true
		result.Score = max(result.Score, scoreSequential)
		result.Reasons = append(result.Reasons, risk.NewReason(risk.ReasonSequentialDigits))
	}

	if sub.Phone.IsNANP() && !a.plan.ValidArea(sub.Phone.E164(), sub.Phone.AreaCode()) {
		result.Features.InvalidAreaCode = true
		result.Score = max(result.Score, scoreInvalidAreaCode)
		result.Reasons = append(result.Reasons, risk.NewReason(risk.ReasonInvalidAreaCode))
	}

	return result
}

// isFictionalExchange flags 555-prefixed exchanges reserved for fiction and
// directory assistance.
func isFictionalExchange(digits string) bool {
	return len(digits) == 10 && digits[3:6] == "555"
}

// longestDigitRun returns the longest run of one repeated digit
func longestDigitRun(digits string) int {
	best, run := 0, 0
	var prev byte
	for i := 0; i < len(digits); i++ {
		if i > 0 && digits[i] == prev {
			run++
		} else {
			run = 1
		}
		prev = digits[i]
		if run > best {
			best = run
		}
	}
	return best
}

// longestSequentialRun returns the longest strictly ascending or descending
// run of adjacent digits ("12345", "98765").
func longestSequentialRun(digits string) int {
	if len(digits) == 0 {
		return 0
	}
	bestUp, up := 1, 1
	bestDown, down := 1, 1
	for i := 1; i < len(digits); i++ {
		if digits[i] == digits[i-1]+1 {
			up++
		} else {
			up = 1
		}
		if digits[i] == digits[i-1]-1 {
			down++
		} else {
			down = 1
		}
		if up > bestUp {
			bestUp = up
		}
		if down > bestDown {
			bestDown = down
		}
	}
	return max(bestUp, bestDown)
}
