package risk

import (
	"context"
	"strings"

	"github.com/reservable/booking-risk-engine/internal/domain/risk"
)

// Name category scores. Profanity at the start of a name scores higher than
// later tokens; someone leading with it is not a coincidence of surname.
const (
	scorePlaceholderName  = 50
	scoreShortNameToken   = 40
	scoreRepeatedTokens   = 30
	scoreProfaneNameLater = 60
	scoreProfaneNameLead  = 90
	scoreExtremeName      = 100
)

type nameAnalyzer struct {
	placeholders map[string]bool
}

// NewNameAnalyzer builds the name analyzer with the built-in placeholder list
// extended by deployment configuration.
func NewNameAnalyzer(extraPlaceholders []string) Analyzer {
	placeholders := make(map[string]bool, len(placeholderNames)+len(extraPlaceholders))
	for n := range placeholderNames {
		placeholders[n] = true
	}
	for _, n := range extraPlaceholders {
		placeholders[normalizeName(n)] = true
	}
	return &nameAnalyzer{placeholders: placeholders}
}

func (a *nameAnalyzer) Category() risk.Category {
	return risk.CategoryName
}

func (a *nameAnalyzer) Analyze(_ context.Context, sub risk.Submission) risk.CategoryResult {
	var result risk.CategoryResult

	normalized := normalizeName(sub.FullName)
	if normalized == "" {
		return result
	}
	tokens := strings.Fields(normalized)

	if a.placeholders[normalized] {
		result.Features.PlaceholderName = true
		result.Score = max(result.Score, scorePlaceholderName)
		result.Reasons = append(result.Reasons, risk.NewReason(risk.ReasonPlaceholderName))
	}

	if hasRepeatedToken(tokens) {
		result.Features.RepeatedNameTokens = true
		result.Score = max(result.Score, scoreRepeatedTokens)
		result.Reasons = append(result.Reasons, risk.NewReason(risk.ReasonRepeatedNameTokens))
	}

	if hasShortToken(tokens) {
		result.Features.ShortNameToken = true
		result.Score = max(result.Score, scoreShortNameToken)
		result.Reasons = append(result.Reasons, risk.NewReason(risk.ReasonShortNameToken))
	}

	hit := scanProfanity(normalized, legitNameTokens)
	switch hit.tier {
	case profanityExtreme:
		result.Features.ProfaneName = true
		result.Score = scoreExtremeName
		result.Reasons = append(result.Reasons, risk.NewReason(risk.ReasonExtremeProfanityName))
	case profanityOffensive:
		result.Features.ProfaneName = true
		if hit.atStart {
			result.Score = max(result.Score, scoreProfaneNameLead)
		} else {
			result.Score = max(result.Score, scoreProfaneNameLater)
		}
		result.Reasons = append(result.Reasons, risk.NewReason(risk.ReasonProfaneName))
	}

	return result
}

// normalizeName lowercases and collapses whitespace
func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(name))), " ")
}

// hasRepeatedToken reports whether any name token appears twice
func hasRepeatedToken(tokens []string) bool {
	if len(tokens) < 2 {
		return false
	}
	seen := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		if seen[tok] {
			return true
		}
		seen[tok] = true
	}
	return false
}

// hasShortToken flags single-character tokens in multi-token names. A lone
// mononym is left alone; initials in "J Smith" are what this catches.
func hasShortToken(tokens []string) bool {
	if len(tokens) < 2 {
		return false
	}
	for _, tok := range tokens {
		if len([]rune(tok)) < 2 {
			return true
		}
	}
	return false
}
