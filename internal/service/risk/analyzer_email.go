package risk

import (
	"context"
	"strings"

	"github.com/reservable/booking-risk-engine/internal/domain/risk"
)

// Email category scores. Non-profane signals combine by max; profanity floors
// the category regardless of what else fired.
const (
	scoreDisposableEmail = 40
	scoreNoReplyEmail    = 25
	scoreGibberishEmail  = 20
	scoreProfaneEmail    = 80
	scoreExtremeEmail    = 100
)

type emailAnalyzer struct {
	disposable map[string]bool
}

// NewEmailAnalyzer builds the email analyzer with the built-in disposable
// domain list extended by deployment configuration.
func NewEmailAnalyzer(extraDisposable []string) Analyzer {
	disposable := make(map[string]bool, len(disposableDomains)+len(extraDisposable))
	for d := range disposableDomains {
		disposable[d] = true
	}
	for _, d := range extraDisposable {
		disposable[strings.ToLower(strings.TrimSpace(d))] = true
	}
	return &emailAnalyzer{disposable: disposable}
}

func (a *emailAnalyzer) Category() risk.Category {
	return risk.CategoryEmail
}

func (a *emailAnalyzer) Analyze(_ context.Context, sub risk.Submission) risk.CategoryResult {
	var result risk.CategoryResult
	if sub.Email.IsEmpty() {
		return result
	}

	local := sub.Email.LocalPart()
	domain := sub.Email.Domain()

	if a.disposable[domain] {
		result.Features.DisposableEmail = true
		result.Score = max(result.Score, scoreDisposableEmail)
		result.Reasons = append(result.Reasons, risk.NewReason(risk.ReasonDisposableEmail))
	}

	if noReplyLocalParts[strings.ToLower(local)] {
		result.Features.NoReplyEmail = true
		result.Score = max(result.Score, scoreNoReplyEmail)
		result.Reasons = append(result.Reasons, risk.NewReason(risk.ReasonNoReplyEmail))
	}

	if isGibberish(local) {
		result.Features.GibberishEmail = true
		result.Score = max(result.Score, scoreGibberishEmail)
		result.Reasons = append(result.Reasons, risk.NewReason(risk.ReasonGibberishEmail))
	}

	// Screen the local part and the domain, not the TLD: booking with
	// fucker@example.com and john@dick.com must both flag.
	hit := scanProfanity(local+" "+domainWithoutTLD(domain), nil)
	switch hit.tier {
	case profanityExtreme:
		result.Features.ProfaneEmail = true
		result.Score = scoreExtremeEmail
		result.Reasons = append(result.Reasons, risk.NewReason(risk.ReasonExtremeProfanityEmail))
	case profanityOffensive:
		result.Features.ProfaneEmail = true
		result.Score = max(result.Score, scoreProfaneEmail)
		result.Reasons = append(result.Reasons, risk.NewReason(risk.ReasonProfaneEmail))
	}

	return result
}

// isGibberish flags local parts that look keyboard-mashed: long runs without
// vowels or almost no vowels at all. Short local parts are left alone, real
// initialisms are too common.
func isGibberish(local string) bool {
	letters := make([]rune, 0, len(local))
	for _, r := range strings.ToLower(local) {
		if r >= 'a' && r <= 'z' {
			letters = append(letters, r)
		}
	}
	if len(letters) < 7 {
		return false
	}

	vowels := 0
	consonantRun := 0
	maxConsonantRun := 0
	for _, r := range letters {
		switch r {
		case 'a', 'e', 'i', 'o', 'u', 'y':
			vowels++
			consonantRun = 0
		default:
			consonantRun++
			if consonantRun > maxConsonantRun {
				maxConsonantRun = consonantRun
			}
		}
	}

	if maxConsonantRun >= 6 {
		return true
	}
	return float64(vowels)/float64(len(letters)) < 0.15
}

// domainWithoutTLD strips the final label so "gmail.com" screens as "gmail"
func domainWithoutTLD(domain string) string {
	if i := strings.LastIndex(domain, "."); i > 0 {
		return domain[:i]
	}
	return domain
}
