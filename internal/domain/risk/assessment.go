package risk

import (
	"time"

	"github.com/google/uuid"

	"github.com/reservable/booking-risk-engine/internal/domain/values"
)

// Category identifies one analyzer's signal domain
type Category string

const (
	CategoryEmail      Category = "email"
	CategoryPhone      Category = "phone"
	CategoryName       Category = "name"
	CategoryIP         Category = "ip"
	CategoryBehavioral Category = "behavioral"
)

// Categories lists all analyzer categories in scoring order
func Categories() []Category {
	return []Category{CategoryEmail, CategoryPhone, CategoryName, CategoryIP, CategoryBehavioral}
}

// State is the tri-state review outcome attached to a booking
type State string

const (
	StateNone State = "none"
	StateSoft State = "soft"
	StateHard State = "hard"
)

// StateForScore maps a combined score to a review state using the configured
// thresholds. Thresholds are validated at startup (soft < hard).
func StateForScore(score, softThreshold, hardThreshold int) State {
	switch {
	case score >= hardThreshold:
		return StateHard
	case score >= softThreshold:
		return StateSoft
	default:
		return StateNone
	}
}

// Submission carries the raw reservation fields the engine evaluates.
// Fields may be empty; a missing signal scores zero, it is not an error.
type Submission struct {
	BookingRef string
	Email      values.Email
	Phone      values.PhoneNumber
	FullName   string
	IP         values.IPAddress
	UserAgent  string
	Notes      string
	DeviceID   string
}

// RedactedContext is the masked PII payload shared with the AI reasoning
// service. Raw values never leave the process.
type RedactedContext struct {
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Name      string `json:"name"`
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Redact builds the masked context for outbound AI calls
func (s Submission) Redact() RedactedContext {
	return RedactedContext{
		Email:     s.Email.Masked(),
		Phone:     s.Phone.Masked(),
		Name:      maskName(s.FullName),
		IP:        s.IP.Masked(),
		UserAgent: s.UserAgent,
		Notes:     truncate(s.Notes, 280),
	}
}

// CategoryResult is one analyzer's bounded output
type CategoryResult struct {
	Score    int           `json:"score"`
	Reasons  []Reason      `json:"reasons,omitempty"`
	Features FeatureVector `json:"features"`
}

// HasExtremeReason reports whether any reason in the result is extreme
func (r CategoryResult) HasExtremeReason() bool {
	for _, reason := range r.Reasons {
		if reason.Code.IsExtreme() {
			return true
		}
	}
	return false
}

// Assessment is the immutable record of one evaluation. TotalScore is always
// derivable from Breakdown plus the scorer's override rules; the two are
// persisted together and never patched independently.
type Assessment struct {
	ID          uuid.UUID                   `json:"id"`
	BookingRef  string                      `json:"booking_ref"`
	TotalScore  int                         `json:"total_score"`
	Breakdown   map[Category]CategoryResult `json:"breakdown"`
	Reasons     []Reason                    `json:"reasons"`
	State       State                       `json:"state"`
	AnalyzedAt  time.Time                   `json:"analyzed_at"`
	AIUsed      bool                        `json:"ai_used"`
	AIScore     *int                        `json:"ai_score,omitempty"`
	AINarrative string                      `json:"ai_narrative,omitempty"`
}

// FlattenReasons collects reasons across categories in category order,
// deduplicated by code while keeping the first formatted detail seen.
func FlattenReasons(breakdown map[Category]CategoryResult) []Reason {
	seen := make(map[ReasonCode]bool)
	var out []Reason
	for _, cat := range Categories() {
		result, ok := breakdown[cat]
		if !ok {
			continue
		}
		for _, r := range result.Reasons {
			if seen[r.Code] {
				continue
			}
			seen[r.Code] = true
			out = append(out, r)
		}
	}
	return out
}

// ReasonStrings renders reasons to their display strings
func ReasonStrings(reasons []Reason) []string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = r.String()
	}
	return out
}

// MergedFeatures folds every category's feature vector into one
func MergedFeatures(breakdown map[Category]CategoryResult) FeatureVector {
	var fv FeatureVector
	for _, result := range breakdown {
		fv = fv.Merge(result.Features)
	}
	return fv
}

func maskName(name string) string {
	r := []rune(name)
	if len(r) <= 2 {
		return name
	}
	return string(r[0]) + "***" + string(r[len(r)-1])
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
