package risk

import (
	"time"

	"github.com/google/uuid"

	"github.com/reservable/booking-risk-engine/internal/domain/errors"
)

// ReviewOutcome is a staff member's verdict on a held booking
type ReviewOutcome string

const (
	ReviewApproved ReviewOutcome = "approved"
	ReviewRejected ReviewOutcome = "rejected"
)

// Review records the manual resolution of a soft or hard hold. Assessments
// stay immutable; the review is a separate record referencing one.
type Review struct {
	ID           uuid.UUID     `json:"id"`
	AssessmentID uuid.UUID     `json:"assessment_id"`
	Outcome      ReviewOutcome `json:"outcome"`
	Reason       string        `json:"reason,omitempty"`
	Reviewer     string        `json:"reviewer"`
	CreatedAt    time.Time     `json:"created_at"`
}

// NewReview builds a validated review. Rejections must say why.
func NewReview(assessmentID uuid.UUID, outcome ReviewOutcome, reason, reviewer string) (*Review, error) {
	switch outcome {
	case ReviewApproved, ReviewRejected:
	default:
		return nil, errors.NewValidationError("INVALID_OUTCOME", "review outcome must be approved or rejected")
	}
	if reviewer == "" {
		return nil, errors.NewValidationError("MISSING_REVIEWER", "reviewer is required")
	}
	if outcome == ReviewRejected && reason == "" {
		return nil, errors.ErrReviewReasonMissing
	}

	return &Review{
		ID:           uuid.New(),
		AssessmentID: assessmentID,
		Outcome:      outcome,
		Reason:       reason,
		Reviewer:     reviewer,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
