package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reservable/booking-risk-engine/internal/domain/errors"
	"github.com/reservable/booking-risk-engine/internal/domain/risk"
)

// AssessmentRepository persists assessments and their reviews. Assessments
// are write-once; reviews are appended, never updated.
type AssessmentRepository struct {
	pool *pgxpool.Pool
}

// NewAssessmentRepository creates an assessment repository
func NewAssessmentRepository(pool *pgxpool.Pool) *AssessmentRepository {
	return &AssessmentRepository{pool: pool}
}

// SaveAssessment inserts a new assessment record. Breakdown and reasons are
// stored as JSONB so review tooling can replay the full decision.
func (r *AssessmentRepository) SaveAssessment(ctx context.Context, a *risk.Assessment) error {
	breakdown, err := json.Marshal(a.Breakdown)
	if err != nil {
		return fmt.Errorf("marshaling breakdown: %w", err)
	}
	reasons, err := json.Marshal(a.Reasons)
	if err != nil {
		return fmt.Errorf("marshaling reasons: %w", err)
	}

	query := `
		INSERT INTO risk_assessments (
			id, booking_ref, total_score, breakdown, reasons, state,
			analyzed_at, ai_used, ai_score, ai_narrative
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.pool.Exec(ctx, query,
		a.ID, a.BookingRef, a.TotalScore, breakdown, reasons, string(a.State),
		a.AnalyzedAt, a.AIUsed, a.AIScore, a.AINarrative)
	if err != nil {
		return fmt.Errorf("inserting assessment: %w", err)
	}

	return nil
}

// GetAssessment retrieves an assessment by ID
func (r *AssessmentRepository) GetAssessment(ctx context.Context, id uuid.UUID) (*risk.Assessment, error) {
	query := `
		SELECT id, booking_ref, total_score, breakdown, reasons, state,
		       analyzed_at, ai_used, ai_score, ai_narrative
		FROM risk_assessments
		WHERE id = $1`

	var (
		a         risk.Assessment
		breakdown []byte
		reasons   []byte
		state     string
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.BookingRef, &a.TotalScore, &breakdown, &reasons, &state,
		&a.AnalyzedAt, &a.AIUsed, &a.AIScore, &a.AINarrative)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("querying assessment: %w", err)
	}

	a.State = risk.State(state)
	if err := json.Unmarshal(breakdown, &a.Breakdown); err != nil {
		return nil, fmt.Errorf("unmarshaling breakdown: %w", err)
	}
	if err := json.Unmarshal(reasons, &a.Reasons); err != nil {
		return nil, fmt.Errorf("unmarshaling reasons: %w", err)
	}

	return &a, nil
}

// GetByBookingRef retrieves the most recent assessment for a booking
func (r *AssessmentRepository) GetByBookingRef(ctx context.Context, bookingRef string) (*risk.Assessment, error) {
	query := `
		SELECT id FROM risk_assessments
		WHERE booking_ref = $1
		ORDER BY analyzed_at DESC
		LIMIT 1`

	var id uuid.UUID
	if err := r.pool.QueryRow(ctx, query, bookingRef).Scan(&id); err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("querying assessment by booking ref: %w", err)
	}

	return r.GetAssessment(ctx, id)
}

// SaveReview appends a review to an assessment
func (r *AssessmentRepository) SaveReview(ctx context.Context, review *risk.Review) error {
	query := `
		INSERT INTO booking_reviews (id, assessment_id, outcome, reason, reviewer, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		review.ID, review.AssessmentID, string(review.Outcome),
		review.Reason, review.Reviewer, review.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting review: %w", err)
	}

	return nil
}

// GetReviews lists reviews for an assessment, oldest first
func (r *AssessmentRepository) GetReviews(ctx context.Context, assessmentID uuid.UUID) ([]risk.Review, error) {
	query := `
		SELECT id, assessment_id, outcome, reason, reviewer, created_at
		FROM booking_reviews
		WHERE assessment_id = $1
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("querying reviews: %w", err)
	}
	defer rows.Close()

	var reviews []risk.Review
	for rows.Next() {
		var (
			review  risk.Review
			outcome string
		)
		if err := rows.Scan(&review.ID, &review.AssessmentID, &outcome,
			&review.Reason, &review.Reviewer, &review.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning review: %w", err)
		}
		review.Outcome = risk.ReviewOutcome(outcome)
		reviews = append(reviews, review)
	}

	return reviews, rows.Err()
}
