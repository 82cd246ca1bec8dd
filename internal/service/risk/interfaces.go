package risk

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/reservable/booking-risk-engine/internal/domain/risk"
)

// Service is the synchronous evaluation entry point used by the booking
// workflow. Evaluate never fails the booking path for signal problems; only
// context cancellation or an unusable submission surfaces as an error.
type Service interface {
	// Evaluate scores a reservation submission and persists the assessment
	Evaluate(ctx context.Context, sub risk.Submission) (*risk.Assessment, error)
	// GetAssessment retrieves a persisted assessment for review replay
	GetAssessment(ctx context.Context, id uuid.UUID) (*risk.Assessment, error)
}

// Analyzer scores one signal category. Implementations are pure functions of
// the submission (plus the velocity tracker for the behavioral analyzer) and
// safe to run concurrently.
type Analyzer interface {
	Category() risk.Category
	Analyze(ctx context.Context, sub risk.Submission) risk.CategoryResult
}

// VelocityTracker answers sliding-window event counts for hashed identifiers
type VelocityTracker interface {
	// Record appends the current timestamp to the key's event log
	Record(ctx context.Context, key string) error
	// CountInWindow counts events for the key within the window; read-only
	CountInWindow(ctx context.Context, key string, window time.Duration) (int, error)
}

// WhitelistStore exposes the administrator-curated allow list. Read on every
// evaluation; treated as read-mostly external configuration.
type WhitelistStore interface {
	ActiveEntries(ctx context.Context) ([]risk.WhitelistEntry, error)
}

// Repository persists assessments for audit and review replay
type Repository interface {
	SaveAssessment(ctx context.Context, a *risk.Assessment) error
	GetAssessment(ctx context.Context, id uuid.UUID) (*risk.Assessment, error)
}

// Evaluation is the second risk estimate produced by the AI-assisted
// evaluator or its deterministic fallback.
type Evaluation struct {
	RiskScore int
	Reasons   []risk.Reason // at most five, ordered by severity
	Narrative string
}

// ReasoningClient calls the external AI reasoning service. Any error maps to
// the deterministic fallback, never to an unhandled failure.
type ReasoningClient interface {
	Evaluate(ctx context.Context, features risk.FeatureVector, redacted risk.RedactedContext) (Evaluation, error)
}
