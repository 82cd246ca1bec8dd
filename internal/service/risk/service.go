package risk

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reservable/booking-risk-engine/internal/domain/errors"
	"github.com/reservable/booking-risk-engine/internal/domain/risk"
	"github.com/reservable/booking-risk-engine/internal/infrastructure/config"
	"github.com/reservable/booking-risk-engine/internal/metrics"
)

// Dependencies wires the service's collaborators. AIClient, Repo and
// Whitelist may be nil: the engine evaluates without them and only loses the
// corresponding capability.
type Dependencies struct {
	Analyzers []Analyzer
	Scorer    *Scorer
	Fallback  *FallbackEvaluator
	AIClient  ReasoningClient
	Repo      Repository
	Whitelist WhitelistStore
	Tracker   VelocityTracker
	Metrics   *metrics.Registry
	Logger    *zap.Logger
}

type service struct {
	cfg       config.RiskConfig
	analyzers []Analyzer
	scorer    *Scorer
	fallback  *FallbackEvaluator
	aiClient  ReasoningClient
	repo      Repository
	whitelist WhitelistStore
	tracker   VelocityTracker
	metrics   *metrics.Registry
	logger    *zap.Logger
}

// NewService creates the evaluation service
func NewService(cfg config.RiskConfig, deps Dependencies) (Service, error) {
	if len(deps.Analyzers) == 0 {
		return nil, fmt.Errorf("at least one analyzer is required")
	}
	if deps.Scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}
	if deps.Fallback == nil {
		return nil, fmt.Errorf("fallback evaluator is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewNop()
	}

	return &service{
		cfg:       cfg,
		analyzers: deps.Analyzers,
		scorer:    deps.Scorer,
		fallback:  deps.Fallback,
		aiClient:  deps.AIClient,
		repo:      deps.Repo,
		whitelist: deps.Whitelist,
		tracker:   deps.Tracker,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}, nil
}

// Evaluate runs the full pipeline: whitelist suppression, parallel analyzers,
// composite scoring, the AI or fallback second opinion, state decision,
// persistence, and velocity recording. Signal-level problems degrade the
// score, they never fail the call.
func (s *service) Evaluate(ctx context.Context, sub risk.Submission) (*risk.Assessment, error) {
	if sub.BookingRef == "" {
		return nil, errors.NewValidationError("MISSING_BOOKING_REF", "booking reference is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.EvaluationTimeout)
	defer cancel()

	start := time.Now()
	suppressed := s.suppressedCategories(ctx, sub)
	breakdown := s.runAnalyzers(ctx, sub)

	for cat := range suppressed {
		if prior, ok := breakdown[cat]; ok && prior.Score > 0 {
			s.logger.Debug("category suppressed by whitelist",
				zap.String("booking_ref", sub.BookingRef),
				zap.String("category", string(cat)),
				zap.Int("suppressed_score", prior.Score))
		}
		breakdown[cat] = risk.CategoryResult{}
	}

	total := s.scorer.Score(breakdown)
	reasons := risk.FlattenReasons(breakdown)
	features := risk.MergedFeatures(breakdown)

	evaluation, aiUsed := s.secondOpinion(ctx, features, sub)
	combined := s.combine(total, evaluation.RiskScore)
	reasons = mergeReasons(reasons, evaluation.Reasons)

	state := risk.StateForScore(combined, s.cfg.SoftThreshold, s.cfg.HardThreshold)
	aiScore := evaluation.RiskScore
	// The second-opinion score is recorded either way for reproducibility;
	// the narrative is model output and stays empty on the fallback path.
	narrative := ""
	if aiUsed {
		narrative = evaluation.Narrative
	}

	assessment := &risk.Assessment{
		ID:          uuid.New(),
		BookingRef:  sub.BookingRef,
		TotalScore:  combined,
		Breakdown:   breakdown,
		Reasons:     reasons,
		State:       state,
		AnalyzedAt:  time.Now().UTC(),
		AIUsed:      aiUsed,
		AIScore:     &aiScore,
		AINarrative: narrative,
	}

	if s.repo != nil {
		// Persistence is best effort: the booking workflow gets its verdict
		// even when the audit store is down.
		if err := s.repo.SaveAssessment(ctx, assessment); err != nil {
			s.logger.Error("assessment persistence failed",
				zap.String("booking_ref", sub.BookingRef),
				zap.Error(err))
		}
	}

	s.recordVelocityEvents(ctx, sub)

	duration := time.Since(start)
	s.metrics.RecordEvaluation(ctx, duration, string(state), aiUsed)
	s.logger.Info("risk evaluation completed",
		zap.String("booking_ref", sub.BookingRef),
		zap.Int("total_score", combined),
		zap.String("state", string(state)),
		zap.Bool("ai_used", aiUsed),
		zap.Duration("duration", duration))

	return assessment, nil
}

// GetAssessment retrieves a persisted assessment
func (s *service) GetAssessment(ctx context.Context, id uuid.UUID) (*risk.Assessment, error) {
	if s.repo == nil {
		return nil, errors.NewInternalError("assessment repository is not configured")
	}
	return s.repo.GetAssessment(ctx, id)
}

// runAnalyzers fans the submission out to every analyzer. A panicking
// analyzer contributes a zero category instead of taking the evaluation down.
func (s *service) runAnalyzers(ctx context.Context, sub risk.Submission) map[risk.Category]risk.CategoryResult {
	results := make([]risk.CategoryResult, len(s.analyzers))

	var wg sync.WaitGroup
	for i, analyzer := range s.analyzers {
		wg.Add(1)
		go func(i int, analyzer Analyzer) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.logger.Error("analyzer panicked",
						zap.String("category", string(analyzer.Category())),
						zap.Any("panic", r))
					s.metrics.RecordAnalyzerFailure(ctx, string(analyzer.Category()))
					results[i] = risk.CategoryResult{}
				}
			}()
			results[i] = analyzer.Analyze(ctx, sub)
		}(i, analyzer)
	}
	wg.Wait()

	breakdown := make(map[risk.Category]risk.CategoryResult, len(risk.Categories()))
	for _, cat := range risk.Categories() {
		breakdown[cat] = risk.CategoryResult{}
	}
	for i, analyzer := range s.analyzers {
		breakdown[analyzer.Category()] = results[i]
	}
	return breakdown
}

// suppressedCategories resolves whitelist matches for the submission. Store
// failures suppress nothing; scoring too high is safer than scoring blind.
func (s *service) suppressedCategories(ctx context.Context, sub risk.Submission) map[risk.Category]bool {
	if s.whitelist == nil {
		return nil
	}

	entries, err := s.whitelist.ActiveEntries(ctx)
	if err != nil {
		s.logger.Warn("whitelist lookup failed, no suppression applied", zap.Error(err))
		return nil
	}

	return risk.SuppressedCategories(entries, sub)
}

// secondOpinion produces the evaluator's independent estimate. Any AI-path
// problem downgrades to the deterministic table, never to an error.
func (s *service) secondOpinion(ctx context.Context, features risk.FeatureVector, sub risk.Submission) (Evaluation, bool) {
	if !s.cfg.AI.Enabled || s.aiClient == nil {
		return s.fallback.Evaluate(features), false
	}
	if ctx.Err() != nil {
		s.metrics.RecordAIFallback(ctx, "deadline_exhausted")
		return s.fallback.Evaluate(features), false
	}

	aiCtx, cancel := context.WithTimeout(ctx, s.cfg.AI.Timeout)
	defer cancel()

	evaluation, err := s.aiClient.Evaluate(aiCtx, features, sub.Redact())
	if err != nil {
		s.logger.Warn("ai evaluation failed, using fallback",
			zap.String("booking_ref", sub.BookingRef),
			zap.Error(err))
		s.metrics.RecordAIFallback(ctx, "call_failed")
		return s.fallback.Evaluate(features), false
	}

	evaluation.RiskScore = clampScore(evaluation.RiskScore)
	return evaluation, true
}

// combine folds the evaluator's estimate into the composite score
func (s *service) combine(total, evaluatorScore int) int {
	switch s.cfg.AI.CombinePolicy {
	case config.CombinePolicyBlend:
		w := s.cfg.AI.BlendAIWeight
		blended := float64(total)*(1-w) + float64(evaluatorScore)*w
		// Blending must not forgive rule-based floors.
		return clampScore(max(total, int(math.Round(blended))))
	default:
		return clampScore(max(total, evaluatorScore))
	}
}

// recordVelocityEvents appends this submission to the sliding windows after
// scoring. The behavioral analyzer already counted the in-flight submission,
// so recording before evaluation would double it.
func (s *service) recordVelocityEvents(ctx context.Context, sub risk.Submission) {
	if s.tracker == nil {
		return
	}
	if !sub.IP.IsEmpty() {
		if err := s.tracker.Record(ctx, IPVelocityKey(sub.IP.String())); err != nil {
			s.logger.Debug("ip velocity record failed", zap.Error(err))
		}
	}
	if sub.DeviceID != "" {
		if err := s.tracker.Record(ctx, DeviceVelocityKey(sub.DeviceID)); err != nil {
			s.logger.Debug("device velocity record failed", zap.Error(err))
		}
	}
}

// mergeReasons appends evaluator reasons not already present by code
func mergeReasons(base []risk.Reason, extra []risk.Reason) []risk.Reason {
	seen := make(map[risk.ReasonCode]bool, len(base))
	for _, r := range base {
		seen[r.Code] = true
	}
	for _, r := range extra {
		if !seen[r.Code] {
			seen[r.Code] = true
			base = append(base, r)
		}
	}
	return base
}
