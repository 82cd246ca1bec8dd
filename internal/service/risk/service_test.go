package risk

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/reservable/booking-risk-engine/internal/domain/errors"
	"github.com/reservable/booking-risk-engine/internal/domain/risk"
	"github.com/reservable/booking-risk-engine/internal/domain/values"
	"github.com/reservable/booking-risk-engine/internal/infrastructure/config"
)

type fakeRepo struct {
	mu    sync.Mutex
	saved []*risk.Assessment
	err   error
}

func (f *fakeRepo) SaveAssessment(_ context.Context, a *risk.Assessment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, a)
	return nil
}

func (f *fakeRepo) GetAssessment(_ context.Context, id uuid.UUID) (*risk.Assessment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.saved {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, errors.ErrAssessmentNotFound
}

type fakeWhitelist struct {
	entries []risk.WhitelistEntry
	err     error
}

func (f *fakeWhitelist) ActiveEntries(context.Context) ([]risk.WhitelistEntry, error) {
	return f.entries, f.err
}

type stubAIClient struct {
	evaluation Evaluation
	err        error
	calls      int
}

func (s *stubAIClient) Evaluate(context.Context, risk.FeatureVector, risk.RedactedContext) (Evaluation, error) {
	s.calls++
	return s.evaluation, s.err
}

type panickingAnalyzer struct{ cat risk.Category }

func (p panickingAnalyzer) Category() risk.Category { return p.cat }
func (p panickingAnalyzer) Analyze(context.Context, risk.Submission) risk.CategoryResult {
	panic("analyzer exploded")
}

type fixture struct {
	service   Service
	repo      *fakeRepo
	tracker   *fakeTracker
	whitelist *fakeWhitelist
	ai        *stubAIClient
	cfg       config.RiskConfig
}

type fixtureOption func(*fixture, *Dependencies, *config.RiskConfig)

func withAI(client *stubAIClient) fixtureOption {
	return func(f *fixture, deps *Dependencies, cfg *config.RiskConfig) {
		cfg.AI.Enabled = true
		cfg.AI.BaseURL = "http://ai.internal"
		f.ai = client
		deps.AIClient = client
	}
}

func withWhitelist(entries ...risk.WhitelistEntry) fixtureOption {
	return func(f *fixture, deps *Dependencies, _ *config.RiskConfig) {
		f.whitelist.entries = entries
	}
}

func withAnalyzers(analyzers ...Analyzer) fixtureOption {
	return func(_ *fixture, deps *Dependencies, _ *config.RiskConfig) {
		deps.Analyzers = analyzers
	}
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	cfg := config.Defaults().Risk
	f := &fixture{
		repo:      &fakeRepo{},
		tracker:   newFakeTracker(),
		whitelist: &fakeWhitelist{},
	}

	deps := Dependencies{
		Analyzers: []Analyzer{
			NewEmailAnalyzer(nil),
			NewPhoneAnalyzer(NewNANPPlan()),
			NewNameAnalyzer(nil),
			NewIPAnalyzer(nil, nil),
			NewBehaviorAnalyzer(f.tracker, cfg.Velocity),
		},
		Scorer:    NewScorer(cfg.Weights),
		Fallback:  NewFallbackEvaluator(),
		Repo:      f.repo,
		Whitelist: f.whitelist,
		Tracker:   f.tracker,
		Logger:    zaptest.NewLogger(t),
	}

	for _, opt := range opts {
		opt(f, &deps, &cfg)
	}

	svc, err := NewService(cfg, deps)
	require.NoError(t, err)
	f.service = svc
	f.cfg = cfg
	return f
}

func cleanSubmission() risk.Submission {
	return risk.Submission{
		BookingRef: "bk-clean-1",
		Email:      values.MustNewEmail("maria.garcia@gmail.com"),
		Phone:      values.MustNewPhoneNumber("+12024561414"),
		FullName:   "Maria Garcia",
		IP:         values.MustNewIPAddress("93.184.216.34"),
		DeviceID:   "dev-1",
	}
}

func TestService_CleanSubmissionScoresZero(t *testing.T) {
	f := newFixture(t)

	assessment, err := f.service.Evaluate(context.Background(), cleanSubmission())
	require.NoError(t, err)

	assert.Equal(t, 0, assessment.TotalScore)
	assert.Equal(t, risk.StateNone, assessment.State)
	assert.Empty(t, assessment.Reasons)
	assert.False(t, assessment.AIUsed)
	assert.Len(t, assessment.Breakdown, 5)
}

func TestService_MissingBookingRefRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Evaluate(context.Background(), risk.Submission{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestService_AbusiveSubmissionHitsHardHold(t *testing.T) {
	f := newFixture(t)

	sub := risk.Submission{
		BookingRef: "bk-abuse-1",
		Email:      values.MustNewEmail("fuck@shit.com"),
		FullName:   "Fuck You",
		IP:         values.MustNewIPAddress("127.0.0.1"),
	}

	assessment, err := f.service.Evaluate(context.Background(), sub)
	require.NoError(t, err)

	assert.Equal(t, 100, assessment.TotalScore)
	assert.Equal(t, risk.StateHard, assessment.State)
	assert.Equal(t, 100, assessment.Breakdown[risk.CategoryEmail].Score)
	assert.Equal(t, 100, assessment.Breakdown[risk.CategoryName].Score)
	assert.Equal(t, 0, assessment.Breakdown[risk.CategoryIP].Score)
}

func TestService_SingleExtremeSignalSurvivesDilution(t *testing.T) {
	f := newFixture(t)

	sub := cleanSubmission()
	sub.FullName = "Fuck You"

	assessment, err := f.service.Evaluate(context.Background(), sub)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, assessment.TotalScore, 70)
	assert.Equal(t, risk.StateHard, assessment.State)
}

func TestService_FallbackRaisesDilutedScoreBelowSoft(t *testing.T) {
	f := newFixture(t)

	// Placeholder name only: 0.15*50 = 7 rule-based, fallback table says 35.
	sub := cleanSubmission()
	sub.FullName = "John Doe"

	assessment, err := f.service.Evaluate(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, risk.StateNone, assessment.State)
	assert.Less(t, assessment.TotalScore, f.cfg.SoftThreshold)
}

func TestService_WhitelistedDomainSuppressesEmailCategory(t *testing.T) {
	entry := risk.WhitelistEntry{
		ID:     uuid.New(),
		Type:   risk.WhitelistDomain,
		Value:  "mailinator.com",
		Active: true,
	}
	f := newFixture(t, withWhitelist(entry))

	sub := cleanSubmission()
	sub.Email = values.MustNewEmail("guest@mailinator.com")

	assessment, err := f.service.Evaluate(context.Background(), sub)
	require.NoError(t, err)

	assert.Equal(t, 0, assessment.Breakdown[risk.CategoryEmail].Score)
	assert.Equal(t, 0, assessment.TotalScore)
	assert.Empty(t, assessment.Reasons)
}

func TestService_InactiveWhitelistEntryDoesNotSuppress(t *testing.T) {
	entry := risk.WhitelistEntry{
		ID:     uuid.New(),
		Type:   risk.WhitelistDomain,
		Value:  "mailinator.com",
		Active: false,
	}
	f := newFixture(t, withWhitelist(entry))

	sub := cleanSubmission()
	sub.Email = values.MustNewEmail("guest@mailinator.com")

	assessment, err := f.service.Evaluate(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, 40, assessment.Breakdown[risk.CategoryEmail].Score)
}

func TestService_WhitelistFailureSuppressesNothing(t *testing.T) {
	f := newFixture(t)
	f.whitelist.err = stderrors.New("store down")

	sub := cleanSubmission()
	sub.Email = values.MustNewEmail("guest@mailinator.com")

	assessment, err := f.service.Evaluate(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, 40, assessment.Breakdown[risk.CategoryEmail].Score)
}

func TestService_PanickingAnalyzerDegradesToZeroCategory(t *testing.T) {
	f := newFixture(t, withAnalyzers(
		NewEmailAnalyzer(nil),
		panickingAnalyzer{cat: risk.CategoryPhone},
	))

	sub := cleanSubmission()
	assessment, err := f.service.Evaluate(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, 0, assessment.Breakdown[risk.CategoryPhone].Score)
	assert.Len(t, assessment.Breakdown, 5)
}

func TestService_PersistsAssessment(t *testing.T) {
	f := newFixture(t)

	assessment, err := f.service.Evaluate(context.Background(), cleanSubmission())
	require.NoError(t, err)

	require.Len(t, f.repo.saved, 1)
	assert.Equal(t, assessment.ID, f.repo.saved[0].ID)

	fetched, err := f.service.GetAssessment(context.Background(), assessment.ID)
	require.NoError(t, err)
	assert.Equal(t, assessment.TotalScore, fetched.TotalScore)
}

func TestService_PersistenceFailureDoesNotFailEvaluation(t *testing.T) {
	f := newFixture(t)
	f.repo.err = stderrors.New("db down")

	_, err := f.service.Evaluate(context.Background(), cleanSubmission())
	require.NoError(t, err)
}

func TestService_RecordsVelocityEventsAfterEvaluation(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Evaluate(context.Background(), cleanSubmission())
	require.NoError(t, err)

	assert.Contains(t, f.tracker.recorded, IPVelocityKey("93.184.216.34"))
	assert.Contains(t, f.tracker.recorded, DeviceVelocityKey("dev-1"))
}

func TestService_IdempotentForSameInputs(t *testing.T) {
	f := newFixture(t)

	sub := cleanSubmission()
	sub.Email = values.MustNewEmail("guest@mailinator.com")
	sub.FullName = "John Doe"

	first, err := f.service.Evaluate(context.Background(), sub)
	require.NoError(t, err)

	// Velocity counts are pinned by the fake tracker, so repeated runs see
	// identical inputs.
	for i := 0; i < 5; i++ {
		again, err := f.service.Evaluate(context.Background(), sub)
		require.NoError(t, err)
		assert.Equal(t, first.TotalScore, again.TotalScore)
		assert.Equal(t, first.State, again.State)
		assert.Equal(t, risk.ReasonStrings(first.Reasons), risk.ReasonStrings(again.Reasons))
	}
}

func TestService_AIDisabledUsesFallback(t *testing.T) {
	f := newFixture(t)

	sub := cleanSubmission()
	sub.Email = values.MustNewEmail("guest@mailinator.com")

	assessment, err := f.service.Evaluate(context.Background(), sub)
	require.NoError(t, err)

	assert.False(t, assessment.AIUsed)
	require.NotNil(t, assessment.AIScore)
	assert.Equal(t, 45, *assessment.AIScore) // fallback table: disposable email
	assert.Equal(t, 45, assessment.TotalScore)
	assert.Empty(t, assessment.AINarrative, "narrative is model output, not table output")
}

func TestService_AISuccessCombinesByMax(t *testing.T) {
	client := &stubAIClient{evaluation: Evaluation{RiskScore: 55, Narrative: "suspicious pattern"}}
	f := newFixture(t, withAI(client))

	assessment, err := f.service.Evaluate(context.Background(), cleanSubmission())
	require.NoError(t, err)

	assert.True(t, assessment.AIUsed)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, 55, assessment.TotalScore)
	assert.Equal(t, risk.StateSoft, assessment.State)
	assert.Equal(t, "suspicious pattern", assessment.AINarrative)
}

func TestService_AIFailureFallsBackDeterministically(t *testing.T) {
	client := &stubAIClient{err: stderrors.New("upstream 500")}
	f := newFixture(t, withAI(client))

	sub := cleanSubmission()
	sub.Email = values.MustNewEmail("guest@mailinator.com")

	assessment, err := f.service.Evaluate(context.Background(), sub)
	require.NoError(t, err)

	assert.False(t, assessment.AIUsed)
	require.NotNil(t, assessment.AIScore)
	assert.Equal(t, 45, *assessment.AIScore)
	assert.Empty(t, assessment.AINarrative)
}

func TestService_AICannotLowerRuleBasedScore(t *testing.T) {
	client := &stubAIClient{evaluation: Evaluation{RiskScore: 5}}
	f := newFixture(t, withAI(client))

	sub := risk.Submission{
		BookingRef: "bk-abuse-2",
		Email:      values.MustNewEmail("fuck@shit.com"),
		FullName:   "Fuck You",
	}

	assessment, err := f.service.Evaluate(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, 100, assessment.TotalScore)
	assert.Equal(t, risk.StateHard, assessment.State)
}

func TestService_BlendPolicyRespectsFloors(t *testing.T) {
	client := &stubAIClient{evaluation: Evaluation{RiskScore: 0}}
	f := newFixture(t, withAI(client), func(_ *fixture, _ *Dependencies, cfg *config.RiskConfig) {
		cfg.AI.CombinePolicy = config.CombinePolicyBlend
		cfg.AI.BlendAIWeight = 0.5
	})

	sub := risk.Submission{
		BookingRef: "bk-abuse-3",
		FullName:   "Fuck You",
	}

	assessment, err := f.service.Evaluate(context.Background(), sub)
	require.NoError(t, err)
	// Blending with a zero AI score must not undercut the extreme floor.
	assert.GreaterOrEqual(t, assessment.TotalScore, 70)
}

func TestService_GetAssessmentNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.GetAssessment(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}
