package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/reservable/booking-risk-engine/internal/domain/errors"
	"github.com/reservable/booking-risk-engine/internal/domain/risk"
	"github.com/reservable/booking-risk-engine/internal/infrastructure/config"
	riskservice "github.com/reservable/booking-risk-engine/internal/service/risk"
)

// Client calls the external AI reasoning service for a second risk opinion.
// Every failure mode is an error to the caller, which falls back to the
// deterministic evaluator; this client never blocks past its rate budget.
type Client struct {
	cfg        config.AIConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewClient creates an AI evaluator client
func NewClient(cfg config.AIConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitRPS),
		logger:     logger,
	}
}

type evaluateRequest struct {
	Features risk.FeatureVector   `json:"features"`
	Context  risk.RedactedContext `json:"context"`
}

type evaluateResponse struct {
	RiskScore int      `json:"risk_score"`
	Reasons   []string `json:"reasons"`
	Narrative string   `json:"narrative"`
}

// Evaluate sends the feature vector and redacted context for scoring. The
// submission's raw PII never appears in the request body.
func (c *Client) Evaluate(ctx context.Context, features risk.FeatureVector, redacted risk.RedactedContext) (riskservice.Evaluation, error) {
	if !c.limiter.Allow() {
		return riskservice.Evaluation{}, fmt.Errorf("ai evaluator rate limit exceeded")
	}

	body, err := json.Marshal(evaluateRequest{Features: features, Context: redacted})
	if err != nil {
		return riskservice.Evaluation{}, fmt.Errorf("marshaling evaluation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimSuffix(c.cfg.BaseURL, "/")+"/v1/evaluations", bytes.NewReader(body))
	if err != nil {
		return riskservice.Evaluation{}, fmt.Errorf("building evaluation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return riskservice.Evaluation{}, errors.NewExternalError("ai-evaluator", "request failed").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return riskservice.Evaluation{}, errors.NewExternalError("ai-evaluator",
			fmt.Sprintf("status %d: %s", resp.StatusCode, string(snippet)))
	}

	var parsed evaluateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return riskservice.Evaluation{}, errors.NewExternalError("ai-evaluator", "malformed response").WithCause(err)
	}
	if parsed.RiskScore < 0 || parsed.RiskScore > 100 {
		return riskservice.Evaluation{}, errors.NewExternalError("ai-evaluator",
			fmt.Sprintf("score %d out of range", parsed.RiskScore))
	}

	narrative := parsed.Narrative
	if narrative == "" && len(parsed.Reasons) > 0 {
		narrative = strings.Join(parsed.Reasons, "; ")
	}

	c.logger.Debug("ai evaluation succeeded",
		zap.Int("risk_score", parsed.RiskScore),
		zap.Int("reason_count", len(parsed.Reasons)))

	return riskservice.Evaluation{
		RiskScore: parsed.RiskScore,
		Narrative: narrative,
	}, nil
}
