package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reservable/booking-risk-engine/internal/domain/errors"
	"github.com/reservable/booking-risk-engine/internal/domain/risk"
	"github.com/reservable/booking-risk-engine/internal/domain/values"
	riskservice "github.com/reservable/booking-risk-engine/internal/service/risk"
)

// ReviewStore persists manual review outcomes
type ReviewStore interface {
	SaveReview(ctx context.Context, review *risk.Review) error
	GetReviews(ctx context.Context, assessmentID uuid.UUID) ([]risk.Review, error)
}

// WhitelistAdmin manages whitelist entries
type WhitelistAdmin interface {
	List(ctx context.Context) ([]risk.WhitelistEntry, error)
	Create(ctx context.Context, entry *risk.WhitelistEntry) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// Handler serves the risk engine's HTTP API. The evaluate endpoint is called
// service-to-service from the booking workflow; review and whitelist
// endpoints back the staff console.
type Handler struct {
	risk      riskservice.Service
	reviews   ReviewStore
	whitelist WhitelistAdmin
	validate  *validator.Validate
	logger    *zap.Logger
	version   string
}

// NewHandler creates the API handler. reviews and whitelist may be nil when
// the deployment runs evaluation-only.
func NewHandler(svc riskservice.Service, reviews ReviewStore, whitelist WhitelistAdmin, logger *zap.Logger, version string) *Handler {
	return &Handler{
		risk:      svc,
		reviews:   reviews,
		whitelist: whitelist,
		validate:  validator.New(),
		logger:    logger,
		version:   version,
	}
}

// EvaluateRequest is the booking workflow's evaluation call. Identity fields
// are optional: an absent or unparseable value scores zero for its category
// rather than failing the booking.
type EvaluateRequest struct {
	BookingRef string `json:"booking_ref" validate:"required,max=64"`
	Email      string `json:"email" validate:"omitempty,max=254"`
	Phone      string `json:"phone" validate:"omitempty,max=32"`
	FullName   string `json:"full_name" validate:"omitempty,max=200"`
	IP         string `json:"ip" validate:"omitempty,max=64"`
	UserAgent  string `json:"user_agent" validate:"omitempty,max=512"`
	Notes      string `json:"notes" validate:"omitempty,max=2000"`
	DeviceID   string `json:"device_id" validate:"omitempty,max=128"`
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, errors.NewValidationError("INVALID_JSON", "request body must be valid JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, h.logger, errors.NewValidationError("INVALID_REQUEST", err.Error()))
		return
	}

	assessment, err := h.risk.Evaluate(r.Context(), h.toSubmission(req))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, assessment)
}

// toSubmission parses identity fields, dropping the unparseable ones
func (h *Handler) toSubmission(req EvaluateRequest) risk.Submission {
	sub := risk.Submission{
		BookingRef: req.BookingRef,
		FullName:   req.FullName,
		UserAgent:  req.UserAgent,
		Notes:      req.Notes,
		DeviceID:   req.DeviceID,
	}

	if req.Email != "" {
		email, err := values.NewEmail(req.Email)
		if err != nil {
			h.logger.Warn("unparseable email dropped from submission",
				zap.String("booking_ref", req.BookingRef))
		} else {
			sub.Email = email
		}
	}
	if req.Phone != "" {
		phone, err := values.NewPhoneNumber(req.Phone)
		if err != nil {
			h.logger.Warn("unparseable phone dropped from submission",
				zap.String("booking_ref", req.BookingRef))
		} else {
			sub.Phone = phone
		}
	}
	if req.IP != "" {
		ip, err := values.NewIPAddress(req.IP)
		if err != nil {
			h.logger.Warn("unparseable ip dropped from submission",
				zap.String("booking_ref", req.BookingRef))
		} else {
			sub.IP = ip
		}
	}

	return sub
}

func (h *Handler) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, errors.NewValidationError("INVALID_ID", "assessment id must be a UUID"))
		return
	}

	assessment, err := h.risk.GetAssessment(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, assessment)
}

// ReviewRequest resolves a held booking
type ReviewRequest struct {
	Outcome  string `json:"outcome" validate:"required,oneof=approved rejected"`
	Reason   string `json:"reason" validate:"omitempty,max=2000"`
	Reviewer string `json:"reviewer" validate:"required,max=128"`
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	if h.reviews == nil {
		writeError(w, h.logger, errors.NewInternalError("review store is not configured"))
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, errors.NewValidationError("INVALID_ID", "assessment id must be a UUID"))
		return
	}

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, errors.NewValidationError("INVALID_JSON", "request body must be valid JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, h.logger, errors.NewValidationError("INVALID_REQUEST", err.Error()))
		return
	}

	// The assessment must exist before a review can reference it.
	if _, err := h.risk.GetAssessment(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	review, err := risk.NewReview(id, risk.ReviewOutcome(req.Outcome), req.Reason, req.Reviewer)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.reviews.SaveReview(r.Context(), review); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, review)
}

func (h *Handler) handleListReviews(w http.ResponseWriter, r *http.Request) {
	if h.reviews == nil {
		writeError(w, h.logger, errors.NewInternalError("review store is not configured"))
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, errors.NewValidationError("INVALID_ID", "assessment id must be a UUID"))
		return
	}

	reviews, err := h.reviews.GetReviews(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if reviews == nil {
		reviews = []risk.Review{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}

// WhitelistRequest creates a whitelist entry
type WhitelistRequest struct {
	Type      string `json:"type" validate:"required,oneof=domain email phone ip"`
	Value     string `json:"value" validate:"required,max=254"`
	Notes     string `json:"notes" validate:"omitempty,max=2000"`
	CreatedBy string `json:"created_by" validate:"required,max=128"`
}

func (h *Handler) handleCreateWhitelist(w http.ResponseWriter, r *http.Request) {
	if h.whitelist == nil {
		writeError(w, h.logger, errors.NewInternalError("whitelist store is not configured"))
		return
	}

	var req WhitelistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, errors.NewValidationError("INVALID_JSON", "request body must be valid JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, h.logger, errors.NewValidationError("INVALID_REQUEST", err.Error()))
		return
	}

	entry := &risk.WhitelistEntry{
		ID:        uuid.New(),
		Type:      risk.WhitelistType(req.Type),
		Value:     req.Value,
		Notes:     req.Notes,
		CreatedBy: req.CreatedBy,
		CreatedAt: time.Now().UTC(),
		Active:    true,
	}
	if err := h.whitelist.Create(r.Context(), entry); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

func (h *Handler) handleListWhitelist(w http.ResponseWriter, r *http.Request) {
	if h.whitelist == nil {
		writeError(w, h.logger, errors.NewInternalError("whitelist store is not configured"))
		return
	}

	entries, err := h.whitelist.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if entries == nil {
		entries = []risk.WhitelistEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) handleDeactivateWhitelist(w http.ResponseWriter, r *http.Request) {
	if h.whitelist == nil {
		writeError(w, h.logger, errors.NewInternalError("whitelist store is not configured"))
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, errors.NewValidationError("INVALID_ID", "whitelist id must be a UUID"))
		return
	}

	if err := h.whitelist.Deactivate(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": h.version,
	})
}
