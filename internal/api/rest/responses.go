package rest

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/reservable/booking-risk-engine/internal/domain/errors"
)

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps domain errors to HTTP responses. Internal details stay in
// logs; clients get the code and message only.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := errors.GetStatusCode(err)
	code := "INTERNAL_ERROR"
	message := "An internal error occurred"

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		code = appErr.Code
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
		message = "An internal error occurred"
	}

	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}
