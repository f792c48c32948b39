package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/engine"
)

// ErrorResponse is the error envelope of every failed request.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

// classify maps a service error to an HTTP status and envelope code.
func classify(err error) (int, string) {
	var ve *engine.ValidationError
	switch {
	case errors.As(err, &ve),
		errors.Is(err, engine.ErrTitleRequired),
		errors.Is(err, engine.ErrContentRequired),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, engine.ErrInvalidCredentials),
		errors.Is(err, engine.ErrNotAuthenticated):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, engine.ErrEmailTaken),
		errors.Is(err, engine.ErrAlreadyCompleted),
		errors.Is(err, engine.ErrNothingToUndo):
		return http.StatusConflict, "conflict"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

var errBadRequest = errors.New("bad request")

func (a *api) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		a.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("requestId", middleware.GetReqID(r.Context())),
			zap.String("userId", userID(r)),
			zap.Error(err))
		msg = "internal error"
	}
	a.writeCode(w, r, status, code, msg)
}

func (a *api) writeCode(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message, RequestID: middleware.GetReqID(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
