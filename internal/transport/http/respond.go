package http

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"classquiz/internal/domain"
)

// Machine-checkable error kinds carried alongside the sanitized message.
const (
	kindValidation       = "validation"
	kindUnauthorized     = "unauthorized"
	kindForbidden        = "forbidden"
	kindNotFound         = "not_found"
	kindQuizNotLive      = "quiz_not_live"
	kindAlreadySubmitted = "already_submitted"
	kindUnavailable      = "unavailable"
	kindInternal         = "internal"
)

type errorResponse struct {
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorResponse{Message: message, Kind: kind})
}

// writeDomainError maps domain errors to status + kind. Duplicate
// submission is deliberately a 409 with its own kind so clients can tell
// the expected conflict apart from a validation failure. Unknown errors
// are logged in full and surfaced as a sanitized 500.
func writeDomainError(w http.ResponseWriter, log *logrus.Logger, err error) {
	switch {
	case domain.IsValidation(err):
		writeError(w, http.StatusBadRequest, kindValidation, err.Error())
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, kindNotFound, err.Error())
	case errors.Is(err, domain.ErrQuizNotLive):
		writeError(w, http.StatusBadRequest, kindQuizNotLive, err.Error())
	case errors.Is(err, domain.ErrClassMismatch), errors.Is(err, domain.ErrNotOwner):
		writeError(w, http.StatusForbidden, kindForbidden, err.Error())
	case errors.Is(err, domain.ErrAlreadySubmitted):
		writeError(w, http.StatusConflict, kindAlreadySubmitted, err.Error())
	case errors.Is(err, domain.ErrRoleConflict):
		writeError(w, http.StatusBadRequest, kindValidation, err.Error())
	case isUnavailable(err):
		// A store that stopped answering; the caller may retry.
		if log != nil {
			log.WithError(err).Warn("dependency unavailable")
		}
		writeError(w, http.StatusServiceUnavailable, kindUnavailable, "service temporarily unavailable")
	default:
		if log != nil {
			log.WithError(err).Error("request failed")
		}
		writeError(w, http.StatusInternalServerError, kindInternal, "internal server error")
	}
}

// isUnavailable reports whether err means a dependency is unreachable or
// timed out rather than the request being at fault.
func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
