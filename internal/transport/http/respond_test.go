package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	"classquiz/internal/domain"
)

func TestWriteDomainErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"validation", domain.Validationf("bad input"), http.StatusBadRequest, kindValidation},
		{"quiz not found", domain.ErrQuizNotFound, http.StatusNotFound, kindNotFound},
		{"not live", domain.ErrQuizNotLive, http.StatusBadRequest, kindQuizNotLive},
		{"class mismatch", domain.ErrClassMismatch, http.StatusForbidden, kindForbidden},
		{"duplicate", domain.ErrAlreadySubmitted, http.StatusConflict, kindAlreadySubmitted},
		{"store timeout", context.DeadlineExceeded, http.StatusServiceUnavailable, kindUnavailable},
		{"store network error", mongo.CommandError{Labels: []string{"NetworkError"}}, http.StatusServiceUnavailable, kindUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, kindInternal},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeDomainError(rec, nil, tc.err)

		if rec.Code != tc.wantStatus {
			t.Fatalf("%s: expected status %d, got %d", tc.name, tc.wantStatus, rec.Code)
		}
		var body errorResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("%s: decode body: %v", tc.name, err)
		}
		if body.Kind != tc.wantKind {
			t.Fatalf("%s: expected kind %s, got %s", tc.name, tc.wantKind, body.Kind)
		}
	}
}

func TestUnknownErrorsAreSanitized(t *testing.T) {
	rec := httptest.NewRecorder()
	writeDomainError(rec, nil, errors.New("secret internal detail"))

	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Message != "internal server error" {
		t.Fatalf("internal detail leaked to caller: %q", body.Message)
	}
}
