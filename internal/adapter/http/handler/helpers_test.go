package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/iho/loanticker/internal/adapter/http/dto"
	"github.com/iho/loanticker/internal/domain"
)

func TestParseBoolQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/loans/1?confirm=true", nil)
	if got := parseBoolQuery(req, "confirm", false); !got {
		t.Fatalf("expected confirm=true")
	}

	req = httptest.NewRequest(http.MethodDelete, "/loans/1?confirm=maybe", nil)
	if got := parseBoolQuery(req, "confirm", false); got {
		t.Fatalf("expected fallback to default")
	}

	req = httptest.NewRequest(http.MethodDelete, "/loans/1", nil)
	if got := parseBoolQuery(req, "confirm", true); !got {
		t.Fatalf("expected default when missing")
	}
}

func TestParseLoanID(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/loans/42", nil), "id", "42")
	if id, err := parseLoanID(req); err != nil || id != 42 {
		t.Fatalf("expected 42, got %d err=%v", id, err)
	}

	req = withURLParam(httptest.NewRequest(http.MethodGet, "/loans/abc", nil), "id", "abc")
	if _, err := parseLoanID(req); err == nil {
		t.Fatalf("expected error for non-numeric id")
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"loan not found", domain.ErrLoanNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("update 7: %w", domain.ErrLoanNotFound), http.StatusNotFound},
		{"name required", domain.ErrBorrowerNameRequired, http.StatusBadRequest},
		{"amount required", domain.ErrAmountRequired, http.StatusBadRequest},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"invalid status", domain.ErrInvalidStatus, http.StatusBadRequest},
		{"unknown symbol", domain.ErrUnknownSymbol, http.StatusNotFound},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	payload := map[string]string{"status": "ok"}

	writeJSON(rr, http.StatusCreated, payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %s", ct)
	}

	var decoded map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if decoded["status"] != "ok" {
		t.Fatalf("expected payload to round-trip, got %+v", decoded)
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()

	writeError(rr, http.StatusBadRequest, "bad request", "detail")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}

	if resp.Error != "bad request" || resp.Message != "detail" {
		t.Fatalf("expected error message to propagate, got %+v", resp)
	}
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
