package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/iho/loanticker/internal/adapter/http/dto"
	"github.com/iho/loanticker/internal/domain"
	"github.com/iho/loanticker/internal/usecase"
)

// LoanService defines the behavior needed by LoanHandler.
type LoanService interface {
	List(ctx context.Context) []domain.LoanRecord
	Get(ctx context.Context, id int64) (domain.LoanRecord, error)
	Create(ctx context.Context, fields domain.LoanFields) (domain.LoanRecord, error)
	Update(ctx context.Context, id int64, fields domain.LoanFields) (domain.LoanRecord, error)
	SetStatus(ctx context.Context, id int64, status domain.LoanStatus) (domain.LoanRecord, error)
	Delete(ctx context.Context, id int64, confirm usecase.Confirmation) (bool, error)
	Summary(ctx context.Context) []usecase.StatusSummary
}

// LoanHandler handles loan-related HTTP requests.
type LoanHandler struct {
	loanUC LoanService
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(loanUC LoanService) *LoanHandler {
	return &LoanHandler{loanUC: loanUC}
}

// List returns the whole ledger in insertion order.
func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	loans := h.loanUC.List(r.Context())

	writeJSON(w, http.StatusOK, dto.ListLoansResponse{
		Loans: dto.LoansFromDomain(loans),
		Total: len(loans),
	})
}

// Create records a new loan.
func (h *LoanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.LoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	loan, err := h.loanUC.Create(r.Context(), req.ToFields())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create loan", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.LoanFromDomain(loan))
}

// Get retrieves a loan by ID.
func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseLoanID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid loan ID", err.Error())
		return
	}

	loan, err := h.loanUC.Get(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get loan", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanFromDomain(loan))
}

// Update replaces the editable fields of a loan.
func (h *LoanHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseLoanID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid loan ID", err.Error())
		return
	}

	var req dto.LoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	loan, err := h.loanUC.Update(r.Context(), id, req.ToFields())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update loan", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanFromDomain(loan))
}

// SetStatus changes only the status of a loan.
func (h *LoanHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseLoanID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid loan ID", err.Error())
		return
	}

	var req dto.SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	status, err := req.ToStatus()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid status", err.Error())
		return
	}

	loan, err := h.loanUC.SetStatus(r.Context(), id, status)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to set loan status", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanFromDomain(loan))
}

// Delete removes a loan. The caller confirms with ?confirm=true; without it
// nothing is removed and deleted=false is reported.
func (h *LoanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseLoanID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid loan ID", err.Error())
		return
	}

	confirmed := parseBoolQuery(r, "confirm", false)
	deleted, err := h.loanUC.Delete(r.Context(), id, func(domain.LoanRecord) bool { return confirmed })
	if err != nil {
		writeError(w, mapDomainError(err), "failed to delete loan", err.Error())
		return
	}

	if !deleted {
		// A declined delete must not be replayed for a later confirmed retry.
		w.Header().Set("Cache-Control", "no-store")
	}
	writeJSON(w, http.StatusOK, dto.DeleteLoanResponse{ID: id, Deleted: deleted})
}

// Summary returns per-status counts and totals.
func (h *LoanHandler) Summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.SummaryFromUseCase(h.loanUC.Summary(r.Context())))
}
