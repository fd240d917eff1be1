package dto

import (
	"github.com/iho/loanticker/internal/domain"
)

// LoanRequest represents a request to create or edit a loan.
type LoanRequest struct {
	Name        string `json:"name"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}

// ToFields converts to ledger fields. The status name is matched
// case-insensitively; an unknown name is passed through so the ledger
// rejects it.
func (r *LoanRequest) ToFields() domain.LoanFields {
	return domain.LoanFields{
		Name:        r.Name,
		Amount:      r.Amount,
		Description: r.Description,
		Status:      parseStatus(r.Status),
	}
}

// SetStatusRequest represents a request to change a loan's status.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// ToStatus resolves the requested status.
func (r *SetStatusRequest) ToStatus() (domain.LoanStatus, error) {
	return domain.ParseLoanStatus(r.Status)
}

func parseStatus(s string) domain.LoanStatus {
	if s == "" {
		return ""
	}
	if status, err := domain.ParseLoanStatus(s); err == nil {
		return status
	}
	return domain.LoanStatus(s)
}
