package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/loanticker/internal/domain"
	"github.com/iho/loanticker/internal/usecase"
)

// LoanResponse represents a loan in API responses.
type LoanResponse struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Name        string `json:"name"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// LoanFromDomain converts a domain loan to response.
func LoanFromDomain(l domain.LoanRecord) LoanResponse {
	return LoanResponse{
		ID:          l.ID,
		Date:        l.Date,
		Time:        l.Time,
		Name:        l.Name,
		Amount:      l.Amount,
		Description: l.Description,
		Status:      string(l.Status),
	}
}

// LoansFromDomain converts domain loans to responses.
func LoansFromDomain(loans []domain.LoanRecord) []LoanResponse {
	result := make([]LoanResponse, len(loans))
	for i, l := range loans {
		result[i] = LoanFromDomain(l)
	}
	return result
}

// ListLoansResponse represents the whole ledger.
type ListLoansResponse struct {
	Loans []LoanResponse `json:"loans"`
	Total int            `json:"total"`
}

// DeleteLoanResponse reports whether a delete went through.
type DeleteLoanResponse struct {
	ID      int64 `json:"id"`
	Deleted bool  `json:"deleted"`
}

// StatusSummaryResponse aggregates loans with one status.
type StatusSummaryResponse struct {
	Status   string          `json:"status"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
	Unparsed int             `json:"unparsed,omitempty"`
}

// SummaryResponse represents the per-status ledger summary.
type SummaryResponse struct {
	Statuses []StatusSummaryResponse `json:"statuses"`
}

// SummaryFromUseCase converts use case summaries to response.
func SummaryFromUseCase(rows []usecase.StatusSummary) SummaryResponse {
	out := SummaryResponse{Statuses: make([]StatusSummaryResponse, len(rows))}
	for i, row := range rows {
		out.Statuses[i] = StatusSummaryResponse{
			Status:   string(row.Status),
			Count:    row.Count,
			Total:    row.Total,
			Unparsed: row.Unparsed,
		}
	}
	return out
}

// PriceResponse represents one price table entry. Display holds the
// id-ID formatted price and Change the signed percentage or "n/a".
type PriceResponse struct {
	Symbol        string          `json:"symbol"`
	LastPrice     decimal.Decimal `json:"last_price"`
	Display       string          `json:"display"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	ChangeDefined bool            `json:"change_defined"`
	Change        string          `json:"change"`
	Source        string          `json:"source"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PriceFromDomain converts a quote to response.
func PriceFromDomain(q domain.PriceQuote) PriceResponse {
	return PriceResponse{
		Symbol:        q.Symbol,
		LastPrice:     q.LastPrice,
		Display:       domain.FormatPrice(q.Symbol, q.LastPrice),
		ChangePercent: q.ChangePercent.Round(2),
		ChangeDefined: q.ChangeDefined,
		Change:        domain.FormatChange(q),
		Source:        string(q.Source),
		UpdatedAt:     q.UpdatedAt,
	}
}

// PricesFromDomain converts quotes to responses.
func PricesFromDomain(quotes []domain.PriceQuote) []PriceResponse {
	result := make([]PriceResponse, len(quotes))
	for i, q := range quotes {
		result[i] = PriceFromDomain(q)
	}
	return result
}

// PricesResponse represents the price table together with the feed status.
type PricesResponse struct {
	Prices          []PriceResponse `json:"prices"`
	Loading         bool            `json:"loading"`
	StreamConnected bool            `json:"stream_connected"`
	LastPollAt      *time.Time      `json:"last_poll_at,omitempty"`
	Reconnects      int             `json:"reconnects"`
}

// PricesFromStatus combines a table snapshot with the feed status.
func PricesFromStatus(quotes []domain.PriceQuote, status usecase.FeedStatus) PricesResponse {
	resp := PricesResponse{
		Prices:          PricesFromDomain(quotes),
		Loading:         status.Loading,
		StreamConnected: status.StreamConnected,
		Reconnects:      status.Reconnects,
	}
	if !status.LastPollAt.IsZero() {
		at := status.LastPollAt
		resp.LastPollAt = &at
	}
	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
