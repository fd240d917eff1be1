package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/loanticker/internal/adapter/http/dto"
	"github.com/iho/loanticker/internal/domain"
	"github.com/iho/loanticker/internal/usecase"
)

type loanServiceStub struct {
	listFn      func(ctx context.Context) []domain.LoanRecord
	getFn       func(ctx context.Context, id int64) (domain.LoanRecord, error)
	createFn    func(ctx context.Context, fields domain.LoanFields) (domain.LoanRecord, error)
	updateFn    func(ctx context.Context, id int64, fields domain.LoanFields) (domain.LoanRecord, error)
	setStatusFn func(ctx context.Context, id int64, status domain.LoanStatus) (domain.LoanRecord, error)
	deleteFn    func(ctx context.Context, id int64, confirm usecase.Confirmation) (bool, error)
	summaryFn   func(ctx context.Context) []usecase.StatusSummary
}

func (s *loanServiceStub) List(ctx context.Context) []domain.LoanRecord {
	return s.listFn(ctx)
}

func (s *loanServiceStub) Get(ctx context.Context, id int64) (domain.LoanRecord, error) {
	return s.getFn(ctx, id)
}

func (s *loanServiceStub) Create(ctx context.Context, fields domain.LoanFields) (domain.LoanRecord, error) {
	return s.createFn(ctx, fields)
}

func (s *loanServiceStub) Update(ctx context.Context, id int64, fields domain.LoanFields) (domain.LoanRecord, error) {
	return s.updateFn(ctx, id, fields)
}

func (s *loanServiceStub) SetStatus(ctx context.Context, id int64, status domain.LoanStatus) (domain.LoanRecord, error) {
	return s.setStatusFn(ctx, id, status)
}

func (s *loanServiceStub) Delete(ctx context.Context, id int64, confirm usecase.Confirmation) (bool, error) {
	return s.deleteFn(ctx, id, confirm)
}

func (s *loanServiceStub) Summary(ctx context.Context) []usecase.StatusSummary {
	return s.summaryFn(ctx)
}

var budi = domain.LoanRecord{
	ID:          1709285400000,
	Date:        "1/3/2024",
	Time:        "16.30",
	Name:        "Budi",
	Amount:      "1000",
	Description: "-",
	Status:      domain.LoanStatusPending,
}

func TestLoanHandler_Create_Success(t *testing.T) {
	var captured domain.LoanFields
	handler := NewLoanHandler(&loanServiceStub{
		createFn: func(ctx context.Context, fields domain.LoanFields) (domain.LoanRecord, error) {
			captured = fields
			return budi, nil
		},
	})

	body, _ := json.Marshal(dto.LoanRequest{Name: "Budi", Amount: "1000"})
	req := httptest.NewRequest(http.MethodPost, "/loans", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.Name != "Budi" || captured.Amount != "1000" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.LoanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != budi.ID || resp.Description != "-" || resp.Status != "Pending" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestLoanHandler_Create_InvalidJSON(t *testing.T) {
	handler := NewLoanHandler(&loanServiceStub{
		createFn: func(ctx context.Context, fields domain.LoanFields) (domain.LoanRecord, error) {
			t.Fatal("Create should not be called for invalid payload")
			return domain.LoanRecord{}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/loans", bytes.NewBufferString("{invalid json"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLoanHandler_Create_ValidationError(t *testing.T) {
	handler := NewLoanHandler(&loanServiceStub{
		createFn: func(ctx context.Context, fields domain.LoanFields) (domain.LoanRecord, error) {
			return domain.LoanRecord{}, domain.ErrBorrowerNameRequired
		},
	})

	body, _ := json.Marshal(dto.LoanRequest{Amount: "1000"})
	rec := httptest.NewRecorder()
	handler.Create(rec, httptest.NewRequest(http.MethodPost, "/loans", bytes.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLoanHandler_Create_StoreError(t *testing.T) {
	handler := NewLoanHandler(&loanServiceStub{
		createFn: func(ctx context.Context, fields domain.LoanFields) (domain.LoanRecord, error) {
			return domain.LoanRecord{}, errors.New("disk full")
		},
	})

	body, _ := json.Marshal(dto.LoanRequest{Name: "Budi", Amount: "1000"})
	rec := httptest.NewRecorder()
	handler.Create(rec, httptest.NewRequest(http.MethodPost, "/loans", bytes.NewReader(body)))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestLoanHandler_List(t *testing.T) {
	handler := NewLoanHandler(&loanServiceStub{
		listFn: func(ctx context.Context) []domain.LoanRecord { return []domain.LoanRecord{budi} },
	})

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/loans", nil))

	var resp dto.ListLoansResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total != 1 || resp.Loans[0].Name != "Budi" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestLoanHandler_List_EmptyIsArray(t *testing.T) {
	handler := NewLoanHandler(&loanServiceStub{
		listFn: func(ctx context.Context) []domain.LoanRecord { return nil },
	})

	rec := httptest.NewRecorder()
	handler.List(rec, httptest.NewRequest(http.MethodGet, "/loans", nil))

	if !bytes.Contains(rec.Body.Bytes(), []byte(`"loans":[]`)) {
		t.Fatalf("expected empty array, got %s", rec.Body.String())
	}
}

func TestLoanHandler_Get(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		err    error
		status int
	}{
		{"found", "1709285400000", nil, http.StatusOK},
		{"not found", "7", domain.ErrLoanNotFound, http.StatusNotFound},
		{"bad id", "abc", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewLoanHandler(&loanServiceStub{
				getFn: func(ctx context.Context, id int64) (domain.LoanRecord, error) {
					if tt.err != nil {
						return domain.LoanRecord{}, tt.err
					}
					return budi, nil
				},
			})

			req := withURLParam(httptest.NewRequest(http.MethodGet, "/loans/"+tt.id, nil), "id", tt.id)
			rec := httptest.NewRecorder()
			handler.Get(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestLoanHandler_Update(t *testing.T) {
	var gotID int64
	var gotFields domain.LoanFields
	handler := NewLoanHandler(&loanServiceStub{
		updateFn: func(ctx context.Context, id int64, fields domain.LoanFields) (domain.LoanRecord, error) {
			gotID, gotFields = id, fields
			return budi.WithFields(fields), nil
		},
	})

	body, _ := json.Marshal(dto.LoanRequest{Name: "Budi", Amount: "2000", Status: "paid"})
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/loans/1709285400000", bytes.NewReader(body)), "id", "1709285400000")
	rec := httptest.NewRecorder()
	handler.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotID != budi.ID || gotFields.Amount != "2000" || gotFields.Status != domain.LoanStatusPaid {
		t.Fatalf("unexpected update call id=%d fields=%+v", gotID, gotFields)
	}
}

func TestLoanHandler_SetStatus(t *testing.T) {
	called := false
	handler := NewLoanHandler(&loanServiceStub{
		setStatusFn: func(ctx context.Context, id int64, status domain.LoanStatus) (domain.LoanRecord, error) {
			called = true
			l := budi
			l.Status = status
			return l, nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodPatch, "/loans/1/status", bytes.NewBufferString(`{"status":"Approved"}`)), "id", "1")
	rec := httptest.NewRecorder()
	handler.SetStatus(rec, req)

	if rec.Code != http.StatusOK || !called {
		t.Fatalf("expected 200 and a call, got %d called=%v", rec.Code, called)
	}

	called = false
	req = withURLParam(httptest.NewRequest(http.MethodPatch, "/loans/1/status", bytes.NewBufferString(`{"status":"Lost"}`)), "id", "1")
	rec = httptest.NewRecorder()
	handler.SetStatus(rec, req)

	if rec.Code != http.StatusBadRequest || called {
		t.Fatalf("expected 400 without a call, got %d called=%v", rec.Code, called)
	}
}

func TestLoanHandler_Delete(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		deleted bool
	}{
		{"confirmed", "?confirm=true", true},
		{"not confirmed", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewLoanHandler(&loanServiceStub{
				deleteFn: func(ctx context.Context, id int64, confirm usecase.Confirmation) (bool, error) {
					return confirm(budi), nil
				},
			})

			req := withURLParam(httptest.NewRequest(http.MethodDelete, "/loans/1"+tt.query, nil), "id", "1")
			rec := httptest.NewRecorder()
			handler.Delete(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}

			var resp dto.DeleteLoanResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Deleted != tt.deleted || resp.ID != 1 {
				t.Fatalf("unexpected response %+v", resp)
			}
			if noStore := rec.Header().Get("Cache-Control") == "no-store"; noStore == tt.deleted {
				t.Fatalf("expected no-store only on a declined delete, got %q", rec.Header().Get("Cache-Control"))
			}
		})
	}
}

func TestLoanHandler_DeleteMissing(t *testing.T) {
	handler := NewLoanHandler(&loanServiceStub{
		deleteFn: func(ctx context.Context, id int64, confirm usecase.Confirmation) (bool, error) {
			return false, domain.ErrLoanNotFound
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/loans/9?confirm=true", nil), "id", "9")
	rec := httptest.NewRecorder()
	handler.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLoanHandler_Summary(t *testing.T) {
	handler := NewLoanHandler(&loanServiceStub{
		summaryFn: func(ctx context.Context) []usecase.StatusSummary {
			return []usecase.StatusSummary{{Status: domain.LoanStatusPending, Count: 1, Total: decimal.NewFromInt(1000)}}
		},
	})

	rec := httptest.NewRecorder()
	handler.Summary(rec, httptest.NewRequest(http.MethodGet, "/loans/summary", nil))

	var resp dto.SummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Statuses) != 1 || resp.Statuses[0].Count != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
}
