package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Rhymond/go-money"

	"github.com/iho/loanticker/internal/adapter/http/dto"
)

func execute(t *testing.T, srv *httptest.Server, stdin io.Reader, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if stdin != nil {
		cmd.SetIn(stdin)
	}
	cmd.SetArgs(append([]string{"--api", srv.URL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func newLoanServer(t *testing.T, deleted *bool) *httptest.Server {
	t.Helper()

	loan := dto.LoanResponse{ID: 1700000000000, Date: "14/11/2023", Time: "22:13", Name: "Budi", Amount: "1500000", Description: "Motor", Status: "Pending"}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/loans", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(dto.ListLoansResponse{Loans: []dto.LoanResponse{loan}, Total: 1})
	})
	mux.HandleFunc("GET /api/v1/loans/1700000000000", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(loan)
	})
	mux.HandleFunc("PUT /api/v1/loans/1700000000000", func(w http.ResponseWriter, r *http.Request) {
		var req dto.LoanRequest
		json.NewDecoder(r.Body).Decode(&req)
		updated := loan
		updated.Name, updated.Amount, updated.Description, updated.Status = req.Name, req.Amount, req.Description, req.Status
		json.NewEncoder(w).Encode(updated)
	})
	mux.HandleFunc("DELETE /api/v1/loans/1700000000000", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("confirm") != "true" {
			t.Errorf("expected confirm=true, got %q", r.URL.RawQuery)
		}
		*deleted = true
		json.NewEncoder(w).Encode(dto.DeleteLoanResponse{ID: loan.ID, Deleted: true})
	})
	mux.HandleFunc("GET /api/v1/loans/404", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(dto.ErrorResponse{Error: "loan not found"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected short unchanged, got %q", got)
	}

	if got := truncate("longerstring", 6); got != "lon..." {
		t.Fatalf("expected lon..., got %q", got)
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printJSON(&buf, struct {
		A int `json:"a"`
	}{A: 1}); err != nil {
		t.Fatalf("printJSON failed: %v", err)
	}

	expected := "{\n  \"a\": 1\n}\n"
	if buf.String() != expected {
		t.Fatalf("unexpected json output:\n%s", buf.String())
	}
}

func TestFormatTHB(t *testing.T) {
	if got, want := formatTHB("1500000"), money.New(150000000, money.THB).Display(); got != want {
		t.Fatalf("formatTHB(1500000) = %q, want %q", got, want)
	}
	if got, want := formatTHB("12.5"), money.New(1250, money.THB).Display(); got != want {
		t.Fatalf("formatTHB(12.5) = %q, want %q", got, want)
	}
	if got := formatTHB("lima ratus"); got != "lima ratus" {
		t.Fatalf("expected free-form amount unchanged, got %q", got)
	}
}

func TestLoansList(t *testing.T) {
	var deleted bool
	out, err := execute(t, newLoanServer(t, &deleted), nil, "loans", "list")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	for _, want := range []string{"Budi", "Pending", "14/11/2023", formatTHB("1500000")} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestLoansEditKeepsUnsetFields(t *testing.T) {
	var deleted bool
	out, err := execute(t, newLoanServer(t, &deleted), nil, "--json", "loans", "edit", "1700000000000", "--status", "Paid")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}

	var loan dto.LoanResponse
	if err := json.Unmarshal([]byte(out), &loan); err != nil {
		t.Fatalf("invalid json output: %v\n%s", err, out)
	}
	if loan.Status != "Paid" || loan.Name != "Budi" || loan.Amount != "1500000" || loan.Description != "Motor" {
		t.Fatalf("unexpected edited loan: %+v", loan)
	}
}

func TestLoansDeleteRefusesWithoutTerminal(t *testing.T) {
	orig := isTerminal
	isTerminal = func(io.Reader) bool { return false }
	defer func() { isTerminal = orig }()

	var deleted bool
	_, err := execute(t, newLoanServer(t, &deleted), strings.NewReader("y\n"), "loans", "delete", "1700000000000")
	if err != errNotInteractive {
		t.Fatalf("expected errNotInteractive, got %v", err)
	}
	if deleted {
		t.Fatalf("loan must not be deleted without confirmation")
	}
}

func TestLoansDeletePrompt(t *testing.T) {
	orig := isTerminal
	isTerminal = func(io.Reader) bool { return true }
	defer func() { isTerminal = orig }()

	tests := []struct {
		name        string
		answer      string
		wantDeleted bool
	}{
		{name: "confirmed", answer: "yes\n", wantDeleted: true},
		{name: "declined", answer: "n\n", wantDeleted: false},
		{name: "empty answer", answer: "\n", wantDeleted: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var deleted bool
			out, err := execute(t, newLoanServer(t, &deleted), strings.NewReader(tt.answer), "loans", "delete", "1700000000000")
			if err != nil {
				t.Fatalf("command failed: %v", err)
			}
			if !strings.Contains(out, "Are you sure?") {
				t.Fatalf("expected confirmation prompt, got:\n%s", out)
			}
			if deleted != tt.wantDeleted {
				t.Fatalf("deleted = %v, want %v", deleted, tt.wantDeleted)
			}
		})
	}
}

func TestLoansDeleteWithYesSkipsPrompt(t *testing.T) {
	orig := isTerminal
	isTerminal = func(io.Reader) bool { return false }
	defer func() { isTerminal = orig }()

	var deleted bool
	out, err := execute(t, newLoanServer(t, &deleted), nil, "loans", "delete", "1700000000000", "--yes")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	if !deleted || !strings.Contains(out, "deleted") {
		t.Fatalf("expected loan to be deleted, output:\n%s", out)
	}
}

func TestAPIErrorsAreSurfaced(t *testing.T) {
	var deleted bool
	_, err := execute(t, newLoanServer(t, &deleted), nil, "loans", "status", "404", "Paid")
	if err == nil {
		t.Fatal("expected error")
	}

	_, err = execute(t, newLoanServer(t, &deleted), nil, "loans", "delete", "404", "--yes")
	apiErr, ok := err.(*apiError)
	if !ok {
		t.Fatalf("expected *apiError, got %T (%v)", err, err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "loan not found" {
		t.Fatalf("unexpected api error: %+v", apiErr)
	}
}

func TestPrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/prices" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(dto.PricesResponse{
			Prices: []dto.PriceResponse{
				{Symbol: "BTC", Display: "1.100.000.000", Change: "+10.00%", Source: "rest"},
				{Symbol: "XRP", Display: "9.000", Change: "n/a", Source: "stream"},
			},
			StreamConnected: true,
		})
	}))
	defer srv.Close()

	out, err := execute(t, srv, nil, "prices")
	if err != nil {
		t.Fatalf("command failed: %v", err)
	}
	for _, want := range []string{"BTC", "1.100.000.000", "+10.00%", "n/a", "stream: connected"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
