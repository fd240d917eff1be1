package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iho/loanticker/internal/adapter/http/dto"
)

// apiClient talks to the loanticker HTTP API.
type apiClient struct {
	baseURL    string
	httpClient *http.Client
}

func newAPIClient(baseURL string, timeout time.Duration) *apiClient {
	return &apiClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// apiError is a non-2xx answer from the API.
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api returned %d: %s", e.StatusCode, e.Message)
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp dto.ErrorResponse
		raw, _ := io.ReadAll(resp.Body)
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &errResp) == nil && errResp.Error != "" {
			msg = errResp.Error
			if errResp.Message != "" {
				msg += ": " + errResp.Message
			}
		}
		return &apiError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *apiClient) listLoans(ctx context.Context) (dto.ListLoansResponse, error) {
	var out dto.ListLoansResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/loans", nil, &out)
	return out, err
}

func (c *apiClient) getLoan(ctx context.Context, id int64) (dto.LoanResponse, error) {
	var out dto.LoanResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/loans/%d", id), nil, &out)
	return out, err
}

func (c *apiClient) createLoan(ctx context.Context, req dto.LoanRequest) (dto.LoanResponse, error) {
	var out dto.LoanResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/loans", req, &out)
	return out, err
}

func (c *apiClient) updateLoan(ctx context.Context, id int64, req dto.LoanRequest) (dto.LoanResponse, error) {
	var out dto.LoanResponse
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/loans/%d", id), req, &out)
	return out, err
}

func (c *apiClient) setStatus(ctx context.Context, id int64, status string) (dto.LoanResponse, error) {
	var out dto.LoanResponse
	err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/v1/loans/%d/status", id), dto.SetStatusRequest{Status: status}, &out)
	return out, err
}

func (c *apiClient) deleteLoan(ctx context.Context, id int64) (dto.DeleteLoanResponse, error) {
	var out dto.DeleteLoanResponse
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/loans/%d?confirm=true", id), nil, &out)
	return out, err
}

func (c *apiClient) summary(ctx context.Context) (dto.SummaryResponse, error) {
	var out dto.SummaryResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/loans/summary", nil, &out)
	return out, err
}

func (c *apiClient) prices(ctx context.Context) (dto.PricesResponse, error) {
	var out dto.PricesResponse
	err := c.do(ctx, http.MethodGet, "/api/v1/prices", nil, &out)
	return out, err
}
