package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/loanticker/internal/domain"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := New(registry)

	if m.LoanOperations == nil || m.PriceUpdates == nil || m.StreamConnected == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.SetLoanCount(1)
	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestObservers(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveLoanOperation("create", nil)
	m.ObserveLoanOperation("create", errors.New("boom"))
	m.SetLoanCount(3)
	m.ObservePriceUpdate(domain.PriceSourceStream, "BTC", true)
	m.ObservePriceUpdate(domain.PriceSourceREST, "BTC", false)
	m.ObserveFetchError("eth_idr")
	m.ObserveReconnect()
	m.ObserveReconnect()
	m.SetStreamConnected(true)

	if got := testutil.ToFloat64(m.LoanOperations.WithLabelValues("create", "ok")); got != 1 {
		t.Fatalf("expected 1 ok create, got %v", got)
	}
	if got := testutil.ToFloat64(m.LoanOperations.WithLabelValues("create", "error")); got != 1 {
		t.Fatalf("expected 1 failed create, got %v", got)
	}
	if got := testutil.ToFloat64(m.LoansTotal); got != 3 {
		t.Fatalf("expected loan gauge 3, got %v", got)
	}
	if got := testutil.ToFloat64(m.PriceUpdates.WithLabelValues("rest", "BTC", "false")); got != 1 {
		t.Fatalf("expected one discarded rest update, got %v", got)
	}
	if got := testutil.ToFloat64(m.FetchErrors.WithLabelValues("eth_idr")); got != 1 {
		t.Fatalf("expected one fetch error, got %v", got)
	}
	if got := testutil.ToFloat64(m.StreamReconnects); got != 2 {
		t.Fatalf("expected two reconnects, got %v", got)
	}
	if got := testutil.ToFloat64(m.StreamConnected); got != 1 {
		t.Fatalf("expected stream connected gauge 1, got %v", got)
	}
}
