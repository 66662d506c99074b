package supabase_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/infra/resilience"
	"github.com/boddenberg/campus-budget-coach/internal/infra/supabase"
)

func newClient(t *testing.T, h http.HandlerFunc) *supabase.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := resilience.Config{MaxRetries: 1, InitialBackoff: time.Millisecond}
	return supabase.NewClient(srv.Client(), srv.URL, "anon", "service", resilience.NewCircuitBreaker("supabase-test"), cfg, zap.NewNop())
}

func TestListTransactions(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/transactions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("apikey") != "anon" || r.Header.Get("Authorization") != "Bearer service" {
			t.Errorf("missing auth headers: %v", r.Header)
		}
		dates := r.URL.Query()["tx_date"]
		if len(dates) != 2 || dates[0] != "gte.2025-03-01" || dates[1] != "lt.2025-04-01" {
			t.Errorf("unexpected date filter: %v", dates)
		}
		if r.URL.Query().Get("user_id") != "eq.u1" {
			t.Errorf("unexpected user filter: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[
			{"id":"t1","user_id":"u1","tx_date":"2025-03-02","type":"WITHDRAWAL","category":"식비","amount":12000},
			{"id":"t2","user_id":"u1","tx_date":"2025-03-05T10:00:00Z","type":"DEPOSIT","category":"수입","amount":500000}
		]`))
	})

	txs, err := c.ListTransactions(context.Background(), "u1", "2025-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if txs[0].Date.Day() != 2 || txs[0].CategoryRaw != "식비" || txs[0].Amount != 12000 {
		t.Errorf("unexpected first transaction: %+v", txs[0])
	}
	if txs[1].Type != domain.TransactionDeposit || txs[1].Date.Day() != 5 {
		t.Errorf("unexpected second transaction: %+v", txs[1])
	}
}

func TestListTransactions_InvalidMonth(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := c.ListTransactions(context.Background(), "u1", "March")
	var ve *domain.ErrValidation
	if !errors.As(err, &ve) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestLatestMonthAndAsset(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("select") == "type,amount" {
			w.Write([]byte(`[{"type":"DEPOSIT","amount":1000},{"type":"WITHDRAWAL","amount":300}]`))
			return
		}
		w.Write([]byte(`[{"id":"t9","tx_date":"2025-05-31","type":"WITHDRAWAL","amount":1}]`))
	})

	month, err := c.LatestMonth(context.Background(), "u1")
	if err != nil || month != "2025-05" {
		t.Errorf("expected 2025-05, got %q (%v)", month, err)
	}
	asset, err := c.CurrentAsset(context.Background(), "u1")
	if err != nil || asset != 700 {
		t.Errorf("expected 700, got %d (%v)", asset, err)
	}
}

func TestListPrograms(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/support_info" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[{"id":"p1","category":"장학금/지원금","title":"교내 장학금","keywords":["대학생","장학금"],"monthly_value":250000}]`))
	})

	programs, err := c.ListPrograms(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(programs) != 1 || programs[0].MonthlyValue != 250_000 || programs[0].Category != domain.SupportScholarship {
		t.Errorf("unexpected programs: %+v", programs)
	}
}

func TestServerErrorIsExternal(t *testing.T) {
	calls := 0
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.ListPrograms(context.Background())
	var ext *domain.ErrExternalService
	if !errors.As(err, &ext) {
		t.Fatalf("expected external service error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected a retry on 5xx, got %d calls", calls)
	}
}

func TestNotFoundIsEmpty(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	programs, err := c.ListPrograms(context.Background())
	if err != nil || len(programs) != 0 {
		t.Errorf("expected empty catalog, got %v (%v)", programs, err)
	}
	month, err := c.LatestMonth(context.Background(), "u1")
	if err != nil || month != "" {
		t.Errorf("expected no month, got %q (%v)", month, err)
	}
}
