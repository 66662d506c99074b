package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/infra/sqlite"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAllocate_JSON(t *testing.T) {
	out, err := run(t, "allocate", "--income", "1000000", "--rule", "50/30/20", "--prior", "월세=400000,카페=100000", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var a domain.Allocation
	if err := json.Unmarshal([]byte(out), &a); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if a.Caps.Needs != 500000 || a.Caps.Wants != 300000 || a.Caps.Savings != 200000 {
		t.Errorf("unexpected caps: %+v", a.Caps)
	}
	if a.Rule.Name != "50/30/20" {
		t.Errorf("expected rule 50/30/20, got %s", a.Rule.Name)
	}
}

func TestAllocate_Table(t *testing.T) {
	out, err := run(t, "allocate", "--income", "1000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "40/30/30") || !strings.Contains(out, "NEEDS") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestAllocate_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown rule", []string{"allocate", "--income", "1000", "--rule", "70/20/10"}},
		{"negative income", []string{"allocate", "--income", "-1"}},
		{"missing income", []string{"allocate"}},
		{"bad rounding", []string{"allocate", "--income", "1000", "--rounding", "banker"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSimulate_JSON(t *testing.T) {
	out, err := run(t, "simulate",
		"--event", "노트북",
		"--target", "2000000",
		"--period", "6",
		"--potential", "200000",
		"--top", "카페=150000,식비=300000",
		"--json",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var res domain.SimulationResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if res.EventLabel != "노트북" || res.Situation.Difficulty == "" {
		t.Errorf("unexpected result: %+v", res.Situation)
	}
	if len(res.Plans) == 0 || len(res.Recommended) == 0 {
		t.Fatalf("expected plans with a recommendation, got %d plans", len(res.Plans))
	}
}

func TestSimulate_InvalidGoal(t *testing.T) {
	if _, err := run(t, "simulate", "--target", "0", "--period", "6"); err == nil {
		t.Error("expected validation error")
	}
}

func TestAnalyze_LatestMonth(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "coach.db")
	store, err := sqlite.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	d := func(day int) time.Time { return time.Date(2025, 3, day, 12, 0, 0, 0, time.UTC) }
	err = store.AddTransactions(context.Background(), []domain.Transaction{
		{UserID: "u1", Date: d(1), Type: domain.TransactionDeposit, CategoryRaw: "용돈", Amount: 1000000},
		{UserID: "u1", Date: d(2), Type: domain.TransactionWithdrawal, CategoryRaw: "식비", Amount: 300000},
		{UserID: "u1", Date: d(3), Type: domain.TransactionWithdrawal, CategoryRaw: "카페", Amount: 200000},
		{UserID: "u1", Date: d(4), Type: domain.TransactionWithdrawal, CategoryRaw: "적금", Amount: 100000},
	})
	store.Close()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	out, err := run(t, "analyze", "--db", dbPath, "--user", "u1", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var report domain.SpendingReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if report.Month != "2025-03" {
		t.Errorf("expected latest month 2025-03, got %s", report.Month)
	}
	if report.TotalIncome != 1000000 || report.TotalSpent != 500000 || report.TotalSaved != 100000 {
		t.Errorf("unexpected totals: income=%d spent=%d saved=%d", report.TotalIncome, report.TotalSpent, report.TotalSaved)
	}
}

func TestAnalyze_BadMonth(t *testing.T) {
	if _, err := run(t, "analyze", "--db", filepath.Join(t.TempDir(), "x.db"), "--month", "2025/03"); err == nil {
		t.Error("expected month validation error")
	}
}
