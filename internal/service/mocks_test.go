package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/infra/observability"
	"github.com/boddenberg/campus-budget-coach/internal/infra/resilience"
	"github.com/boddenberg/campus-budget-coach/internal/port"
	"github.com/boddenberg/campus-budget-coach/internal/service"
	"github.com/boddenberg/campus-budget-coach/internal/spending"
)

// --- Mocks ---

// memStore implements the transaction, analysis and challenge stores.
type memStore struct {
	mu         sync.Mutex
	txs        []domain.Transaction
	txErr      error
	reports    []domain.SpendingReport
	budgets    []domain.BudgetAnalysis
	challenges []domain.Challenge
	seq        int
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) ListTransactions(_ context.Context, _ string, month string) ([]domain.Transaction, error) {
	if m.txErr != nil {
		return nil, m.txErr
	}
	var out []domain.Transaction
	for _, tx := range m.txs {
		if spending.MonthOf(tx.Date) == month {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (m *memStore) LatestMonth(_ context.Context, _ string) (string, error) {
	if m.txErr != nil {
		return "", m.txErr
	}
	return spending.LatestMonth(m.txs), nil
}

func (m *memStore) CurrentAsset(_ context.Context, _ string) (int64, error) {
	if m.txErr != nil {
		return 0, m.txErr
	}
	var total int64
	for _, tx := range m.txs {
		if tx.Type == domain.TransactionDeposit {
			total += tx.Amount
		} else {
			total -= tx.Amount
		}
	}
	return total, nil
}

func (m *memStore) SaveSpendingReport(_ context.Context, r *domain.SpendingReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = m.nextID("sa")
	m.reports = append([]domain.SpendingReport{*r}, m.reports...)
	return nil
}

func (m *memStore) GetSpendingReport(_ context.Context, userID, id string) (*domain.SpendingReport, error) {
	for _, r := range m.reports {
		if r.ID == id && r.UserID == userID {
			r := r
			return &r, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "spending_analysis", ID: id}
}

func (m *memStore) ListSpendingReports(_ context.Context, _ string) ([]domain.SpendingReport, error) {
	return append([]domain.SpendingReport(nil), m.reports...), nil
}

func (m *memStore) LatestSpendingReport(_ context.Context, _ string) (*domain.SpendingReport, error) {
	if len(m.reports) == 0 {
		return nil, nil
	}
	r := m.reports[0]
	return &r, nil
}

func (m *memStore) SaveBudgetAnalysis(_ context.Context, b *domain.BudgetAnalysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = m.nextID("ba")
	m.budgets = append([]domain.BudgetAnalysis{*b}, m.budgets...)
	return nil
}

func (m *memStore) GetBudgetAnalysis(_ context.Context, _ string, id string) (*domain.BudgetAnalysis, error) {
	for _, b := range m.budgets {
		if b.ID == id {
			b := b
			return &b, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "budget_analysis", ID: id}
}

func (m *memStore) ListBudgetAnalyses(_ context.Context, _ string) ([]domain.BudgetAnalysis, error) {
	return append([]domain.BudgetAnalysis(nil), m.budgets...), nil
}

func (m *memStore) CreateChallenge(_ context.Context, c *domain.Challenge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.nextID("ch")
	m.challenges = append([]domain.Challenge{*c}, m.challenges...)
	return nil
}

func (m *memStore) GetChallenge(_ context.Context, _ string, id string) (*domain.Challenge, error) {
	for _, c := range m.challenges {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "challenge", ID: id}
}

func (m *memStore) ListChallenges(_ context.Context, _ string) ([]domain.Challenge, error) {
	return append([]domain.Challenge(nil), m.challenges...), nil
}

func (m *memStore) FindActiveChallenge(_ context.Context, _ string, eventName string) (*domain.Challenge, error) {
	for _, c := range m.challenges {
		if c.EventName == eventName && c.Status == domain.ChallengeInProgress {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memStore) UpdateChallengeStatus(_ context.Context, _ string, id string, status domain.ChallengeStatus) (*domain.Challenge, error) {
	for i := range m.challenges {
		if m.challenges[i].ID == id {
			m.challenges[i].Status = status
			c := m.challenges[i]
			return &c, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "challenge", ID: id}
}

type mockCatalog struct {
	programs []domain.SupportProgram
	err      error
	calls    int
}

func (m *mockCatalog) ListPrograms(_ context.Context) ([]domain.SupportProgram, error) {
	m.calls++
	return m.programs, m.err
}

type mockNarrator struct {
	resp *domain.NarrativeResponse
	err  error
	reqs []*domain.NarrativeRequest
}

func (m *mockNarrator) Narrate(_ context.Context, req *domain.NarrativeRequest) (*domain.NarrativeResponse, error) {
	m.reqs = append(m.reqs, req)
	return m.resp, m.err
}

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.ResultEvent
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, e domain.ResultEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func (m *mockPublisher) kinds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Kind)
	}
	return out
}

// --- Fixtures ---

var errBoom = errors.New("connection refused")

func fixedClock() time.Time {
	return time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC)
}

func day(month time.Month, d int) time.Time {
	return time.Date(2025, month, d, 12, 0, 0, 0, time.UTC)
}

// marchLedger is an allowance month with a heavy cafe habit.
func marchLedger() []domain.Transaction {
	return []domain.Transaction{
		{ID: "t1", Date: day(3, 1), Type: domain.TransactionDeposit, CategoryRaw: "용돈", Amount: 1000000},
		{ID: "t2", Date: day(3, 2), Type: domain.TransactionWithdrawal, CategoryRaw: "식비", Amount: 300000},
		{ID: "t3", Date: day(3, 3), Type: domain.TransactionWithdrawal, CategoryRaw: "카페", Amount: 200000},
		{ID: "t4", Date: day(3, 4), Type: domain.TransactionWithdrawal, CategoryRaw: "교통", Amount: 50000},
		{ID: "t5", Date: day(3, 5), Type: domain.TransactionWithdrawal, CategoryRaw: "적금", Amount: 100000},
	}
}

func newNarrative(n *mockNarrator) *service.NarrativeService {
	var narrator port.Narrator
	if n != nil {
		narrator = n
	}
	return service.NewNarrativeService(narrator, resilience.NewBulkhead(2), observability.NewMetrics(), zap.NewNop())
}
