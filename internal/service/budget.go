package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/campus-budget-coach/internal/budget"
	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/infra/events"
	"github.com/boddenberg/campus-budget-coach/internal/infra/observability"
	"github.com/boddenberg/campus-budget-coach/internal/port"
	"github.com/boddenberg/campus-budget-coach/internal/spending"
)

// BudgetService runs the allocator on explicit input or on the user's latest
// spending report.
type BudgetService struct {
	allocator *budget.Allocator
	analyses  port.AnalysisStore
	narrative *NarrativeService
	notifier  notifier
	now       func() time.Time
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewBudgetService creates the budget service with all dependencies injected.
func NewBudgetService(
	allocator *budget.Allocator,
	analyses port.AnalysisStore,
	narrative *NarrativeService,
	publisher port.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *BudgetService {
	return &BudgetService{
		allocator: allocator,
		analyses:  analyses,
		narrative: narrative,
		notifier:  notifier{publisher: publisher, metrics: metrics, logger: logger},
		now:       time.Now,
		metrics:   metrics,
		logger:    logger,
	}
}

// SetClock overrides the reference time.
func (s *BudgetService) SetClock(now func() time.Time) {
	s.now = now
}

// Allocate is the pure allocation: nothing is read or stored.
func (s *BudgetService) Allocate(ctx context.Context, req domain.AllocateRequest) (*domain.Allocation, error) {
	_, span := tracer.Start(ctx, "BudgetService.Allocate")
	defer span.End()

	rule, err := domain.RuleByName(req.Rule)
	if err != nil {
		return nil, err
	}
	a, err := s.allocator.Allocate(req.Income, rule, req.Prior)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordAllocation(a)
	span.SetAttributes(
		attribute.String("budget.rule", rule.Name),
		attribute.Bool("budget.overflow", a.StructuralOverflow.IsOver),
	)
	return &a, nil
}

// Recommend allocates the income of a stored spending report under the
// chosen rule and stores the result. Month picks a specific report; the
// latest one is used otherwise. A positive Income overrides the report's.
func (s *BudgetService) Recommend(ctx context.Context, userID string, req domain.RecommendBudgetRequest) (*domain.BudgetAnalysis, error) {
	ctx, span := tracer.Start(ctx, "BudgetService.Recommend")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := s.now()
	defer func() {
		s.metrics.RecordRequestDuration("budget.recommend", time.Since(start))
	}()

	rule, err := domain.RuleByName(req.Rule)
	if err != nil {
		return nil, err
	}
	if req.Income < 0 {
		return nil, &domain.ErrValidation{Field: "income", Message: "must not be negative"}
	}

	report, err := s.report(ctx, userID, req.Month)
	if err != nil {
		return nil, err
	}

	income := report.TotalIncome
	if req.Income > 0 {
		income = req.Income
	}

	a, err := s.allocator.Allocate(income, rule, priorSpending(report))
	if err != nil {
		return nil, err
	}
	s.metrics.RecordAllocation(a)
	if a.StructuralOverflow.IsOver {
		s.logger.Info("structural overflow in needs",
			zap.String("user_id", userID),
			zap.Int64("over_amount", a.StructuralOverflow.OverAmount),
		)
	}

	analysis := &domain.BudgetAnalysis{
		UserID:             userID,
		SpendingAnalysisID: report.ID,
		Month:              report.Month,
		Allocation:         a,
		CreatedAt:          start,
	}
	if req.Enrich {
		analysis.Narrative = s.narrative.Enrich(ctx, domain.NarrativeBudget, userID, a, BudgetMessages(a))
	}

	if err := s.analyses.SaveBudgetAnalysis(ctx, analysis); err != nil {
		return nil, fmt.Errorf("save budget analysis: %w", err)
	}
	s.notifier.notify(ctx, events.KindBudgetRecommended, userID, analysis.ID, start)
	return analysis, nil
}

// priorSpending is the report's category stats plus the month's savings,
// which the report keeps out of its consumption stats.
func priorSpending(r *domain.SpendingReport) []domain.CategoryStat {
	prior := make([]domain.CategoryStat, 0, len(r.Categories)+1)
	prior = append(prior, r.Categories...)
	if r.TotalSaved > 0 {
		prior = append(prior, domain.CategoryStat{Category: spending.CategorySavings, Amount: r.TotalSaved})
	}
	return prior
}

func (s *BudgetService) report(ctx context.Context, userID, month string) (*domain.SpendingReport, error) {
	if month == "" {
		r, err := s.analyses.LatestSpendingReport(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("latest spending report: %w", err)
		}
		if r == nil {
			return nil, &domain.ErrNotFound{Resource: "spending_analysis", ID: "latest"}
		}
		return r, nil
	}

	reports, err := s.analyses.ListSpendingReports(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list spending reports: %w", err)
	}
	for i := range reports {
		if reports[i].Month == month {
			return &reports[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "spending_analysis", ID: month}
}

// History lists the user's stored budget analyses, newest first.
func (s *BudgetService) History(ctx context.Context, userID string) ([]domain.BudgetAnalysis, error) {
	ctx, span := tracer.Start(ctx, "BudgetService.History")
	defer span.End()

	list, err := s.analyses.ListBudgetAnalyses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list budget analyses: %w", err)
	}
	if list == nil {
		list = []domain.BudgetAnalysis{}
	}
	return list, nil
}

// Get returns one stored budget analysis.
func (s *BudgetService) Get(ctx context.Context, userID, id string) (*domain.BudgetAnalysis, error) {
	ctx, span := tracer.Start(ctx, "BudgetService.Get")
	defer span.End()

	return s.analyses.GetBudgetAnalysis(ctx, userID, id)
}
