package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/infra/events"
	"github.com/boddenberg/campus-budget-coach/internal/infra/observability"
	"github.com/boddenberg/campus-budget-coach/internal/port"
	"github.com/boddenberg/campus-budget-coach/internal/spending"
)

// SpendingService builds, stores and lists monthly spending reports.
type SpendingService struct {
	txs        port.TransactionStore
	analyses   port.AnalysisStore
	challenges port.ChallengeStore
	narrative  *NarrativeService
	notifier   notifier
	opts       spending.Options
	now        func() time.Time
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewSpendingService creates the spending service with all dependencies injected.
func NewSpendingService(
	txs port.TransactionStore,
	analyses port.AnalysisStore,
	challenges port.ChallengeStore,
	narrative *NarrativeService,
	publisher port.EventPublisher,
	opts spending.Options,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *SpendingService {
	return &SpendingService{
		txs:        txs,
		analyses:   analyses,
		challenges: challenges,
		narrative:  narrative,
		notifier:   notifier{publisher: publisher, metrics: metrics, logger: logger},
		opts:       opts,
		now:        time.Now,
		metrics:    metrics,
		logger:     logger,
	}
}

// SetClock overrides the reference time.
func (s *SpendingService) SetClock(now func() time.Time) {
	s.now = now
}

// Analyze builds the report of the requested month (current month by
// default). When that month has no data and auto fallback is on, the latest
// month with data is analyzed instead. Non-empty reports are persisted.
func (s *SpendingService) Analyze(ctx context.Context, userID string, req domain.AnalyzeSpendingRequest) (*domain.SpendingReport, error) {
	ctx, span := tracer.Start(ctx, "SpendingService.Analyze")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	start := s.now()
	defer func() {
		s.metrics.RecordRequestDuration("spending.analyze", time.Since(start))
	}()

	month := req.Month
	if month == "" {
		month = spending.MonthOf(start)
	}
	if _, err := spending.ParseMonth(month); err != nil {
		return nil, err
	}

	txs, err := s.txs.ListTransactions(ctx, userID, month)
	if err != nil {
		s.metrics.IncrExternalError("transactions")
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	analyzed := month
	autoFallback := req.AutoFallback == nil || *req.AutoFallback
	if len(txs) == 0 && autoFallback {
		latest, err := s.txs.LatestMonth(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("latest month: %w", err)
		}
		if latest != "" && latest != month {
			s.logger.Info("no transactions in requested month, falling back",
				zap.String("user_id", userID),
				zap.String("requested", month),
				zap.String("latest", latest),
			)
			if txs, err = s.txs.ListTransactions(ctx, userID, latest); err != nil {
				return nil, fmt.Errorf("list transactions: %w", err)
			}
			analyzed = latest
		}
	}

	opts := s.opts
	opts.Now = start
	report := spending.Aggregate(analyzed, txs, opts)
	report.UserID = userID
	if analyzed != month {
		report.RequestedMonth = month
		if !report.Empty() {
			report.DataStatus = domain.DataFallback
		}
	}
	span.SetAttributes(attribute.String("spending.status", string(report.DataStatus)))

	if report.Empty() {
		return &report, nil
	}

	report.ChallengeProgress = s.challengeProgress(ctx, userID, &report)

	if req.Enrich {
		report.Narrative = s.narrative.Enrich(ctx, domain.NarrativeSpending, userID, report, SpendingMessages(&report))
	}

	if err := s.analyses.SaveSpendingReport(ctx, &report); err != nil {
		return nil, fmt.Errorf("save spending report: %w", err)
	}
	s.notifier.notify(ctx, events.KindSpendingAnalyzed, userID, report.ID, start)

	s.logger.Info("spending analyzed",
		zap.String("user_id", userID),
		zap.String("month", report.Month),
		zap.Int64("total_spent", report.TotalSpent),
		zap.String("overspent", report.OverspentCategory),
	)
	return &report, nil
}

// challengeProgress compares the report with every challenge in progress.
// A failing challenge lookup only drops the comparison.
func (s *SpendingService) challengeProgress(ctx context.Context, userID string, r *domain.SpendingReport) []domain.ChallengeProgress {
	list, err := s.challenges.ListChallenges(ctx, userID)
	if err != nil {
		s.logger.Warn("challenge lookup failed, skipping progress",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil
	}

	var out []domain.ChallengeProgress
	for _, c := range list {
		if c.Status != domain.ChallengeInProgress {
			continue
		}
		if p, ok := spending.CompareChallenge(r, c); ok {
			out = append(out, p)
		}
	}
	return out
}

// History lists the user's stored reports, newest first.
func (s *SpendingService) History(ctx context.Context, userID string) ([]domain.SpendingReport, error) {
	ctx, span := tracer.Start(ctx, "SpendingService.History")
	defer span.End()

	reports, err := s.analyses.ListSpendingReports(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list spending reports: %w", err)
	}
	if reports == nil {
		reports = []domain.SpendingReport{}
	}
	return reports, nil
}

// Get returns one stored report.
func (s *SpendingService) Get(ctx context.Context, userID, id string) (*domain.SpendingReport, error) {
	ctx, span := tracer.Start(ctx, "SpendingService.Get")
	defer span.End()

	return s.analyses.GetSpendingReport(ctx, userID, id)
}
