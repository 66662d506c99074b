package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/goal"
	"github.com/boddenberg/campus-budget-coach/internal/infra/observability"
	"github.com/boddenberg/campus-budget-coach/internal/money"
	"github.com/boddenberg/campus-budget-coach/internal/port"
)

// SimulationService fills a goal from the user's data and runs the planner.
type SimulationService struct {
	planner   *goal.Planner
	txs       port.TransactionStore
	analyses  port.AnalysisStore
	supports  *SupportService
	narrative *NarrativeService
	now       func() time.Time
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewSimulationService creates the simulation service with all dependencies injected.
func NewSimulationService(
	planner *goal.Planner,
	txs port.TransactionStore,
	analyses port.AnalysisStore,
	supports *SupportService,
	narrative *NarrativeService,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *SimulationService {
	return &SimulationService{
		planner:   planner,
		txs:       txs,
		analyses:  analyses,
		supports:  supports,
		narrative: narrative,
		now:       time.Now,
		metrics:   metrics,
		logger:    logger,
	}
}

// SetClock overrides the reference time.
func (s *SimulationService) SetClock(now func() time.Time) {
	s.now = now
}

// Simulate runs the goal simulation. Missing current amount and save
// potential come from the ledger and the latest spending report, fetched
// concurrently with the support catalog.
func (s *SimulationService) Simulate(ctx context.Context, userID string, req domain.SimulateRequest) (*domain.SimulationResult, error) {
	ctx, span := tracer.Start(ctx, "SimulationService.Simulate")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("goal.event", req.EventName),
	)

	start := s.now()
	defer func() {
		s.metrics.RecordRequestDuration("challenge.simulate", time.Since(start))
	}()

	in := domain.GoalInput{
		Target:       req.TargetAmount,
		PeriodMonths: req.PeriodMonths,
	}
	if req.CurrentAmount != nil {
		in.Current = *req.CurrentAmount
	}
	if req.MonthlySavePotential != nil {
		in.MonthlySavePotential = *req.MonthlySavePotential
	}
	// reject obviously bad input before touching any store
	if err := goal.Validate(in); err != nil {
		return nil, err
	}

	var (
		report   *domain.SpendingReport
		asset    int64
		programs []domain.SupportProgram
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r, err := s.analyses.LatestSpendingReport(gCtx, userID)
		if err != nil {
			s.metrics.IncrExternalError("analyses")
			return fmt.Errorf("latest spending report: %w", err)
		}
		report = r
		return nil
	})

	if req.CurrentAmount == nil {
		g.Go(func() error {
			a, err := s.txs.CurrentAsset(gCtx, userID)
			if err != nil {
				s.metrics.IncrExternalError("transactions")
				return fmt.Errorf("current asset: %w", err)
			}
			asset = a
			return nil
		})
	}

	g.Go(func() error {
		p, err := s.supports.Programs(gCtx, "")
		if err != nil {
			// the planner falls back to an assumed subsidy
			s.logger.Warn("support catalog unavailable, using fallback",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			return nil
		}
		programs = p
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if req.CurrentAmount == nil {
		in.Current = money.AtLeastZero(asset)
	}
	sc := domain.SimulationContext{
		EventLabel: req.EventName,
		Supports:   programs,
		AutoSelect: req.AutoSelect,
	}
	if report != nil {
		sc.TopCategories = report.Categories
		if req.MonthlySavePotential == nil {
			in.MonthlySavePotential = money.AtLeastZero(report.SavePotential)
		}
	}

	res, err := s.planner.Simulate(in, sc)
	if err != nil {
		return nil, err
	}
	res.SimulationDate = start.Format("2006-01-02")
	s.metrics.RecordSimulation(res)
	span.SetAttributes(attribute.String("goal.difficulty", string(res.Situation.Difficulty)))

	if req.Enrich {
		res.Narrative = s.narrative.Enrich(ctx, domain.NarrativeSimulation, userID, res, SimulationMessages(&res))
	}

	s.logger.Info("goal simulated",
		zap.String("user_id", userID),
		zap.String("event", req.EventName),
		zap.String("difficulty", string(res.Situation.Difficulty)),
		zap.Int("plans", len(res.Plans)),
	)
	return &res, nil
}
