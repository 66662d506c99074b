package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/infra/events"
	"github.com/boddenberg/campus-budget-coach/internal/infra/observability"
	"github.com/boddenberg/campus-budget-coach/internal/money"
	"github.com/boddenberg/campus-budget-coach/internal/port"
)

// Challenge messages.
const (
	MsgChallengeCreated = "챌린지가 생성되었습니다."
	MsgChallengeExists  = "이미 진행 중인 챌린지가 있습니다."
)

// ChallengeService manages challenges committed from simulated plans.
type ChallengeService struct {
	challenges port.ChallengeStore
	analyses   port.AnalysisStore
	txs        port.TransactionStore
	notifier   notifier
	now        func() time.Time
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewChallengeService creates the challenge service with all dependencies injected.
func NewChallengeService(
	challenges port.ChallengeStore,
	analyses port.AnalysisStore,
	txs port.TransactionStore,
	publisher port.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ChallengeService {
	return &ChallengeService{
		challenges: challenges,
		analyses:   analyses,
		txs:        txs,
		notifier:   notifier{publisher: publisher, metrics: metrics, logger: logger},
		now:        time.Now,
		metrics:    metrics,
		logger:     logger,
	}
}

// SetClock overrides the reference time.
func (s *ChallengeService) SetClock(now func() time.Time) {
	s.now = now
}

// Init returns what the simulation page needs before the user enters a goal.
func (s *ChallengeService) Init(ctx context.Context, userID string) (*domain.ChallengeInit, error) {
	ctx, span := tracer.Start(ctx, "ChallengeService.Init")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	asset, err := s.txs.CurrentAsset(ctx, userID)
	if err != nil {
		s.metrics.IncrExternalError("transactions")
		return nil, fmt.Errorf("current asset: %w", err)
	}
	latest, err := s.txs.LatestMonth(ctx, userID)
	if err != nil {
		s.metrics.IncrExternalError("transactions")
		return nil, fmt.Errorf("latest month: %w", err)
	}
	report, err := s.analyses.LatestSpendingReport(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("latest spending report: %w", err)
	}

	res := &domain.ChallengeInit{
		CurrentAsset:   money.AtLeastZero(asset),
		LatestDataDate: latest,
	}
	if report != nil {
		res.HasAnalysis = true
		res.MonthlySavePotential = money.AtLeastZero(report.SavePotential)
		res.LastAnalysisDate = report.AnalysisDate
		// month strings compare chronologically
		res.AnalysisOutdated = latest != "" && latest > report.Month
	}
	return res, nil
}

// Create stores a challenge for the chosen plan. When a challenge for the
// same event is already in progress it is returned unchanged.
func (s *ChallengeService) Create(ctx context.Context, userID string, req domain.CreateChallengeRequest) (*domain.CreateChallengeResult, error) {
	ctx, span := tracer.Start(ctx, "ChallengeService.Create")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("challenge.event", req.EventName),
	)

	if err := validateChallenge(req); err != nil {
		return nil, err
	}

	existing, err := s.challenges.FindActiveChallenge(ctx, userID, req.EventName)
	if err != nil {
		return nil, fmt.Errorf("find active challenge: %w", err)
	}
	if existing != nil {
		return &domain.CreateChallengeResult{Challenge: *existing, IsNew: false, Message: MsgChallengeExists}, nil
	}

	analysisID := ""
	report, err := s.analyses.LatestSpendingReport(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("latest spending report: %w", err)
	}
	if report != nil {
		analysisID = report.ID
	}

	now := s.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	name := req.ChallengeName
	if name == "" {
		name = fmt.Sprintf("%s원에서 %s 도전", money.Format(req.CurrentAmount), req.EventName)
	}

	c := &domain.Challenge{
		UserID:              userID,
		SpendingAnalysisID:  analysisID,
		ChallengeName:       name,
		EventName:           req.EventName,
		CurrentAmount:       req.CurrentAmount,
		TargetAmount:        req.TargetAmount,
		ShortfallAmount:     req.TargetAmount - req.CurrentAmount,
		PeriodMonths:        req.PeriodMonths,
		PlanType:            req.Plan.PlanType,
		PlanTitle:           req.Plan.Title,
		Description:         req.Plan.Description,
		MonthlyRequired:     req.Plan.MonthlyRequired,
		MonthlyShortfall:    req.Plan.MonthlyShortfall,
		FinalEstimatedAsset: req.Plan.FinalEstimatedAsset,
		ExpectedPeriod:      req.Plan.ExpectedPeriodMonths,
		Detail:              req.Plan.Detail,
		Status:              domain.ChallengeInProgress,
		StartDate:           start,
		EndDate:             start.AddDate(0, req.PeriodMonths, 0),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.challenges.CreateChallenge(ctx, c); err != nil {
		return nil, fmt.Errorf("create challenge: %w", err)
	}
	s.notifier.notify(ctx, events.KindChallengeCreated, userID, c.ID, now)

	s.logger.Info("challenge created",
		zap.String("user_id", userID),
		zap.String("challenge_id", c.ID),
		zap.String("plan_type", string(c.PlanType)),
	)
	return &domain.CreateChallengeResult{Challenge: *c, IsNew: true, Message: MsgChallengeCreated}, nil
}

func validateChallenge(req domain.CreateChallengeRequest) error {
	switch {
	case strings.TrimSpace(req.EventName) == "":
		return &domain.ErrValidation{Field: "event_name", Message: "is required"}
	case req.TargetAmount <= 0:
		return &domain.ErrValidation{Field: "target_amount", Message: "must be greater than 0"}
	case req.PeriodMonths <= 0:
		return &domain.ErrValidation{Field: "period_months", Message: "must be greater than 0"}
	case req.CurrentAmount < 0:
		return &domain.ErrValidation{Field: "current_amount", Message: "must not be negative"}
	}
	for _, pt := range domain.PlanTypes {
		if req.Plan.PlanType == pt {
			return nil
		}
	}
	return &domain.ErrValidation{Field: "plan.plan_type", Message: "unknown plan type"}
}

// List returns the user's challenges, newest first, optionally filtered by
// status. Challenges past their end date are completed first.
func (s *ChallengeService) List(ctx context.Context, userID string, status domain.ChallengeStatus) ([]domain.Challenge, error) {
	ctx, span := tracer.Start(ctx, "ChallengeService.List")
	defer span.End()

	if status != "" && !status.Valid() {
		return nil, &domain.ErrValidation{Field: "status", Message: "must be IN_PROGRESS, COMPLETED or FAILED"}
	}

	list, err := s.challenges.ListChallenges(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}

	out := []domain.Challenge{}
	for i := range list {
		c := &list[i]
		if err := s.expire(ctx, c); err != nil {
			return nil, err
		}
		if status == "" || c.Status == status {
			out = append(out, *c)
		}
	}
	return out, nil
}

// Get returns one challenge, completing it first when its end date passed.
func (s *ChallengeService) Get(ctx context.Context, userID, id string) (*domain.Challenge, error) {
	ctx, span := tracer.Start(ctx, "ChallengeService.Get")
	defer span.End()

	c, err := s.challenges.GetChallenge(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.expire(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateStatus sets a challenge's status.
func (s *ChallengeService) UpdateStatus(ctx context.Context, userID, id string, status domain.ChallengeStatus) (*domain.Challenge, error) {
	ctx, span := tracer.Start(ctx, "ChallengeService.UpdateStatus")
	defer span.End()
	span.SetAttributes(attribute.String("challenge.status", string(status)))

	if !status.Valid() {
		return nil, &domain.ErrValidation{Field: "status", Message: "must be IN_PROGRESS, COMPLETED or FAILED"}
	}
	c, err := s.challenges.UpdateChallengeStatus(ctx, userID, id, status)
	if err != nil {
		return nil, err
	}
	s.notifier.notify(ctx, events.KindChallengeUpdated, userID, c.ID, s.now())
	return c, nil
}

// expire completes an in-progress challenge whose end date has passed.
// Achievement is not checked against the real asset.
func (s *ChallengeService) expire(ctx context.Context, c *domain.Challenge) error {
	if c.Status != domain.ChallengeInProgress || !s.now().After(c.EndDate) {
		return nil
	}
	updated, err := s.challenges.UpdateChallengeStatus(ctx, c.UserID, c.ID, domain.ChallengeCompleted)
	if err != nil {
		return fmt.Errorf("complete expired challenge: %w", err)
	}
	s.logger.Info("challenge completed after end date",
		zap.String("user_id", c.UserID),
		zap.String("challenge_id", c.ID),
	)
	*c = *updated
	return nil
}
