package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/infra/events"
	"github.com/boddenberg/campus-budget-coach/internal/infra/observability"
	"github.com/boddenberg/campus-budget-coach/internal/service"
)

func newChallengeService(store *memStore, pub *mockPublisher) *service.ChallengeService {
	svc := service.NewChallengeService(store, store, store, pub, observability.NewMetrics(), zap.NewNop())
	svc.SetClock(fixedClock)
	return svc
}

func laptopRequest() domain.CreateChallengeRequest {
	return domain.CreateChallengeRequest{
		EventName:     "노트북",
		CurrentAmount: 350000,
		TargetAmount:  1000000,
		PeriodMonths:  6,
		Plan: domain.Plan{
			PlanType:             domain.PlanMaintain,
			Title:                "현재 상태 유지",
			MonthlyRequired:      450000,
			FinalEstimatedAsset:  3050000,
			ExpectedPeriodMonths: 2,
		},
	}
}

func TestCreateChallenge(t *testing.T) {
	store := &memStore{txs: marchLedger()}
	report := seedReport(t, store)
	pub := &mockPublisher{}
	svc := newChallengeService(store, pub)

	res, err := svc.Create(context.Background(), "user-1", laptopRequest())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	c := res.Challenge
	if !res.IsNew || res.Message != service.MsgChallengeCreated {
		t.Errorf("expected a new challenge, got %+v", res)
	}
	if c.ChallengeName != "350,000원에서 노트북 도전" {
		t.Errorf("unexpected challenge name %q", c.ChallengeName)
	}
	if c.ShortfallAmount != 650000 || c.Status != domain.ChallengeInProgress {
		t.Errorf("unexpected shortfall/status: %d/%s", c.ShortfallAmount, c.Status)
	}
	if c.SpendingAnalysisID != report.ID {
		t.Errorf("expected link to report %s, got %s", report.ID, c.SpendingAnalysisID)
	}
	wantEnd := time.Date(2025, 9, 20, 0, 0, 0, 0, time.UTC)
	if !c.EndDate.Equal(wantEnd) {
		t.Errorf("expected end date %v, got %v", wantEnd, c.EndDate)
	}
	if kinds := pub.kinds(); len(kinds) != 1 || kinds[0] != events.KindChallengeCreated {
		t.Errorf("expected one %s event, got %v", events.KindChallengeCreated, kinds)
	}
}

func TestCreateChallenge_Duplicate(t *testing.T) {
	store := &memStore{}
	svc := newChallengeService(store, &mockPublisher{})

	first, err := svc.Create(context.Background(), "user-1", laptopRequest())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := svc.Create(context.Background(), "user-1", laptopRequest())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if second.IsNew || second.Message != service.MsgChallengeExists {
		t.Errorf("expected the existing challenge, got %+v", second)
	}
	if second.Challenge.ID != first.Challenge.ID {
		t.Errorf("expected id %s, got %s", first.Challenge.ID, second.Challenge.ID)
	}
	if len(store.challenges) != 1 {
		t.Errorf("expected 1 stored challenge, got %d", len(store.challenges))
	}
}

func TestCreateChallenge_CustomNameZeroAmount(t *testing.T) {
	svc := newChallengeService(&memStore{}, &mockPublisher{})

	req := laptopRequest()
	req.CurrentAmount = 0
	res, err := svc.Create(context.Background(), "user-1", req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Challenge.ChallengeName != "0원에서 노트북 도전" {
		t.Errorf("unexpected name %q", res.Challenge.ChallengeName)
	}

	req.EventName = "여행"
	req.ChallengeName = "여름 여행 적금"
	res, err = svc.Create(context.Background(), "user-1", req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.Challenge.ChallengeName != "여름 여행 적금" {
		t.Errorf("expected the given name, got %q", res.Challenge.ChallengeName)
	}
}

func TestCreateChallenge_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.CreateChallengeRequest)
		field  string
	}{
		{"no event", func(r *domain.CreateChallengeRequest) { r.EventName = " " }, "event_name"},
		{"zero target", func(r *domain.CreateChallengeRequest) { r.TargetAmount = 0 }, "target_amount"},
		{"zero period", func(r *domain.CreateChallengeRequest) { r.PeriodMonths = 0 }, "period_months"},
		{"negative current", func(r *domain.CreateChallengeRequest) { r.CurrentAmount = -1 }, "current_amount"},
		{"unknown plan", func(r *domain.CreateChallengeRequest) { r.Plan.PlanType = "LOTTERY" }, "plan.plan_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newChallengeService(&memStore{}, &mockPublisher{})
			req := laptopRequest()
			tt.mutate(&req)

			_, err := svc.Create(context.Background(), "user-1", req)
			var ve *domain.ErrValidation
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Fatalf("expected ErrValidation on %s, got %v", tt.field, err)
			}
		})
	}
}

func TestListChallenges_CompletesExpired(t *testing.T) {
	store := &memStore{}
	svc := newChallengeService(store, &mockPublisher{})
	res, _ := svc.Create(context.Background(), "user-1", laptopRequest())

	list, err := svc.List(context.Background(), "user-1", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(list) != 1 || list[0].Status != domain.ChallengeInProgress {
		t.Fatalf("expected one running challenge, got %+v", list)
	}

	svc.SetClock(func() time.Time { return time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC) })

	got, err := svc.Get(context.Background(), "user-1", res.Challenge.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Status != domain.ChallengeCompleted {
		t.Errorf("expected COMPLETED after end date, got %s", got.Status)
	}

	running, err := svc.List(context.Background(), "user-1", domain.ChallengeInProgress)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(running) != 0 {
		t.Errorf("expected no running challenges, got %d", len(running))
	}
}

func TestListChallenges_InvalidStatus(t *testing.T) {
	svc := newChallengeService(&memStore{}, &mockPublisher{})

	_, err := svc.List(context.Background(), "user-1", "PAUSED")
	var ve *domain.ErrValidation
	if !errors.As(err, &ve) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestUpdateChallengeStatus(t *testing.T) {
	store := &memStore{}
	pub := &mockPublisher{}
	svc := newChallengeService(store, pub)
	res, _ := svc.Create(context.Background(), "user-1", laptopRequest())

	c, err := svc.UpdateStatus(context.Background(), "user-1", res.Challenge.ID, domain.ChallengeFailed)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Status != domain.ChallengeFailed {
		t.Errorf("expected FAILED, got %s", c.Status)
	}
	if kinds := pub.kinds(); len(kinds) != 2 || kinds[1] != events.KindChallengeUpdated {
		t.Errorf("expected created then updated events, got %v", kinds)
	}

	_, err = svc.UpdateStatus(context.Background(), "user-1", res.Challenge.ID, "DONE")
	var ve *domain.ErrValidation
	if !errors.As(err, &ve) {
		t.Errorf("expected ErrValidation, got %v", err)
	}

	_, err = svc.UpdateStatus(context.Background(), "user-1", "missing", domain.ChallengeCompleted)
	var nf *domain.ErrNotFound
	if !errors.As(err, &nf) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestChallengeInit(t *testing.T) {
	store := &memStore{txs: marchLedger()}
	svc := newChallengeService(store, &mockPublisher{})

	got, err := svc.Init(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.HasAnalysis || got.CurrentAsset != 350000 || got.LatestDataDate != "2025-03" {
		t.Errorf("unexpected init without analysis: %+v", got)
	}

	seedReport(t, store)
	got, err = svc.Init(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !got.HasAnalysis || got.MonthlySavePotential != 450000 || got.AnalysisOutdated {
		t.Errorf("unexpected init with fresh analysis: %+v", got)
	}

	store.txs = append(store.txs, domain.Transaction{
		ID: "t6", Date: day(4, 2), Type: domain.TransactionWithdrawal, CategoryRaw: "식비", Amount: 10000,
	})
	got, err = svc.Init(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !got.AnalysisOutdated || got.CurrentAsset != 340000 {
		t.Errorf("expected outdated analysis after April data, got %+v", got)
	}
}

func TestChallengeInit_NegativeAssetClamped(t *testing.T) {
	store := &memStore{txs: []domain.Transaction{
		{ID: "t1", Date: day(3, 1), Type: domain.TransactionWithdrawal, CategoryRaw: "식비", Amount: 5000},
	}}
	svc := newChallengeService(store, &mockPublisher{})

	got, err := svc.Init(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.CurrentAsset != 0 {
		t.Errorf("expected 0, got %d", got.CurrentAsset)
	}
}
