package service_test

import (
	"context"
	"testing"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/service"
)

func TestEnrich_NoNarrator(t *testing.T) {
	svc := newNarrative(nil)

	n := svc.Enrich(context.Background(), domain.NarrativeSpending, "user-1", nil, []string{"카페 지출이 많습니다."})
	if n.Source != service.SourceFallback || n.Summary != service.FallbackSummary {
		t.Errorf("expected fallback narrative, got %+v", n)
	}
	if len(n.Lines) != 1 || n.Lines[0] != "카페 지출이 많습니다." {
		t.Errorf("expected the core messages as lines, got %v", n.Lines)
	}
}

func TestEnrich_Success(t *testing.T) {
	narrator := &mockNarrator{resp: &domain.NarrativeResponse{
		Summary:    "이번 달은 카페 지출이 두드러져요.",
		Lines:      []string{"주 2회로 줄이면 월 8만원을 아낄 수 있어요."},
		Extra:      "텀블러 할인도 챙겨 보세요.",
		TokensUsed: domain.TokenUsage{PromptTokens: 120, CompletionTokens: 40, TotalTokens: 160},
	}}
	svc := newNarrative(narrator)

	n := svc.Enrich(context.Background(), domain.NarrativeSpending, "user-1", map[string]int{"total": 1}, []string{"m1", "m2"})
	if n.Source != service.SourceNarrator || n.Extra != "텀블러 할인도 챙겨 보세요." {
		t.Errorf("expected narrator narrative, got %+v", n)
	}

	req := narrator.reqs[0]
	if req.UserID != "user-1" || req.Kind != domain.NarrativeSpending || len(req.Messages) != 2 {
		t.Errorf("unexpected narrator request: %+v", req)
	}
}

func TestEnrich_NarratorError(t *testing.T) {
	svc := newNarrative(&mockNarrator{err: errBoom})

	n := svc.Enrich(context.Background(), domain.NarrativeBudget, "user-1", nil, []string{"m1"})
	if n.Source != service.SourceFallback || n.Extra != service.FallbackRecommendation {
		t.Errorf("expected fallback narrative, got %+v", n)
	}
}

func TestBudgetMessages_Overflow(t *testing.T) {
	msgs := service.BudgetMessages(domain.Allocation{
		Rule:               domain.Rule503020,
		StructuralOverflow: domain.StructuralOverflow{IsOver: true, OverAmount: 120000},
		WantsFloorRelaxed:  true,
	})
	if len(msgs) != 3 {
		t.Fatalf("expected summary, overflow and relaxed messages, got %v", msgs)
	}
}

func TestSimulationMessages_OnlyRecommended(t *testing.T) {
	msgs := service.SimulationMessages(&domain.SimulationResult{Plans: []domain.Plan{
		{Title: "현재 상태 유지", Recommendation: "2개월이면 목표 달성 가능", IsRecommended: true},
		{Title: "투자", Recommendation: "x"},
	}})
	if len(msgs) != 1 || msgs[0] != "[현재 상태 유지] 2개월이면 목표 달성 가능" {
		t.Errorf("unexpected messages: %v", msgs)
	}
}

func TestSpendingMessages_IncludeChallengeProgress(t *testing.T) {
	r := &domain.SpendingReport{
		Insights:          []domain.Insight{{Type: "top_category", Message: "top"}},
		ChallengeProgress: []domain.ChallengeProgress{{Message: "progress"}},
	}
	got := service.SpendingMessages(r)
	if len(got) != 2 || got[0] != "top" || got[1] != "progress" {
		t.Errorf("expected insights then progress, got %v", got)
	}
}
