package goal_test

import (
	"reflect"
	"testing"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/goal"
	"github.com/boddenberg/campus-budget-coach/internal/spending"
)

func situation(t *testing.T, p *goal.Planner, in domain.GoalInput) domain.SituationAnalysis {
	t.Helper()
	s, err := p.Analyze(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return s
}

func hasTag(plan domain.Plan, tag string) bool {
	for _, t := range plan.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ============================================================
// Maintain
// ============================================================

func TestMaintain_Scenario(t *testing.T) {
	plan := newPlanner().Maintain(laptop())

	if plan.FinalEstimatedAsset != 3_600_000 {
		t.Errorf("expected final asset 3600000, got %d", plan.FinalEstimatedAsset)
	}
	if plan.AchievementRate != 72 || plan.Detail.AchievementRate != 72 {
		t.Errorf("expected achievement 72%%, got %v / %d", plan.AchievementRate, plan.Detail.AchievementRate)
	}
	if plan.IsRecommended {
		t.Error("expected maintain not to be recommended")
	}
	if plan.ExpectedPeriodMonths != 17 {
		t.Errorf("expected 17 months, got %d", plan.ExpectedPeriodMonths)
	}
	wantTags := []string{"72% 달성", "1,400,000원 부족"}
	if !reflect.DeepEqual(plan.Tags, wantTags) {
		t.Errorf("expected tags %v, got %v", wantTags, plan.Tags)
	}
}

func TestMaintain_RecommendedWhenReachable(t *testing.T) {
	inputs := []domain.GoalInput{
		{Current: 1_000_000, Target: 4_000_000, PeriodMonths: 10, MonthlySavePotential: 300_000},
		{Current: 0, Target: 1, PeriodMonths: 1, MonthlySavePotential: 1},
		{Current: 9_000_000, Target: 5_000_000, PeriodMonths: 3, MonthlySavePotential: 0},
	}
	for _, in := range inputs {
		plan := newPlanner().Maintain(in)
		if !plan.IsRecommended {
			t.Errorf("%+v: expected maintain to be recommended, got rate %v", in, plan.AchievementRate)
		}
	}
}

// ============================================================
// Frugal
// ============================================================

func TestFrugal_CategoryRate(t *testing.T) {
	plan := newPlanner().Frugal(laptop(), spending.CategoryCafe, 200_000)

	if plan.Detail.MonthlySavings != 60_000 {
		t.Errorf("expected savings 60000, got %d", plan.Detail.MonthlySavings)
	}
	if plan.MonthlyRequired != 360_000 {
		t.Errorf("expected monthly 360000, got %d", plan.MonthlyRequired)
	}
	if plan.FinalEstimatedAsset != 4_320_000 {
		t.Errorf("expected final 4320000, got %d", plan.FinalEstimatedAsset)
	}
	if !plan.IsRecommended || plan.Detail.Aggressive {
		t.Errorf("expected a recommended, non-aggressive plan: %+v", plan)
	}
	if plan.MonthlyShortfall != 56_666 {
		t.Errorf("expected monthly shortfall 56666, got %d", plan.MonthlyShortfall)
	}
	if plan.ExpectedPeriodMonths != 14 {
		t.Errorf("expected 14 months, got %d", plan.ExpectedPeriodMonths)
	}
	wantTags := []string{"월 60,000원 절약", "거의 달성", "추천"}
	if !reflect.DeepEqual(plan.Tags, wantTags) {
		t.Errorf("expected tags %v, got %v", wantTags, plan.Tags)
	}
	if plan.VariantID != "frugal_카페/디저트" {
		t.Errorf("unexpected variant id %s", plan.VariantID)
	}
	if plan.Detail.BaselineAmount != 200_000 {
		t.Errorf("expected baseline 200000, got %d", plan.Detail.BaselineAmount)
	}
}

func TestFrugal_EscalatesToAggressive(t *testing.T) {
	in := domain.GoalInput{Current: 0, Target: 10_000_000, PeriodMonths: 12, MonthlySavePotential: 300_000}
	plan := newPlanner().Frugal(in, spending.CategoryMeals, 100_000)

	if !plan.Detail.Aggressive || !hasTag(plan, goal.TagAggressive) {
		t.Fatalf("expected aggressive plan, got %+v", plan)
	}
	if plan.Detail.SavingRate != 0.35 {
		t.Errorf("expected aggressive rate 0.35, got %v", plan.Detail.SavingRate)
	}
	if plan.Detail.MonthlySavings != 35_000 {
		t.Errorf("expected savings 35000, got %d", plan.Detail.MonthlySavings)
	}
	if plan.FinalEstimatedAsset != 4_020_000 {
		t.Errorf("expected final 4020000, got %d", plan.FinalEstimatedAsset)
	}
	if plan.IsRecommended {
		t.Error("40% achievement must not be recommended")
	}
}

func TestFrugal_NoEscalationAboveAggressiveRate(t *testing.T) {
	in := domain.GoalInput{Current: 0, Target: 10_000_000, PeriodMonths: 12, MonthlySavePotential: 300_000}
	plan := newPlanner().Frugal(in, spending.CategoryShopping, 100_000)

	if plan.Detail.Aggressive {
		t.Error("shopping already saves 40%; aggressive rate is lower")
	}
	if plan.Detail.MonthlySavings != 40_000 {
		t.Errorf("expected savings 40000, got %d", plan.Detail.MonthlySavings)
	}
}

func TestFrugal_DefaultWithoutPotential(t *testing.T) {
	in := domain.GoalInput{Current: 100_000, Target: 5_000_000, PeriodMonths: 10, MonthlySavePotential: 0}
	plan := newPlanner().Frugal(in, goal.DefaultFrugalLabel, 0)

	if plan.Detail.MonthlySavings != 50_000 {
		t.Errorf("expected fallback savings 50000, got %d", plan.Detail.MonthlySavings)
	}
	if plan.FinalEstimatedAsset != 600_000 {
		t.Errorf("expected final 600000, got %d", plan.FinalEstimatedAsset)
	}
}

func TestFrugalVariants(t *testing.T) {
	top := []domain.CategoryStat{
		{Category: spending.CategoryMeals, Amount: 300_000},
		{Category: spending.CategoryCafe, Amount: 120_000},
	}
	plans := newPlanner().FrugalVariants(laptop(), top)

	ids := make([]string, 0, len(plans))
	for _, p := range plans {
		ids = append(ids, p.VariantID)
	}
	want := []string{"frugal_식사", "frugal_카페/디저트", "frugal_default"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("expected variants %v, got %v", want, ids)
	}
}

// ============================================================
// Support
// ============================================================

func TestSupport_PicksSmallestSufficientMatch(t *testing.T) {
	p := newPlanner()
	in := laptop()
	plan := p.Support(in, situation(t, p, in), goal.DefaultSupportPrograms(), "노트북 구매")

	if !plan.Detail.SupportFound || plan.Detail.Support == nil {
		t.Fatalf("expected a support match, got %+v", plan.Detail)
	}
	if plan.Detail.Support.Title != "청년내일채움공제" {
		t.Errorf("expected 청년내일채움공제, got %s", plan.Detail.Support.Title)
	}
	if plan.MonthlyRequired != 600_000 {
		t.Errorf("expected monthly 600000, got %d", plan.MonthlyRequired)
	}
	if !plan.IsRecommended {
		t.Error("expected recommended support plan")
	}
	wantKeywords := []string{"노트북 구매", "대학생", "청년", "장학금"}
	if !reflect.DeepEqual(plan.Detail.SearchKeywords, wantKeywords) {
		t.Errorf("expected keywords %v, got %v", wantKeywords, plan.Detail.SearchKeywords)
	}
}

func TestSupport_RelevanceWins(t *testing.T) {
	p := newPlanner()
	in := laptop()
	plan := p.Support(in, situation(t, p, in), goal.DefaultSupportPrograms(), "등록금 마련")

	if plan.Detail.Support == nil || plan.Detail.Support.Title != "국가장학금 I유형" {
		t.Fatalf("expected 국가장학금 I유형, got %+v", plan.Detail.Support)
	}
	if plan.MonthlyRequired != 300_000+875_000 {
		t.Errorf("expected monthly 1175000, got %d", plan.MonthlyRequired)
	}
}

func TestSupport_FallbackWhenNoCatalog(t *testing.T) {
	p := newPlanner()
	in := laptop()
	plan := p.Support(in, situation(t, p, in), nil, "여행")

	if plan.Detail.SupportFound {
		t.Fatal("expected no support match")
	}
	if plan.MonthlyRequired != 500_000 {
		t.Errorf("expected fallback monthly 500000, got %d", plan.MonthlyRequired)
	}
	if plan.IsRecommended {
		t.Error("fallback support must never be recommended")
	}
	if !hasTag(plan, "지원금 탐색 필요") {
		t.Errorf("expected search tag, got %v", plan.Tags)
	}
}

func TestSupport_ValueBelowCoverageIgnored(t *testing.T) {
	p := newPlanner()
	in := domain.GoalInput{Current: 0, Target: 20_000_000, PeriodMonths: 10, MonthlySavePotential: 100_000}
	programs := []domain.SupportProgram{
		{ID: "small", Title: "청년 교통비", Keywords: []string{"청년"}, MonthlyValue: 50_000},
	}
	plan := p.Support(in, situation(t, p, in), programs, "")
	if plan.Detail.SupportFound {
		t.Errorf("a 50,000 program cannot cover half of a 1,900,000 gap")
	}
}

// ============================================================
// Investment
// ============================================================

func TestSelectProduct(t *testing.T) {
	p := newPlanner()
	tests := []struct {
		name    string
		period  int
		current int64
		want    string
	}{
		{"short horizon", 12, 1_000_000, "STO_001"},
		{"long horizon", 24, 1_000_000, "STO_002"},
		{"only small stake affordable", 24, 200_000, "STO_001"},
		{"nothing affordable", 12, 50_000, "STO_001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.SelectProduct(tt.period, tt.current); got.ID != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got.ID)
			}
		})
	}
}

func TestInvestment_Projection(t *testing.T) {
	p := newPlanner()
	in := domain.GoalInput{Current: 1_000_000, Target: 5_000_000, PeriodMonths: 12, MonthlySavePotential: 300_000}
	plan := p.Investment(in, situation(t, p, in))

	if plan.Detail.Product == nil || plan.Detail.Product.ID != "STO_001" {
		t.Fatalf("expected STO_001, got %+v", plan.Detail.Product)
	}
	if plan.FinalEstimatedAsset < 4_790_000 || plan.FinalEstimatedAsset > 4_790_100 {
		t.Errorf("expected final near 4790065, got %d", plan.FinalEstimatedAsset)
	}
	if plan.Detail.InvestmentProfit != plan.FinalEstimatedAsset-4_600_000 {
		t.Errorf("profit must be compound minus simple, got %d", plan.Detail.InvestmentProfit)
	}
	if plan.Detail.SimpleMonthly != 333_334 {
		t.Errorf("expected simple monthly 333334, got %d", plan.Detail.SimpleMonthly)
	}
	if plan.Detail.InvestmentMonthly >= plan.Detail.SimpleMonthly {
		t.Errorf("investing should need less per month: %d vs %d", plan.Detail.InvestmentMonthly, plan.Detail.SimpleMonthly)
	}
	if plan.Detail.Efficiency != 4.9 {
		t.Errorf("expected efficiency 4.9, got %v", plan.Detail.Efficiency)
	}
	if plan.MonthlyRequired != 300_000 {
		t.Errorf("expected the current pace as contribution, got %d", plan.MonthlyRequired)
	}
	if !plan.IsRecommended {
		t.Error("expected recommended investment plan")
	}
	if !reflect.DeepEqual(plan.Detail.RiskWarnings, []string{"원금 손실 가능성 존재"}) {
		t.Errorf("unexpected warnings %v", plan.Detail.RiskWarnings)
	}
	wantTags := []string{"연 7%", "중위험", "거의 달성", "추천"}
	if !reflect.DeepEqual(plan.Tags, wantTags) {
		t.Errorf("expected tags %v, got %v", wantTags, plan.Tags)
	}
}

func TestInvestment_ShortPeriodWarning(t *testing.T) {
	p := newPlanner()
	in := domain.GoalInput{Current: 1_000_000, Target: 3_000_000, PeriodMonths: 6, MonthlySavePotential: 200_000}
	plan := p.Investment(in, situation(t, p, in))

	if len(plan.Detail.RiskWarnings) != 2 {
		t.Fatalf("expected two warnings, got %v", plan.Detail.RiskWarnings)
	}
	if plan.Detail.RiskWarnings[0] != "권장 기간(12개월)보다 짧아 변동성 위험" {
		t.Errorf("unexpected warning %q", plan.Detail.RiskWarnings[0])
	}
}
