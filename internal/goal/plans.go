package goal

import (
	"fmt"
	"strings"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/money"
)

// Plan titles.
const (
	TitleMaintain   = "현상 유지"
	TitleFrugal     = "초절약 플랜"
	TitleSupport    = "수입 증대 플랜"
	TitleInvestment = "투자 플랜"
)

// DefaultFrugalLabel names the catch-all frugal variant.
const DefaultFrugalLabel = "불필요한 소비"

// TagAggressive marks a frugal plan that needed the escalated rate.
const TagAggressive = "공격적 절약"

// outcome is the shared projection of a plan.
type outcome struct {
	final     int64
	rate      float64
	shortfall int64
}

func project(final, target int64) outcome {
	return outcome{
		final:     final,
		rate:      money.Ratio(final, target),
		shortfall: money.AtLeastZero(target - final),
	}
}

// pct renders an achievement rate the way tags show it.
func pct(rate float64) int {
	return int(rate)
}

func (o outcome) apply(plan *domain.Plan, period int) {
	plan.FinalEstimatedAsset = o.final
	plan.AchievementRate = money.Round1(o.rate)
	plan.MonthlyShortfall = money.FloorDiv(o.shortfall, int64(period))
	plan.Detail.AchievementRate = pct(o.rate)
	plan.Detail.Shortfall = o.shortfall
}

// ============================================================
// Maintain
// ============================================================

// Maintain keeps the current savings pace.
func (p *Planner) Maintain(in domain.GoalInput) domain.Plan {
	monthly := in.MonthlySavePotential
	o := project(SimpleProjection(in.Current, monthly, in.PeriodMonths), in.Target)

	expected := in.PeriodMonths
	if monthly > 0 && o.shortfall > 0 {
		expected = AchievementMonths(in.Target, in.Current, monthly, 0, p.tuning.MaxSearchMonths)
	}

	plan := domain.Plan{
		PlanType:             domain.PlanMaintain,
		VariantID:            "maintain_baseline",
		Title:                TitleMaintain,
		Description:          fmt.Sprintf("현재 저축 속도 유지 시 %d개월 후 %s원 예상 (목표의 %d%%)", in.PeriodMonths, money.Format(o.final), pct(o.rate)),
		MonthlyRequired:      monthly,
		ExpectedPeriodMonths: expected,
		IsRecommended:        o.rate >= p.tuning.MaintainRecommendRate,
	}
	o.apply(&plan, in.PeriodMonths)
	plan.MonthlyShortfall = 0

	switch {
	case o.rate >= 100:
		plan.Tags = []string{"목표 달성", "추천"}
		plan.Recommendation = fmt.Sprintf("%d개월 후 목표 달성 예상", in.PeriodMonths)
	case o.rate >= 80:
		plan.Tags = []string{fmt.Sprintf("%d%% 달성", pct(o.rate)), "거의 달성"}
	default:
		plan.Tags = []string{fmt.Sprintf("%d%% 달성", pct(o.rate))}
		if o.shortfall > 0 {
			plan.Tags = append(plan.Tags, money.Format(o.shortfall)+"원 부족")
		}
	}
	if plan.Recommendation == "" {
		if expected > 0 {
			plan.Recommendation = fmt.Sprintf("%d개월이면 목표 달성 가능", expected)
		} else {
			plan.Recommendation = "추가 저축 전략이 필요합니다"
		}
	}
	return plan
}

// ============================================================
// Frugal
// ============================================================

// Frugal cuts one category by its savings rate. With categoryAmount 0 it
// trims the overall savings potential instead. When the base rate reaches
// less than half of the goal it is escalated once to the aggressive rate.
func (p *Planner) Frugal(in domain.GoalInput, category string, categoryAmount int64) domain.Plan {
	t := p.tuning

	savingsAt := func(rate float64) int64 {
		switch {
		case categoryAmount > 0:
			return money.Portion(categoryAmount, rate)
		case in.MonthlySavePotential > 0:
			return money.Portion(in.MonthlySavePotential, rate)
		}
		return t.FrugalFallbackSavings
	}

	rate := t.FrugalDefaultRate
	if categoryAmount > 0 {
		rate = t.frugalRate(category)
	}
	savings := savingsAt(rate)
	o := project(SimpleProjection(in.Current, in.MonthlySavePotential+savings, in.PeriodMonths), in.Target)

	aggressive := false
	canEscalate := categoryAmount > 0 || in.MonthlySavePotential > 0
	if o.rate < t.FrugalRecommendRate && t.AggressiveRate > rate && canEscalate {
		rate = t.AggressiveRate
		savings = savingsAt(rate)
		o = project(SimpleProjection(in.Current, in.MonthlySavePotential+savings, in.PeriodMonths), in.Target)
		aggressive = true
	}

	monthly := in.MonthlySavePotential + savings
	expected := AchievementMonths(in.Target, in.Current, monthly, 0, t.MaxSearchMonths)

	ratePct := int(money.Round1(rate * 100))
	plan := domain.Plan{
		PlanType:             domain.PlanFrugal,
		VariantID:            "frugal_" + category,
		Title:                TitleFrugal,
		Description:          fmt.Sprintf("%s 지출 %d%% 줄이면 월 %s원 절약", category, ratePct, money.Format(savings)),
		MonthlyRequired:      monthly,
		ExpectedPeriodMonths: expected,
		IsRecommended:        o.rate >= t.FrugalRecommendRate,
		Recommendation:       fmt.Sprintf("%d개월 후 %s원 예상 (목표의 %d%%)", in.PeriodMonths, money.Format(o.final), pct(o.rate)),
		Detail: domain.PlanDetail{
			MonthlySavings:   savings,
			SavingRate:       rate,
			Aggressive:       aggressive,
			TargetCategories: []string{category},
			BaselineAmount:   categoryAmount,
		},
	}
	o.apply(&plan, in.PeriodMonths)

	plan.Tags = []string{fmt.Sprintf("월 %s원 절약", money.Format(savings))}
	switch {
	case o.rate >= 100:
		plan.Tags = append(plan.Tags, "목표 달성", "강력 추천")
	case o.rate >= 80:
		plan.Tags = append(plan.Tags, "거의 달성", "추천")
	case o.rate >= t.FrugalRecommendRate:
		plan.Tags = append(plan.Tags, "절반 달성", "추천")
	default:
		plan.Tags = append(plan.Tags, fmt.Sprintf("%d%% 달성", pct(o.rate)))
	}
	if aggressive {
		plan.Tags = append(plan.Tags, TagAggressive)
	}
	return plan
}

// FrugalVariants returns one frugal plan per top category plus the
// catch-all variant.
func (p *Planner) FrugalVariants(in domain.GoalInput, top []domain.CategoryStat) []domain.Plan {
	plans := make([]domain.Plan, 0, len(top)+1)
	for _, stat := range top {
		plans = append(plans, p.Frugal(in, stat.Category, stat.Amount))
	}
	def := p.Frugal(in, DefaultFrugalLabel, 0)
	def.VariantID = "frugal_default"
	return append(plans, def)
}

// ============================================================
// Support
// ============================================================

// Support adds outside income from the best matching program, or a flat
// conservative assumption when nothing in the catalog qualifies.
func (p *Planner) Support(in domain.GoalInput, s domain.SituationAnalysis, programs []domain.SupportProgram, eventLabel string) domain.Plan {
	t := p.tuning
	program, found := p.BestSupport(programs, eventLabel, s.MonthlyGap)

	extra := t.SupportFallbackMonthly
	if found {
		extra = program.MonthlyValue
	}
	monthly := in.MonthlySavePotential + extra
	o := project(SimpleProjection(in.Current, monthly, in.PeriodMonths), in.Target)

	plan := domain.Plan{
		PlanType:             domain.PlanSupport,
		VariantID:            "support_scholarship",
		Title:                TitleSupport,
		Description:          "장학금이나 알바로 월 수입 증대 필요",
		MonthlyRequired:      monthly,
		ExpectedPeriodMonths: AchievementMonths(in.Target, in.Current, monthly, 0, t.MaxSearchMonths),
		IsRecommended:        found && o.rate >= t.SupportRecommendRate,
		Recommendation:       fmt.Sprintf("%d개월 후 %s원 예상 (목표의 %d%%)", in.PeriodMonths, money.Format(o.final), pct(o.rate)),
		Detail: domain.PlanDetail{
			SupportFound:   found,
			SearchKeywords: p.SearchKeywords(eventLabel),
		},
	}
	o.apply(&plan, in.PeriodMonths)

	plan.Tags = []string{"소비 유지"}
	if found {
		prog := program
		plan.Detail.Support = &prog
		plan.Description = fmt.Sprintf("%s 활용 시 월 %s원 추가 수입", program.Title, money.Format(program.MonthlyValue))
		plan.Tags = append(plan.Tags, fmt.Sprintf("월 %s원 추가", money.Format(program.MonthlyValue)))
		switch {
		case o.rate >= 100:
			plan.Tags = append(plan.Tags, "목표 달성", "추천")
		case o.rate >= 80:
			plan.Tags = append(plan.Tags, "거의 달성", "추천")
		}
	} else {
		plan.Tags = append(plan.Tags, "지원금 탐색 필요")
	}
	return plan
}

// ============================================================
// Investment
// ============================================================

// SelectProduct scores every product the current balance can buy into by
// period fit and return. Without an affordable product the first one is used.
func (p *Planner) SelectProduct(period int, current int64) domain.InvestmentProduct {
	products := p.tuning.Products
	best, bestScore := -1, -1.0
	for i, prod := range products {
		if current < prod.MinInvestment {
			continue
		}
		diff := prod.RecommendedPeriod - period
		if diff < 0 {
			diff = -diff
		}
		score := float64(max(0, 100-2*diff)) + prod.AnnualReturn*1000
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return products[0]
	}
	return products[best]
}

// Investment projects the current pace invested in the best-fit product
// with monthly compounding.
func (p *Planner) Investment(in domain.GoalInput, s domain.SituationAnalysis) domain.Plan {
	t := p.tuning
	prod := p.SelectProduct(in.PeriodMonths, in.Current)

	monthly := in.MonthlySavePotential
	o := project(CompoundInterest(in.Current, monthly, prod.AnnualReturn, in.PeriodMonths), in.Target)
	profit := o.final - SimpleProjection(in.Current, monthly, in.PeriodMonths)

	simpleMonthly := s.MonthlyRequired
	investMonthly := RequiredMonthly(in.Target, in.Current, in.PeriodMonths, prod.AnnualReturn, t.Rounding)
	var efficiency float64
	if simpleMonthly > 0 {
		efficiency = money.Round1(money.Ratio(money.AtLeastZero(simpleMonthly-investMonthly), simpleMonthly))
	}

	expected := AchievementMonths(in.Target, in.Current, monthly, prod.AnnualReturn, t.MaxSearchMonths)
	if expected <= 0 {
		expected = in.PeriodMonths
	}

	recommended := in.Target >= t.InvestmentMinTarget &&
		in.PeriodMonths >= t.InvestmentMinPeriod &&
		o.rate >= t.InvestmentRecommendRate

	var warnings []string
	if in.PeriodMonths < prod.RecommendedPeriod {
		warnings = append(warnings, fmt.Sprintf("권장 기간(%d개월)보다 짧아 변동성 위험", prod.RecommendedPeriod))
	}
	if prod.RiskLevel == "중위험" {
		warnings = append(warnings, "원금 손실 가능성 존재")
	}

	product := prod
	plan := domain.Plan{
		PlanType:             domain.PlanInvestment,
		VariantID:            "investment_" + strings.ToLower(prod.ID),
		Title:                TitleInvestment,
		Description:          fmt.Sprintf("%s 투자 시 %d개월 후 %s원 예상", prod.Name, in.PeriodMonths, money.Format(o.final)),
		MonthlyRequired:      monthly,
		ExpectedPeriodMonths: expected,
		IsRecommended:        recommended,
		Recommendation:       fmt.Sprintf("예상 투자 수익 %s원 (목표의 %d%%)", money.Format(profit), pct(o.rate)),
		Detail: domain.PlanDetail{
			Product:           &product,
			InvestmentProfit:  profit,
			SimpleMonthly:     simpleMonthly,
			InvestmentMonthly: investMonthly,
			Efficiency:        efficiency,
			RiskWarnings:      warnings,
		},
	}
	o.apply(&plan, in.PeriodMonths)

	plan.Tags = []string{fmt.Sprintf("연 %d%%", int(money.Round1(prod.AnnualReturn*100))), prod.RiskLevel}
	switch {
	case o.rate >= 100:
		plan.Tags = append(plan.Tags, "목표 달성")
	case o.rate >= 80:
		plan.Tags = append(plan.Tags, "거의 달성")
	default:
		plan.Tags = append(plan.Tags, fmt.Sprintf("%d%% 달성", pct(o.rate)))
	}
	if recommended {
		plan.Tags = append(plan.Tags, "추천")
	}
	return plan
}
