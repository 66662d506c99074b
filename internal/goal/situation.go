package goal

import (
	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/money"
)

// Timeline pressure levels.
const (
	PressureHigh   = "high"
	PressureNormal = "normal"
	PressureLow    = "low"
)

// Planner runs the situation analysis and the plan generators. It is
// stateless apart from its tuning.
type Planner struct {
	tuning Tuning
}

// NewPlanner creates a planner. Products default to the built-in catalog.
func NewPlanner(t Tuning) *Planner {
	if len(t.Products) == 0 {
		t.Products = DefaultProducts()
	}
	if t.MaxSearchMonths <= 0 {
		t.MaxSearchMonths = 600
	}
	return &Planner{tuning: t}
}

// Tuning returns the planner's constants.
func (p *Planner) Tuning() Tuning {
	return p.tuning
}

// Validate rejects inputs the analyzer cannot work with.
func Validate(in domain.GoalInput) error {
	switch {
	case in.Target <= 0:
		return &domain.ErrValidation{Field: "target_amount", Message: "must be greater than 0"}
	case in.PeriodMonths <= 0:
		return &domain.ErrValidation{Field: "period_months", Message: "must be greater than 0"}
	case in.Current < 0:
		return &domain.ErrValidation{Field: "current_amount", Message: "must not be negative"}
	case in.MonthlySavePotential < 0:
		return &domain.ErrValidation{Field: "monthly_save_potential", Message: "must not be negative"}
	}
	return nil
}

// Analyze classifies the goal. Invalid input is rejected before any math.
func (p *Planner) Analyze(in domain.GoalInput) (domain.SituationAnalysis, error) {
	if err := Validate(in); err != nil {
		return domain.SituationAnalysis{}, err
	}
	t := p.tuning

	shortfall := money.AtLeastZero(in.Target - in.Current)
	required := divide(shortfall, int64(in.PeriodMonths), t.Rounding)
	gap := required - in.MonthlySavePotential

	var gapRate float64
	switch {
	case in.MonthlySavePotential > 0:
		gapRate = money.Ratio(gap, in.MonthlySavePotential)
	case gap > 0:
		gapRate = t.GapSentinel
	}

	s := domain.SituationAnalysis{
		ShortfallAmount: shortfall,
		MonthlyRequired: required,
		MonthlyGap:      gap,
		GapRate:         money.Round1(gapRate),
		SupportNeeded:   gapRate > t.SupportNeededGapRate,
		IsAchievableNow: gap <= 0,
	}

	switch {
	case gap <= 0:
		s.Difficulty = domain.DifficultyEasy
	case gapRate <= t.ModerateGapRate:
		s.Difficulty = domain.DifficultyModerate
	case gapRate <= t.HardGapRate:
		s.Difficulty = domain.DifficultyHard
	default:
		s.Difficulty = domain.DifficultyVeryHard
	}

	s.InvestmentSuitable = in.Target >= t.InvestmentMinTarget &&
		in.PeriodMonths >= t.InvestmentMinPeriod &&
		in.Current >= t.InvestmentMinCurrent

	s.PlanSuitability = map[domain.PlanType]bool{
		domain.PlanMaintain:   gap <= 0,
		domain.PlanFrugal:     gapRate <= t.FrugalMaxGapRate,
		domain.PlanSupport:    gapRate > t.SupportMinGapRate,
		domain.PlanInvestment: s.InvestmentSuitable && gapRate > t.InvestmentMinGapRate,
	}

	switch {
	case in.PeriodMonths <= t.HighPressureMonths:
		s.TimelinePressure = PressureHigh
	case in.PeriodMonths <= t.NormalPressureMonths:
		s.TimelinePressure = PressureNormal
	default:
		s.TimelinePressure = PressureLow
	}
	return s, nil
}
