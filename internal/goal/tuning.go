// Package goal analyzes a savings goal and generates the strategies that
// could reach it: keep the current pace, cut spending, add outside income,
// or invest.
package goal

import (
	"fmt"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/spending"
)

// RoundingPolicy decides how monthly_required is rounded.
type RoundingPolicy string

const (
	RoundCeil  RoundingPolicy = "ceil"
	RoundFloor RoundingPolicy = "floor"
)

// ParseRoundingPolicy accepts "ceil" or "floor"; empty means ceil.
func ParseRoundingPolicy(s string) (RoundingPolicy, error) {
	switch RoundingPolicy(s) {
	case "", RoundCeil:
		return RoundCeil, nil
	case RoundFloor:
		return RoundFloor, nil
	}
	return "", fmt.Errorf("unknown rounding policy %q", s)
}

// Tuning holds the thresholds and rates of the analyzer and the generators.
type Tuning struct {
	Rounding RoundingPolicy `toml:"rounding"`

	// Situation thresholds, in gap_rate percent.
	GapSentinel          float64 `toml:"gap_sentinel"`
	ModerateGapRate      float64 `toml:"moderate_gap_rate"`
	HardGapRate          float64 `toml:"hard_gap_rate"`
	FrugalMaxGapRate     float64 `toml:"frugal_max_gap_rate"`
	SupportMinGapRate    float64 `toml:"support_min_gap_rate"`
	InvestmentMinGapRate float64 `toml:"investment_min_gap_rate"`
	SupportNeededGapRate float64 `toml:"support_needed_gap_rate"`

	InvestmentMinTarget  int64 `toml:"investment_min_target"`
	InvestmentMinPeriod  int   `toml:"investment_min_period"`
	InvestmentMinCurrent int64 `toml:"investment_min_current"`

	HighPressureMonths   int `toml:"high_pressure_months"`
	NormalPressureMonths int `toml:"normal_pressure_months"`

	// Maintain.
	MaintainRecommendRate float64 `toml:"maintain_recommend_rate"`

	// Frugal.
	FrugalRates           map[string]float64 `toml:"frugal_rates"`
	FrugalDefaultRate     float64            `toml:"frugal_default_rate"`
	FrugalFallbackSavings int64              `toml:"frugal_fallback_savings"`
	AggressiveRate        float64            `toml:"aggressive_rate"`
	FrugalRecommendRate   float64            `toml:"frugal_recommend_rate"`
	FrugalVariants        int                `toml:"frugal_variants"`

	// Support.
	SupportFallbackMonthly int64    `toml:"support_fallback_monthly"`
	SupportMinCoverage     float64  `toml:"support_min_coverage"`
	SupportRecommendRate   float64  `toml:"support_recommend_rate"`
	StudentKeywords        []string `toml:"student_keywords"`

	// Investment.
	InvestmentRecommendRate float64                    `toml:"investment_recommend_rate"`
	Products                []domain.InvestmentProduct `toml:"products"`

	MaxSearchMonths int `toml:"max_search_months"`
}

// DefaultProducts is the built-in STO catalog.
func DefaultProducts() []domain.InvestmentProduct {
	return []domain.InvestmentProduct{
		{
			ID:                "STO_001",
			Name:              "A음악저작권 STO",
			AnnualReturn:      0.07,
			MinInvestment:     100_000,
			RecommendedPeriod: 12,
			RiskLevel:         "중위험",
			Description:       "인기 K-POP 저작권 수익 배당",
		},
		{
			ID:                "STO_002",
			Name:              "B부동산 STO",
			AnnualReturn:      0.05,
			MinInvestment:     500_000,
			RecommendedPeriod: 24,
			RiskLevel:         "저위험",
			Description:       "안정적인 오피스텔 임대 수익",
		},
	}
}

// DefaultTuning returns the coach's simulation constants.
func DefaultTuning() Tuning {
	return Tuning{
		Rounding: RoundCeil,

		GapSentinel:          999,
		ModerateGapRate:      30,
		HardGapRate:          70,
		FrugalMaxGapRate:     100,
		SupportMinGapRate:    30,
		InvestmentMinGapRate: 20,
		SupportNeededGapRate: 50,

		InvestmentMinTarget:  2_000_000,
		InvestmentMinPeriod:  6,
		InvestmentMinCurrent: 100_000,

		HighPressureMonths:   6,
		NormalPressureMonths: 12,

		MaintainRecommendRate: 100,

		FrugalRates: map[string]float64{
			spending.CategoryHousing:      0.05,
			spending.CategorySubscription: 0.10,
			spending.CategoryTransport:    0.15,
			spending.CategoryEducation:    0.15,
			spending.CategoryMeals:        0.20,
			spending.CategorySpecial:      0.10,
			spending.CategoryCafe:         0.30,
			spending.CategorySocial:       0.35,
			spending.CategoryDate:         0.30,
			spending.CategoryShopping:     0.40,
			spending.CategoryHobby:        0.40,
		},
		FrugalDefaultRate:     0.20,
		FrugalFallbackSavings: 50_000,
		AggressiveRate:        0.35,
		FrugalRecommendRate:   50,
		FrugalVariants:        3,

		SupportFallbackMonthly: 200_000,
		SupportMinCoverage:     0.5,
		SupportRecommendRate:   80,
		StudentKeywords:        []string{"대학생", "청년"},

		InvestmentRecommendRate: 80,
		Products:                DefaultProducts(),

		MaxSearchMonths: 600,
	}
}

func (t Tuning) frugalRate(category string) float64 {
	if r, ok := t.FrugalRates[category]; ok {
		return r
	}
	return t.FrugalDefaultRate
}
