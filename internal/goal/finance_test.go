package goal_test

import (
	"testing"

	"github.com/boddenberg/campus-budget-coach/internal/goal"
)

func TestCompoundInterest_ZeroRateIsSimpleSum(t *testing.T) {
	if got := goal.CompoundInterest(0, 100_000, 0.0, 12); got != 1_200_000 {
		t.Errorf("expected 1200000, got %d", got)
	}
}

func TestCompoundInterest_NoMonthsReturnsPrincipal(t *testing.T) {
	if got := goal.CompoundInterest(500_000, 100_000, 0.07, 0); got != 500_000 {
		t.Errorf("expected principal, got %d", got)
	}
}

func TestCompoundInterest_MonthlyCompounding(t *testing.T) {
	// 1,000,000 at 12% a year for 12 months: 1.01^12 ≈ 1.126825.
	if got := goal.CompoundInterest(1_000_000, 0, 0.12, 12); got != 1_126_825 {
		t.Errorf("expected 1126825, got %d", got)
	}
	if got := goal.CompoundInterest(0, 100_000, 0.12, 12); got <= 1_200_000 {
		t.Errorf("compounding should beat the simple sum, got %d", got)
	}
}

func TestAchievementMonths(t *testing.T) {
	tests := []struct {
		name                     string
		target, current, monthly int64
		rate                     float64
		want                     int
	}{
		{"ceil division", 5_000_000, 0, 300_000, 0, 17},
		{"exact division", 1_200_000, 0, 100_000, 0, 12},
		{"already met", 100, 200, 0, 0, 0},
		{"no deposits", 1_000, 0, 0, 0, -1},
		{"compounding", 1_200_000, 0, 100_000, 0.12, 12},
		{"unreachable within search", 1 << 50, 0, 1, 0.01, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := goal.AchievementMonths(tt.target, tt.current, tt.monthly, tt.rate, 600)
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestAchievementMonths_LastMonthOfSearch(t *testing.T) {
	target := goal.CompoundInterest(0, 100_000, 0.12, 12)

	if got := goal.AchievementMonths(target, 0, 100_000, 0.12, 12); got != 12 {
		t.Errorf("expected the target reached in month 12, got %d", got)
	}
	if got := goal.AchievementMonths(target, 0, 100_000, 0.12, 11); got != -1 {
		t.Errorf("expected -1 when the search stops at month 11, got %d", got)
	}
}

func TestRequiredMonthly_RoundingPolicy(t *testing.T) {
	if got := goal.RequiredMonthly(5_000_000, 0, 12, 0, goal.RoundCeil); got != 416_667 {
		t.Errorf("ceil: expected 416667, got %d", got)
	}
	if got := goal.RequiredMonthly(5_000_000, 0, 12, 0, goal.RoundFloor); got != 416_666 {
		t.Errorf("floor: expected 416666, got %d", got)
	}
	if got := goal.RequiredMonthly(100, 500, 12, 0, goal.RoundCeil); got != 0 {
		t.Errorf("expected 0 when already funded, got %d", got)
	}
}

func TestRequiredMonthly_InverseOfCompound(t *testing.T) {
	pmt := goal.RequiredMonthly(5_000_000, 0, 12, 0.12, goal.RoundCeil)
	if pmt != 394_244 {
		t.Errorf("expected 394244, got %d", pmt)
	}
	if fv := goal.CompoundInterest(0, pmt, 0.12, 12); fv < 5_000_000 {
		t.Errorf("ceil deposit must reach the target, got %d", fv)
	}
	floor := goal.RequiredMonthly(5_000_000, 0, 12, 0.12, goal.RoundFloor)
	if floor != pmt-1 {
		t.Errorf("expected floor one below ceil, got %d and %d", floor, pmt)
	}
}

func TestParseRoundingPolicy(t *testing.T) {
	for in, want := range map[string]goal.RoundingPolicy{"": goal.RoundCeil, "ceil": goal.RoundCeil, "floor": goal.RoundFloor} {
		got, err := goal.ParseRoundingPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseRoundingPolicy(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := goal.ParseRoundingPolicy("half"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
