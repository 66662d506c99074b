package goal

import (
	"math"

	"github.com/boddenberg/campus-budget-coach/internal/money"
)

// CompoundInterest projects a balance with monthly deposits and monthly
// compounding: FV = P(1+r)^n + PMT·((1+r)^n − 1)/r with r = annualRate/12.
// A zero rate degenerates to the simple sum. The result is truncated.
func CompoundInterest(principal, monthly int64, annualRate float64, months int) int64 {
	if months <= 0 {
		return principal
	}
	if annualRate == 0 {
		return principal + monthly*int64(months)
	}
	r := annualRate / 12
	growth := math.Pow(1+r, float64(months))
	fv := float64(principal)*growth + float64(monthly)*((growth-1)/r)
	return int64(fv)
}

// SimpleProjection is current plus monthly deposits without interest.
func SimpleProjection(current, monthly int64, months int) int64 {
	return current + monthly*int64(months)
}

// AchievementMonths returns how many months of deposits reach target.
// It is 0 when target is already met and -1 when it cannot be reached
// (no deposits, or not within maxMonths under compounding).
func AchievementMonths(target, current, monthly int64, annualRate float64, maxMonths int) int {
	shortfall := target - current
	if shortfall <= 0 {
		return 0
	}
	if monthly <= 0 {
		return -1
	}
	if annualRate == 0 {
		return int(money.CeilDiv(shortfall, monthly))
	}
	for m := 1; m <= maxMonths; m++ {
		if CompoundInterest(current, monthly, annualRate, m) >= target {
			return m
		}
	}
	return -1
}

// RequiredMonthly solves for the monthly deposit that reaches target in
// months, rounded per policy. Zero when current already suffices.
func RequiredMonthly(target, current int64, months int, annualRate float64, policy RoundingPolicy) int64 {
	if months <= 0 {
		return 0
	}
	if annualRate == 0 {
		return divide(target-current, int64(months), policy)
	}
	r := annualRate / 12
	growth := math.Pow(1+r, float64(months))
	need := float64(target) - float64(current)*growth
	if need <= 0 {
		return 0
	}
	pmt := need * r / (growth - 1)
	if policy == RoundFloor {
		return int64(math.Floor(pmt))
	}
	return int64(math.Ceil(pmt))
}

// divide splits a non-negative amount over n months per policy.
func divide(amount, n int64, policy RoundingPolicy) int64 {
	if amount <= 0 {
		return 0
	}
	if policy == RoundFloor {
		return money.FloorDiv(amount, n)
	}
	return money.CeilDiv(amount, n)
}
