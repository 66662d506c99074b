// Package money holds the integer currency arithmetic shared by the
// aggregator, allocator and planner. Amounts are whole won (int64); ratios
// and percentages go through shopspring/decimal so results do not depend on
// binary float rounding.
package money

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Portion returns amount × ratio truncated toward zero.
func Portion(amount int64, ratio float64) int64 {
	return decimal.NewFromInt(amount).Mul(decimal.NewFromFloat(ratio)).IntPart()
}

// PortionCeil returns amount × ratio rounded up.
func PortionCeil(amount int64, ratio float64) int64 {
	return decimal.NewFromInt(amount).Mul(decimal.NewFromFloat(ratio)).Ceil().IntPart()
}

// Share returns ⌊total × num / den⌋. den must be positive.
func Share(total, num, den int64) int64 {
	if den <= 0 {
		return 0
	}
	return decimal.NewFromInt(total).Mul(decimal.NewFromInt(num)).
		Div(decimal.NewFromInt(den)).Floor().IntPart()
}

// Percent returns part / whole × 100 rounded to one decimal place.
// A zero whole yields 0.
func Percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromInt(part).Mul(hundred).
		Div(decimal.NewFromInt(whole)).Round(1).InexactFloat64()
}

// Ratio returns part / whole × 100 without rounding. A zero whole yields 0.
func Ratio(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return decimal.NewFromInt(part).Mul(hundred).
		Div(decimal.NewFromInt(whole)).InexactFloat64()
}

// Round1 rounds f to one decimal place, half away from zero.
func Round1(f float64) float64 {
	return decimal.NewFromFloat(f).Round(1).InexactFloat64()
}

// CeilDiv divides rounding up for positive operands.
func CeilDiv(a, b int64) int64 {
	if b == 0 {
		return 0
	}
	q := a / b
	if a%b != 0 && (a > 0) == (b > 0) {
		q++
	}
	return q
}

// FloorDiv divides rounding down.
func FloorDiv(a, b int64) int64 {
	if b == 0 {
		return 0
	}
	q := a / b
	if a%b != 0 && (a > 0) != (b > 0) {
		q--
	}
	return q
}

// AtLeastZero clamps negative amounts to zero.
func AtLeastZero(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

// Format renders an amount with thousands separators, e.g. 1,200,000.
func Format(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	digits := decimal.NewFromInt(v).String()
	var out []byte
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
