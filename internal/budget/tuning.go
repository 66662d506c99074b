// Package budget computes category-level budget recommendations under a
// needs/wants/savings allocation rule.
package budget

import (
	"github.com/boddenberg/campus-budget-coach/internal/spending"
)

// Reserve line names.
const (
	NeedsReserveName = "예비비(필수 지출)"
	WantsReserveName = "예비비(선택 지출)"
)

// Tuning holds every ratio and weight the allocator uses.
type Tuning struct {
	// NeedsFixed are never reduced nor topped up.
	NeedsFixed []string `toml:"needs_fixed"`
	// NeedsReductionOrder lists adjustable NEEDS categories, first reduced first.
	NeedsReductionOrder []string `toml:"needs_reduction_order"`
	// NeedsWeights bias the leftover redistribution in NEEDS.
	NeedsWeights map[string]int64 `toml:"needs_weights"`
	// NeedsFloorRatio is the share of prior spending an adjustable NEEDS
	// category keeps when reduced.
	NeedsFloorRatio float64 `toml:"needs_floor_ratio"`

	// WantsFloors is the per-category floor ratio in WANTS.
	WantsFloors map[string]float64 `toml:"wants_floors"`
	// WantsDefaultFloor applies to WANTS categories absent from WantsFloors.
	WantsDefaultFloor float64 `toml:"wants_default_floor"`
	// WantsReductionOrder runs from most to least discretionary. Categories
	// not listed are reduced right after the entry named by UnlistedAfter.
	WantsReductionOrder []string `toml:"wants_reduction_order"`
	UnlistedAfter       string   `toml:"unlisted_after"`

	// CeilingRatio caps a topped-up category at this share of prior spending.
	CeilingRatio float64 `toml:"ceiling_ratio"`
	// ReserveCeiling bounds how much leftover is redistributed per group.
	ReserveCeiling int64 `toml:"reserve_ceiling"`
	// StatusBand is the ±tolerance used for OVERSPENT/SURPLUS.
	StatusBand float64 `toml:"status_band"`
}

// DefaultTuning returns the coach's allocation constants.
func DefaultTuning() Tuning {
	return Tuning{
		NeedsFixed: []string{spending.CategoryHousing, spending.CategorySubscription},
		NeedsReductionOrder: []string{
			spending.CategorySpecial,
			spending.CategoryTransport,
			spending.CategoryMeals,
		},
		NeedsWeights: map[string]int64{
			spending.CategoryMeals:     3,
			spending.CategoryTransport: 2,
			spending.CategorySpecial:   1,
		},
		NeedsFloorRatio: 0.8,
		WantsFloors: map[string]float64{
			spending.CategoryShopping:  0.3,
			spending.CategoryHobby:     0.4,
			spending.CategoryOther:     0.5,
			spending.CategorySocial:    0.5,
			spending.CategoryDate:      0.5,
			spending.CategoryCafe:      0.6,
			spending.CategoryEducation: 0.8,
		},
		WantsDefaultFloor: 0.5,
		WantsReductionOrder: []string{
			spending.CategoryShopping,
			spending.CategoryHobby,
			spending.CategoryOther,
			spending.CategorySocial,
			spending.CategoryDate,
			spending.CategoryCafe,
			spending.CategoryEducation,
		},
		UnlistedAfter:  spending.CategoryOther,
		CeilingRatio:   1.3,
		ReserveCeiling: 100_000,
		StatusBand:     0.1,
	}
}

// weight returns the NEEDS weight of a category, 1 when unset.
func (t Tuning) weight(category string) int64 {
	if w, ok := t.NeedsWeights[category]; ok && w > 0 {
		return w
	}
	return 1
}

func (t Tuning) wantsFloor(category string) float64 {
	if f, ok := t.WantsFloors[category]; ok {
		return f
	}
	return t.WantsDefaultFloor
}

func (t Tuning) isFixed(category string) bool {
	for _, c := range t.NeedsFixed {
		if c == category {
			return true
		}
	}
	return false
}
