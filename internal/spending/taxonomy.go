// Package spending turns a month of raw transactions into category
// statistics. It owns the category taxonomy shared by the allocator and the
// planner.
package spending

import (
	"strings"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
)

// Standard category names.
const (
	CategoryHousing      = "주거"
	CategorySubscription = "통신/구독"
	CategoryTransport    = "교통"
	CategoryMeals        = "식사"
	CategorySpecial      = "특별지출"
	CategoryCafe         = "카페/디저트"
	CategorySocial       = "사회/모임"
	CategoryDate         = "데이트"
	CategoryShopping     = "쇼핑/꾸미기"
	CategoryHobby        = "취미/여가"
	CategoryEducation    = "교육/학습"
	CategoryOther        = "기타"
	CategorySavings      = "저축/투자"
)

// Kind describes how discretionary a category is.
type Kind string

const (
	KindFixed        Kind = "FIXED"
	KindSubscription Kind = "FIXED_OR_SUBSCRIPTION"
	KindSemiFixed    Kind = "SEMI_FIXED"
	KindEssential    Kind = "VARIABLE_ESSENTIAL"
	KindHabit        Kind = "VARIABLE_HABIT"
	KindSocial       Kind = "VARIABLE_SOCIAL"
	KindLuxury       Kind = "VARIABLE_LUXURY"
	KindIrregular    Kind = "IRREGULAR"
	KindSavings      Kind = "SAVINGS"
)

type categoryInfo struct {
	Name string
	Type domain.CategoryType
	Kind Kind
}

// taxonomy is ordered: needs, wants, savings. Output order follows it.
var taxonomy = []categoryInfo{
	{CategoryHousing, domain.CategoryNeeds, KindFixed},
	{CategorySubscription, domain.CategoryNeeds, KindSubscription},
	{CategoryTransport, domain.CategoryNeeds, KindSemiFixed},
	{CategoryMeals, domain.CategoryNeeds, KindEssential},
	{CategorySpecial, domain.CategoryNeeds, KindIrregular},
	{CategoryCafe, domain.CategoryWants, KindHabit},
	{CategorySocial, domain.CategoryWants, KindSocial},
	{CategoryDate, domain.CategoryWants, KindSocial},
	{CategoryShopping, domain.CategoryWants, KindLuxury},
	{CategoryHobby, domain.CategoryWants, KindLuxury},
	{CategoryEducation, domain.CategoryWants, KindSemiFixed},
	{CategoryOther, domain.CategoryWants, KindIrregular},
	{CategorySavings, domain.CategorySavings, KindSavings},
}

// rawAliases maps raw ledger labels to standard names.
var rawAliases = map[string]string{
	"식비":  CategoryMeals,
	"편의점": CategoryMeals,
	"카페":  CategoryCafe,
	"디저트": CategoryCafe,
	"사회":  CategorySocial,
	"술집":  CategorySocial,
	"회식":  CategorySocial,
	"모임":  CategorySocial,
	"쇼핑":  CategoryShopping,
	"패션":  CategoryShopping,
	"뷰티":  CategoryShopping,
	"도서":  CategoryEducation,
	"학습":  CategoryEducation,
	"학원":  CategoryEducation,
	"여가":  CategoryHobby,
	"취미":  CategoryHobby,
	"교통":  CategoryTransport,
	"택시":  CategoryTransport,
	"주거":  CategoryHousing,
	"월세":  CategoryHousing,
	"관리비": CategoryHousing,
	"구독":  CategorySubscription,
	"통신":  CategorySubscription,
	"경조사": CategorySpecial,
	"병원":  CategorySpecial,
	"의료":  CategorySpecial,
	"저축":  CategorySavings,
	"투자":  CategorySavings,
	"적금":  CategorySavings,
}

var byName = func() map[string]categoryInfo {
	m := make(map[string]categoryInfo, len(taxonomy))
	for _, c := range taxonomy {
		m[c.Name] = c
	}
	return m
}()

// Normalize maps a raw ledger label to its standard category.
// Unknown labels land in 기타.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if _, ok := byName[raw]; ok {
		return raw
	}
	if std, ok := rawAliases[raw]; ok {
		return std
	}
	return CategoryOther
}

// TypeOf returns the budget group of a standard category. Unknown names are WANTS.
func TypeOf(category string) domain.CategoryType {
	if c, ok := byName[category]; ok {
		return c.Type
	}
	return domain.CategoryWants
}

// KindOf returns the discretionary kind of a category. Unknown names are irregular.
func KindOf(category string) Kind {
	if c, ok := byName[category]; ok {
		return c.Kind
	}
	return KindIrregular
}

// Known reports whether category is part of the taxonomy.
func Known(category string) bool {
	_, ok := byName[category]
	return ok
}

// Categories lists the taxonomy members of one group in canonical order.
func Categories(t domain.CategoryType) []string {
	var out []string
	for _, c := range taxonomy {
		if c.Type == t {
			out = append(out, c.Name)
		}
	}
	return out
}

// AllCategories lists the whole taxonomy in canonical order.
func AllCategories() []string {
	out := make([]string, 0, len(taxonomy))
	for _, c := range taxonomy {
		out = append(out, c.Name)
	}
	return out
}
