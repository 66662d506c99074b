package domain

import "time"

// ============================================================
// Budget allocation
// ============================================================

// Rule is a needs/wants/savings percentage split.
type Rule struct {
	Name       string  `json:"name"`
	NeedsPct   float64 `json:"needs_pct"`
	WantsPct   float64 `json:"wants_pct"`
	SavingsPct float64 `json:"savings_pct"`
}

// The three fixed allocation rules.
var (
	Rule503020 = Rule{Name: "50/30/20", NeedsPct: 0.5, WantsPct: 0.3, SavingsPct: 0.2}
	Rule602020 = Rule{Name: "60/20/20", NeedsPct: 0.6, WantsPct: 0.2, SavingsPct: 0.2}
	Rule403030 = Rule{Name: "40/30/30", NeedsPct: 0.4, WantsPct: 0.3, SavingsPct: 0.3}
)

// DefaultRule is used when the caller does not pick one.
var DefaultRule = Rule403030

// RuleByName resolves one of the fixed rules. Unknown names are a validation error.
func RuleByName(name string) (Rule, error) {
	switch name {
	case "":
		return DefaultRule, nil
	case Rule503020.Name:
		return Rule503020, nil
	case Rule602020.Name:
		return Rule602020, nil
	case Rule403030.Name:
		return Rule403030, nil
	}
	return Rule{}, &ErrValidation{Field: "rule", Message: "must be one of 50/30/20, 60/20/20, 40/30/30"}
}

// BudgetCaps are the group ceilings derived from income and rule.
type BudgetCaps struct {
	Needs   int64 `json:"needs"`
	Wants   int64 `json:"wants"`
	Savings int64 `json:"savings"`
}

// Total returns the sum of the three caps.
func (c BudgetCaps) Total() int64 {
	return c.Needs + c.Wants + c.Savings
}

// BudgetStatus compares prior spending with the recommendation.
type BudgetStatus string

const (
	StatusOverspent BudgetStatus = "OVERSPENT"
	StatusAdequate  BudgetStatus = "ADEQUATE"
	StatusSurplus   BudgetStatus = "SURPLUS"
)

// BudgetItem is one recommended line of a budget group.
type BudgetItem struct {
	Category          string       `json:"category"`
	AnalyzedAmount    int64        `json:"analyzed_amount"`
	RecommendedAmount int64        `json:"recommended_amount"`
	Status            BudgetStatus `json:"status"`
	IsReserve         bool         `json:"is_reserve,omitempty"`
}

// BudgetGroups holds the recommended items per group.
type BudgetGroups struct {
	Needs   []BudgetItem `json:"needs"`
	Wants   []BudgetItem `json:"wants"`
	Savings []BudgetItem `json:"savings"`
}

// StructuralOverflow reports NEEDS spending that floors prevent from fitting the cap.
type StructuralOverflow struct {
	IsOver     bool  `json:"is_over"`
	OverAmount int64 `json:"over_amount"`
}

// GroupSummary is a group's recommended total and its share of income.
type GroupSummary struct {
	Amount  int64   `json:"amount"`
	Percent float64 `json:"percent"`
}

// BudgetSummary summarizes the three groups of an allocation.
type BudgetSummary struct {
	Needs   GroupSummary `json:"needs"`
	Wants   GroupSummary `json:"wants"`
	Savings GroupSummary `json:"savings"`
}

// Allocation is the full result of one allocation run.
type Allocation struct {
	Income             int64              `json:"income"`
	Rule               Rule               `json:"rule"`
	Caps               BudgetCaps         `json:"caps"`
	Items              BudgetGroups       `json:"items"`
	StructuralOverflow StructuralOverflow `json:"structural_overflow"`
	WantsFloorRelaxed  bool               `json:"wants_floor_relaxed"`
	NeedsReserve       int64              `json:"needs_reserve"`
	WantsReserve       int64              `json:"wants_reserve"`
	Summary            BudgetSummary      `json:"summary"`
}

// BudgetAnalysis is a persisted allocation tied to a spending report.
type BudgetAnalysis struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"user_id"`
	SpendingAnalysisID string     `json:"spending_analysis_id,omitempty"`
	Month              string     `json:"month"`
	Allocation         Allocation `json:"allocation"`
	Narrative          *Narrative `json:"narrative,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// RecommendBudgetRequest is the body of POST /v1/budget/recommend.
type RecommendBudgetRequest struct {
	Rule   string `json:"selected_plan"`
	Month  string `json:"month,omitempty"`
	Income int64  `json:"income,omitempty"`
	Enrich bool   `json:"enrich,omitempty"`
}

// AllocateRequest is the body of POST /v1/budget/allocate.
type AllocateRequest struct {
	Income int64          `json:"income"`
	Rule   string         `json:"rule"`
	Prior  []CategoryStat `json:"prior_category_spending"`
}
