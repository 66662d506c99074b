package domain

import "time"

// ============================================================
// Transactions & spending statistics
// ============================================================

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "DEPOSIT"
	TransactionWithdrawal TransactionType = "WITHDRAWAL"
)

// Transaction is a single ledger entry as delivered by the transaction store.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Date        time.Time       `json:"date"`
	Type        TransactionType `json:"type"`
	CategoryRaw string          `json:"category"`
	Description string          `json:"description,omitempty"`
	Amount      int64           `json:"amount"`
}

// CategoryType is the budget group a category belongs to.
type CategoryType string

const (
	CategoryNeeds   CategoryType = "NEEDS"
	CategoryWants   CategoryType = "WANTS"
	CategorySavings CategoryType = "SAVINGS"
)

// CategoryStat is the per-category aggregate of one calendar month.
type CategoryStat struct {
	Category string  `json:"category"`
	Amount   int64   `json:"amount"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent"`
}

// DataStatus tells the caller whether a report was built from real data.
type DataStatus string

const (
	DataOK       DataStatus = "ok"
	DataEmpty    DataStatus = "empty"
	DataFallback DataStatus = "fallback"
)

// Insight is a deterministic observation derived from the statistics.
type Insight struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SavingSuggestion proposes trimming an overspent category.
type SavingSuggestion struct {
	Category      string `json:"category"`
	CurrentAmount int64  `json:"current_amount"`
	SaveAmount    int64  `json:"save_amount"`
	Message       string `json:"message"`
}

// SpendingReport is the Spending Aggregator output for one (user, month).
type SpendingReport struct {
	ID                string              `json:"id,omitempty"`
	UserID            string              `json:"user_id,omitempty"`
	Month             string              `json:"month"`
	RequestedMonth    string              `json:"requested_month,omitempty"`
	AnalysisDate      string              `json:"analysis_date"`
	DataStatus        DataStatus          `json:"data_status"`
	TotalIncome       int64               `json:"total_income"`
	TotalSpent        int64               `json:"total_spent"`
	TotalSaved        int64               `json:"total_saved"`
	SavePotential     int64               `json:"save_potential"`
	DailyAverage      int64               `json:"daily_average"`
	ProjectedTotal    int64               `json:"projected_total"`
	TopCategory       string              `json:"top_category"`
	OverspentCategory string              `json:"overspent_category"`
	InsightSummary    string              `json:"insight_summary"`
	Insights          []Insight           `json:"insights"`
	Suggestions       []SavingSuggestion  `json:"suggestions"`
	Categories        []CategoryStat      `json:"categories"`
	ChallengeProgress []ChallengeProgress `json:"challenge_progress,omitempty"`
	Narrative         *Narrative          `json:"narrative,omitempty"`
	CreatedAt         time.Time           `json:"created_at,omitempty"`
}

// ChallengeProgress compares a month's spending in a challenge's target
// category with the reduced amount the challenge committed to.
type ChallengeProgress struct {
	ChallengeID     string `json:"challenge_id"`
	ChallengeName   string `json:"challenge_name"`
	TargetCategory  string `json:"target_category"`
	ReducePercent   int    `json:"target_reduce_percent"`
	BaselineSpent   int64  `json:"baseline_spent"`
	TargetSpent     int64  `json:"target_spent"`
	ActualSpent     int64  `json:"actual_spent"`
	AchievementRate int    `json:"achievement_rate"`
	IsOnTrack       bool   `json:"is_on_track"`
	Message         string `json:"message"`
}

// Empty reports whether the month had no transactions at all.
func (r *SpendingReport) Empty() bool {
	return r.DataStatus == DataEmpty
}

// AnalyzeSpendingRequest is the body of POST /v1/spending/analyze.
type AnalyzeSpendingRequest struct {
	Month        string `json:"month,omitempty"`
	AutoFallback *bool  `json:"auto_fallback,omitempty"`
	Enrich       bool   `json:"enrich,omitempty"`
}
