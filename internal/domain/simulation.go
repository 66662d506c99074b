package domain

import "time"

// ============================================================
// Goal simulation
// ============================================================

// Difficulty grades how far the current savings pace is from the goal.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "EASY"
	DifficultyModerate Difficulty = "MODERATE"
	DifficultyHard     Difficulty = "HARD"
	DifficultyVeryHard Difficulty = "VERY_HARD"
)

// PlanType is one of the four savings strategies.
type PlanType string

const (
	PlanMaintain   PlanType = "MAINTAIN"
	PlanFrugal     PlanType = "FRUGAL"
	PlanSupport    PlanType = "SUPPORT"
	PlanInvestment PlanType = "INVESTMENT"
)

// PlanTypes lists the strategies in generation order.
var PlanTypes = []PlanType{PlanMaintain, PlanFrugal, PlanSupport, PlanInvestment}

// GoalInput are the numeric parameters of a simulation.
type GoalInput struct {
	Current              int64 `json:"current_amount"`
	Target               int64 `json:"target_amount"`
	PeriodMonths         int   `json:"period_months"`
	MonthlySavePotential int64 `json:"monthly_save_potential"`
}

// SimulationContext carries the non-numeric simulation inputs.
type SimulationContext struct {
	TopCategories []CategoryStat   `json:"top_categories"`
	EventLabel    string           `json:"event_label"`
	Supports      []SupportProgram `json:"-"`
	AutoSelect    bool             `json:"auto_select"`
}

// SituationAnalysis classifies the goal before any plan is generated.
type SituationAnalysis struct {
	Difficulty         Difficulty        `json:"difficulty"`
	ShortfallAmount    int64             `json:"shortfall_amount"`
	MonthlyRequired    int64             `json:"monthly_required"`
	MonthlyGap         int64             `json:"monthly_gap"`
	GapRate            float64           `json:"gap_rate"`
	PlanSuitability    map[PlanType]bool `json:"plan_suitability"`
	InvestmentSuitable bool              `json:"investment_suitable"`
	SupportNeeded      bool              `json:"support_needed"`
	TimelinePressure   string            `json:"timeline_pressure"`
	IsAchievableNow    bool              `json:"is_achievable_now"`
}

// Promotion marks a plan recommended by the post-generation pass.
type Promotion string

const (
	PromotionBestChoice Promotion = "best_choice"
	PromotionRunnerUp   Promotion = "runner_up"
)

// PlanDetail holds strategy-specific figures.
type PlanDetail struct {
	AchievementRate   int                `json:"achievement_rate"`
	Shortfall         int64              `json:"shortfall"`
	MonthlySavings    int64              `json:"monthly_savings,omitempty"`
	SavingRate        float64            `json:"saving_rate,omitempty"`
	Aggressive        bool               `json:"aggressive,omitempty"`
	TargetCategories  []string           `json:"target_categories,omitempty"`
	BaselineAmount    int64              `json:"baseline_amount,omitempty"`
	SupportFound      bool               `json:"support_found,omitempty"`
	Support           *SupportProgram    `json:"support,omitempty"`
	SearchKeywords    []string           `json:"search_keywords,omitempty"`
	Product           *InvestmentProduct `json:"product,omitempty"`
	InvestmentProfit  int64              `json:"investment_profit,omitempty"`
	SimpleMonthly     int64              `json:"simple_monthly,omitempty"`
	InvestmentMonthly int64              `json:"investment_monthly,omitempty"`
	Efficiency        float64            `json:"efficiency,omitempty"`
	RiskWarnings      []string           `json:"risk_warnings,omitempty"`
	Promotion         Promotion          `json:"promotion,omitempty"`
}

// Plan is one generated savings strategy.
type Plan struct {
	PlanType             PlanType   `json:"plan_type"`
	VariantID            string     `json:"variant_id"`
	Title                string     `json:"plan_title"`
	Description          string     `json:"description"`
	MonthlyRequired      int64      `json:"monthly_required"`
	MonthlyShortfall     int64      `json:"monthly_shortfall"`
	FinalEstimatedAsset  int64      `json:"final_estimated_asset"`
	ExpectedPeriodMonths int        `json:"expected_period"`
	AchievementRate      float64    `json:"achievement_rate"`
	IsRecommended        bool       `json:"is_recommended"`
	Tags                 []string   `json:"tags"`
	Recommendation       string     `json:"recommendation"`
	Detail               PlanDetail `json:"plan_detail"`
}

// SimulationResult is the output of a goal simulation.
type SimulationResult struct {
	EventLabel     string            `json:"event_name"`
	Input          GoalInput         `json:"input"`
	Situation      SituationAnalysis `json:"situation_analysis"`
	Plans          []Plan            `json:"plans"`
	SimulationDate string            `json:"simulation_date"`
	Recommended    []PlanType        `json:"recommended_plans"`
	Narrative      *Narrative        `json:"narrative,omitempty"`
}

// InvestmentProduct is a fixed-catalog STO-style instrument.
type InvestmentProduct struct {
	ID                string  `json:"id" toml:"id"`
	Name              string  `json:"name" toml:"name"`
	AnnualReturn      float64 `json:"annual_return" toml:"annual_return"`
	MinInvestment     int64   `json:"min_investment" toml:"min_investment"`
	RecommendedPeriod int     `json:"recommended_period" toml:"recommended_period"`
	RiskLevel         string  `json:"risk_level" toml:"risk_level"`
	Description       string  `json:"description" toml:"description"`
}

// SimulateRequest is the body of POST /v1/challenge/simulate.
type SimulateRequest struct {
	EventName            string `json:"event_name"`
	TargetAmount         int64  `json:"target_amount"`
	PeriodMonths         int    `json:"period_months"`
	CurrentAmount        *int64 `json:"current_amount,omitempty"`
	MonthlySavePotential *int64 `json:"monthly_save_potential,omitempty"`
	AutoSelect           bool   `json:"auto_select,omitempty"`
	Enrich               bool   `json:"enrich,omitempty"`
}

// ============================================================
// Challenges
// ============================================================

// ChallengeStatus is the lifecycle state of a challenge.
type ChallengeStatus string

const (
	ChallengeInProgress ChallengeStatus = "IN_PROGRESS"
	ChallengeCompleted  ChallengeStatus = "COMPLETED"
	ChallengeFailed     ChallengeStatus = "FAILED"
)

// Valid reports whether s is a known status.
func (s ChallengeStatus) Valid() bool {
	switch s {
	case ChallengeInProgress, ChallengeCompleted, ChallengeFailed:
		return true
	}
	return false
}

// Challenge is a plan the user committed to.
type Challenge struct {
	ID                  string          `json:"id"`
	UserID              string          `json:"user_id"`
	SpendingAnalysisID  string          `json:"spending_analysis_id,omitempty"`
	ChallengeName       string          `json:"challenge_name"`
	EventName           string          `json:"event_name"`
	CurrentAmount       int64           `json:"current_amount"`
	TargetAmount        int64           `json:"target_amount"`
	ShortfallAmount     int64           `json:"shortfall_amount"`
	PeriodMonths        int             `json:"period_months"`
	PlanType            PlanType        `json:"plan_type"`
	PlanTitle           string          `json:"plan_title"`
	Description         string          `json:"description"`
	MonthlyRequired     int64           `json:"monthly_required"`
	MonthlyShortfall    int64           `json:"monthly_shortfall"`
	FinalEstimatedAsset int64           `json:"final_estimated_asset"`
	ExpectedPeriod      int             `json:"expected_period"`
	Detail              PlanDetail      `json:"plan_detail"`
	Status              ChallengeStatus `json:"status"`
	StartDate           time.Time       `json:"start_date"`
	EndDate             time.Time       `json:"end_date"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// CreateChallengeRequest is the body of POST /v1/challenge.
type CreateChallengeRequest struct {
	ChallengeName string `json:"challenge_name,omitempty"`
	EventName     string `json:"event_name"`
	CurrentAmount int64  `json:"current_amount"`
	TargetAmount  int64  `json:"target_amount"`
	PeriodMonths  int    `json:"period_months"`
	Plan          Plan   `json:"plan"`
}

// CreateChallengeResult tells the caller whether a new challenge was stored.
type CreateChallengeResult struct {
	Challenge Challenge `json:"challenge"`
	IsNew     bool      `json:"is_new"`
	Message   string    `json:"message"`
}

// UpdateChallengeStatusRequest is the body of PATCH /v1/challenge/{id}/status.
type UpdateChallengeStatusRequest struct {
	Status ChallengeStatus `json:"status"`
}

// ChallengeInit is returned by GET /v1/challenge/init.
type ChallengeInit struct {
	CurrentAsset         int64  `json:"current_asset"`
	MonthlySavePotential int64  `json:"monthly_save_potential"`
	HasAnalysis          bool   `json:"has_analysis"`
	LastAnalysisDate     string `json:"last_analysis_date,omitempty"`
	LatestDataDate       string `json:"latest_mydata_date,omitempty"`
	AnalysisOutdated     bool   `json:"analysis_outdated"`
}
