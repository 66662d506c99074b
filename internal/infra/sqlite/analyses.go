package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
)

// ============================================================
// Spending reports
// ============================================================

const spendingColumns = `id, user_id, month, requested_month, analysis_date, data_status,
	total_income, total_spent, total_saved, save_potential, daily_average, projected_total,
	top_category, overspent_category, insight_summary, insights, suggestions, challenge_progress,
	narrative, created_at`

// SaveSpendingReport stores a report and its category stats. A missing id or
// creation time is filled in.
func (s *Store) SaveSpendingReport(ctx context.Context, r *domain.SpendingReport) error {
	ctx, span := tracer.Start(ctx, "Store.SaveSpendingReport")
	defer span.End()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}

	insights, err := json.Marshal(r.Insights)
	if err != nil {
		return fmt.Errorf("encode insights: %w", err)
	}
	suggestions, err := json.Marshal(r.Suggestions)
	if err != nil {
		return fmt.Errorf("encode suggestions: %w", err)
	}
	progress, err := json.Marshal(r.ChallengeProgress)
	if err != nil {
		return fmt.Errorf("encode challenge progress: %w", err)
	}
	narrative, err := encodeNarrative(r.Narrative)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO spending_analysis (`+spendingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.Month, r.RequestedMonth, r.AnalysisDate, string(r.DataStatus),
		r.TotalIncome, r.TotalSpent, r.TotalSaved, r.SavePotential, r.DailyAverage, r.ProjectedTotal,
		r.TopCategory, r.OverspentCategory, r.InsightSummary, string(insights), string(suggestions),
		string(progress), narrative, formatTime(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert spending analysis: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM spending_category_stats WHERE analysis_id = ?`, r.ID); err != nil {
		return fmt.Errorf("clear category stats: %w", err)
	}
	for i, c := range r.Categories {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO spending_category_stats (analysis_id, position, category, amount, count, percent)
			VALUES (?, ?, ?, ?, ?, ?)`, r.ID, i, c.Category, c.Amount, c.Count, c.Percent)
		if err != nil {
			return fmt.Errorf("insert category stat %s: %w", c.Category, err)
		}
	}
	return tx.Commit()
}

// GetSpendingReport returns one report of the user.
func (s *Store) GetSpendingReport(ctx context.Context, userID, id string) (*domain.SpendingReport, error) {
	ctx, span := tracer.Start(ctx, "Store.GetSpendingReport")
	defer span.End()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+spendingColumns+` FROM spending_analysis WHERE user_id = ? AND id = ?`, userID, id)
	r, err := scanSpending(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "spending_analysis", ID: id}
	}
	if err != nil {
		return nil, err
	}
	if r.Categories, err = s.categoryStats(ctx, r.ID); err != nil {
		return nil, err
	}
	return r, nil
}

// ListSpendingReports returns the user's reports, newest first.
func (s *Store) ListSpendingReports(ctx context.Context, userID string) ([]domain.SpendingReport, error) {
	ctx, span := tracer.Start(ctx, "Store.ListSpendingReports")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `SELECT `+spendingColumns+` FROM spending_analysis
		WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query spending analyses: %w", err)
	}

	var out []domain.SpendingReport
	for rows.Next() {
		r, err := scanSpending(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, *r)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Categories, err = s.categoryStats(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// LatestSpendingReport returns the newest report, or nil when there is none.
func (s *Store) LatestSpendingReport(ctx context.Context, userID string) (*domain.SpendingReport, error) {
	ctx, span := tracer.Start(ctx, "Store.LatestSpendingReport")
	defer span.End()

	row := s.db.QueryRowContext(ctx, `SELECT `+spendingColumns+` FROM spending_analysis
		WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT 1`, userID)
	r, err := scanSpending(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if r.Categories, err = s.categoryStats(ctx, r.ID); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) categoryStats(ctx context.Context, analysisID string) ([]domain.CategoryStat, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category, amount, count, percent
		FROM spending_category_stats WHERE analysis_id = ? ORDER BY position`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("query category stats: %w", err)
	}
	defer rows.Close()

	out := []domain.CategoryStat{}
	for rows.Next() {
		var c domain.CategoryStat
		if err := rows.Scan(&c.Category, &c.Amount, &c.Count, &c.Percent); err != nil {
			return nil, fmt.Errorf("scan category stat: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSpending(row scanner) (*domain.SpendingReport, error) {
	var r domain.SpendingReport
	var status, insights, suggestions, progress, created string
	var narrative sql.NullString
	err := row.Scan(&r.ID, &r.UserID, &r.Month, &r.RequestedMonth, &r.AnalysisDate, &status,
		&r.TotalIncome, &r.TotalSpent, &r.TotalSaved, &r.SavePotential, &r.DailyAverage, &r.ProjectedTotal,
		&r.TopCategory, &r.OverspentCategory, &r.InsightSummary, &insights, &suggestions, &progress,
		&narrative, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan spending analysis: %w", err)
	}
	r.DataStatus = domain.DataStatus(status)
	r.CreatedAt = parseTime(created)
	if err := json.Unmarshal([]byte(insights), &r.Insights); err != nil {
		return nil, fmt.Errorf("decode insights: %w", err)
	}
	if err := json.Unmarshal([]byte(suggestions), &r.Suggestions); err != nil {
		return nil, fmt.Errorf("decode suggestions: %w", err)
	}
	// null when the report had no challenge to compare
	if err := json.Unmarshal([]byte(progress), &r.ChallengeProgress); err != nil {
		return nil, fmt.Errorf("decode challenge progress: %w", err)
	}
	if r.Narrative, err = decodeNarrative(narrative); err != nil {
		return nil, err
	}
	return &r, nil
}

// ============================================================
// Budget analyses
// ============================================================

const budgetColumns = `id, user_id, spending_analysis_id, month, plan_type, allocation, narrative, created_at`

// SaveBudgetAnalysis stores an allocation result.
func (s *Store) SaveBudgetAnalysis(ctx context.Context, b *domain.BudgetAnalysis) error {
	ctx, span := tracer.Start(ctx, "Store.SaveBudgetAnalysis")
	defer span.End()

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.now()
	}

	allocation, err := json.Marshal(b.Allocation)
	if err != nil {
		return fmt.Errorf("encode allocation: %w", err)
	}
	narrative, err := encodeNarrative(b.Narrative)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO budget_analysis (`+budgetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.SpendingAnalysisID, b.Month, b.Allocation.Rule.Name,
		string(allocation), narrative, formatTime(b.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert budget analysis: %w", err)
	}
	return nil
}

// GetBudgetAnalysis returns one budget analysis of the user.
func (s *Store) GetBudgetAnalysis(ctx context.Context, userID, id string) (*domain.BudgetAnalysis, error) {
	ctx, span := tracer.Start(ctx, "Store.GetBudgetAnalysis")
	defer span.End()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budget_analysis WHERE user_id = ? AND id = ?`, userID, id)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "budget_analysis", ID: id}
	}
	return b, err
}

// ListBudgetAnalyses returns the user's budget analyses, newest first.
func (s *Store) ListBudgetAnalyses(ctx context.Context, userID string) ([]domain.BudgetAnalysis, error) {
	ctx, span := tracer.Start(ctx, "Store.ListBudgetAnalyses")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `SELECT `+budgetColumns+` FROM budget_analysis
		WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query budget analyses: %w", err)
	}
	defer rows.Close()

	var out []domain.BudgetAnalysis
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func scanBudget(row scanner) (*domain.BudgetAnalysis, error) {
	var b domain.BudgetAnalysis
	var planType, allocation, created string
	var narrative sql.NullString
	err := row.Scan(&b.ID, &b.UserID, &b.SpendingAnalysisID, &b.Month, &planType, &allocation, &narrative, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan budget analysis: %w", err)
	}
	if err := json.Unmarshal([]byte(allocation), &b.Allocation); err != nil {
		return nil, fmt.Errorf("decode allocation: %w", err)
	}
	if b.Narrative, err = decodeNarrative(narrative); err != nil {
		return nil, err
	}
	b.CreatedAt = parseTime(created)
	return &b, nil
}

func encodeNarrative(n *domain.Narrative) (sql.NullString, error) {
	if n == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(n)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode narrative: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeNarrative(s sql.NullString) (*domain.Narrative, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var n domain.Narrative
	if err := json.Unmarshal([]byte(s.String), &n); err != nil {
		return nil, fmt.Errorf("decode narrative: %w", err)
	}
	return &n, nil
}
