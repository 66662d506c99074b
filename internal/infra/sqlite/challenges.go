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

const challengeColumns = `id, user_id, spending_analysis_id, challenge_name, event_name,
	current_amount, target_amount, shortfall_amount, period_months, plan_type, plan_title, description,
	monthly_required, monthly_shortfall, final_estimated_asset, expected_period, plan_detail, status,
	start_date, end_date, created_at, updated_at`

// CreateChallenge stores a new challenge.
func (s *Store) CreateChallenge(ctx context.Context, c *domain.Challenge) error {
	ctx, span := tracer.Start(ctx, "Store.CreateChallenge")
	defer span.End()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := s.now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = c.CreatedAt

	detail, err := json.Marshal(c.Detail)
	if err != nil {
		return fmt.Errorf("encode plan detail: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO challenge (`+challengeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.SpendingAnalysisID, c.ChallengeName, c.EventName,
		c.CurrentAmount, c.TargetAmount, c.ShortfallAmount, c.PeriodMonths, string(c.PlanType), c.PlanTitle, c.Description,
		c.MonthlyRequired, c.MonthlyShortfall, c.FinalEstimatedAsset, c.ExpectedPeriod, string(detail), string(c.Status),
		formatTime(c.StartDate), formatTime(c.EndDate), formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert challenge: %w", err)
	}
	return nil
}

// GetChallenge returns one challenge of the user.
func (s *Store) GetChallenge(ctx context.Context, userID, id string) (*domain.Challenge, error) {
	ctx, span := tracer.Start(ctx, "Store.GetChallenge")
	defer span.End()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+challengeColumns+` FROM challenge WHERE user_id = ? AND id = ?`, userID, id)
	c, err := scanChallenge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "challenge", ID: id}
	}
	return c, err
}

// ListChallenges returns the user's challenges, newest first.
func (s *Store) ListChallenges(ctx context.Context, userID string) ([]domain.Challenge, error) {
	ctx, span := tracer.Start(ctx, "Store.ListChallenges")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `SELECT `+challengeColumns+` FROM challenge
		WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query challenges: %w", err)
	}
	defer rows.Close()

	var out []domain.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// FindActiveChallenge returns the in-progress challenge for an event, or nil.
func (s *Store) FindActiveChallenge(ctx context.Context, userID, eventName string) (*domain.Challenge, error) {
	ctx, span := tracer.Start(ctx, "Store.FindActiveChallenge")
	defer span.End()

	row := s.db.QueryRowContext(ctx, `SELECT `+challengeColumns+` FROM challenge
		WHERE user_id = ? AND event_name = ? AND status = ?
		ORDER BY created_at DESC LIMIT 1`, userID, eventName, string(domain.ChallengeInProgress))
	c, err := scanChallenge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// UpdateChallengeStatus changes the status and returns the updated challenge.
func (s *Store) UpdateChallengeStatus(ctx context.Context, userID, id string, status domain.ChallengeStatus) (*domain.Challenge, error) {
	ctx, span := tracer.Start(ctx, "Store.UpdateChallengeStatus")
	defer span.End()

	res, err := s.db.ExecContext(ctx, `UPDATE challenge SET status = ?, updated_at = ?
		WHERE user_id = ? AND id = ?`, string(status), formatTime(s.now()), userID, id)
	if err != nil {
		return nil, fmt.Errorf("update challenge status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, &domain.ErrNotFound{Resource: "challenge", ID: id}
	}
	return s.GetChallenge(ctx, userID, id)
}

func scanChallenge(row scanner) (*domain.Challenge, error) {
	var c domain.Challenge
	var planType, detail, status, start, end, created, updated string
	err := row.Scan(&c.ID, &c.UserID, &c.SpendingAnalysisID, &c.ChallengeName, &c.EventName,
		&c.CurrentAmount, &c.TargetAmount, &c.ShortfallAmount, &c.PeriodMonths, &planType, &c.PlanTitle, &c.Description,
		&c.MonthlyRequired, &c.MonthlyShortfall, &c.FinalEstimatedAsset, &c.ExpectedPeriod, &detail, &status,
		&start, &end, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan challenge: %w", err)
	}
	if err := json.Unmarshal([]byte(detail), &c.Detail); err != nil {
		return nil, fmt.Errorf("decode plan detail: %w", err)
	}
	c.PlanType = domain.PlanType(planType)
	c.Status = domain.ChallengeStatus(status)
	c.StartDate = parseTime(start)
	c.EndDate = parseTime(end)
	c.CreatedAt = parseTime(created)
	c.UpdatedAt = parseTime(updated)
	return &c, nil
}
