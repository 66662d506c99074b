package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/spending"
)

const dateLayout = "2006-01-02"

// AddTransactions stores ledger entries. Entries without an id get one.
func (s *Store) AddTransactions(ctx context.Context, txs []domain.Transaction) error {
	ctx, span := tracer.Start(ctx, "Store.AddTransactions")
	defer span.End()
	span.SetAttributes(attribute.Int("transactions", len(txs)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO transactions (id, user_id, tx_date, month, type, category, description, amount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range txs {
		if t.Amount < 0 {
			return &domain.ErrValidation{Field: "amount", Message: "must not be negative"}
		}
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		var date, month string
		if !t.Date.IsZero() {
			date, month = t.Date.Format(dateLayout), spending.MonthOf(t.Date)
		}
		if _, err := stmt.ExecContext(ctx, t.ID, t.UserID, date, month, string(t.Type), t.CategoryRaw, t.Description, t.Amount); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

// ListTransactions returns the user's transactions of one month, plus the
// undated ones.
func (s *Store) ListTransactions(ctx context.Context, userID, month string) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Store.ListTransactions")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, tx_date, type, category, description, amount
		FROM transactions
		WHERE user_id = ? AND (month = ? OR month = '')
		ORDER BY tx_date, id`, userID, month)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		var date, typ string
		if err := rows.Scan(&t.ID, &t.UserID, &date, &typ, &t.CategoryRaw, &t.Description, &t.Amount); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = domain.TransactionType(typ)
		if date != "" {
			t.Date, _ = time.Parse(dateLayout, date)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// LatestMonth returns the most recent month with data, or "".
func (s *Store) LatestMonth(ctx context.Context, userID string) (string, error) {
	ctx, span := tracer.Start(ctx, "Store.LatestMonth")
	defer span.End()

	var month sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(month) FROM transactions WHERE user_id = ? AND month != ''`, userID).Scan(&month)
	if err != nil {
		return "", fmt.Errorf("query latest month: %w", err)
	}
	return month.String, nil
}

// CurrentAsset returns deposits minus withdrawals over the whole ledger.
func (s *Store) CurrentAsset(ctx context.Context, userID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "Store.CurrentAsset")
	defer span.End()

	var asset sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT SUM(CASE type WHEN 'DEPOSIT' THEN amount ELSE -amount END)
		FROM transactions WHERE user_id = ?`, userID).Scan(&asset)
	if err != nil {
		return 0, fmt.Errorf("query current asset: %w", err)
	}
	return asset.Int64, nil
}
