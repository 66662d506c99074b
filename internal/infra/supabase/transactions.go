package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/spending"
)

// --- Transactions (implements port.TransactionStore) ---

// supabaseTransaction maps the transactions table columns.
type supabaseTransaction struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Date        string `json:"tx_date"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

func (r supabaseTransaction) toDomain() domain.Transaction {
	t, _ := time.Parse(time.RFC3339, r.Date)
	if t.IsZero() {
		t, _ = time.Parse("2006-01-02", r.Date)
	}
	return domain.Transaction{
		ID:          r.ID,
		UserID:      r.UserID,
		Date:        t,
		Type:        domain.TransactionType(r.Type),
		CategoryRaw: r.Category,
		Description: r.Description,
		Amount:      r.Amount,
	}
}

// ListTransactions fetches one month of the user's ledger.
func (c *Client) ListTransactions(ctx context.Context, userID, month string) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListTransactions")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID), attribute.String("month", month))

	start, err := spending.ParseMonth(month)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("user_id", "eq."+userID)
	q.Add("tx_date", "gte."+start.Format("2006-01-02"))
	q.Add("tx_date", "lt."+start.AddDate(0, 1, 0).Format("2006-01-02"))
	q.Set("order", "tx_date.asc,id.asc")

	rows, err := c.transactions(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Transaction, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// LatestMonth returns the month of the newest transaction, or "".
func (c *Client) LatestMonth(ctx context.Context, userID string) (string, error) {
	ctx, span := tracer.Start(ctx, "Supabase.LatestMonth")
	defer span.End()

	q := url.Values{}
	q.Set("user_id", "eq."+userID)
	q.Set("tx_date", "not.is.null")
	q.Set("order", "tx_date.desc")
	q.Set("limit", "1")

	rows, err := c.transactions(ctx, q)
	if err != nil || len(rows) == 0 {
		return "", err
	}
	t := rows[0].toDomain()
	if t.Date.IsZero() {
		return "", nil
	}
	return spending.MonthOf(t.Date), nil
}

// CurrentAsset sums deposits minus withdrawals over the whole ledger.
func (c *Client) CurrentAsset(ctx context.Context, userID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CurrentAsset")
	defer span.End()

	q := url.Values{}
	q.Set("user_id", "eq."+userID)
	q.Set("select", "type,amount")

	rows, err := c.transactions(ctx, q)
	if err != nil {
		return 0, err
	}
	var asset int64
	for _, r := range rows {
		if domain.TransactionType(r.Type) == domain.TransactionDeposit {
			asset += r.Amount
		} else {
			asset -= r.Amount
		}
	}
	return asset, nil
}

func (c *Client) transactions(ctx context.Context, q url.Values) ([]supabaseTransaction, error) {
	body, err := c.get(ctx, "supabase/transactions", "transactions", q)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, nil
	}
	var rows []supabaseTransaction
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/transactions", Err: fmt.Errorf("failed to decode transactions: %w", err)}
	}
	return rows, nil
}
