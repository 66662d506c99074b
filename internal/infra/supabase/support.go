package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
)

// --- Support catalog (implements port.SupportCatalog) ---

type supabaseSupport struct {
	ID             string   `json:"id"`
	Category       string   `json:"category"`
	Title          string   `json:"title"`
	Subtitle       string   `json:"subtitle"`
	Institution    string   `json:"institution"`
	ApplyPeriod    string   `json:"apply_period"`
	Target         string   `json:"target"`
	PayMethod      string   `json:"pay_method"`
	Content        string   `json:"content"`
	ApplicationURL string   `json:"application_url"`
	Keywords       []string `json:"keywords"`
	MonthlyValue   int64    `json:"monthly_value"`
}

// ListPrograms fetches the support_info table.
func (c *Client) ListPrograms(ctx context.Context) ([]domain.SupportProgram, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListPrograms")
	defer span.End()

	q := url.Values{}
	q.Set("order", "id.asc")

	body, err := c.get(ctx, "supabase/support", "support_info", q)
	if err != nil {
		return nil, err
	}

	out := []domain.SupportProgram{}
	if len(body) == 0 {
		return out, nil
	}

	var rows []supabaseSupport
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, &domain.ErrExternalService{Service: "supabase/support", Err: fmt.Errorf("failed to decode support info: %w", err)}
	}
	for _, r := range rows {
		out = append(out, domain.SupportProgram{
			ID:             r.ID,
			Category:       domain.SupportCategory(r.Category),
			Title:          r.Title,
			Subtitle:       r.Subtitle,
			Institution:    r.Institution,
			ApplyPeriod:    r.ApplyPeriod,
			Target:         r.Target,
			PayMethod:      r.PayMethod,
			Content:        r.Content,
			ApplicationURL: r.ApplicationURL,
			Keywords:       r.Keywords,
			MonthlyValue:   r.MonthlyValue,
		})
	}
	return out, nil
}
