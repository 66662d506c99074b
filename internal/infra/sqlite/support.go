package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
)

// ListPrograms returns the support catalog ordered by id.
func (s *Store) ListPrograms(ctx context.Context) ([]domain.SupportProgram, error) {
	ctx, span := tracer.Start(ctx, "Store.ListPrograms")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, title, subtitle, institution, apply_period, target, pay_method,
		       content, application_url, keywords, monthly_value
		FROM support_info ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query support info: %w", err)
	}
	defer rows.Close()

	out := []domain.SupportProgram{}
	for rows.Next() {
		var p domain.SupportProgram
		var category, keywords string
		if err := rows.Scan(&p.ID, &category, &p.Title, &p.Subtitle, &p.Institution, &p.ApplyPeriod,
			&p.Target, &p.PayMethod, &p.Content, &p.ApplicationURL, &keywords, &p.MonthlyValue); err != nil {
			return nil, fmt.Errorf("scan support info: %w", err)
		}
		p.Category = domain.SupportCategory(category)
		if err := json.Unmarshal([]byte(keywords), &p.Keywords); err != nil {
			return nil, fmt.Errorf("decode keywords of %s: %w", p.ID, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
