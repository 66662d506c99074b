package cli

import (
	"fmt"
	"strings"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/money"
)

// Won formats an amount in won.
func Won(v int64) string {
	return money.Format(v) + "원"
}

func percent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

func status(s domain.BudgetStatus) string {
	switch s {
	case domain.StatusOverspent:
		return badStyle.Render(string(s))
	case domain.StatusSurplus:
		return goodStyle.Render(string(s))
	}
	return string(s)
}

// RenderAllocation renders caps, per-group items and the overflow warning.
func RenderAllocation(a domain.Allocation) string {
	var b strings.Builder

	b.WriteString(RenderTitle(fmt.Sprintf("예산 배분 %s / 수입 %s", a.Rule.Name, Won(a.Income))))
	b.WriteString("\n")
	b.WriteString(RenderTable(Table{
		Title:   "그룹",
		Headers: []string{"Group", "Cap", "Recommended", "Share"},
		Rows: [][]string{
			{"NEEDS", Won(a.Caps.Needs), Won(a.Summary.Needs.Amount), percent(a.Summary.Needs.Percent)},
			{"WANTS", Won(a.Caps.Wants), Won(a.Summary.Wants.Amount), percent(a.Summary.Wants.Percent)},
			{"SAVINGS", Won(a.Caps.Savings), Won(a.Summary.Savings.Amount), percent(a.Summary.Savings.Percent)},
		},
	}))

	groups := []struct {
		name  string
		items []domain.BudgetItem
	}{
		{"NEEDS", a.Items.Needs},
		{"WANTS", a.Items.Wants},
		{"SAVINGS", a.Items.Savings},
	}
	var rows [][]string
	for _, g := range groups {
		for _, it := range g.items {
			rows = append(rows, []string{it.Category, g.name, Won(it.AnalyzedAmount), Won(it.RecommendedAmount), status(it.Status)})
		}
	}
	b.WriteString(RenderTable(Table{
		Title:   "항목",
		Headers: []string{"Category", "Group", "Analyzed", "Recommended", "Status"},
		Rows:    rows,
	}))

	if a.StructuralOverflow.IsOver {
		b.WriteString(warnStyle.Render(fmt.Sprintf("고정 필수지출이 NEEDS 한도를 %s 초과합니다.", Won(a.StructuralOverflow.OverAmount))))
		b.WriteString("\n")
	}
	if a.WantsFloorRelaxed {
		b.WriteString(warnStyle.Render("WANTS 최소 보장 비율을 완화했습니다."))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderSimulation renders the situation analysis and every plan.
func RenderSimulation(r domain.SimulationResult) string {
	var b strings.Builder
	s := r.Situation

	b.WriteString(RenderTitle(fmt.Sprintf("%s: %s 목표 / %d개월", r.EventLabel, Won(r.Input.Target), r.Input.PeriodMonths)))
	b.WriteString("\n")
	b.WriteString(RenderTable(Table{
		Title:   "상황 분석",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Difficulty", string(s.Difficulty)},
			{"Shortfall", Won(s.ShortfallAmount)},
			{"Monthly required", Won(s.MonthlyRequired)},
			{"Monthly gap", Won(s.MonthlyGap)},
			{"Gap rate", percent(s.GapRate)},
			{"Timeline", s.TimelinePressure},
		},
	}))

	rows := make([][]string, 0, len(r.Plans))
	for _, p := range r.Plans {
		mark := ""
		if p.IsRecommended {
			mark = goodStyle.Render("★")
		}
		rows = append(rows, []string{
			p.Title,
			string(p.PlanType),
			Won(p.MonthlyRequired),
			Won(p.FinalEstimatedAsset),
			percent(p.AchievementRate),
			mark,
		})
	}
	b.WriteString(RenderTable(Table{
		Title:   "플랜",
		Headers: []string{"Plan", "Type", "Monthly", "Final", "Rate", "Rec"},
		Rows:    rows,
	}))
	return b.String()
}

// RenderSpending renders a month report with its categories and insights.
func RenderSpending(r domain.SpendingReport) string {
	var b strings.Builder

	b.WriteString(RenderTitle(fmt.Sprintf("%s 소비 분석", r.Month)))
	b.WriteString("\n")
	if r.Empty() {
		b.WriteString(warnStyle.Render("해당 월의 거래 내역이 없습니다."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(RenderTable(Table{
		Title:   "요약",
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Income", Won(r.TotalIncome)},
			{"Spent", Won(r.TotalSpent)},
			{"Saved", Won(r.TotalSaved)},
			{"Save potential", Won(r.SavePotential)},
			{"Daily average", Won(r.DailyAverage)},
			{"Projected", Won(r.ProjectedTotal)},
		},
	}))

	rows := make([][]string, 0, len(r.Categories))
	for _, c := range r.Categories {
		rows = append(rows, []string{c.Category, Won(c.Amount), fmt.Sprint(c.Count), percent(c.Percent)})
	}
	b.WriteString(RenderTable(Table{
		Title:   "카테고리",
		Headers: []string{"Category", "Amount", "Count", "Share"},
		Rows:    rows,
	}))

	for _, in := range r.Insights {
		b.WriteString("• " + in.Message + "\n")
	}
	return b.String()
}
