package spending

import (
	"fmt"
	"sort"
	"time"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/money"
)

// MonthLayout is the textual form of a report month.
const MonthLayout = "2006-01"

// NoOverspend is the overspent_category value when nothing crosses its threshold.
const NoOverspend = "양호"

// Options tune report generation. Amount math is not affected.
type Options struct {
	// Now is the reference day for daily averages of the current month.
	Now time.Time
	// OverspendThresholds maps a category to the share of spending (percent)
	// above which it is flagged.
	OverspendThresholds map[string]float64
	// SuggestionRate is the share of an overspent category proposed as savings.
	SuggestionRate float64
}

// DefaultOptions returns the thresholds used by the coach.
func DefaultOptions() Options {
	return Options{
		Now: time.Now(),
		OverspendThresholds: map[string]float64{
			CategoryCafe:     15,
			CategorySocial:   20,
			CategoryShopping: 20,
			CategoryMeals:    40,
			CategoryHobby:    15,
		},
		SuggestionRate: 0.1,
	}
}

// ParseMonth parses a YYYY-MM month.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return time.Time{}, &domain.ErrValidation{Field: "month", Message: "must be YYYY-MM"}
	}
	return t, nil
}

// MonthOf formats the month a time falls into.
func MonthOf(t time.Time) string {
	return t.Format(MonthLayout)
}

// LatestMonth returns the most recent month that has a transaction, or "".
func LatestMonth(txs []domain.Transaction) string {
	var latest time.Time
	for _, tx := range txs {
		if tx.Date.After(latest) {
			latest = tx.Date
		}
	}
	if latest.IsZero() {
		return ""
	}
	return MonthOf(latest)
}

// Aggregate builds the spending report of one month. Transactions dated
// outside the month are ignored; undated ones are kept. An empty month yields
// a zero report with DataStatus empty.
func Aggregate(month string, txs []domain.Transaction, opts Options) domain.SpendingReport {
	report := domain.SpendingReport{
		Month:        month,
		AnalysisDate: opts.Now.Format("2006-01-02"),
		DataStatus:   domain.DataOK,
		Insights:     []domain.Insight{},
		Suggestions:  []domain.SavingSuggestion{},
		Categories:   []domain.CategoryStat{},
	}

	start, err := ParseMonth(month)
	inMonth := func(tx domain.Transaction) bool {
		if err != nil || tx.Date.IsZero() {
			return true
		}
		return MonthOf(tx.Date) == MonthOf(start)
	}

	amounts := make(map[string]int64)
	counts := make(map[string]int)
	seen := 0

	for _, tx := range txs {
		if !inMonth(tx) || tx.Amount < 0 {
			continue
		}
		seen++
		switch tx.Type {
		case domain.TransactionDeposit:
			report.TotalIncome += tx.Amount
		case domain.TransactionWithdrawal:
			category := Normalize(tx.CategoryRaw)
			if TypeOf(category) == domain.CategorySavings {
				report.TotalSaved += tx.Amount
				continue
			}
			report.TotalSpent += tx.Amount
			amounts[category] += tx.Amount
			counts[category]++
		}
	}

	if seen == 0 {
		report.DataStatus = domain.DataEmpty
		report.OverspentCategory = NoOverspend
		report.Insights = append(report.Insights, domain.Insight{
			Type:    "empty",
			Message: fmt.Sprintf("%s에는 거래 내역이 없습니다.", month),
		})
		report.InsightSummary = report.Insights[0].Message
		return report
	}

	for category, amount := range amounts {
		report.Categories = append(report.Categories, domain.CategoryStat{
			Category: category,
			Amount:   amount,
			Count:    counts[category],
			Percent:  money.Percent(amount, report.TotalSpent),
		})
	}
	SortStats(report.Categories)

	report.SavePotential = report.TotalIncome - report.TotalSpent
	if len(report.Categories) > 0 {
		report.TopCategory = report.Categories[0].Category
	}

	report.DailyAverage, report.ProjectedTotal = pace(start, err == nil, report.TotalSpent, opts.Now)
	report.OverspentCategory = NoOverspend
	buildInsights(&report, opts)

	return report
}

// SortStats orders statistics by amount descending, then name.
func SortStats(stats []domain.CategoryStat) {
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Amount != stats[j].Amount {
			return stats[i].Amount > stats[j].Amount
		}
		return stats[i].Category < stats[j].Category
	})
}

// TopN returns the n largest statistics with a positive amount.
func TopN(stats []domain.CategoryStat, n int) []domain.CategoryStat {
	sorted := make([]domain.CategoryStat, 0, len(stats))
	for _, s := range stats {
		if s.Amount > 0 {
			sorted = append(sorted, s)
		}
	}
	SortStats(sorted)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// pace derives the daily average and the month-end projection. Past months
// use their full length; the current month uses the days elapsed.
func pace(start time.Time, valid bool, spent int64, now time.Time) (daily, projected int64) {
	if !valid {
		return 0, spent
	}
	daysInMonth := int64(start.AddDate(0, 1, -1).Day())
	if MonthOf(now) == MonthOf(start) {
		elapsed := int64(now.Day())
		daily = spent / elapsed
		return daily, daily * daysInMonth
	}
	if start.After(now) {
		return 0, spent
	}
	return spent / daysInMonth, spent
}

// NoConsumption summarizes a month with income or savings but no spending.
const NoConsumption = "이번 달에는 소비 지출이 없습니다."

func buildInsights(report *domain.SpendingReport, opts Options) {
	if len(report.Categories) > 0 {
		top := report.Categories[0]
		report.Insights = append(report.Insights, domain.Insight{
			Type:    "top_category",
			Message: fmt.Sprintf("%s 지출이 전체의 %.1f%%로 가장 큽니다.", top.Category, top.Percent),
		})
	}

	for _, stat := range report.Categories {
		threshold, ok := opts.OverspendThresholds[stat.Category]
		if !ok || stat.Percent <= threshold {
			continue
		}
		if report.OverspentCategory == NoOverspend {
			report.OverspentCategory = stat.Category
		}
		report.Insights = append(report.Insights, domain.Insight{
			Type:    "overspend",
			Message: fmt.Sprintf("%s 비중이 %.1f%%로 권장 %.0f%%를 넘었습니다.", stat.Category, stat.Percent, threshold),
		})
		save := money.Portion(stat.Amount, opts.SuggestionRate)
		report.Suggestions = append(report.Suggestions, domain.SavingSuggestion{
			Category:      stat.Category,
			CurrentAmount: stat.Amount,
			SaveAmount:    save,
			Message: fmt.Sprintf("%s 지출을 %.0f%% 줄이면 월 %s원을 아낄 수 있습니다.",
				stat.Category, opts.SuggestionRate*100, money.Format(save)),
		})
	}

	if report.TotalIncome > 0 {
		report.Insights = append(report.Insights, domain.Insight{
			Type: "savings",
			Message: fmt.Sprintf("수입 대비 저축 비율은 %.1f%%, 저축 가능액은 %s원입니다.",
				money.Percent(report.TotalSaved, report.TotalIncome), money.Format(report.SavePotential)),
		})
	}

	if len(report.Insights) == 0 {
		report.InsightSummary = NoConsumption
		return
	}
	report.InsightSummary = report.Insights[0].Message
	if report.OverspentCategory != NoOverspend {
		report.InsightSummary = fmt.Sprintf("%s 지출 관리가 필요합니다. %s", report.OverspentCategory, report.InsightSummary)
	}
}
