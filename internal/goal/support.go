package goal

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/money"
)

// DefaultSupportPrograms is used when no catalog is available.
func DefaultSupportPrograms() []domain.SupportProgram {
	return []domain.SupportProgram{
		{
			ID:             "mock-1",
			Category:       domain.SupportScholarship,
			Title:          "국가장학금 I유형",
			Institution:    "한국장학재단",
			Target:         "소득 8분위 이하",
			PayMethod:      "학기당 3,500,000원",
			ApplicationURL: "https://www.kosaf.go.kr",
			Keywords:       []string{"대학생", "장학금", "등록금", "학비"},
			MonthlyValue:   3_500_000 / 4,
		},
		{
			ID:             "mock-2",
			Category:       domain.SupportScholarship,
			Title:          "근로장학금",
			Institution:    "한국장학재단",
			Target:         "재학생 (주 20시간 이하)",
			PayMethod:      "월 400,000원",
			ApplicationURL: "https://www.kosaf.go.kr",
			Keywords:       []string{"대학생", "장학금", "근로", "알바"},
			MonthlyValue:   400_000,
		},
		{
			ID:             "mock-3",
			Category:       domain.SupportAsset,
			Title:          "청년내일채움공제",
			Institution:    "고용노동부",
			Target:         "중소기업 취업 청년",
			PayMethod:      "월 300,000원",
			ApplicationURL: "https://www.work.go.kr",
			Keywords:       []string{"청년", "취업", "목돈", "자산"},
			MonthlyValue:   300_000,
		},
	}
}

// SearchKeywords returns the terms a support search runs with.
func (p *Planner) SearchKeywords(eventLabel string) []string {
	var out []string
	if label := strings.TrimSpace(eventLabel); label != "" {
		out = append(out, label)
	}
	out = append(out, p.tuning.StudentKeywords...)
	if len(out) > len(p.tuning.StudentKeywords) {
		out = append(out, "장학금")
	}
	return out
}

// Relevance counts how many goal terms a program matches. Terms are the
// words of the event label plus the student keywords.
func (p *Planner) Relevance(program domain.SupportProgram, eventLabel string) int {
	terms := append(strings.Fields(eventLabel), p.tuning.StudentKeywords...)
	seen := make(map[string]bool, len(terms))
	score := 0
	for _, term := range terms {
		if term == "" || seen[term] {
			continue
		}
		seen[term] = true
		if matches(program, term) {
			score++
		}
	}
	return score
}

func matches(program domain.SupportProgram, term string) bool {
	if strings.Contains(program.Title, term) {
		return true
	}
	for _, k := range program.Keywords {
		if k == term || (utf8.RuneCountInString(k) >= 2 && strings.Contains(term, k)) {
			return true
		}
	}
	return false
}

// BestSupport picks the most relevant program that covers enough of the
// monthly gap. Ties go to the smallest sufficient value, then id.
func (p *Planner) BestSupport(programs []domain.SupportProgram, eventLabel string, monthlyGap int64) (domain.SupportProgram, bool) {
	minValue := money.PortionCeil(money.AtLeastZero(monthlyGap), p.tuning.SupportMinCoverage)

	type candidate struct {
		program   domain.SupportProgram
		relevance int
	}
	var candidates []candidate
	for _, prog := range programs {
		if prog.MonthlyValue <= 0 || prog.MonthlyValue < minValue {
			continue
		}
		rel := p.Relevance(prog, eventLabel)
		if rel < 1 {
			continue
		}
		candidates = append(candidates, candidate{program: prog, relevance: rel})
	}
	if len(candidates) == 0 {
		return domain.SupportProgram{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.relevance != b.relevance {
			return a.relevance > b.relevance
		}
		if a.program.MonthlyValue != b.program.MonthlyValue {
			return a.program.MonthlyValue < b.program.MonthlyValue
		}
		return a.program.ID < b.program.ID
	})
	return candidates[0].program, true
}
