package budget

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/money"
	"github.com/boddenberg/campus-budget-coach/internal/spending"
)

// Allocator turns income, a rule and last period's category spending into a
// recommended budget. It holds no state besides its tuning and is safe for
// concurrent use.
type Allocator struct {
	tuning Tuning
}

// NewAllocator creates an allocator with the given tuning.
func NewAllocator(t Tuning) *Allocator {
	return &Allocator{tuning: t}
}

// line is one category while a group is being balanced.
type line struct {
	category string
	prior    int64
	rec      int64
	floor    int64
	ceiling  int64
	weight   int64
}

// Caps splits income across the three groups. Needs and wants are truncated;
// savings takes the remainder so the caps always sum to income.
func Caps(income int64, rule domain.Rule) domain.BudgetCaps {
	needs := money.Portion(income, rule.NeedsPct)
	wants := money.Portion(income, rule.WantsPct)
	return domain.BudgetCaps{
		Needs:   needs,
		Wants:   wants,
		Savings: income - needs - wants,
	}
}

// Allocate computes the recommended budget. Every taxonomy category appears
// exactly once; prior categories outside the taxonomy are budgeted as WANTS.
// A NEEDS group that cannot fit its cap even at floors is reported through
// StructuralOverflow, not as an error.
func (a *Allocator) Allocate(income int64, rule domain.Rule, prior []domain.CategoryStat) (domain.Allocation, error) {
	if err := validate(income, rule, prior); err != nil {
		return domain.Allocation{}, err
	}

	priorBy := make(map[string]int64, len(prior))
	var extras []string
	for _, s := range prior {
		if _, seen := priorBy[s.Category]; !seen && !spending.Known(s.Category) {
			extras = append(extras, s.Category)
		}
		priorBy[s.Category] += s.Amount
	}
	sort.Strings(extras)

	caps := Caps(income, rule)
	out := domain.Allocation{
		Income: income,
		Rule:   rule,
		Caps:   caps,
	}

	needs, overflow, needsReserve := a.allocateNeeds(caps.Needs, priorBy)
	out.Items.Needs = a.items(needs, needsReserve, NeedsReserveName)
	out.StructuralOverflow = overflow
	out.NeedsReserve = needsReserve

	wants, relaxed, wantsReserve := a.allocateWants(caps.Wants, priorBy, extras)
	out.Items.Wants = a.items(wants, wantsReserve, WantsReserveName)
	out.WantsFloorRelaxed = relaxed
	out.WantsReserve = wantsReserve

	out.Items.Savings = a.allocateSavings(caps.Savings, priorBy)

	out.Summary = domain.BudgetSummary{
		Needs:   summarize(out.Items.Needs, income),
		Wants:   summarize(out.Items.Wants, income),
		Savings: summarize(out.Items.Savings, income),
	}
	return out, nil
}

func validate(income int64, rule domain.Rule, prior []domain.CategoryStat) error {
	if income < 0 {
		return &domain.ErrValidation{Field: "income", Message: "must not be negative"}
	}
	if rule.NeedsPct < 0 || rule.WantsPct < 0 || rule.SavingsPct < 0 || rule.NeedsPct+rule.WantsPct > 1 {
		return &domain.ErrValidation{Field: "rule", Message: "percentages must be non-negative and sum to at most 1"}
	}
	for _, s := range prior {
		if s.Amount < 0 {
			return &domain.ErrValidation{Field: "prior_category_spending", Message: "amount of " + s.Category + " must not be negative"}
		}
	}
	return nil
}

// ============================================================
// NEEDS
// ============================================================

func (a *Allocator) allocateNeeds(limit int64, prior map[string]int64) ([]*line, domain.StructuralOverflow, int64) {
	var all, adjustable []*line
	byName := make(map[string]*line)

	for _, c := range spending.Categories(domain.CategoryNeeds) {
		l := &line{category: c, prior: prior[c], rec: prior[c]}
		all = append(all, l)
		byName[c] = l
		if a.tuning.isFixed(c) {
			l.floor, l.ceiling = l.prior, l.prior
			continue
		}
		l.floor = money.PortionCeil(l.prior, a.tuning.NeedsFloorRatio)
		l.ceiling = money.Portion(l.prior, a.tuning.CeilingRatio)
		l.weight = a.tuning.weight(c) * l.prior
	}

	// Reduction order: configured priority first, then any other adjustable
	// category in taxonomy order.
	listed := make(map[string]bool)
	for _, c := range a.tuning.NeedsReductionOrder {
		if l, ok := byName[c]; ok && !a.tuning.isFixed(c) && !listed[c] {
			adjustable = append(adjustable, l)
			listed[c] = true
		}
	}
	for _, l := range all {
		if !listed[l.category] && !a.tuning.isFixed(l.category) {
			adjustable = append(adjustable, l)
		}
	}

	total := sum(all)
	if total > limit {
		rest := reduce(adjustable, total-limit)
		return all, domain.StructuralOverflow{IsOver: rest > 0, OverAmount: rest}, 0
	}

	leftover := limit - total
	placed := distribute(adjustable, min(leftover, a.tuning.ReserveCeiling))
	return all, domain.StructuralOverflow{}, leftover - placed
}

// ============================================================
// WANTS
// ============================================================

func (a *Allocator) allocateWants(limit int64, prior map[string]int64, extras []string) ([]*line, bool, int64) {
	names := append(spending.Categories(domain.CategoryWants), extras...)
	all := make([]*line, 0, len(names))
	byName := make(map[string]*line, len(names))
	for _, c := range names {
		l := &line{
			category: c,
			prior:    prior[c],
			rec:      prior[c],
			floor:    money.PortionCeil(prior[c], a.tuning.wantsFloor(c)),
			ceiling:  money.Portion(prior[c], a.tuning.CeilingRatio),
			weight:   prior[c],
		}
		all = append(all, l)
		byName[c] = l
	}

	total := sum(all)
	if total <= limit {
		leftover := limit - total
		placed := distribute(all, min(leftover, a.tuning.ReserveCeiling))
		return all, false, leftover - placed
	}

	rest := reduce(a.wantsOrder(all, byName), total-limit)
	if rest == 0 {
		return all, false, 0
	}

	// Floors alone cannot meet the cap: scale the group down to it.
	current := sum(all)
	var largest *line
	for _, l := range all {
		l.rec = money.Share(limit, l.rec, current)
		if largest == nil || l.rec > largest.rec {
			largest = l
		}
	}
	largest.rec += limit - sum(all)
	return all, true, 0
}

// wantsOrder returns the reduction order. Categories without a configured
// position follow UnlistedAfter, sorted by name.
func (a *Allocator) wantsOrder(all []*line, byName map[string]*line) []*line {
	listed := make(map[string]bool)
	for _, c := range a.tuning.WantsReductionOrder {
		listed[c] = true
	}
	var unlisted []*line
	for _, l := range all {
		if !listed[l.category] {
			unlisted = append(unlisted, l)
		}
	}
	sort.SliceStable(unlisted, func(i, j int) bool { return unlisted[i].category < unlisted[j].category })

	order := make([]*line, 0, len(all))
	inserted := false
	seen := make(map[string]bool)
	for _, c := range a.tuning.WantsReductionOrder {
		l, ok := byName[c]
		if !ok || seen[c] {
			continue
		}
		seen[c] = true
		order = append(order, l)
		if c == a.tuning.UnlistedAfter {
			order = append(order, unlisted...)
			inserted = true
		}
	}
	if !inserted {
		order = append(order, unlisted...)
	}
	return order
}

// ============================================================
// SAVINGS
// ============================================================

func (a *Allocator) allocateSavings(limit int64, prior map[string]int64) []domain.BudgetItem {
	cats := spending.Categories(domain.CategorySavings)
	items := make([]domain.BudgetItem, 0, len(cats))
	for i, c := range cats {
		rec := int64(0)
		if i == 0 {
			rec = limit
		}
		items = append(items, domain.BudgetItem{
			Category:          c,
			AnalyzedAmount:    prior[c],
			RecommendedAmount: rec,
			Status:            a.status(prior[c], rec),
		})
	}
	return items
}

// ============================================================
// Shared steps
// ============================================================

// reduce lowers lines in order toward their floors until excess is absorbed
// and returns what could not be absorbed.
func reduce(order []*line, excess int64) int64 {
	for _, l := range order {
		if excess == 0 {
			break
		}
		room := l.rec - l.floor
		if room <= 0 {
			continue
		}
		cut := min(room, excess)
		l.rec -= cut
		excess -= cut
	}
	return excess
}

// distribute hands amount out by weight, never lifting a line above its
// ceiling. Shares blocked by a ceiling are re-offered to the other lines.
// It returns the amount actually placed.
func distribute(lines []*line, amount int64) int64 {
	remaining := amount
	for remaining > 0 {
		var weights int64
		for _, l := range lines {
			if l.weight > 0 && l.rec < l.ceiling {
				weights += l.weight
			}
		}
		if weights == 0 {
			break
		}

		var given int64
		for _, l := range lines {
			if l.weight <= 0 || l.rec >= l.ceiling {
				continue
			}
			share := min(money.Share(remaining, l.weight, weights), l.ceiling-l.rec)
			l.rec += share
			given += share
		}
		if given == 0 {
			remaining -= settle(lines, remaining)
			break
		}
		remaining -= given
	}
	return amount - remaining
}

// settle places a rounding residue too small to split by weight, heaviest
// line first.
func settle(lines []*line, residue int64) int64 {
	order := make([]*line, 0, len(lines))
	for _, l := range lines {
		if l.weight > 0 && l.rec < l.ceiling {
			order = append(order, l)
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return order[i].weight > order[j].weight })

	var placed int64
	for _, l := range order {
		give := min(residue-placed, l.ceiling-l.rec)
		l.rec += give
		placed += give
		if placed == residue {
			break
		}
	}
	return placed
}

func sum(lines []*line) int64 {
	var total int64
	for _, l := range lines {
		total += l.rec
	}
	return total
}

func (a *Allocator) items(lines []*line, reserve int64, reserveName string) []domain.BudgetItem {
	items := make([]domain.BudgetItem, 0, len(lines)+1)
	for _, l := range lines {
		items = append(items, domain.BudgetItem{
			Category:          l.category,
			AnalyzedAmount:    l.prior,
			RecommendedAmount: l.rec,
			Status:            a.status(l.prior, l.rec),
		})
	}
	if reserve > 0 {
		items = append(items, domain.BudgetItem{
			Category:          reserveName,
			RecommendedAmount: reserve,
			Status:            domain.StatusAdequate,
			IsReserve:         true,
		})
	}
	return items
}

// status compares prior spending with the recommendation within the band.
func (a *Allocator) status(analyzed, recommended int64) domain.BudgetStatus {
	band := decimal.NewFromFloat(a.tuning.StatusBand)
	rec := decimal.NewFromInt(recommended)
	got := decimal.NewFromInt(analyzed)
	switch {
	case got.GreaterThan(rec.Mul(decimal.NewFromInt(1).Add(band))):
		return domain.StatusOverspent
	case got.LessThan(rec.Mul(decimal.NewFromInt(1).Sub(band))):
		return domain.StatusSurplus
	}
	return domain.StatusAdequate
}

func summarize(items []domain.BudgetItem, income int64) domain.GroupSummary {
	total := Total(items)
	return domain.GroupSummary{Amount: total, Percent: money.Percent(total, income)}
}

// Total returns the recommended sum of a group.
func Total(items []domain.BudgetItem) int64 {
	var total int64
	for _, it := range items {
		total += it.RecommendedAmount
	}
	return total
}
