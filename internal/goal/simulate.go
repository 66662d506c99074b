package goal

import (
	"sort"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/spending"
)

// Promotion tags and recommendation suffixes.
const (
	TagBestChoice = "최선의 선택"
	TagRunnerUp   = "차선책"

	bestChoiceNote = " (현재 상황에서 가장 효과적인 방법입니다.)"
	runnerUpNote   = " (이 방법도 좋은 대안이 될 수 있습니다.)"
)

// Simulate analyzes the goal and generates every plan, or only the suitable
// ones when AutoSelect is set. The result always holds at least one
// recommended plan. SimulationDate is left to the caller.
func (p *Planner) Simulate(in domain.GoalInput, sc domain.SimulationContext) (domain.SimulationResult, error) {
	situation, err := p.Analyze(in)
	if err != nil {
		return domain.SimulationResult{}, err
	}

	include := func(pt domain.PlanType) bool {
		return !sc.AutoSelect || situation.PlanSuitability[pt]
	}

	plans := []domain.Plan{p.Maintain(in)}
	if include(domain.PlanFrugal) {
		top := spending.TopN(sc.TopCategories, p.tuning.FrugalVariants)
		plans = append(plans, p.FrugalVariants(in, top)...)
	}
	if include(domain.PlanSupport) {
		plans = append(plans, p.Support(in, situation, sc.Supports, sc.EventLabel))
	}
	if include(domain.PlanInvestment) {
		plans = append(plans, p.Investment(in, situation))
	}

	Promote(plans)

	return domain.SimulationResult{
		EventLabel:  sc.EventLabel,
		Input:       in,
		Situation:   situation,
		Plans:       plans,
		Recommended: RecommendedTypes(plans),
	}, nil
}

// Promote guarantees a recommendation. When no plan is recommended the two
// non-Maintain plans with the largest final asset are promoted; Maintain is
// promoted only when it is the sole plan type present.
func Promote(plans []domain.Plan) {
	for _, pl := range plans {
		if pl.IsRecommended {
			return
		}
	}

	var idx []int
	for i, pl := range plans {
		if pl.PlanType != domain.PlanMaintain {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		for i := range plans {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return plans[idx[a]].FinalEstimatedAsset > plans[idx[b]].FinalEstimatedAsset
	})
	if len(idx) > 2 {
		idx = idx[:2]
	}

	for rank, i := range idx {
		pl := &plans[i]
		pl.IsRecommended = true
		if rank == 0 {
			pl.Tags = append([]string{TagBestChoice}, pl.Tags...)
			pl.Recommendation += bestChoiceNote
			pl.Detail.Promotion = domain.PromotionBestChoice
		} else {
			pl.Tags = append([]string{TagRunnerUp}, pl.Tags...)
			pl.Recommendation += runnerUpNote
			pl.Detail.Promotion = domain.PromotionRunnerUp
		}
	}
}

// RecommendedTypes lists the distinct plan types marked recommended, in
// plan order.
func RecommendedTypes(plans []domain.Plan) []domain.PlanType {
	out := []domain.PlanType{}
	seen := make(map[domain.PlanType]bool)
	for _, pl := range plans {
		if pl.IsRecommended && !seen[pl.PlanType] {
			seen[pl.PlanType] = true
			out = append(out, pl.PlanType)
		}
	}
	return out
}
