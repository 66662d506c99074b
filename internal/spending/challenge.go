package spending

import (
	"fmt"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/money"
)

// DefaultReducePercent applies to challenges whose plan carries no saving rate.
const DefaultReducePercent = 10

// CompareChallenge checks the report against a challenge that targets one
// category. ok is false when the plan names no category or the month has no
// spending in it. Without a stored baseline the month's own amount is used.
func CompareChallenge(r *domain.SpendingReport, c domain.Challenge) (domain.ChallengeProgress, bool) {
	if len(c.Detail.TargetCategories) == 0 {
		return domain.ChallengeProgress{}, false
	}
	category := c.Detail.TargetCategories[0]

	var actual int64
	found := false
	for _, stat := range r.Categories {
		if stat.Category == category {
			actual, found = stat.Amount, true
			break
		}
	}
	if !found {
		return domain.ChallengeProgress{}, false
	}

	reduce := DefaultReducePercent
	if c.Detail.SavingRate > 0 {
		reduce = int(money.Round1(c.Detail.SavingRate * 100))
	}
	baseline := c.Detail.BaselineAmount
	if baseline <= 0 {
		baseline = actual
	}
	target := baseline * int64(100-reduce) / 100

	p := domain.ChallengeProgress{
		ChallengeID:    c.ID,
		ChallengeName:  c.ChallengeName,
		TargetCategory: category,
		ReducePercent:  reduce,
		BaselineSpent:  baseline,
		TargetSpent:    target,
		ActualSpent:    actual,
	}

	if actual <= target {
		p.IsOnTrack = true
		p.AchievementRate = 100
		var savedPct int64
		if baseline > 0 {
			savedPct = (baseline - actual) * 100 / baseline
		}
		p.Message = fmt.Sprintf("%s 지출을 기준보다 %d%% 줄였습니다.", category, savedPct)
		return p, true
	}

	if actual > 0 {
		p.AchievementRate = int(target * 100 / actual)
	}
	p.Message = fmt.Sprintf("%s 지출이 목표보다 %s원 많습니다.", category, money.Format(actual-target))
	return p, true
}
