package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/infra/observability"
	"github.com/boddenberg/campus-budget-coach/internal/infra/resilience"
	"github.com/boddenberg/campus-budget-coach/internal/money"
	"github.com/boddenberg/campus-budget-coach/internal/port"
)

var tracer = otel.Tracer("service")

// Narrative sources.
const (
	SourceNarrator = "narrator"
	SourceFallback = "fallback"
)

// Fallback texts used when the narrator is unavailable.
const (
	FallbackSummary        = "AI 분석을 불러올 수 없어 기본 플랜을 표시합니다."
	FallbackRecommendation = "플랜을 직접 확인해보세요."
)

// NarrativeService enriches results with text. It never fails: any narrator
// error yields the deterministic messages of the result.
type NarrativeService struct {
	narrator port.Narrator
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewNarrativeService creates the service. A nil narrator always falls back.
func NewNarrativeService(narrator port.Narrator, bulkhead *resilience.Bulkhead, metrics *observability.Metrics, logger *zap.Logger) *NarrativeService {
	return &NarrativeService{
		narrator: narrator,
		bulkhead: bulkhead,
		metrics:  metrics,
		logger:   logger,
	}
}

// Enrich asks the narrator to rephrase messages about payload.
func (s *NarrativeService) Enrich(ctx context.Context, kind domain.NarrativeKind, userID string, payload any, messages []string) *domain.Narrative {
	ctx, span := tracer.Start(ctx, "NarrativeService.Enrich")
	defer span.End()
	span.SetAttributes(attribute.String("narrative.kind", string(kind)))

	if s.narrator == nil {
		s.metrics.IncrNarrative(SourceFallback)
		return Fallback(messages)
	}

	if s.bulkhead != nil {
		if err := s.bulkhead.Acquire(ctx); err != nil {
			s.logger.Warn("narrative bulkhead full", zap.String("kind", string(kind)), zap.Error(err))
			s.metrics.IncrNarrative(SourceFallback)
			return Fallback(messages)
		}
		defer s.bulkhead.Release()
	}

	resp, err := s.narrator.Narrate(ctx, &domain.NarrativeRequest{
		Kind:     kind,
		UserID:   userID,
		Payload:  payload,
		Messages: messages,
	})
	if err != nil {
		s.logger.Warn("narrative enrichment failed, using fallback",
			zap.String("kind", string(kind)),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		s.metrics.IncrExternalError("narrator")
		s.metrics.IncrNarrative(SourceFallback)
		span.RecordError(err)
		return Fallback(messages)
	}

	s.metrics.IncrNarrative(SourceNarrator)
	s.metrics.RecordTokens(resp.TokensUsed.PromptTokens, resp.TokensUsed.CompletionTokens)
	return &domain.Narrative{
		Source:  SourceNarrator,
		Summary: resp.Summary,
		Lines:   resp.Lines,
		Extra:   resp.Extra,
	}
}

// Fallback builds the narrative from the core's own messages.
func Fallback(messages []string) *domain.Narrative {
	lines := append([]string{}, messages...)
	return &domain.Narrative{
		Source:  SourceFallback,
		Summary: FallbackSummary,
		Lines:   lines,
		Extra:   FallbackRecommendation,
	}
}

// ============================================================
// Deterministic messages
// ============================================================

// SpendingMessages lists the report's insights, then challenge progress.
func SpendingMessages(r *domain.SpendingReport) []string {
	out := make([]string, 0, len(r.Insights)+len(r.ChallengeProgress))
	for _, in := range r.Insights {
		out = append(out, in.Message)
	}
	for _, p := range r.ChallengeProgress {
		out = append(out, p.Message)
	}
	return out
}

// BudgetMessages describes the group totals and any overflow.
func BudgetMessages(a domain.Allocation) []string {
	out := []string{
		fmt.Sprintf("%s 규칙으로 필수 %s원, 선택 %s원, 저축 %s원을 추천합니다.",
			a.Rule.Name,
			money.Format(a.Summary.Needs.Amount),
			money.Format(a.Summary.Wants.Amount),
			money.Format(a.Summary.Savings.Amount)),
	}
	if a.StructuralOverflow.IsOver {
		out = append(out, fmt.Sprintf("필수 지출이 한도를 %s원 초과합니다. 고정비를 점검해 보세요.",
			money.Format(a.StructuralOverflow.OverAmount)))
	}
	if a.WantsFloorRelaxed {
		out = append(out, "선택 지출을 최소 기준 아래로 줄여야 한도에 맞출 수 있습니다.")
	}
	return out
}

// SimulationMessages lists the recommendation of every recommended plan.
func SimulationMessages(res *domain.SimulationResult) []string {
	var out []string
	for _, p := range res.Plans {
		if p.IsRecommended {
			out = append(out, fmt.Sprintf("[%s] %s", p.Title, p.Recommendation))
		}
	}
	return out
}
