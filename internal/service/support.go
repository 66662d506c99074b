package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
	"github.com/boddenberg/campus-budget-coach/internal/infra/observability"
	"github.com/boddenberg/campus-budget-coach/internal/port"
)

const supportCacheKey = "support:programs"

// SupportService serves the subsidy and scholarship catalog through a cache.
type SupportService struct {
	catalog port.SupportCatalog
	cache   port.Cache[[]domain.SupportProgram]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewSupportService creates the support service with all dependencies injected.
func NewSupportService(
	catalog port.SupportCatalog,
	cache port.Cache[[]domain.SupportProgram],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *SupportService {
	return &SupportService{
		catalog: catalog,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// Programs returns the catalog, optionally restricted to one category.
func (s *SupportService) Programs(ctx context.Context, category string) ([]domain.SupportProgram, error) {
	ctx, span := tracer.Start(ctx, "SupportService.Programs")
	defer span.End()

	programs, hit, err := s.cache.GetOrLoad(ctx, supportCacheKey, s.catalog.ListPrograms)
	if err != nil {
		s.metrics.IncrExternalError("support_catalog")
		return nil, fmt.Errorf("list support programs: %w", err)
	}
	if hit {
		s.metrics.IncrCacheHit("support")
	} else {
		s.metrics.IncrCacheMiss("support")
		s.logger.Debug("support catalog loaded", zap.Int("programs", len(programs)))
	}

	if category == "" {
		if programs == nil {
			programs = []domain.SupportProgram{}
		}
		return programs, nil
	}
	out := []domain.SupportProgram{}
	for _, p := range programs {
		if string(p.Category) == category {
			out = append(out, p)
		}
	}
	return out, nil
}
