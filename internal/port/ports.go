// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
)

// TransactionStore retrieves a user's ledger.
type TransactionStore interface {
	// ListTransactions returns the transactions of one YYYY-MM month.
	ListTransactions(ctx context.Context, userID, month string) ([]domain.Transaction, error)
	// LatestMonth returns the most recent month with data, or "" when none.
	LatestMonth(ctx context.Context, userID string) (string, error)
	// CurrentAsset returns deposits minus withdrawals over the whole ledger.
	CurrentAsset(ctx context.Context, userID string) (int64, error)
}

// AnalysisStore persists spending reports and budget analyses.
type AnalysisStore interface {
	SaveSpendingReport(ctx context.Context, r *domain.SpendingReport) error
	GetSpendingReport(ctx context.Context, userID, id string) (*domain.SpendingReport, error)
	ListSpendingReports(ctx context.Context, userID string) ([]domain.SpendingReport, error)
	// LatestSpendingReport returns nil, nil when the user has none.
	LatestSpendingReport(ctx context.Context, userID string) (*domain.SpendingReport, error)

	SaveBudgetAnalysis(ctx context.Context, b *domain.BudgetAnalysis) error
	GetBudgetAnalysis(ctx context.Context, userID, id string) (*domain.BudgetAnalysis, error)
	ListBudgetAnalyses(ctx context.Context, userID string) ([]domain.BudgetAnalysis, error)
}

// ChallengeStore persists challenges.
type ChallengeStore interface {
	CreateChallenge(ctx context.Context, c *domain.Challenge) error
	GetChallenge(ctx context.Context, userID, id string) (*domain.Challenge, error)
	ListChallenges(ctx context.Context, userID string) ([]domain.Challenge, error)
	// FindActiveChallenge returns nil, nil when no challenge for the event is in progress.
	FindActiveChallenge(ctx context.Context, userID, eventName string) (*domain.Challenge, error)
	UpdateChallengeStatus(ctx context.Context, userID, id string, status domain.ChallengeStatus) (*domain.Challenge, error)
}

// SupportCatalog lists subsidy and scholarship programs.
type SupportCatalog interface {
	ListPrograms(ctx context.Context) ([]domain.SupportProgram, error)
}

// Narrator turns a numeric result into human-readable text.
type Narrator interface {
	Narrate(ctx context.Context, req *domain.NarrativeRequest) (*domain.NarrativeResponse, error)
}

// EventPublisher announces persisted results to other systems.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.ResultEvent) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	// GetOrLoad shares one load between concurrent misses of the same key.
	GetOrLoad(ctx context.Context, key string, load func(context.Context) (T, error)) (T, bool, error)
}
