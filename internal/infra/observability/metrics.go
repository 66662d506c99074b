package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
)

// Metrics holds all Prometheus metrics for the coach.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	tokensUsed      *prometheus.CounterVec
	allocations     *prometheus.CounterVec
	overflows       prometheus.Counter
	simulations     *prometheus.CounterVec
	promotions      *prometheus.CounterVec
	narratives      *prometheus.CounterVec
	eventsPublished *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coach_operation_duration_seconds",
				Help:    "Duration of service operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		tokensUsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_llm_tokens_total",
				Help: "Total LLM tokens consumed by narrative enrichment.",
			},
			[]string{"type"},
		),
		allocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_allocations_total",
				Help: "Budget allocations computed, by rule.",
			},
			[]string{"rule"},
		),
		overflows: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "coach_structural_overflows_total",
				Help: "Allocations whose fixed needs exceeded the needs cap.",
			},
		),
		simulations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_simulations_total",
				Help: "Goal simulations, by difficulty.",
			},
			[]string{"difficulty"},
		),
		promotions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_forced_promotions_total",
				Help: "Plans recommended by the post-generation pass.",
			},
			[]string{"promotion"},
		),
		narratives: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_narratives_total",
				Help: "Narrative enrichment outcomes.",
			},
			[]string{"source"},
		),
		eventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coach_events_published_total",
				Help: "Result events handed to the publisher.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordTokens records prompt and completion token usage.
func (m *Metrics) RecordTokens(prompt, completion int) {
	m.tokensUsed.WithLabelValues("prompt").Add(float64(prompt))
	m.tokensUsed.WithLabelValues("completion").Add(float64(completion))
}

// RecordAllocation counts one allocation and its overflow, if any.
func (m *Metrics) RecordAllocation(a domain.Allocation) {
	m.allocations.WithLabelValues(a.Rule.Name).Inc()
	if a.StructuralOverflow.IsOver {
		m.overflows.Inc()
	}
}

// RecordSimulation counts one simulation and the promotions it needed.
func (m *Metrics) RecordSimulation(res domain.SimulationResult) {
	m.simulations.WithLabelValues(string(res.Situation.Difficulty)).Inc()
	for _, p := range res.Plans {
		if p.Detail.Promotion != "" {
			m.promotions.WithLabelValues(string(p.Detail.Promotion)).Inc()
		}
	}
}

// IncrNarrative counts a narrative by source ("narrator" or "fallback").
func (m *Metrics) IncrNarrative(source string) {
	m.narratives.WithLabelValues(source).Inc()
}

// IncrEvent counts a publish attempt ("ok" or "error").
func (m *Metrics) IncrEvent(status string) {
	m.eventsPublished.WithLabelValues(status).Inc()
}

// GetEngineSnapshot returns a snapshot of engine metrics suitable for the
// GET /v1/metrics/engine endpoint.
func (m *Metrics) GetEngineSnapshot() *domain.EngineMetrics {
	allocations := sumCounterVec(m.allocations)
	simulations := sumCounterVec(m.simulations)
	promotions := sumCounterVec(m.promotions)
	narrated := getCounterValue(m.narratives, "narrator")
	fallbacks := getCounterValue(m.narratives, "fallback")
	promptTokens := getCounterValue(m.tokensUsed, "prompt")
	completionTokens := getCounterValue(m.tokensUsed, "completion")
	cacheHits := sumCounterVec(m.cacheHits)
	cacheMisses := sumCounterVec(m.cacheMisses)

	overflow := &dto.Metric{}
	overflows := float64(0)
	if err := m.overflows.Write(overflow); err == nil && overflow.Counter != nil {
		overflows = overflow.Counter.GetValue()
	}

	narratives := narrated + fallbacks
	fallbackRate := float64(0)
	avgTokens := float64(0)
	cacheHitRate := float64(0)

	if narratives > 0 {
		fallbackRate = fallbacks / narratives
	}
	if narrated > 0 {
		avgTokens = (promptTokens + completionTokens) / narrated
	}
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	return &domain.EngineMetrics{
		Allocations:         int64(allocations),
		StructuralOverflows: int64(overflows),
		Simulations:         int64(simulations),
		ForcedPromotions:    int64(promotions),
		NarrativeRequests:   int64(narratives),
		NarrativeFallbacks:  int64(fallbacks),
		FallbackRate:        fallbackRate,
		AvgTokensPerRequest: avgTokens,
		CacheHitRate:        cacheHitRate,
		Period:              "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

// sumCounterVec adds up every label combination of a CounterVec.
func sumCounterVec(cv *prometheus.CounterVec) float64 {
	ch := make(chan prometheus.Metric, 16)
	go func() {
		cv.Collect(ch)
		close(ch)
	}()

	total := float64(0)
	for metric := range ch {
		m := &dto.Metric{}
		if err := metric.Write(m); err != nil {
			continue
		}
		if m.Counter != nil {
			total += m.Counter.GetValue()
		}
	}
	return total
}
