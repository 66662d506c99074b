package domain

// ============================================================
// Narrative enrichment
// ============================================================

// NarrativeKind names the result a narrative is written for.
type NarrativeKind string

const (
	NarrativeSpending   NarrativeKind = "spending"
	NarrativeBudget     NarrativeKind = "budget"
	NarrativeSimulation NarrativeKind = "simulation"
)

// NarrativeRequest is what the narrator receives: the numeric result plus
// the deterministic messages it may rephrase.
type NarrativeRequest struct {
	Kind     NarrativeKind `json:"kind"`
	UserID   string        `json:"user_id"`
	Payload  any           `json:"payload"`
	Messages []string      `json:"messages"`
}

// NarrativeResponse is what a narrator returns.
type NarrativeResponse struct {
	Summary    string     `json:"summary"`
	Lines      []string   `json:"lines"`
	Extra      string     `json:"extra_suggestion,omitempty"`
	TokensUsed TokenUsage `json:"tokens_used"`
	Model      string     `json:"model,omitempty"`
}

// TokenUsage tracks LLM token consumption.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Narrative is attached to a result. Source is "narrator" when the external
// service answered and "fallback" when the core messages were used.
type Narrative struct {
	Source  string   `json:"source"`
	Summary string   `json:"summary"`
	Lines   []string `json:"lines"`
	Extra   string   `json:"extra_suggestion,omitempty"`
}

// ResultEvent is published after a result is persisted.
type ResultEvent struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	UserID    string `json:"user_id"`
	ResultID  string `json:"result_id"`
	Timestamp string `json:"timestamp"`
}
