package model

import "time"

// RunStatus tracks a reconciliation run through its phases.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusExtracting RunStatus = "extracting"
	RunStatusComparing  RunStatus = "comparing"
	RunStatusPricing    RunStatus = "pricing"
	RunStatusComplete   RunStatus = "complete"
	RunStatusFailed     RunStatus = "failed"
)

// ReconciliationRun is one persisted extract→compare→price run.
type ReconciliationRun struct {
	ID        string     `json:"id"`
	Project   string     `json:"project"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunResult is the serialized output of a complete run.
type RunResult struct {
	DrawingItems []ExtractedItem   `json:"drawing_items,omitempty"`
	BOQItems     []ExtractedItem   `json:"boq_items,omitempty"`
	Rows         []ComparisonRow   `json:"rows,omitempty"`
	Summary      ComparisonSummary `json:"summary"`
	Mappings     []PriceMapping    `json:"mappings,omitempty"`
	Errors       []string          `json:"errors,omitempty"`
	TokenUsage   TokenUsage        `json:"token_usage"`
	Phases       []PhaseResult     `json:"phases,omitempty"`
}

// PhaseResult records one phase of a run (extraction, comparison, pricing).
type PhaseResult struct {
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	DurationMS int64      `json:"duration_ms"`
	TokenUsage TokenUsage `json:"token_usage"`
	Error      string     `json:"error,omitempty"`
	ItemCount  int        `json:"item_count,omitempty"`
}
