package budget

import "time"

// Priority classifies how a request is treated against the budget.
type Priority string

// Priority levels.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Request asks the ledger to admit an estimated amount of work.
type Request struct {
	RequestID             string   `json:"request_id"`
	ToolName              string   `json:"tool_name"`
	EstimatedInputTokens  int      `json:"estimated_input_tokens"`
	EstimatedOutputTokens int      `json:"estimated_output_tokens"`
	Priority              Priority `json:"priority"`
	MaxCost               float64  `json:"max_cost,omitempty"` // 0 = no caller cap
}

// Allocation holds the tokens granted to an approved request.
type Allocation struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

// Alternatives suggests a cheaper shape for a denied request.
type Alternatives struct {
	ReducedTokens    int    `json:"reduced_tokens"`
	FallbackStrategy string `json:"fallback_strategy"`
}

// Approval is the ledger's admission decision. Immutable once returned.
// Denial is a first-class outcome, never an error.
type Approval struct {
	Approved        bool          `json:"approved"`
	AllocatedTokens Allocation    `json:"allocated_tokens"`
	EstimatedCost   float64       `json:"estimated_cost"`
	Reason          string        `json:"reason,omitempty"`
	Alternatives    *Alternatives `json:"alternatives,omitempty"`
}

// TokenTotals accumulates token counts for a period.
// Invariant: Total == Input + Output.
type TokenTotals struct {
	Input  int `json:"input"`
	Output int `json:"output"`
	Total  int `json:"total"`
}

// UsageStats accumulates usage for one period (daily or monthly).
type UsageStats struct {
	Period                  string      `json:"period"`
	StartDate               time.Time   `json:"start_date"`
	EndDate                 time.Time   `json:"end_date"`
	TotalTokens             TokenTotals `json:"total_tokens"`
	TotalCost               float64     `json:"total_cost"`
	RequestCount            int         `json:"request_count"`
	AverageTokensPerRequest float64     `json:"average_tokens_per_request"`
}

// AlertType classifies budget alerts by severity.
type AlertType string

// Alert severities.
const (
	AlertWarning  AlertType = "warning"
	AlertCritical AlertType = "critical"
	AlertExceeded AlertType = "exceeded"
)

// Alert records a budget threshold crossing. Delivery is at-least-once:
// the check is not deduplicated across RecordUsage calls.
type Alert struct {
	ID                string    `json:"id"`
	Type              AlertType `json:"type"`
	Message           string    `json:"message"`
	Timestamp         time.Time `json:"timestamp"`
	CurrentUsage      float64   `json:"current_usage"`
	Threshold         float64   `json:"threshold"`
	RecommendedAction string    `json:"recommended_action"`
}
