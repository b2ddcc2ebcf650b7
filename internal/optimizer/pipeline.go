package optimizer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourusername/promptwarden/internal/budget"
	"github.com/yourusername/promptwarden/internal/session"
	"github.com/yourusername/promptwarden/internal/template"
	"github.com/yourusername/promptwarden/internal/tokenizer"
)

// Request is the caller's optimization request.
type Request struct {
	ToolName         string           `json:"tool_name"`
	OriginalPrompt   string           `json:"original_prompt"`
	Context          template.Context `json:"context"`
	UserID           string           `json:"user_id,omitempty"`
	Priority         budget.Priority  `json:"priority,omitempty"` // defaults to medium
	Strategy         string           `json:"strategy,omitempty"` // pins a strategy
	TargetReduction  float64          `json:"target_reduction,omitempty"`
	MaxTokens        int              `json:"max_tokens,omitempty"`
	MaxCost          float64          `json:"max_cost,omitempty"`
	QualityThreshold float64          `json:"quality_threshold,omitempty"`
}

// Fallback is a usable substitute prompt returned with a soft failure.
type Fallback struct {
	OptimizedPrompt string  `json:"optimized_prompt"`
	QualityScore    float64 `json:"quality_score"`
	Strategy        string  `json:"strategy"`
}

// Result is the optimization outcome. Denials and internal failures are
// soft: Success=false with a reason and the original (or fallback) prompt,
// never an error to the caller.
type Result struct {
	Success         bool      `json:"success"`
	OptimizedPrompt string    `json:"optimized_prompt"`
	TokenReduction  int       `json:"token_reduction"`
	EstimatedTokens int       `json:"estimated_tokens"`
	Strategy        string    `json:"strategy"`
	QualityScore    float64   `json:"quality_score"`
	Reason          string    `json:"reason,omitempty"`
	Fallback        *Fallback `json:"fallback,omitempty"`
}

// TokenSavings summarizes a recorded optimization.
type TokenSavings struct {
	Original            int     `json:"original"`
	Optimized           int     `json:"optimized"`
	ReductionPercentage float64 `json:"reduction_percentage"`
}

// RecordMetadata carries diagnostics for a recorded optimization.
type RecordMetadata struct {
	OptimizationTime time.Duration `json:"optimization_time"`
	StrategyReasons  []string      `json:"strategy_reasons"`
	ContextInjected  bool          `json:"context_injected"`
	TemplateUsed     string        `json:"template_used,omitempty"`
}

// Record is one completed optimization, kept in the in-process history for
// analytics queries.
type Record struct {
	RequestID       string         `json:"request_id"`
	ToolName        string         `json:"tool_name"`
	OriginalPrompt  string         `json:"original_prompt"`
	OptimizedPrompt string         `json:"optimized_prompt"`
	Strategy        []string       `json:"strategy"`
	TokenSavings    TokenSavings   `json:"token_savings"`
	QualityScore    float64        `json:"quality_score"`
	Metadata        RecordMetadata `json:"metadata"`
	CreatedAt       time.Time      `json:"created_at"`
}

// HistoryWriter persists completed optimizations. Persistence is an audit
// log — the in-memory history stays authoritative for analytics.
type HistoryWriter interface {
	SaveOptimization(ctx context.Context, rec Record) error
}

// EventPublisher pushes completed optimizations to live subscribers.
type EventPublisher interface {
	PublishOptimization(rec Record)
}

// Pipeline is the top-level orchestrator: admission, template selection,
// transformation, re-measurement and usage reconciliation per call.
type Pipeline struct {
	ledger    *budget.Ledger
	registry  *template.Registry
	scorer    *template.Scorer
	sessions  *session.Store
	profiles  *session.Profiles
	history   HistoryWriter  // optional
	events    EventPublisher // optional
	heuristic Heuristic
	maxTokens int // default token ceiling when the request has none
	log       *zap.SugaredLogger

	mu      sync.Mutex
	records []Record
}

// NewPipeline wires the pipeline. history and events may be nil; heuristic
// nil means the no-op default.
func NewPipeline(
	ledger *budget.Ledger,
	registry *template.Registry,
	scorer *template.Scorer,
	sessions *session.Store,
	profiles *session.Profiles,
	history HistoryWriter,
	events EventPublisher,
	heuristic Heuristic,
	maxTokens int,
	log *zap.SugaredLogger,
) *Pipeline {
	if heuristic == nil {
		heuristic = NoopHeuristic{}
	}
	return &Pipeline{
		ledger:    ledger,
		registry:  registry,
		scorer:    scorer,
		sessions:  sessions,
		profiles:  profiles,
		history:   history,
		events:    events,
		heuristic: heuristic,
		maxTokens: maxTokens,
		log:       log,
	}
}

// Optimize runs the full per-call state machine. Every internal failure is
// converted to a soft-failure Result carrying a usable prompt.
func (p *Pipeline) Optimize(ctx context.Context, req Request) (res Result) {
	start := time.Now()
	prompt := req.OriginalPrompt

	defer func() {
		if rv := recover(); rv != nil {
			p.log.Errorw("optimize panic recovered", "panic", rv)
			res = softFailure(prompt, fmt.Sprintf("internal error: %v", rv))
		}
	}()

	// Admission is a suspension point: honor the caller's deadline.
	if ctx.Err() != nil {
		return softFailure(prompt, "deadline exceeded before admission")
	}

	est := tokenizer.EstimatePromptCost(prompt)
	priority := req.Priority
	if priority == "" {
		priority = budget.PriorityMedium
	}

	requestID := uuid.NewString()
	approval := p.ledger.RequestApproval(budget.Request{
		RequestID:             requestID,
		ToolName:              req.ToolName,
		EstimatedInputTokens:  est.InputTokens,
		EstimatedOutputTokens: est.OutputTokens,
		Priority:              priority,
		MaxCost:               req.MaxCost,
	})
	if !approval.Approved {
		res := softFailure(prompt, approval.Reason)
		res.EstimatedTokens = est.InputTokens
		// A locally compressed fallback costs nothing against the budget
		// and gives the caller something usable.
		comp := Compression{}.Apply(prompt, Input{Context: req.Context})
		if comp.Improved {
			res.Fallback = &Fallback{
				OptimizedPrompt: comp.Prompt,
				QualityScore:    computeQuality(ratioOf(prompt, comp.Prompt)),
				Strategy:        StrategyCompression,
			}
		}
		return res
	}

	// Template selection. Absence of a match is not fatal — the other
	// strategies work without one.
	ctxTemplate := req.Context
	ctxTemplate.ToolName = req.ToolName

	userID := req.UserID
	if userID == "" {
		userID = ctxTemplate.UserBehaviorProfile
	}
	var profile *session.UserProfile
	if userID != "" {
		if up, ok := p.profiles.Get(userID); ok {
			profile = &up
		}
	}

	var tmpl *template.Template
	if selected, err := p.scorer.Select(ctxTemplate, profile); err == nil {
		tmpl = &selected
	}

	strategyName := req.Strategy
	if strategyName == "" {
		if req.TargetReduction >= 0.4 {
			// An aggressive reduction target overrides auto-selection.
			strategyName = StrategyCompression
		} else {
			maxTokens := req.MaxTokens
			if maxTokens <= 0 {
				maxTokens = p.maxTokens
			}
			strategyName = autoSelect(est.InputTokens, maxTokens, ctxTemplate, tmpl != nil)
		}
	}

	in := Input{Context: ctxTemplate, Template: tmpl, Registry: p.registry}
	outcome := p.strategyFor(strategyName).Apply(prompt, in)

	optimizedTokens := tokenizer.EstimateTokens(outcome.Prompt)
	ratio := 1.0
	if est.InputTokens > 0 {
		ratio = float64(optimizedTokens) / float64(est.InputTokens)
	}
	quality := computeQuality(ratio)

	// A transformation below the caller's quality floor is discarded: the
	// original prompt is returned instead and the counters reflect that.
	if req.QualityThreshold > 0 && quality < req.QualityThreshold {
		outcome = Outcome{
			Prompt:   prompt,
			Improved: false,
			Reason:   "transformation quality below caller threshold, kept original",
		}
		optimizedTokens = est.InputTokens
		ratio = 1.0
		quality = computeQuality(ratio)
	}

	// Usage recording is the second suspension point. Past admission the
	// allocation must be reconciled even on deadline expiry, so the spend
	// is recorded before the soft failure is returned.
	p.ledger.RecordUsage(requestID, est.InputTokens, optimizedTokens)
	if ctx.Err() != nil {
		return softFailure(prompt, "deadline exceeded during optimization")
	}

	rec := Record{
		RequestID:       requestID,
		ToolName:        req.ToolName,
		OriginalPrompt:  prompt,
		OptimizedPrompt: outcome.Prompt,
		Strategy:        []string{strategyName},
		TokenSavings: TokenSavings{
			Original:            est.InputTokens,
			Optimized:           optimizedTokens,
			ReductionPercentage: (1 - ratio) * 100,
		},
		QualityScore: quality,
		Metadata: RecordMetadata{
			OptimizationTime: time.Since(start),
			StrategyReasons:  []string{outcome.Reason},
			ContextInjected:  strategyName == StrategyContextAware,
		},
		CreatedAt: time.Now(),
	}
	if tmpl != nil {
		rec.Metadata.TemplateUsed = tmpl.ID
		p.registry.IncrementUsage(tmpl.ID)
		if ctxTemplate.SessionID != "" {
			if err := p.sessions.RecordTemplateUse(ctxTemplate.SessionID, tmpl.ID); err != nil {
				p.log.Warnw("session record failed", "session_id", ctxTemplate.SessionID, "err", err)
			}
		}
	}

	p.mu.Lock()
	p.records = append(p.records, rec)
	p.mu.Unlock()

	if p.history != nil {
		if err := p.history.SaveOptimization(ctx, rec); err != nil {
			p.log.Warnw("history persist failed", "request_id", requestID, "err", err)
		}
	}
	if p.events != nil {
		p.events.PublishOptimization(rec)
	}

	return Result{
		Success:         true,
		OptimizedPrompt: outcome.Prompt,
		TokenReduction:  est.InputTokens - optimizedTokens,
		EstimatedTokens: optimizedTokens,
		Strategy:        strategyName,
		QualityScore:    quality,
		Reason:          outcome.Reason,
	}
}

// strategyFor maps a name to its implementation. Unknown names get the
// compression default.
func (p *Pipeline) strategyFor(name string) Strategy {
	switch name {
	case StrategyContextAware:
		return ContextAware{}
	case StrategyTemplateBased:
		return TemplateBased{}
	case StrategyAdaptive:
		return Adaptive{}
	case StrategyHeuristic:
		return heuristicStrategy{h: p.heuristic}
	default:
		return Compression{}
	}
}

func softFailure(prompt, reason string) Result {
	return Result{
		Success:         false,
		OptimizedPrompt: prompt,
		TokenReduction:  0,
		Strategy:        "none",
		Reason:          reason,
	}
}
