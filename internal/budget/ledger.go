package budget

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourusername/promptwarden/internal/config"
)

// maxAlerts bounds the in-memory alert ring.
const maxAlerts = 100

// AlertSink receives every alert the ledger raises.
type AlertSink interface {
	PublishAlert(alert Alert)
}

// Ledger owns cumulative daily/monthly usage, enforces limits and reserves,
// and reconciles per-request allocations. All in-flight optimize calls share
// these counters, so every mutation happens under a single mutex.
type Ledger struct {
	mu      sync.Mutex
	model   *CostModel
	policy  config.BudgetPolicy
	daily   UsageStats
	monthly UsageStats
	pending map[string]pendingAllocation
	alerts  []Alert
	sink    AlertSink
	log     *zap.SugaredLogger
}

type pendingAllocation struct {
	request  Request
	approval Approval
}

// NewLedger creates a Ledger with fresh daily and monthly periods.
// The sink may be nil (alerts are still kept in the ring).
func NewLedger(model *CostModel, policy config.BudgetPolicy, sink AlertSink, log *zap.SugaredLogger) *Ledger {
	now := time.Now()
	return &Ledger{
		model:   model,
		policy:  policy,
		daily:   newPeriod("daily", now),
		monthly: newPeriod("monthly", now),
		pending: make(map[string]pendingAllocation),
		sink:    sink,
		log:     log,
	}
}

func newPeriod(period string, now time.Time) UsageStats {
	var start, end time.Time
	switch period {
	case "monthly":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)
	default:
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 0, 1)
	}
	return UsageStats{Period: period, StartDate: start, EndDate: end}
}

// RequestApproval decides whether the estimated work fits the remaining
// daily and monthly budgets. Approved requests are held as pending
// allocations until RecordUsage reconciles them.
func (l *Ledger) RequestApproval(req Request) Approval {
	l.mu.Lock()
	defer l.mu.Unlock()

	estCost := l.model.Cost(req.EstimatedInputTokens, req.EstimatedOutputTokens)
	dailyRemaining := l.policy.DailyBudget - l.daily.TotalCost
	monthlyRemaining := l.policy.MonthlyBudget - l.monthly.TotalCost

	if total := req.EstimatedInputTokens + req.EstimatedOutputTokens; total > l.policy.MaxTokensPerRequest {
		return l.deny(req, estCost, dailyRemaining,
			fmt.Sprintf("request of %d tokens exceeds the per-request cap of %d", total, l.policy.MaxTokensPerRequest))
	}
	if req.MaxCost > 0 && estCost > req.MaxCost {
		return l.deny(req, estCost, dailyRemaining,
			fmt.Sprintf("estimated cost %.4f exceeds the caller cap of %.4f", estCost, req.MaxCost))
	}
	if estCost > monthlyRemaining {
		return l.deny(req, estCost, dailyRemaining,
			fmt.Sprintf("estimated cost %.4f exceeds monthly remaining %.4f", estCost, monthlyRemaining))
	}

	// Priority-sensitive daily check: high may dip 10% past the remaining
	// daily budget, low must stay out of the reserve.
	dailyCap := dailyRemaining
	switch req.Priority {
	case PriorityHigh:
		dailyCap = dailyRemaining * 1.1
	case PriorityLow:
		dailyCap = dailyRemaining - l.policy.DailyBudget*l.policy.ReservePercent
	}
	if estCost > dailyCap {
		return l.deny(req, estCost, dailyRemaining,
			fmt.Sprintf("estimated cost %.4f exceeds daily remaining %.4f for %s priority", estCost, dailyCap, req.Priority))
	}

	approval := Approval{
		Approved: true,
		AllocatedTokens: Allocation{
			Input:  req.EstimatedInputTokens,
			Output: req.EstimatedOutputTokens,
		},
		EstimatedCost: estCost,
	}
	l.pending[req.RequestID] = pendingAllocation{request: req, approval: approval}
	return approval
}

// deny builds the denial with a computed cheaper alternative.
// Caller holds the mutex.
func (l *Ledger) deny(req Request, estCost, dailyRemaining float64, reason string) Approval {
	reduced := int(math.Min(
		0.7*float64(req.EstimatedInputTokens),
		math.Floor(math.Max(dailyRemaining, 0)/l.model.InputRate()),
	))
	if reduced < 0 {
		reduced = 0
	}

	fallback := "defer or use cache"
	if req.EstimatedInputTokens > 0 {
		switch ratio := float64(reduced) / float64(req.EstimatedInputTokens); {
		case ratio >= 0.8:
			fallback = "aggressive compression"
		case ratio >= 0.5:
			fallback = "template simplification"
		}
	}

	return Approval{
		Approved:      false,
		EstimatedCost: estCost,
		Reason:        reason,
		Alternatives: &Alternatives{
			ReducedTokens:    reduced,
			FallbackStrategy: fallback,
		},
	}
}

// RecordUsage reconciles a pending allocation with the actual token counts,
// folds the cost into both periods and re-runs the alert checks.
// Unknown request ids are a logged no-op, so a second call for the same id
// after the first removed the allocation is harmless.
func (l *Ledger) RecordUsage(requestID string, actualInputTokens, actualOutputTokens int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.pending[requestID]; !ok {
		l.log.Warnw("usage recorded for unknown request", "request_id", requestID)
		return
	}
	delete(l.pending, requestID)

	cost := l.model.Cost(actualInputTokens, actualOutputTokens)
	for _, stats := range []*UsageStats{&l.daily, &l.monthly} {
		stats.TotalTokens.Input += actualInputTokens
		stats.TotalTokens.Output += actualOutputTokens
		stats.TotalTokens.Total = stats.TotalTokens.Input + stats.TotalTokens.Output
		stats.TotalCost += cost
		stats.RequestCount++
		stats.AverageTokensPerRequest = float64(stats.TotalTokens.Total) / float64(stats.RequestCount)
	}

	l.checkAlerts(&l.daily, l.policy.DailyBudget)
	l.checkAlerts(&l.monthly, l.policy.MonthlyBudget)
}

// checkAlerts raises an alert when the period's spend crosses a threshold.
// At-least-once: every RecordUsage past a threshold re-raises.
// Caller holds the mutex.
func (l *Ledger) checkAlerts(stats *UsageStats, budget float64) {
	if budget <= 0 {
		return
	}
	usagePct := stats.TotalCost / budget

	var (
		typ    AlertType
		thresh float64
		action string
	)
	switch {
	case usagePct >= 1.0:
		typ, thresh, action = AlertExceeded, 1.0, "deny all non-high-priority work until reset"
	case usagePct >= l.policy.CriticalThreshold:
		typ, thresh, action = AlertCritical, l.policy.CriticalThreshold, "restrict to high-priority requests"
	case usagePct >= l.policy.WarningThreshold:
		typ, thresh, action = AlertWarning, l.policy.WarningThreshold, "prefer compression strategies"
	default:
		return
	}

	alert := Alert{
		ID:                uuid.NewString(),
		Type:              typ,
		Message:           fmt.Sprintf("%s budget at %.1f%% (%.4f of %.4f)", stats.Period, usagePct*100, stats.TotalCost, budget),
		Timestamp:         time.Now(),
		CurrentUsage:      stats.TotalCost,
		Threshold:         thresh,
		RecommendedAction: action,
	}
	l.alerts = append(l.alerts, alert)
	if len(l.alerts) > maxAlerts {
		l.alerts = l.alerts[len(l.alerts)-maxAlerts:]
	}
	l.log.Warnw("budget alert", "type", typ, "period", stats.Period, "usage_pct", usagePct)
	if l.sink != nil {
		l.sink.PublishAlert(alert)
	}
}

// ResetDailyUsage starts a fresh daily period. Invoked by the scheduler at
// midnight; there is no implicit rollover.
func (l *Ledger) ResetDailyUsage() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.daily = newPeriod("daily", time.Now())
	l.log.Infow("daily usage reset")
}

// ResetMonthlyUsage starts a fresh monthly period.
func (l *Ledger) ResetMonthlyUsage() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.monthly = newPeriod("monthly", time.Now())
	l.log.Infow("monthly usage reset")
}

// UsageStats returns copies of the current daily and monthly stats.
func (l *Ledger) UsageStats() (daily, monthly UsageStats) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.daily, l.monthly
}

// Alerts returns a copy of the alert ring, oldest first.
func (l *Ledger) Alerts() []Alert {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Alert, len(l.alerts))
	copy(out, l.alerts)
	return out
}

// PendingCount reports how many approvals await reconciliation.
func (l *Ledger) PendingCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}
