// Package scheduler wraps robfig/cron to drive budget period rollover.
// The ledger has no implicit rollover — resets only happen when this
// engine (or an operator) invokes them.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Cron expressions with a seconds field (cron.WithSeconds).
const (
	dailyResetSpec   = "0 0 0 * * *" // midnight every day
	monthlyResetSpec = "0 0 0 1 * *" // midnight on the 1st
)

// UsageResetter can roll the budget periods over.
type UsageResetter interface {
	ResetDailyUsage()
	ResetMonthlyUsage()
}

// ResetAnnouncer is told about completed rollovers. May be nil.
type ResetAnnouncer interface {
	PublishUsageReset(period string)
}

// Engine manages the cron scheduler.
type Engine struct {
	cron      *cron.Cron
	ledger    UsageResetter
	announcer ResetAnnouncer
	log       *zap.SugaredLogger
}

// New creates a cron-based Engine.
func New(ledger UsageResetter, announcer ResetAnnouncer, log *zap.SugaredLogger) *Engine {
	return &Engine{
		cron:      cron.New(cron.WithSeconds()),
		ledger:    ledger,
		announcer: announcer,
		log:       log,
	}
}

// Start registers the reset jobs and begins the cron engine. The engine
// stops when the context is cancelled.
func (e *Engine) Start(ctx context.Context) error {
	if _, err := e.cron.AddFunc(dailyResetSpec, func() {
		e.ledger.ResetDailyUsage()
		e.announce("daily")
	}); err != nil {
		return fmt.Errorf("scheduler.Start: daily job: %w", err)
	}
	if _, err := e.cron.AddFunc(monthlyResetSpec, func() {
		e.ledger.ResetMonthlyUsage()
		e.announce("monthly")
	}); err != nil {
		return fmt.Errorf("scheduler.Start: monthly job: %w", err)
	}

	e.cron.Start()
	go func() {
		<-ctx.Done()
		e.cron.Stop()
	}()
	return nil
}

func (e *Engine) announce(period string) {
	e.log.Infow("budget period reset", "period", period)
	if e.announcer != nil {
		e.announcer.PublishUsageReset(period)
	}
}
