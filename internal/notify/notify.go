// Package notify routes budget alerts to the configured adapters.
package notify

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/yourusername/promptwarden/internal/budget"
)

// Sender can send a plain text message.
type Sender interface {
	Send(msg string) error
}

// WebhookFirer can fire a webhook event.
type WebhookFirer interface {
	Fire(event string, payload interface{})
}

// Dispatcher routes alerts to Telegram and webhooks. Implements
// budget.AlertSink.
type Dispatcher struct {
	telegram Sender
	webhook  WebhookFirer
	log      *zap.SugaredLogger
}

// New creates a Dispatcher. Both telegram and webhook may be nil (disabled).
func New(telegram Sender, webhook WebhookFirer, log *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{telegram: telegram, webhook: webhook, log: log}
}

// PublishAlert dispatches a budget alert to all configured adapters.
// Warning-level alerts go to webhooks only; critical and exceeded also
// page via Telegram.
func (d *Dispatcher) PublishAlert(alert budget.Alert) {
	if d.webhook != nil {
		d.webhook.Fire("budget_alert", alert)
	}
	if d.telegram != nil && alert.Type != budget.AlertWarning {
		msg := fmt.Sprintf("*Budget %s*\n%s\nRecommended: %s",
			alert.Type, alert.Message, alert.RecommendedAction)
		if err := d.telegram.Send(msg); err != nil {
			d.log.Warnw("telegram alert failed", "err", err)
		}
	}
}
