// Package config loads daemon configuration from environment variables
// and validates the cost and budget records at construction time.
package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// CostRates prices tokens for a single model.
type CostRates struct {
	InputTokenPrice  float64 `env:"COST_INPUT_TOKEN_PRICE" env-default:"0.00003"`
	OutputTokenPrice float64 `env:"COST_OUTPUT_TOKEN_PRICE" env-default:"0.00006"`
	Model            string  `env:"COST_MODEL" env-default:"claude-sonnet"`
	Currency         string  `env:"COST_CURRENCY" env-default:"USD"`
}

// BudgetPolicy holds the admission-control limits.
type BudgetPolicy struct {
	DailyBudget         float64 `env:"BUDGET_DAILY" env-default:"100"`
	MonthlyBudget       float64 `env:"BUDGET_MONTHLY" env-default:"2000"`
	ReservePercent      float64 `env:"BUDGET_RESERVE_PCT" env-default:"0.2"`
	WarningThreshold    float64 `env:"BUDGET_WARNING_PCT" env-default:"0.75"`
	CriticalThreshold   float64 `env:"BUDGET_CRITICAL_PCT" env-default:"0.9"`
	MaxTokensPerRequest int     `env:"BUDGET_MAX_TOKENS_PER_REQUEST" env-default:"100000"`
}

// Config holds all runtime configuration for PromptWarden.
type Config struct {
	Port   string `env:"PORT" env-default:"8080"`
	DBPath string `env:"DB_PATH" env-default:"promptwarden.db"`

	TelegramToken  string `env:"TELEGRAM_TOKEN"`
	TelegramChatID int64  `env:"TELEGRAM_CHAT_ID"`

	AlertWebhookURL string `env:"ALERT_WEBHOOK_URL"`

	Rates  CostRates
	Policy BudgetPolicy
}

// InvalidConfigError reports a configuration value outside its allowed range.
type InvalidConfigError struct {
	Field string
	Value float64
	Range string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("config: %s=%g out of range %s", e.Field, e.Value, e.Range)
}

// Load reads environment variables into a Config and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces the numeric ranges for the cost and budget records.
// Called once at construction — a violation is a fail-fast boundary error.
func (c *Config) Validate() error {
	checks := []struct {
		field string
		value float64
		min   float64
		max   float64
		rng   string
	}{
		{"COST_INPUT_TOKEN_PRICE", c.Rates.InputTokenPrice, 0, 1, "(0, 1]"},
		{"COST_OUTPUT_TOKEN_PRICE", c.Rates.OutputTokenPrice, 0, 1, "(0, 1]"},
		{"BUDGET_DAILY", c.Policy.DailyBudget, 0, 1e9, "(0, 1e9]"},
		{"BUDGET_MONTHLY", c.Policy.MonthlyBudget, 0, 1e9, "(0, 1e9]"},
	}
	for _, ch := range checks {
		if ch.value <= ch.min || ch.value > ch.max {
			return &InvalidConfigError{Field: ch.field, Value: ch.value, Range: ch.rng}
		}
	}

	fractions := []struct {
		field string
		value float64
	}{
		{"BUDGET_RESERVE_PCT", c.Policy.ReservePercent},
		{"BUDGET_WARNING_PCT", c.Policy.WarningThreshold},
		{"BUDGET_CRITICAL_PCT", c.Policy.CriticalThreshold},
	}
	for _, f := range fractions {
		if f.value < 0 || f.value >= 1 {
			return &InvalidConfigError{Field: f.field, Value: f.value, Range: "[0, 1)"}
		}
	}

	if c.Policy.WarningThreshold >= c.Policy.CriticalThreshold {
		return &InvalidConfigError{
			Field: "BUDGET_WARNING_PCT",
			Value: c.Policy.WarningThreshold,
			Range: "below BUDGET_CRITICAL_PCT",
		}
	}
	if c.Policy.MaxTokensPerRequest <= 0 {
		return &InvalidConfigError{
			Field: "BUDGET_MAX_TOKENS_PER_REQUEST",
			Value: float64(c.Policy.MaxTokensPerRequest),
			Range: "(0, ∞)",
		}
	}
	if c.Policy.MonthlyBudget < c.Policy.DailyBudget {
		return &InvalidConfigError{
			Field: "BUDGET_MONTHLY",
			Value: c.Policy.MonthlyBudget,
			Range: "≥ BUDGET_DAILY",
		}
	}
	return nil
}
