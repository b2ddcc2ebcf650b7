package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Rates: CostRates{
			InputTokenPrice:  0.00003,
			OutputTokenPrice: 0.00006,
			Model:            "claude-sonnet",
			Currency:         "USD",
		},
		Policy: BudgetPolicy{
			DailyBudget:         100,
			MonthlyBudget:       2000,
			ReservePercent:      0.2,
			WarningThreshold:    0.75,
			CriticalThreshold:   0.9,
			MaxTokensPerRequest: 100000,
		},
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_Ranges(t *testing.T) {
	var invErr *InvalidConfigError

	cfg := validConfig()
	cfg.Rates.InputTokenPrice = 0
	err := cfg.Validate()
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "COST_INPUT_TOKEN_PRICE", invErr.Field)

	cfg = validConfig()
	cfg.Policy.DailyBudget = -1
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Policy.ReservePercent = 1.2
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Policy.WarningThreshold = 0.95 // above critical
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Policy.MaxTokensPerRequest = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Policy.MonthlyBudget = 50 // below daily
	assert.Error(t, cfg.Validate())
}
