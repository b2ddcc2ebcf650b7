// Package budget implements the admission-control ledger: cost modeling,
// daily/monthly usage accounting, approval decisions and alerting.
package budget

import "github.com/yourusername/promptwarden/internal/config"

// CostModel maps token counts to monetary cost using per-token rates.
type CostModel struct {
	rates config.CostRates
}

// NewCostModel creates a CostModel from the configured rates.
func NewCostModel(rates config.CostRates) *CostModel {
	return &CostModel{rates: rates}
}

// Cost returns the monetary cost of the given token counts.
func (m *CostModel) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*m.rates.InputTokenPrice +
		float64(outputTokens)*m.rates.OutputTokenPrice
}

// InputRate returns the price of a single input token.
func (m *CostModel) InputRate() float64 {
	return m.rates.InputTokenPrice
}

// Model returns the model label the rates apply to.
func (m *CostModel) Model() string {
	return m.rates.Model
}

// Currency returns the currency the rates are denominated in.
func (m *CostModel) Currency() string {
	return m.rates.Currency
}
