package budget

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/promptwarden/internal/config"
)

func testRates() config.CostRates {
	return config.CostRates{
		InputTokenPrice:  0.00003,
		OutputTokenPrice: 0.00006,
		Model:            "claude-sonnet",
		Currency:         "USD",
	}
}

func testPolicy() config.BudgetPolicy {
	return config.BudgetPolicy{
		DailyBudget:         100,
		MonthlyBudget:       2000,
		ReservePercent:      0.2,
		WarningThreshold:    0.75,
		CriticalThreshold:   0.9,
		MaxTokensPerRequest: 1000000,
	}
}

func newTestLedger(sink AlertSink) *Ledger {
	return NewLedger(NewCostModel(testRates()), testPolicy(), sink, zap.NewNop().Sugar())
}

func TestCostModel(t *testing.T) {
	m := NewCostModel(testRates())
	assert.InDelta(t, 1.5, m.Cost(50000, 0), 1e-9)
	assert.InDelta(t, 0.00003*1000+0.00006*500, m.Cost(1000, 500), 1e-9)
	assert.Equal(t, 0.0, m.Cost(0, 0))
}

func TestRequestApproval_MediumPriority(t *testing.T) {
	l := newTestLedger(nil)

	// 50k input tokens at 0.00003 → cost 1.5, well within 100/day.
	a := l.RequestApproval(Request{
		RequestID:            "req-1",
		ToolName:             "smart_begin",
		EstimatedInputTokens: 50000,
		Priority:             PriorityMedium,
	})
	require.True(t, a.Approved)
	assert.InDelta(t, 1.5, a.EstimatedCost, 1e-9)
	assert.Equal(t, 50000, a.AllocatedTokens.Input)

	l.RecordUsage("req-1", 50000, 0)
	daily, monthly := l.UsageStats()
	assert.InDelta(t, 1.5, daily.TotalCost, 1e-9)
	assert.InDelta(t, 1.5, monthly.TotalCost, 1e-9)
	assert.Equal(t, 1, daily.RequestCount)
	assert.Equal(t, daily.TotalTokens.Input+daily.TotalTokens.Output, daily.TotalTokens.Total)
}

func TestRequestApproval_LowPriorityReserve(t *testing.T) {
	l := newTestLedger(nil)

	// Burn the daily budget down to 1 remaining.
	spend := l.RequestApproval(Request{
		RequestID:            "burn",
		EstimatedInputTokens: 3300000, // 99.0
		Priority:             PriorityHigh,
	})
	require.True(t, spend.Approved)
	l.RecordUsage("burn", 3300000, 0)

	// Reserve is 20 of 100; low priority must fit in 1 - 20 < 0 → denied.
	a := l.RequestApproval(Request{
		RequestID:             "low",
		EstimatedInputTokens:  100000,
		EstimatedOutputTokens: 20000,
		Priority:              PriorityLow,
	})
	require.False(t, a.Approved)
	require.NotNil(t, a.Alternatives)
	assert.Less(t, a.Alternatives.ReducedTokens, 100000)
	assert.NotEmpty(t, a.Alternatives.FallbackStrategy)
}

func TestRequestApproval_HighPriorityRelaxation(t *testing.T) {
	l := newTestLedger(nil)

	burn := l.RequestApproval(Request{
		RequestID:            "burn",
		EstimatedInputTokens: 3000000, // 90.0 spent, 10 remaining
		Priority:             PriorityMedium,
	})
	require.True(t, burn.Approved)
	l.RecordUsage("burn", 3000000, 0)

	// Cost 10.5 exceeds the 10 remaining but sits within the 10% grace.
	over := Request{
		RequestID:            "grace",
		EstimatedInputTokens: 350000, // 10.5
	}
	over.Priority = PriorityMedium
	assert.False(t, l.RequestApproval(over).Approved)

	over.RequestID = "grace-high"
	over.Priority = PriorityHigh
	assert.True(t, l.RequestApproval(over).Approved)
}

func TestRequestApproval_Monotonicity(t *testing.T) {
	l := newTestLedger(nil)

	big := l.RequestApproval(Request{
		RequestID:            "big",
		EstimatedInputTokens: 2000000,
		Priority:             PriorityMedium,
	})
	require.True(t, big.Approved)

	// Strictly cheaper request with the same priority must also pass.
	small := l.RequestApproval(Request{
		RequestID:            "small",
		EstimatedInputTokens: 1000,
		Priority:             PriorityMedium,
	})
	assert.True(t, small.Approved)
}

func TestRequestApproval_MaxCostCap(t *testing.T) {
	l := newTestLedger(nil)
	a := l.RequestApproval(Request{
		RequestID:            "capped",
		EstimatedInputTokens: 100000, // cost 3.0
		Priority:             PriorityMedium,
		MaxCost:              1.0,
	})
	assert.False(t, a.Approved)
	assert.Contains(t, a.Reason, "caller cap")
}

func TestRequestApproval_TokenCap(t *testing.T) {
	l := NewLedger(NewCostModel(testRates()), config.BudgetPolicy{
		DailyBudget:         100,
		MonthlyBudget:       2000,
		ReservePercent:      0.2,
		WarningThreshold:    0.75,
		CriticalThreshold:   0.9,
		MaxTokensPerRequest: 500,
	}, nil, zap.NewNop().Sugar())

	a := l.RequestApproval(Request{
		RequestID:            "huge",
		EstimatedInputTokens: 501,
		Priority:             PriorityMedium,
	})
	assert.False(t, a.Approved)
	assert.Contains(t, a.Reason, "per-request cap")
}

func TestDenialAlternatives_FallbackBands(t *testing.T) {
	l := newTestLedger(nil)

	// Nearly exhaust the budget so reductions are driven by remaining funds.
	burn := l.RequestApproval(Request{
		RequestID:            "burn",
		EstimatedInputTokens: 3300000, // 99.0
		Priority:             PriorityHigh,
	})
	require.True(t, burn.Approved)
	l.RecordUsage("burn", 3300000, 0)

	// Remaining 1.0 → floor(1/0.00003)=33333 tokens available.
	// 0.7×40000=28000 < 33333 → reduced 28000, ratio 0.7 → middle band.
	a := l.RequestApproval(Request{
		RequestID:             "d1",
		EstimatedInputTokens:  40000,
		EstimatedOutputTokens: 40000,
		Priority:              PriorityMedium,
	})
	require.False(t, a.Approved)
	assert.Equal(t, 28000, a.Alternatives.ReducedTokens)
	assert.Equal(t, "template simplification", a.Alternatives.FallbackStrategy)

	// 33333/400000 ≈ 0.083 → defer band.
	a = l.RequestApproval(Request{
		RequestID:             "d2",
		EstimatedInputTokens:  400000,
		EstimatedOutputTokens: 400000,
		Priority:              PriorityMedium,
	})
	require.False(t, a.Approved)
	assert.Equal(t, 33333, a.Alternatives.ReducedTokens)
	assert.Equal(t, "defer or use cache", a.Alternatives.FallbackStrategy)
}

func TestRecordUsage_UnknownAndIdempotent(t *testing.T) {
	l := newTestLedger(nil)

	// Unknown id: logged no-op.
	l.RecordUsage("ghost", 1000, 1000)
	daily, _ := l.UsageStats()
	assert.Zero(t, daily.TotalCost)

	a := l.RequestApproval(Request{
		RequestID:            "once",
		EstimatedInputTokens: 1000,
		Priority:             PriorityMedium,
	})
	require.True(t, a.Approved)

	l.RecordUsage("once", 1000, 0)
	l.RecordUsage("once", 1000, 0) // second call is a no-op

	daily, _ = l.UsageStats()
	assert.Equal(t, 1, daily.RequestCount)
	assert.InDelta(t, 0.03, daily.TotalCost, 1e-9)
	assert.Zero(t, l.PendingCount())
}

func TestBudgetConservation(t *testing.T) {
	l := newTestLedger(nil)

	var want float64
	m := NewCostModel(testRates())
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("req-%d", i)
		in, out := 1000*(i+1), 500*i
		a := l.RequestApproval(Request{
			RequestID:             id,
			EstimatedInputTokens:  in,
			EstimatedOutputTokens: out,
			Priority:              PriorityMedium,
		})
		require.True(t, a.Approved)
		l.RecordUsage(id, in, out)
		want += m.Cost(in, out)
	}

	daily, monthly := l.UsageStats()
	assert.InDelta(t, want, daily.TotalCost, 1e-9)
	assert.InDelta(t, want, monthly.TotalCost, 1e-9)
	assert.Equal(t, 20, daily.RequestCount)
	assert.InDelta(t,
		float64(daily.TotalTokens.Total)/float64(daily.RequestCount),
		daily.AverageTokensPerRequest, 1e-9)
}

type captureSink struct {
	alerts []Alert
}

func (c *captureSink) PublishAlert(a Alert) { c.alerts = append(c.alerts, a) }

func TestAlerts_ThresholdCrossings(t *testing.T) {
	sink := &captureSink{}
	l := newTestLedger(sink)

	approve := func(id string, tokens int) {
		a := l.RequestApproval(Request{
			RequestID:            id,
			EstimatedInputTokens: tokens,
			Priority:             PriorityHigh,
		})
		require.True(t, a.Approved)
		l.RecordUsage(id, tokens, 0)
	}

	approve("warm", 2600000) // 78 → daily warning
	require.NotEmpty(t, sink.alerts)
	assert.Equal(t, AlertWarning, sink.alerts[0].Type)

	approve("crit", 500000) // 93 → daily critical
	last := sink.alerts[len(sink.alerts)-1]
	assert.Equal(t, AlertCritical, last.Type)

	assert.NotEmpty(t, l.Alerts())
}

func TestResetDailyUsage(t *testing.T) {
	l := newTestLedger(nil)

	a := l.RequestApproval(Request{
		RequestID:            "r",
		EstimatedInputTokens: 50000,
		Priority:             PriorityMedium,
	})
	require.True(t, a.Approved)
	l.RecordUsage("r", 50000, 0)

	l.ResetDailyUsage()
	daily, monthly := l.UsageStats()
	assert.Zero(t, daily.TotalCost)
	assert.Zero(t, daily.RequestCount)
	// Monthly accumulation survives a daily rollover.
	assert.InDelta(t, 1.5, monthly.TotalCost, 1e-9)

	l.ResetMonthlyUsage()
	_, monthly = l.UsageStats()
	assert.Zero(t, monthly.TotalCost)
}
