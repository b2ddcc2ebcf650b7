package optimizer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/promptwarden/internal/budget"
	"github.com/yourusername/promptwarden/internal/config"
	"github.com/yourusername/promptwarden/internal/session"
	"github.com/yourusername/promptwarden/internal/template"
)

type capturedRecord struct {
	records []Record
}

func (c *capturedRecord) SaveOptimization(_ context.Context, rec Record) error {
	c.records = append(c.records, rec)
	return nil
}

func (c *capturedRecord) PublishOptimization(rec Record) {
	c.records = append(c.records, rec)
}

func newTestPipeline(dailyBudget float64) (*Pipeline, *capturedRecord, *session.Store) {
	model := budget.NewCostModel(config.CostRates{
		InputTokenPrice:  0.00003,
		OutputTokenPrice: 0.00006,
		Model:            "claude-sonnet",
		Currency:         "USD",
	})
	ledger := budget.NewLedger(model, config.BudgetPolicy{
		DailyBudget:         dailyBudget,
		MonthlyBudget:       dailyBudget * 30,
		ReservePercent:      0.2,
		WarningThreshold:    0.75,
		CriticalThreshold:   0.9,
		MaxTokensPerRequest: 100000,
	}, nil, zap.NewNop().Sugar())

	registry := template.NewRegistry()
	for _, tm := range template.Builtins() {
		registry.Add(tm)
	}
	sessions := session.NewStore()
	sink := &capturedRecord{}

	p := NewPipeline(
		ledger, registry, template.NewScorer(registry),
		sessions, session.NewProfiles(),
		sink, sink, NoopHeuristic{},
		100000, zap.NewNop().Sugar(),
	)
	return p, sink, sessions
}

func TestOptimize_CompressionSuccess(t *testing.T) {
	p, sink, _ := newTestPipeline(100)

	res := p.Optimize(context.Background(), Request{
		ToolName:       "smart_review",
		OriginalPrompt: "Please kindly help me to implement the login form with validation and error messages.",
		Strategy:       StrategyCompression,
	})

	require.True(t, res.Success)
	assert.Equal(t, StrategyCompression, res.Strategy)
	assert.Greater(t, res.TokenReduction, 0)
	assert.NotContains(t, strings.ToLower(res.OptimizedPrompt), "please")
	assert.GreaterOrEqual(t, res.QualityScore, 0.0)
	assert.LessOrEqual(t, res.QualityScore, 100.0)

	// Persisted once, published once.
	assert.Len(t, sink.records, 2)
	assert.Len(t, p.History(), 1)

	// The spend was reconciled.
	daily, _ := p.ledger.UsageStats()
	assert.Equal(t, 1, daily.RequestCount)
	assert.Greater(t, daily.TotalCost, 0.0)
	assert.Zero(t, p.ledger.PendingCount())
}

func TestOptimize_DenialIsSoftWithFallback(t *testing.T) {
	p, _, _ := newTestPipeline(0.0001) // nothing fits

	prompt := "Please kindly help me to write the deployment runbook for the payment service."
	res := p.Optimize(context.Background(), Request{
		ToolName:       "smart_write",
		OriginalPrompt: prompt,
	})

	assert.False(t, res.Success)
	assert.Equal(t, prompt, res.OptimizedPrompt)
	assert.Equal(t, "none", res.Strategy)
	assert.NotEmpty(t, res.Reason)
	require.NotNil(t, res.Fallback)
	assert.Equal(t, StrategyCompression, res.Fallback.Strategy)
	assert.NotContains(t, strings.ToLower(res.Fallback.OptimizedPrompt), "please")

	// Denied work never touches the counters or the history.
	daily, _ := p.ledger.UsageStats()
	assert.Zero(t, daily.RequestCount)
	assert.Empty(t, p.History())
}

func TestOptimize_ExpiredDeadline(t *testing.T) {
	p, _, _ := newTestPipeline(100)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	res := p.Optimize(ctx, Request{
		ToolName:       "smart_write",
		OriginalPrompt: "please write tests",
	})
	assert.False(t, res.Success)
	assert.Equal(t, "please write tests", res.OptimizedPrompt)

	// Expired before admission: nothing was allocated or recorded.
	daily, _ := p.ledger.UsageStats()
	assert.Zero(t, daily.RequestCount)
	assert.Zero(t, p.ledger.PendingCount())
}

func TestOptimize_TemplateAutoSelected(t *testing.T) {
	p, _, sessions := newTestPipeline(100)

	res := p.Optimize(context.Background(), Request{
		ToolName:       "smart_begin",
		OriginalPrompt: "I want you to build a small inventory tracker with a web dashboard for the warehouse team.",
		Context: template.Context{
			TaskType:     "generation",
			UserLevel:    "beginner",
			OutputFormat: "a web app",
			SessionID:    "sess-42",
		},
	})

	require.True(t, res.Success)
	assert.Equal(t, StrategyTemplateBased, res.Strategy)

	recs := p.History()
	require.Len(t, recs, 1)
	assert.Equal(t, "smart_begin_generation_v1", recs[0].Metadata.TemplateUsed)

	// Template usage flowed into the registry counter and the session.
	got, ok := p.registry.Get("smart_begin_generation_v1")
	require.True(t, ok)
	assert.Equal(t, 1, got.UsageCount)

	sc, err := sessions.GetOrCreate("sess-42")
	require.NoError(t, err)
	assert.Equal(t, []string{"smart_begin_generation_v1"}, sc.TemplatesUsed)
}

func TestOptimize_NoSessionSkipsSessionStore(t *testing.T) {
	p, _, sessions := newTestPipeline(100)

	res := p.Optimize(context.Background(), Request{
		ToolName:       "smart_begin",
		OriginalPrompt: "build a url shortener service",
		Context: template.Context{
			TaskType:  "generation",
			UserLevel: "advanced",
		},
	})
	require.True(t, res.Success)

	// No session id means no session record, but the registry still counts.
	_, err := sessions.GetOrCreate("")
	assert.Error(t, err)
}

func TestOptimize_UnknownStrategyFallsBackToCompression(t *testing.T) {
	p, _, _ := newTestPipeline(100)

	res := p.Optimize(context.Background(), Request{
		ToolName:       "smart_review",
		OriginalPrompt: "please review the diff carefully",
		Strategy:       "quantum",
	})
	require.True(t, res.Success)
	assert.Equal(t, "quantum", res.Strategy)
	assert.NotContains(t, strings.ToLower(res.OptimizedPrompt), "please")
}

func TestOptimize_ProfileBiasesTemplateChoice(t *testing.T) {
	p, _, _ := newTestPipeline(100)
	p.profiles.Put(session.UserProfile{ID: "u7", ExperienceLevel: "advanced"})

	res := p.Optimize(context.Background(), Request{
		ToolName:       "smart_begin",
		OriginalPrompt: "I would like you to set up the monorepo tooling with linting and CI checks.",
		Context: template.Context{
			TaskType:            "generation",
			UserLevel:           "beginner",
			UserBehaviorProfile: "u7",
		},
	})
	require.True(t, res.Success)

	recs := p.History()
	require.Len(t, recs, 1)
	// The advanced profile's +15 outweighs the beginner segment bonus.
	assert.Equal(t, "smart_begin_generation_v2", recs[0].Metadata.TemplateUsed)
}

func TestOptimize_TargetReductionForcesCompression(t *testing.T) {
	p, _, _ := newTestPipeline(100)

	res := p.Optimize(context.Background(), Request{
		ToolName:        "smart_begin",
		OriginalPrompt:  "Please kindly help me to scaffold the billing module with tests.",
		TargetReduction: 0.5,
		Context: template.Context{
			TaskType:  "generation",
			UserLevel: "beginner",
		},
	})
	require.True(t, res.Success)
	// A matching template exists, but the aggressive target wins.
	assert.Equal(t, StrategyCompression, res.Strategy)
}

func TestOptimize_QualityThresholdKeepsOriginal(t *testing.T) {
	p, _, _ := newTestPipeline(100)

	prompt := "Please kindly help me to draft the incident report for last night."
	res := p.Optimize(context.Background(), Request{
		ToolName:         "smart_write",
		OriginalPrompt:   prompt,
		Strategy:         StrategyCompression,
		QualityThreshold: 100,
	})
	require.True(t, res.Success)
	assert.Equal(t, prompt, res.OptimizedPrompt)
	assert.Zero(t, res.TokenReduction)
	assert.Contains(t, res.Reason, "below caller threshold")
}

func TestAnalyticsAndMetrics(t *testing.T) {
	p, _, _ := newTestPipeline(100)

	assert.Zero(t, p.Analytics().TotalOptimizations)
	assert.Zero(t, p.PerformanceMetrics().OptimizationCount)

	for i := 0; i < 3; i++ {
		res := p.Optimize(context.Background(), Request{
			ToolName:       "smart_review",
			OriginalPrompt: "Please kindly help me to review this pull request and also flag the risky hunks.",
			Strategy:       StrategyCompression,
		})
		require.True(t, res.Success)
	}

	a := p.Analytics()
	assert.Equal(t, 3, a.TotalOptimizations)
	assert.Equal(t, 3, a.StrategyCounts[StrategyCompression])
	assert.Greater(t, a.AverageReductionPct, 0.0)
	assert.GreaterOrEqual(t, a.AverageQuality, 0.0)
	assert.LessOrEqual(t, a.AverageQuality, 100.0)

	m := p.PerformanceMetrics()
	assert.Equal(t, 3, m.OptimizationCount)
	assert.Greater(t, m.TotalTokensSaved, 0)
}
