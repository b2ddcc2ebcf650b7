package optimizer

import (
	"sort"
	"time"
)

// Analytics summarizes the in-process optimization history.
type Analytics struct {
	TotalOptimizations  int            `json:"total_optimizations"`
	AverageReductionPct float64        `json:"average_reduction_pct"`
	AverageQuality      float64        `json:"average_quality"`
	StrategyCounts      map[string]int `json:"strategy_counts"`
	TopTemplates        []TemplateUse  `json:"top_templates"`
}

// TemplateUse counts how often a template backed an optimization.
type TemplateUse struct {
	TemplateID string `json:"template_id"`
	Count      int    `json:"count"`
}

// PerformanceMetrics aggregates timing and savings over the history.
type PerformanceMetrics struct {
	AverageOptimizationTime time.Duration `json:"average_optimization_time"`
	TotalTokensSaved        int           `json:"total_tokens_saved"`
	OptimizationCount       int           `json:"optimization_count"`
}

// Analytics computes usage analytics over the recorded history.
func (p *Pipeline) Analytics() Analytics {
	p.mu.Lock()
	defer p.mu.Unlock()

	a := Analytics{StrategyCounts: make(map[string]int)}
	a.TotalOptimizations = len(p.records)
	if a.TotalOptimizations == 0 {
		return a
	}

	templateCounts := make(map[string]int)
	var sumReduction, sumQuality float64
	for _, rec := range p.records {
		sumReduction += rec.TokenSavings.ReductionPercentage
		sumQuality += rec.QualityScore
		for _, s := range rec.Strategy {
			a.StrategyCounts[s]++
		}
		if rec.Metadata.TemplateUsed != "" {
			templateCounts[rec.Metadata.TemplateUsed]++
		}
	}
	a.AverageReductionPct = sumReduction / float64(a.TotalOptimizations)
	a.AverageQuality = sumQuality / float64(a.TotalOptimizations)

	for id, n := range templateCounts {
		a.TopTemplates = append(a.TopTemplates, TemplateUse{TemplateID: id, Count: n})
	}
	sort.Slice(a.TopTemplates, func(i, j int) bool {
		if a.TopTemplates[i].Count != a.TopTemplates[j].Count {
			return a.TopTemplates[i].Count > a.TopTemplates[j].Count
		}
		return a.TopTemplates[i].TemplateID < a.TopTemplates[j].TemplateID
	})
	if len(a.TopTemplates) > 5 {
		a.TopTemplates = a.TopTemplates[:5]
	}
	return a
}

// PerformanceMetrics computes timing and savings aggregates.
func (p *Pipeline) PerformanceMetrics() PerformanceMetrics {
	p.mu.Lock()
	defer p.mu.Unlock()

	m := PerformanceMetrics{OptimizationCount: len(p.records)}
	if m.OptimizationCount == 0 {
		return m
	}
	var totalTime time.Duration
	for _, rec := range p.records {
		totalTime += rec.Metadata.OptimizationTime
		m.TotalTokensSaved += rec.TokenSavings.Original - rec.TokenSavings.Optimized
	}
	m.AverageOptimizationTime = totalTime / time.Duration(m.OptimizationCount)
	return m
}

// History returns a copy of the recorded optimizations, oldest first.
func (p *Pipeline) History() []Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Record, len(p.records))
	copy(out, p.records)
	return out
}
