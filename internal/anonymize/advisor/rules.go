package advisor

import (
	"context"

	"personaforge/internal/anonymize/models"
	"personaforge/internal/anonymize/risk"
)

const (
	fallbackMergeSize      = 10
	concentrationThreshold = 0.5
	minimumKAnonymity      = 5
)

// RuleBased is the always-available advisor. Its recommendations come from
// fixed thresholds and it declines to invent events, leaving synthetic
// generation to the noise engine's own vocabulary.
type RuleBased struct{}

// NewRuleBased returns the threshold-driven advisor.
func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

// RecommendActions derives actions from the assessment alone. It never
// returns an error.
func (r *RuleBased) RecommendActions(_ context.Context, metrics risk.Metrics, _ DataCharacteristics) (risk.Actions, error) {
	var actions risk.Actions
	if metrics.KAnonymity < minimumKAnonymity {
		actions.IncreaseMerging = true
		actions.RecommendedMergeSize = fallbackMergeSize
	}
	if metrics.DemographicConcentrationRisk > concentrationThreshold {
		actions.GeneralizeDemographics = true
	}
	if metrics.EventPatternConcentrationRisk > concentrationThreshold {
		actions.IncreaseTemporalNoise = true
	}
	actions.TargetPersonas = append([]string(nil), metrics.HighRiskPersonas...)
	return actions, nil
}

// GenerateEvents returns no events; the rule-based advisor has no model of
// what a plausible event looks like.
func (r *RuleBased) GenerateEvents(_ context.Context, _ models.Demographics, _ []models.Event, _ string, _ float64) ([]models.Event, error) {
	return nil, nil
}
