package risk

// Escalation thresholds for corrective actions.
const (
	mergeGapThreshold     = 0.1
	syntheticGapThreshold = 0.2
	concentrationLimit    = 0.5
)

// Actions are the corrective measures a protection loop should apply when
// the population risk exceeds its target.
type Actions struct {
	IncreaseMerging        bool
	RecommendedMergeSize   int
	IncreaseTemporalNoise  bool
	GeneralizeDemographics bool
	AddSyntheticEvents     bool
	TargetPersonas         []string
}

// Any reports whether at least one action is set.
func (a Actions) Any() bool {
	return a.IncreaseMerging || a.IncreaseTemporalNoise ||
		a.GeneralizeDemographics || a.AddSyntheticEvents
}

// DeriveActions maps a risk assessment onto concrete corrective actions for
// the given target population risk. Below-target metrics derive no actions.
func DeriveActions(m Metrics, targetRisk float64) Actions {
	if m.PopulationAverageRisk <= targetRisk {
		return Actions{}
	}
	gap := m.PopulationAverageRisk - targetRisk

	var actions Actions
	if m.KAnonymity < minKAnonymity || gap > mergeGapThreshold {
		actions.IncreaseMerging = true
		actions.RecommendedMergeSize = minKAnonymity
		if doubled := 2 * m.KAnonymity; doubled > actions.RecommendedMergeSize {
			actions.RecommendedMergeSize = doubled
		}
	}
	if m.EventPatternConcentrationRisk > concentrationLimit {
		actions.IncreaseTemporalNoise = true
	}
	if m.DemographicConcentrationRisk > concentrationLimit {
		actions.GeneralizeDemographics = true
	}
	if gap > syntheticGapThreshold {
		actions.AddSyntheticEvents = true
	}
	actions.TargetPersonas = append([]string(nil), m.HighRiskPersonas...)
	return actions
}
