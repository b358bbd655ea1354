// Package risk estimates residual re-identification risk for generated
// personas: per-persona weighted component scores, population aggregates,
// concentration indices, and the corrective actions needed when the target
// risk is not met.
package risk

import (
	"context"
	"sort"
	"strings"

	"personaforge/internal/anonymize/models"
)

// Population risk thresholds for categorical levels.
const (
	thresholdPublicRelease = 0.01
	thresholdResearch      = 0.05
	thresholdInternal      = 0.15

	// highRiskThreshold flags individual personas needing review.
	highRiskThreshold = 0.25

	// ageSimilarityTolerance bounds "same age" when counting demographic
	// neighbors.
	ageSimilarityTolerance = 5

	// minKAnonymity below which more merging is always recommended.
	minKAnonymity = 5
)

// Categorical risk levels derived from the population average.
const (
	LevelSafeForPublicRelease = "SAFE_FOR_PUBLIC_RELEASE"
	LevelSafeForResearch      = "SAFE_FOR_RESEARCH"
	LevelInternalUseOnly      = "INTERNAL_USE_ONLY"
	LevelUnsafe               = "UNSAFE"
)

// Metrics is the full risk assessment for a persona population.
type Metrics struct {
	IndividualRisks               map[string]float64 `json:"individual_risks"`
	PopulationAverageRisk         float64            `json:"population_average_risk"`
	HighRiskPersonas              []string           `json:"high_risk_personas"`
	DemographicConcentrationRisk  float64            `json:"demographic_concentration_risk"`
	EventPatternConcentrationRisk float64            `json:"event_pattern_concentration_risk"`
	ExternalLinkageRisk           float64            `json:"external_linkage_risk"`
	Recommendation                string             `json:"recommendation"`
	KAnonymity                    int                `json:"k_anonymity"`
}

// RiskLevel maps the population average onto a categorical level.
func (m Metrics) RiskLevel() string {
	switch {
	case m.PopulationAverageRisk <= thresholdPublicRelease:
		return LevelSafeForPublicRelease
	case m.PopulationAverageRisk <= thresholdResearch:
		return LevelSafeForResearch
	case m.PopulationAverageRisk <= thresholdInternal:
		return LevelInternalUseOnly
	default:
		return LevelUnsafe
	}
}

// weights splits individual risk across the four components; they always
// sum to 1.0.
type weights struct {
	demographic     float64
	eventPattern    float64
	kAnonymity      float64
	externalLinkage float64
}

func weightsFor(level models.PrivacyLevel) weights {
	switch level {
	case models.PrivacyLow:
		return weights{demographic: 0.3, eventPattern: 0.3, kAnonymity: 0.2, externalLinkage: 0.2}
	case models.PrivacyHigh:
		return weights{demographic: 0.2, eventPattern: 0.2, kAnonymity: 0.3, externalLinkage: 0.3}
	case models.PrivacyMaximum:
		return weights{demographic: 0.15, eventPattern: 0.15, kAnonymity: 0.35, externalLinkage: 0.35}
	default: // medium
		return weights{demographic: 0.25, eventPattern: 0.25, kAnonymity: 0.25, externalLinkage: 0.25}
	}
}

// CensusProvider refines external-linkage risk with population frequency
// data for a demographic combination. Implementations live elsewhere;
// failures are swallowed and the built-in heuristic applies unchanged.
type CensusProvider interface {
	DemographicFrequency(ctx context.Context, geography, ageRange, gender, ethnicity string) (float64, error)
}

// Scorer computes risk metrics. Scoring is a pure function of its inputs:
// calling Score twice on the same personas yields identical metrics.
type Scorer struct {
	weights weights
	census  CensusProvider
}

// NewScorer builds a scorer for a privacy level. The census provider is
// optional; pass nil to rely on the built-in linkage heuristic.
func NewScorer(level models.PrivacyLevel, census CensusProvider) *Scorer {
	return &Scorer{weights: weightsFor(level), census: census}
}

// Score assesses the whole persona population. An empty population yields a
// NO_DATA recommendation, never an error.
func (s *Scorer) Score(ctx context.Context, personas []models.Persona) Metrics {
	if len(personas) == 0 {
		return Metrics{Recommendation: "NO_DATA"}
	}

	individual := make(map[string]float64, len(personas))
	var highRisk []string
	var sum float64
	for _, p := range personas {
		r := s.individualRisk(p, personas)
		individual[p.PersonaID] = r
		sum += r
		if r > highRiskThreshold {
			highRisk = append(highRisk, p.PersonaID)
		}
	}
	populationRisk := sum / float64(len(personas))

	kAnonymity := personas[0].MergedFrom
	for _, p := range personas[1:] {
		if p.MergedFrom < kAnonymity {
			kAnonymity = p.MergedFrom
		}
	}

	metrics := Metrics{
		IndividualRisks:               individual,
		PopulationAverageRisk:         populationRisk,
		HighRiskPersonas:              highRisk,
		DemographicConcentrationRisk:  demographicConcentration(personas),
		EventPatternConcentrationRisk: eventPatternConcentration(personas),
		ExternalLinkageRisk:           s.externalLinkage(ctx, personas),
		KAnonymity:                    kAnonymity,
	}
	metrics.Recommendation = recommend(metrics)
	return metrics
}

// individualRisk is the weighted sum of the four component risks, capped
// at 1.0.
func (s *Scorer) individualRisk(p models.Persona, all []models.Persona) float64 {
	kRisk := 1.0
	if p.MergedFrom > 0 {
		kRisk = 1.0 / float64(p.MergedFrom)
	}

	total := s.weights.demographic*demographicUniqueness(p, all) +
		s.weights.eventPattern*eventPatternUniqueness(p, all) +
		s.weights.kAnonymity*kRisk +
		s.weights.externalLinkage*linkageHeuristic(p.Demographics)

	if total > 1.0 {
		return 1.0
	}
	return total
}

// demographicUniqueness is the reciprocal of the number of personas sharing
// gender, ethnicity, and age within tolerance. The persona counts itself, so
// a truly unique persona scores 1.0.
func demographicUniqueness(p models.Persona, all []models.Persona) float64 {
	count := 0
	for _, other := range all {
		if other.Demographics.Gender == p.Demographics.Gender &&
			other.Demographics.Ethnicity == p.Demographics.Ethnicity &&
			agesSimilar(other.Demographics, p.Demographics) {
			count++
		}
	}
	if count == 0 {
		count = 1
	}
	return 1.0 / float64(count)
}

func agesSimilar(a, b models.Demographics) bool {
	if a.Age == nil || b.Age == nil {
		return true
	}
	diff := *a.Age - *b.Age
	if diff < 0 {
		diff = -diff
	}
	return diff <= ageSimilarityTolerance
}

// eventPatternUniqueness is the reciprocal of the number of personas whose
// event-type sets overlap at least half of this persona's.
func eventPatternUniqueness(p models.Persona, all []models.Persona) float64 {
	types := make(map[string]struct{}, len(p.EventPatterns.EventTypes))
	for _, t := range p.EventPatterns.EventTypes {
		types[t] = struct{}{}
	}
	if len(types) == 0 {
		return 0.0
	}

	required := float64(len(types)) * 0.5
	count := 0
	for _, other := range all {
		overlap := 0
		for _, t := range other.EventPatterns.EventTypes {
			if _, ok := types[t]; ok {
				overlap++
			}
		}
		if float64(overlap) >= required {
			count++
		}
	}
	if count == 0 {
		count = 1
	}
	return 1.0 / float64(count)
}

// linkageHeuristic estimates how linkable a persona is to outside records
// from residual geographic and age specificity. Geography checks run in
// priority order, first match wins; the score caps at 1.0.
func linkageHeuristic(d models.Demographics) float64 {
	risk := 0.0

	geo := strings.ToLower(d.Geography)
	switch {
	case geo == "":
	case strings.Contains(geo, "address") || strings.Contains(geo, "street"):
		risk += 0.5
	case strings.Contains(geo, "city"):
		risk += 0.3
	case strings.Contains(geo, "county"):
		risk += 0.1
	}

	if d.Age != nil {
		risk += 0.2
	} else if d.AgeRange != "" {
		risk += 0.1
	}

	if risk > 1.0 {
		return 1.0
	}
	return risk
}

// externalLinkage aggregates linkage risk across the population. With a
// census provider, population rarity refines the estimate; provider errors
// fall back silently to the heuristic.
func (s *Scorer) externalLinkage(ctx context.Context, personas []models.Persona) float64 {
	var heuristicSum float64
	for _, p := range personas {
		heuristicSum += linkageHeuristic(p.Demographics)
	}
	heuristicAvg := heuristicSum / float64(len(personas))

	if s.census == nil {
		return heuristicAvg
	}

	var raritySum float64
	geographies := make(map[string]struct{})
	for _, p := range personas {
		d := p.Demographics
		freq, err := s.census.DemographicFrequency(ctx, d.Geography, ageRangeOf(d), d.Gender, d.Ethnicity)
		if err != nil {
			return heuristicAvg
		}
		rarity := 0.95
		if freq > 0 {
			scaled := freq * 10
			if scaled > 1.0 {
				scaled = 1.0
			}
			rarity = 1.0 - scaled
		}
		raritySum += rarity
		if d.Geography != "" {
			geographies[d.Geography] = struct{}{}
		}
	}

	avgRarity := raritySum / float64(len(personas))
	geoDiversity := float64(len(geographies)) / float64(len(personas))
	return avgRarity*0.7 + geoDiversity*0.3
}

// ageRangeOf prefers an explicit range, falling back to census-style
// buckets over the exact age.
func ageRangeOf(d models.Demographics) string {
	if d.AgeRange != "" {
		return d.AgeRange
	}
	if d.Age == nil {
		return ""
	}
	age := *d.Age
	switch {
	case age < 18:
		return "0-17"
	case age < 25:
		return "18-24"
	case age < 35:
		return "25-34"
	case age < 45:
		return "35-44"
	case age < 55:
		return "45-54"
	case age < 65:
		return "55-64"
	case age < 75:
		return "65-74"
	default:
		return "75+"
	}
}

// demographicConcentration averages the Herfindahl indices of the gender
// and ethnicity distributions; higher concentration means rarer
// combinations stand out more.
func demographicConcentration(personas []models.Persona) float64 {
	var genders, ethnicities []string
	for _, p := range personas {
		if p.Demographics.Gender != "" {
			genders = append(genders, p.Demographics.Gender)
		}
		if p.Demographics.Ethnicity != "" {
			ethnicities = append(ethnicities, p.Demographics.Ethnicity)
		}
	}
	return (herfindahl(genders) + herfindahl(ethnicities)) / 2
}

// eventPatternConcentration is the Herfindahl index over event-type-set
// signatures.
func eventPatternConcentration(personas []models.Persona) float64 {
	signatures := make([]string, len(personas))
	for i, p := range personas {
		types := append([]string(nil), p.EventPatterns.EventTypes...)
		sort.Strings(types)
		signatures[i] = strings.Join(types, "|")
	}

	counts := make(map[string]int, len(signatures))
	for _, sig := range signatures {
		counts[sig]++
	}
	total := float64(len(personas))
	var concentration float64
	for _, count := range counts {
		share := float64(count) / total
		concentration += share * share
	}
	return concentration
}

// herfindahl sums squared population shares; 1.0 means full concentration.
func herfindahl(values []string) float64 {
	if len(values) == 0 {
		return 0.0
	}
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	total := float64(len(values))
	var index float64
	for _, count := range counts {
		share := float64(count) / total
		index += share * share
	}
	return index
}

// recommend picks the advisory text by a fixed priority chain.
func recommend(m Metrics) string {
	switch {
	case m.PopulationAverageRisk <= thresholdPublicRelease:
		return "SAFE - Data meets public release standards"
	case m.PopulationAverageRisk <= thresholdResearch:
		return "SAFE_FOR_RESEARCH - Suitable for research use"
	case m.KAnonymity < minKAnonymity:
		return "INCREASE_MERGING - Group size too small, merge more people"
	case len(m.HighRiskPersonas) > 0:
		return "INCREASE_NOISE - Apply more noise to high-risk personas"
	default:
		return "INCREASE_PROTECTION - Both merging and noise needed"
	}
}
