// Package personas turns a demographic group into a single synthetic
// persona: aggregated demographics, merged events, derived event patterns,
// and initial privacy metadata.
package personas

import (
	"time"

	"github.com/google/uuid"

	"personaforge/internal/anonymize/domains"
	"personaforge/internal/anonymize/events"
	"personaforge/internal/anonymize/models"
)

// generationMethod records which algorithm produced a persona.
const generationMethod = "demographic_merging"

// ageBinSize is the default bin for deriving an age range from the mean age.
const ageBinSize = 5

// Builder constructs personas from people groups.
type Builder struct {
	merger *events.Merger
}

// NewBuilder wires a persona builder for the given domain and merge strategy.
func NewBuilder(domain domains.Domain, strategy events.Strategy) *Builder {
	return &Builder{merger: events.NewMerger(domain, strategy)}
}

// Merger exposes the underlying event merger, mainly for sequence repair of
// regenerated event lists.
func (b *Builder) Merger() *events.Merger { return b.merger }

// Build merges one group into a persona. MergedFrom always equals the count
// of MergedPersonIDs, and both traceability and confidence start at
// 1/group-size: the larger the group, the harder any single member is to
// trace.
func (b *Builder) Build(group []models.Person) models.Persona {
	merged := b.merger.Merge(group)

	ids := make([]string, len(group))
	for i, p := range group {
		ids[i] = p.PersonID
	}

	return models.Persona{
		PersonaID:    uuid.NewString(),
		MergedFrom:   len(group),
		Demographics: mergeDemographics(group),
		EventPatterns: ExtractPatterns(merged),
		PrivacyMetadata: models.PrivacyMetadata{
			TraceabilityScore: 1.0 / float64(len(group)),
			NoiseLevel:        0.0,
			MergeCount:        len(group),
			GenerationMethod:  generationMethod,
			Timestamp:         time.Now(),
		},
		Events:          merged,
		MergedPersonIDs: ids,
	}
}

// mergeDemographics aggregates the group's demographics: mode for
// categorical attributes (ties broken by first occurrence in group order),
// mean truncated to int for age.
func mergeDemographics(group []models.Person) models.Demographics {
	var genders, ethnicities, geographies []string
	var ages []int
	for _, p := range group {
		d := p.Demographics
		if d.Gender != "" {
			genders = append(genders, d.Gender)
		}
		if d.Ethnicity != "" {
			ethnicities = append(ethnicities, d.Ethnicity)
		}
		if d.Geography != "" {
			geographies = append(geographies, d.Geography)
		}
		if d.Age != nil {
			ages = append(ages, *d.Age)
		}
	}

	merged := models.Demographics{
		Gender:          mode(genders),
		Ethnicity:       mode(ethnicities),
		Geography:       mode(geographies),
		ConfidenceLevel: 1.0 / float64(len(group)),
	}

	if len(ages) > 0 {
		sum := 0
		for _, a := range ages {
			sum += a
		}
		mean := sum / len(ages)
		merged.Age = &mean
		merged.AgeRange = merged.GeneralizeAge(ageBinSize)
	}

	return merged
}

// mode returns the most frequent value, first-encountered on ties; empty
// input yields "".
func mode(values []string) string {
	counts := make(map[string]int, len(values))
	best := ""
	bestCount := 0
	for _, v := range values {
		counts[v]++
		if counts[v] > bestCount {
			bestCount = counts[v]
			best = v
		}
	}
	return best
}

// ExtractPatterns derives the statistical shape of an event sequence:
// distinct types, outcome distribution, and events-per-active-year density.
func ExtractPatterns(evts []models.Event) models.EventPatterns {
	if len(evts) == 0 {
		return models.EventPatterns{}
	}

	var types []string
	seenTypes := make(map[string]struct{})
	years := make(map[int]struct{})
	outcomes := make(map[string]int)
	for _, e := range evts {
		if _, ok := seenTypes[e.EventType]; !ok {
			seenTypes[e.EventType] = struct{}{}
			types = append(types, e.EventType)
		}
		years[e.Date.Year()] = struct{}{}
		outcome := e.Outcome
		if outcome == "" {
			outcome = "unknown"
		}
		outcomes[outcome]++
	}

	dist := make(map[string]float64, len(outcomes))
	for outcome, count := range outcomes {
		dist[outcome] = float64(count) / float64(len(evts))
	}

	activeYears := len(years)
	if activeYears == 0 {
		activeYears = 1
	}

	return models.EventPatterns{
		EventTypes:           types,
		TotalEvents:          len(evts),
		EventDensity:         float64(len(evts)) / float64(activeYears),
		OutcomeDistributions: dist,
		RepeatEvents:         len(evts) > 1,
	}
}
