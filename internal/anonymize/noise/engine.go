// Package noise blurs persona events to reduce traceability: temporal
// jitter that preserves strict chronological order, outcome perturbation
// within the domain vocabulary, location generalization, and temporal
// precision bucketing.
package noise

import (
	"math/rand"
	"sort"
	"strings"
	"time"

	"personaforge/internal/anonymize/models"
)

// Config tunes the noise strategies. Values scale with the privacy level.
type Config struct {
	TemporalWindowDays        int
	OutcomeProbability        float64
	LocationLevel             string // address, city, county, state, country
	AddSyntheticEvents        bool
	SyntheticEventProbability float64
}

// ConfigFor returns the noise configuration for a privacy level.
func ConfigFor(level models.PrivacyLevel) Config {
	switch level {
	case models.PrivacyLow:
		return Config{TemporalWindowDays: 7, OutcomeProbability: 0.02, LocationLevel: "city"}
	case models.PrivacyHigh:
		return Config{TemporalWindowDays: 30, OutcomeProbability: 0.10, LocationLevel: "county",
			AddSyntheticEvents: true, SyntheticEventProbability: 0.1}
	case models.PrivacyMaximum:
		return Config{TemporalWindowDays: 60, OutcomeProbability: 0.15, LocationLevel: "state",
			AddSyntheticEvents: true, SyntheticEventProbability: 0.2}
	default: // medium
		return Config{TemporalWindowDays: 14, OutcomeProbability: 0.05, LocationLevel: "county"}
	}
}

// Engine applies noise using an injected random source so runs are
// reproducible under a fixed seed and tests never share global state.
type Engine struct {
	cfg Config
	rng *rand.Rand
}

// NewEngine builds a noise engine. A nil rng gets a time-seeded source.
func NewEngine(cfg Config, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{cfg: cfg, rng: rng}
}

// Apply runs all noise strategies over a copy of the events: temporal
// jitter, outcome perturbation, then location generalization. The input
// slice is never mutated.
func (e *Engine) Apply(events []models.Event, validOutcomes []string) []models.Event {
	noised := e.AddTemporalNoise(events)
	noised = e.AddOutcomeNoise(noised, validOutcomes)
	return e.GeneralizeLocations(noised)
}

// AddTemporalNoise jitters each date by a uniform offset within the window
// while enforcing strict ascending order: a noised date that would land on
// or before its predecessor is clamped to the day after it. Output order
// always matches input chronological order with no date collisions.
func (e *Engine) AddTemporalNoise(events []models.Event) []models.Event {
	if len(events) == 0 {
		return nil
	}

	out := models.CloneEvents(events)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	window := e.cfg.TemporalWindowDays
	for i := range out {
		offsetDays := e.rng.Intn(2*window+1) - window
		noised := out[i].Date.AddDate(0, 0, offsetDays)
		if i > 0 {
			if prev := out[i-1].Date; !noised.After(prev) {
				noised = prev.AddDate(0, 0, 1)
			}
		}
		out[i].Date = noised
	}

	return out
}

// AddOutcomeNoise independently replaces each event's outcome with a random
// pick from the valid vocabulary with the configured probability. Without a
// vocabulary, outcomes stay unchanged.
func (e *Engine) AddOutcomeNoise(events []models.Event, validOutcomes []string) []models.Event {
	out := models.CloneEvents(events)
	if len(validOutcomes) == 0 {
		return out
	}
	for i := range out {
		if e.rng.Float64() < e.cfg.OutcomeProbability {
			out[i].Outcome = validOutcomes[e.rng.Intn(len(validOutcomes))]
		}
	}
	return out
}

// GeneralizeLocations truncates each event's location to the configured
// precision level.
func (e *Engine) GeneralizeLocations(events []models.Event) []models.Event {
	out := models.CloneEvents(events)
	for i := range out {
		if out[i].Location != "" {
			out[i].Location = GeneralizeLocation(out[i].Location, e.cfg.LocationLevel)
		}
	}
	return out
}

// GeneralizeLocation reduces a comma-delimited location assumed to read
// "address, city, county, state, country" to the requested level. Malformed
// strings degrade to their first segment.
func GeneralizeLocation(location, level string) string {
	parts := strings.Split(location, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	switch {
	case level == "address":
		return location
	case level == "city" && len(parts) >= 2:
		return parts[1]
	case level == "county" && len(parts) >= 3:
		return parts[2]
	case level == "state" && len(parts) >= 4:
		return parts[3]
	case level == "country" && len(parts) >= 5:
		return parts[4]
	}

	if len(parts) > 0 {
		return parts[0]
	}
	return location
}

// GeneralizeTemporalPrecision snaps each date down to the start of its
// week, month, quarter, or year. "day" leaves dates untouched.
func (e *Engine) GeneralizeTemporalPrecision(events []models.Event, precision string) []models.Event {
	out := models.CloneEvents(events)
	for i := range out {
		out[i].Date = snapDate(out[i].Date, precision)
	}
	return out
}

func snapDate(date time.Time, precision string) time.Time {
	switch precision {
	case "week":
		// Snap to Monday.
		offset := (int(date.Weekday()) + 6) % 7
		return date.AddDate(0, 0, -offset)
	case "month":
		return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	case "quarter":
		quarterMonth := ((int(date.Month())-1)/3)*3 + 1
		return time.Date(date.Year(), time.Month(quarterMonth), 1, 0, 0, 0, 0, date.Location())
	case "year":
		return time.Date(date.Year(), time.January, 1, 0, 0, 0, 0, date.Location())
	default:
		return date
	}
}
