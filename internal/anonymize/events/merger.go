package events

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"personaforge/internal/anonymize/domains"
	"personaforge/internal/anonymize/models"
)

// Strategy selects how a group's events collapse into persona events.
type Strategy string

const (
	// StrategyConcatenate keeps every event sorted by date, no deduplication.
	// Naive baseline, retained for comparison.
	StrategyConcatenate Strategy = "concatenate"
	// StrategyInterleave is chronological interleaving; equivalent to
	// concatenation once sorted.
	StrategyInterleave Strategy = "interleave"
	// StrategySimilarity clusters similar events and keeps one representative
	// per cluster. Default and recommended.
	StrategySimilarity Strategy = "similarity"
	// StrategyAggregate collapses all events of a type into one composite.
	StrategyAggregate Strategy = "aggregate"
	// StrategySample keeps at most maxSampleEvents representative events.
	StrategySample Strategy = "sample"
	// StrategyRuleBased is similarity merging plus mandatory sequence repair.
	StrategyRuleBased Strategy = "rule_based"
)

const (
	// defaultSimilarityThreshold is the minimum score for an event to join an
	// existing cluster.
	defaultSimilarityThreshold = 0.6
	maxSampleEvents            = 10
)

// Merger combines the events of a people group into a single coherent
// sequence for the persona, validated against the domain's sequence rules.
type Merger struct {
	rules     domains.RuleProvider
	strategy  Strategy
	threshold float64
}

// NewMerger builds a merger for the given domain and strategy.
func NewMerger(domain domains.Domain, strategy Strategy) *Merger {
	if strategy == "" {
		strategy = StrategySimilarity
	}
	return &Merger{
		rules:     domains.RulesFor(domain),
		strategy:  strategy,
		threshold: defaultSimilarityThreshold,
	}
}

// Merge produces the persona event sequence for a group of people. The
// inputs are never mutated; every returned event is a fresh copy.
func (m *Merger) Merge(people []models.Person) []models.Event {
	switch m.strategy {
	case StrategyConcatenate, StrategyInterleave:
		return sortByDate(collectEvents(people))
	case StrategyAggregate:
		return m.aggregate(people)
	case StrategySample:
		return m.sample(people)
	case StrategyRuleBased:
		merged := m.mergeBySimilarity(people)
		return m.ValidateAndFix(merged)
	default:
		return m.mergeBySimilarity(people)
	}
}

func collectEvents(people []models.Person) []models.Event {
	var all []models.Event
	for _, p := range people {
		all = append(all, models.CloneEvents(p.Events)...)
	}
	return all
}

func sortByDate(events []models.Event) []models.Event {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events
}

// mergeBySimilarity clusters date-ordered events greedily and collapses each
// cluster to a representative, then repairs the sequence against domain
// rules.
func (m *Merger) mergeBySimilarity(people []models.Person) []models.Event {
	all := sortByDate(collectEvents(people))
	if len(all) == 0 {
		return nil
	}

	clusters := m.clusterSimilar(all)

	merged := make([]models.Event, 0, len(clusters))
	for _, cluster := range clusters {
		merged = append(merged, representative(cluster))
	}

	return m.ValidateAndFix(merged)
}

// clusterSimilar assigns each event to the cluster containing its single
// most similar member, provided that similarity reaches the threshold;
// otherwise the event opens a new cluster. First-fit greedy: once assigned,
// an event is never moved, even if a later cluster would fit better.
// Quadratic in group event count, which stays small because group sizes are
// bounded.
func (m *Merger) clusterSimilar(events []models.Event) [][]models.Event {
	var clusters [][]models.Event

	for _, event := range events {
		bestIdx := -1
		bestScore := 0.0
		for idx, cluster := range clusters {
			for _, member := range cluster {
				if sim := Compare(event, member); sim.Score > bestScore {
					bestScore = sim.Score
					bestIdx = idx
				}
			}
		}
		if bestIdx >= 0 && bestScore >= m.threshold {
			clusters[bestIdx] = append(clusters[bestIdx], event)
		} else {
			clusters = append(clusters, []models.Event{event})
		}
	}

	return clusters
}

// representative collapses a cluster into one event: mode of types, outcomes
// and locations (ties broken by first occurrence in cluster order), median
// date, and a last-write-wins union of details plus merge provenance.
func representative(cluster []models.Event) models.Event {
	if len(cluster) == 1 {
		return cluster[0].Clone()
	}

	types := make([]string, len(cluster))
	outcomes := make([]string, len(cluster))
	locations := make([]string, len(cluster))
	dates := make([]time.Time, len(cluster))
	for i, e := range cluster {
		types[i] = e.EventType
		outcomes[i] = e.Outcome
		locations[i] = e.Location
		dates[i] = e.Date
	}

	location := mode(locations)
	if location != "" && distinctCount(locations) > len(cluster)/2 {
		if generalized := generalizeLocations(nonEmpty(locations)); generalized != "" {
			location = generalized
		}
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	medianDate := dates[len(dates)/2]

	details := make(map[string]any)
	mergedFrom := make([]string, 0, len(cluster))
	for _, e := range cluster {
		for k, v := range e.Details {
			details[k] = v
		}
		mergedFrom = append(mergedFrom, e.EventID)
	}
	details[models.DetailMergedCount] = len(cluster)
	details[models.DetailMergedFrom] = mergedFrom

	return models.Event{
		EventID:   "merged_" + cluster[0].EventID,
		Date:      medianDate,
		EventType: mode(types),
		Outcome:   mode(outcomes),
		Location:  location,
		Details:   details,
	}
}

// mode returns the most frequent value, breaking count ties in favor of the
// value encountered first.
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

func distinctCount(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}

func nonEmpty(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// generalizeLocations reduces a diverse location set to a shared county, a
// shared state abbreviation, or a generic marker.
func generalizeLocations(locations []string) string {
	counties := make(map[string]struct{})
	for _, loc := range locations {
		if strings.Contains(loc, "County") {
			county := strings.TrimSpace(strings.SplitN(loc, "County", 2)[0]) + " County"
			counties[county] = struct{}{}
		}
	}
	if len(counties) == 1 {
		for county := range counties {
			return county
		}
	}

	states := make(map[string]struct{})
	for _, loc := range locations {
		fields := strings.Fields(loc)
		if len(fields) >= 2 {
			if last := fields[len(fields)-1]; len(last) == 2 {
				states[last] = struct{}{}
			}
		}
	}
	if len(states) == 1 {
		for state := range states {
			return state
		}
	}

	return "Multiple locations"
}

// aggregate collapses all events sharing an event type into one composite
// event; singletons pass through unchanged.
func (m *Merger) aggregate(people []models.Person) []models.Event {
	all := collectEvents(people)

	var typeOrder []string
	byType := make(map[string][]models.Event)
	for _, e := range all {
		if _, seen := byType[e.EventType]; !seen {
			typeOrder = append(typeOrder, e.EventType)
		}
		byType[e.EventType] = append(byType[e.EventType], e)
	}

	var aggregated []models.Event
	for _, eventType := range typeOrder {
		group := byType[eventType]
		if len(group) == 1 {
			aggregated = append(aggregated, group[0])
			continue
		}

		sorted := sortByDate(append([]models.Event(nil), group...))
		earliest, latest := sorted[0].Date, sorted[len(sorted)-1].Date

		locations := make(map[string]struct{})
		var outcomes []string
		seenOutcomes := make(map[string]struct{})
		for _, e := range group {
			if e.Location != "" {
				locations[e.Location] = struct{}{}
			}
			if e.Outcome != "" {
				if _, ok := seenOutcomes[e.Outcome]; !ok {
					seenOutcomes[e.Outcome] = struct{}{}
					outcomes = append(outcomes, e.Outcome)
				}
			}
		}

		aggregated = append(aggregated, models.Event{
			EventID:   "aggregate_" + eventType,
			Date:      earliest,
			EventType: eventType,
			Outcome:   "multiple",
			Location:  fmt.Sprintf("%d locations", len(locations)),
			Details: map[string]any{
				models.DetailAggregate: true,
				models.DetailCount:     len(group),
				models.DetailDateRange: earliest.Format("2006-01") + " to " + latest.Format("2006-01"),
				models.DetailOutcomes:  outcomes,
			},
		})
	}

	return sortByDate(aggregated)
}

// sample keeps everything when the total fits, otherwise always retains the
// first and last events and strides evenly through the middle to reach
// exactly maxSampleEvents.
func (m *Merger) sample(people []models.Person) []models.Event {
	all := sortByDate(collectEvents(people))
	if len(all) <= maxSampleEvents {
		return all
	}

	sampled := make([]models.Event, 0, maxSampleEvents)
	for k := 0; k < maxSampleEvents; k++ {
		idx := k * (len(all) - 1) / (maxSampleEvents - 1)
		sampled = append(sampled, all[idx])
	}
	return sampled
}
