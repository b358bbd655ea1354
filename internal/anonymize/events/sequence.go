package events

import (
	"time"

	"personaforge/internal/anonymize/domains"
	"personaforge/internal/anonymize/models"
)

// syntheticOffset is the fixed distance at which repair events are placed
// relative to the event that triggered them.
const syntheticOffset = 30 * 24 * time.Hour

// openEntry tracks an event type awaiting its closure event. Kept as an
// ordered slice so end-of-sequence closures are emitted deterministically.
type openEntry struct {
	eventType   string
	closureType string
}

// ValidateAndFix walks merged events in date order and repairs domain rule
// violations by inserting synthetic events: missing predecessors are
// synthesized 30 days before the event that requires them, and unclosed
// open events get their closure synthesized 30 days before the next opening
// or 30 days after the final event. The returned sequence is rule-consistent
// by construction and re-sorted by date. Domains without rules pass through
// untouched.
func (m *Merger) ValidateAndFix(events []models.Event) []models.Event {
	if !domains.HasRules(m.rules) || len(events) == 0 {
		return events
	}

	ordered := sortByDate(append([]models.Event(nil), events...))

	validated := make([]models.Event, 0, len(ordered))
	var open []openEntry

	for _, event := range ordered {
		rule, hasRule := m.rules.RulesFor(event.EventType)
		if hasRule {
			for _, required := range rule.MustFollow {
				if !containsType(validated, required) {
					validated = append(validated, syntheticEvent(
						required,
						event.Date.Add(-syntheticOffset),
						"Required before "+event.EventType,
					))
				}
			}

			// This event may satisfy an outstanding closure expectation.
			for i, entry := range open {
				if entry.closureType == event.EventType {
					open = append(open[:i], open[i+1:]...)
					break
				}
			}

			if rule.RequiresClosure && rule.ClosureEventType != "" {
				if idx := openIndex(open, rule.EventType); idx >= 0 {
					// A previous occurrence is still open; close it before
					// opening another.
					validated = append(validated, syntheticEvent(
						rule.ClosureEventType,
						event.Date.Add(-syntheticOffset),
						"Closing previous "+rule.EventType,
					))
					open = append(open[:idx], open[idx+1:]...)
				}
				open = append(open, openEntry{eventType: rule.EventType, closureType: rule.ClosureEventType})
			}
		}

		validated = append(validated, event)
	}

	if len(open) > 0 {
		lastDate := validated[len(validated)-1].Date
		for _, entry := range open {
			validated = append(validated, syntheticEvent(
				entry.closureType,
				lastDate.Add(syntheticOffset),
				"Closing open "+entry.eventType,
			))
		}
	}

	return sortByDate(validated)
}

func containsType(events []models.Event, eventType string) bool {
	for _, e := range events {
		if e.EventType == eventType {
			return true
		}
	}
	return false
}

func openIndex(open []openEntry, eventType string) int {
	for i, entry := range open {
		if entry.eventType == eventType {
			return i
		}
	}
	return -1
}

// syntheticEvent fabricates a placeholder that satisfies a sequence rule.
// Every synthetic event is flagged and carries the reason it exists.
func syntheticEvent(eventType string, date time.Time, reason string) models.Event {
	return models.Event{
		EventID:   "synthetic_" + eventType + "_" + date.Format("20060102"),
		Date:      date,
		EventType: eventType,
		Outcome:   "unknown",
		Location:  "Unknown",
		Details: map[string]any{
			models.DetailSynthetic: true,
			models.DetailReason:    reason,
		},
	}
}
