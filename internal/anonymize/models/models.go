// Package models defines the data types shared by the anonymization engine:
// the sensitive inputs (Person, Event, Demographics) and the privacy-protected
// output (Persona). Inputs are treated as read-only; the engine never mutates
// a caller-supplied Person.
package models

import (
	"fmt"
	"time"
)

// PrivacyLevel selects how aggressively the engine trades utility for
// protection. It scales grouping sizes, noise windows, and risk weights.
type PrivacyLevel string

const (
	PrivacyLow     PrivacyLevel = "low"
	PrivacyMedium  PrivacyLevel = "medium"
	PrivacyHigh    PrivacyLevel = "high"
	PrivacyMaximum PrivacyLevel = "maximum"
)

// Detail keys carrying provenance on merged or synthesized events.
const (
	DetailSynthetic   = "_synthetic"
	DetailReason      = "_reason"
	DetailMergedCount = "_merged_count"
	DetailMergedFrom  = "_merged_from"
	DetailAggregate   = "_aggregate"
	DetailCount       = "_count"
	DetailDateRange   = "_date_range"
	DetailOutcomes    = "_outcomes"
)

// Demographics holds the attributes of a person or persona. Empty string and
// nil Age mean "unknown". ConfidenceLevel starts at 1.0 and only decreases as
// generalization and merging are applied.
type Demographics struct {
	Age                     *int              `json:"age,omitempty"`
	AgeRange                string            `json:"age_range,omitempty"`
	Gender                  string            `json:"gender,omitempty"`
	Ethnicity               string            `json:"ethnicity,omitempty"`
	Geography               string            `json:"geography,omitempty"`
	SocioeconomicIndicators map[string]string `json:"socioeconomic_indicators,omitempty"`
	ConfidenceLevel         float64           `json:"confidence_level"`
}

// GeneralizeAge converts an exact age into a bin-sized range like "30-34".
func (d Demographics) GeneralizeAge(binSize int) string {
	if d.Age == nil {
		return "Unknown"
	}
	lower := (*d.Age / binSize) * binSize
	return fmt.Sprintf("%d-%d", lower, lower+binSize-1)
}

// Clone returns a deep copy so controller iterations never alias demographics
// between persona generations.
func (d Demographics) Clone() Demographics {
	out := d
	if d.Age != nil {
		age := *d.Age
		out.Age = &age
	}
	if d.SocioeconomicIndicators != nil {
		out.SocioeconomicIndicators = make(map[string]string, len(d.SocioeconomicIndicators))
		for k, v := range d.SocioeconomicIndicators {
			out.SocioeconomicIndicators[k] = v
		}
	}
	return out
}

// Event is a single timestamped occurrence in a person's history. The type
// and outcome vocabularies are domain-defined; Details carries free-form
// attributes plus the provenance flags above.
type Event struct {
	EventID          string         `json:"event_id"`
	Date             time.Time      `json:"date"`
	EventType        string         `json:"event_type"`
	Outcome          string         `json:"outcome,omitempty"`
	Location         string         `json:"location,omitempty"`
	Details          map[string]any `json:"details,omitempty"`
	AssociatedPeople []string       `json:"associated_people,omitempty"`
	Category         string         `json:"category,omitempty"`
	Severity         string         `json:"severity,omitempty"`
}

// IsSynthetic reports whether the event was fabricated to satisfy a sequence
// rule rather than observed in the source data.
func (e Event) IsSynthetic() bool {
	v, ok := e.Details[DetailSynthetic]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// Clone returns a deep copy of the event, including its details map.
func (e Event) Clone() Event {
	out := e
	if e.Details != nil {
		out.Details = make(map[string]any, len(e.Details))
		for k, v := range e.Details {
			out.Details[k] = v
		}
	}
	if e.AssociatedPeople != nil {
		out.AssociatedPeople = append([]string(nil), e.AssociatedPeople...)
	}
	return out
}

// CloneEvents deep-copies a slice of events.
func CloneEvents(events []Event) []Event {
	if events == nil {
		return nil
	}
	out := make([]Event, len(events))
	for i, e := range events {
		out[i] = e.Clone()
	}
	return out
}

// Person is the sensitive input record: one real individual with an
// event history ordered by date. Owned by the caller, read-only here.
type Person struct {
	PersonID     string       `json:"person_id"`
	Demographics Demographics `json:"demographics"`
	Events       []Event      `json:"events"`
}

// EventPatterns captures the statistical shape of a persona's event history.
type EventPatterns struct {
	EventTypes           []string           `json:"event_types"`
	TotalEvents          int                `json:"total_events"`
	EventDensity         float64            `json:"event_density"`
	OutcomeDistributions map[string]float64 `json:"outcome_distributions"`
	RepeatEvents         bool               `json:"repeat_events"`
}

// PrivacyMetadata records how much protection has been applied to a persona.
// NoiseLevel only increases across pipeline iterations.
type PrivacyMetadata struct {
	TraceabilityScore float64   `json:"traceability_score"`
	NoiseLevel        float64   `json:"noise_level"`
	MergeCount        int       `json:"merge_count"`
	GenerationMethod  string    `json:"generation_method"`
	Timestamp         time.Time `json:"timestamp"`
}

// Persona is the privacy-protected output: several real people merged into
// one statistical representative. MergedPersonIDs is the provenance contract
// downstream consumers rely on; MergedFrom always equals its length.
type Persona struct {
	PersonaID       string          `json:"persona_id"`
	MergedFrom      int             `json:"merged_from"`
	Demographics    Demographics    `json:"demographics"`
	EventPatterns   EventPatterns   `json:"event_patterns"`
	PrivacyMetadata PrivacyMetadata `json:"privacy_metadata"`
	Events          []Event         `json:"events"`
	MergedPersonIDs []string        `json:"merged_person_ids"`
}
