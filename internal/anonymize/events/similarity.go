// Package events implements pairwise event similarity scoring, similarity
// based event clustering/merging, and domain sequence validation with
// synthetic repair events.
package events

import (
	"fmt"
	"strings"

	"personaforge/internal/anonymize/models"
)

// Similarity weights. The maximum score of 1.0 is reached only when type,
// outcome, date, and location all match.
const (
	weightEventType = 0.4
	weightOutcome   = 0.2
	weightTemporal  = 0.2
	weightLocation  = 0.2

	// temporalWindowDays is the window inside which dates contribute to the
	// score, scaled linearly. Beyond it the contribution is zero, not negative.
	temporalWindowDays = 180
)

// Similarity is a scored comparison of two events with human-readable
// reasons for the score.
type Similarity struct {
	Score   float64
	Reasons []string
}

// Compare scores how alike two events are, in [0,1]. The comparison is
// symmetric: Compare(a, b) == Compare(b, a).
func Compare(a, b models.Event) Similarity {
	var score float64
	var reasons []string

	if a.EventType == b.EventType {
		score += weightEventType
		reasons = append(reasons, "Same event type: "+a.EventType)
	}

	if a.Outcome == b.Outcome {
		score += weightOutcome
		reasons = append(reasons, "Same outcome: "+a.Outcome)
	}

	dayDiff := a.Date.Sub(b.Date).Hours() / 24
	if dayDiff < 0 {
		dayDiff = -dayDiff
	}
	if dayDiff <= temporalWindowDays {
		score += weightTemporal * (1.0 - dayDiff/temporalWindowDays)
		reasons = append(reasons, fmt.Sprintf("Similar dates: %d days apart", int(dayDiff)))
	}

	if a.Location != "" && b.Location != "" {
		switch {
		case a.Location == b.Location:
			score += weightLocation
			reasons = append(reasons, "Same location: "+a.Location)
		case sameCounty(a.Location, b.Location):
			score += weightLocation / 2
			reasons = append(reasons, "Same county")
		}
	}

	return Similarity{Score: score, Reasons: reasons}
}

// sameCounty checks whether two locations share a county by comparing the
// text before the literal "County" marker.
func sameCounty(loc1, loc2 string) bool {
	if !strings.Contains(loc1, "County") || !strings.Contains(loc2, "County") {
		return false
	}
	county1 := strings.TrimSpace(strings.SplitN(loc1, "County", 2)[0])
	county2 := strings.TrimSpace(strings.SplitN(loc2, "County", 2)[0])
	return county1 == county2
}
