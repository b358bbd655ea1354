// Package advisor recommends privacy protection strategies and contextual
// synthetic events. The built-in rule-based advisor never fails; smarter
// implementations can replace it behind the same interface.
package advisor

import (
	"context"

	"personaforge/internal/anonymize/domains"
	"personaforge/internal/anonymize/models"
	"personaforge/internal/anonymize/risk"
)

// DataCharacteristics summarizes the dataset an advisor is reasoning about.
type DataCharacteristics struct {
	PeopleCount int
	EventCount  int
	Domain      domains.Domain
}

// Advisor proposes protection actions for a risk assessment and generates
// plausible synthetic events for noise injection.
type Advisor interface {
	RecommendActions(ctx context.Context, metrics risk.Metrics, characteristics DataCharacteristics) (risk.Actions, error)
	GenerateEvents(ctx context.Context, demographics models.Demographics, existing []models.Event, geography string, noiseLevel float64) ([]models.Event, error)
}
