// Package store persists anonymization jobs.
package store

import (
	"context"

	"personaforge/internal/anonymize/models"
)

// Store is the job persistence interface. Implementations must be safe for
// concurrent use.
type Store interface {
	Create(ctx context.Context, job models.Job) error
	Update(ctx context.Context, job models.Job) error
	Get(ctx context.Context, jobID string) (models.Job, error)
	List(ctx context.Context) ([]models.Job, error)
}
