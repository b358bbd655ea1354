// Package service orchestrates anonymization runs: it drives the pipeline,
// persists job state, emits audit events, and records metrics.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"personaforge/internal/anonymize/advisor"
	"personaforge/internal/anonymize/domains"
	"personaforge/internal/anonymize/events"
	"personaforge/internal/anonymize/metrics"
	"personaforge/internal/anonymize/models"
	"personaforge/internal/anonymize/pipeline"
	"personaforge/internal/anonymize/risk"
	"personaforge/internal/anonymize/store"
	"personaforge/internal/transparency"
	dErrors "personaforge/pkg/domain-errors"
)

// Service runs anonymization jobs.
type Service struct {
	store   store.Store
	audit   *transparency.Logger
	metrics *metrics.Metrics
	logger  *slog.Logger
	advisor advisor.Advisor
	census  risk.CensusProvider
}

// New creates the anonymization service. Advisor and census are optional.
func New(
	jobs store.Store,
	audit *transparency.Logger,
	m *metrics.Metrics,
	logger *slog.Logger,
	adv advisor.Advisor,
	census risk.CensusProvider,
) *Service {
	return &Service{
		store:   jobs,
		audit:   audit,
		metrics: m,
		logger:  logger,
		advisor: adv,
		census:  census,
	}
}

// Run executes an anonymization request synchronously and persists the job.
// Pipeline convergence failure is recorded in the result, not returned as an
// error; errors mean the request was invalid or persistence failed.
func (s *Service) Run(ctx context.Context, req models.AnonymizeRequest, userID string) (models.Job, error) {
	if len(req.People) == 0 {
		return models.Job{}, dErrors.New(dErrors.CodeBadRequest, "no people provided")
	}

	now := time.Now().UTC()
	job := models.Job{
		ID:           uuid.NewString(),
		Status:       models.JobStatusRunning,
		Domain:       req.Domain,
		PrivacyLevel: req.PrivacyLevel,
		TargetRisk:   req.TargetRisk,
		PeopleCount:  len(req.People),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, job); err != nil {
		return models.Job{}, err
	}

	controller := pipeline.NewController(pipeline.Config{
		PrivacyLevel:         req.PrivacyLevel,
		TargetPopulationRisk: req.TargetRisk,
		Domain:               domains.Domain(req.Domain),
		MergeStrategy:        events.Strategy(req.MergeStrategy),
		Advisor:              s.advisor,
		Census:               s.census,
	}, s.logger)

	result := controller.Process(ctx, req.People)

	job.Status = models.JobStatusCompleted
	job.UpdatedAt = time.Now().UTC()
	job.Result = &models.JobResult{
		Personas:              result.Personas,
		PopulationAverageRisk: result.RiskMetrics.PopulationAverageRisk,
		RiskLevel:             result.RiskMetrics.RiskLevel(),
		KAnonymity:            result.RiskMetrics.KAnonymity,
		Iterations:            result.Iterations,
		Success:               result.Success,
		Message:               result.Message,
	}
	if err := s.store.Update(ctx, job); err != nil {
		return models.Job{}, err
	}

	s.metrics.RecordJob(string(job.Status), len(result.Personas), result.Iterations,
		result.RiskMetrics.PopulationAverageRisk)

	if _, err := s.audit.Log(ctx, transparency.OperationProcess, job.ID, job.Result, userID,
		map[string]any{
			"persona_count": len(result.Personas),
			"iterations":    result.Iterations,
			"success":       result.Success,
		}); err != nil {
		s.logger.WarnContext(ctx, "failed to record audit event",
			"job_id", job.ID, "error", err)
	}

	return job, nil
}

// Get returns a job by ID.
func (s *Service) Get(ctx context.Context, jobID string) (models.Job, error) {
	return s.store.Get(ctx, jobID)
}

// List returns all jobs, newest first.
func (s *Service) List(ctx context.Context) ([]models.Job, error) {
	return s.store.List(ctx)
}
