package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"personaforge/internal/anonymize/metrics"
	"personaforge/internal/anonymize/models"
	"personaforge/internal/anonymize/store"
	"personaforge/internal/transparency"
	"personaforge/internal/transparency/store/memory"
	dErrors "personaforge/pkg/domain-errors"
)

// jobMetrics is shared across tests: promauto registers on the global
// registry, which tolerates only one registration per metric name.
var jobMetrics = metrics.New()

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	jobs    *store.MemoryStore
	audit   *memory.InMemoryStore
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.jobs = store.NewMemoryStore()
	s.audit = memory.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = New(s.jobs, transparency.NewLogger(s.audit), jobMetrics, logger, nil, nil)
}

func (s *ServiceSuite) request(peopleCount int) models.AnonymizeRequest {
	base := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	people := make([]models.Person, 0, peopleCount)
	for i := range peopleCount {
		age := 30 + i%3
		people = append(people, models.Person{
			PersonID: fmt.Sprintf("person-%d", i),
			Demographics: models.Demographics{
				Age:       &age,
				Gender:    "Female",
				Ethnicity: "White",
				Geography: "Hamilton County, OH",
			},
			Events: []models.Event{{
				EventID:   fmt.Sprintf("e-%d", i),
				Date:      base.AddDate(0, 0, i),
				EventType: "visit",
				Outcome:   "seen",
			}},
		})
	}
	return models.AnonymizeRequest{
		Domain:       "healthcare",
		PrivacyLevel: models.PrivacyMedium,
		TargetRisk:   0.99,
		People:       people,
	}
}

func (s *ServiceSuite) TestRun() {
	s.Run("empty request is rejected", func() {
		_, err := s.service.Run(s.ctx, models.AnonymizeRequest{}, "analyst-7")
		var dErr *dErrors.Error
		s.Require().ErrorAs(err, &dErr)
		s.Equal(dErrors.CodeBadRequest, dErr.Code)
	})

	s.Run("successful run persists a completed job", func() {
		job, err := s.service.Run(s.ctx, s.request(12), "analyst-7")
		s.Require().NoError(err)

		s.Equal(models.JobStatusCompleted, job.Status)
		s.Equal("healthcare", job.Domain)
		s.Equal(12, job.PeopleCount)
		s.Require().NotNil(job.Result)
		s.True(job.Result.Success)
		s.NotEmpty(job.Result.Personas)

		stored, err := s.jobs.Get(s.ctx, job.ID)
		s.Require().NoError(err)
		s.Equal(models.JobStatusCompleted, stored.Status)
	})

	s.Run("run leaves an audit trail", func() {
		job, err := s.service.Run(s.ctx, s.request(12), "analyst-7")
		s.Require().NoError(err)

		events, err := s.audit.ListByPersona(s.ctx, job.ID)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(transparency.OperationProcess, events[0].Operation)
		s.Equal("analyst-7", events[0].UserID)
		s.True(transparency.VerifyIntegrity(job.Result, events[0].DataHash))
	})
}

func (s *ServiceSuite) TestGet() {
	job, err := s.service.Run(s.ctx, s.request(10), "")
	s.Require().NoError(err)

	s.Run("existing job", func() {
		got, err := s.service.Get(s.ctx, job.ID)
		s.Require().NoError(err)
		s.Equal(job.ID, got.ID)
	})

	s.Run("missing job", func() {
		_, err := s.service.Get(s.ctx, "missing")
		var dErr *dErrors.Error
		s.Require().ErrorAs(err, &dErr)
		s.Equal(dErrors.CodeNotFound, dErr.Code)
	})
}

func (s *ServiceSuite) TestList() {
	for range 2 {
		_, err := s.service.Run(s.ctx, s.request(10), "")
		s.Require().NoError(err)
	}
	jobs, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Len(jobs, 2)
}
