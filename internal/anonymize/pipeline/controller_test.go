package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"personaforge/internal/anonymize/advisor/mocks"
	"personaforge/internal/anonymize/domains"
	"personaforge/internal/anonymize/models"
)

type ControllerSuite struct {
	suite.Suite
	ctx    context.Context
	logger *slog.Logger
	base   time.Time
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.base = time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
}

// population builds n people similar enough to land in shared groups.
func (s *ControllerSuite) population(n int) []models.Person {
	people := make([]models.Person, 0, n)
	for i := range n {
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
				Date:      s.base.AddDate(0, 0, i),
				EventType: "visit",
				Outcome:   "seen",
				Location:  "Cincinnati, Hamilton County, OH",
			}},
		})
	}
	return people
}

func (s *ControllerSuite) newController(cfg Config) *Controller {
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(7))
	}
	return NewController(cfg, s.logger)
}

func (s *ControllerSuite) TestProcess() {
	s.Run("empty input yields a zero result", func() {
		result := s.newController(Config{}).Process(s.ctx, nil)
		s.False(result.Success)
		s.Empty(result.Personas)
		s.Zero(result.Iterations)
		s.Equal("No input data provided", result.Message)
	})

	s.Run("people without IDs count as no input", func() {
		people := []models.Person{{Demographics: models.Demographics{Gender: "Male"}}}
		result := s.newController(Config{}).Process(s.ctx, people)
		s.False(result.Success)
		s.Equal("No input data provided", result.Message)
	})

	s.Run("relaxed target succeeds without adjustment", func() {
		ctrl := s.newController(Config{TargetPopulationRisk: 0.99})
		result := ctrl.Process(s.ctx, s.population(20))
		s.True(result.Success)
		s.Zero(result.Iterations)
		s.NotEmpty(result.Personas)
		s.Contains(result.Message, "Successfully generated")
	})

	s.Run("noise is recorded in persona metadata", func() {
		ctrl := s.newController(Config{TargetPopulationRisk: 0.99})
		result := ctrl.Process(s.ctx, s.population(10))
		for _, p := range result.Personas {
			s.GreaterOrEqual(p.PrivacyMetadata.NoiseLevel, noiseLevelIncrement)
		}
	})

	s.Run("unreachable target exhausts the iteration budget", func() {
		ctrl := s.newController(Config{TargetPopulationRisk: 0.001, MaxIterations: 5})
		result := ctrl.Process(s.ctx, s.population(6))
		s.False(result.Success)
		s.Equal(5, result.Iterations)
		s.Contains(result.Message, "target risk not achieved")
	})

	s.Run("merged person IDs survive re-merging", func() {
		ctrl := s.newController(Config{TargetPopulationRisk: 0.001, MaxIterations: 3})
		result := ctrl.Process(s.ctx, s.population(12))
		total := 0
		for _, p := range result.Personas {
			total += p.MergedFrom
		}
		s.Positive(total)
	})
}

func (s *ControllerSuite) TestSyntheticEvents() {
	mockCtrl := gomock.NewController(s.T())
	mockAdvisor := mocks.NewMockAdvisor(mockCtrl)

	synthetic := models.Event{
		EventID:   "synthetic-cover",
		Date:      s.base.AddDate(0, 1, 0),
		EventType: "visit",
		Outcome:   "unknown",
		Location:  "Unknown",
	}
	mockAdvisor.EXPECT().
		GenerateEvents(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]models.Event{synthetic}, nil).
		MinTimes(1)

	ctrl := s.newController(Config{
		TargetPopulationRisk: 0.001,
		MaxIterations:        2,
		Advisor:              mockAdvisor,
	})
	result := ctrl.Process(s.ctx, s.population(6))

	s.False(result.Success)
	found := false
	for _, p := range result.Personas {
		for _, e := range p.Events {
			if e.EventID == synthetic.EventID {
				found = true
			}
		}
	}
	s.True(found, "expected advisor events in persona timelines")
}

func (s *ControllerSuite) TestValidate() {
	ctrl := s.newController(Config{Domain: domains.DomainHealthcare})
	age := 40
	people := []models.Person{{
		PersonID:     "p1",
		Demographics: models.Demographics{Age: &age, Gender: "Male"},
		Events: []models.Event{
			{EventID: "ok", Date: s.base, EventType: "diagnosis"},
			{EventID: "bad", Date: s.base, EventType: "tarot_reading"},
		},
	}}

	validated := ctrl.validate(people)
	s.Require().Len(validated, 1)
	s.Require().Len(validated[0].Events, 1)
	s.Equal("ok", validated[0].Events[0].EventID)
}

func (s *ControllerSuite) TestGeneralizeDemographics() {
	age := 37
	generated := []models.Persona{{
		PersonaID: "p1",
		Demographics: models.Demographics{
			Age:             &age,
			Geography:       "Cincinnati, Hamilton County, OH",
			ConfidenceLevel: 0.5,
		},
	}}

	out := generalizeDemographics(generated)

	s.Nil(out[0].Demographics.Age)
	s.Equal("30-39", out[0].Demographics.AgeRange)
	s.Equal("Hamilton County", out[0].Demographics.Geography)
	s.InDelta(0.4, out[0].Demographics.ConfidenceLevel, 1e-9)
}

func (s *ControllerSuite) TestConfigDefaults() {
	cfg := Config{}.withDefaults()
	s.Equal(models.PrivacyMedium, cfg.PrivacyLevel)
	s.InDelta(defaultTargetRisk, cfg.TargetPopulationRisk, 1e-9)
	s.Equal(domains.DomainCustom, cfg.Domain)
	s.Equal(defaultMaxIterations, cfg.MaxIterations)
	s.Equal(defaultMinKAnonymity, cfg.MinKAnonymity)
}
