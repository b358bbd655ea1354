package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"personaforge/internal/anonymize/domains"
	"personaforge/internal/anonymize/models"
)

type MergerSuite struct {
	suite.Suite
	base time.Time
}

func TestMergerSuite(t *testing.T) {
	suite.Run(t, new(MergerSuite))
}

func (s *MergerSuite) SetupTest() {
	s.base = time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
}

func (s *MergerSuite) person(id string, events ...models.Event) models.Person {
	return models.Person{PersonID: id, Events: events}
}

func (s *MergerSuite) event(id, eventType, outcome, location string, daysOffset int) models.Event {
	return models.Event{
		EventID:   id,
		Date:      s.base.AddDate(0, 0, daysOffset),
		EventType: eventType,
		Outcome:   outcome,
		Location:  location,
		Details:   map[string]any{},
	}
}

func (s *MergerSuite) TestMergeBySimilarity() {
	merger := NewMerger(domains.DomainCustom, StrategySimilarity)

	s.Run("near-identical events collapse into one representative", func() {
		people := []models.Person{
			s.person("p1", s.event("e1", "arrest", "charged", "Hamilton County", 0)),
			s.person("p2", s.event("e2", "arrest", "charged", "Hamilton County", 3)),
			s.person("p3", s.event("e3", "arrest", "charged", "Hamilton County", 6)),
		}
		merged := merger.Merge(people)
		s.Require().Len(merged, 1)
		s.Equal("arrest", merged[0].EventType)
		s.Equal("charged", merged[0].Outcome)
		s.Equal("merged_e1", merged[0].EventID)
		s.Equal(3, merged[0].Details[models.DetailMergedCount])
		s.ElementsMatch([]string{"e1", "e2", "e3"}, merged[0].Details[models.DetailMergedFrom])
	})

	s.Run("representative takes the median date", func() {
		people := []models.Person{
			s.person("p1",
				s.event("e1", "arrest", "charged", "", 0),
				s.event("e2", "arrest", "charged", "", 10),
				s.event("e3", "arrest", "charged", "", 40),
			),
		}
		merged := merger.Merge(people)
		s.Require().Len(merged, 1)
		s.Equal(s.base.AddDate(0, 0, 10), merged[0].Date)
	})

	s.Run("dissimilar events stay separate", func() {
		people := []models.Person{
			s.person("p1", s.event("e1", "arrest", "charged", "", 0)),
			s.person("p2", s.event("e2", "graduation", "passed", "", 400)),
		}
		merged := merger.Merge(people)
		s.Len(merged, 2)
	})

	s.Run("inputs are not mutated", func() {
		original := s.event("e1", "arrest", "charged", "", 0)
		people := []models.Person{
			s.person("p1", original),
			s.person("p2", s.event("e2", "arrest", "charged", "", 1)),
		}
		merged := merger.Merge(people)
		s.Require().Len(merged, 1)
		merged[0].Details["poisoned"] = true
		s.NotContains(people[0].Events[0].Details, "poisoned")
	})
}

func (s *MergerSuite) TestAggregate() {
	merger := NewMerger(domains.DomainCustom, StrategyAggregate)

	people := []models.Person{
		s.person("p1",
			s.event("e1", "visit", "seen", "Clinic A", 0),
			s.event("e2", "visit", "referred", "Clinic B", 60),
			s.event("e3", "admission", "admitted", "Hospital", 30),
		),
	}
	merged := merger.Merge(people)
	s.Require().Len(merged, 2)

	s.Run("repeated types collapse into a composite", func() {
		composite := merged[0]
		s.Equal("aggregate_visit", composite.EventID)
		s.Equal("multiple", composite.Outcome)
		s.Equal("2 locations", composite.Location)
		s.Equal(s.base, composite.Date)
		s.Equal(2, composite.Details[models.DetailCount])
		s.Equal("2023-01 to 2023-03", composite.Details[models.DetailDateRange])
		s.Equal([]string{"seen", "referred"}, composite.Details[models.DetailOutcomes])
	})

	s.Run("singleton types pass through", func() {
		s.Equal("e3", merged[1].EventID)
		s.Equal("admitted", merged[1].Outcome)
	})
}

func (s *MergerSuite) TestSample() {
	merger := NewMerger(domains.DomainCustom, StrategySample)

	s.Run("small sets pass through whole", func() {
		people := []models.Person{s.person("p1",
			s.event("e1", "visit", "", "", 0),
			s.event("e2", "visit", "", "", 1),
		)}
		s.Len(merger.Merge(people), 2)
	})

	s.Run("large sets reduce to exactly ten, keeping first and last", func() {
		var events []models.Event
		for i := range 37 {
			events = append(events, s.event("e", "visit", "", "", i))
		}
		events[0].EventID = "first"
		events[36].EventID = "last"
		people := []models.Person{{PersonID: "p1", Events: events}}

		sampled := merger.Merge(people)
		s.Require().Len(sampled, 10)
		s.Equal("first", sampled[0].EventID)
		s.Equal("last", sampled[9].EventID)
	})
}

func (s *MergerSuite) TestConcatenate() {
	merger := NewMerger(domains.DomainCustom, StrategyConcatenate)

	people := []models.Person{
		s.person("p1", s.event("e2", "visit", "", "", 5)),
		s.person("p2", s.event("e1", "visit", "", "", 1)),
	}
	merged := merger.Merge(people)
	s.Require().Len(merged, 2)
	s.Equal("e1", merged[0].EventID)
	s.Equal("e2", merged[1].EventID)
}
