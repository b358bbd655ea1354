package grouping

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"personaforge/internal/anonymize/models"
)

type GrouperSuite struct {
	suite.Suite
}

func TestGrouperSuite(t *testing.T) {
	suite.Run(t, new(GrouperSuite))
}

func person(id, gender, ethnicity, geography string, age int) models.Person {
	return models.Person{
		PersonID: id,
		Demographics: models.Demographics{
			Age:       &age,
			Gender:    gender,
			Ethnicity: ethnicity,
			Geography: geography,
		},
	}
}

func (s *GrouperSuite) TestCriteriaFor() {
	s.Run("each privacy level has its own tolerance and minimum size", func() {
		cases := []struct {
			level   models.PrivacyLevel
			ageTol  int
			minSize int
		}{
			{models.PrivacyLow, 5, 3},
			{models.PrivacyMedium, 3, 5},
			{models.PrivacyHigh, 5, 10},
			{models.PrivacyMaximum, 10, 20},
		}
		for _, tc := range cases {
			c := CriteriaFor(tc.level)
			s.Equal(tc.ageTol, c.AgeTolerance, tc.level)
			s.Equal(tc.minSize, c.MinimumGroupSize, tc.level)
		}
	})

	s.Run("unknown level falls back to medium", func() {
		c := CriteriaFor(models.PrivacyLevel("bogus"))
		s.Equal(3, c.AgeTolerance)
		s.Equal(5, c.MinimumGroupSize)
	})
}

func (s *GrouperSuite) TestGroup() {
	s.Run("similar people share a group", func() {
		g := New(CriteriaFor(models.PrivacyMedium))
		var people []models.Person
		for i := range 5 {
			people = append(people, person(fmt.Sprintf("p%d", i), "Female", "White", "Hamilton County, OH", 31))
		}
		groups := g.Group(people)
		s.Require().Len(groups, 1)
		s.Len(groups[0], 5)
	})

	s.Run("geography is truncated at the county comma", func() {
		g := New(CriteriaFor(models.PrivacyMedium))
		people := []models.Person{
			person("p1", "Male", "White", "Hamilton County, Cincinnati", 30),
			person("p2", "Male", "White", "Hamilton County, Norwood", 30),
			person("p3", "Male", "White", "Hamilton County, OH", 31),
			person("p4", "Male", "White", "Hamilton County", 29),
			person("p5", "Male", "White", "Hamilton County, Loveland", 30),
		}
		groups := g.Group(people)
		s.Require().Len(groups, 1)
		s.Len(groups[0], 5)
	})

	s.Run("ages bin by the tolerance", func() {
		g := New(CriteriaFor(models.PrivacyMedium))
		a := person("a", "Male", "White", "X", 30) // bin 30
		b := person("b", "Male", "White", "X", 32) // bin 30
		c := person("c", "Male", "White", "X", 33) // bin 33
		groups := g.Group([]models.Person{a, b, c})
		// Neither bucket reaches the minimum, so everything pools together.
		s.Require().Len(groups, 1)
		s.Len(groups[0], 3)
	})

	s.Run("undersized pool reaching the minimum becomes its own group", func() {
		g := New(CriteriaFor(models.PrivacyMedium))
		var people []models.Person
		for i := range 5 {
			people = append(people, person(fmt.Sprintf("m%d", i), "Male", "White", "X", 30))
		}
		people = append(people,
			person("f1", "Female", "White", "X", 30),
			person("f2", "Female", "Black", "X", 30),
			person("f3", "Female", "Asian", "X", 30),
			person("f4", "Female", "Other", "X", 30),
			person("f5", "Female", "Hispanic", "X", 30),
		)
		groups := g.Group(people)
		s.Require().Len(groups, 2)
		s.Len(groups[0], 5)
		s.Len(groups[1], 5)
	})

	s.Run("small undersized pool folds into the first valid group", func() {
		g := New(CriteriaFor(models.PrivacyMedium))
		var people []models.Person
		for i := range 5 {
			people = append(people, person(fmt.Sprintf("m%d", i), "Male", "White", "X", 30))
		}
		people = append(people, person("f1", "Female", "White", "X", 30))
		groups := g.Group(people)
		s.Require().Len(groups, 1)
		s.Len(groups[0], 6)
	})

	s.Run("every person lands in exactly one group", func() {
		g := New(CriteriaFor(models.PrivacyMedium))
		people := []models.Person{
			person("p1", "Male", "White", "A", 20),
			person("p2", "Female", "Black", "B", 40),
			person("p3", "Male", "Asian", "C", 60),
		}
		groups := g.Group(people)
		seen := make(map[string]int)
		for _, group := range groups {
			for _, p := range group {
				seen[p.PersonID]++
			}
		}
		s.Len(seen, 3)
		for id, count := range seen {
			s.Equal(1, count, id)
		}
	})

	s.Run("missing age uses the default", func() {
		g := New(CriteriaFor(models.PrivacyMedium))
		noAge := models.Person{PersonID: "na", Demographics: models.Demographics{Gender: "Male", Ethnicity: "White", Geography: "X"}}
		withDefault := person("wd", "Male", "White", "X", 30)
		groups := g.Group([]models.Person{noAge, withDefault})
		s.Require().Len(groups, 1)
		s.Len(groups[0], 2)
	})

	s.Run("empty input yields no groups", func() {
		g := New(CriteriaFor(models.PrivacyMedium))
		s.Nil(g.Group(nil))
	})
}

func (s *GrouperSuite) TestSetMinimumGroupSize() {
	g := New(CriteriaFor(models.PrivacyMedium))
	g.SetMinimumGroupSize(10)
	s.Equal(10, g.Criteria().MinimumGroupSize)

	// Lowering is ignored.
	g.SetMinimumGroupSize(3)
	s.Equal(10, g.Criteria().MinimumGroupSize)
}
