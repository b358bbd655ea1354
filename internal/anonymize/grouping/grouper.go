// Package grouping partitions people into demographic-equivalence groups,
// the k-anonymity foundation of the whole pipeline: every group becomes one
// persona, so group size is the k in k-anonymity.
package grouping

import (
	"strconv"
	"strings"

	"personaforge/internal/anonymize/models"
)

// defaultAge is assumed when a person's age is unknown, so missing ages do
// not fragment grouping.
const defaultAge = 30

// Criteria controls how the composite demographic key is built and how small
// a group may be.
type Criteria struct {
	AgeTolerance     int
	GeographyLevel   string // "county" truncates to the segment before the first comma
	GenderMatch      bool
	EthnicityMatch   bool
	MinimumGroupSize int
	MaximumGroupSize int
}

// CriteriaFor returns the grouping criteria for a privacy level. Stricter
// levels demand larger groups and wider age bins.
func CriteriaFor(level models.PrivacyLevel) Criteria {
	c := Criteria{
		GeographyLevel:   "county",
		GenderMatch:      true,
		EthnicityMatch:   true,
		MaximumGroupSize: 50,
	}
	switch level {
	case models.PrivacyLow:
		c.AgeTolerance, c.MinimumGroupSize = 5, 3
	case models.PrivacyMedium:
		c.AgeTolerance, c.MinimumGroupSize = 3, 5
	case models.PrivacyHigh:
		c.AgeTolerance, c.MinimumGroupSize = 5, 10
	case models.PrivacyMaximum:
		c.AgeTolerance, c.MinimumGroupSize = 10, 20
	default:
		c.AgeTolerance, c.MinimumGroupSize = 3, 5
	}
	return c
}

// Grouper buckets people by composite demographic key.
type Grouper struct {
	criteria Criteria
}

// New builds a grouper with the given criteria.
func New(criteria Criteria) *Grouper {
	return &Grouper{criteria: criteria}
}

// Criteria returns the active grouping criteria.
func (g *Grouper) Criteria() Criteria { return g.criteria }

// SetMinimumGroupSize tightens the minimum group size; the privacy
// controller raises it when k-anonymity is too low.
func (g *Grouper) SetMinimumGroupSize(size int) {
	if size > g.criteria.MinimumGroupSize {
		g.criteria.MinimumGroupSize = size
	}
}

// Group partitions people into demographic groups. The partition is total
// (every person lands in exactly one group) and deterministic for a given
// input order. Buckets smaller than the minimum size are pooled; if the pool
// itself reaches the minimum it becomes its own group, otherwise it folds
// into the first valid group. When no valid group exists at all, the
// undersized pool is returned as-is — the one documented exception to the
// minimum-size invariant.
func (g *Grouper) Group(people []models.Person) [][]models.Person {
	if len(people) == 0 {
		return nil
	}

	var keyOrder []string
	buckets := make(map[string][]models.Person)
	for _, person := range people {
		key := g.demographicKey(person.Demographics)
		if _, seen := buckets[key]; !seen {
			keyOrder = append(keyOrder, key)
		}
		buckets[key] = append(buckets[key], person)
	}

	var groups [][]models.Person
	var undersized []models.Person
	for _, key := range keyOrder {
		bucket := buckets[key]
		if len(bucket) >= g.criteria.MinimumGroupSize {
			groups = append(groups, bucket)
		} else {
			undersized = append(undersized, bucket...)
		}
	}

	if len(undersized) > 0 {
		switch {
		case len(undersized) >= g.criteria.MinimumGroupSize:
			groups = append(groups, undersized)
		case len(groups) > 0:
			groups[0] = append(groups[0], undersized...)
		default:
			groups = append(groups, undersized)
		}
	}

	return groups
}

// demographicKey builds the equivalence key: exact gender and ethnicity
// (or "unknown"), age floored to the tolerance bin, geography truncated to
// the configured level.
func (g *Grouper) demographicKey(d models.Demographics) string {
	age := defaultAge
	if d.Age != nil {
		age = *d.Age
	}
	ageBin := (age / g.criteria.AgeTolerance) * g.criteria.AgeTolerance

	geo := d.Geography
	if geo == "" {
		geo = "unknown"
	}
	if strings.Contains(g.criteria.GeographyLevel, "county") {
		if idx := strings.Index(geo, ","); idx >= 0 {
			geo = geo[:idx]
		}
	}

	var parts []string
	if g.criteria.GenderMatch {
		parts = append(parts, valueOrUnknown(d.Gender))
	}
	if g.criteria.EthnicityMatch {
		parts = append(parts, valueOrUnknown(d.Ethnicity))
	}
	parts = append(parts, strconv.Itoa(ageBin), geo)

	return strings.Join(parts, "|")
}

func valueOrUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
