// Package census supplies population demographic baselines used to refine
// external-linkage risk estimates. Data comes from a bundled national
// dataset, optionally fronted by a Redis cache.
package census

import (
	"context"
	"strings"
)

// Data holds demographic distributions for a geographic area.
type Data struct {
	Geography             string             `json:"geography"`
	TotalPopulation       int64              `json:"total_population"`
	AgeDistribution       map[string]float64 `json:"age_distribution"`
	GenderDistribution    map[string]float64 `json:"gender_distribution"`
	EthnicityDistribution map[string]float64 `json:"ethnicity_distribution"`
}

// DemographicFrequency estimates how common a demographic combination is in
// this area, between 0 and 1. Unknown attributes contribute no factor, so an
// empty query returns 1.0.
func (d Data) DemographicFrequency(ageRange, gender, ethnicity string) float64 {
	frequency := 1.0
	if share, ok := d.AgeDistribution[ageRange]; ok && ageRange != "" {
		frequency *= share
	}
	if share, ok := d.GenderDistribution[gender]; ok && gender != "" {
		frequency *= share
	}
	if share, ok := d.EthnicityDistribution[ethnicity]; ok && ethnicity != "" {
		frequency *= share
	}
	return frequency
}

// Source resolves census data for a geography.
type Source interface {
	CensusData(ctx context.Context, geography string) (Data, error)
}

// Provider answers demographic frequency queries on top of a Source.
type Provider struct {
	source Source
}

// NewProvider wraps a source. A nil source falls back to the bundled
// national dataset.
func NewProvider(source Source) *Provider {
	if source == nil {
		source = NewStaticSource()
	}
	return &Provider{source: source}
}

// DemographicFrequency looks up the area and computes the combination
// frequency there.
func (p *Provider) DemographicFrequency(ctx context.Context, geography, ageRange, gender, ethnicity string) (float64, error) {
	data, err := p.source.CensusData(ctx, geography)
	if err != nil {
		return 0, err
	}
	return data.DemographicFrequency(ageRange, gender, ethnicity), nil
}

// normalizeGeography canonicalizes an area name for lookup and cache keys.
func normalizeGeography(geography string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(geography)), " ", "_")
}
