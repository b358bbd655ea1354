package census

import "context"

// StaticSource serves bundled national demographic averages. It never
// fails, so it is the terminal fallback behind any cached or remote source.
type StaticSource struct {
	areas map[string]Data
}

// NewStaticSource builds the bundled dataset.
func NewStaticSource() *StaticSource {
	national := Data{
		Geography:       "United States",
		TotalPopulation: 330_000_000,
		AgeDistribution: map[string]float64{
			"0-17":  0.22,
			"18-24": 0.09,
			"25-34": 0.14,
			"35-44": 0.13,
			"45-54": 0.13,
			"55-64": 0.13,
			"65-74": 0.10,
			"75+":   0.06,
		},
		GenderDistribution: map[string]float64{
			"Male":   0.49,
			"Female": 0.51,
		},
		EthnicityDistribution: map[string]float64{
			"White":    0.60,
			"Black":    0.13,
			"Hispanic": 0.19,
			"Asian":    0.06,
			"Other":    0.02,
		},
	}
	return &StaticSource{
		areas: map[string]Data{
			"united_states": national,
			"default":       national,
		},
	}
}

// CensusData returns data for the area, or national averages relabelled
// with the requested geography when no specific dataset exists.
func (s *StaticSource) CensusData(_ context.Context, geography string) (Data, error) {
	key := normalizeGeography(geography)
	if data, ok := s.areas[key]; ok {
		return data, nil
	}
	data := s.areas["default"]
	data.Geography = geography
	return data, nil
}
