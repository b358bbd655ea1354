package models

// AnonymizeRequest is the payload for starting an anonymization run.
type AnonymizeRequest struct {
	Domain        string       `json:"domain"`
	PrivacyLevel  PrivacyLevel `json:"privacy_level"`
	TargetRisk    float64      `json:"target_risk"`
	MergeStrategy string       `json:"merge_strategy"`
	People        []Person     `json:"people"`
}
