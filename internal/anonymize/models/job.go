package models

import "time"

// JobStatus tracks an anonymization run through its lifecycle.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobResult is the stored outcome of a completed run.
type JobResult struct {
	Personas              []Persona `json:"personas"`
	PopulationAverageRisk float64   `json:"population_average_risk"`
	RiskLevel             string    `json:"risk_level"`
	KAnonymity            int       `json:"k_anonymity"`
	Iterations            int       `json:"iterations"`
	Success               bool      `json:"success"`
	Message               string    `json:"message"`
}

// Job is one anonymization request and its outcome.
type Job struct {
	ID           string       `json:"id"`
	Status       JobStatus    `json:"status"`
	Domain       string       `json:"domain"`
	PrivacyLevel PrivacyLevel `json:"privacy_level"`
	TargetRisk   float64      `json:"target_risk"`
	PeopleCount  int          `json:"people_count"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	Result       *JobResult   `json:"result,omitempty"`
	Error        string       `json:"error,omitempty"`
}
