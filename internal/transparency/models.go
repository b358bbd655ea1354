// Package transparency records an audit trail of persona operations with
// integrity hashes, plus helpers for verifying and encrypting sensitive
// payloads.
package transparency

import "time"

// Operation classifies what happened to a persona or dataset.
type Operation string

const (
	OperationCreate  Operation = "create"
	OperationRead    Operation = "read"
	OperationUpdate  Operation = "update"
	OperationDelete  Operation = "delete"
	OperationProcess Operation = "process"
	OperationExport  Operation = "export"
)

// Event is a single audit trail entry. DataHash binds the entry to the
// payload it describes so later tampering is detectable.
type Event struct {
	ID        string         `json:"id"`
	Operation Operation      `json:"operation"`
	PersonaID string         `json:"persona_id"`
	Timestamp time.Time      `json:"timestamp"`
	UserID    string         `json:"user_id,omitempty"`
	DataHash  string         `json:"data_hash"`
	Details   map[string]any `json:"details,omitempty"`
}
