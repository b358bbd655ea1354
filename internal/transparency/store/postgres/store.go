package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"personaforge/internal/transparency"
)

// Store persists audit events in PostgreSQL. Details are stored as JSONB so
// the trail survives schema evolution of per-operation metadata.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event transparency.Event) error {
	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}

	query := `
		INSERT INTO audit_events (id, operation, persona_id, occurred_at, user_id, data_hash, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := s.db.ExecContext(ctx, query,
		event.ID, string(event.Operation), event.PersonaID,
		event.Timestamp, nullable(event.UserID), event.DataHash, details,
	); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByPersona(ctx context.Context, personaID string) ([]transparency.Event, error) {
	query := `
		SELECT id, operation, persona_id, occurred_at, user_id, data_hash, details
		FROM audit_events
		WHERE persona_id = $1
		ORDER BY occurred_at
	`
	rows, err := s.db.QueryContext(ctx, query, personaID)
	if err != nil {
		return nil, fmt.Errorf("list audit events by persona: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *Store) ListByOperations(ctx context.Context, operations []transparency.Operation) ([]transparency.Event, error) {
	names := make([]string, len(operations))
	for i, op := range operations {
		names[i] = string(op)
	}
	query := `
		SELECT id, operation, persona_id, occurred_at, user_id, data_hash, details
		FROM audit_events
		WHERE operation = ANY($1)
		ORDER BY occurred_at
	`
	rows, err := s.db.QueryContext(ctx, query, pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("list audit events by operation: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]transparency.Event, error) {
	query := `
		SELECT id, operation, persona_id, occurred_at, user_id, data_hash, details
		FROM audit_events
		ORDER BY occurred_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recent audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]transparency.Event, error) {
	var events []transparency.Event
	for rows.Next() {
		var (
			event     transparency.Event
			operation string
			userID    sql.NullString
			details   []byte
		)
		if err := rows.Scan(&event.ID, &operation, &event.PersonaID,
			&event.Timestamp, &userID, &event.DataHash, &details); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Operation = transparency.Operation(operation)
		event.UserID = userID.String
		if len(details) > 0 {
			if err := json.Unmarshal(details, &event.Details); err != nil {
				return nil, fmt.Errorf("unmarshal audit details: %w", err)
			}
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
