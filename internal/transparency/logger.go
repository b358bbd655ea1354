package transparency

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByPersona(ctx context.Context, personaID string) ([]Event, error)
	ListByOperations(ctx context.Context, operations []Operation) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Logger records operations with integrity hashes of the affected data.
type Logger struct {
	store Store
}

// NewLogger builds a logger over a store.
func NewLogger(store Store) *Logger {
	return &Logger{store: store}
}

// Log hashes the payload and appends an audit event for the operation.
func (l *Logger) Log(ctx context.Context, op Operation, personaID string, data any, userID string, details map[string]any) (Event, error) {
	event := Event{
		ID:        uuid.NewString(),
		Operation: op,
		PersonaID: personaID,
		Timestamp: time.Now().UTC(),
		UserID:    userID,
		DataHash:  ComputeHash(data),
		Details:   details,
	}
	if err := l.store.Append(ctx, event); err != nil {
		return Event{}, fmt.Errorf("append audit event: %w", err)
	}
	return event, nil
}

// Trail returns the audit trail, filtered to one persona when personaID is
// non-empty.
func (l *Logger) Trail(ctx context.Context, personaID string) ([]Event, error) {
	if personaID == "" {
		return l.store.ListRecent(ctx, 0)
	}
	return l.store.ListByPersona(ctx, personaID)
}
