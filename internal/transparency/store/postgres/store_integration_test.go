//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"

	"personaforge/internal/transparency"
	"personaforge/pkg/testutil/containers"
)

const auditSchema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id          TEXT PRIMARY KEY,
	operation   TEXT NOT NULL,
	persona_id  TEXT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	user_id     TEXT,
	data_hash   TEXT NOT NULL,
	details     JSONB
)`

type PostgresAuditSuite struct {
	suite.Suite
	ctx   context.Context
	db    *sql.DB
	store *Store

	setupOnce sync.Once
}

func TestPostgresAuditSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresAuditSuite))
}

func (s *PostgresAuditSuite) SetupTest() {
	s.ctx = context.Background()
	s.setupOnce.Do(func() {
		pc := containers.NewPostgresContainer(s.T())
		db, err := sql.Open("postgres", pc.URL)
		s.Require().NoError(err)
		s.Require().NoError(db.Ping())
		s.T().Cleanup(func() { _ = db.Close() })

		_, err = db.ExecContext(s.ctx, auditSchema)
		s.Require().NoError(err)

		s.db = db
		s.store = New(db)
	})
	_, err := s.db.ExecContext(s.ctx, "TRUNCATE audit_events")
	s.Require().NoError(err)
}

func (s *PostgresAuditSuite) newEvent(id, personaID string, op transparency.Operation, at time.Time) transparency.Event {
	return transparency.Event{
		ID:        id,
		Operation: op,
		PersonaID: personaID,
		Timestamp: at,
		UserID:    "analyst-7",
		DataHash:  transparency.ComputeHash(map[string]any{"persona_id": personaID}),
		Details:   map[string]any{"iterations": float64(2)},
	}
}

func (s *PostgresAuditSuite) TestAppend() {
	now := time.Now().UTC().Truncate(time.Microsecond)
	event := s.newEvent("evt-1", "p1", transparency.OperationProcess, now)
	s.Require().NoError(s.store.Append(s.ctx, event))

	events, err := s.store.ListByPersona(s.ctx, "p1")
	s.Require().NoError(err)
	s.Require().Len(events, 1)

	got := events[0]
	s.Equal(event.ID, got.ID)
	s.Equal(event.Operation, got.Operation)
	s.Equal(event.UserID, got.UserID)
	s.Equal(event.DataHash, got.DataHash)
	s.Equal(event.Details, got.Details)
	s.WithinDuration(event.Timestamp, got.Timestamp, time.Millisecond)
}

func (s *PostgresAuditSuite) TestEmptyUserID() {
	event := s.newEvent("evt-1", "p1", transparency.OperationRead, time.Now().UTC())
	event.UserID = ""
	s.Require().NoError(s.store.Append(s.ctx, event))

	events, err := s.store.ListByPersona(s.ctx, "p1")
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Empty(events[0].UserID)
}

func (s *PostgresAuditSuite) TestListByOperations() {
	now := time.Now().UTC()
	fixtures := []struct {
		id string
		op transparency.Operation
	}{
		{"evt-1", transparency.OperationCreate},
		{"evt-2", transparency.OperationProcess},
		{"evt-3", transparency.OperationExport},
	}
	for i, f := range fixtures {
		event := s.newEvent(f.id, "p1", f.op, now.Add(time.Duration(i)*time.Second))
		s.Require().NoError(s.store.Append(s.ctx, event))
	}

	events, err := s.store.ListByOperations(s.ctx,
		[]transparency.Operation{transparency.OperationProcess, transparency.OperationExport})
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal("evt-2", events[0].ID)
	s.Equal("evt-3", events[1].ID)
}

func (s *PostgresAuditSuite) TestListRecent() {
	now := time.Now().UTC()
	for i := range 5 {
		event := s.newEvent(fmt.Sprintf("evt-%d", i), "p1", transparency.OperationRead,
			now.Add(time.Duration(i)*time.Second))
		s.Require().NoError(s.store.Append(s.ctx, event))
	}

	s.Run("limit returns the newest events first", func() {
		events, err := s.store.ListRecent(s.ctx, 2)
		s.Require().NoError(err)
		s.Require().Len(events, 2)
		s.Equal("evt-4", events[0].ID)
		s.Equal("evt-3", events[1].ID)
	})

	s.Run("zero limit returns everything", func() {
		events, err := s.store.ListRecent(s.ctx, 0)
		s.Require().NoError(err)
		s.Len(events, 5)
	})
}
