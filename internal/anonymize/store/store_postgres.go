package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"personaforge/internal/anonymize/models"
	dErrors "personaforge/pkg/domain-errors"
)

// PostgresStore persists jobs in PostgreSQL. The result column is JSONB:
// persona payloads vary by domain and do not warrant a relational schema.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a PostgreSQL-backed job store.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, job models.Job) error {
	result, err := marshalResult(job.Result)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO anonymize_jobs (id, status, domain, privacy_level, target_risk, people_count, created_at, updated_at, result, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.pool.Exec(ctx, query,
		job.ID, string(job.Status), job.Domain, string(job.PrivacyLevel),
		job.TargetRisk, job.PeopleCount, job.CreatedAt, job.UpdatedAt, result, job.Error,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, job models.Job) error {
	result, err := marshalResult(job.Result)
	if err != nil {
		return err
	}
	query := `
		UPDATE anonymize_jobs
		SET status = $2, updated_at = $3, result = $4, error = $5
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query,
		job.ID, string(job.Status), job.UpdatedAt, result, job.Error,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dErrors.New(dErrors.CodeNotFound, "job not found")
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, jobID string) (models.Job, error) {
	query := `
		SELECT id, status, domain, privacy_level, target_risk, people_count, created_at, updated_at, result, error
		FROM anonymize_jobs
		WHERE id = $1
	`
	job, err := scanJob(s.pool.QueryRow(ctx, query, jobID))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Job{}, dErrors.New(dErrors.CodeNotFound, "job not found")
	}
	if err != nil {
		return models.Job{}, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Job, error) {
	query := `
		SELECT id, status, domain, privacy_level, target_risk, people_count, created_at, updated_at, result, error
		FROM anonymize_jobs
		ORDER BY created_at DESC
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("list jobs: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (models.Job, error) {
	var (
		job           models.Job
		status, level string
		result        []byte
	)
	if err := row.Scan(&job.ID, &status, &job.Domain, &level, &job.TargetRisk,
		&job.PeopleCount, &job.CreatedAt, &job.UpdatedAt, &result, &job.Error); err != nil {
		return models.Job{}, err
	}
	job.Status = models.JobStatus(status)
	job.PrivacyLevel = models.PrivacyLevel(level)
	if len(result) > 0 {
		job.Result = &models.JobResult{}
		if err := json.Unmarshal(result, job.Result); err != nil {
			return models.Job{}, fmt.Errorf("unmarshal job result: %w", err)
		}
	}
	return job, nil
}

func marshalResult(result *models.JobResult) ([]byte, error) {
	if result == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal job result: %w", err)
	}
	return encoded, nil
}
