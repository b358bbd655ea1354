package store

import (
	"context"
	"sort"
	"sync"

	"personaforge/internal/anonymize/models"
	dErrors "personaforge/pkg/domain-errors"
)

// MemoryStore keeps jobs in process memory, for tests and single-node
// development.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]models.Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]models.Job)}
}

func (s *MemoryStore) Create(_ context.Context, job models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; exists {
		return dErrors.New(dErrors.CodeConflict, "job already exists")
	}
	s.jobs[job.ID] = job
	return nil
}

func (s *MemoryStore) Update(_ context.Context, job models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.ID]; !exists {
		return dErrors.New(dErrors.CodeNotFound, "job not found")
	}
	s.jobs[job.ID] = job
	return nil
}

func (s *MemoryStore) Get(_ context.Context, jobID string) (models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, exists := s.jobs[jobID]
	if !exists {
		return models.Job{}, dErrors.New(dErrors.CodeNotFound, "job not found")
	}
	return job, nil
}

// List returns all jobs, newest first.
func (s *MemoryStore) List(_ context.Context) ([]models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	jobs := make([]models.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs, nil
}
