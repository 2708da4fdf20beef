package worker

import (
	"context"
	"sync"
	"time"
)

// MemoryJobRepository is an in-memory JobRepository for tests and local runs.
type MemoryJobRepository struct {
	mu     sync.RWMutex
	jobs   map[int64]*ImportJob
	nextID int64
}

// NewMemoryJobRepository creates an empty in-memory job repository.
func NewMemoryJobRepository() *MemoryJobRepository {
	return &MemoryJobRepository{
		jobs:   make(map[int64]*ImportJob),
		nextID: 1,
	}
}

// Create stores a new import job.
func (r *MemoryJobRepository) Create(_ context.Context, job ImportJob) (*ImportJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	job.ID = r.nextID
	r.nextID++
	if job.Status == "" {
		job.Status = StatusPending
	}
	job.CreatedAt = now
	job.UpdatedAt = now

	stored := job
	r.jobs[stored.ID] = &stored

	result := stored
	return &result, nil
}

// GetByID fetches an import job by ID.
func (r *MemoryJobRepository) GetByID(_ context.Context, id int64) (*ImportJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}

	result := *job
	return &result, nil
}

// Update persists the job's mutable fields.
func (r *MemoryJobRepository) Update(_ context.Context, job *ImportJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[job.ID]; !ok {
		return ErrJobNotFound
	}

	stored := *job
	stored.UpdatedAt = time.Now().UTC()
	r.jobs[job.ID] = &stored
	return nil
}
