// Package worker provides background ingestion of fuel station price sheets.
package worker

import (
	"context"
	"errors"
	"time"
)

// JobStatus is the lifecycle state of an import job.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// ErrJobNotFound is returned when the requested job does not exist.
var ErrJobNotFound = errors.New("import job not found")

// ImportJob tracks one CSV price sheet import end to end.
type ImportJob struct {
	ID               int64      `json:"id"`
	FilePath         string     `json:"file_path"`
	OriginalFilename string     `json:"original_filename"`
	Status           JobStatus  `json:"status"`
	TotalRows        int        `json:"total_rows"`
	ProcessedRows    int        `json:"processed_rows"`
	CreatedCount     int        `json:"created_count"`
	UpdatedCount     int        `json:"updated_count"`
	GeocodedCount    int        `json:"geocoded_count"`
	FailedCount      int        `json:"failed_count"`
	ErrorLog         string     `json:"error_log,omitempty"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// JobRepository persists import jobs.
type JobRepository interface {
	// Create stores a new job and returns it with ID and timestamps set.
	Create(ctx context.Context, job ImportJob) (*ImportJob, error)

	// GetByID fetches a job, or ErrJobNotFound.
	GetByID(ctx context.Context, id int64) (*ImportJob, error)

	// Update persists the job's mutable fields (status, counters, log,
	// started/finished timestamps).
	Update(ctx context.Context, job *ImportJob) error
}
