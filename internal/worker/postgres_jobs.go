package worker

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresJobRepository is a PostgreSQL implementation of JobRepository.
type PostgresJobRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresJobRepository creates a new PostgreSQL job repository.
func NewPostgresJobRepository(pool *pgxpool.Pool) *PostgresJobRepository {
	return &PostgresJobRepository{pool: pool}
}

// Create stores a new import job.
func (r *PostgresJobRepository) Create(ctx context.Context, job ImportJob) (*ImportJob, error) {
	query := `
		INSERT INTO station_import_jobs (
			file_path, original_filename, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, now(), now())
		RETURNING
			id, file_path, original_filename, status, total_rows,
			processed_rows, created_count, updated_count, geocoded_count,
			failed_count, error_log, started_at, finished_at,
			created_at, updated_at
	`

	status := job.Status
	if status == "" {
		status = StatusPending
	}

	var stored ImportJob
	err := r.pool.QueryRow(ctx, query, job.FilePath, job.OriginalFilename, status).Scan(
		&stored.ID,
		&stored.FilePath,
		&stored.OriginalFilename,
		&stored.Status,
		&stored.TotalRows,
		&stored.ProcessedRows,
		&stored.CreatedCount,
		&stored.UpdatedCount,
		&stored.GeocodedCount,
		&stored.FailedCount,
		&stored.ErrorLog,
		&stored.StartedAt,
		&stored.FinishedAt,
		&stored.CreatedAt,
		&stored.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &stored, nil
}

// GetByID fetches an import job by ID.
func (r *PostgresJobRepository) GetByID(ctx context.Context, id int64) (*ImportJob, error) {
	query := `
		SELECT
			id, file_path, original_filename, status, total_rows,
			processed_rows, created_count, updated_count, geocoded_count,
			failed_count, error_log, started_at, finished_at,
			created_at, updated_at
		FROM station_import_jobs
		WHERE id = $1
	`

	var job ImportJob
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&job.ID,
		&job.FilePath,
		&job.OriginalFilename,
		&job.Status,
		&job.TotalRows,
		&job.ProcessedRows,
		&job.CreatedCount,
		&job.UpdatedCount,
		&job.GeocodedCount,
		&job.FailedCount,
		&job.ErrorLog,
		&job.StartedAt,
		&job.FinishedAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	return &job, nil
}

// Update persists the job's mutable fields.
func (r *PostgresJobRepository) Update(ctx context.Context, job *ImportJob) error {
	query := `
		UPDATE station_import_jobs
		SET
			status = $2,
			total_rows = $3,
			processed_rows = $4,
			created_count = $5,
			updated_count = $6,
			geocoded_count = $7,
			failed_count = $8,
			error_log = $9,
			started_at = $10,
			finished_at = $11,
			updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		job.ID,
		job.Status,
		job.TotalRows,
		job.ProcessedRows,
		job.CreatedCount,
		job.UpdatedCount,
		job.GeocodedCount,
		job.FailedCount,
		job.ErrorLog,
		job.StartedAt,
		job.FinishedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrJobNotFound
	}
	return nil
}
