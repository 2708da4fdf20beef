package worker

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fuelroute/fuelroute/internal/geocoding"
	"github.com/fuelroute/fuelroute/internal/station"
)

// Column headers of the OPIS price sheet format.
const (
	columnOPISID = "OPIS Truckstop ID"
	columnName   = "Truckstop Name"
	columnAddr   = "Address"
	columnCity   = "City"
	columnState  = "State"
	columnRackID = "Rack ID"
	columnPrice  = "Retail Price"
)

// progressInterval is how many rows are processed between job progress saves.
const progressInterval = 100

// Geocoder resolves station addresses. Satisfied by geocoding.Service.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*geocoding.Result, error)
}

// CatalogInvalidator drops the cached station snapshot after an import.
// Satisfied by station.Catalog.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context) error
}

// ImporterConfig holds dependencies for the CSV importer.
type ImporterConfig struct {
	Jobs     JobRepository
	Stations station.Repository
	Geocoder Geocoder
	Catalog  CatalogInvalidator
	Logger   zerolog.Logger
}

// Importer ingests OPIS price sheet CSVs into the station catalog. Rows
// upsert by natural key; stations without coordinates are geocoded from
// their address. Row-level failures are counted and logged on the job
// without aborting the import.
type Importer struct {
	jobs     JobRepository
	stations station.Repository
	geocoder Geocoder
	catalog  CatalogInvalidator
	logger   zerolog.Logger
}

// NewImporter creates a CSV importer.
func NewImporter(cfg ImporterConfig) *Importer {
	return &Importer{
		jobs:     cfg.Jobs,
		stations: cfg.Stations,
		geocoder: cfg.Geocoder,
		catalog:  cfg.Catalog,
		logger:   cfg.Logger,
	}
}

// Run processes the import job with the given ID to completion. The job
// record tracks progress and per-row failures; Run returns an error only
// when the job as a whole cannot proceed, after marking it failed.
func (i *Importer) Run(ctx context.Context, jobID int64) error {
	job, err := i.jobs.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("loading import job %d: %w", jobID, err)
	}

	now := time.Now().UTC()
	job.Status = StatusRunning
	job.StartedAt = &now
	if err := i.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("marking job %d running: %w", jobID, err)
	}

	logger := i.logger.With().Int64("job_id", job.ID).Str("file", job.OriginalFilename).Logger()
	logger.Info().Msg("starting station import")

	if err := i.process(ctx, job, logger); err != nil {
		finished := time.Now().UTC()
		job.Status = StatusFailed
		job.FinishedAt = &finished
		if job.ErrorLog != "" {
			job.ErrorLog += "\n"
		}
		job.ErrorLog += fmt.Sprintf("job failed: %v", err)
		if updateErr := i.jobs.Update(ctx, job); updateErr != nil {
			logger.Error().Err(updateErr).Msg("failed to persist failed job state")
		}
		logger.Error().Err(err).Msg("station import failed")
		return err
	}

	logger.Info().
		Int("processed", job.ProcessedRows).
		Int("created", job.CreatedCount).
		Int("updated", job.UpdatedCount).
		Int("geocoded", job.GeocodedCount).
		Int("failed", job.FailedCount).
		Msg("station import completed")
	return nil
}

func (i *Importer) process(ctx context.Context, job *ImportJob, logger zerolog.Logger) error {
	f, err := os.Open(job.FilePath)
	if err != nil {
		return fmt.Errorf("opening price sheet: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	columns, err := mapColumns(header)
	if err != nil {
		return err
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading rows: %w", err)
		}
		records = append(records, record)
	}

	job.TotalRows = len(records)
	if err := i.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("saving row count: %w", err)
	}

	var errorMessages []string
	for index, record := range records {
		rowNum := index + 1
		if err := i.importRow(ctx, job, columns, record); err != nil {
			job.FailedCount++
			errorMessages = append(errorMessages, fmt.Sprintf("row %d: %v", rowNum, err))
		}

		job.ProcessedRows++
		if job.ProcessedRows%progressInterval == 0 {
			if err := i.jobs.Update(ctx, job); err != nil {
				logger.Warn().Err(err).Msg("failed to save import progress")
			}
		}
	}

	finished := time.Now().UTC()
	job.Status = StatusCompleted
	job.FinishedAt = &finished
	job.ErrorLog = strings.Join(errorMessages, "\n")
	if err := i.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("saving completed job: %w", err)
	}

	if err := i.catalog.Invalidate(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate station snapshot")
	}
	return nil
}

// importRow upserts one price sheet row and geocodes the station when its
// coordinates are still unknown. A geocoding failure fails the row but the
// price update it already applied stands.
func (i *Importer) importRow(ctx context.Context, job *ImportJob, columns map[string]int, record []string) error {
	parsed, err := parseRow(columns, record)
	if err != nil {
		return err
	}

	stored, created, err := i.stations.Upsert(ctx, parsed)
	if err != nil {
		return fmt.Errorf("upserting station: %w", err)
	}
	if created {
		job.CreatedCount++
	} else {
		job.UpdatedCount++
	}

	if stored.Geocoded() {
		return nil
	}

	query := fmt.Sprintf("%s, %s, %s", parsed.Address, parsed.City, parsed.State)
	result, err := i.geocoder.Geocode(ctx, query)
	if err != nil {
		return fmt.Errorf("geocoding failed: %w", err)
	}
	if err := i.stations.SetCoordinates(ctx, stored.ID, result.Latitude, result.Longitude); err != nil {
		return fmt.Errorf("saving coordinates: %w", err)
	}
	job.GeocodedCount++
	return nil
}

func mapColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for idx, name := range header {
		columns[strings.TrimSpace(name)] = idx
	}
	for _, required := range []string{
		columnOPISID, columnName, columnAddr, columnCity, columnState, columnRackID, columnPrice,
	} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("price sheet missing column %q", required)
		}
	}
	return columns, nil
}

func parseRow(columns map[string]int, record []string) (station.FuelStation, error) {
	field := func(name string) (string, error) {
		idx := columns[name]
		if idx >= len(record) {
			return "", fmt.Errorf("missing field %q", name)
		}
		return strings.TrimSpace(record[idx]), nil
	}

	var s station.FuelStation
	var err error

	rawOPIS, err := field(columnOPISID)
	if err != nil {
		return s, err
	}
	s.OPISID, err = strconv.Atoi(rawOPIS)
	if err != nil {
		return s, fmt.Errorf("invalid %s %q", columnOPISID, rawOPIS)
	}

	if s.Name, err = field(columnName); err != nil {
		return s, err
	}
	if s.Address, err = field(columnAddr); err != nil {
		return s, err
	}
	if s.City, err = field(columnCity); err != nil {
		return s, err
	}
	if s.State, err = field(columnState); err != nil {
		return s, err
	}

	rawRack, err := field(columnRackID)
	if err != nil {
		return s, err
	}
	s.RackID, err = strconv.Atoi(rawRack)
	if err != nil {
		return s, fmt.Errorf("invalid %s %q", columnRackID, rawRack)
	}

	rawPrice, err := field(columnPrice)
	if err != nil {
		return s, err
	}
	s.RetailPrice, err = strconv.ParseFloat(rawPrice, 64)
	if err != nil {
		return s, fmt.Errorf("invalid %s %q", columnPrice, rawPrice)
	}

	return s, nil
}
