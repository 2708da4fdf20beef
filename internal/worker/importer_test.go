package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelroute/fuelroute/internal/geocoding"
	"github.com/fuelroute/fuelroute/internal/station"
)

type mockGeocoder struct {
	callCount atomic.Int64
	err       error
}

func (m *mockGeocoder) Geocode(_ context.Context, _ string) (*geocoding.Result, error) {
	m.callCount.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return &geocoding.Result{Latitude: 35.0, Longitude: -97.0, PlaceName: "Somewhere, OK", IsUS: true}, nil
}

type mockInvalidator struct {
	callCount atomic.Int64
}

func (m *mockInvalidator) Invalidate(_ context.Context) error {
	m.callCount.Add(1)
	return nil
}

const priceSheetHeader = `OPIS Truckstop ID,Truckstop Name,Address,City,State,Rack ID,Retail Price`

func writePriceSheet(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prices.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

type importerHarness struct {
	importer    *Importer
	jobs        *MemoryJobRepository
	stations    *station.MemoryRepository
	geocoder    *mockGeocoder
	invalidator *mockInvalidator
}

func newImporterHarness(t *testing.T) *importerHarness {
	t.Helper()
	h := &importerHarness{
		jobs:        NewMemoryJobRepository(),
		stations:    station.NewMemoryRepository(),
		geocoder:    &mockGeocoder{},
		invalidator: &mockInvalidator{},
	}
	h.importer = NewImporter(ImporterConfig{
		Jobs:     h.jobs,
		Stations: h.stations,
		Geocoder: h.geocoder,
		Catalog:  h.invalidator,
		Logger:   zerolog.Nop(),
	})
	return h
}

func (h *importerHarness) createJob(t *testing.T, path string) *ImportJob {
	t.Helper()
	job, err := h.jobs.Create(context.Background(), ImportJob{
		FilePath:         path,
		OriginalFilename: filepath.Base(path),
	})
	require.NoError(t, err)
	return job
}

func TestImporter_ImportsAndGeocodes(t *testing.T) {
	sheet := priceSheetHeader + "\n" +
		`101,Flying J #5,100 Main St,Amarillo,TX,7,3.459` + "\n" +
		`102,Loves #12,200 Elm St,Tulsa,OK,7,3.299` + "\n"

	h := newImporterHarness(t)
	job := h.createJob(t, writePriceSheet(t, sheet))

	require.NoError(t, h.importer.Run(context.Background(), job.ID))

	updated, err := h.jobs.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, updated.Status)
	assert.Equal(t, 2, updated.TotalRows)
	assert.Equal(t, 2, updated.ProcessedRows)
	assert.Equal(t, 2, updated.CreatedCount)
	assert.Equal(t, 0, updated.UpdatedCount)
	assert.Equal(t, 2, updated.GeocodedCount)
	assert.Equal(t, 0, updated.FailedCount)
	assert.Empty(t, updated.ErrorLog)
	assert.NotNil(t, updated.StartedAt)
	assert.NotNil(t, updated.FinishedAt)

	geocoded, err := h.stations.ListGeocoded(context.Background())
	require.NoError(t, err)
	assert.Len(t, geocoded, 2)

	assert.Equal(t, int64(1), h.invalidator.callCount.Load(), "completed imports drop the snapshot")
}

func TestImporter_ReimportUpdatesPrices(t *testing.T) {
	row := `101,Flying J #5,100 Main St,Amarillo,TX,7,`

	h := newImporterHarness(t)
	first := h.createJob(t, writePriceSheet(t, priceSheetHeader+"\n"+row+"3.459\n"))
	require.NoError(t, h.importer.Run(context.Background(), first.ID))

	second := h.createJob(t, writePriceSheet(t, priceSheetHeader+"\n"+row+"3.099\n"))
	require.NoError(t, h.importer.Run(context.Background(), second.ID))

	updated, err := h.jobs.GetByID(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.CreatedCount)
	assert.Equal(t, 1, updated.UpdatedCount)
	assert.Equal(t, 0, updated.GeocodedCount, "already-geocoded stations are not geocoded again")

	stations, err := h.stations.ListGeocoded(context.Background())
	require.NoError(t, err)
	require.Len(t, stations, 1)
	assert.Equal(t, 3.099, stations[0].RetailPrice)
	assert.Equal(t, int64(1), h.geocoder.callCount.Load())
}

func TestImporter_BadRowsCountedNotFatal(t *testing.T) {
	sheet := priceSheetHeader + "\n" +
		`101,Flying J #5,100 Main St,Amarillo,TX,7,3.459` + "\n" +
		`not-a-number,Broken Stop,1 Bad Rd,Nowhere,KS,7,3.000` + "\n" +
		`103,Petro #9,300 Oak St,Wichita,KS,7,not-a-price` + "\n"

	h := newImporterHarness(t)
	job := h.createJob(t, writePriceSheet(t, sheet))

	require.NoError(t, h.importer.Run(context.Background(), job.ID))

	updated, err := h.jobs.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, updated.Status, "row failures do not fail the job")
	assert.Equal(t, 3, updated.ProcessedRows)
	assert.Equal(t, 1, updated.CreatedCount)
	assert.Equal(t, 2, updated.FailedCount)
	assert.Contains(t, updated.ErrorLog, "row 2:")
	assert.Contains(t, updated.ErrorLog, "row 3:")
}

func TestImporter_GeocodeFailureFailsRowOnly(t *testing.T) {
	sheet := priceSheetHeader + "\n" +
		`101,Flying J #5,100 Main St,Amarillo,TX,7,3.459` + "\n"

	h := newImporterHarness(t)
	h.geocoder.err = &geocoding.Error{Provider: "mock", Message: "no result", Err: geocoding.ErrNotFound}
	job := h.createJob(t, writePriceSheet(t, sheet))

	require.NoError(t, h.importer.Run(context.Background(), job.ID))

	updated, err := h.jobs.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, updated.Status)
	assert.Equal(t, 1, updated.CreatedCount, "the price row lands even when geocoding fails")
	assert.Equal(t, 0, updated.GeocodedCount)
	assert.Equal(t, 1, updated.FailedCount)
	assert.Contains(t, updated.ErrorLog, "geocoding failed")

	geocoded, err := h.stations.ListGeocoded(context.Background())
	require.NoError(t, err)
	assert.Empty(t, geocoded, "the station stays out of the corridor search")
}

func TestImporter_MissingColumnFailsJob(t *testing.T) {
	sheet := "OPIS Truckstop ID,Truckstop Name,Address,City,State\n101,X,1 St,Y,TX\n"

	h := newImporterHarness(t)
	job := h.createJob(t, writePriceSheet(t, sheet))

	err := h.importer.Run(context.Background(), job.ID)
	require.Error(t, err)

	updated, getErr := h.jobs.GetByID(context.Background(), job.ID)
	require.NoError(t, getErr)
	assert.Equal(t, StatusFailed, updated.Status)
	assert.Contains(t, updated.ErrorLog, "missing column")
	assert.NotNil(t, updated.FinishedAt)
	assert.Zero(t, h.invalidator.callCount.Load(), "failed imports keep the snapshot")
}

func TestImporter_MissingFileFailsJob(t *testing.T) {
	h := newImporterHarness(t)
	job := h.createJob(t, filepath.Join(t.TempDir(), "does-not-exist.csv"))

	err := h.importer.Run(context.Background(), job.ID)
	require.Error(t, err)

	updated, getErr := h.jobs.GetByID(context.Background(), job.ID)
	require.NoError(t, getErr)
	assert.Equal(t, StatusFailed, updated.Status)
}

func TestImporter_UnknownJob(t *testing.T) {
	h := newImporterHarness(t)
	err := h.importer.Run(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrJobNotFound))
}
