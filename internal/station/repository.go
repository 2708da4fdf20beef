package station

import "context"

// Repository provides access to the fuel station catalog.
type Repository interface {
	// ListGeocoded returns every station with known coordinates.
	ListGeocoded(ctx context.Context) ([]FuelStation, error)

	// Upsert inserts a station or, when a row with the same natural key
	// exists, updates its retail price. Returns the stored row and whether
	// it was newly created.
	Upsert(ctx context.Context, s FuelStation) (*FuelStation, bool, error)

	// SetCoordinates records the geocoded position of a station.
	SetCoordinates(ctx context.Context, id int64, lat, lon float64) error
}
