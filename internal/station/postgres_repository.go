package station

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL station repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// ListGeocoded returns every station with known coordinates.
func (r *PostgresRepository) ListGeocoded(ctx context.Context) ([]FuelStation, error) {
	query := `
		SELECT
			id, opis_id, truckstop_name, address, city, state, rack_id,
			retail_price, latitude, longitude, created_at, updated_at
		FROM fuel_stations
		WHERE latitude IS NOT NULL AND longitude IS NOT NULL
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []FuelStation
	for rows.Next() {
		var s FuelStation
		err := rows.Scan(
			&s.ID,
			&s.OPISID,
			&s.Name,
			&s.Address,
			&s.City,
			&s.State,
			&s.RackID,
			&s.RetailPrice,
			&s.Latitude,
			&s.Longitude,
			&s.CreatedAt,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		stations = append(stations, s)
	}

	return stations, rows.Err()
}

// Upsert inserts a station or updates the retail price of the row matching
// its natural key.
func (r *PostgresRepository) Upsert(ctx context.Context, s FuelStation) (*FuelStation, bool, error) {
	query := `
		INSERT INTO fuel_stations (
			opis_id, truckstop_name, address, city, state, rack_id,
			retail_price, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		ON CONFLICT (opis_id, truckstop_name, address, city, state, rack_id)
		DO UPDATE SET retail_price = EXCLUDED.retail_price, updated_at = now()
		RETURNING
			id, opis_id, truckstop_name, address, city, state, rack_id,
			retail_price, latitude, longitude, created_at, updated_at,
			(xmax = 0) AS inserted
	`

	var stored FuelStation
	var created bool
	err := r.pool.QueryRow(ctx, query,
		s.OPISID, s.Name, s.Address, s.City, s.State, s.RackID, s.RetailPrice,
	).Scan(
		&stored.ID,
		&stored.OPISID,
		&stored.Name,
		&stored.Address,
		&stored.City,
		&stored.State,
		&stored.RackID,
		&stored.RetailPrice,
		&stored.Latitude,
		&stored.Longitude,
		&stored.CreatedAt,
		&stored.UpdatedAt,
		&created,
	)
	if err != nil {
		return nil, false, err
	}

	return &stored, created, nil
}

// SetCoordinates records the geocoded position of a station.
func (r *PostgresRepository) SetCoordinates(ctx context.Context, id int64, lat, lon float64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE fuel_stations SET latitude = $2, longitude = $3, updated_at = now() WHERE id = $1`,
		id, lat, lon,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
