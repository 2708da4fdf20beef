package station

import (
	"context"
	"sync"
	"time"
)

// MemoryRepository is an in-memory Repository for tests and local development.
type MemoryRepository struct {
	mu       sync.RWMutex
	stations map[int64]FuelStation
	byKey    map[Identity]int64
	nextID   int64
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		stations: make(map[int64]FuelStation),
		byKey:    make(map[Identity]int64),
		nextID:   1,
	}
}

// ListGeocoded returns every station with known coordinates.
func (r *MemoryRepository) ListGeocoded(_ context.Context) ([]FuelStation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stations []FuelStation
	for _, s := range r.stations {
		if s.Geocoded() {
			stations = append(stations, s)
		}
	}
	return stations, nil
}

// Upsert inserts a station or updates the price of the matching row.
func (r *MemoryRepository) Upsert(_ context.Context, s FuelStation) (*FuelStation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if id, ok := r.byKey[s.Identity()]; ok {
		existing := r.stations[id]
		existing.RetailPrice = s.RetailPrice
		existing.UpdatedAt = now
		r.stations[id] = existing
		return &existing, false, nil
	}

	s.ID = r.nextID
	r.nextID++
	s.CreatedAt = now
	s.UpdatedAt = now
	r.stations[s.ID] = s
	r.byKey[s.Identity()] = s.ID
	return &s, true, nil
}

// SetCoordinates records the geocoded position of a station.
func (r *MemoryRepository) SetCoordinates(_ context.Context, id int64, lat, lon float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.stations[id]
	if !ok {
		return ErrNotFound
	}
	s.Latitude = &lat
	s.Longitude = &lon
	s.UpdatedAt = time.Now()
	r.stations[id] = s
	return nil
}
