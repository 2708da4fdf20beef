// Package station manages the fuel station catalog: the OPIS truck-stop
// records with retail diesel prices that the corridor search runs against.
package station

import (
	"errors"
	"time"
)

// ErrNotFound indicates the requested station does not exist.
var ErrNotFound = errors.New("fuel station not found")

// FuelStation is one truck-stop record from the OPIS price feed.
type FuelStation struct {
	ID      int64  `json:"id"`
	OPISID  int    `json:"opis_id"`
	Name    string `json:"truckstop_name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	RackID  int    `json:"rack_id"`

	// RetailPrice is the diesel price per gallon in dollars. Stored as
	// NUMERIC(6,3) in Postgres; carried as float64 in the snapshot the
	// planner consumes.
	RetailPrice float64 `json:"retail_price"`

	// Latitude/Longitude are nil until the ingestion worker geocodes the
	// street address. Only geocoded stations join the corridor search.
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Geocoded reports whether the station has coordinates.
func (s *FuelStation) Geocoded() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// Identity is the natural key of a station row, matching the catalog's
// unique constraint. Price updates match on this, not on the surrogate ID.
type Identity struct {
	OPISID  int
	Name    string
	Address string
	City    string
	State   string
	RackID  int
}

// Identity returns the station's natural key.
func (s *FuelStation) Identity() Identity {
	return Identity{
		OPISID:  s.OPISID,
		Name:    s.Name,
		Address: s.Address,
		City:    s.City,
		State:   s.State,
		RackID:  s.RackID,
	}
}
