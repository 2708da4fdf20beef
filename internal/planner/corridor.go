package planner

import (
	"math"
	"sort"

	"github.com/fuelroute/fuelroute/internal/geo"
	"github.com/fuelroute/fuelroute/internal/station"
)

// SimplifyMinMiles is the spacing the raw route geometry is thinned to before
// distance checks. Full-overview polylines carry a point every few hundred
// feet; one point per mile is plenty for a 10-mile corridor.
const SimplifyMinMiles = 1.0

// FindStationsOnRoute returns the catalog stations within maxDistanceMiles of
// the route, each annotated with the mile marker of its nearest route point,
// sorted ascending by mile marker. A bounding-box prefilter rejects far-away
// stations before any per-point distance work.
func FindStationsOnRoute(stations []station.FuelStation, routePoints []geo.Point, maxDistanceMiles float64) []StationOnRoute {
	if len(routePoints) == 0 {
		return nil
	}

	simplified := geo.Simplify(routePoints, SimplifyMinMiles)
	markers := geo.MileMarkers(simplified)
	box := geo.BoundingBox(simplified, maxDistanceMiles)

	var onRoute []StationOnRoute
	for i := range stations {
		s := stations[i]
		if !s.Geocoded() {
			continue
		}
		lat, lon := *s.Latitude, *s.Longitude
		if !box.Contains(lat, lon) {
			continue
		}

		minDistance := math.Inf(1)
		mileMarker := 0.0
		for _, m := range markers {
			d := geo.HaversineMiles(geo.Point{Lat: lat, Lon: lon}, geo.Point{Lat: m.Lat, Lon: m.Lon})
			if d < minDistance {
				minDistance = d
				mileMarker = m.Miles
			}
		}
		if minDistance > maxDistanceMiles {
			continue
		}

		record := s
		onRoute = append(onRoute, StationOnRoute{
			Station:         &record,
			Kind:            StopStation,
			Price:           s.RetailPrice,
			MileMarker:      mileMarker,
			DistanceToRoute: minDistance,
			Latitude:        lat,
			Longitude:       lon,
		})
	}

	sort.SliceStable(onRoute, func(i, j int) bool {
		return onRoute[i].MileMarker < onRoute[j].MileMarker
	})
	return onRoute
}
