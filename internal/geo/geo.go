// Package geo provides great-circle math and route geometry helpers used by
// the corridor search and the fuel planner. All functions are pure.
package geo

import "math"

// EarthRadiusMiles is the mean Earth radius used for haversine distances.
const EarthRadiusMiles = 3958.7613

// Point is a geographic point in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Marker is a route point annotated with its cumulative distance from the
// route start, measured along the polyline.
type Marker struct {
	Lat   float64
	Lon   float64
	Miles float64
}

// BBox is a latitude/longitude bounding box.
type BBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Contains reports whether the point lies inside the box.
func (b BBox) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// HaversineMiles returns the great-circle distance between two points in miles.
func HaversineMiles(a, b Point) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)

	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)

	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon
	return 2 * EarthRadiusMiles * math.Asin(math.Sqrt(h))
}

// Simplify thins a route to points at least minMiles apart. The first point is
// always kept; the original last point is appended if the threshold dropped it.
func Simplify(points []Point, minMiles float64) []Point {
	if len(points) == 0 {
		return nil
	}

	simplified := []Point{points[0]}
	last := points[0]
	for _, p := range points[1:] {
		if HaversineMiles(last, p) >= minMiles {
			simplified = append(simplified, p)
			last = p
		}
	}

	if simplified[len(simplified)-1] != points[len(points)-1] {
		simplified = append(simplified, points[len(points)-1])
	}
	return simplified
}

// MileMarkers annotates each point with its cumulative distance from the
// first point, summed over consecutive haversine segments.
func MileMarkers(points []Point) []Marker {
	if len(points) == 0 {
		return nil
	}

	markers := make([]Marker, 0, len(points))
	total := 0.0
	prev := points[0]
	markers = append(markers, Marker{Lat: prev.Lat, Lon: prev.Lon, Miles: 0})
	for _, p := range points[1:] {
		total += HaversineMiles(prev, p)
		markers = append(markers, Marker{Lat: p.Lat, Lon: p.Lon, Miles: total})
		prev = p
	}
	return markers
}

// BoundingBox returns the min/max extent of the points expanded by bufferMiles.
// Latitude degrees are ~69 miles; longitude degrees shrink with cos(latitude),
// floored at 0.01 to keep the buffer finite near the poles.
func BoundingBox(points []Point, bufferMiles float64) BBox {
	minLat, maxLat := points[0].Lat, points[0].Lat
	minLon, maxLon := points[0].Lon, points[0].Lon
	for _, p := range points[1:] {
		minLat = math.Min(minLat, p.Lat)
		maxLat = math.Max(maxLat, p.Lat)
		minLon = math.Min(minLon, p.Lon)
		maxLon = math.Max(maxLon, p.Lon)
	}

	latBuffer := bufferMiles / 69.0
	midLat := (minLat + maxLat) / 2
	lonBuffer := bufferMiles / (69.0 * math.Max(math.Cos(radians(midLat)), 0.01))

	return BBox{
		MinLat: minLat - latBuffer,
		MaxLat: maxLat + latBuffer,
		MinLon: minLon - lonBuffer,
		MaxLon: maxLon + lonBuffer,
	}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
