// Package polyline implements Google's encoded polyline algorithm with a
// configurable coordinate precision. Mapbox directions return "polyline6"
// geometry (precision 1e6); the classic Google/ORS format uses 1e5.
// The algorithm is documented at:
// https://developers.google.com/maps/documentation/utilities/polylinealgorithm
package polyline

import (
	"fmt"
	"math"
)

// Standard coordinate scale factors.
const (
	Precision5 = 1e5
	Precision6 = 1e6
)

// Coordinate is a geographic point in decimal degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// DecodeError reports a malformed or truncated polyline string.
type DecodeError struct {
	Index int
	Msg   string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("polyline: %s at index %d", e.Msg, e.Index)
}

// Decode decodes an encoded polyline into coordinates at the given precision.
// Each point is stored as a signed delta against the previous point, latitude
// first, in 5-bit chunks offset by 63 with bit 0x20 as the continuation flag.
// Returns a DecodeError when the string ends mid-chunk or mid-point.
func Decode(encoded string, precision float64) ([]Coordinate, error) {
	if encoded == "" {
		return nil, nil
	}
	if precision <= 0 {
		precision = Precision6
	}

	coords := make([]Coordinate, 0, len(encoded)/4)
	index := 0
	lat := 0
	lon := 0

	for index < len(encoded) {
		latDelta, next, err := decodeValue(encoded, index)
		if err != nil {
			return nil, err
		}
		index = next
		lat += latDelta

		lonDelta, next, err := decodeValue(encoded, index)
		if err != nil {
			return nil, err
		}
		index = next
		lon += lonDelta

		coords = append(coords, Coordinate{
			Lat: float64(lat) / precision,
			Lon: float64(lon) / precision,
		})
	}

	return coords, nil
}

// decodeValue decodes one signed delta starting at index. Returns the delta
// and the index of the next unread byte.
func decodeValue(encoded string, index int) (int, int, error) {
	if index >= len(encoded) {
		return 0, index, &DecodeError{Index: index, Msg: "truncated point"}
	}

	shift := 0
	result := 0
	for {
		if index >= len(encoded) {
			return 0, index, &DecodeError{Index: index, Msg: "truncated chunk"}
		}
		b := int(encoded[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	// Lowest bit carries the sign; negative values are one's-complement inverted.
	if result&1 != 0 {
		return ^(result >> 1), index, nil
	}
	return result >> 1, index, nil
}

// Encode encodes coordinates into a polyline string at the given precision.
func Encode(coords []Coordinate, precision float64) string {
	if len(coords) == 0 {
		return ""
	}
	if precision <= 0 {
		precision = Precision6
	}

	encoded := make([]byte, 0, len(coords)*6)
	prevLat := 0
	prevLon := 0

	for _, c := range coords {
		lat := int(math.Round(c.Lat * precision))
		lon := int(math.Round(c.Lon * precision))

		encoded = encodeValue(encoded, lat-prevLat)
		encoded = encodeValue(encoded, lon-prevLon)

		prevLat = lat
		prevLon = lon
	}

	return string(encoded)
}

func encodeValue(buf []byte, value int) []byte {
	if value < 0 {
		value = ^(value << 1)
	} else {
		value <<= 1
	}

	for value >= 0x20 {
		buf = append(buf, byte((value&0x1f)|0x20)+63)
		value >>= 5
	}
	buf = append(buf, byte(value)+63)

	return buf
}
