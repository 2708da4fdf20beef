package planner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routeStop(marker, price float64) StationOnRoute {
	return StationOnRoute{
		Kind:       StopStation,
		Price:      price,
		MileMarker: marker,
		Latitude:   40.0,
		Longitude:  -100.0,
	}
}

func virtualStart(price float64) *StationOnRoute {
	return &StationOnRoute{
		Kind:      StopVirtualStart,
		Price:     price,
		Latitude:  40.0,
		Longitude: -100.0,
	}
}

func TestChooseStartPrice_NearestThenCheapest(t *testing.T) {
	stations := []StationOnRoute{
		routeStop(2.0, 4.0),
		routeStop(2.0, 3.0),
		routeStop(10.0, 2.5),
	}

	start, err := ChooseStartPrice(stations, 5.0)
	require.NoError(t, err)

	assert.Equal(t, 3.0, start.Price, "same marker ties break on price")
	assert.Equal(t, 0.0, start.MileMarker, "start is re-anchored at mile 0")
	assert.Equal(t, StopVirtualStart, start.Kind)
	assert.True(t, start.Virtual())
}

func TestChooseStartPrice_PrefersCloserOverCheaper(t *testing.T) {
	stations := []StationOnRoute{
		routeStop(1.0, 4.5),
		routeStop(4.0, 2.0),
	}

	start, err := ChooseStartPrice(stations, 5.0)
	require.NoError(t, err)
	assert.Equal(t, 4.5, start.Price)
}

func TestChooseStartPrice_Errors(t *testing.T) {
	_, err := ChooseStartPrice(nil, 5.0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoStations))

	_, err = ChooseStartPrice([]StationOnRoute{routeStop(50.0, 3.0)}, 5.0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoStartCandidate))
}

func TestPlanFuelStops_GreedyLookahead(t *testing.T) {
	stations := []StationOnRoute{
		routeStop(100, 4.0),
		routeStop(200, 3.0),
	}

	stops, totalCost, totalGallons, err := PlanFuelStops(stations, 250, 10, 150, virtualStart(5.0))
	require.NoError(t, err)

	// Buy 10 gal at $5 to reach mile 100, 10 gal at $4 to reach mile 200,
	// 5 gal at $3 to finish: $50 + $40 + $15.
	assert.Equal(t, 105.0, totalCost)
	assert.Equal(t, 25.0, totalGallons)
	require.Len(t, stops, 3)

	assert.True(t, stops[0].Virtual, "start purchase is the virtual mile-0 stop")
	assert.Equal(t, 0.0, stops[0].MileMarker)
	assert.Equal(t, 5.0, stops[0].PricePerGallon)
	assert.Equal(t, 10.0, stops[0].Gallons)
	assert.Equal(t, 50.0, stops[0].Cost)

	assert.Equal(t, 100.0, stops[1].MileMarker)
	assert.Equal(t, 200.0, stops[2].MileMarker)
	assert.Equal(t, 15.0, stops[2].Cost)
}

func TestPlanFuelStops_TopUpWhenNoCheaperAhead(t *testing.T) {
	// Prices rise along the route, so each stop fills to max range (capped by
	// the remaining distance) instead of chasing a cheaper price.
	stations := []StationOnRoute{
		routeStop(90, 4.0),
	}

	stops, totalCost, totalGallons, err := PlanFuelStops(stations, 180, 10, 1000, virtualStart(3.0))
	require.NoError(t, err)

	// The start price is the cheapest anywhere, so the whole trip is bought
	// at mile 0: 18 gallons at $3.
	require.Len(t, stops, 1)
	assert.Equal(t, 54.0, totalCost)
	assert.Equal(t, 18.0, totalGallons)
}

func TestPlanFuelStops_SkipsStopsThatNeedNoPurchase(t *testing.T) {
	// The mile-50 station is pricier than the fuel already in the tank, so
	// the planner drives past it without emitting a stop.
	stations := []StationOnRoute{
		routeStop(50, 9.0),
		routeStop(100, 2.0),
	}

	stops, _, _, err := PlanFuelStops(stations, 150, 10, 1200, virtualStart(3.0))
	require.NoError(t, err)

	for _, stop := range stops {
		assert.NotEqual(t, 50.0, stop.MileMarker, "pass-through stop must not be emitted")
	}
}

func TestPlanFuelStops_TotalsMatchEmittedStops(t *testing.T) {
	stations := []StationOnRoute{
		routeStop(80, 3.5),
		routeStop(160, 3.2),
		routeStop(240, 3.8),
	}

	stops, totalCost, totalGallons, err := PlanFuelStops(stations, 300, 8, 700, virtualStart(3.9))
	require.NoError(t, err)

	var sumCost, sumGallons float64
	for _, stop := range stops {
		sumCost += stop.Cost
		sumGallons += stop.Gallons
	}
	assert.InDelta(t, totalCost, sumCost, 0.02, "stop costs must sum to the total")
	assert.InDelta(t, totalGallons, sumGallons, 0.002, "stop gallons must sum to the total")

	for i := 1; i < len(stops); i++ {
		assert.GreaterOrEqual(t, stops[i].MileMarker, stops[i-1].MileMarker,
			"mile markers must be non-decreasing")
	}
}

func TestPlanFuelStops_SegmentBeyondFullTankFails(t *testing.T) {
	// No station between the start and a destination beyond a full tank. The
	// purchase target is capped at max range, so the shortfall shows up in
	// the fuel ledger rather than at the capacity check.
	_, _, _, err := PlanFuelStops(nil, 400, 10, 150, virtualStart(3.0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientFuel), "must fail, never silently truncate")
}

func TestPlanFuelStops_GapBeyondFullTankFails(t *testing.T) {
	stations := []StationOnRoute{
		routeStop(100, 3.0),
		routeStop(400, 2.0), // 300-mile gap, tank covers 150
	}

	_, _, _, err := PlanFuelStops(stations, 450, 10, 150, virtualStart(3.5))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientFuel))
}

func TestPlanFuelStops_ExactRangeSegment(t *testing.T) {
	// A segment exactly equal to max range is feasible.
	stations := []StationOnRoute{
		routeStop(150, 3.0),
	}

	stops, _, _, err := PlanFuelStops(stations, 300, 10, 150, virtualStart(3.5))
	require.NoError(t, err)
	require.Len(t, stops, 2)
}

func TestPlanFuelStops_DestinationSentinelNeverEmitted(t *testing.T) {
	stations := []StationOnRoute{
		routeStop(100, 4.0),
	}

	stops, _, _, err := PlanFuelStops(stations, 200, 10, 150, virtualStart(5.0))
	require.NoError(t, err)

	for _, stop := range stops {
		assert.Less(t, stop.MileMarker, 200.0, "destination sentinel must not appear")
	}
}

func TestPlanFuelStops_Rounding(t *testing.T) {
	stations := []StationOnRoute{
		{Kind: StopStation, Price: 3.1415, MileMarker: 33.3333, Latitude: 40.12345, Longitude: -100.6789},
	}

	stops, _, _, err := PlanFuelStops(stations, 66.6666, 10, 500, virtualStart(3.5))
	require.NoError(t, err)
	require.NotEmpty(t, stops)

	for _, stop := range stops {
		assert.Equal(t, round2(stop.MileMarker), stop.MileMarker)
		assert.Equal(t, round3(stop.PricePerGallon), stop.PricePerGallon)
		assert.Equal(t, round3(stop.Gallons), stop.Gallons)
		assert.Equal(t, round2(stop.Cost), stop.Cost)
	}
}
