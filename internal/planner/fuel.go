package planner

import "math"

// floatTolerance absorbs accumulated floating-point error in the fuel ledger.
const floatTolerance = 1e-6

// ChooseStartPrice picks the purchase price for the trip start: among
// stations within maxStartDistanceMiles of the route start, the one with the
// smallest (mile marker, price): nearest first, cheapest on ties. The pick
// is re-emitted as a virtual stop anchored at mile 0 so the planner can buy
// fuel before the first real station.
func ChooseStartPrice(stations []StationOnRoute, maxStartDistanceMiles float64) (*StationOnRoute, error) {
	if len(stations) == 0 {
		return nil, &DomainError{Err: ErrNoStations}
	}

	var best *StationOnRoute
	for i := range stations {
		s := &stations[i]
		if s.MileMarker > maxStartDistanceMiles {
			continue
		}
		if best == nil ||
			s.MileMarker < best.MileMarker ||
			(s.MileMarker == best.MileMarker && s.Price < best.Price) {
			best = s
		}
	}
	if best == nil {
		return nil, &DomainError{Err: ErrNoStartCandidate}
	}

	return &StationOnRoute{
		Station:         best.Station,
		Kind:            StopVirtualStart,
		Price:           best.Price,
		MileMarker:      0,
		DistanceToRoute: best.DistanceToRoute,
		Latitude:        best.Latitude,
		Longitude:       best.Longitude,
	}, nil
}

// PlanFuelStops runs the greedy purchase schedule over the route.
//
// At each stop the planner looks ahead to stops reachable on a full tank; if
// any is strictly cheaper it buys only enough fuel to reach the first such
// stop, otherwise it fills to max range (or to the destination, whichever is
// nearer). This undercuts the price once per range window; it is not a
// proven global optimum for adversarial price sequences, and downstream
// consumers depend on these exact tie-break and lookahead semantics.
//
// Returns the emitted stops, total cost (2dp), and total gallons (3dp).
func PlanFuelStops(stations []StationOnRoute, totalMiles, mpg, maxRangeMiles float64, startPrice *StationOnRoute) ([]FuelStop, float64, float64, error) {
	capacityGallons := maxRangeMiles / mpg

	stops := make([]StationOnRoute, 0, len(stations)+2)
	stops = append(stops, *startPrice)
	for _, s := range stations {
		if s.MileMarker > 0 {
			stops = append(stops, s)
		}
	}
	stops = append(stops, StationOnRoute{
		Kind:       StopVirtualDestination,
		MileMarker: totalMiles,
	})

	fuelGallons := 0.0
	totalCost := 0.0
	totalGallons := 0.0
	planned := []FuelStop{}

	for index := 0; index < len(stops)-1; index++ {
		stop := stops[index]
		maxReach := stop.MileMarker + maxRangeMiles

		// First strictly-cheaper stop reachable on a full tank, if any.
		var nextCheaper *StationOnRoute
		for later := index + 1; later < len(stops); later++ {
			if stops[later].MileMarker > maxReach {
				break
			}
			if stops[later].Price < stop.Price {
				nextCheaper = &stops[later]
				break
			}
		}

		var targetMiles float64
		if nextCheaper != nil {
			targetMiles = nextCheaper.MileMarker - stop.MileMarker
		} else {
			targetMiles = math.Min(maxRangeMiles, totalMiles-stop.MileMarker)
		}

		requiredGallons := targetMiles / mpg
		if requiredGallons > capacityGallons+floatTolerance {
			return nil, 0, 0, &DomainError{Err: ErrRangeExceeded}
		}

		if fuelGallons < requiredGallons {
			purchase := requiredGallons - fuelGallons
			cost := purchase * stop.Price
			fuelGallons += purchase
			totalCost += cost
			totalGallons += purchase

			// The destination sentinel is past the loop bound and pass-through
			// virtual stops buy nothing, so only real stations and the mile-0
			// virtual start are ever emitted.
			if stop.Kind == StopStation || (stop.Kind == StopVirtualStart && stop.MileMarker == 0) {
				planned = append(planned, FuelStop{
					MileMarker:     round2(stop.MileMarker),
					PricePerGallon: round3(stop.Price),
					Gallons:        round3(purchase),
					Cost:           round2(cost),
					Latitude:       round2(stop.Latitude),
					Longitude:      round2(stop.Longitude),
					Virtual:        stop.Virtual(),
					Station:        stopStationInfo(stop),
				})
			}
		}

		travelMiles := stops[index+1].MileMarker - stop.MileMarker
		fuelGallons -= travelMiles / mpg
		if fuelGallons < -floatTolerance {
			return nil, 0, 0, &DomainError{Err: ErrInsufficientFuel}
		}
	}

	return planned, round2(totalCost), round3(totalGallons), nil
}

func stopStationInfo(stop StationOnRoute) *FuelStopStation {
	if stop.Station == nil {
		return nil
	}
	return &FuelStopStation{
		OPISID:  stop.Station.OPISID,
		Name:    stop.Station.Name,
		Address: stop.Station.Address,
		City:    stop.Station.City,
		State:   stop.Station.State,
		RackID:  stop.Station.RackID,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
