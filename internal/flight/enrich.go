package flight

import (
	"context"
	"strings"
)

type aircraftDetails struct {
	Name string
	Vibe float64
	Tags []string
}

// aircraftDB maps IATA aircraft type codes to cabin-quality reference data.
var aircraftDB = map[string]aircraftDetails{
	"787": {Name: "Boeing 787 Dreamliner", Vibe: 9.2, Tags: []string{"Mood Lighting", "Quiet Cabin", "Large Windows"}},
	"788": {Name: "Boeing 787-8 Dreamliner", Vibe: 9.0, Tags: []string{"Mood Lighting", "Quiet Cabin"}},
	"789": {Name: "Boeing 787-9 Dreamliner", Vibe: 9.4, Tags: []string{"Mood Lighting", "Quiet Cabin"}},
	"777": {Name: "Boeing 777", Vibe: 8.5, Tags: []string{"Spacious", "Reliable"}},
	"77W": {Name: "Boeing 777-300ER", Vibe: 8.8, Tags: []string{"Spacious", "Smooth Ride"}},
	"737": {Name: "Boeing 737", Vibe: 6.0, Tags: []string{"Standard"}},
	"738": {Name: "Boeing 737-800", Vibe: 6.5, Tags: []string{"Standard"}},
	"73H": {Name: "Boeing 737-800 (Winglets)", Vibe: 6.8, Tags: []string{"Modern Interior"}},
	"7M8": {Name: "Boeing 737 MAX 8", Vibe: 7.5, Tags: []string{"Modern", "Sky Interior"}},
	"380": {Name: "Airbus A380", Vibe: 9.8, Tags: []string{"Super Jumbo", "Silent"}},
	"350": {Name: "Airbus A350", Vibe: 9.6, Tags: []string{"Extra Wide", "Quiet", "Fresh Air"}},
	"359": {Name: "Airbus A350-900", Vibe: 9.6, Tags: []string{"Extra Wide", "Quiet"}},
	"351": {Name: "Airbus A350-1000", Vibe: 9.7, Tags: []string{"Flagship", "Quiet"}},
	"330": {Name: "Airbus A330", Vibe: 7.8, Tags: []string{"2-4-2 Layout"}},
	"339": {Name: "Airbus A330-900neo", Vibe: 8.9, Tags: []string{"Airspace Cabin", "Quiet"}},
	"320": {Name: "Airbus A320", Vibe: 6.5, Tags: []string{"Standard"}},
	"32N": {Name: "Airbus A320neo", Vibe: 7.8, Tags: []string{"Modern", "Quiet Engines"}},
	"321": {Name: "Airbus A321", Vibe: 6.5, Tags: []string{"Standard"}},
	"32Q": {Name: "Airbus A321neo", Vibe: 7.8, Tags: []string{"Modern"}},
	"220": {Name: "Airbus A220", Vibe: 9.0, Tags: []string{"Huge Windows", "2-3 Layout", "Spacious"}},
	"223": {Name: "Airbus A220-300", Vibe: 9.0, Tags: []string{"Huge Windows", "Spacious"}},
	"E90": {Name: "Embraer E190", Vibe: 7.5, Tags: []string{"No Middle Seat", "2-2 Layout"}},
	"E95": {Name: "Embraer E195", Vibe: 7.5, Tags: []string{"No Middle Seat"}},
	"E75": {Name: "Embraer E175", Vibe: 7.2, Tags: []string{"No Middle Seat", "Quick Boarding"}},
	"CR9": {Name: "CRJ-900", Vibe: 5.5, Tags: []string{"Tight", "Fast"}},
	"CRK": {Name: "CRJ-1000", Vibe: 5.8, Tags: []string{"Regional"}},
}

var defaultAircraft = aircraftDetails{Name: "Standard Aircraft", Vibe: 6.0}

// Carriers that typically charge for the first checked bag.
var lowCostCarriers = map[string]struct{}{
	"FR": {}, "U2": {}, "NK": {}, "F9": {}, "W6": {},
}

// CostVibeEnricher implements Enricher with deterministic local reference
// data: trueCost from fee heuristics, vibe from the aircraft database.
type CostVibeEnricher struct{}

func NewCostVibeEnricher() CostVibeEnricher { return CostVibeEnricher{} }

// Enrich returns copies annotated with trueCost and vibe, preserving order
// and ids.
func (CostVibeEnricher) Enrich(_ context.Context, flights []Flight) ([]Flight, error) {
	enriched := make([]Flight, len(flights))
	for i, f := range flights {
		aircraft := lookupAircraft(f)

		var baggageFee float64
		bagQuantity := 0
		if f.Baggage != nil {
			bagQuantity = f.Baggage.Quantity
		}
		if bagQuantity == 0 {
			if _, lcc := lowCostCarriers[f.Airline]; lcc {
				baggageFee = 55
			} else {
				baggageFee = 35
			}
		}

		var seatFee float64
		if strings.EqualFold(f.CabinClass, "economy") {
			seatFee = 25
		}

		f.TrueCost = &TrueCost{
			BaseFare:         f.Price,
			BaggageFee:       baggageFee,
			SeatSelectionFee: seatFee,
			Total:            f.Price + baggageFee + seatFee,
		}
		f.Vibe = &Vibe{
			Score:       aircraft.Vibe,
			Aircraft:    aircraft.Name,
			Description: vibeDescription(aircraft),
		}
		enriched[i] = f
	}
	return enriched, nil
}

// The first segment's aircraft sets the vibe for the whole itinerary.
func lookupAircraft(f Flight) aircraftDetails {
	if len(f.Segments) == 0 {
		return defaultAircraft
	}
	code := f.Segments[0].Aircraft
	if details, ok := aircraftDB[code]; ok {
		return details
	}
	if len(code) > 3 {
		if details, ok := aircraftDB[code[:3]]; ok {
			return details
		}
	}
	return defaultAircraft
}

func vibeDescription(a aircraftDetails) string {
	if len(a.Tags) == 0 {
		return "Standard Configuration"
	}
	return strings.Join(a.Tags, " • ")
}
