package ingest

import "strings"

// FlightRef is a flight identifier decomposed into its parts.
type FlightRef struct {
	Carrier     string
	Number      string
	Date        string
	Origin      string
	Destination string
}

// ParseFlightID decomposes an identifier of the form
// "{carrier}{number}_{date}_{origin}_{destination}". The carrier is the
// leading 2 characters when the 3rd is a digit, otherwise 3. The bool is
// false for malformed identifiers.
func ParseFlightID(id string) (FlightRef, bool) {
	parts := strings.Split(strings.TrimSpace(id), "_")
	if len(parts) != 4 {
		return FlightRef{}, false
	}

	carrierFlight, date, origin, dest := parts[0], parts[1], parts[2], parts[3]
	if len(carrierFlight) < 3 || date == "" || origin == "" || dest == "" {
		return FlightRef{}, false
	}

	var carrier, number string
	switch {
	case isDigit(carrierFlight[2]):
		carrier, number = carrierFlight[:2], carrierFlight[2:]
	case len(carrierFlight) > 3 && isDigit(carrierFlight[3]):
		carrier, number = carrierFlight[:3], carrierFlight[3:]
	default:
		return FlightRef{}, false
	}

	return FlightRef{
		Carrier:     carrier,
		Number:      number,
		Date:        date,
		Origin:      origin,
		Destination: dest,
	}, true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
