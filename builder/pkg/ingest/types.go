package ingest

import (
	"fmt"
	"time"
)

// Airport is a validated row from the airports dataset.
type Airport struct {
	Code    string
	Name    string
	City    string
	State   string
	Country string
}

// Flight is a validated row from the flights dataset. Zero time.Time values
// mean the feed carried no usable instant; delay pointers are nil when
// either side of the pair is absent.
type Flight struct {
	Carrier      string
	Number       string
	Origin       string
	Destination  string
	SchedDep     time.Time
	ActualDep    time.Time
	SchedArr     time.Time
	ActualArr    time.Time
	Date         string // YYYY-MM-DD
	MonthYear    string // YYYYMM
	Equipment    string
	EquipClass   string
	DepDelayMin  *int
	ArrDelayMin  *int
}

// ID returns the canonical flight identifier,
// e.g. "WN1234_2026-01-01_ATL_LGA".
func (f Flight) ID() string {
	return fmt.Sprintf("%s%s_%s_%s_%s", f.Carrier, f.Number, f.Date, f.Origin, f.Destination)
}

// DepartureInstant returns the actual departure time, falling back to the
// scheduled one. The bool is false when neither is known.
func (f Flight) DepartureInstant() (time.Time, bool) {
	if !f.ActualDep.IsZero() {
		return f.ActualDep, true
	}
	if !f.SchedDep.IsZero() {
		return f.SchedDep, true
	}
	return time.Time{}, false
}

// ArrivalInstant returns the actual arrival time, falling back to the
// scheduled one. The bool is false when neither is known.
func (f Flight) ArrivalInstant() (time.Time, bool) {
	if !f.ActualArr.IsZero() {
		return f.ActualArr, true
	}
	if !f.SchedArr.IsZero() {
		return f.SchedArr, true
	}
	return time.Time{}, false
}

// Connection is a row from the resource-connections dataset. It links a
// source flight to a target flight through a shared resource (aircraft or
// crew member). Schedule fields materialize the flight nodes on either end.
type Connection struct {
	SourceFlight string
	TargetFlight string
	EdgeCode     string // raw code: AC, P, F, ...
	EdgeLabel    string // resource identifier (tail number, crew ID)
	EdgeActivity string

	SourceSchedDep  time.Time
	SourceSchedArr  time.Time
	SourceActualArr time.Time
	TargetSchedDep  time.Time
	TargetSchedArr  time.Time
	TargetActualArr time.Time
}
