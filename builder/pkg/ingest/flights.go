package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/skyfold/flightgraph/builder/pkg/timeparse"
)

// flightRequiredColumns must all be present in the flights CSV header.
var flightRequiredColumns = []string{
	"carrier", "flight_number", "origin", "destination",
	"scheduled_departure_gate", "scheduled_arrival_gate",
	"actual_departure_gate", "actual_arrival_gate",
	"flight_date", "flight_month_year",
}

// FlightLoadResult carries the accepted flights plus the per-row problems
// encountered while loading. Errors rejected the row; warnings did not.
type FlightLoadResult struct {
	Flights  []Flight
	Errors   []string
	Warnings []string
}

// LoadFlights parses and validates the flights dataset against the known
// airports. Rows failing validation are rejected and reported; rows with
// only advisory problems are kept.
func LoadFlights(data []byte, airports map[string]Airport) (FlightLoadResult, error) {
	rows, header, err := readCSV(data)
	if err != nil {
		return FlightLoadResult{}, fmt.Errorf("failed to parse flights CSV: %w", err)
	}

	var res FlightLoadResult

	var missing []string
	for _, col := range flightRequiredColumns {
		if _, ok := header[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return res, fmt.Errorf("flights CSV missing required columns: %s", strings.Join(missing, ", "))
	}

	for i, row := range rows {
		rowNum := i + 2
		var rowErrs, rowWarns []string

		carrier := strings.ToUpper(field(row, header, "carrier"))
		number := field(row, header, "flight_number")
		origin := strings.ToUpper(field(row, header, "origin"))
		dest := strings.ToUpper(field(row, header, "destination"))

		if carrier == "" {
			rowErrs = append(rowErrs, "missing carrier")
		}
		if number == "" {
			rowErrs = append(rowErrs, "missing flight_number")
		}
		if origin == "" {
			rowErrs = append(rowErrs, "missing origin")
		}
		if dest == "" {
			rowErrs = append(rowErrs, "missing destination")
		}
		if origin != "" && origin == dest {
			rowErrs = append(rowErrs, fmt.Sprintf("origin and destination are the same: %s", origin))
		}

		if origin != "" {
			if _, ok := airports[origin]; !ok {
				rowWarns = append(rowWarns, fmt.Sprintf("origin airport %q not found in airports data", origin))
			}
		}
		if dest != "" {
			if _, ok := airports[dest]; !ok {
				rowWarns = append(rowWarns, fmt.Sprintf("destination airport %q not found in airports data", dest))
			}
		}

		schedDep, schedDepOK := timeparse.Parse(field(row, header, "scheduled_departure_gate"))
		actualDep, actualDepOK := timeparse.Parse(field(row, header, "actual_departure_gate"))
		schedArr, schedArrOK := timeparse.Parse(field(row, header, "scheduled_arrival_gate"))
		actualArr, actualArrOK := timeparse.Parse(field(row, header, "actual_arrival_gate"))

		if !schedDepOK {
			rowErrs = append(rowErrs, "missing or invalid scheduled_departure_gate")
		}
		if !schedArrOK {
			rowErrs = append(rowErrs, "missing or invalid scheduled_arrival_gate")
		}
		if !actualDepOK {
			rowWarns = append(rowWarns, "missing or invalid actual_departure_gate")
		}
		if !actualArrOK {
			rowWarns = append(rowWarns, "missing or invalid actual_arrival_gate")
		}

		if schedDepOK && schedArrOK && !schedDep.Before(schedArr) {
			rowErrs = append(rowErrs, "scheduled departure must be before scheduled arrival")
		}
		if actualDepOK && actualArrOK && !actualDep.Before(actualArr) {
			rowErrs = append(rowErrs, "actual departure must be before actual arrival")
		}

		date := field(row, header, "flight_date")
		if date != "" {
			if _, err := time.Parse("2006-01-02", date); err != nil {
				rowErrs = append(rowErrs, fmt.Sprintf("invalid flight_date format: %s", date))
			}
		} else {
			rowErrs = append(rowErrs, "missing flight_date")
		}

		monthYear := field(row, header, "flight_month_year")
		if monthYear != "" && len(monthYear) != 6 {
			rowWarns = append(rowWarns, fmt.Sprintf("flight_month_year should be YYYYMM, got %s", monthYear))
		}

		for _, w := range rowWarns {
			res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: %s", rowNum, w))
		}
		if len(rowErrs) > 0 {
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: %s", rowNum, strings.Join(rowErrs, ", ")))
			continue
		}

		f := Flight{
			Carrier:     carrier,
			Number:      number,
			Origin:      origin,
			Destination: dest,
			SchedDep:    schedDep,
			ActualDep:   actualDep,
			SchedArr:    schedArr,
			ActualArr:   actualArr,
			Date:        date,
			MonthYear:   monthYear,
			Equipment:   field(row, header, "equipment"),
			EquipClass:  strings.ToUpper(field(row, header, "equipment_class")),
		}
		if actualDepOK {
			f.DepDelayMin = delayMinutes(schedDep, actualDep)
		}
		if actualArrOK {
			f.ArrDelayMin = delayMinutes(schedArr, actualArr)
		}

		res.Flights = append(res.Flights, f)
	}

	return res, nil
}

// delayMinutes is the whole-minute difference actual-scheduled, truncated
// toward zero.
func delayMinutes(scheduled, actual time.Time) *int {
	min := int(actual.Sub(scheduled).Minutes())
	return &min
}
