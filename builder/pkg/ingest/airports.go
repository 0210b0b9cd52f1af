package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// LoadAirports parses the airports dataset. Rows without an airport code are
// skipped and reported in the returned problem list; a later row with the
// same code overwrites an earlier one.
func LoadAirports(data []byte) (map[string]Airport, []string, error) {
	rows, header, err := readCSV(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse airports CSV: %w", err)
	}

	airports := make(map[string]Airport)
	var problems []string

	for i, row := range rows {
		rowNum := i + 2 // header is row 1
		code := strings.ToUpper(field(row, header, "airport_code"))
		if code == "" {
			problems = append(problems, fmt.Sprintf("row %d: missing airport_code", rowNum))
			continue
		}
		airports[code] = Airport{
			Code:    code,
			Name:    field(row, header, "airport_name"),
			City:    field(row, header, "city"),
			State:   field(row, header, "state"),
			Country: field(row, header, "country"),
		}
	}

	return airports, problems, nil
}

// readCSV parses CSV bytes into rows plus a column-name index.
func readCSV(data []byte) ([][]string, map[string]int, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("empty CSV")
	}

	header := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		header[strings.TrimSpace(name)] = i
	}
	return records[1:], header, nil
}

// field returns the trimmed value of the named column, or "" when the
// column or cell is missing.
func field(row []string, header map[string]int, name string) string {
	idx, ok := header[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
