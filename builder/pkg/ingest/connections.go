package ingest

import (
	"fmt"

	"github.com/skyfold/flightgraph/builder/pkg/timeparse"
)

// ConnectionLoadResult carries the accepted connection rows plus per-row
// problems. A bad row never aborts the load.
type ConnectionLoadResult struct {
	Connections []Connection
	Errors      []string
}

// LoadConnections parses the resource-connections dataset. Each row links a
// source flight to a target flight through a shared resource; schedule
// columns ride along so flight nodes can be materialized downstream.
func LoadConnections(data []byte) (ConnectionLoadResult, error) {
	rows, header, err := readCSV(data)
	if err != nil {
		return ConnectionLoadResult{}, fmt.Errorf("failed to parse connections CSV: %w", err)
	}

	var res ConnectionLoadResult

	for i, row := range rows {
		rowNum := i + 2

		source := field(row, header, "source_flt")
		target := field(row, header, "target_flt")
		edge := field(row, header, "edge")

		if source == "" || target == "" {
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: missing source_flt or target_flt", rowNum))
			continue
		}
		if edge == "" {
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: missing edge code", rowNum))
			continue
		}

		c := Connection{
			SourceFlight: source,
			TargetFlight: target,
			EdgeCode:     edge,
			EdgeLabel:    field(row, header, "edge_label"),
			EdgeActivity: field(row, header, "edge_activity"),
		}
		c.SourceSchedDep, _ = timeparse.Parse(field(row, header, "source_flt_sch_dprt_gmt"))
		c.SourceSchedArr, _ = timeparse.Parse(field(row, header, "source_flt_sch_arr_gmt"))
		c.SourceActualArr, _ = timeparse.Parse(field(row, header, "source_flt_actl_arr_gmt"))
		c.TargetSchedDep, _ = timeparse.Parse(field(row, header, "target_flt_sch_dprt_gmt"))
		c.TargetSchedArr, _ = timeparse.Parse(field(row, header, "target_flt_sch_arr_gmt"))
		c.TargetActualArr, _ = timeparse.Parse(field(row, header, "target_flt_actl_arr_gmt"))

		res.Connections = append(res.Connections, c)
	}

	return res, nil
}
