package handlers

import (
	"net/http"
	"time"

	"github.com/skyfold/flightgraph/api/config"
	"github.com/skyfold/flightgraph/builder/pkg/graph"
)

const defaultTimelineStep = time.Hour

// timelineWindow parses the shared start/end/step parameters of the timeline
// endpoints. Absent start/end default to the graph's full time range.
func timelineWindow(w http.ResponseWriter, r *http.Request, g *graph.Graph) (start, end time.Time, step time.Duration, ok bool) {
	first, last, hasRange := g.TimeRange()

	start, end = first, last
	if s := r.URL.Query().Get("start"); s != "" {
		var parsed bool
		if start, parsed = parseInstant(s); !parsed {
			writeError(w, http.StatusBadRequest, "invalid 'start' timestamp")
			return
		}
	}
	if s := r.URL.Query().Get("end"); s != "" {
		var parsed bool
		if end, parsed = parseInstant(s); !parsed {
			writeError(w, http.StatusBadRequest, "invalid 'end' timestamp")
			return
		}
	}
	if !hasRange && (start.IsZero() || end.IsZero()) {
		writeError(w, http.StatusBadRequest, "graph has no events; 'start' and 'end' are required")
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "'end' must not be before 'start'")
		return
	}

	step = defaultTimelineStep
	if s := r.URL.Query().Get("step"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, "invalid 'step' duration")
			return
		}
		step = d
	}

	return start, end, step, true
}

// VolumeTimelineResponse samples cumulative movement counts over a window.
type VolumeTimelineResponse struct {
	Start  string              `json:"start"`
	End    string              `json:"end"`
	Step   string              `json:"step"`
	Points []graph.VolumePoint `json:"points"`
}

// GetVolumeTimeline returns cumulative departures, arrivals, and the enroute
// count sampled every step across the window.
func GetVolumeTimeline(w http.ResponseWriter, r *http.Request) {
	g := config.FlightGraph

	start, end, step, ok := timelineWindow(w, r, g)
	if !ok {
		return
	}

	points := g.VolumeTimeline(start, end, step)
	if points == nil {
		points = []graph.VolumePoint{}
	}

	writeJSON(w, http.StatusOK, VolumeTimelineResponse{
		Start:  start.Format(time.RFC3339),
		End:    end.Format(time.RFC3339),
		Step:   step.String(),
		Points: points,
	})
}

// DelayTimelineResponse samples cumulative delay minutes over a window.
type DelayTimelineResponse struct {
	Start  string             `json:"start"`
	End    string             `json:"end"`
	Step   string             `json:"step"`
	Points []graph.DelayPoint `json:"points"`
}

// GetDelayTimeline returns cumulative outbound and inbound delay minutes
// sampled every step across the window.
func GetDelayTimeline(w http.ResponseWriter, r *http.Request) {
	g := config.FlightGraph

	start, end, step, ok := timelineWindow(w, r, g)
	if !ok {
		return
	}

	points := g.DelayTimeline(start, end, step)
	if points == nil {
		points = []graph.DelayPoint{}
	}

	writeJSON(w, http.StatusOK, DelayTimelineResponse{
		Start:  start.Format(time.RFC3339),
		End:    end.Format(time.RFC3339),
		Step:   step.String(),
		Points: points,
	})
}

// TimelineBoundsResponse contains the available time range of graph data.
type TimelineBoundsResponse struct {
	EarliestData string `json:"earliest_data"`
	LatestData   string `json:"latest_data"`
}

// GetTimelineBounds returns the first departure and last arrival instants.
func GetTimelineBounds(w http.ResponseWriter, r *http.Request) {
	g := config.FlightGraph

	first, last, ok := g.TimeRange()
	if !ok {
		writeError(w, http.StatusNotFound, "graph has no events")
		return
	}

	writeJSON(w, http.StatusOK, TimelineBoundsResponse{
		EarliestData: first.Format(time.RFC3339),
		LatestData:   last.Format(time.RFC3339),
	})
}
