// Package timeparse parses the timestamp formats found in flight data feeds.
//
// Feeds mix RFC 3339 strings with space-separated "YYYY-MM-DD HH:MM:SS"
// values, sometimes with fractional seconds, sometimes with explicit
// offsets, and frequently with sentinel junk like "NULL" or "NaT" where a
// value is missing. Parsing fails soft: callers get an ok-bool, never an
// error, and treat false as "absent".
package timeparse

import (
	"strings"
	"time"
)

// layouts tried in order after normalization.
var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// sentinels are feed values that mean "no timestamp".
var sentinels = map[string]bool{
	"null": true,
	"none": true,
	"nan":  true,
	"nat":  true,
	"n/a":  true,
	"-":    true,
}

// Parse converts a feed timestamp to UTC. The bool reports whether the
// input carried a usable instant.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || sentinels[strings.ToLower(s)] {
		return time.Time{}, false
	}

	// Normalize the space-separated form to the T form.
	s = strings.Replace(s, " ", "T", 1)

	// Strip fractional seconds, keeping any trailing zone designator.
	if dot := strings.IndexByte(s, '.'); dot != -1 {
		rest := s[dot+1:]
		end := dot
		for i := 0; i < len(rest); i++ {
			if rest[i] < '0' || rest[i] > '9' {
				break
			}
			end = dot + 1 + i + 1
		}
		s = s[:dot] + s[end:]
	}

	hasZone := strings.HasSuffix(s, "Z") || hasOffset(s)
	if !hasZone && strings.Contains(s, "T") {
		s += "Z"
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// hasOffset reports whether s ends in a +HH:MM / -HH:MM / +HHMM style
// offset. A bare date ("2006-01-02") contains '-' but no 'T', so offsets
// are only looked for after the time portion.
func hasOffset(s string) bool {
	tIdx := strings.IndexByte(s, 'T')
	if tIdx == -1 {
		return false
	}
	rest := s[tIdx+1:]
	return strings.ContainsAny(rest, "+") || strings.Count(rest, "-") > 0
}
