package flight

import (
	"strconv"
	"strings"
	"time"
)

// Flight timestamps are local wall-clock time at the airport. Every
// time-of-day or calendar-date comparison parses the ISO string directly;
// going through a timezone-aware accessor would shift hour buckets by the
// host timezone.

// localHour extracts the wall-clock hour from an ISO timestamp.
func localHour(iso string) (int, bool) {
	_, timePart, found := strings.Cut(iso, "T")
	if !found {
		return 0, false
	}
	hourStr, _, _ := strings.Cut(timePart, ":")
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	return hour, true
}

// minutesOfDay returns minutes since local midnight, 0 if unparsable.
func minutesOfDay(iso string) int {
	_, timePart, found := strings.Cut(iso, "T")
	if !found {
		return 0
	}
	parts := strings.SplitN(timePart, ":", 3)
	if len(parts) < 2 {
		return 0
	}
	hours, errH := strconv.Atoi(parts[0])
	minutes, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil {
		return 0
	}
	return hours*60 + minutes
}

// calendarDate returns the YYYY-MM-DD prefix of an ISO timestamp. Dates are
// compared as strings to avoid timezone drift.
func calendarDate(iso string) string {
	date, _, _ := strings.Cut(iso, "T")
	return date
}

var instantLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// parseInstant reads an ISO timestamp as a true instant for chronological
// ordering. Unparsable input collapses to the zero instant, which a stable
// sort leaves in place.
func parseInstant(iso string) int64 {
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, iso); err == nil {
			return t.Unix()
		}
	}
	return 0
}
