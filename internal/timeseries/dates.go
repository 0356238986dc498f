package timeseries

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing raw source dates. The BCB API
// emits dd/MM/yyyy, IBGE emits yyyyMM period codes, and re-ingested layer
// files carry ISO timestamps.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"2006-01",
	"200601",
}

// ParseDate parses a raw date cell using the known source layouts.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// MonthKey returns the calendar-month bucket key, e.g. "2024-03".
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// QuarterKey returns the calendar-quarter bucket key, e.g. "2024Q1".
func QuarterKey(t time.Time) string {
	quarter := (int(t.Month())-1)/3 + 1
	return fmt.Sprintf("%dQ%d", t.Year(), quarter)
}
