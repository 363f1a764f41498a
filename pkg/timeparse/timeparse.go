// Package timeparse is the single authoritative parser for the
// heterogeneous timestamp formats found in uploaded sheets and in the
// free-text last_updated column of stock snapshots. Every component
// that needs to read one of those values goes through this package;
// the layout list must never be duplicated elsewhere.
package timeparse

import (
	"math"
	"strings"
	"time"
)

// layouts is the ordered list of accepted formats. The first layout
// that parses wins, so month-first variants deliberately precede
// day-first ones: that matches how the historical data was written.
// Layouts are fixed Go reference layouts, never locale dependent.
var layouts = []string{
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"01/02/06 15:04:05",
	"01/02/06 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"02/01/2006",
}

// serialEpoch is the Excel serial date epoch (day 0). Excel counts
// days from 1900-01-01 as serial 1 but inherits Lotus 1-2-3's phantom
// 1900-02-29, which lands day 0 on 1899-12-30.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Parse attempts to interpret s as a timestamp using the layout list.
// The boolean is false when no layout matches. Whitespace is trimmed
// first; an empty string never matches.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// ParseSerial converts an Excel serial date number to a time. The
// integer part counts days from the 1899-12-30 epoch, the fraction is
// the time of day. Useful range only; callers gate on the cell being
// numeric in the first place.
func ParseSerial(serial float64) time.Time {
	days := math.Floor(serial)
	frac := serial - days

	t := serialEpoch.AddDate(0, 0, int(days))
	secs := math.Round(frac * 24 * 60 * 60)
	return t.Add(time.Duration(secs) * time.Second)
}

// Layouts returns a copy of the accepted layout list, in priority
// order. Exposed for the round-trip tests.
func Layouts() []string {
	out := make([]string, len(layouts))
	copy(out, layouts)
	return out
}

// MaxTime returns the later of two timestamps.
func MaxTime(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
