package utils

import (
	"strconv"
	"strings"
	"time"
)

// FormatClockTime converts a 24-hour "HH:MM" value into the display form
// shown to customers, e.g. "09:00" -> "9:00 AM", "13:30" -> "1:30 PM".
// Values that do not look like a clock time are returned unchanged.
func FormatClockTime(hhmm string) string {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return hhmm
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return hhmm
	}
	minutes := parts[1]
	ampm := "AM"
	if hours >= 12 {
		ampm = "PM"
	}
	display := hours % 12
	if display == 0 {
		display = 12
	}
	return strconv.Itoa(display) + ":" + minutes + " " + ampm
}

// FormatDisplayDate converts "YYYY-MM-DD" into "Feb 21, 2026".
// Anything unparseable is returned unchanged.
func FormatDisplayDate(ymd string) string {
	d, err := time.Parse("2006-01-02", ymd)
	if err != nil {
		return ymd
	}
	return d.Format("Jan 2, 2006")
}

// FormatTimestamp renders a stored timestamp for list display,
// e.g. "Feb 21, 2026, 9:00 AM". Zero times render as "N/A".
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("Jan 2, 2006, 3:04 PM")
}
