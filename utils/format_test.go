package utils

import (
	"testing"
	"time"
)

func TestFormatClockTime(t *testing.T) {
	cases := map[string]string{
		"09:00": "9:00 AM",
		"00:15": "12:15 AM",
		"12:00": "12:00 PM",
		"13:30": "1:30 PM",
		"23:59": "11:59 PM",
		"later": "later",
		"":      "",
	}
	for in, want := range cases {
		if got := FormatClockTime(in); got != want {
			t.Errorf("FormatClockTime(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDisplayDate(t *testing.T) {
	if got := FormatDisplayDate("2026-02-21"); got != "Feb 21, 2026" {
		t.Errorf("got %q", got)
	}
	// free-form dates pass through untouched
	if got := FormatDisplayDate("ASAP"); got != "ASAP" {
		t.Errorf("got %q", got)
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2026, 2, 21, 9, 0, 0, 0, time.UTC)
	if got := FormatTimestamp(ts); got != "Feb 21, 2026, 9:00 AM" {
		t.Errorf("got %q", got)
	}
	if got := FormatTimestamp(time.Time{}); got != "N/A" {
		t.Errorf("zero time: got %q", got)
	}
}
