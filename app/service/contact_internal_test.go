package service

import (
	"testing"
	"time"
)

func TestBirthdayWindow(t *testing.T) {
	cases := []struct {
		name       string
		today      time.Time
		start, end string
	}{
		{"mid year", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), "06-01", "06-08"},
		{"crosses new year", time.Date(2023, 12, 28, 0, 0, 0, 0, time.UTC), "12-28", "01-04"},
		{"leap day", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), "02-29", "03-07"},
		{"last day of leap year", time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), "12-31", "01-07"},
	}

	for _, tc := range cases {
		start, end := birthdayWindow(tc.today, birthdayWindowDays)
		if start != tc.start || end != tc.end {
			t.Fatalf("%s: expected [%s, %s], got [%s, %s]", tc.name, tc.start, tc.end, start, end)
		}
	}
}
