package timecalc

import (
	"fmt"
	"time"
)

// DateKeyLayout is the calendar-date serialization used as the aggregation unit.
const DateKeyLayout = "2006-01-02"

// DayTimeLayout is the time-of-day serialization used in log entries.
const DayTimeLayout = "15:04:05"

// DateKey returns the date-key (yyyy-MM-dd) for t.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// ParseDateKey parses a date-key back into a time. The zero time and false
// are returned for malformed keys.
func ParseDateKey(key string) (time.Time, bool) {
	t, err := time.Parse(DateKeyLayout, key)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DayTime returns the HH:mm:ss time-of-day string for t.
func DayTime(t time.Time) string {
	return t.Format(DayTimeLayout)
}

// AddToDayTime returns start shifted forward by the given seconds, wrapping
// past midnight. Both HH:mm:ss and HH:mm starts are accepted; anything else
// yields ok == false.
func AddToDayTime(start string, seconds int) (string, bool) {
	t, err := time.Parse(DayTimeLayout, start)
	if err != nil {
		t, err = time.Parse("15:04", start)
	}
	if err != nil {
		return "", false
	}
	return t.Add(time.Duration(seconds) * time.Second).Format(DayTimeLayout), true
}

// FormatDuration formats seconds as a human-readable string like "1h 40m" or "45m" or "30s".
func FormatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}

// FormatDurationHHMMSS formats seconds as HH:MM:SS.
func FormatDurationHHMMSS(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// ISOWeekday returns the weekday of t with Monday = 1 .. Sunday = 7.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return wd
}

// WeekWindow returns the 7-day window ending on the most recent occurrence
// of endWeekday (1 = Monday .. 7 = Sunday) on or before date. Values outside
// 1..7 are clamped.
func WeekWindow(date time.Time, endWeekday int) (start, end time.Time) {
	if endWeekday < 1 {
		endWeekday = 1
	}
	if endWeekday > 7 {
		endWeekday = 7
	}
	delta := (ISOWeekday(date) - endWeekday) % 7
	if delta < 0 {
		delta += 7
	}
	end = StartOfDay(date.AddDate(0, 0, -delta))
	start = end.AddDate(0, 0, -6)
	return start, end
}

// DaysElapsedInYear returns the 1-based count of days from January 1st
// through t, inclusive.
func DaysElapsedInYear(t time.Time) int {
	return t.YearDay()
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
