// Package streak computes goal-adherence streaks over sparse goal history.
// Only dates with an explicitly recorded goal > 0 participate; a day with
// logged time but no goal on record never extends a streak.
package streak

import (
	"sort"
	"time"

	"github.com/rkuiv/ticktally/internal/model"
	"github.com/rkuiv/ticktally/internal/timecalc"
)

// MetFunc reports whether the goal recorded for a date-key was met.
type MetFunc func(dateKey string) bool

// Calculate returns the longest and current streak lengths in days.
//
// Longest scans goal-dated days in ascending order for the maximal run of
// calendar-consecutive met days. Current anchors on the most recent met
// goal-date; it is zero when that date is older than yesterday (the streak
// has lapsed), otherwise it walks backward one day at a time while each day
// is met.
func Calculate(goals model.Goals, met MetFunc, today time.Time) (longest, current int) {
	goalDates := make([]time.Time, 0, len(goals))
	for key, goalSeconds := range goals {
		if goalSeconds <= 0 {
			continue
		}
		if date, ok := timecalc.ParseDateKey(key); ok {
			goalDates = append(goalDates, date)
		}
	}
	sort.Slice(goalDates, func(i, j int) bool { return goalDates[i].Before(goalDates[j]) })

	running := 0
	var prev time.Time
	havePrev := false
	for _, date := range goalDates {
		if met(timecalc.DateKey(date)) {
			if havePrev && prev.AddDate(0, 0, 1).Equal(date) {
				running++
			} else {
				running = 1
			}
			if running > longest {
				longest = running
			}
		} else {
			running = 0
		}
		prev = date
		havePrev = true
	}

	var latestMet time.Time
	haveLatest := false
	for i := len(goalDates) - 1; i >= 0; i-- {
		if met(timecalc.DateKey(goalDates[i])) {
			latestMet = goalDates[i]
			haveLatest = true
			break
		}
	}
	if !haveLatest {
		return longest, 0
	}

	// Compare by date-key so the walk is calendar-based regardless of the
	// time zones behind the two values.
	yesterdayKey := timecalc.DateKey(today.AddDate(0, 0, -1))
	if timecalc.DateKey(latestMet) < yesterdayKey {
		return longest, 0
	}

	for date := latestMet; met(timecalc.DateKey(date)); date = date.AddDate(0, 0, -1) {
		current++
	}
	return longest, current
}
