// Package aggregate derives per-day, per-week, and per-year views from the
// log store's totals and goals. It is a pure computed view: nothing here
// mutates state or touches disk.
package aggregate

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rkuiv/ticktally/internal/model"
	"github.com/rkuiv/ticktally/internal/timecalc"
)

// View is a snapshot of everything day-level queries resolve against:
// the stored maps, the live configured goal, and the in-progress session.
type View struct {
	Totals model.Totals
	Goals  model.Goals

	// LiveGoalSeconds is the profile's current configured goal. It backs
	// today's goal when no explicit per-date goal has been recorded.
	LiveGoalSeconds int

	// SessionDateKey/SessionSeconds describe the active session, if any.
	// An empty key means no session.
	SessionDateKey string
	SessionSeconds int

	// WeekEndDay is the configured week-end weekday, 1 = Monday .. 7 = Sunday.
	WeekEndDay int
}

// TotalSecondsForDay returns the stored total for the date-key plus the
// active session's seconds when the session is anchored to that day.
func (v View) TotalSecondsForDay(dateKey string) int {
	total := v.Totals[dateKey]
	if v.SessionDateKey == dateKey {
		total += v.SessionSeconds
	}
	return total
}

// GoalSecondsForDate resolves the goal for a date through an ordered chain:
// explicit per-date goal, then the live configured goal when the date is
// today, then zero.
func (v View) GoalSecondsForDate(dateKey, todayKey string) int {
	if goal, ok := v.Goals[dateKey]; ok {
		return goal
	}
	if dateKey == todayKey {
		return v.LiveGoalSeconds
	}
	return 0
}

// GoalMetOn reports whether the date has an explicit goal > 0 that its
// total meets. Days with logged time but no recorded goal are never met.
func (v View) GoalMetOn(dateKey string) bool {
	goal := v.Goals[dateKey]
	if goal <= 0 {
		return false
	}
	return v.TotalSecondsForDay(dateKey) >= goal
}

// WeekTotal sums TotalSecondsForDay over the 7-day window ending on the most
// recent occurrence of the configured week-end weekday on/before today.
func (v View) WeekTotal(today time.Time) int {
	start, end := timecalc.WeekWindow(today, v.WeekEndDay)
	total := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		total += v.TotalSecondsForDay(timecalc.DateKey(d))
	}
	return total
}

// YearTotal sums all stored totals whose date-key falls in today's year,
// plus the active session when it does too.
func (v View) YearTotal(today time.Time) int {
	prefix := fmt.Sprintf("%04d-", today.Year())
	total := 0
	for key, seconds := range v.Totals {
		if strings.HasPrefix(key, prefix) {
			total += seconds
		}
	}
	if v.SessionDateKey != "" && strings.HasPrefix(v.SessionDateKey, prefix) {
		total += v.SessionSeconds
	}
	return total
}

// YearAvgPerWeek projects the year total onto a weekly average over the days
// elapsed so far this year.
func (v View) YearAvgPerWeek(today time.Time) int {
	days := timecalc.DaysElapsedInYear(today)
	if days < 1 {
		days = 1
	}
	return int(math.Round(float64(v.YearTotal(today)) * 7 / float64(days)))
}

// PercentOfGoal formats seconds as a rounded percentage of goal, or "N/A"
// when no goal is in effect.
func PercentOfGoal(seconds, goal int) string {
	if goal <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.0f%%", float64(seconds)/float64(goal)*100)
}
