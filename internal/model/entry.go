package model

// Time-of-day sentinels used in the log file.
const (
	// TimeUnknown marks an entry whose start or end time was never recorded.
	TimeUnknown = "N/A"
	// GoalMarker is the start/end value of a zero-duration row that records
	// a goal change instead of tracked time.
	GoalMarker = "goal"
)

// Entry represents one logged interval, or one goal-change marker when
// Start == End == GoalMarker and Duration == 0.
type Entry struct {
	Date     string // date-key, yyyy-MM-dd
	Start    string // HH:mm:ss, TimeUnknown, or GoalMarker
	End      string // HH:mm:ss, TimeUnknown, or GoalMarker
	Duration int    // seconds, >= 0
	Goal     int    // goal seconds in effect when the row was written
}

// IsGoalMarker reports whether the entry records a goal change.
func (e Entry) IsGoalMarker() bool {
	return e.Start == GoalMarker && e.End == GoalMarker && e.Duration == 0
}

// Totals maps a date-key to summed duration seconds for that day.
type Totals map[string]int

// Add accumulates seconds for a day.
func (t Totals) Add(dateKey string, seconds int) {
	t[dateKey] += seconds
}

// Subtract removes seconds from a day, dropping the day entirely when it
// reaches zero so derived views treat it like a day with no logged time.
func (t Totals) Subtract(dateKey string, seconds int) {
	remaining := t[dateKey] - seconds
	if remaining <= 0 {
		delete(t, dateKey)
		return
	}
	t[dateKey] = remaining
}

// Goals maps a date-key to the last-seen goal seconds for that day.
// Only values > 0 count as "a goal was set" for streak purposes.
type Goals map[string]int
