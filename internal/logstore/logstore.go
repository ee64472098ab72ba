// Package logstore owns the per-profile CSV log of tracked time. The file
// is an append-only log; removing or normalizing rows requires a full
// rewrite, which is done atomically via a temp file.
package logstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/rkuiv/ticktally/internal/model"
	"github.com/rkuiv/ticktally/internal/timecalc"
)

// header is the canonical 5-column schema. Legacy files may carry a single
// "time" column instead of start/end, or omit end_time or goal_seconds;
// those shapes are accepted on read and normalized on the next rewrite.
var header = []string{"date", "start_time", "end_time", "duration_seconds", "goal_seconds"}

// Store reads and writes profile log files.
type Store struct {
	log zerolog.Logger
}

// NewStore returns a Store that reports swallowed write failures on logger.
func NewStore(logger zerolog.Logger) *Store {
	return &Store{log: logger.With().Str("component", "logstore").Logger()}
}

// LoadResult is everything Load derives from one pass over a log file.
type LoadResult struct {
	Entries []model.Entry
	Totals  model.Totals
	Goals   model.Goals
	// NeedsMigration is true when a legacy column shape was detected; the
	// caller should Rewrite once to normalize the file.
	NeedsMigration bool
}

// Ensure creates the file with the canonical header when it is absent or
// empty. Write failures are logged, never returned: a broken disk must not
// take the engine down.
func (s *Store) Ensure(path string) {
	info, err := os.Stat(path)
	if err == nil && info.Size() > 0 {
		return
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("cannot create log file")
		return
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(header); err == nil {
		w.Flush()
		err = w.Error()
	}
	if err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("cannot write log header")
	}
}

// Load reads all rows of the log at path. Rows with a non-integer duration
// are skipped, as are non-marker rows with duration <= 0; neither aborts the
// load. fallbackGoal fills rows from files that predate the goal column.
// Later rows win when two rows set a goal for the same date.
func (s *Store) Load(path string, fallbackGoal int) (LoadResult, error) {
	s.Ensure(path)

	res := LoadResult{
		Totals: make(model.Totals),
		Goals:  make(model.Goals),
	}
	if fallbackGoal < 0 {
		fallbackGoal = 0
	}

	f, err := os.Open(path)
	if err != nil {
		return res, fmt.Errorf("opening log %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	head, err := r.Read()
	if err != nil {
		// Empty or unreadable header: treat as an empty log.
		return res, nil
	}
	col := make(map[string]int, len(head))
	for i, name := range head {
		col[name] = i
	}
	_, hasStart := col["start_time"]
	_, hasEnd := col["end_time"]
	_, hasGoal := col["goal_seconds"]
	_, hasLegacyTime := col["time"]
	res.NeedsMigration = hasLegacyTime || !hasStart || !hasEnd || !hasGoal

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A malformed row never aborts the load.
			continue
		}

		date := field(row, "date")
		durationStr := field(row, "duration_seconds")
		if date == "" || durationStr == "" {
			continue
		}

		goal := fallbackGoal
		if hasGoal {
			if raw := field(row, "goal_seconds"); raw != "" {
				if v, err := strconv.Atoi(raw); err == nil {
					goal = v
				}
			}
		}
		res.Goals[date] = goal

		duration, err := strconv.Atoi(durationStr)
		if err != nil {
			continue
		}

		start := field(row, "start_time")
		if !hasStart {
			start = field(row, "time")
		}
		if start == "" {
			start = model.TimeUnknown
		}
		end := field(row, "end_time")
		if end == "" && start != model.TimeUnknown && start != model.GoalMarker {
			if computed, ok := timecalc.AddToDayTime(start, duration); ok {
				end = computed
			}
		}
		if end == "" {
			end = model.TimeUnknown
		}

		if duration <= 0 {
			// Goal markers and damaged rows carry no time.
			continue
		}

		res.Entries = append(res.Entries, model.Entry{
			Date:     date,
			Start:    start,
			End:      end,
			Duration: duration,
			Goal:     goal,
		})
		res.Totals.Add(date, duration)
	}

	return res, nil
}

// Append adds one row to the end of the log without reading the rest of the
// file. The error is returned so the caller can decide whether the in-memory
// update still applies.
func (s *Store) Append(path string, e model.Entry) error {
	s.Ensure(path)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o600)
	if err != nil {
		return fmt.Errorf("opening log %s for append: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(entryRow(e, e.Goal)); err != nil {
		return fmt.Errorf("appending to log %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing log %s: %w", path, err)
	}
	return nil
}

// AppendGoalMarker records a goal change without logging time.
func (s *Store) AppendGoalMarker(path, dateKey string, goalSeconds int) error {
	return s.Append(path, model.Entry{
		Date:  dateKey,
		Start: model.GoalMarker,
		End:   model.GoalMarker,
		Goal:  goalSeconds,
	})
}

// Rewrite truncates and rewrites the whole file in canonical column order.
// Entries without a goal value fall back to dailyGoals for their date. The
// write goes to a temp file first so a failure never leaves a half log.
func (s *Store) Rewrite(path string, entries []model.Entry, dailyGoals model.Goals) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("opening temp log %s: %w", tmpPath, err)
	}

	w := csv.NewWriter(f)
	writeErr := w.Write(header)
	for _, e := range entries {
		if writeErr != nil {
			break
		}
		if e.IsGoalMarker() {
			continue
		}
		goal := e.Goal
		if goal == 0 {
			goal = dailyGoals[e.Date]
		}
		writeErr = w.Write(entryRow(e, goal))
	}
	if writeErr == nil {
		w.Flush()
		writeErr = w.Error()
	}
	if err := f.Close(); writeErr == nil {
		writeErr = err
	}
	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rewriting log %s: %w", path, writeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing log %s: %w", path, err)
	}
	return nil
}

func entryRow(e model.Entry, goal int) []string {
	start := e.Start
	if start == "" {
		start = model.TimeUnknown
	}
	end := e.End
	if end == "" {
		end = model.TimeUnknown
	}
	return []string{
		e.Date,
		start,
		end,
		strconv.Itoa(e.Duration),
		strconv.Itoa(goal),
	}
}
