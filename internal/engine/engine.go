// Package engine turns raw second-by-second ticks into durable, queryable
// time-usage records: sessions, per-day totals, daily goals, multi-profile
// storage, and derived analytics.
package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"github.com/rkuiv/ticktally/internal/aggregate"
	"github.com/rkuiv/ticktally/internal/clock"
	"github.com/rkuiv/ticktally/internal/logstore"
	"github.com/rkuiv/ticktally/internal/model"
	"github.com/rkuiv/ticktally/internal/profile"
	"github.com/rkuiv/ticktally/internal/settings"
	"github.com/rkuiv/ticktally/internal/streak"
	"github.com/rkuiv/ticktally/internal/timecalc"
)

// Mode is the session state machine's state.
type Mode int

const (
	// ModeIdle means no session is running.
	ModeIdle Mode = iota
	// ModeCounting means a countdown is running.
	ModeCounting
	// ModeClocking means the stopwatch is running.
	ModeClocking
)

func (m Mode) String() string {
	switch m {
	case ModeCounting:
		return "counting"
	case ModeClocking:
		return "clocking"
	default:
		return "idle"
	}
}

var (
	// ErrCountdownNotSet is returned when a countdown is started with no time on it.
	ErrCountdownNotSet = errors.New("set a goal time first")
	// ErrNoUndo is returned when there is no added-time entry left to undo.
	ErrNoUndo = errors.New("no added time to undo")
	// ErrZeroDuration rejects manual entries that carry no time.
	ErrZeroDuration = errors.New("add time needs hours or minutes")
	// ErrBadStartTime rejects manual entries whose start time does not parse.
	ErrBadStartTime = errors.New("start time must look like HH:MM")
	// ErrBadDate rejects manual entries whose date does not parse.
	ErrBadDate = errors.New("date must look like yyyy-MM-dd")
	// ErrDataDirLocked means another instance owns the data directory.
	ErrDataDirLocked = errors.New("data directory is in use by another instance")
)

const weekEndDayKey = "week_end_day"

// Engine is the session and time-tracking engine. It is single-threaded and
// tick-driven: the host calls Tick once per wall-clock second and interleaves
// the other operations synchronously.
type Engine struct {
	log      zerolog.Logger
	clk      clock.Clock
	repo     settings.Repo
	profiles *profile.Manager
	store    *logstore.Store
	lock     *flock.Flock

	activeProfile string
	goalSeconds   int

	entries []model.Entry
	totals  model.Totals
	goals   model.Goals

	mode        Mode
	remaining   int
	session     *activeSession
	clockOffset int

	// lastAdded indexes the most recent manual entry in entries, or -1.
	lastAdded int
}

// New opens the engine over dataDir. The directory is created when missing,
// an advisory lock guards against a second instance interleaving appends,
// legacy profile logs are migrated, and the active profile is loaded.
func New(dataDir string, repo settings.Repo, clk clock.Clock, logger zerolog.Logger) (*Engine, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", dataDir, err)
	}

	lock := flock.New(filepath.Join(dataDir, "ticktally.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking data directory %s: %w", dataDir, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrDataDirLocked, dataDir)
	}

	e := &Engine{
		log:       logger.With().Str("component", "engine").Logger(),
		clk:       clk,
		repo:      repo,
		profiles:  profile.NewManager(repo, logger, dataDir),
		store:     logstore.NewStore(logger),
		lock:      lock,
		lastAdded: -1,
	}

	e.migrateProfileLogs()

	e.activeProfile = e.profiles.Active()
	e.goalSeconds = e.profiles.GoalSeconds(e.activeProfile)
	e.loadActiveProfileData()
	e.restoreUndo()
	return e, nil
}

// Close releases the data-directory lock.
func (e *Engine) Close() error {
	if e.lock == nil {
		return nil
	}
	return e.lock.Unlock()
}

// migrateProfileLogs normalizes every known profile's log to the canonical
// schema. Best-effort: a profile that cannot be migrated is logged and left
// for the next start.
func (e *Engine) migrateProfileLogs() {
	for _, label := range e.profiles.Labels() {
		path := e.profiles.FilePath(label)
		res, err := e.store.Load(path, e.profiles.GoalSeconds(label))
		if err != nil {
			e.log.Error().Err(err).Str("profile", label).Msg("cannot read profile log")
			continue
		}
		if !res.NeedsMigration {
			continue
		}
		if err := e.store.Rewrite(path, res.Entries, res.Goals); err != nil {
			e.log.Error().Err(err).Str("profile", label).Msg("log migration failed")
			continue
		}
		e.log.Info().Str("profile", label).Msg("migrated legacy log schema")
	}
}

func (e *Engine) loadActiveProfileData() {
	path := e.profiles.FilePath(e.activeProfile)
	res, err := e.store.Load(path, e.goalSeconds)
	if err != nil {
		e.log.Error().Err(err).Str("profile", e.activeProfile).Msg("cannot load profile log")
		res.Entries = nil
		res.Totals = make(model.Totals)
		res.Goals = make(model.Goals)
	}
	e.entries = res.Entries
	e.totals = res.Totals
	e.goals = res.Goals
}

func (e *Engine) activePath() string {
	return e.profiles.FilePath(e.activeProfile)
}

// ActiveLogPath returns the path of the active profile's log file.
func (e *Engine) ActiveLogPath() string {
	return e.activePath()
}

func (e *Engine) todayKey() string {
	return timecalc.DateKey(e.clk.Now())
}

// view snapshots the state the derived queries resolve against.
func (e *Engine) view() aggregate.View {
	v := aggregate.View{
		Totals:          e.totals,
		Goals:           e.goals,
		LiveGoalSeconds: e.goalSeconds,
		WeekEndDay:      e.repo.GetInt(weekEndDayKey, 7),
	}
	if e.session != nil {
		v.SessionDateKey = e.session.dateKey
		v.SessionSeconds = e.session.seconds
	}
	return v
}

// Mode returns the session state machine's current state.
func (e *Engine) Mode() Mode { return e.mode }

// ActiveProfile returns the label of the profile in use.
func (e *Engine) ActiveProfile() string { return e.activeProfile }

// GoalSeconds returns the live configured daily goal.
func (e *Engine) GoalSeconds() int { return e.goalSeconds }

// Entries returns a copy of the loaded entry list for log and trend views.
func (e *Engine) Entries() []model.Entry {
	out := make([]model.Entry, len(e.entries))
	copy(out, e.entries)
	return out
}

// TotalSecondsForDay returns the day's total including the live session.
func (e *Engine) TotalSecondsForDay(dateKey string) int {
	return e.view().TotalSecondsForDay(dateKey)
}

// TotalSecondsToday returns today's total including the live session.
func (e *Engine) TotalSecondsToday() int {
	return e.TotalSecondsForDay(e.todayKey())
}

// GoalSecondsForDate resolves the goal for a date: explicit daily goal, then
// the live goal when the date is today, then zero.
func (e *Engine) GoalSecondsForDate(dateKey string) int {
	return e.view().GoalSecondsForDate(dateKey, e.todayKey())
}

// GoalSecondsLeft returns the unmet remainder of today's goal.
func (e *Engine) GoalSecondsLeft() int {
	goal := e.GoalSecondsForDate(e.todayKey())
	if goal <= 0 {
		return 0
	}
	left := goal - e.TotalSecondsToday()
	if left < 0 {
		return 0
	}
	return left
}

// GoalMetOn reports whether the date's recorded goal was met; used for
// calendar heat coloring.
func (e *Engine) GoalMetOn(dateKey string) bool {
	return e.view().GoalMetOn(dateKey)
}

// PercentOfGoalToday formats today's progress against today's goal.
func (e *Engine) PercentOfGoalToday() string {
	return aggregate.PercentOfGoal(e.TotalSecondsToday(), e.GoalSecondsForDate(e.todayKey()))
}

// WeekTotal sums the configured 7-day window ending on/before today.
func (e *Engine) WeekTotal() int {
	return e.view().WeekTotal(e.clk.Now())
}

// YearTotal sums the current year including the live session.
func (e *Engine) YearTotal() int {
	return e.view().YearTotal(e.clk.Now())
}

// YearAvgPerWeek projects the year total onto a weekly average.
func (e *Engine) YearAvgPerWeek() int {
	return e.view().YearAvgPerWeek(e.clk.Now())
}

// Streaks returns the longest and current goal-adherence streaks.
func (e *Engine) Streaks() (longest, current int) {
	v := e.view()
	return streak.Calculate(e.goals, v.GoalMetOn, e.clk.Now())
}

// SetGoal updates the live daily goal, persists it on the active profile,
// and records a goal marker for today when the value actually changed.
func (e *Engine) SetGoal(seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	e.goalSeconds = seconds
	e.profiles.SetGoalSeconds(e.activeProfile, seconds)
	e.setDailyGoal(e.todayKey(), seconds)
}

// setDailyGoal records a goal change for a date, writing a marker row only
// when the value differs from what is already on record.
func (e *Engine) setDailyGoal(dateKey string, goalSeconds int) {
	if current, ok := e.goals[dateKey]; ok && current == goalSeconds {
		return
	}
	e.goals[dateKey] = goalSeconds
	if err := e.store.AppendGoalMarker(e.activePath(), dateKey, goalSeconds); err != nil {
		e.log.Error().Err(err).Str("date", dateKey).Msg("goal marker not persisted")
	}
}

// undoKey names the settings slot holding the pending undo target for the
// active profile's log. Keying by filename keeps it stable across renames of
// the display label casing.
func (e *Engine) undoKey() string {
	name := strings.TrimSuffix(strings.ToLower(e.profiles.Filename(e.activeProfile)), ".csv")
	return "undo/" + name
}

// persistUndo records the undo target so it survives a restart.
func (e *Engine) persistUndo(entry model.Entry) {
	e.repo.Set(e.undoKey(), fmt.Sprintf("%s|%s|%d", entry.Date, entry.Start, entry.Duration))
	if err := e.repo.Sync(); err != nil {
		e.log.Error().Err(err).Msg("failed to persist undo target")
	}
}

func (e *Engine) clearUndo() {
	e.lastAdded = -1
	if !e.repo.Has(e.undoKey()) {
		return
	}
	e.repo.Remove(e.undoKey())
	if err := e.repo.Sync(); err != nil {
		e.log.Error().Err(err).Msg("failed to clear undo target")
	}
}

// restoreUndo re-resolves a persisted undo target against the loaded entries.
// A marker that no longer matches any entry is dropped silently.
func (e *Engine) restoreUndo() {
	value := e.repo.GetString(e.undoKey(), "")
	if value == "" {
		return
	}
	parts := strings.Split(value, "|")
	if len(parts) != 3 {
		return
	}
	duration, err := strconv.Atoi(parts[2])
	if err != nil {
		return
	}
	for i := len(e.entries) - 1; i >= 0; i-- {
		entry := e.entries[i]
		if entry.Date == parts[0] && entry.Start == parts[1] && entry.Duration == duration {
			e.lastAdded = i
			return
		}
	}
}

// AddManualTime logs a block of time against dateKey (empty means today)
// starting at startTime (HH:MM or HH:MM:SS). The entry becomes the undo
// target.
func (e *Engine) AddManualTime(dateKey, startTime string, durationSeconds int) error {
	if durationSeconds <= 0 {
		return ErrZeroDuration
	}
	if dateKey == "" {
		dateKey = e.todayKey()
	} else if _, ok := timecalc.ParseDateKey(dateKey); !ok {
		return fmt.Errorf("%w: %q", ErrBadDate, dateKey)
	}
	start, err := time.Parse("15:04", startTime)
	if err != nil {
		start, err = time.Parse(timecalc.DayTimeLayout, startTime)
	}
	if err != nil {
		return fmt.Errorf("%w: %q", ErrBadStartTime, startTime)
	}
	// Seconds are dropped so manual entries land on whole minutes.
	start = time.Date(0, 1, 1, start.Hour(), start.Minute(), 0, 0, time.UTC)

	goal := e.GoalSecondsForDate(dateKey)
	entry := model.Entry{
		Date:     dateKey,
		Start:    timecalc.DayTime(start),
		End:      timecalc.DayTime(start.Add(time.Duration(durationSeconds) * time.Second)),
		Duration: durationSeconds,
		Goal:     goal,
	}
	if err := e.store.Append(e.activePath(), entry); err != nil {
		e.log.Error().Err(err).Str("date", dateKey).Msg("manual time not persisted")
		return err
	}
	e.goals[dateKey] = goal
	e.entries = append(e.entries, entry)
	e.totals.Add(dateKey, durationSeconds)
	e.lastAdded = len(e.entries) - 1
	e.persistUndo(entry)
	return nil
}

// UndoLastAddedTime removes the most recent manual entry, restores the
// day's total, and rewrites the log without the entry. A missing target
// (for example after a profile switch) is a no-op error, never a crash.
func (e *Engine) UndoLastAddedTime() error {
	if e.lastAdded < 0 || e.lastAdded >= len(e.entries) {
		e.clearUndo()
		return ErrNoUndo
	}
	entry := e.entries[e.lastAdded]
	e.entries = append(e.entries[:e.lastAdded], e.entries[e.lastAdded+1:]...)
	e.clearUndo()
	e.totals.Subtract(entry.Date, entry.Duration)
	if err := e.store.Rewrite(e.activePath(), e.entries, e.goals); err != nil {
		// Memory is already consistent; the file keeps the row until the
		// next successful rewrite.
		e.log.Error().Err(err).Msg("undo not persisted")
	}
	return nil
}

// SwitchProfile finalizes any running session against the old profile's log,
// then repoints the engine at the new profile's file, goal, and totals. A
// pending undo cannot survive the switch and is discarded.
func (e *Engine) SwitchProfile(label string) error {
	if !e.profiles.Exists(label) {
		return fmt.Errorf("%w: %q", profile.ErrUnknown, label)
	}
	e.PauseCountdown()
	e.StopClock()
	e.clearUndo()

	e.activeProfile = label
	e.goalSeconds = e.profiles.GoalSeconds(label)
	e.clockOffset = 0
	e.loadActiveProfileData()
	e.clearUndo()
	e.profiles.SetActive(label)
	e.log.Info().Str("profile", label).Msg("switched profile")
	return nil
}

// AddProfile registers a new custom profile, seeds it with the current goal,
// and switches to it.
func (e *Engine) AddProfile(label string) error {
	clean, err := e.profiles.Add(label)
	if err != nil {
		return err
	}
	e.profiles.SetGoalSeconds(clean, e.goalSeconds)
	return e.SwitchProfile(clean)
}

// DeleteProfile removes a custom profile and its overrides. Deleting the
// active profile falls back to the default built-in profile.
func (e *Engine) DeleteProfile(label string) error {
	wasActive := strings.EqualFold(e.activeProfile, strings.TrimSpace(label))
	if err := e.profiles.Remove(label); err != nil {
		return err
	}
	if wasActive {
		return e.SwitchProfile(profile.DefaultLabel)
	}
	return nil
}

// SetProfileColor validates and stores a display-color override.
func (e *Engine) SetProfileColor(label, hex string) error {
	return e.profiles.SetColor(label, hex)
}

// ProfileColor returns the label's display color, falling back to a color
// hashed from the label when no override is set.
func (e *Engine) ProfileColor(label string) string {
	return e.profiles.Color(label)
}

// Profiles returns all profile labels, built-ins first.
func (e *Engine) Profiles() []string {
	return e.profiles.Labels()
}

// IsBuiltinProfile reports whether label names a built-in profile.
func (e *Engine) IsBuiltinProfile(label string) bool {
	return e.profiles.IsBuiltin(label)
}
