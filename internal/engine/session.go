package engine

import (
	"github.com/google/uuid"

	"github.com/rkuiv/ticktally/internal/model"
	"github.com/rkuiv/ticktally/internal/timecalc"
)

// activeSession is the single in-progress timer or stopwatch run. It exists
// only while Counting or Clocking and is never persisted until finalized.
type activeSession struct {
	id      string
	start   string // HH:mm:ss at begin
	dateKey string // the day this session's time is attributed to
	seconds int
}

func (e *Engine) beginSession() {
	now := e.clk.Now()
	e.session = &activeSession{
		id:      uuid.NewString(),
		start:   timecalc.DayTime(now),
		dateKey: timecalc.DateKey(now),
	}
	e.log.Debug().
		Str("session_id", e.session.id).
		Str("date", e.session.dateKey).
		Msg("session opened")
}

// finalizeSession flushes the active session to the log and clears it. A
// session with zero accumulated seconds leaves no trace: no file write, no
// entry. Append failures are logged; the in-memory totals stay authoritative
// so displayed values never move backward.
func (e *Engine) finalizeSession() {
	s := e.session
	if s == nil {
		return
	}
	e.session = nil
	if s.seconds <= 0 {
		return
	}

	entry := model.Entry{
		Date:     s.dateKey,
		Start:    s.start,
		End:      timecalc.DayTime(e.clk.Now()),
		Duration: s.seconds,
		Goal:     e.goalSeconds,
	}
	e.goals[s.dateKey] = e.goalSeconds
	if err := e.store.Append(e.activePath(), entry); err != nil {
		e.log.Error().Err(err).
			Str("session_id", s.id).
			Str("date", s.dateKey).
			Int("seconds", s.seconds).
			Msg("session not persisted")
	}
	e.entries = append(e.entries, entry)
	e.totals.Add(s.dateKey, s.seconds)
	e.log.Debug().
		Str("session_id", s.id).
		Str("date", s.dateKey).
		Int("seconds", s.seconds).
		Msg("session finalized")
}

// recordProgress attributes elapsed seconds to the active session, opening
// one when needed. Crossing midnight finalizes whatever accumulated against
// the old date-key and immediately begins a fresh session on the new one, so
// a single stored entry never straddles two days.
func (e *Engine) recordProgress(seconds int) {
	if seconds <= 0 {
		return
	}
	if e.session == nil {
		e.beginSession()
	}
	if today := e.todayKey(); e.session.dateKey != today {
		e.finalizeSession()
		e.beginSession()
		e.clockOffset = 0
	}
	e.session.seconds += seconds
}

// Tick advances the engine by one elapsed second. The host calls it once per
// wall-clock second while a session is open; it is a no-op when idle.
func (e *Engine) Tick() {
	switch e.mode {
	case ModeClocking:
		e.recordProgress(1)
	case ModeCounting:
		if e.remaining <= 0 {
			e.timeUp()
			return
		}
		e.remaining--
		e.recordProgress(1)
		if e.remaining <= 0 {
			e.timeUp()
		}
	}
}

// timeUp ends the countdown when the remaining time reaches zero.
func (e *Engine) timeUp() {
	e.mode = ModeIdle
	e.finalizeSession()
	e.log.Info().Msg("countdown finished")
}

// StartCountdown begins counting down the remaining time. A running
// stopwatch is stopped and finalized first; the two modes are mutually
// exclusive. Starting with no time on the clock is rejected.
func (e *Engine) StartCountdown() error {
	e.StopClock()
	if e.mode == ModeCounting {
		return nil
	}
	if e.remaining <= 0 {
		return ErrCountdownNotSet
	}
	e.mode = ModeCounting
	e.beginSession()
	return nil
}

// PauseCountdown stops the countdown and finalizes the session. Pausing with
// zero elapsed time leaves no trace.
func (e *Engine) PauseCountdown() {
	if e.mode != ModeCounting {
		return
	}
	e.mode = ModeIdle
	e.finalizeSession()
}

// StartClock begins the stopwatch, stopping and finalizing a running
// countdown first.
func (e *Engine) StartClock() {
	if e.mode == ModeClocking {
		return
	}
	e.PauseCountdown()
	e.mode = ModeClocking
	e.beginSession()
}

// StopClock stops the stopwatch and finalizes the session.
func (e *Engine) StopClock() {
	if e.mode != ModeClocking {
		return
	}
	e.mode = ModeIdle
	e.finalizeSession()
}

// SetRemaining sets the countdown's remaining time.
func (e *Engine) SetRemaining(seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	e.remaining = seconds
}

// Remaining returns the countdown's remaining seconds.
func (e *Engine) Remaining() int { return e.remaining }

// ClockDisplaySeconds returns the stopwatch display value: today's total
// minus the reset offset. Totals keep accruing underneath a reset.
func (e *Engine) ClockDisplaySeconds() int {
	elapsed := e.TotalSecondsToday() - e.clockOffset
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// ResetClock zeroes the stopwatch display without touching stored totals.
func (e *Engine) ResetClock() {
	e.clockOffset = e.TotalSecondsToday()
}
