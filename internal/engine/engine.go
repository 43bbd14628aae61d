// Package engine is the pure countdown core: calculations and state
// transitions over (Session, TimerState) values. It performs no I/O, never
// reads a clock, and never schedules anything; the driver supplies the
// current wall-clock and monotonic time on every call and owns persistence.
// Invalid calls (wrong phase, redundant pause) return the inputs unchanged
// rather than failing.
package engine

import (
	"invigil/internal/models"
)

// appendEventAll records the same session-level transition on every desk.
// The audit trail is desk-scoped, so session-wide actions fan out one event
// per desk.
func appendEventAll(session *models.Session, eventType models.EventType, epochMs int64) {
	for i := range session.Desks {
		session.Desks[i].Events = append(session.Desks[i].Events, models.TimerEvent{
			DeskID:      session.Desks[i].ID,
			Type:        eventType,
			TimestampMs: epochMs,
		})
	}
}

// ActivateExamStart starts the session from pre_exam. With a reading period
// configured the session enters reading_time, otherwise it goes straight to
// exam_active. The current monotonic instant becomes the phase zero-point.
// Any other starting phase is a no-op.
func ActivateExamStart(session *models.Session, state models.TimerState, nowEpochMs, nowMonotonicMs int64) models.TimerState {
	if state.Phase != models.PhasePreExam {
		return state
	}

	if session.ReadingTimeMinutes > 0 {
		state.Phase = models.PhaseReadingTime
		appendEventAll(session, models.EventReadingStart, nowEpochMs)
	} else {
		state.Phase = models.PhaseExamActive
		appendEventAll(session, models.EventExamActive, nowEpochMs)
	}

	state.MonotonicStartMs = nowMonotonicMs
	state.PausedDurationMs = 0
	state.IsPaused = false
	state.PausedAtMonotonicMs = nil
	return state
}

// TransitionToExamActive moves reading_time into exam_active with a fresh
// monotonic zero-point, so the exam countdown is independent of how much
// reading time actually elapsed. The driver polls ReadingRemainingMs and
// invokes this when it reaches zero; the engine never self-triggers.
func TransitionToExamActive(session *models.Session, state models.TimerState, nowEpochMs, nowMonotonicMs int64) models.TimerState {
	if state.Phase != models.PhaseReadingTime {
		return state
	}

	appendEventAll(session, models.EventExamActive, nowEpochMs)
	state.Phase = models.PhaseExamActive
	state.MonotonicStartMs = nowMonotonicMs
	state.PausedDurationMs = 0
	state.IsPaused = false
	state.PausedAtMonotonicMs = nil
	return state
}

// ApplyDPTime grants extra minutes to a single desk: bumps the cumulative
// counter and appends one dp_applied event carrying the delta. Non-positive
// deltas are rejected as a no-op so bad input can never corrupt the
// cumulative total. The caller must refresh the desk's cached finish
// projection afterwards (RefreshAdjustedFinish).
func ApplyDPTime(desk *models.Desk, dpMinutesToAdd int, nowEpochMs int64) bool {
	if desk == nil || dpMinutesToAdd <= 0 {
		return false
	}

	desk.DPTimeTakenMinutes += dpMinutesToAdd
	granted := dpMinutesToAdd
	desk.Events = append(desk.Events, models.TimerEvent{
		DeskID:       desk.ID,
		Type:         models.EventDPApplied,
		TimestampMs:  nowEpochMs,
		ValueMinutes: &granted,
	})
	return true
}

// PauseTimers freezes the session clock, recording the pause instant. A
// no-op when already paused.
func PauseTimers(session *models.Session, state models.TimerState, nowEpochMs, nowMonotonicMs int64) models.TimerState {
	if state.IsPaused {
		return state
	}

	appendEventAll(session, models.EventPause, nowEpochMs)
	state.IsPaused = true
	pausedAt := nowMonotonicMs
	state.PausedAtMonotonicMs = &pausedAt
	return state
}

// ResumeTimers unfreezes the session clock, folding the paused interval into
// PausedDurationMs so it never counts as elapsed. A no-op when not paused,
// or when the pause instant is missing.
func ResumeTimers(session *models.Session, state models.TimerState, nowEpochMs, nowMonotonicMs int64) models.TimerState {
	if !state.IsPaused || state.PausedAtMonotonicMs == nil {
		return state
	}

	appendEventAll(session, models.EventResume, nowEpochMs)
	state.PausedDurationMs += nowMonotonicMs - *state.PausedAtMonotonicMs
	state.IsPaused = false
	state.PausedAtMonotonicMs = nil
	return state
}

// MarkDeskFinished appends the terminal finish event to a desk's trail,
// once. The driver calls this the first time a desk's remaining time reaches
// zero; there is no session-level terminal state.
func MarkDeskFinished(desk *models.Desk, nowEpochMs int64) bool {
	if desk == nil {
		return false
	}
	for i := range desk.Events {
		if desk.Events[i].Type == models.EventFinish {
			return false
		}
	}
	desk.Events = append(desk.Events, models.TimerEvent{
		DeskID:      desk.ID,
		Type:        models.EventFinish,
		TimestampMs: nowEpochMs,
	})
	return true
}
