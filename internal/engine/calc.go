package engine

import (
	"sort"

	"invigil/internal/models"
)

// elapsedMs is the monotonic time spent counting down in the current phase:
// time since the phase's zero-point, minus time spent paused. While paused
// the clock reads from the pause instant instead of now.
func elapsedMs(state models.TimerState, nowMonotonicMs int64) int64 {
	ref := nowMonotonicMs
	if state.IsPaused && state.PausedAtMonotonicMs != nil {
		ref = *state.PausedAtMonotonicMs
	}
	return ref - state.MonotonicStartMs - state.PausedDurationMs
}

func clampToZero(ms int64) int64 {
	if ms < 0 {
		return 0
	}
	return ms
}

// GeneralRemainingMs returns the no-D.P. exam time left on the session
// clock. Before activation nothing has elapsed, so it is the full baseline.
//
// Once the session is running, a single elapsed formula applies in every
// phase, including reading_time: general remaining counts down from the
// reading-phase zero-point rather than holding at the baseline until the
// exam proper begins. Changing that would silently shift the session clock,
// so the behavior is pinned by TestGeneralRemainingCountsDuringReading.
func GeneralRemainingMs(session *models.Session, state models.TimerState, nowMonotonicMs int64) int64 {
	if state.Phase == models.PhasePreExam {
		return session.ExamDurationMs()
	}
	return clampToZero(session.ExamDurationMs() - elapsedMs(state, nowMonotonicMs))
}

// ReadingRemainingMs returns the reading period left, or 0 in any other
// phase.
func ReadingRemainingMs(session *models.Session, state models.TimerState, nowMonotonicMs int64) int64 {
	if state.Phase != models.PhaseReadingTime {
		return 0
	}
	return clampToZero(session.ReadingTimeMs() - elapsedMs(state, nowMonotonicMs))
}

// DeskRemainingMs returns the time left for one desk, including its
// cumulative D.P. allowance. Unlike the general clock, a desk's countdown is
// frozen at its full allowance until the exam phase actually starts.
func DeskRemainingMs(session *models.Session, desk *models.Desk, state models.TimerState, nowMonotonicMs int64) int64 {
	total := desk.TotalAllowedMs(session)
	if state.Phase == models.PhasePreExam || state.Phase == models.PhaseReadingTime {
		return total
	}
	return clampToZero(total - elapsedMs(state, nowMonotonicMs))
}

// DeskAdjustedFinishEpochMs projects a desk's wall-clock finish instant from
// configuration alone: scheduled start + reading period + baseline + D.P.
// Pause history and monotonic time play no part.
func DeskAdjustedFinishEpochMs(session *models.Session, desk *models.Desk) int64 {
	return session.StartTimeEpochMs + session.ReadingTimeMs() + desk.TotalAllowedMs(session)
}

// GeneralFinishEpochMs projects the session's wall-clock finish with no D.P.
func GeneralFinishEpochMs(session *models.Session) int64 {
	return session.StartTimeEpochMs + session.ReadingTimeMs() + session.ExamDurationMs()
}

// RefreshAdjustedFinish recomputes and stores a desk's cached finish
// projection. Called after every D.P. grant; granting and refreshing are
// deliberately two separate steps.
func RefreshAdjustedFinish(session *models.Session, desk *models.Desk) {
	desk.AdjustedFinishEpochMs = DeskAdjustedFinishEpochMs(session, desk)
}

// SortDesks returns the session's desks ordered by ascending adjusted finish
// time, desk number breaking ties. Finish times are computed fresh so the
// order is correct immediately after any D.P. grant.
func SortDesks(session *models.Session) []models.Desk {
	desks := make([]models.Desk, len(session.Desks))
	copy(desks, session.Desks)

	finish := make(map[string]int64, len(desks))
	for i := range desks {
		finish[desks[i].ID] = DeskAdjustedFinishEpochMs(session, &desks[i])
	}

	sort.SliceStable(desks, func(i, j int) bool {
		fi, fj := finish[desks[i].ID], finish[desks[j].ID]
		if fi != fj {
			return fi < fj
		}
		return desks[i].DeskNumber < desks[j].DeskNumber
	})

	return desks
}
