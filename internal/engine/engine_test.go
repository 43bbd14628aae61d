package engine

import (
	"testing"

	"invigil/internal/models"
)

func countEvents(desk *models.Desk, eventType models.EventType) int {
	n := 0
	for _, e := range desk.Events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// With reading time configured activation enters reading_time and fans a
// reading_start event out to every desk
func TestActivateWithReadingTime(t *testing.T) {
	s := testSession(10)
	state := ActivateExamStart(s, models.NewTimerState(), startEpoch, 500)

	if state.Phase != models.PhaseReadingTime {
		t.Fatalf("phase = %s, want reading_time", state.Phase)
	}
	if state.MonotonicStartMs != 500 || state.PausedDurationMs != 0 || state.IsPaused {
		t.Fatalf("state not reset on activation: %+v", state)
	}

	for i := range s.Desks {
		if got := countEvents(&s.Desks[i], models.EventReadingStart); got != 1 {
			t.Fatalf("desk %d has %d reading_start events, want 1", s.Desks[i].DeskNumber, got)
		}
		if s.Desks[i].Events[0].TimestampMs != startEpoch {
			t.Fatalf("event timestamp = %d, want %d", s.Desks[i].Events[0].TimestampMs, startEpoch)
		}
	}
}

// Without reading time activation goes straight to exam_active
func TestActivateWithoutReadingTime(t *testing.T) {
	s := testSession(0)
	state := ActivateExamStart(s, models.NewTimerState(), startEpoch, 500)

	if state.Phase != models.PhaseExamActive {
		t.Fatalf("phase = %s, want exam_active", state.Phase)
	}
	for i := range s.Desks {
		if got := countEvents(&s.Desks[i], models.EventExamActive); got != 1 {
			t.Fatalf("desk %d has %d exam_active events, want 1", s.Desks[i].DeskNumber, got)
		}
	}
}

// Activation from any phase but pre_exam is a silent no-op
func TestActivateWrongPhaseNoOp(t *testing.T) {
	s := testSession(10)
	state := ActivateExamStart(s, models.NewTimerState(), startEpoch, 500)
	eventsBefore := len(s.Desks[0].Events)

	again := ActivateExamStart(s, state, startEpoch, 9000)
	if again != state {
		t.Fatalf("second activation changed state: %+v", again)
	}
	if len(s.Desks[0].Events) != eventsBefore {
		t.Fatal("second activation appended events")
	}
}

// The reading→active transition establishes a fresh monotonic zero-point,
// independent of how much reading time actually elapsed
func TestTransitionResetsZeroPoint(t *testing.T) {
	s := testSession(10)
	state := ActivateExamStart(s, models.NewTimerState(), startEpoch, 0)

	// Pause accounting from the reading phase must not carry over
	state = PauseTimers(s, state, startEpoch, 60000)
	state = ResumeTimers(s, state, startEpoch, 120000)

	m1 := int64(15 * 60000)
	state = TransitionToExamActive(s, state, startEpoch, m1)

	if state.MonotonicStartMs != m1 {
		t.Fatalf("MonotonicStartMs = %d, want %d", state.MonotonicStartMs, m1)
	}
	if state.PausedDurationMs != 0 {
		t.Fatalf("PausedDurationMs = %d, want 0", state.PausedDurationMs)
	}
	if got := GeneralRemainingMs(s, state, m1); got != 90*60000 {
		t.Fatalf("remaining at fresh zero-point = %d, want %d", got, 90*60000)
	}
}

func TestTransitionWrongPhaseNoOp(t *testing.T) {
	s := testSession(0)
	state := models.NewTimerState()

	if got := TransitionToExamActive(s, state, startEpoch, 100); got != state {
		t.Fatalf("transition from pre_exam changed state: %+v", got)
	}
	if len(s.Desks[0].Events) != 0 {
		t.Fatal("transition from pre_exam appended events")
	}
}

// Grants accumulate as a sum of deltas, and each event records its own
// delta, not the running total
func TestApplyDPTimeAccumulates(t *testing.T) {
	s := testSession(0)
	desk := &s.Desks[0]

	deltas := []int{5, 10, 5, 30}
	for _, d := range deltas {
		if !ApplyDPTime(desk, d, startEpoch) {
			t.Fatalf("ApplyDPTime(%d) rejected", d)
		}
	}

	if desk.DPTimeTakenMinutes != 50 {
		t.Fatalf("DPTimeTakenMinutes = %d, want 50", desk.DPTimeTakenMinutes)
	}
	if len(desk.Events) != len(deltas) {
		t.Fatalf("event count = %d, want %d", len(desk.Events), len(deltas))
	}
	for i, e := range desk.Events {
		if e.Type != models.EventDPApplied {
			t.Fatalf("event %d type = %s, want dp_applied", i, e.Type)
		}
		if e.ValueMinutes == nil || *e.ValueMinutes != deltas[i] {
			t.Fatalf("event %d delta = %v, want %d", i, e.ValueMinutes, deltas[i])
		}
	}

	// Only the granted desk is touched
	if s.Desks[1].DPTimeTakenMinutes != 0 || len(s.Desks[1].Events) != 0 {
		t.Fatal("grant leaked onto another desk")
	}
}

// Bad deltas can never corrupt the cumulative counter
func TestApplyDPTimeRejectsNonPositive(t *testing.T) {
	s := testSession(0)
	desk := &s.Desks[0]

	if ApplyDPTime(desk, 0, startEpoch) {
		t.Fatal("ApplyDPTime(0) accepted")
	}
	if ApplyDPTime(desk, -15, startEpoch) {
		t.Fatal("ApplyDPTime(-15) accepted")
	}
	if ApplyDPTime(nil, 10, startEpoch) {
		t.Fatal("ApplyDPTime(nil desk) accepted")
	}

	if desk.DPTimeTakenMinutes != 0 || len(desk.Events) != 0 {
		t.Fatalf("rejected grants mutated the desk: %+v", desk)
	}
}

// Redundant pause/resume taps are no-ops with no audit significance
func TestPauseResumeNoOps(t *testing.T) {
	s := testSession(0)
	state := ActivateExamStart(s, models.NewTimerState(), startEpoch, 0)

	// Resume while not paused
	if got := ResumeTimers(s, state, startEpoch, 1000); !statesEqual(got, state) {
		t.Fatalf("resume while running changed state: %+v", got)
	}

	state = PauseTimers(s, state, startEpoch, 1000)
	pauseEvents := countEvents(&s.Desks[0], models.EventPause)

	// Pause while already paused
	again := PauseTimers(s, state, startEpoch, 2000)
	if !statesEqual(again, state) {
		t.Fatalf("double pause changed state: %+v", again)
	}
	if countEvents(&s.Desks[0], models.EventPause) != pauseEvents {
		t.Fatal("double pause appended events")
	}

	// Resume with a missing pause instant is defensively a no-op
	broken := state
	broken.PausedAtMonotonicMs = nil
	if got := ResumeTimers(s, broken, startEpoch, 3000); !statesEqual(got, broken) {
		t.Fatalf("resume without pause instant changed state: %+v", got)
	}
}

// Every session-level transition lands on every desk's trail
func TestSessionEventFanOut(t *testing.T) {
	s := testSession(10)
	state := ActivateExamStart(s, models.NewTimerState(), startEpoch, 0)
	state = TransitionToExamActive(s, state, startEpoch, 10*60000)
	state = PauseTimers(s, state, startEpoch, 20*60000)
	state = ResumeTimers(s, state, startEpoch, 25*60000)

	for i := range s.Desks {
		desk := &s.Desks[i]
		wantTypes := []models.EventType{
			models.EventReadingStart,
			models.EventExamActive,
			models.EventPause,
			models.EventResume,
		}
		if len(desk.Events) != len(wantTypes) {
			t.Fatalf("desk %d has %d events, want %d", desk.DeskNumber, len(desk.Events), len(wantTypes))
		}
		for j, want := range wantTypes {
			if desk.Events[j].Type != want {
				t.Fatalf("desk %d event %d = %s, want %s", desk.DeskNumber, j, desk.Events[j].Type, want)
			}
		}
	}
}

// The terminal finish event is appended exactly once per desk
func TestMarkDeskFinishedOnce(t *testing.T) {
	s := testSession(0)
	desk := &s.Desks[0]

	if !MarkDeskFinished(desk, startEpoch) {
		t.Fatal("first MarkDeskFinished rejected")
	}
	if MarkDeskFinished(desk, startEpoch+1000) {
		t.Fatal("second MarkDeskFinished accepted")
	}
	if got := countEvents(desk, models.EventFinish); got != 1 {
		t.Fatalf("finish events = %d, want 1", got)
	}
}

// statesEqual compares timer states by value, dereferencing the pause
// instant pointer
func statesEqual(a, b models.TimerState) bool {
	if a.Phase != b.Phase || a.IsPaused != b.IsPaused ||
		a.MonotonicStartMs != b.MonotonicStartMs ||
		a.PausedDurationMs != b.PausedDurationMs {
		return false
	}
	if (a.PausedAtMonotonicMs == nil) != (b.PausedAtMonotonicMs == nil) {
		return false
	}
	if a.PausedAtMonotonicMs != nil && *a.PausedAtMonotonicMs != *b.PausedAtMonotonicMs {
		return false
	}
	return true
}
