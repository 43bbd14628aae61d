package engine

import (
	"testing"

	"invigil/internal/models"
)

const startEpoch = int64(1_780_000_000_000)

// testSession builds a 90 minute exam with the given reading time and two
// desks
func testSession(readingMinutes int) *models.Session {
	s := &models.Session{
		ID:                  "session-1",
		Name:                "Mock Exam",
		ExamDurationMinutes: 90,
		ReadingTimeMinutes:  readingMinutes,
		StartTimeEpochMs:    startEpoch,
	}
	s.Desks = []models.Desk{
		{ID: "desk-1", SessionID: s.ID, DeskNumber: 1},
		{ID: "desk-2", SessionID: s.ID, DeskNumber: 2},
	}
	for i := range s.Desks {
		RefreshAdjustedFinish(s, &s.Desks[i])
	}
	return s
}

// Before activation nothing has elapsed: the general clock reads the full
// baseline no matter what monotonic value is supplied
func TestGeneralRemainingPreExam(t *testing.T) {
	s := testSession(10)
	state := models.NewTimerState()

	if got := GeneralRemainingMs(s, state, 99_999_999); got != 90*60000 {
		t.Fatalf("GeneralRemainingMs = %d, want %d", got, 90*60000)
	}
}

// The general clock uses the one elapsed formula in every running phase,
// including reading_time: it counts down from the reading-phase zero-point
// instead of holding at the baseline. Deliberately pinned; see DESIGN.md.
func TestGeneralRemainingCountsDuringReading(t *testing.T) {
	s := testSession(10)
	state := ActivateExamStart(s, models.NewTimerState(), startEpoch, 1000)

	if state.Phase != models.PhaseReadingTime {
		t.Fatalf("phase = %s, want reading_time", state.Phase)
	}

	// Three minutes into reading time the general clock has already lost
	// three minutes
	got := GeneralRemainingMs(s, state, 1000+3*60000)
	want := int64(87 * 60000)
	if got != want {
		t.Fatalf("GeneralRemainingMs during reading = %d, want %d", got, want)
	}
}

func TestReadingRemaining(t *testing.T) {
	s := testSession(10)
	state := models.NewTimerState()

	// Defined only inside the reading phase
	if got := ReadingRemainingMs(s, state, 0); got != 0 {
		t.Fatalf("ReadingRemainingMs in pre_exam = %d, want 0", got)
	}

	state = ActivateExamStart(s, state, startEpoch, 5000)
	if got := ReadingRemainingMs(s, state, 5000+4*60000); got != 6*60000 {
		t.Fatalf("ReadingRemainingMs = %d, want %d", got, 6*60000)
	}

	state = TransitionToExamActive(s, state, startEpoch, 5000+10*60000)
	if got := ReadingRemainingMs(s, state, 5000+11*60000); got != 0 {
		t.Fatalf("ReadingRemainingMs after transition = %d, want 0", got)
	}
}

// Desk countdowns are frozen at the full allowance through pre_exam and
// reading_time, unlike the general clock
func TestDeskRemainingFrozenUntilActive(t *testing.T) {
	s := testSession(10)
	desk := &s.Desks[0]
	ApplyDPTime(desk, 15, startEpoch)

	state := models.NewTimerState()
	want := int64((90 + 15) * 60000)
	if got := DeskRemainingMs(s, desk, state, 12345); got != want {
		t.Fatalf("pre_exam desk remaining = %d, want %d", got, want)
	}

	state = ActivateExamStart(s, state, startEpoch, 1000)
	if got := DeskRemainingMs(s, desk, state, 1000+9*60000); got != want {
		t.Fatalf("reading_time desk remaining = %d, want %d", got, want)
	}

	state = TransitionToExamActive(s, state, startEpoch, 2000)
	if got := DeskRemainingMs(s, desk, state, 2000+5*60000); got != want-5*60000 {
		t.Fatalf("exam_active desk remaining = %d, want %d", got, want-5*60000)
	}
}

// Remaining values never go negative however far past the end the clock runs
func TestRemainingFloorsAtZero(t *testing.T) {
	s := testSession(0)
	state := ActivateExamStart(s, models.NewTimerState(), startEpoch, 0)

	farPast := int64(500 * 60000)
	if got := GeneralRemainingMs(s, state, farPast); got != 0 {
		t.Fatalf("GeneralRemainingMs = %d, want 0", got)
	}
	if got := DeskRemainingMs(s, &s.Desks[0], state, farPast); got != 0 {
		t.Fatalf("DeskRemainingMs = %d, want 0", got)
	}
}

// The finish projection is configuration only: pause history and monotonic
// time never move it
func TestFinishProjectionPauseIndependent(t *testing.T) {
	s := testSession(10)
	desk := &s.Desks[0]
	ApplyDPTime(desk, 30, startEpoch)

	before := DeskAdjustedFinishEpochMs(s, desk)

	state := ActivateExamStart(s, models.NewTimerState(), startEpoch, 0)
	state = TransitionToExamActive(s, state, startEpoch, 10*60000)
	state = PauseTimers(s, state, startEpoch, 20*60000)
	state = ResumeTimers(s, state, startEpoch, 55*60000)

	if got := DeskAdjustedFinishEpochMs(s, desk); got != before {
		t.Fatalf("finish projection moved across pause history: %d != %d", got, before)
	}

	want := startEpoch + 10*60000 + (90+30)*60000
	if before != want {
		t.Fatalf("finish projection = %d, want %d", before, want)
	}
}

// Pausing must not leak elapsed time: remaining just before pause equals
// remaining just after resume, and the paused interval lands in
// PausedDurationMs exactly
func TestPauseResumeConservation(t *testing.T) {
	s := testSession(0)
	state := ActivateExamStart(s, models.NewTimerState(), startEpoch, 0)

	t1 := int64(13 * 60000)
	t2 := int64(42 * 60000)

	beforePause := GeneralRemainingMs(s, state, t1)
	state = PauseTimers(s, state, startEpoch, t1)

	// Frozen while paused
	if got := GeneralRemainingMs(s, state, t2); got != beforePause {
		t.Fatalf("remaining drifted while paused: %d != %d", got, beforePause)
	}

	state = ResumeTimers(s, state, startEpoch, t2)
	if state.PausedDurationMs != t2-t1 {
		t.Fatalf("PausedDurationMs = %d, want %d", state.PausedDurationMs, t2-t1)
	}

	if got := GeneralRemainingMs(s, state, t2); got != beforePause {
		t.Fatalf("remaining after resume = %d, want %d", got, beforePause)
	}
}

// Ascending adjusted finish, desk number breaking ties
func TestSortDesks(t *testing.T) {
	s := testSession(0)
	s.Desks = []models.Desk{
		{ID: "a", DeskNumber: 3},
		{ID: "b", DeskNumber: 1},
		{ID: "c", DeskNumber: 2, DPTimeTakenMinutes: 20},
		{ID: "d", DeskNumber: 4, DPTimeTakenMinutes: 10},
	}

	sorted := SortDesks(s)
	gotOrder := []int{sorted[0].DeskNumber, sorted[1].DeskNumber, sorted[2].DeskNumber, sorted[3].DeskNumber}
	wantOrder := []int{1, 3, 4, 2}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Fatalf("sort order = %v, want %v", gotOrder, wantOrder)
		}
	}

	// The input slice is left untouched
	if s.Desks[0].DeskNumber != 3 {
		t.Fatal("SortDesks mutated the session's desk order")
	}
}

// End-to-end: 90 min exam, 10 min reading, activation, automatic
// transition, a 30 minute grant
func TestScenarioReadingThenGrant(t *testing.T) {
	s := testSession(10)
	m0 := int64(1000)

	state := ActivateExamStart(s, models.NewTimerState(), startEpoch, m0)
	if state.Phase != models.PhaseReadingTime || state.MonotonicStartMs != m0 {
		t.Fatalf("after activation: phase=%s start=%d", state.Phase, state.MonotonicStartMs)
	}

	if got := ReadingRemainingMs(s, state, m0+10*60000); got != 0 {
		t.Fatalf("reading remaining at end of reading = %d, want 0", got)
	}

	m1 := m0 + 10*60000 + 400
	state = TransitionToExamActive(s, state, startEpoch, m1)
	if state.Phase != models.PhaseExamActive || state.MonotonicStartMs != m1 {
		t.Fatalf("after transition: phase=%s start=%d", state.Phase, state.MonotonicStartMs)
	}

	desk := s.DeskByNumber(1)
	if !ApplyDPTime(desk, 30, startEpoch+11*60000) {
		t.Fatal("ApplyDPTime rejected a valid grant")
	}
	RefreshAdjustedFinish(s, desk)

	if desk.DPTimeTakenMinutes != 30 {
		t.Fatalf("DPTimeTakenMinutes = %d, want 30", desk.DPTimeTakenMinutes)
	}

	last := desk.Events[len(desk.Events)-1]
	if last.Type != models.EventDPApplied || last.ValueMinutes == nil || *last.ValueMinutes != 30 {
		t.Fatalf("last event = %+v, want dp_applied with 30 minutes", last)
	}

	wantFinish := startEpoch + 10*60000 + 120*60000
	if desk.AdjustedFinishEpochMs != wantFinish {
		t.Fatalf("adjusted finish = %d, want %d", desk.AdjustedFinishEpochMs, wantFinish)
	}

	// Nothing has elapsed in the fresh exam phase
	if got := DeskRemainingMs(s, desk, state, m1); got != 120*60000 {
		t.Fatalf("desk remaining at m1 = %d, want %d", got, 120*60000)
	}
}
