package models

// Phase is the session-level timing phase. dp_adjustments is a logical
// overlay on exam_active: D.P. grants are being made, but the monotonic
// zero-point is unchanged.
type Phase string

const (
	PhasePreExam       Phase = "pre_exam"
	PhaseReadingTime   Phase = "reading_time"
	PhaseExamActive    Phase = "exam_active"
	PhaseDPAdjustments Phase = "dp_adjustments"
)

// TimerState is the small mutable state the countdown arithmetic runs
// against. It is recomputed constantly and only cached (never persisted as a
// primary record), so every field stays a plain serializable value.
type TimerState struct {
	Phase    Phase `json:"phase"`
	IsPaused bool  `json:"is_paused"`

	// MonotonicStartMs is the monotonic-clock reading captured at the most
	// recent phase entry; the zero-point for elapsed time in this phase.
	// Pause and resume never touch it.
	MonotonicStartMs int64 `json:"monotonic_start_ms"`

	// PausedAtMonotonicMs is set while paused and cleared on resume
	PausedAtMonotonicMs *int64 `json:"paused_at_monotonic_ms,omitempty"`

	// PausedDurationMs is the running total of monotonic time spent paused
	// since MonotonicStartMs, excluded from elapsed-time calculations
	PausedDurationMs int64 `json:"paused_duration_ms"`
}

// NewTimerState returns the state a freshly created session starts in.
func NewTimerState() TimerState {
	return TimerState{Phase: PhasePreExam}
}

// Running reports whether the exam clock is counting down against the
// current zero-point (any phase past pre_exam).
func (ts TimerState) Running() bool {
	return ts.Phase != PhasePreExam
}

// ExamActive reports whether the session is in the exam_active phase,
// counting the dp_adjustments overlay as active.
func (ts TimerState) ExamActive() bool {
	return ts.Phase == PhaseExamActive || ts.Phase == PhaseDPAdjustments
}
