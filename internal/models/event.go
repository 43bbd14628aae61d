package models

// EventType identifies what a TimerEvent records.
type EventType string

const (
	EventExamStart    EventType = "exam_start"
	EventReadingStart EventType = "reading_start"
	EventExamActive   EventType = "exam_active"
	EventDPApplied    EventType = "dp_applied"
	EventPause        EventType = "pause"
	EventResume       EventType = "resume"
	EventFinish       EventType = "finish"
)

// TimerEvent is one immutable entry in a desk's audit trail. Timestamps are
// wall-clock epoch milliseconds and exist for compliance records only; they
// never feed countdown arithmetic.
type TimerEvent struct {
	ID     uint      `gorm:"primarykey" json:"id"`
	DeskID string    `gorm:"index;not null" json:"desk_id"`
	Type   EventType `gorm:"not null" json:"type"`

	TimestampMs int64 `gorm:"not null" json:"timestamp_ms"`

	// ValueMinutes is set for dp_applied events and carries the minutes
	// granted in that single operation, not the running total
	ValueMinutes *int `json:"value_minutes,omitempty"`
}
