package models

import (
	"time"
)

// Session represents one exam sitting: the shared baseline configuration
// plus the desks being timed against it
type Session struct {
	ID        string    `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name                string `gorm:"not null" json:"name"`
	ExamDurationMinutes int    `gorm:"not null" json:"exam_duration_minutes"`
	ReadingTimeMinutes  int    `gorm:"default:0" json:"reading_time_minutes"`
	StartTimeEpochMs    int64  `json:"start_time_epoch_ms"` // scheduled wall-clock start, set at creation/edit

	// Relationships
	Desks []Desk `gorm:"foreignKey:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"desks"`
}

// ExamDurationMs returns the baseline exam duration in milliseconds.
func (s *Session) ExamDurationMs() int64 {
	return int64(s.ExamDurationMinutes) * 60000
}

// ReadingTimeMs returns the reading period in milliseconds (0 = no reading phase).
func (s *Session) ReadingTimeMs() int64 {
	return int64(s.ReadingTimeMinutes) * 60000
}

// DeskByID finds a desk in the session by its id
func (s *Session) DeskByID(id string) *Desk {
	for i := range s.Desks {
		if s.Desks[i].ID == id {
			return &s.Desks[i]
		}
	}
	return nil
}

// DeskByNumber finds a desk in the session by its desk number
func (s *Session) DeskByNumber(number int) *Desk {
	for i := range s.Desks {
		if s.Desks[i].DeskNumber == number {
			return &s.Desks[i]
		}
	}
	return nil
}

// Desk represents one physical seat in the exam room. The student name is
// display metadata only; timing identity is the desk itself.
type Desk struct {
	ID        string `gorm:"primarykey" json:"id"`
	SessionID string `gorm:"index;not null" json:"session_id"`

	DeskNumber  int    `gorm:"not null" json:"desk_number"`
	StudentName string `json:"student_name"`

	// DPTimeTakenMinutes is cumulative across the desk's lifetime; it only
	// ever grows via grant operations
	DPTimeTakenMinutes int `gorm:"default:0" json:"dp_time_taken_minutes"`

	// AdjustedFinishEpochMs is a cached projection of the configuration
	// (scheduled start + reading + baseline + D.P.), recomputed whenever
	// D.P. time changes
	AdjustedFinishEpochMs int64 `json:"adjusted_finish_epoch_ms"`

	// Events is the desk-scoped audit trail, append-only
	Events []TimerEvent `gorm:"foreignKey:DeskID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"events"`
}

// TotalAllowedMs returns the desk's full allowance in milliseconds:
// baseline exam duration plus cumulative D.P. time.
func (d *Desk) TotalAllowedMs(session *Session) int64 {
	return int64(session.ExamDurationMinutes+d.DPTimeTakenMinutes) * 60000
}
