package db

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"invigil/internal/engine"
	"invigil/internal/models"
)

// CreateSessionRequest holds the data needed to create a new exam session
type CreateSessionRequest struct {
	Name                string
	ExamDurationMinutes int
	ReadingTimeMinutes  int
	StartTimeEpochMs    int64
	DeskCount           int
	StudentNames        []string // optional, assigned to desks 1..len in order
}

// CreateSession creates a session together with its desks
func CreateSession(req CreateSessionRequest) (*models.Session, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("session name is required")
	}
	if req.ExamDurationMinutes <= 0 {
		return nil, fmt.Errorf("exam duration must be a positive number of minutes")
	}
	if req.ReadingTimeMinutes < 0 {
		return nil, fmt.Errorf("reading time cannot be negative")
	}
	if req.DeskCount <= 0 {
		return nil, fmt.Errorf("a session needs at least one desk")
	}

	session := models.Session{
		ID:                  uuid.NewString(),
		Name:                req.Name,
		ExamDurationMinutes: req.ExamDurationMinutes,
		ReadingTimeMinutes:  req.ReadingTimeMinutes,
		StartTimeEpochMs:    req.StartTimeEpochMs,
	}

	for i := 0; i < req.DeskCount; i++ {
		desk := models.Desk{
			ID:         uuid.NewString(),
			SessionID:  session.ID,
			DeskNumber: i + 1,
		}
		if i < len(req.StudentNames) {
			desk.StudentName = req.StudentNames[i]
		}
		engine.RefreshAdjustedFinish(&session, &desk)
		session.Desks = append(session.Desks, desk)
	}

	if err := DB.Create(&session).Error; err != nil {
		return nil, err
	}

	return &session, nil
}

// SaveSession upserts the session, its desks and any new audit events in a
// single transaction. A crash mid-save never leaves desks inconsistent with
// their parent session.
func SaveSession(session *models.Session) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Desks").Clauses(clause.OnConflict{UpdateAll: true}).Create(session).Error; err != nil {
			return err
		}

		for i := range session.Desks {
			desk := &session.Desks[i]
			if err := tx.Omit("Events").Clauses(clause.OnConflict{UpdateAll: true}).Create(desk).Error; err != nil {
				return err
			}

			// Events are append-only: rows already persisted carry an id,
			// anything with a zero id is new
			for j := range desk.Events {
				event := &desk.Events[j]
				if event.ID != 0 {
					continue
				}
				if err := tx.Create(event).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
}

// LoadSession retrieves a session with its desks and each desk's audit
// trail, events ordered by timestamp
func LoadSession(id string) (*models.Session, error) {
	var session models.Session

	err := DB.
		Preload("Desks", func(db *gorm.DB) *gorm.DB {
			return db.Order("desk_number ASC")
		}).
		Preload("Desks.Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp_ms ASC, id ASC")
		}).
		First(&session, "id = ?", id).Error
	if err != nil {
		return nil, fmt.Errorf("session %s not found", id)
	}

	return &session, nil
}

// SessionSummary is the listing view of a session
type SessionSummary struct {
	ID                  string
	Name                string
	ExamDurationMinutes int
	ReadingTimeMinutes  int
	StartTimeEpochMs    int64
	DeskCount           int
}

// ListSessions returns summaries of all sessions, newest first
func ListSessions() ([]SessionSummary, error) {
	var sessions []models.Session
	if err := DB.Order("created_at DESC").Find(&sessions).Error; err != nil {
		return nil, err
	}

	summaries := make([]SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		var deskCount int64
		if err := DB.Model(&models.Desk{}).Where("session_id = ?", s.ID).Count(&deskCount).Error; err != nil {
			return nil, err
		}
		summaries = append(summaries, SessionSummary{
			ID:                  s.ID,
			Name:                s.Name,
			ExamDurationMinutes: s.ExamDurationMinutes,
			ReadingTimeMinutes:  s.ReadingTimeMinutes,
			StartTimeEpochMs:    s.StartTimeEpochMs,
			DeskCount:           int(deskCount),
		})
	}

	return summaries, nil
}

// DeleteSession removes a session, its desks and their audit trails
func DeleteSession(id string) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		deskIDs := tx.Model(&models.Desk{}).Select("id").Where("session_id = ?", id)
		if err := tx.Where("desk_id IN (?)", deskIDs).Delete(&models.TimerEvent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", id).Delete(&models.Desk{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Session{}, "id = ?", id).Error
	})
}

// AddDesk appends a desk to an existing session
func AddDesk(sessionID string, deskNumber int, studentName string) (*models.Desk, error) {
	session, err := LoadSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.DeskByNumber(deskNumber) != nil {
		return nil, fmt.Errorf("desk %d already exists in session %s", deskNumber, session.Name)
	}

	desk := models.Desk{
		ID:          uuid.NewString(),
		SessionID:   session.ID,
		DeskNumber:  deskNumber,
		StudentName: studentName,
	}
	engine.RefreshAdjustedFinish(session, &desk)

	if err := DB.Create(&desk).Error; err != nil {
		return nil, err
	}
	return &desk, nil
}

// DeleteDesk removes a single desk and its audit trail
func DeleteDesk(sessionID string, deskNumber int) error {
	session, err := LoadSession(sessionID)
	if err != nil {
		return err
	}
	desk := session.DeskByNumber(deskNumber)
	if desk == nil {
		return fmt.Errorf("desk %d not found in session %s", deskNumber, session.Name)
	}

	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("desk_id = ?", desk.ID).Delete(&models.TimerEvent{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Desk{}, "id = ?", desk.ID).Error
	})
}

// SetStudentName updates the display name attached to a desk
func SetStudentName(sessionID string, deskNumber int, studentName string) error {
	session, err := LoadSession(sessionID)
	if err != nil {
		return err
	}
	desk := session.DeskByNumber(deskNumber)
	if desk == nil {
		return fmt.Errorf("desk %d not found in session %s", deskNumber, session.Name)
	}

	return DB.Model(&models.Desk{}).Where("id = ?", desk.ID).Update("student_name", studentName).Error
}
