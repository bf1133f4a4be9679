package services

import (
	"time"

	"journal-editorial-api/config"
	"journal-editorial-api/models"

	"gorm.io/gorm"
)

// EventLogService appends history entries to a submission's event log and
// stamps the submission's last-activity date alongside.
type EventLogService struct {
	db *gorm.DB
}

func NewEventLogService(db *gorm.DB) *EventLogService {
	if db == nil {
		db = config.DB
	}
	return &EventLogService{db: db}
}

// LogEvent records one event against a submission. userID may be zero for
// system-originated events.
func (s *EventLogService) LogEvent(submissionID, userID, eventType int, message string) (*models.SubmissionEventLog, error) {
	now := time.Now()
	entry := models.SubmissionEventLog{
		SubmissionID: submissionID,
		EventType:    eventType,
		Message:      message,
		DateLogged:   now,
	}
	if userID != 0 {
		entry.UserID = &userID
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Submission{}).
		Where("submission_id = ?", submissionID).
		Update("date_last_activity", now).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListForSubmission returns a submission's event log, newest first.
func (s *EventLogService) ListForSubmission(submissionID int, limit, offset int) ([]models.SubmissionEventLog, int64, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	q := s.db.Model(&models.SubmissionEventLog{}).Where("submission_id = ?", submissionID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.SubmissionEventLog
	if err := q.Order("date_logged DESC, log_id DESC").
		Limit(limit).Offset(offset).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
