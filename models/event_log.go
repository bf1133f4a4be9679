package models

import "time"

// Submission event types recorded in the event log.
const (
	EventSubmissionSubmitted = iota + 1
	EventReviewerAssigned
	EventReviewAccepted
	EventReviewDeclined
	EventReviewReceived
	EventReviewConfirmed
	EventReviewerThanked
	EventReviewCancelled
)

// SubmissionEventLog is a dated, user-stamped history entry on a submission.
type SubmissionEventLog struct {
	LogID        int       `gorm:"primaryKey;column:log_id" json:"log_id"`
	SubmissionID int       `gorm:"column:submission_id" json:"submission_id"`
	UserID       *int      `gorm:"column:user_id" json:"user_id,omitempty"`
	EventType    int       `gorm:"column:event_type" json:"event_type"`
	Message      string    `gorm:"column:message" json:"message"`
	DateLogged   time.Time `gorm:"column:date_logged" json:"date_logged"`
}

func (SubmissionEventLog) TableName() string {
	return "submission_event_log"
}
