package models

import "time"

// NotificationType identifies the event a notification reports. Closed set.
type NotificationType int

const (
	NotificationTypeSubmissionSubmitted NotificationType = iota + 1
	NotificationTypeEditorAssignmentRequired
	NotificationTypeApproveSubmission
	NotificationTypeReviewAssignment
	NotificationTypeReviewerComment
	NotificationTypeDecisionPendingSubmission
	NotificationTypeDecisionPendingReview
	NotificationTypeDecisionPendingEditing
	NotificationTypeDecisionPendingProduction
)

func (t NotificationType) String() string {
	switch t {
	case NotificationTypeSubmissionSubmitted:
		return "submission_submitted"
	case NotificationTypeEditorAssignmentRequired:
		return "editor_assignment_required"
	case NotificationTypeApproveSubmission:
		return "approve_submission"
	case NotificationTypeReviewAssignment:
		return "review_assignment"
	case NotificationTypeReviewerComment:
		return "reviewer_comment"
	case NotificationTypeDecisionPendingSubmission:
		return "decision_pending_submission"
	case NotificationTypeDecisionPendingReview:
		return "decision_pending_review"
	case NotificationTypeDecisionPendingEditing:
		return "decision_pending_editing"
	case NotificationTypeDecisionPendingProduction:
		return "decision_pending_production"
	}
	return "unknown"
}

// DecisionPendingTypes lists the per-stage notification types that flag a
// submission as waiting on an editorial decision. They are refreshed as a
// set whenever a submission's assignment state changes.
func DecisionPendingTypes() []NotificationType {
	return []NotificationType{
		NotificationTypeDecisionPendingSubmission,
		NotificationTypeDecisionPendingReview,
		NotificationTypeDecisionPendingEditing,
		NotificationTypeDecisionPendingProduction,
	}
}

// NotificationLevel controls where a notification surfaces in the UI.
type NotificationLevel int

const (
	NotificationLevelTrivial NotificationLevel = 1
	NotificationLevelNormal  NotificationLevel = 2
	NotificationLevelTask    NotificationLevel = 3
)

type Notification struct {
	NotificationID int               `gorm:"primaryKey;column:notification_id" json:"notification_id"`
	UserID         int               `gorm:"column:user_id" json:"user_id"`
	ContextID      int               `gorm:"column:context_id" json:"context_id"`
	Type           NotificationType  `gorm:"column:type" json:"type"`
	Level          NotificationLevel `gorm:"column:level" json:"level"`
	AssocType      AssocType         `gorm:"column:assoc_type" json:"assoc_type"`
	AssocID        int               `gorm:"column:assoc_id" json:"assoc_id"`
	DateCreated    time.Time         `gorm:"column:date_created" json:"date_created"`
	DateRead       *time.Time        `gorm:"column:date_read" json:"date_read,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}
