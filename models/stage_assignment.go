package models

import "time"

// StageAssignment enrolls a user, under a user group, into a submission's
// workflow. The (submission, user group, user) triple is unique; the table
// carries a composite unique index and inserts are check-then-create, so a
// repeated enrollment attempt is a no-op.
type StageAssignment struct {
	StageAssignmentID int        `gorm:"primaryKey;column:stage_assignment_id" json:"stage_assignment_id"`
	SubmissionID      int        `gorm:"column:submission_id;uniqueIndex:idx_stage_assignment" json:"submission_id"`
	UserGroupID       int        `gorm:"column:user_group_id;uniqueIndex:idx_stage_assignment" json:"user_group_id"`
	UserID            int        `gorm:"column:user_id;uniqueIndex:idx_stage_assignment" json:"user_id"`
	RecommendOnly     bool       `gorm:"column:recommend_only" json:"recommend_only"`
	DateAssigned      time.Time  `gorm:"column:date_assigned" json:"date_assigned"`
	UpdateAt          *time.Time `gorm:"column:update_at" json:"-"`

	// Relations
	UserGroup *UserGroup `gorm:"foreignKey:UserGroupID" json:"user_group,omitempty"`
	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (StageAssignment) TableName() string {
	return "stage_assignments"
}
