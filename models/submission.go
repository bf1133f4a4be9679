package models

import "time"

// Submission progress markers. Progress counts the authoring step the
// submitter is on; zero means the submission wizard is finished.
const (
	SubmissionProgressComplete = 0
	SubmissionProgressLastStep = 4
)

// Submission statuses mirror submissions.status.
const (
	SubmissionStatusQueued    = 1
	SubmissionStatusPublished = 3
	SubmissionStatusDeclined  = 4
	SubmissionStatusScheduled = 5
)

type Submission struct {
	SubmissionID         int           `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	ContextID            int           `gorm:"column:context_id" json:"context_id"`
	CurrentPublicationID int           `gorm:"column:current_publication_id" json:"current_publication_id"`
	SubmitterID          int           `gorm:"column:submitter_id" json:"submitter_id"`
	Status               int           `gorm:"column:status" json:"status"`
	StageID              WorkflowStage `gorm:"column:stage_id" json:"stage_id"`
	SubmissionProgress   int           `gorm:"column:submission_progress" json:"submission_progress"`
	DateSubmitted        *time.Time    `gorm:"column:date_submitted" json:"date_submitted,omitempty"`
	LastActivity         *time.Time    `gorm:"column:date_last_activity" json:"date_last_activity,omitempty"`
	DateModified         *time.Time    `gorm:"column:date_modified" json:"date_modified,omitempty"`

	// Relations
	CurrentPublication *Publication `gorm:"foreignKey:CurrentPublicationID" json:"current_publication,omitempty"`
	Submitter          *User        `gorm:"foreignKey:SubmitterID" json:"submitter,omitempty"`
}

// Incomplete reports whether the submitter is still inside the submission
// wizard.
func (s *Submission) Incomplete() bool {
	return s.SubmissionProgress != SubmissionProgressComplete
}

// StampLastActivity records activity on the submission without touching the
// modification date.
func (s *Submission) StampLastActivity(now time.Time) {
	s.LastActivity = &now
}

// StampModified records a content change.
func (s *Submission) StampModified(now time.Time) {
	s.DateModified = &now
}

// Publication is one version of a submission's published metadata. The
// section and category references hang off the publication, not the
// submission, so classification follows the current version.
type Publication struct {
	PublicationID int        `gorm:"primaryKey;column:publication_id" json:"publication_id"`
	SubmissionID  int        `gorm:"column:submission_id" json:"submission_id"`
	SectionID     *int       `gorm:"column:section_id" json:"section_id,omitempty"`
	Title         string     `gorm:"column:title" json:"title"`
	Version       int        `gorm:"column:version" json:"version"`
	DatePublished *time.Time `gorm:"column:date_published" json:"date_published,omitempty"`
}

// PublicationCategory attaches a category to a publication version.
type PublicationCategory struct {
	PublicationID int `gorm:"primaryKey;column:publication_id" json:"publication_id"`
	CategoryID    int `gorm:"primaryKey;column:category_id" json:"category_id"`
}

type Section struct {
	SectionID int    `gorm:"primaryKey;column:section_id" json:"section_id"`
	ContextID int    `gorm:"column:context_id" json:"context_id"`
	Title     string `gorm:"column:title" json:"title"`
	Abbrev    string `gorm:"column:abbrev" json:"abbrev"`
}

type Category struct {
	CategoryID int    `gorm:"primaryKey;column:category_id" json:"category_id"`
	ContextID  int    `gorm:"column:context_id" json:"context_id"`
	ParentID   *int   `gorm:"column:parent_id" json:"parent_id,omitempty"`
	Title      string `gorm:"column:title" json:"title"`
	Path       string `gorm:"column:path" json:"path"`
}

// SubEditorAssignment binds an editor to a section or category so that new
// submissions classified there are routed to them.
type SubEditorAssignment struct {
	SubEditorAssignmentID int       `gorm:"primaryKey;column:sub_editor_assignment_id" json:"sub_editor_assignment_id"`
	ContextID             int       `gorm:"column:context_id" json:"context_id"`
	UserID                int       `gorm:"column:user_id" json:"user_id"`
	AssocType             AssocType `gorm:"column:assoc_type" json:"assoc_type"`
	AssocID               int       `gorm:"column:assoc_id" json:"assoc_id"`
}

// TableName overrides
func (Submission) TableName() string {
	return "submissions"
}

func (Publication) TableName() string {
	return "publications"
}

func (PublicationCategory) TableName() string {
	return "publication_categories"
}

func (Section) TableName() string {
	return "sections"
}

func (Category) TableName() string {
	return "categories"
}

func (SubEditorAssignment) TableName() string {
	return "sub_editor_assignments"
}
