package models

import "time"

// ReviewStatus is the derived lifecycle state of a review assignment. It is
// never stored; it is computed from the assignment's dates and flags.
type ReviewStatus int

const (
	ReviewStatusAwaitingResponse ReviewStatus = iota
	ReviewStatusAccepted
	ReviewStatusDeclined
	ReviewStatusCancelled
	ReviewStatusResponseOverdue
	ReviewStatusReviewOverdue
	ReviewStatusReceived
	ReviewStatusComplete
	ReviewStatusThanked
)

func (s ReviewStatus) String() string {
	switch s {
	case ReviewStatusAwaitingResponse:
		return "awaiting_response"
	case ReviewStatusAccepted:
		return "accepted"
	case ReviewStatusDeclined:
		return "declined"
	case ReviewStatusCancelled:
		return "cancelled"
	case ReviewStatusResponseOverdue:
		return "response_overdue"
	case ReviewStatusReviewOverdue:
		return "review_overdue"
	case ReviewStatusReceived:
		return "received"
	case ReviewStatusComplete:
		return "complete"
	case ReviewStatusThanked:
		return "thanked"
	}
	return "unknown"
}

// Terminal reports whether the assignment can still be acted on by the
// reviewer or the editor.
func (s ReviewStatus) Terminal() bool {
	switch s {
	case ReviewStatusCancelled, ReviewStatusThanked:
		return true
	case ReviewStatusAwaitingResponse, ReviewStatusAccepted, ReviewStatusDeclined,
		ReviewStatusResponseOverdue, ReviewStatusReviewOverdue,
		ReviewStatusReceived, ReviewStatusComplete:
		return false
	}
	return false
}

// ReviewerRecommendation is the outcome a reviewer proposes when returning
// a review. Values mirror review_assignments.recommendation.
type ReviewerRecommendation int

const (
	RecommendationAccept            ReviewerRecommendation = 1
	RecommendationPendingRevisions  ReviewerRecommendation = 2
	RecommendationResubmitHere      ReviewerRecommendation = 3
	RecommendationResubmitElsewhere ReviewerRecommendation = 4
	RecommendationDecline           ReviewerRecommendation = 5
	RecommendationSeeComments       ReviewerRecommendation = 6
)

func (r ReviewerRecommendation) String() string {
	switch r {
	case RecommendationAccept:
		return "Accept Submission"
	case RecommendationPendingRevisions:
		return "Revisions Required"
	case RecommendationResubmitHere:
		return "Resubmit for Review"
	case RecommendationResubmitElsewhere:
		return "Resubmit Elsewhere"
	case RecommendationDecline:
		return "Decline Submission"
	case RecommendationSeeComments:
		return "See Comments"
	}
	return "unknown"
}

// Valid reports whether r is one of the defined recommendations.
func (r ReviewerRecommendation) Valid() bool {
	return r >= RecommendationAccept && r <= RecommendationSeeComments
}

// Review methods mirror review_assignments.review_method.
const (
	ReviewMethodAnonymous       = 1
	ReviewMethodDoubleAnonymous = 2
	ReviewMethodOpen            = 3
)

// ReviewAssignment is one reviewer's invitation and its evolving state for
// one submission at one review stage.
type ReviewAssignment struct {
	ReviewAssignmentID int                     `gorm:"primaryKey;column:review_assignment_id" json:"review_assignment_id"`
	SubmissionID       int                     `gorm:"column:submission_id" json:"submission_id"`
	ReviewerID         int                     `gorm:"column:reviewer_id" json:"reviewer_id"`
	StageID            WorkflowStage           `gorm:"column:stage_id" json:"stage_id"`
	Round              int                     `gorm:"column:round" json:"round"`
	ReviewMethod       int                     `gorm:"column:review_method" json:"review_method"`
	Recommendation     *ReviewerRecommendation `gorm:"column:recommendation" json:"recommendation,omitempty"`
	Declined           bool                    `gorm:"column:declined" json:"declined"`
	Cancelled          bool                    `gorm:"column:cancelled" json:"cancelled"`
	AccessKey          string                  `gorm:"column:access_key" json:"-"`
	DateAssigned       time.Time               `gorm:"column:date_assigned" json:"date_assigned"`
	DateNotified       *time.Time              `gorm:"column:date_notified" json:"date_notified,omitempty"`
	DateConfirmed      *time.Time              `gorm:"column:date_confirmed" json:"date_confirmed,omitempty"`
	DateReceived       *time.Time              `gorm:"column:date_received" json:"date_received,omitempty"`
	DateCompleted      *time.Time              `gorm:"column:date_completed" json:"date_completed,omitempty"`
	DateThanked        *time.Time              `gorm:"column:date_thanked" json:"date_thanked,omitempty"`
	DateResponseDue    *time.Time              `gorm:"column:date_response_due" json:"date_response_due,omitempty"`
	DateDue            *time.Time              `gorm:"column:date_due" json:"date_due,omitempty"`

	// Relations
	Reviewer *User `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

func (ReviewAssignment) TableName() string {
	return "review_assignments"
}

// StatusAt derives the assignment's lifecycle status as of now. First match
// wins; a record carrying conflicting flags resolves to the earliest check,
// so cancellation dominates everything else. The function is total: any
// well-formed assignment maps to exactly one status.
//
// Overdue checks compare calendar dates, not clock times. A review due
// today is not yet overdue.
func (ra *ReviewAssignment) StatusAt(now time.Time) ReviewStatus {
	switch {
	case ra.Cancelled:
		return ReviewStatusCancelled
	case ra.Declined:
		return ReviewStatusDeclined
	case ra.DateThanked != nil:
		return ReviewStatusThanked
	case ra.DateCompleted != nil:
		return ReviewStatusComplete
	case ra.DateReceived != nil:
		return ReviewStatusReceived
	}

	if ra.DateConfirmed == nil {
		if ra.DateResponseDue != nil && calendarDateBefore(*ra.DateResponseDue, now) {
			return ReviewStatusResponseOverdue
		}
		return ReviewStatusAwaitingResponse
	}

	if ra.DateDue != nil && calendarDateBefore(*ra.DateDue, now) {
		return ReviewStatusReviewOverdue
	}
	return ReviewStatusAccepted
}

// Status derives the lifecycle status against the current time.
func (ra *ReviewAssignment) Status() ReviewStatus {
	return ra.StatusAt(time.Now())
}

// calendarDateBefore reports whether due falls on a calendar day strictly
// before the day of ref, ignoring time of day. Both values are read in ref's
// location: a UTC-stored due date must not flip the boundary a day early or
// late just because the clock runs in another zone.
func calendarDateBefore(due, ref time.Time) bool {
	dy, dm, dd := due.In(ref.Location()).Date()
	ry, rm, rd := ref.Date()
	if dy != ry {
		return dy < ry
	}
	if dm != rm {
		return dm < rm
	}
	return dd < rd
}
