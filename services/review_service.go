package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"journal-editorial-api/config"
	"journal-editorial-api/models"
	"journal-editorial-api/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrReviewAssignmentTerminal = errors.New("review assignment is cancelled or closed")
	ErrReviewAlreadyResponded   = errors.New("reviewer has already responded to this request")
	ErrReviewNotAccepted        = errors.New("review request has not been accepted")
	ErrReviewNotReceived        = errors.New("review has not been received yet")
	ErrReviewNotConfirmed       = errors.New("review has not been confirmed yet")
	ErrReviewerAlreadyAssigned  = errors.New("reviewer is already assigned in this round")
	ErrNotAssignedReviewer      = errors.New("caller is not the assigned reviewer")
	ErrInvalidRecommendation    = errors.New("invalid reviewer recommendation")
	ErrNotReviewStage           = errors.New("stage does not take review assignments")
)

// ReviewService drives a review assignment through its lifecycle. Every
// mutation re-derives the current status first, so a cancelled or thanked
// assignment can never be moved again.
type ReviewService struct {
	db            *gorm.DB
	notifications *NotificationService
	events        *EventLogService
}

func NewReviewService(db *gorm.DB) *ReviewService {
	if db == nil {
		db = config.DB
	}
	return &ReviewService{
		db:            db,
		notifications: NewNotificationService(db),
		events:        NewEventLogService(db),
	}
}

// ListForSubmission returns the submission's review assignments with their
// reviewers, in assignment order.
func (s *ReviewService) ListForSubmission(submissionID int) ([]models.ReviewAssignment, error) {
	var assignments []models.ReviewAssignment
	err := s.db.Preload("Reviewer").
		Where("submission_id = ?", submissionID).
		Order("review_assignment_id ASC").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// Get loads one review assignment.
func (s *ReviewService) Get(reviewAssignmentID int) (*models.ReviewAssignment, error) {
	var assignment models.ReviewAssignment
	if err := s.db.Preload("Reviewer").
		Where("review_assignment_id = ?", reviewAssignmentID).
		First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Invite creates a review assignment for a reviewer, notifies them and
// emails the request. The access key lets the reviewer open the request
// from the email without an interactive login.
func (s *ReviewService) Invite(submissionID, reviewerID int, stageID models.WorkflowStage, round, reviewMethod int, responseDue, reviewDue *time.Time, editorID int) (*models.ReviewAssignment, error) {
	if stageID != models.StageInternalReview && stageID != models.StageExternalReview {
		return nil, ErrNotReviewStage
	}

	var submission models.Submission
	if err := s.db.Where("submission_id = ?", submissionID).First(&submission).Error; err != nil {
		return nil, err
	}

	var reviewer models.User
	if err := s.db.Where("user_id = ? AND delete_at IS NULL", reviewerID).First(&reviewer).Error; err != nil {
		return nil, err
	}

	var count int64
	err := s.db.Model(&models.ReviewAssignment{}).
		Where("submission_id = ? AND reviewer_id = ? AND stage_id = ? AND round = ? AND cancelled = ?",
			submissionID, reviewerID, stageID, round, false).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrReviewerAlreadyAssigned
	}

	now := time.Now()
	assignment := models.ReviewAssignment{
		SubmissionID:    submissionID,
		ReviewerID:      reviewerID,
		StageID:         stageID,
		Round:           round,
		ReviewMethod:    reviewMethod,
		AccessKey:       uuid.NewString(),
		DateAssigned:    now,
		DateNotified:    &now,
		DateResponseDue: responseDue,
		DateDue:         reviewDue,
	}
	if err := s.db.Create(&assignment).Error; err != nil {
		return nil, err
	}

	if err := s.notifications.Notify(reviewerID, models.NotificationTypeReviewAssignment, submission.ContextID, models.AssocTypeReviewAssignment, assignment.ReviewAssignmentID, models.NotificationLevelTask); err != nil {
		return nil, err
	}

	// Email delivery failing after the assignment is stored is tolerated;
	// the in-app notification already carries the request.
	if err := s.sendInvitationMail(&reviewer, &assignment); err != nil {
		log.Printf("Warning: failed to email review request to %s: %v", reviewer.Email, err)
	}

	if _, err := s.events.LogEvent(submissionID, editorID, models.EventReviewerAssigned,
		fmt.Sprintf("%s assigned to review round %d", reviewer.FullName(), round)); err != nil {
		return nil, err
	}

	return &assignment, nil
}

// Accept records the reviewer taking the request. Only the assigned
// reviewer may respond.
func (s *ReviewService) Accept(reviewAssignmentID, reviewerID int) (*models.ReviewAssignment, error) {
	assignment, err := s.Get(reviewAssignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.ReviewerID != reviewerID {
		return nil, ErrNotAssignedReviewer
	}
	if assignment.Status().Terminal() {
		return nil, ErrReviewAssignmentTerminal
	}
	if assignment.DateConfirmed != nil {
		return nil, ErrReviewAlreadyResponded
	}

	now := time.Now()
	assignment.DateConfirmed = &now
	assignment.Declined = false
	if err := s.db.Save(assignment).Error; err != nil {
		return nil, err
	}

	if _, err := s.events.LogEvent(assignment.SubmissionID, assignment.ReviewerID, models.EventReviewAccepted, "Review request accepted"); err != nil {
		return nil, err
	}
	return assignment, nil
}

// Decline records the reviewer turning the request down and retires the
// pending request notification.
func (s *ReviewService) Decline(reviewAssignmentID, reviewerID int) (*models.ReviewAssignment, error) {
	assignment, err := s.Get(reviewAssignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.ReviewerID != reviewerID {
		return nil, ErrNotAssignedReviewer
	}
	if assignment.Status().Terminal() {
		return nil, ErrReviewAssignmentTerminal
	}
	if assignment.DateConfirmed != nil {
		return nil, ErrReviewAlreadyResponded
	}

	now := time.Now()
	assignment.DateConfirmed = &now
	assignment.Declined = true
	if err := s.db.Save(assignment).Error; err != nil {
		return nil, err
	}

	if err := s.notifications.Clear([]models.NotificationType{models.NotificationTypeReviewAssignment}, models.AssocTypeReviewAssignment, assignment.ReviewAssignmentID); err != nil {
		return nil, err
	}

	if _, err := s.events.LogEvent(assignment.SubmissionID, assignment.ReviewerID, models.EventReviewDeclined, "Review request declined"); err != nil {
		return nil, err
	}
	return assignment, nil
}

// SubmitReview records the reviewer returning their review together with a
// recommendation.
func (s *ReviewService) SubmitReview(reviewAssignmentID, reviewerID int, recommendation models.ReviewerRecommendation) (*models.ReviewAssignment, error) {
	if !recommendation.Valid() {
		return nil, ErrInvalidRecommendation
	}

	assignment, err := s.Get(reviewAssignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.ReviewerID != reviewerID {
		return nil, ErrNotAssignedReviewer
	}
	status := assignment.Status()
	if status.Terminal() {
		return nil, ErrReviewAssignmentTerminal
	}
	if assignment.DateConfirmed == nil || assignment.Declined {
		return nil, ErrReviewNotAccepted
	}
	if assignment.DateReceived != nil {
		return nil, ErrReviewAlreadyResponded
	}

	now := time.Now()
	assignment.Recommendation = &recommendation
	assignment.DateReceived = &now
	if err := s.db.Save(assignment).Error; err != nil {
		return nil, err
	}

	if _, err := s.events.LogEvent(assignment.SubmissionID, assignment.ReviewerID, models.EventReviewReceived,
		fmt.Sprintf("Review submitted with recommendation: %s", recommendation)); err != nil {
		return nil, err
	}
	return assignment, nil
}

// ConfirmReview is the editor acknowledging a received review as complete.
func (s *ReviewService) ConfirmReview(reviewAssignmentID, editorID int) (*models.ReviewAssignment, error) {
	assignment, err := s.Get(reviewAssignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.Status().Terminal() {
		return nil, ErrReviewAssignmentTerminal
	}
	if assignment.DateReceived == nil {
		return nil, ErrReviewNotReceived
	}
	if assignment.DateCompleted != nil {
		return assignment, nil
	}

	now := time.Now()
	assignment.DateCompleted = &now
	if err := s.db.Save(assignment).Error; err != nil {
		return nil, err
	}

	if _, err := s.events.LogEvent(assignment.SubmissionID, editorID, models.EventReviewConfirmed, "Review confirmed complete"); err != nil {
		return nil, err
	}
	return assignment, nil
}

// ThankReviewer closes a completed review with a thank-you. The assignment
// is terminal afterwards.
func (s *ReviewService) ThankReviewer(reviewAssignmentID, editorID int) (*models.ReviewAssignment, error) {
	assignment, err := s.Get(reviewAssignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.Status().Terminal() {
		return nil, ErrReviewAssignmentTerminal
	}
	if assignment.DateCompleted == nil {
		return nil, ErrReviewNotConfirmed
	}

	now := time.Now()
	assignment.DateThanked = &now
	if err := s.db.Save(assignment).Error; err != nil {
		return nil, err
	}

	if assignment.Reviewer != nil {
		if err := config.SendMail([]string{assignment.Reviewer.Email},
			"Thank you for your review",
			fmt.Sprintf("<p>Dear %s,</p><p>Thank you for completing your review. Your contribution is appreciated.</p>", assignment.Reviewer.FullName())); err != nil {
			log.Printf("Warning: failed to email review thanks to %s: %v", assignment.Reviewer.Email, err)
		}
	}

	if _, err := s.events.LogEvent(assignment.SubmissionID, editorID, models.EventReviewerThanked, "Reviewer thanked"); err != nil {
		return nil, err
	}
	return assignment, nil
}

// Cancel withdraws a review request. The assignment is terminal afterwards
// and its pending request notification is retired.
func (s *ReviewService) Cancel(reviewAssignmentID, editorID int) (*models.ReviewAssignment, error) {
	assignment, err := s.Get(reviewAssignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.Status().Terminal() {
		return nil, ErrReviewAssignmentTerminal
	}

	assignment.Cancelled = true
	if err := s.db.Save(assignment).Error; err != nil {
		return nil, err
	}

	if err := s.notifications.Clear([]models.NotificationType{models.NotificationTypeReviewAssignment}, models.AssocTypeReviewAssignment, assignment.ReviewAssignmentID); err != nil {
		return nil, err
	}

	if _, err := s.events.LogEvent(assignment.SubmissionID, editorID, models.EventReviewCancelled, "Review request cancelled"); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *ReviewService) sendInvitationMail(reviewer *models.User, assignment *models.ReviewAssignment) error {
	dueLine := ""
	if assignment.DateResponseDue != nil {
		dueLine = fmt.Sprintf("<p>Please respond by %s.</p>", utils.FormatCalendarDate(*assignment.DateResponseDue))
	}
	body := fmt.Sprintf(
		"<p>Dear %s,</p><p>You have been asked to review a submission (round %d).</p>%s<p>Your access key: %s</p>",
		reviewer.FullName(), assignment.Round, dueLine, assignment.AccessKey,
	)
	return config.SendMail([]string{reviewer.Email}, "Request to review a submission", body)
}
