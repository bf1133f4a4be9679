package services

import (
	"errors"
	"time"

	"journal-editorial-api/config"
	"journal-editorial-api/models"

	"gorm.io/gorm"
)

var (
	ErrSubmissionIncomplete  = errors.New("submission wizard is not finished")
	ErrInvalidSubmissionStep = errors.New("invalid submission step")
)

// SubmissionService owns the submission wizard's progress bookkeeping and
// the finalization step that hands off to the stage assignment engine.
type SubmissionService struct {
	db          *gorm.DB
	assignments *StageAssignmentService
	events      *EventLogService
}

func NewSubmissionService(db *gorm.DB) *SubmissionService {
	if db == nil {
		db = config.DB
	}
	return &SubmissionService{
		db:          db,
		assignments: NewStageAssignmentService(db),
		events:      NewEventLogService(db),
	}
}

// Get loads one submission with its current publication version.
func (s *SubmissionService) Get(submissionID int) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db.Preload("CurrentPublication").Preload("Submitter").
		Where("submission_id = ?", submissionID).
		First(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

// AdvanceStep records completion of one authoring step of the wizard and
// moves the submitter to the next. Saving an earlier step again does not
// move the progress backwards.
func (s *SubmissionService) AdvanceStep(submissionID, step int) (*models.Submission, error) {
	if step < 1 || step > models.SubmissionProgressLastStep {
		return nil, ErrInvalidSubmissionStep
	}

	submission, err := s.Get(submissionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if submission.SubmissionProgress != models.SubmissionProgressComplete && submission.SubmissionProgress <= step {
		submission.SubmissionProgress = step + 1
		submission.StampLastActivity(now)
		submission.StampModified(now)
		if err := s.db.Save(submission).Error; err != nil {
			return nil, err
		}
	}
	return submission, nil
}

// Finalize completes the submission wizard: it stamps the submission as
// submitted, runs the default participant assignment, and logs the event.
// The wizard must have moved past its last step; earlier submissions return
// ErrSubmissionIncomplete. Re-running it for an already-finalized submission
// re-applies the assignment pass, which is a no-op thanks to the enrollment
// upsert.
func (s *SubmissionService) Finalize(submissionID, actorID int) (*models.Submission, *AssignmentOutcome, error) {
	submission, err := s.Get(submissionID)
	if err != nil {
		return nil, nil, err
	}

	if submission.Incomplete() {
		if submission.SubmissionProgress <= models.SubmissionProgressLastStep {
			return nil, nil, ErrSubmissionIncomplete
		}
		now := time.Now()
		submission.DateSubmitted = &now
		submission.SubmissionProgress = models.SubmissionProgressComplete
		submission.Status = models.SubmissionStatusQueued
		submission.StageID = models.StageSubmission
		submission.StampLastActivity(now)
		submission.StampModified(now)
		if err := s.db.Save(submission).Error; err != nil {
			return nil, nil, err
		}
	}

	outcome, err := s.assignments.AssignDefaultParticipants(submission)
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.events.LogEvent(submission.SubmissionID, actorID, models.EventSubmissionSubmitted, "Submission completed"); err != nil {
		return nil, nil, err
	}

	return submission, outcome, nil
}

// SubmissionFilter narrows the submission listing.
type SubmissionFilter struct {
	ContextID  int
	Status     []int
	StageIDs   []models.WorkflowStage
	AssignedTo int // 0 means no assignment narrowing
	Incomplete *bool
}

// List returns submissions matching the filter, most recently active
// first. Callers without a managerial role are narrowed by AssignedTo so
// they only ever see submissions they participate in.
func (s *SubmissionService) List(filter SubmissionFilter, limit, offset int) ([]models.Submission, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := s.db.Model(&models.Submission{})
	if filter.ContextID != 0 {
		q = q.Where("submissions.context_id = ?", filter.ContextID)
	}
	if len(filter.Status) > 0 {
		q = q.Where("submissions.status IN ?", filter.Status)
	}
	if len(filter.StageIDs) > 0 {
		q = q.Where("submissions.stage_id IN ?", filter.StageIDs)
	}
	if filter.Incomplete != nil {
		if *filter.Incomplete {
			q = q.Where("submissions.submission_progress <> ?", models.SubmissionProgressComplete)
		} else {
			q = q.Where("submissions.submission_progress = ?", models.SubmissionProgressComplete)
		}
	}
	if filter.AssignedTo != 0 {
		q = q.Where("submissions.submission_id IN (?)",
			s.db.Model(&models.StageAssignment{}).
				Select("stage_assignments.submission_id").
				Where("stage_assignments.user_id = ?", filter.AssignedTo))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var submissions []models.Submission
	if err := q.Preload("CurrentPublication").
		Order("submissions.date_last_activity DESC, submissions.submission_id DESC").
		Limit(limit).Offset(offset).
		Find(&submissions).Error; err != nil {
		return nil, 0, err
	}
	return submissions, total, nil
}

// Delete removes a submission. Incomplete submissions may be withdrawn by
// their submitter; finalized ones only by a manager (enforced by the
// caller's role gate).
func (s *SubmissionService) Delete(submissionID int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("submission_id = ?", submissionID).Delete(&models.StageAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("submission_id = ?", submissionID).Delete(&models.ReviewAssignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("assoc_type = ? AND assoc_id = ?", models.AssocTypeSubmission, submissionID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("submission_id = ?", submissionID).Delete(&models.SubmissionEventLog{}).Error; err != nil {
			return err
		}
		return tx.Where("submission_id = ?", submissionID).Delete(&models.Submission{}).Error
	})
}
