package services

import (
	"errors"
	"time"

	"journal-editorial-api/config"
	"journal-editorial-api/models"

	"gorm.io/gorm"
)

// Collaborators of the stage assignment engine. They are injected so the
// enrollment policy can be exercised without a database; the gorm-backed
// implementations below are the production wiring.

// GroupDirectory resolves user groups, their members, and their stage
// permissions within a publishing context.
type GroupDirectory interface {
	UserGroupsByStage(contextID int, stageID models.WorkflowStage) ([]models.UserGroup, error)
	UserGroupsByUser(userID, contextID int) ([]models.UserGroup, error)
	Group(userGroupID int) (*models.UserGroup, error)
	GroupMembers(userGroupID, contextID int) ([]int, error)
	GroupAssignedToStage(userGroupID int, stageID models.WorkflowStage) (bool, error)
}

// AssignmentFilter narrows a stage assignment lookup. Nil fields are
// ignored.
type AssignmentFilter struct {
	StageID     *models.WorkflowStage
	UserGroupID *int
	UserID      *int
}

// AssignmentStore reads and upserts stage assignment rows. Build enforces
// the uniqueness of the (submission, user group, user) triple: enrolling an
// already-enrolled participant returns the existing row instead of failing.
type AssignmentStore interface {
	AssignmentsForSubmission(submissionID int, filter AssignmentFilter) ([]models.StageAssignment, error)
	Build(submissionID, userGroupID, userID int, recommendOnly bool) (*models.StageAssignment, error)
}

// EditorDirectory resolves editors bound to a section or category, and
// users holding a role anywhere in a context.
type EditorDirectory interface {
	SubEditors(groupingID int, groupingType models.AssocType, contextID int) ([]int, error)
	UsersByRole(roleID models.RoleID, contextID int) ([]int, error)
}

// PublicationDirectory resolves classification metadata of a publication
// version.
type PublicationDirectory interface {
	CategoryIDs(publicationID int) ([]int, error)
}

// AssignmentNotifier hands notification intents to the delivery layer.
type AssignmentNotifier interface {
	Notify(userID int, notificationType models.NotificationType, contextID int, assocType models.AssocType, assocID int, level models.NotificationLevel) error
	Clear(types []models.NotificationType, assocType models.AssocType, assocID int) error
}

// AssignmentOutcome reports what a finalization pass did.
type AssignmentOutcome struct {
	Assigned  []models.StageAssignment `json:"assigned"`
	Notified  []int                    `json:"notified"`
	Escalated bool                     `json:"escalated"`
}

// StageAssignmentService decides who is enrolled into the submission stage
// when a submission is finalized, and who gets told about it.
type StageAssignmentService struct {
	groups       GroupDirectory
	store        AssignmentStore
	editors      EditorDirectory
	publications PublicationDirectory
	notifier     AssignmentNotifier
}

// NewStageAssignmentService wires the engine to the database-backed
// collaborators.
func NewStageAssignmentService(db *gorm.DB) *StageAssignmentService {
	if db == nil {
		db = config.DB
	}
	return &StageAssignmentService{
		groups:       &gormGroupDirectory{db: db},
		store:        &gormAssignmentStore{db: db},
		editors:      &gormEditorDirectory{db: db},
		publications: &gormPublicationDirectory{db: db},
		notifier:     NewNotificationService(db),
	}
}

// Participants lists a submission's stage assignments, optionally narrowed
// to one workflow stage.
func (s *StageAssignmentService) Participants(submissionID int, stageID *models.WorkflowStage) ([]models.StageAssignment, error) {
	return s.store.AssignmentsForSubmission(submissionID, AssignmentFilter{StageID: stageID})
}

// AddParticipant enrolls a user into a submission under a user group.
// Enrolling an already-enrolled participant returns the existing row.
func (s *StageAssignmentService) AddParticipant(submissionID, userGroupID, userID int) (*models.StageAssignment, error) {
	group, err := s.groups.Group(userGroupID)
	if err != nil {
		return nil, err
	}
	return s.store.Build(submissionID, userGroupID, userID, group.RecommendOnly)
}

// AssignDefaultParticipants enrolls the default participants of a freshly
// finalized submission into the submission stage and resolves whom to
// notify. The pass is idempotent: every enrollment goes through the
// AssignmentStore upsert, so re-running it against existing rows is a
// no-op.
//
// Zero-result lookups (empty groups, no sub-editors, missing section or
// category metadata) are normal outcomes and skip the enrollment in
// question; only collaborator failures are returned.
func (s *StageAssignmentService) AssignDefaultParticipants(submission *models.Submission) (*AssignmentOutcome, error) {
	outcome := &AssignmentOutcome{}
	notified := make(map[int]bool)
	addNotify := func(userID int) {
		if !notified[userID] {
			notified[userID] = true
			outcome.Notified = append(outcome.Notified, userID)
		}
	}

	// Manager and assistant groups configured for the submission stage:
	// enroll the member iff the group has exactly one. Empty groups have
	// nobody to enroll; larger groups are ambiguous and left for manual
	// assignment.
	stageGroups, err := s.groups.UserGroupsByStage(submission.ContextID, models.StageSubmission)
	if err != nil {
		return nil, err
	}
	for _, group := range stageGroups {
		if group.RoleID != models.RoleManager && group.RoleID != models.RoleAssistant {
			continue
		}
		members, err := s.groups.GroupMembers(group.UserGroupID, submission.ContextID)
		if err != nil {
			return nil, err
		}
		if len(members) != 1 {
			continue
		}
		assignment, err := s.store.Build(submission.SubmissionID, group.UserGroupID, members[0], group.RecommendOnly)
		if err != nil {
			return nil, err
		}
		outcome.Assigned = append(outcome.Assigned, *assignment)
		addNotify(members[0])
	}

	// Re-enroll the submitter under the first author-capacity group they
	// already hold on this submission. One enrollment is enough to keep
	// their access; stopping at the first match avoids one row per
	// previous stage.
	submitterID := submission.SubmitterID
	existing, err := s.store.AssignmentsForSubmission(submission.SubmissionID, AssignmentFilter{UserID: &submitterID})
	if err != nil {
		return nil, err
	}
	for _, prior := range existing {
		group, err := s.groups.Group(prior.UserGroupID)
		if err != nil {
			return nil, err
		}
		if group == nil || group.RoleID != models.RoleAuthor {
			continue
		}
		assignment, err := s.store.Build(submission.SubmissionID, group.UserGroupID, prior.UserID, false)
		if err != nil {
			return nil, err
		}
		outcome.Assigned = append(outcome.Assigned, *assignment)
		break
	}

	// Sub-editors bound to the submission's section.
	if submission.CurrentPublication != nil && submission.CurrentPublication.SectionID != nil {
		if err := s.assignSubEditors(submission, *submission.CurrentPublication.SectionID, models.AssocTypeSection, outcome, addNotify); err != nil {
			return nil, err
		}
	}

	// Sub-editors bound to any category of the current publication.
	// Editors serving several matching categories collapse to one row per
	// (group, user) through the upsert.
	if submission.CurrentPublication != nil {
		categoryIDs, err := s.publications.CategoryIDs(submission.CurrentPublication.PublicationID)
		if err != nil {
			return nil, err
		}
		for _, categoryID := range categoryIDs {
			if err := s.assignSubEditors(submission, categoryID, models.AssocTypeCategory, outcome, addNotify); err != nil {
				return nil, err
			}
		}
	}

	// The assignment state changed, so any stale decision-pending flags on
	// this submission are cleared. Safe when none exist.
	if err := s.notifier.Clear(models.DecisionPendingTypes(), models.AssocTypeSubmission, submission.SubmissionID); err != nil {
		return nil, err
	}

	if len(outcome.Notified) == 0 {
		// Nobody could be auto-assigned: put a task in front of every
		// manager so the submission does not sit unwatched.
		managers, err := s.editors.UsersByRole(models.RoleManager, submission.ContextID)
		if err != nil {
			return nil, err
		}
		for _, managerID := range managers {
			if err := s.notifier.Notify(managerID, models.NotificationTypeEditorAssignmentRequired, submission.ContextID, models.AssocTypeSubmission, submission.SubmissionID, models.NotificationLevelTask); err != nil {
				return nil, err
			}
		}
		outcome.Escalated = true
	} else {
		for _, userID := range outcome.Notified {
			if err := s.notifier.Notify(userID, models.NotificationTypeSubmissionSubmitted, submission.ContextID, models.AssocTypeSubmission, submission.SubmissionID, models.NotificationLevelNormal); err != nil {
				return nil, err
			}
		}
	}

	if err := s.notifier.Clear([]models.NotificationType{models.NotificationTypeApproveSubmission}, models.AssocTypeSubmission, submission.SubmissionID); err != nil {
		return nil, err
	}

	return outcome, nil
}

// assignSubEditors enrolls every sub-editor bound to one section or
// category, once per sub-editor-capacity group they hold. The sub-editor is
// only notified when the group may act in the submission stage; a group
// scoped to later stages still gets the enrollment so the editor is ready
// when the submission reaches them.
func (s *StageAssignmentService) assignSubEditors(submission *models.Submission, groupingID int, groupingType models.AssocType, outcome *AssignmentOutcome, addNotify func(int)) error {
	subEditors, err := s.editors.SubEditors(groupingID, groupingType, submission.ContextID)
	if err != nil {
		return err
	}
	for _, editorID := range subEditors {
		groups, err := s.groups.UserGroupsByUser(editorID, submission.ContextID)
		if err != nil {
			return err
		}
		for _, group := range groups {
			if group.RoleID != models.RoleSubEditor {
				continue
			}
			assignment, err := s.store.Build(submission.SubmissionID, group.UserGroupID, editorID, group.RecommendOnly)
			if err != nil {
				return err
			}
			outcome.Assigned = append(outcome.Assigned, *assignment)
			permitted, err := s.groups.GroupAssignedToStage(group.UserGroupID, models.StageSubmission)
			if err != nil {
				return err
			}
			if permitted {
				addNotify(editorID)
			}
		}
	}
	return nil
}

/* ==========================
   GORM-backed collaborators
   ========================== */

type gormGroupDirectory struct {
	db *gorm.DB
}

func (d *gormGroupDirectory) UserGroupsByStage(contextID int, stageID models.WorkflowStage) ([]models.UserGroup, error) {
	var groups []models.UserGroup
	err := d.db.Model(&models.UserGroup{}).
		Joins("JOIN user_group_stage ON user_group_stage.user_group_id = user_groups.user_group_id").
		Where("user_groups.context_id = ? AND user_group_stage.stage_id = ?", contextID, stageID).
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (d *gormGroupDirectory) UserGroupsByUser(userID, contextID int) ([]models.UserGroup, error) {
	var groups []models.UserGroup
	err := d.db.Model(&models.UserGroup{}).
		Joins("JOIN user_user_groups ON user_user_groups.user_group_id = user_groups.user_group_id").
		Where("user_user_groups.user_id = ? AND user_groups.context_id = ?", userID, contextID).
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (d *gormGroupDirectory) Group(userGroupID int) (*models.UserGroup, error) {
	var group models.UserGroup
	if err := d.db.Where("user_group_id = ?", userGroupID).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

func (d *gormGroupDirectory) GroupMembers(userGroupID, contextID int) ([]int, error) {
	var userIDs []int
	err := d.db.Model(&models.UserUserGroup{}).
		Joins("JOIN user_groups ON user_groups.user_group_id = user_user_groups.user_group_id").
		Joins("JOIN users ON users.user_id = user_user_groups.user_id AND users.delete_at IS NULL").
		Where("user_user_groups.user_group_id = ? AND user_groups.context_id = ?", userGroupID, contextID).
		Pluck("user_user_groups.user_id", &userIDs).Error
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}

func (d *gormGroupDirectory) GroupAssignedToStage(userGroupID int, stageID models.WorkflowStage) (bool, error) {
	var count int64
	err := d.db.Model(&models.UserGroupStage{}).
		Where("user_group_id = ? AND stage_id = ?", userGroupID, stageID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type gormAssignmentStore struct {
	db *gorm.DB
}

func (r *gormAssignmentStore) AssignmentsForSubmission(submissionID int, filter AssignmentFilter) ([]models.StageAssignment, error) {
	q := r.db.Model(&models.StageAssignment{}).
		Where("stage_assignments.submission_id = ?", submissionID)
	if filter.UserGroupID != nil {
		q = q.Where("stage_assignments.user_group_id = ?", *filter.UserGroupID)
	}
	if filter.UserID != nil {
		q = q.Where("stage_assignments.user_id = ?", *filter.UserID)
	}
	if filter.StageID != nil {
		// Stage assignments are not stage-scoped themselves; the stage
		// filter goes through the group's stage permissions.
		q = q.Joins("JOIN user_group_stage ON user_group_stage.user_group_id = stage_assignments.user_group_id").
			Where("user_group_stage.stage_id = ?", *filter.StageID)
	}
	var assignments []models.StageAssignment
	if err := q.Order("stage_assignments.stage_assignment_id ASC").Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *gormAssignmentStore) Build(submissionID, userGroupID, userID int, recommendOnly bool) (*models.StageAssignment, error) {
	var existing models.StageAssignment
	err := r.db.Where("submission_id = ? AND user_group_id = ? AND user_id = ?", submissionID, userGroupID, userID).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	assignment := models.StageAssignment{
		SubmissionID:  submissionID,
		UserGroupID:   userGroupID,
		UserID:        userID,
		RecommendOnly: recommendOnly,
		DateAssigned:  time.Now(),
	}
	if err := r.db.Create(&assignment).Error; err != nil {
		// A concurrent finalization can win the insert between our check
		// and create; the unique index turns that into a duplicate-key
		// error and the winner's row is the assignment.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var winner models.StageAssignment
			if lookupErr := r.db.Where("submission_id = ? AND user_group_id = ? AND user_id = ?", submissionID, userGroupID, userID).
				First(&winner).Error; lookupErr == nil {
				return &winner, nil
			}
		}
		return nil, err
	}
	return &assignment, nil
}

type gormEditorDirectory struct {
	db *gorm.DB
}

func (d *gormEditorDirectory) SubEditors(groupingID int, groupingType models.AssocType, contextID int) ([]int, error) {
	var userIDs []int
	err := d.db.Model(&models.SubEditorAssignment{}).
		Where("assoc_id = ? AND assoc_type = ? AND context_id = ?", groupingID, groupingType, contextID).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}

func (d *gormEditorDirectory) UsersByRole(roleID models.RoleID, contextID int) ([]int, error) {
	var userIDs []int
	err := d.db.Model(&models.UserUserGroup{}).
		Distinct("user_user_groups.user_id").
		Joins("JOIN user_groups ON user_groups.user_group_id = user_user_groups.user_group_id").
		Where("user_groups.role_id = ? AND user_groups.context_id = ?", roleID, contextID).
		Pluck("user_user_groups.user_id", &userIDs).Error
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}

type gormPublicationDirectory struct {
	db *gorm.DB
}

func (d *gormPublicationDirectory) CategoryIDs(publicationID int) ([]int, error) {
	var categoryIDs []int
	err := d.db.Model(&models.PublicationCategory{}).
		Where("publication_id = ?", publicationID).
		Pluck("category_id", &categoryIDs).Error
	if err != nil {
		return nil, err
	}
	return categoryIDs, nil
}
