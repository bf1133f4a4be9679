package services

import (
	"errors"
	"fmt"
	"testing"

	"journal-editorial-api/models"
)

/* ==========================
   In-memory collaborators
   ========================== */

type fakeDirectory struct {
	groupsByStage map[models.WorkflowStage][]models.UserGroup
	memberships   map[int][]int // user group id -> member user ids
	userGroups    map[int][]models.UserGroup
	groupStages   map[int][]models.WorkflowStage
	subEditors    map[string][]int // "assocType/assocID" -> user ids
	roleUsers     map[models.RoleID][]int
	categories    map[int][]int // publication id -> category ids

	membersErr error
}

func subEditorKey(groupingType models.AssocType, groupingID int) string {
	return fmt.Sprintf("%d/%d", groupingType, groupingID)
}

func (f *fakeDirectory) UserGroupsByStage(contextID int, stageID models.WorkflowStage) ([]models.UserGroup, error) {
	return f.groupsByStage[stageID], nil
}

func (f *fakeDirectory) UserGroupsByUser(userID, contextID int) ([]models.UserGroup, error) {
	return f.userGroups[userID], nil
}

func (f *fakeDirectory) Group(userGroupID int) (*models.UserGroup, error) {
	for _, groups := range f.groupsByStage {
		for _, group := range groups {
			if group.UserGroupID == userGroupID {
				g := group
				return &g, nil
			}
		}
	}
	for _, groups := range f.userGroups {
		for _, group := range groups {
			if group.UserGroupID == userGroupID {
				g := group
				return &g, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeDirectory) GroupMembers(userGroupID, contextID int) ([]int, error) {
	if f.membersErr != nil {
		return nil, f.membersErr
	}
	return f.memberships[userGroupID], nil
}

func (f *fakeDirectory) GroupAssignedToStage(userGroupID int, stageID models.WorkflowStage) (bool, error) {
	for _, stage := range f.groupStages[userGroupID] {
		if stage == stageID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDirectory) SubEditors(groupingID int, groupingType models.AssocType, contextID int) ([]int, error) {
	return f.subEditors[subEditorKey(groupingType, groupingID)], nil
}

func (f *fakeDirectory) UsersByRole(roleID models.RoleID, contextID int) ([]int, error) {
	return f.roleUsers[roleID], nil
}

func (f *fakeDirectory) CategoryIDs(publicationID int) ([]int, error) {
	return f.categories[publicationID], nil
}

type assignmentKey struct {
	submissionID int
	userGroupID  int
	userID       int
}

type fakeAssignmentStore struct {
	rows    map[assignmentKey]models.StageAssignment
	nextID  int
	created []assignmentKey
}

func newFakeAssignmentStore() *fakeAssignmentStore {
	return &fakeAssignmentStore{rows: make(map[assignmentKey]models.StageAssignment), nextID: 1}
}

func (s *fakeAssignmentStore) AssignmentsForSubmission(submissionID int, filter AssignmentFilter) ([]models.StageAssignment, error) {
	var matches []models.StageAssignment
	for id := 1; id < s.nextID; id++ {
		for _, row := range s.rows {
			if row.StageAssignmentID != id || row.SubmissionID != submissionID {
				continue
			}
			if filter.UserID != nil && row.UserID != *filter.UserID {
				continue
			}
			if filter.UserGroupID != nil && row.UserGroupID != *filter.UserGroupID {
				continue
			}
			matches = append(matches, row)
		}
	}
	return matches, nil
}

func (s *fakeAssignmentStore) Build(submissionID, userGroupID, userID int, recommendOnly bool) (*models.StageAssignment, error) {
	key := assignmentKey{submissionID, userGroupID, userID}
	if existing, ok := s.rows[key]; ok {
		return &existing, nil
	}
	row := models.StageAssignment{
		StageAssignmentID: s.nextID,
		SubmissionID:      submissionID,
		UserGroupID:       userGroupID,
		UserID:            userID,
		RecommendOnly:     recommendOnly,
	}
	s.nextID++
	s.rows[key] = row
	s.created = append(s.created, key)
	return &row, nil
}

func (s *fakeAssignmentStore) seed(submissionID, userGroupID, userID int) {
	_, _ = s.Build(submissionID, userGroupID, userID, false)
	s.created = nil
}

type notifyCall struct {
	userID int
	t      models.NotificationType
	level  models.NotificationLevel
}

type clearCall struct {
	types   []models.NotificationType
	assocID int
}

type fakeNotifier struct {
	notified []notifyCall
	cleared  []clearCall
}

func (n *fakeNotifier) Notify(userID int, notificationType models.NotificationType, contextID int, assocType models.AssocType, assocID int, level models.NotificationLevel) error {
	n.notified = append(n.notified, notifyCall{userID: userID, t: notificationType, level: level})
	return nil
}

func (n *fakeNotifier) Clear(types []models.NotificationType, assocType models.AssocType, assocID int) error {
	n.cleared = append(n.cleared, clearCall{types: types, assocID: assocID})
	return nil
}

func newEngine(dir *fakeDirectory, store *fakeAssignmentStore, notifier *fakeNotifier) *StageAssignmentService {
	return &StageAssignmentService{
		groups:       dir,
		store:        store,
		editors:      dir,
		publications: dir,
		notifier:     notifier,
	}
}

func testSubmission() *models.Submission {
	sectionID := 7
	return &models.Submission{
		SubmissionID:         100,
		ContextID:            1,
		SubmitterID:          50,
		CurrentPublicationID: 200,
		CurrentPublication: &models.Publication{
			PublicationID: 200,
			SubmissionID:  100,
			SectionID:     &sectionID,
		},
	}
}

func emptyDirectory() *fakeDirectory {
	return &fakeDirectory{
		groupsByStage: map[models.WorkflowStage][]models.UserGroup{},
		memberships:   map[int][]int{},
		userGroups:    map[int][]models.UserGroup{},
		groupStages:   map[int][]models.WorkflowStage{},
		subEditors:    map[string][]int{},
		roleUsers:     map[models.RoleID][]int{},
		categories:    map[int][]int{},
	}
}

/* ==========================
   Scenarios
   ========================== */

func TestSingletonManagerAndAssistantAreAssignedAndNotified(t *testing.T) {
	dir := emptyDirectory()
	dir.groupsByStage[models.StageSubmission] = []models.UserGroup{
		{UserGroupID: 1, ContextID: 1, RoleID: models.RoleManager},
		{UserGroupID: 2, ContextID: 1, RoleID: models.RoleAssistant, RecommendOnly: true},
	}
	dir.memberships[1] = []int{10}
	dir.memberships[2] = []int{20}

	store := newFakeAssignmentStore()
	notifier := &fakeNotifier{}
	outcome, err := newEngine(dir, store, notifier).AssignDefaultParticipants(testSubmission())
	if err != nil {
		t.Fatalf("AssignDefaultParticipants: %v", err)
	}

	if len(store.rows) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(store.rows))
	}
	assistantRow, ok := store.rows[assignmentKey{100, 2, 20}]
	if !ok {
		t.Fatal("assistant was not enrolled")
	}
	if !assistantRow.RecommendOnly {
		t.Fatal("recommend-only flag was not propagated from the group")
	}
	if got := outcome.Notified; len(got) != 2 || got[0] != 10 || got[1] != 20 {
		t.Fatalf("unexpected notify-set: %v", got)
	}
	if outcome.Escalated {
		t.Fatal("notify-set was non-empty, escalation must not happen")
	}
	for _, call := range notifier.notified {
		if call.t != models.NotificationTypeSubmissionSubmitted {
			t.Fatalf("unexpected notification type %s", call.t)
		}
		if call.level != models.NotificationLevelNormal {
			t.Fatalf("unexpected notification level %d", call.level)
		}
	}
}

func TestAmbiguousManagerGroupIsSkipped(t *testing.T) {
	dir := emptyDirectory()
	dir.groupsByStage[models.StageSubmission] = []models.UserGroup{
		{UserGroupID: 1, ContextID: 1, RoleID: models.RoleManager},
		{UserGroupID: 2, ContextID: 1, RoleID: models.RoleAssistant},
		{UserGroupID: 3, ContextID: 1, RoleID: models.RoleAssistant},
	}
	dir.memberships[1] = []int{10, 11} // two managers: ambiguous
	dir.memberships[2] = []int{}       // nobody to enroll
	dir.memberships[3] = []int{20}
	dir.roleUsers[models.RoleManager] = []int{10, 11}

	store := newFakeAssignmentStore()
	notifier := &fakeNotifier{}
	outcome, err := newEngine(dir, store, notifier).AssignDefaultParticipants(testSubmission())
	if err != nil {
		t.Fatalf("AssignDefaultParticipants: %v", err)
	}

	if len(store.rows) != 1 {
		t.Fatalf("expected only the singleton group enrolled, got %d rows", len(store.rows))
	}
	if _, ok := store.rows[assignmentKey{100, 3, 20}]; !ok {
		t.Fatal("singleton assistant group was not enrolled")
	}
	if outcome.Escalated {
		t.Fatal("one assistant was notified, no escalation expected")
	}
}

func TestNonManagerGroupsAreIgnoredForAutoAssignment(t *testing.T) {
	dir := emptyDirectory()
	dir.groupsByStage[models.StageSubmission] = []models.UserGroup{
		{UserGroupID: 1, ContextID: 1, RoleID: models.RoleReviewer},
		{UserGroupID: 2, ContextID: 1, RoleID: models.RoleAuthor},
	}
	dir.memberships[1] = []int{10}
	dir.memberships[2] = []int{20}
	dir.roleUsers[models.RoleManager] = []int{99}

	store := newFakeAssignmentStore()
	notifier := &fakeNotifier{}
	outcome, err := newEngine(dir, store, notifier).AssignDefaultParticipants(testSubmission())
	if err != nil {
		t.Fatalf("AssignDefaultParticipants: %v", err)
	}

	if len(store.rows) != 0 {
		t.Fatalf("reviewer and author stage groups must not be auto-assigned, got %d rows", len(store.rows))
	}
	if !outcome.Escalated {
		t.Fatal("expected escalation with an empty notify-set")
	}
}

func TestSubmitterCarriesForwardFirstAuthorGroupOnly(t *testing.T) {
	dir := emptyDirectory()
	authorGroup := models.UserGroup{UserGroupID: 5, ContextID: 1, RoleID: models.RoleAuthor}
	translatorGroup := models.UserGroup{UserGroupID: 6, ContextID: 1, RoleID: models.RoleAuthor}
	reviewerGroup := models.UserGroup{UserGroupID: 7, ContextID: 1, RoleID: models.RoleReviewer}
	dir.userGroups[50] = []models.UserGroup{reviewerGroup, authorGroup, translatorGroup}
	dir.roleUsers[models.RoleManager] = []int{99}

	store := newFakeAssignmentStore()
	// The wizard enrolled the submitter under both author capacities and a
	// reviewer capacity at earlier stages.
	store.seed(100, 7, 50)
	store.seed(100, 5, 50)
	store.seed(100, 6, 50)

	notifier := &fakeNotifier{}
	if _, err := newEngine(dir, store, notifier).AssignDefaultParticipants(testSubmission()); err != nil {
		t.Fatalf("AssignDefaultParticipants: %v", err)
	}

	// The reviewer-capacity row is skipped, the first author row is
	// re-ensured, and no second author enrollment is attempted.
	if len(store.created) != 0 {
		t.Fatalf("carry-forward over existing rows should create nothing, created %v", store.created)
	}
	if len(store.rows) != 3 {
		t.Fatalf("expected the 3 seeded rows to remain, got %d", len(store.rows))
	}
}

func TestSectionSubEditorsAreAssignedAndNotified(t *testing.T) {
	dir := emptyDirectory()
	dir.subEditors[subEditorKey(models.AssocTypeSection, 7)] = []int{30, 31}
	dir.userGroups[30] = []models.UserGroup{{UserGroupID: 8, ContextID: 1, RoleID: models.RoleSubEditor}}
	dir.userGroups[31] = []models.UserGroup{
		{UserGroupID: 8, ContextID: 1, RoleID: models.RoleSubEditor},
		{UserGroupID: 9, ContextID: 1, RoleID: models.RoleReviewer},
	}
	dir.groupStages[8] = []models.WorkflowStage{models.StageSubmission, models.StageExternalReview}
	dir.roleUsers[models.RoleManager] = []int{99}

	store := newFakeAssignmentStore()
	notifier := &fakeNotifier{}
	outcome, err := newEngine(dir, store, notifier).AssignDefaultParticipants(testSubmission())
	if err != nil {
		t.Fatalf("AssignDefaultParticipants: %v", err)
	}

	if len(store.rows) != 2 {
		t.Fatalf("expected both sub-editors enrolled once, got %d rows", len(store.rows))
	}
	if got := outcome.Notified; len(got) != 2 || got[0] != 30 || got[1] != 31 {
		t.Fatalf("unexpected notify-set: %v", got)
	}
	if outcome.Escalated {
		t.Fatal("no escalation expected when sub-editors were notified")
	}
	for _, call := range notifier.notified {
		if call.t == models.NotificationTypeEditorAssignmentRequired {
			t.Fatal("managers must not be escalated to when the notify-set is non-empty")
		}
	}
}

func TestSubEditorGroupOutsideIntakeStageIsEnrolledButNotNotified(t *testing.T) {
	dir := emptyDirectory()
	dir.subEditors[subEditorKey(models.AssocTypeSection, 7)] = []int{30}
	dir.userGroups[30] = []models.UserGroup{{UserGroupID: 8, ContextID: 1, RoleID: models.RoleSubEditor, RecommendOnly: true}}
	dir.groupStages[8] = []models.WorkflowStage{models.StageExternalReview} // not the intake stage
	dir.roleUsers[models.RoleManager] = []int{99}

	store := newFakeAssignmentStore()
	notifier := &fakeNotifier{}
	outcome, err := newEngine(dir, store, notifier).AssignDefaultParticipants(testSubmission())
	if err != nil {
		t.Fatalf("AssignDefaultParticipants: %v", err)
	}

	row, ok := store.rows[assignmentKey{100, 8, 30}]
	if !ok {
		t.Fatal("sub-editor should be enrolled even when their group acts in a later stage")
	}
	if !row.RecommendOnly {
		t.Fatal("recommend-only flag was not propagated")
	}
	if len(outcome.Notified) != 0 {
		t.Fatalf("sub-editor outside the intake stage must not be notified, got %v", outcome.Notified)
	}
	if !outcome.Escalated {
		t.Fatal("empty notify-set must escalate to managers")
	}
}

func TestCategorySubEditorsDeduplicateAcrossGroupings(t *testing.T) {
	dir := emptyDirectory()
	// Editor 30 serves the section and both categories; editor 32 serves
	// only the second category.
	dir.subEditors[subEditorKey(models.AssocTypeSection, 7)] = []int{30}
	dir.subEditors[subEditorKey(models.AssocTypeCategory, 41)] = []int{30}
	dir.subEditors[subEditorKey(models.AssocTypeCategory, 42)] = []int{30, 32}
	dir.categories[200] = []int{41, 42}
	dir.userGroups[30] = []models.UserGroup{{UserGroupID: 8, ContextID: 1, RoleID: models.RoleSubEditor}}
	dir.userGroups[32] = []models.UserGroup{{UserGroupID: 8, ContextID: 1, RoleID: models.RoleSubEditor}}
	dir.groupStages[8] = []models.WorkflowStage{models.StageSubmission}

	store := newFakeAssignmentStore()
	notifier := &fakeNotifier{}
	outcome, err := newEngine(dir, store, notifier).AssignDefaultParticipants(testSubmission())
	if err != nil {
		t.Fatalf("AssignDefaultParticipants: %v", err)
	}

	if len(store.rows) != 2 {
		t.Fatalf("duplicate (group, user) pairs must collapse to one row each, got %d", len(store.rows))
	}
	if got := outcome.Notified; len(got) != 2 || got[0] != 30 || got[1] != 32 {
		t.Fatalf("unexpected notify-set: %v", got)
	}

	submitted := 0
	for _, call := range notifier.notified {
		if call.t == models.NotificationTypeSubmissionSubmitted && call.userID == 30 {
			submitted++
		}
	}
	if submitted != 1 {
		t.Fatalf("editor 30 must be notified exactly once, got %d", submitted)
	}
}

func TestEmptyNotifySetEscalatesToEveryManager(t *testing.T) {
	dir := emptyDirectory()
	dir.roleUsers[models.RoleManager] = []int{10, 11, 12}

	store := newFakeAssignmentStore()
	notifier := &fakeNotifier{}
	outcome, err := newEngine(dir, store, notifier).AssignDefaultParticipants(testSubmission())
	if err != nil {
		t.Fatalf("AssignDefaultParticipants: %v", err)
	}

	if !outcome.Escalated {
		t.Fatal("expected escalation")
	}
	if len(notifier.notified) != 3 {
		t.Fatalf("expected one task notification per manager, got %d", len(notifier.notified))
	}
	for _, call := range notifier.notified {
		if call.t != models.NotificationTypeEditorAssignmentRequired {
			t.Fatalf("unexpected notification type %s", call.t)
		}
		if call.level != models.NotificationLevelTask {
			t.Fatalf("escalation must be task-level, got %d", call.level)
		}
	}
}

func TestPendingNotificationsAreClearedOnEveryPass(t *testing.T) {
	dir := emptyDirectory()
	store := newFakeAssignmentStore()
	notifier := &fakeNotifier{}
	if _, err := newEngine(dir, store, notifier).AssignDefaultParticipants(testSubmission()); err != nil {
		t.Fatalf("AssignDefaultParticipants: %v", err)
	}

	if len(notifier.cleared) != 2 {
		t.Fatalf("expected two clear calls, got %d", len(notifier.cleared))
	}
	if len(notifier.cleared[0].types) != len(models.DecisionPendingTypes()) {
		t.Fatalf("first clear must cover the decision-pending set, got %v", notifier.cleared[0].types)
	}
	second := notifier.cleared[1]
	if len(second.types) != 1 || second.types[0] != models.NotificationTypeApproveSubmission {
		t.Fatalf("second clear must target the approval notification, got %v", second.types)
	}
	if second.assocID != 100 {
		t.Fatalf("clear must target the submission, got assoc id %d", second.assocID)
	}
}

func TestAssignDefaultParticipantsIsIdempotent(t *testing.T) {
	dir := emptyDirectory()
	dir.groupsByStage[models.StageSubmission] = []models.UserGroup{
		{UserGroupID: 1, ContextID: 1, RoleID: models.RoleManager},
	}
	dir.memberships[1] = []int{10}
	dir.subEditors[subEditorKey(models.AssocTypeSection, 7)] = []int{30}
	dir.userGroups[30] = []models.UserGroup{{UserGroupID: 8, ContextID: 1, RoleID: models.RoleSubEditor}}
	dir.userGroups[50] = []models.UserGroup{{UserGroupID: 5, ContextID: 1, RoleID: models.RoleAuthor}}
	dir.groupStages[8] = []models.WorkflowStage{models.StageSubmission}

	store := newFakeAssignmentStore()
	store.seed(100, 5, 50)

	engine := newEngine(dir, store, &fakeNotifier{})
	if _, err := engine.AssignDefaultParticipants(testSubmission()); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	firstCount := len(store.rows)

	if _, err := engine.AssignDefaultParticipants(testSubmission()); err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if len(store.rows) != firstCount {
		t.Fatalf("second pass changed the assignment set: %d -> %d rows", firstCount, len(store.rows))
	}
	if len(store.created) != 2 {
		t.Fatalf("expected only the first pass to create rows (manager + sub-editor), created %d", len(store.created))
	}
}

func TestMissingSectionMetadataIsNotAnError(t *testing.T) {
	dir := emptyDirectory()
	dir.roleUsers[models.RoleManager] = []int{99}

	submission := testSubmission()
	submission.CurrentPublication.SectionID = nil

	store := newFakeAssignmentStore()
	outcome, err := newEngine(dir, store, &fakeNotifier{}).AssignDefaultParticipants(submission)
	if err != nil {
		t.Fatalf("missing section must degrade to no sub-editors, got error: %v", err)
	}
	if !outcome.Escalated {
		t.Fatal("expected escalation")
	}
}

func TestCollaboratorFailuresPropagate(t *testing.T) {
	dir := emptyDirectory()
	dir.groupsByStage[models.StageSubmission] = []models.UserGroup{
		{UserGroupID: 1, ContextID: 1, RoleID: models.RoleManager},
	}
	lookupErr := errors.New("persistence unavailable")
	dir.membersErr = lookupErr

	store := newFakeAssignmentStore()
	_, err := newEngine(dir, store, &fakeNotifier{}).AssignDefaultParticipants(testSubmission())
	if !errors.Is(err, lookupErr) {
		t.Fatalf("collaborator failure must propagate unchanged, got %v", err)
	}
}
