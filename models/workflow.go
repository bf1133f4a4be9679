package models

// WorkflowStage identifies one phase of the editorial workflow. The set is
// closed: stages are configured in code, never created at runtime.
type WorkflowStage int

const (
	StageSubmission WorkflowStage = iota + 1
	StageInternalReview
	StageExternalReview
	StageEditing
	StageProduction
)

// Stages lists every workflow stage in order.
func Stages() []WorkflowStage {
	return []WorkflowStage{
		StageSubmission,
		StageInternalReview,
		StageExternalReview,
		StageEditing,
		StageProduction,
	}
}

func (s WorkflowStage) String() string {
	switch s {
	case StageSubmission:
		return "submission"
	case StageInternalReview:
		return "internal_review"
	case StageExternalReview:
		return "external_review"
	case StageEditing:
		return "copyediting"
	case StageProduction:
		return "production"
	}
	return "unknown"
}

// Valid reports whether s is one of the configured stages.
func (s WorkflowStage) Valid() bool {
	return s >= StageSubmission && s <= StageProduction
}

// RoleID identifies a role a user group can carry. Closed set; the values
// are stable and stored in the user_groups table.
type RoleID int

const (
	RoleSiteAdmin RoleID = 1
	RoleManager   RoleID = 16
	RoleSubEditor RoleID = 17
	RoleAssistant RoleID = 4097
	RoleReviewer  RoleID = 4096
	RoleAuthor    RoleID = 65536
	RoleReader    RoleID = 1048576
)

func (r RoleID) String() string {
	switch r {
	case RoleSiteAdmin:
		return "site_admin"
	case RoleManager:
		return "manager"
	case RoleSubEditor:
		return "sub_editor"
	case RoleAssistant:
		return "assistant"
	case RoleReviewer:
		return "reviewer"
	case RoleAuthor:
		return "author"
	case RoleReader:
		return "reader"
	}
	return "unknown"
}

// AssocType scopes a record (notification, sub-editor binding, log entry)
// to the kind of object it refers to.
type AssocType int

const (
	AssocTypeSubmission AssocType = iota + 1
	AssocTypeSection
	AssocTypeCategory
	AssocTypeReviewAssignment
)

func (a AssocType) String() string {
	switch a {
	case AssocTypeSubmission:
		return "submission"
	case AssocTypeSection:
		return "section"
	case AssocTypeCategory:
		return "category"
	case AssocTypeReviewAssignment:
		return "review_assignment"
	}
	return "unknown"
}
