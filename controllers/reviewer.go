package controllers

import (
	"errors"
	"net/http"
	"time"

	"journal-editorial-api/models"
	"journal-editorial-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type reviewerGridRow struct {
	ReviewAssignmentID int                        `json:"review_assignment_id"`
	ReviewerName       string                     `json:"reviewer_name"`
	Round              int                        `json:"round"`
	Status             services.ReviewStatusLabel `json:"status"`
	CanViewReview      bool                       `json:"can_view_review"`
}

// GetReviewerGrid lists a submission's review assignments with their
// derived status labels.
func GetReviewerGrid(c *gin.Context) {
	submissionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	assignments, err := services.NewReviewService(nil).ListForSubmission(submissionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load review assignments"})
		return
	}

	rows := make([]reviewerGridRow, 0, len(assignments))
	for i := range assignments {
		assignment := &assignments[i]
		reviewerName := ""
		if assignment.Reviewer != nil {
			reviewerName = assignment.Reviewer.FullName()
		}
		rows = append(rows, reviewerGridRow{
			ReviewAssignmentID: assignment.ReviewAssignmentID,
			ReviewerName:       reviewerName,
			Round:              assignment.Round,
			Status:             services.ReviewStatusLabelFor(assignment),
			CanViewReview:      services.CanViewReview(assignment.Status()),
		})
	}

	c.JSON(http.StatusOK, gin.H{"items": rows})
}

type inviteReviewerRequest struct {
	ReviewerID      int        `json:"reviewer_id" binding:"required"`
	StageID         int        `json:"stage_id" binding:"required"`
	Round           int        `json:"round" binding:"required"`
	ReviewMethod    int        `json:"review_method"`
	DateResponseDue *time.Time `json:"date_response_due"`
	DateDue         *time.Time `json:"date_due"`
}

// InviteReviewer creates a review assignment and sends the request.
func InviteReviewer(c *gin.Context) {
	submissionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	var req inviteReviewerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ReviewMethod == 0 {
		req.ReviewMethod = models.ReviewMethodDoubleAnonymous
	}

	assignment, err := services.NewReviewService(nil).Invite(
		submissionID, req.ReviewerID, models.WorkflowStage(req.StageID),
		req.Round, req.ReviewMethod, req.DateResponseDue, req.DateDue, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotReviewStage):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrReviewerAlreadyAssigned):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Submission or reviewer not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to invite reviewer"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"review_assignment": assignment})
}

func respondReviewMutation(c *gin.Context, assignment *models.ReviewAssignment, err error) {
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Review assignment not found"})
		case errors.Is(err, services.ErrNotAssignedReviewer):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrReviewAssignmentTerminal),
			errors.Is(err, services.ErrReviewAlreadyResponded),
			errors.Is(err, services.ErrReviewNotAccepted),
			errors.Is(err, services.ErrReviewNotReceived),
			errors.Is(err, services.ErrReviewNotConfirmed),
			errors.Is(err, services.ErrInvalidRecommendation):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update review assignment"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"review_assignment": assignment,
		"status":            services.ReviewStatusLabelFor(assignment),
	})
}

// AcceptReview records the current reviewer accepting their request.
func AcceptReview(c *gin.Context) {
	reviewAssignmentID, ok := parseIDParam(c, "reviewId")
	if !ok {
		return
	}
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	assignment, err := services.NewReviewService(nil).Accept(reviewAssignmentID, userID)
	respondReviewMutation(c, assignment, err)
}

// DeclineReview records the current reviewer declining their request.
func DeclineReview(c *gin.Context) {
	reviewAssignmentID, ok := parseIDParam(c, "reviewId")
	if !ok {
		return
	}
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	assignment, err := services.NewReviewService(nil).Decline(reviewAssignmentID, userID)
	respondReviewMutation(c, assignment, err)
}

// SubmitReview records the reviewer returning their review with a
// recommendation.
func SubmitReview(c *gin.Context) {
	reviewAssignmentID, ok := parseIDParam(c, "reviewId")
	if !ok {
		return
	}
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	var req struct {
		Recommendation int `json:"recommendation" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignment, err := services.NewReviewService(nil).SubmitReview(
		reviewAssignmentID, userID, models.ReviewerRecommendation(req.Recommendation))
	respondReviewMutation(c, assignment, err)
}

// ConfirmReview marks a received review as complete.
func ConfirmReview(c *gin.Context) {
	reviewAssignmentID, ok := parseIDParam(c, "reviewId")
	if !ok {
		return
	}
	userID, _ := getCurrentUserID(c)
	assignment, err := services.NewReviewService(nil).ConfirmReview(reviewAssignmentID, userID)
	respondReviewMutation(c, assignment, err)
}

// ThankReviewer closes a completed review with a thank-you.
func ThankReviewer(c *gin.Context) {
	reviewAssignmentID, ok := parseIDParam(c, "reviewId")
	if !ok {
		return
	}
	userID, _ := getCurrentUserID(c)
	assignment, err := services.NewReviewService(nil).ThankReviewer(reviewAssignmentID, userID)
	respondReviewMutation(c, assignment, err)
}

// CancelReview withdraws a review request.
func CancelReview(c *gin.Context) {
	reviewAssignmentID, ok := parseIDParam(c, "reviewId")
	if !ok {
		return
	}
	userID, _ := getCurrentUserID(c)
	assignment, err := services.NewReviewService(nil).Cancel(reviewAssignmentID, userID)
	respondReviewMutation(c, assignment, err)
}
