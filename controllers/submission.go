package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"journal-editorial-api/middleware"
	"journal-editorial-api/models"
	"journal-editorial-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

/* ==========================
   Helpers
   ========================== */

func getCurrentUserID(c *gin.Context) (int, bool) {
	if v, ok := c.Get("userID"); ok {
		switch t := v.(type) {
		case int:
			return t, true
		case int64:
			return int(t), true
		case float64:
			return int(t), true
		case uint:
			return int(t), true
		}
	}
	return 0, false
}

func parseIDParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

func parseIntList(raw string) []int {
	var values []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if v, err := strconv.Atoi(part); err == nil {
			values = append(values, v)
		}
	}
	return values
}

/* ==========================
   Submission endpoints
   ========================== */

// GetSubmissions lists submissions. Managers see every submission in the
// context; anyone else is narrowed to submissions they are assigned to.
func GetSubmissions(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	contextID, _ := strconv.Atoi(c.DefaultQuery("context_id", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("count", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := services.SubmissionFilter{
		ContextID: contextID,
		Status:    parseIntList(c.Query("status")),
	}
	for _, stageID := range parseIntList(c.Query("stage_ids")) {
		stage := models.WorkflowStage(stageID)
		if !stage.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stage id"})
			return
		}
		filter.StageIDs = append(filter.StageIDs, stage)
	}

	isManager, err := middleware.HasRole(userID, contextID, models.RoleManager, models.RoleSiteAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check permissions"})
		return
	}
	if !isManager {
		filter.AssignedTo = userID
	} else if assignedTo, convErr := strconv.Atoi(c.Query("assigned_to")); convErr == nil {
		filter.AssignedTo = assignedTo
	}

	submissions, total, err := services.NewSubmissionService(nil).List(filter, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list submissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      submissions,
		"item_count": total,
	})
}

// GetSubmission returns one submission with its current publication.
func GetSubmission(c *gin.Context) {
	submissionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	submission, err := services.NewSubmissionService(nil).Get(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load submission"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

// SaveSubmissionStep records completion of one submission wizard step.
func SaveSubmissionStep(c *gin.Context) {
	submissionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid step"})
		return
	}

	submission, err := services.NewSubmissionService(nil).AdvanceStep(submissionID, step)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidSubmissionStep):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save step"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

// FinalizeSubmission completes the submission wizard: the submission is
// stamped as submitted and the default stage participants are enrolled and
// notified.
func FinalizeSubmission(c *gin.Context) {
	submissionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	svc := services.NewSubmissionService(nil)
	submission, outcome, err := svc.Finalize(submissionID, userID)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		case errors.Is(err, services.ErrSubmissionIncomplete):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to finalize submission"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submission": submission,
		"assignment": outcome,
		"message":    "Submission completed",
	})
}

// DeleteSubmission removes a submission. Authors may withdraw their own
// incomplete submissions; managers may delete any.
func DeleteSubmission(c *gin.Context) {
	submissionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	svc := services.NewSubmissionService(nil)
	submission, err := svc.Get(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load submission"})
		return
	}

	isManager, err := middleware.HasRole(userID, submission.ContextID, models.RoleManager, models.RoleSiteAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check permissions"})
		return
	}
	if !isManager {
		if submission.SubmitterID != userID || !submission.Incomplete() {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only incomplete submissions can be withdrawn by their author"})
			return
		}
	}

	if err := svc.Delete(submissionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete submission"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Submission deleted"})
}

// GetSubmissionEventLog lists a submission's history entries.
func GetSubmissionEventLog(c *gin.Context) {
	submissionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("count", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, total, err := services.NewEventLogService(nil).ListForSubmission(submissionID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load event log"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      entries,
		"item_count": total,
	})
}
