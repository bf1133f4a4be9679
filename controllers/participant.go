package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"journal-editorial-api/models"
	"journal-editorial-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GetParticipants lists the users enrolled on a submission. An optional
// stage_id query narrows the list to groups active in that stage.
func GetParticipants(c *gin.Context) {
	submissionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var stageID *models.WorkflowStage
	if raw := c.Query("stage_id"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || !models.WorkflowStage(value).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid stage_id"})
			return
		}
		stage := models.WorkflowStage(value)
		stageID = &stage
	}

	assignments, err := services.NewStageAssignmentService(nil).Participants(submissionID, stageID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load participants"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": assignments})
}

type addParticipantRequest struct {
	UserID      int `json:"user_id" binding:"required"`
	UserGroupID int `json:"user_group_id" binding:"required"`
}

// AddParticipant enrolls a user into a submission under a user group.
func AddParticipant(c *gin.Context) {
	submissionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req addParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignment, err := services.NewStageAssignmentService(nil).AddParticipant(submissionID, req.UserGroupID, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User group not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add participant"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"stage_assignment": assignment})
}
