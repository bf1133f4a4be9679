package controllers

import (
	"net/http"

	"journal-editorial-api/models"

	"github.com/gin-gonic/gin"
)

type workflowStageChoice struct {
	StageID int    `json:"stage_id"`
	Label   string `json:"label"`
}

// GetWorkflowStages lists the workflow stages, for stage filter dropdowns.
func GetWorkflowStages(c *gin.Context) {
	stages := models.Stages()
	items := make([]workflowStageChoice, 0, len(stages))
	for _, stage := range stages {
		items = append(items, workflowStageChoice{
			StageID: int(stage),
			Label:   stage.String(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
