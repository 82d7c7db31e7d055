package controller

import (
	"qa_forum_backend/internal/service"
	"qa_forum_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	ReportService *service.ReportService
}

func NewReportController(reportService *service.ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

type ReportRequest struct {
	ContentID   string `json:"contentId" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	Reason      string `json:"reason" binding:"required"`
	Description string `json:"description" binding:"max=1000"`
}

// CreateReport godoc
// @Summary Report content for moderation
// @Tags Reports
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body ReportRequest true "Report"
// @Success 201 {object} util.Response{data=model.Report}
// @Failure 400 {object} util.Response "Already reported"
// @Failure 404 {object} util.Response "Content not found"
// @Router /reports [post]
func (c *ReportController) CreateReport(ctx *gin.Context) {
	var req ReportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	report, err := c.ReportService.Create(util.GetUserFromContext(ctx), service.ReportInput{
		ContentID:   req.ContentID,
		ContentType: req.ContentType,
		Reason:      req.Reason,
		Description: req.Description,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, "Report submitted successfully", report)
}
