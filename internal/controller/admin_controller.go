package controller

import (
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/service"
	"qa_forum_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AdminController struct {
	AdminService *service.AdminService
}

func NewAdminController(adminService *service.AdminService) *AdminController {
	return &AdminController{AdminService: adminService}
}

type UserActionRequest struct {
	Action       string `json:"action" binding:"required"`
	DurationDays int    `json:"durationDays"`
}

type ResolveReportRequest struct {
	Action string `json:"action" binding:"required"`
}

// GetStats godoc
// @Summary Dashboard statistics
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=service.Stats}
// @Router /admin/stats [get]
func (c *AdminController) GetStats(ctx *gin.Context) {
	stats, err := c.AdminService.Stats()
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// ListUsers godoc
// @Summary Users for moderation
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param search query string false "Username, email or name"
// @Param role query string false "admin | user"
// @Param status query string false "banned | suspended | unverified | active"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} util.Response
// @Router /admin/users [get]
func (c *AdminController) ListUsers(ctx *gin.Context) {
	page := util.ParsePage(ctx)
	filter := repository.UserFilter{
		Search: ctx.Query("search"),
		Role:   ctx.Query("role"),
		Status: ctx.Query("status"),
		Sort:   ctx.DefaultQuery("sort", "createdAt"),
	}

	users, total, err := c.AdminService.ListUsers(filter, page)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, util.Paginated("users", users, page, total, "totalUsers"))
}

// @Summary User detail
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} util.Response{data=service.AdminUserDetail}
// @Router /admin/users/{id} [get]
func (c *AdminController) GetUser(ctx *gin.Context) {
	detail, err := c.AdminService.GetUser(ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// UserAction godoc
// @Summary Apply a moderation action to a user
// @Description Actions: promote, demote, verify, unverify, ban, unban, suspend, unsuspend, reset_password.
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param body body UserActionRequest true "Action"
// @Success 200 {object} util.Response{data=service.UserActionResult}
// @Failure 400 {object} util.Response "Invalid action or self target"
// @Router /admin/users/{id}/action [put]
func (c *AdminController) UserAction(ctx *gin.Context) {
	var req UserActionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AdminService.ApplyUserAction(util.GetUserFromContext(ctx), ctx.Param("id"), service.UserActionInput{
		Action:       req.Action,
		DurationDays: req.DurationDays,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Action applied successfully", result)
}

// DeleteUser godoc
// @Summary Delete a user and all their content
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} util.Response
// @Router /admin/users/{id} [delete]
func (c *AdminController) DeleteUser(ctx *gin.Context) {
	if err := c.AdminService.DeleteUser(util.GetUserFromContext(ctx), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "User deleted successfully", nil)
}

// @Summary Reports queue
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param status query string false "pending | resolved"
// @Success 200 {object} util.Response
// @Router /admin/reports [get]
func (c *AdminController) ListReports(ctx *gin.Context) {
	page := util.ParsePage(ctx)
	reports, total, err := c.AdminService.ListReports(ctx.Query("status"), page)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, util.Paginated("reports", reports, page, total, "totalReports"))
}

// ResolveReport godoc
// @Summary Resolve a report
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param body body ResolveReportRequest true "dismiss | delete_content"
// @Success 200 {object} util.Response{data=model.Report}
// @Failure 400 {object} util.Response "Already resolved"
// @Router /admin/reports/{id}/resolve [put]
func (c *AdminController) ResolveReport(ctx *gin.Context) {
	var req ResolveReportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	report, err := c.AdminService.ResolveReport(util.GetUserFromContext(ctx), ctx.Param("id"), req.Action)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Report resolved", report)
}

// @Summary Delete any question, answer or comment
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param contentType path string true "question | answer | comment"
// @Param id path string true "Content ID"
// @Success 200 {object} util.Response
// @Router /admin/content/{contentType}/{id} [delete]
func (c *AdminController) DeleteContent(ctx *gin.Context) {
	if err := c.AdminService.DeleteContent(util.GetUserFromContext(ctx), ctx.Param("contentType"), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Content deleted successfully", nil)
}

// @Summary Questions for moderation
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param search query string false "Search"
// @Success 200 {object} util.Response
// @Router /admin/questions [get]
func (c *AdminController) ListQuestions(ctx *gin.Context) {
	page := util.ParsePage(ctx)
	questions, total, err := c.AdminService.ListQuestions(ctx.Query("search"), page)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, util.Paginated("questions", questions, page, total, "totalQuestions"))
}
