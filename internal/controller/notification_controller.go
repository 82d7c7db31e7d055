package controller

import (
	"qa_forum_backend/internal/service"
	"qa_forum_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type NotificationController struct {
	NotificationService *service.NotificationService
	Hub                 *service.NotificationHub
}

func NewNotificationController(notificationService *service.NotificationService, hub *service.NotificationHub) *NotificationController {
	return &NotificationController{NotificationService: notificationService, Hub: hub}
}

// ListNotifications godoc
// @Summary My notifications
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Param unreadOnly query bool false "Only unread"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} util.Response
// @Router /notifications [get]
func (c *NotificationController) ListNotifications(ctx *gin.Context) {
	page := util.ParsePage(ctx)
	unreadOnly := ctx.Query("unreadOnly") == "true"

	list, err := c.NotificationService.List(util.CurrentUserID(ctx), unreadOnly, page)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	data := util.Paginated("notifications", list.Notifications, page, list.Total, "totalNotifications")
	data["unreadCount"] = list.UnreadCount
	util.Success(ctx, data)
}

// @Summary Unread notification count
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /notifications/unread-count [get]
func (c *NotificationController) UnreadCount(ctx *gin.Context) {
	count, err := c.NotificationService.UnreadCount(util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"unreadCount": count})
}

// @Summary Mark a notification as read
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} util.Response
// @Router /notifications/{id}/read [put]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	if err := c.NotificationService.MarkRead(util.CurrentUserID(ctx), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Notification marked as read", nil)
}

// @Summary Mark all notifications as read
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /notifications/read-all [put]
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	updated, err := c.NotificationService.MarkAllRead(util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "All notifications marked as read", gin.H{"updated": updated})
}

// @Summary Delete a notification
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} util.Response
// @Router /notifications/{id} [delete]
func (c *NotificationController) DeleteNotification(ctx *gin.Context) {
	if err := c.NotificationService.Delete(util.CurrentUserID(ctx), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Notification deleted", nil)
}

// Stream godoc
// @Summary Live notification stream
// @Description Upgrades to a websocket that receives NOTIFICATION and USER_STATUS messages. Send {"type":"MARK_READ","data":{"id":"..."}} to mark one read.
// @Tags Notifications
// @Param token query string true "JWT token"
// @Success 101 {string} string "Switching Protocols"
// @Router /notifications/ws [get]
func (c *NotificationController) Stream(ctx *gin.Context) {
	userID := util.CurrentUserID(ctx)
	if userID == "" {
		util.Unauthorized(ctx)
		return
	}
	c.Hub.Serve(ctx.Writer, ctx.Request, userID)
}
