package controller

import (
	"net/http"
	"qa_forum_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB        *gorm.DB
	StartedAt time.Time
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{DB: db, StartedAt: time.Now()}
}

// @Summary Health check
// @Description Reports service and database status
// @Tags System
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response "Database unavailable"
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	if err := sqlDB.PingContext(ctx.Request.Context()); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"uptime": time.Since(c.StartedAt).Round(time.Second).String(),
		"components": gin.H{
			"database": "up",
		},
	})
}

// Info describes the API surface.
func (c *HealthController) Info(ctx *gin.Context) {
	util.SuccessMessage(ctx, "Q&A Forum API", gin.H{
		"version": "1.0.0",
		"docs":    "/swagger/index.html",
		"endpoints": gin.H{
			"auth":          "/api/auth",
			"questions":     "/api/questions",
			"answers":       "/api/answers",
			"comments":      "/api/comments",
			"bookmarks":     "/api/bookmarks",
			"users":         "/api/users",
			"friends":       "/api/friends",
			"notifications": "/api/notifications",
			"reports":       "/api/reports",
			"admin":         "/api/admin",
			"ai":            "/api/ai",
			"upload":        "/api/upload",
		},
	})
}
