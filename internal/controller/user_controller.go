package controller

import (
	"qa_forum_backend/internal/service"
	"qa_forum_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// ListUsers godoc
// @Summary Browse users
// @Description sort=reputation gives the leaderboard.
// @Tags Users
// @Produce json
// @Param search query string false "Username or name"
// @Param sort query string false "reputation | createdAt | username"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} util.Response
// @Router /users [get]
func (c *UserController) ListUsers(ctx *gin.Context) {
	page := util.ParsePage(ctx)
	users, total, err := c.UserService.List(ctx.Query("search"), ctx.DefaultQuery("sort", "reputation"), page)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, util.Paginated("users", users, page, total, "totalUsers"))
}

// GetUser godoc
// @Summary Public profile
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} util.Response{data=service.PublicUser}
// @Failure 404 {object} util.Response
// @Router /users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	profile, err := c.UserService.Profile(ctx.Param("id"), util.CurrentUserID(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, profile)
}

// GetUserQuestions godoc
// @Summary Questions asked by a user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} util.Response
// @Router /users/{id}/questions [get]
func (c *UserController) GetUserQuestions(ctx *gin.Context) {
	page := util.ParsePage(ctx)
	questions, total, err := c.UserService.Questions(ctx.Param("id"), page)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, util.Paginated("questions", questions, page, total, "totalQuestions"))
}

// GetUserAnswers godoc
// @Summary Answers written by a user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} util.Response
// @Router /users/{id}/answers [get]
func (c *UserController) GetUserAnswers(ctx *gin.Context) {
	page := util.ParsePage(ctx)
	answers, total, err := c.UserService.Answers(ctx.Param("id"), page)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, util.Paginated("answers", answers, page, total, "totalAnswers"))
}

// Follow godoc
// @Summary Follow a user
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "Already following"
// @Router /users/{id}/follow [post]
func (c *UserController) Follow(ctx *gin.Context) {
	if err := c.UserService.Follow(util.GetUserFromContext(ctx), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "User followed", nil)
}

// Unfollow godoc
// @Summary Unfollow a user
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "Not following this user"
// @Router /users/{id}/follow [delete]
func (c *UserController) Unfollow(ctx *gin.Context) {
	if err := c.UserService.Unfollow(util.GetUserFromContext(ctx), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "User unfollowed", nil)
}

// @Summary Followers of a user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} util.Response
// @Router /users/{id}/followers [get]
func (c *UserController) Followers(ctx *gin.Context) {
	users, err := c.UserService.Followers(ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"followers": users, "count": len(users)})
}

// @Summary Users a user follows
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} util.Response
// @Router /users/{id}/following [get]
func (c *UserController) Following(ctx *gin.Context) {
	users, err := c.UserService.Following(ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"following": users, "count": len(users)})
}
