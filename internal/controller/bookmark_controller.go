package controller

import (
	"qa_forum_backend/internal/service"
	"qa_forum_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type BookmarkController struct {
	BookmarkService *service.BookmarkService
}

func NewBookmarkController(bookmarkService *service.BookmarkService) *BookmarkController {
	return &BookmarkController{BookmarkService: bookmarkService}
}

// ListBookmarks godoc
// @Summary Bookmarked questions
// @Tags Bookmarks
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} util.Response
// @Router /bookmarks [get]
func (c *BookmarkController) ListBookmarks(ctx *gin.Context) {
	page := util.ParsePage(ctx)
	questions, total, err := c.BookmarkService.List(util.CurrentUserID(ctx), page)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, util.Paginated("bookmarks", questions, page, total, "totalBookmarks"))
}

// AddBookmark godoc
// @Summary Bookmark a question
// @Tags Bookmarks
// @Security BearerAuth
// @Produce json
// @Param questionId path string true "Question ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "Question already bookmarked"
// @Router /bookmarks/{questionId} [post]
func (c *BookmarkController) AddBookmark(ctx *gin.Context) {
	if err := c.BookmarkService.Add(util.CurrentUserID(ctx), ctx.Param("questionId")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Question bookmarked", nil)
}

// RemoveBookmark godoc
// @Summary Remove a bookmark
// @Tags Bookmarks
// @Security BearerAuth
// @Produce json
// @Param questionId path string true "Question ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "Question not in bookmarks"
// @Router /bookmarks/{questionId} [delete]
func (c *BookmarkController) RemoveBookmark(ctx *gin.Context) {
	if err := c.BookmarkService.Remove(util.CurrentUserID(ctx), ctx.Param("questionId")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Bookmark removed", nil)
}

// BookmarkStatus godoc
// @Summary Whether a question is bookmarked
// @Tags Bookmarks
// @Security BearerAuth
// @Produce json
// @Param questionId path string true "Question ID"
// @Success 200 {object} util.Response
// @Router /bookmarks/{questionId}/status [get]
func (c *BookmarkController) BookmarkStatus(ctx *gin.Context) {
	ok, err := c.BookmarkService.IsBookmarked(util.CurrentUserID(ctx), ctx.Param("questionId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"isBookmarked": ok})
}
