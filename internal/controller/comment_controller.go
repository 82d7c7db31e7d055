package controller

import (
	"qa_forum_backend/internal/service"
	"qa_forum_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CommentController struct {
	CommentService *service.CommentService
}

func NewCommentController(commentService *service.CommentService) *CommentController {
	return &CommentController{CommentService: commentService}
}

type CreateCommentRequest struct {
	ContentID   string `json:"contentId" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	Body        string `json:"body" binding:"required"`
}

type UpdateCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

// ListComments godoc
// @Summary Comments on a question or answer
// @Tags Comments
// @Produce json
// @Param contentType path string true "question | answer"
// @Param contentId path string true "Content ID"
// @Success 200 {object} util.Response
// @Router /comments/{contentType}/{contentId} [get]
func (c *CommentController) ListComments(ctx *gin.Context) {
	comments, err := c.CommentService.List(ctx.Param("contentType"), ctx.Param("contentId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"comments": comments})
}

// CreateComment godoc
// @Summary Comment on a question or answer
// @Tags Comments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body CreateCommentRequest true "Comment"
// @Success 201 {object} util.Response{data=model.Comment}
// @Router /comments [post]
func (c *CommentController) CreateComment(ctx *gin.Context) {
	var req CreateCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	comment, err := c.CommentService.Create(util.GetUserFromContext(ctx), req.ContentType, req.ContentID, req.Body)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, "Comment added successfully", comment)
}

// UpdateComment godoc
// @Summary Edit a comment
// @Tags Comments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Comment ID"
// @Param body body UpdateCommentRequest true "Comment"
// @Success 200 {object} util.Response{data=model.Comment}
// @Router /comments/{id} [put]
func (c *CommentController) UpdateComment(ctx *gin.Context) {
	var req UpdateCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	comment, err := c.CommentService.Update(util.GetUserFromContext(ctx), ctx.Param("id"), req.Body)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Comment updated successfully", comment)
}

// DeleteComment godoc
// @Summary Delete a comment
// @Tags Comments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Comment ID"
// @Success 200 {object} util.Response
// @Router /comments/{id} [delete]
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	if err := c.CommentService.Delete(util.GetUserFromContext(ctx), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Comment deleted successfully", nil)
}
