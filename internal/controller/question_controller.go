package controller

import (
	"qa_forum_backend/internal/repository"
	"qa_forum_backend/internal/service"
	"qa_forum_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

// swagger:model QuestionRequest
type QuestionRequest struct {
	Title string   `json:"title" binding:"required"`
	Body  string   `json:"body" binding:"required"`
	Tags  []string `json:"tags"`
}

type UpdateQuestionRequest struct {
	Title string    `json:"title"`
	Body  string    `json:"body"`
	Tags  *[]string `json:"tags"`
}

type VoteRequest struct {
	VoteType string `json:"voteType" binding:"required"`
}

// ListQuestions godoc
// @Summary List questions
// @Tags Questions
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size (max 50)" default(10)
// @Param sort query string false "createdAt | votes | answers | views"
// @Param order query string false "asc | desc"
// @Param tags query string false "Comma separated tags, any match"
// @Param search query string false "Full text search"
// @Param userId query string false "Author id"
// @Success 200 {object} util.Response
// @Router /questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	page := util.ParsePage(ctx)
	filter := repository.QuestionFilter{
		Tags:   util.SplitCSV(ctx.Query("tags")),
		Search: ctx.Query("search"),
		UserID: ctx.Query("userId"),
		Sort:   ctx.DefaultQuery("sort", "createdAt"),
		Order:  ctx.DefaultQuery("order", "desc"),
	}

	questions, total, err := c.QuestionService.List(filter, page)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, util.Paginated("questions", questions, page, total, "totalQuestions"))
}

// PopularTags godoc
// @Summary Most used tags
// @Tags Questions
// @Produce json
// @Param limit query int false "Number of tags" default(20)
// @Success 200 {object} util.Response
// @Router /questions/tags [get]
func (c *QuestionController) PopularTags(ctx *gin.Context) {
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	tags, err := c.QuestionService.PopularTags(limit)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"tags": tags})
}

// GetQuestion godoc
// @Summary Question with answers and comments
// @Description Counts a view, at most once per viewer every ten minutes when Redis is enabled.
// @Tags Questions
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} util.Response{data=service.QuestionDetail}
// @Failure 404 {object} util.Response
// @Router /questions/{id} [get]
func (c *QuestionController) GetQuestion(ctx *gin.Context) {
	viewer := util.CurrentUserID(ctx)
	if viewer == "" {
		viewer = ctx.ClientIP()
	}

	detail, err := c.QuestionService.Get(ctx.Request.Context(), ctx.Param("id"), viewer)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// CreateQuestion godoc
// @Summary Ask a question
// @Tags Questions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body QuestionRequest true "Question"
// @Success 201 {object} util.Response{data=model.Question}
// @Failure 400 {object} util.Response
// @Router /questions [post]
func (c *QuestionController) CreateQuestion(ctx *gin.Context) {
	var req QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.QuestionService.Create(util.GetUserFromContext(ctx), service.QuestionInput{
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, "Question created successfully", question)
}

// UpdateQuestion godoc
// @Summary Edit a question
// @Tags Questions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Param body body UpdateQuestionRequest true "Fields to change"
// @Success 200 {object} util.Response{data=model.Question}
// @Failure 403 {object} util.Response "Not the author"
// @Router /questions/{id} [put]
func (c *QuestionController) UpdateQuestion(ctx *gin.Context) {
	var req UpdateQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	in := service.QuestionInput{Title: req.Title, Body: req.Body}
	if req.Tags != nil {
		in.Tags = *req.Tags
	}
	question, err := c.QuestionService.Update(util.GetUserFromContext(ctx), ctx.Param("id"), in, req.Tags != nil)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Question updated successfully", question)
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Description Removes its answers, comments, bookmarks and tags.
// @Tags Questions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Question ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "Not the author"
// @Router /questions/{id} [delete]
func (c *QuestionController) DeleteQuestion(ctx *gin.Context) {
	if err := c.QuestionService.Delete(util.GetUserFromContext(ctx), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Question deleted successfully", nil)
}

// VoteQuestion godoc
// @Summary Vote on a question
// @Tags Questions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Param body body VoteRequest true "up or down"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "Own question or bad vote type"
// @Router /questions/{id}/vote [post]
func (c *QuestionController) VoteQuestion(ctx *gin.Context) {
	var req VoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	votes, err := c.QuestionService.Vote(util.GetUserFromContext(ctx), ctx.Param("id"), req.VoteType)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Vote recorded", gin.H{"votes": votes})
}
