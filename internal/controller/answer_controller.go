package controller

import (
	"qa_forum_backend/internal/service"
	"qa_forum_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AnswerController struct {
	AnswerService *service.AnswerService
}

func NewAnswerController(answerService *service.AnswerService) *AnswerController {
	return &AnswerController{AnswerService: answerService}
}

type AnswerRequest struct {
	Body string `json:"body" binding:"required"`
}

// ListAnswers godoc
// @Summary Answers of a question
// @Description Accepted answer first, then by votes.
// @Tags Answers
// @Produce json
// @Param questionId path string true "Question ID"
// @Success 200 {object} util.Response
// @Router /answers/question/{questionId} [get]
func (c *AnswerController) ListAnswers(ctx *gin.Context) {
	answers, err := c.AnswerService.ListByQuestion(ctx.Param("questionId"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"answers": answers})
}

// CreateAnswer godoc
// @Summary Answer a question
// @Tags Answers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Question ID"
// @Param body body AnswerRequest true "Answer"
// @Success 201 {object} util.Response{data=model.Answer}
// @Failure 404 {object} util.Response
// @Router /answers/{id} [post]
func (c *AnswerController) CreateAnswer(ctx *gin.Context) {
	var req AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	// Shares the :id wildcard with the other POST routes; here it names the question.
	answer, err := c.AnswerService.Create(util.GetUserFromContext(ctx), ctx.Param("id"), req.Body)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, "Answer posted successfully", answer)
}

// UpdateAnswer godoc
// @Summary Edit an answer
// @Tags Answers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Answer ID"
// @Param body body AnswerRequest true "Answer"
// @Success 200 {object} util.Response{data=model.Answer}
// @Router /answers/{id} [put]
func (c *AnswerController) UpdateAnswer(ctx *gin.Context) {
	var req AnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	answer, err := c.AnswerService.Update(util.GetUserFromContext(ctx), ctx.Param("id"), req.Body)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Answer updated successfully", answer)
}

// DeleteAnswer godoc
// @Summary Delete an answer
// @Tags Answers
// @Security BearerAuth
// @Produce json
// @Param id path string true "Answer ID"
// @Success 200 {object} util.Response
// @Router /answers/{id} [delete]
func (c *AnswerController) DeleteAnswer(ctx *gin.Context) {
	if err := c.AnswerService.Delete(util.GetUserFromContext(ctx), ctx.Param("id")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Answer deleted successfully", nil)
}

// VoteAnswer godoc
// @Summary Vote on an answer
// @Tags Answers
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Answer ID"
// @Param body body VoteRequest true "up or down"
// @Success 200 {object} util.Response
// @Router /answers/{id}/vote [post]
func (c *AnswerController) VoteAnswer(ctx *gin.Context) {
	var req VoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	votes, err := c.AnswerService.Vote(util.GetUserFromContext(ctx), ctx.Param("id"), req.VoteType)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Vote recorded", gin.H{"votes": votes})
}

// AcceptAnswer godoc
// @Summary Accept an answer
// @Tags Answers
// @Security BearerAuth
// @Produce json
// @Param id path string true "Answer ID"
// @Success 200 {object} util.Response{data=model.Answer}
// @Failure 403 {object} util.Response "Not the question owner"
// @Router /answers/{id}/accept [post]
func (c *AnswerController) AcceptAnswer(ctx *gin.Context) {
	answer, err := c.AnswerService.Accept(util.GetUserFromContext(ctx), ctx.Param("id"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Answer accepted", answer)
}
