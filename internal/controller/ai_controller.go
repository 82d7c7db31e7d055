package controller

import (
	"qa_forum_backend/internal/service"
	"qa_forum_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AIController struct {
	AIService *service.AIService
}

func NewAIController(aiService *service.AIService) *AIController {
	return &AIController{AIService: aiService}
}

type AIQuestionRequest struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
}

type AIChatRequest struct {
	Message string `json:"message" binding:"required,max=4000"`
}

// SuggestAnswer godoc
// @Summary Draft an answer with AI
// @Tags AI
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body AIQuestionRequest true "Question"
// @Success 200 {object} util.Response
// @Failure 502 {object} util.Response "AI service error"
// @Failure 503 {object} util.Response "AI not configured"
// @Router /ai/suggest-answer [post]
func (c *AIController) SuggestAnswer(ctx *gin.Context) {
	var req AIQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	suggestion, err := c.AIService.SuggestAnswer(ctx.Request.Context(), req.Title, req.Body, req.Tags)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"suggestion": suggestion})
}

// SuggestTags godoc
// @Summary Suggest up to five tags
// @Tags AI
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body AIQuestionRequest true "Question"
// @Success 200 {object} util.Response
// @Router /ai/suggest-tags [post]
func (c *AIController) SuggestTags(ctx *gin.Context) {
	var req AIQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	tags, err := c.AIService.SuggestTags(ctx.Request.Context(), req.Title, req.Body)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"tags": tags})
}

// ImproveQuestion godoc
// @Summary Suggestions to improve a question
// @Tags AI
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body AIQuestionRequest true "Question"
// @Success 200 {object} util.Response
// @Router /ai/improve-question [post]
func (c *AIController) ImproveQuestion(ctx *gin.Context) {
	var req AIQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	suggestions, err := c.AIService.ImproveQuestion(ctx.Request.Context(), req.Title, req.Body)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"suggestions": suggestions})
}

// Chat godoc
// @Summary Ask the assistant
// @Tags AI
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body AIChatRequest true "Message"
// @Success 200 {object} util.Response
// @Router /ai/chat [post]
func (c *AIController) Chat(ctx *gin.Context) {
	var req AIChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	reply, err := c.AIService.Chat(ctx.Request.Context(), req.Message)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"reply": reply})
}
