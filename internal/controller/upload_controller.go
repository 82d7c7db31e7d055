package controller

import (
	"errors"
	"net/http"
	"qa_forum_backend/internal/service"
	"qa_forum_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UploadController struct {
	UploadService *service.UploadService
}

func NewUploadController(uploadService *service.UploadService) *UploadController {
	return &UploadController{UploadService: uploadService}
}

// limitBody caps the multipart body a little above the file limit so
// oversized uploads fail fast.
func (c *UploadController) limitBody(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.UploadService.MaxBytes+1<<20)
}

// Upload godoc
// @Summary Upload a file
// @Description Images, PDF, text and Markdown up to 5MB.
// @Tags Upload
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File"
// @Success 201 {object} util.Response{data=service.UploadResult}
// @Failure 400 {object} util.Response "File too large or type not allowed"
// @Router /upload [post]
func (c *UploadController) Upload(ctx *gin.Context) {
	c.limitBody(ctx)
	header, err := ctx.FormFile("file")
	if err != nil {
		c.formError(ctx, err)
		return
	}

	result, err := c.UploadService.Upload(ctx.Request.Context(), header)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, "File uploaded successfully", result)
}

// UploadAvatar godoc
// @Summary Upload a new avatar
// @Tags Upload
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image"
// @Success 201 {object} util.Response{data=service.UploadResult}
// @Router /upload/avatar [post]
func (c *UploadController) UploadAvatar(ctx *gin.Context) {
	c.limitBody(ctx)
	header, err := ctx.FormFile("file")
	if err != nil {
		c.formError(ctx, err)
		return
	}

	result, err := c.UploadService.UploadAvatar(ctx.Request.Context(), util.GetUserFromContext(ctx), header)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, "Avatar updated successfully", result)
}

func (c *UploadController) formError(ctx *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		util.BadRequest(ctx, "File too large")
		return
	}
	util.BadRequest(ctx, "No file uploaded")
}
