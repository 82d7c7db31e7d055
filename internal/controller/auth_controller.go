package controller

import (
	"qa_forum_backend/internal/service"
	"qa_forum_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// swagger:model RegisterRequest
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username"`
	FullName *string `json:"fullName"`
	Bio      *string `json:"bio" binding:"omitempty,max=500"`
	Location *string `json:"location" binding:"omitempty,max=100"`
	Website  *string `json:"website" binding:"omitempty,max=255"`
	Avatar   *string `json:"avatar" binding:"omitempty,max=255"`
	Github   *string `json:"github" binding:"omitempty,max=100"`
	Twitter  *string `json:"twitter" binding:"omitempty,max=100"`
}

type UpdateSettingsRequest struct {
	EmailNotifications *bool   `json:"emailNotifications"`
	ShowEmail          *bool   `json:"showEmail"`
	Theme              *string `json:"theme"`
	Language           *string `json:"language" binding:"omitempty,max=10"`
}

// Register godoc
// @Summary Register a new account
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Account details"
// @Success 201 {object} util.Response{data=service.AuthResult}
// @Failure 400 {object} util.Response "Validation failed or email/username taken"
// @Router /auth/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AuthService.Register(service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.Created(ctx, "Registration successful. Please check your email to verify your account.", result)
}

// Login godoc
// @Summary Log in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} util.Response{data=service.AuthResult}
// @Failure 401 {object} util.Response "Invalid credentials"
// @Failure 403 {object} util.Response "Account banned"
// @Router /auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.AuthService.Login(req.Email, req.Password)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}

	util.SuccessMessage(ctx, "Login successful", result)
}

// VerifyEmail godoc
// @Summary Confirm an email address
// @Tags Auth
// @Produce json
// @Param token path string true "Verification token"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "Invalid or expired token"
// @Router /auth/verify-email/{token} [get]
func (c *AuthController) VerifyEmail(ctx *gin.Context) {
	if err := c.AuthService.VerifyEmail(ctx.Param("token")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Email verified successfully", nil)
}

// ResendVerification godoc
// @Summary Send a new verification email
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "Already verified"
// @Router /auth/resend-verification [post]
func (c *AuthController) ResendVerification(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if err := c.AuthService.ResendVerification(user); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Verification email sent", nil)
}

// ForgotPassword godoc
// @Summary Request a password reset link
// @Description Always answers with the same message whether or not the email exists.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body ForgotPasswordRequest true "Email"
// @Success 200 {object} util.Response
// @Failure 429 {object} util.Response "Too many requests"
// @Router /auth/forgot-password [post]
func (c *AuthController) ForgotPassword(ctx *gin.Context) {
	var req ForgotPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.AuthService.ForgotPassword(ctx.Request.Context(), req.Email); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "If an account with that email exists, a password reset link has been sent", nil)
}

// ResetPassword godoc
// @Summary Set a new password with a reset token
// @Tags Auth
// @Accept json
// @Produce json
// @Param token path string true "Reset token"
// @Param body body ResetPasswordRequest true "New password"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "Invalid or expired token"
// @Router /auth/reset-password/{token} [post]
func (c *AuthController) ResetPassword(ctx *gin.Context) {
	var req ResetPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.AuthService.ResetPassword(ctx.Param("token"), req.Password); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Password has been reset successfully", nil)
}

// Me godoc
// @Summary Current user
// @Tags Auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} util.Response{data=model.User}
// @Router /auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	util.Success(ctx, util.GetUserFromContext(ctx))
}

// UpdateProfile godoc
// @Summary Update profile fields
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} util.Response{data=model.User}
// @Router /auth/profile [put]
func (c *AuthController) UpdateProfile(ctx *gin.Context) {
	var req UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.UpdateProfile(util.GetUserFromContext(ctx), service.ProfileInput{
		Username: req.Username,
		FullName: req.FullName,
		Bio:      req.Bio,
		Location: req.Location,
		Website:  req.Website,
		Avatar:   req.Avatar,
		Github:   req.Github,
		Twitter:  req.Twitter,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Profile updated", user)
}

// UpdateSettings godoc
// @Summary Update account settings
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body UpdateSettingsRequest true "Settings to change"
// @Success 200 {object} util.Response{data=model.User}
// @Router /auth/settings [put]
func (c *AuthController) UpdateSettings(ctx *gin.Context) {
	var req UpdateSettingsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.UpdateSettings(util.GetUserFromContext(ctx), service.SettingsInput{
		EmailNotifications: req.EmailNotifications,
		ShowEmail:          req.ShowEmail,
		Theme:              req.Theme,
		Language:           req.Language,
	})
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Settings updated", user)
}

// ChangePassword godoc
// @Summary Change password
// @Tags Auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body ChangePasswordRequest true "Current and new password"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "Current password is incorrect"
// @Router /auth/change-password [put]
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	var req ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.AuthService.ChangePassword(util.GetUserFromContext(ctx), req.CurrentPassword, req.NewPassword); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "Password changed successfully", nil)
}
