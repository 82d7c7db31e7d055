package util

import (
	"errors"
	"net/http"
	"qa_forum_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AppError carries the HTTP status a service failure should surface as.
type AppError struct {
	Status  int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(status int, message string) *AppError {
	return &AppError{Status: status, Message: message}
}

func ErrBadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message)
}

func ErrUnauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, message)
}

func ErrForbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, message)
}

func ErrNotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, message)
}

func ErrUnavailable(message string) *AppError {
	return NewAppError(http.StatusServiceUnavailable, message)
}

func ErrTooManyRequests(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, message)
}

var (
	ErrInvalidCredentials = ErrUnauthorized("Invalid credentials")
	ErrEmailRegistered    = ErrBadRequest("Email already registered")
	ErrUsernameTaken      = ErrBadRequest("Username already taken")
	ErrInvalidToken       = ErrBadRequest("Invalid or expired token")
	ErrNotOwner           = ErrForbidden("Not authorized to modify this content")
	ErrSelfVote           = ErrBadRequest("You cannot vote on your own content")
	ErrInvalidVoteType    = ErrBadRequest("Vote type must be 'up' or 'down'")
	ErrAccountBanned      = ErrForbidden("Account has been banned")
	ErrAIUnavailable      = ErrUnavailable("AI service is not configured")
	ErrAcceptConflict     = NewAppError(http.StatusConflict, "Another answer was accepted at the same time, please retry")
)

// StatusOf resolves the HTTP status and client message for err.
func StatusOf(err error) (int, string) {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
		return appErr.Status, appErr.Message
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "Resource not found"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusBadRequest, "Duplicate value"
	case errors.Is(err, jwt.ErrTokenExpired):
		return http.StatusUnauthorized, "Token expired"
	case errors.Is(err, jwt.ErrTokenMalformed), errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return http.StatusUnauthorized, "Invalid token"
	}
	return http.StatusInternalServerError, "Internal server error"
}

// HandleError writes the response for a failed operation and logs anything
// that is not a known client error.
func HandleError(c *gin.Context, err error) {
	status, message := StatusOf(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		LogInternalError(c, err)
		return
	}
	Error(c, status, message)
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.Error(err),
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
	)
	InternalServerError(c)
}
