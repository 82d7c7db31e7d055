package middleware

import (
	"errors"
	"net/http"
	"qa_forum_backend/internal/config"
	"qa_forum_backend/internal/model"
	"qa_forum_backend/internal/util"
	"qa_forum_backend/pkg/logger"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserLookup loads the account a token refers to.
type UserLookup interface {
	FindByID(id string) (*model.User, error)
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	// Browsers cannot set headers on a websocket handshake.
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return c.Query("token")
	}
	return ""
}

// resolveUser returns the user behind the request token. A nil user with a nil
// error means no token was sent.
func resolveUser(c *gin.Context, cfg *config.Config, users UserLookup) (*model.User, *util.Claims, error) {
	tokenString := bearerToken(c)
	if tokenString == "" {
		return nil, nil, nil
	}

	claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
	if err != nil {
		return nil, nil, err
	}

	user, err := users.FindByID(claims.UserID)
	if err != nil {
		return nil, nil, err
	}
	return user, claims, nil
}

func AuthMiddleware(cfg *config.Config, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, claims, err := resolveUser(c, cfg, users)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				util.Error(c, http.StatusUnauthorized, "User no longer exists")
			} else {
				util.Error(c, http.StatusUnauthorized, "Not authorized, token failed")
			}
			c.Abort()
			return
		}
		if user == nil {
			util.Error(c, http.StatusUnauthorized, "Not authorized, no token")
			c.Abort()
			return
		}

		if user.IsBanned {
			util.Error(c, http.StatusForbidden, "Account has been banned")
			c.Abort()
			return
		}
		if user.IsSuspended(time.Now()) {
			util.Error(c, http.StatusForbidden, "Account is suspended until "+user.SuspendedUntil.Format(time.RFC3339))
			c.Abort()
			return
		}

		c.Set(util.ContextClaimsKey, claims)
		c.Set(util.ContextUserKey, user)
		c.Next()
	}
}

// TryAuthMiddleware attaches the user when a valid token is present and
// otherwise lets the request through anonymously.
func TryAuthMiddleware(cfg *config.Config, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, claims, err := resolveUser(c, cfg, users)
		if err == nil && user != nil && !user.IsBanned {
			c.Set(util.ContextClaimsKey, claims)
			c.Set(util.ContextUserKey, user)
		}
		c.Next()
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		if !user.IsAdmin {
			util.Error(c, http.StatusForbidden, "Admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

type UserActivityRepo interface {
	UpdateLastSeen(userID string) error
}

const lastSeenInterval = 5 * time.Minute

func ActivityMiddleware(repo UserActivityRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user != nil && (user.LastSeen == nil || time.Since(*user.LastSeen) > lastSeenInterval) {
			userID := user.ID
			go func() {
				if err := repo.UpdateLastSeen(userID); err != nil {
					logger.Log.Warn("Failed to update last seen", zap.String("userId", userID), zap.Error(err))
				}
			}()
		}
		c.Next()
	}
}
