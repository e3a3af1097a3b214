package http

import (
	"strings"

	"github.com/aifahao/streamticket/internal/apperr"
	"github.com/aifahao/streamticket/internal/http/response"
	"github.com/aifahao/streamticket/internal/models"
	"github.com/aifahao/streamticket/internal/security"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Context keys set by RequireUser.
const (
	ContextUserID  = "userID"
	ContextIsAdmin = "isAdmin"
)

// RequireUser validates the bearer token and reloads the user on every request,
// so role and disabled changes apply to the very next call.
func RequireUser(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Abort(c, apperr.Unauthenticated("missing authorization header"))
			return
		}
		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			response.Abort(c, apperr.Unauthenticated("invalid authorization format"))
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			response.Abort(c, apperr.Unauthenticated("empty token"))
			return
		}

		claims, errJWT := security.ParseToken(jwtSecret, token)
		if errJWT != nil {
			response.Abort(c, apperr.Unauthenticated("%s", errJWT.Error()))
			return
		}

		var users []models.User
		if errFind := db.WithContext(c.Request.Context()).
			Select("id", "username", "is_admin", "disabled").
			Where("id = ?", claims.UserID).
			Limit(1).
			Find(&users).Error; errFind != nil {
			response.Abort(c, apperr.FromStorage(errFind, "user"))
			return
		}
		if len(users) == 0 {
			response.Abort(c, apperr.Unauthenticated("user not found"))
			return
		}
		user := users[0]
		if user.Disabled {
			response.Abort(c, apperr.Forbidden("user disabled"))
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextIsAdmin, user.IsAdmin)
		c.Next()
	}
}

// RequireAdmin must run after RequireUser.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextIsAdmin) {
			response.Abort(c, apperr.Forbidden("admin access required"))
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user id, or 0 outside RequireUser.
func UserID(c *gin.Context) uint64 {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0
	}
	id, _ := v.(uint64)
	return id
}
