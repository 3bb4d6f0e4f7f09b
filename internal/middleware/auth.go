package middleware

import (
	"context"
	"net/http"
	"strings"

	"vidtube/internal/domain"
	"vidtube/internal/pkg/response"
	"vidtube/internal/pkg/token"

	"github.com/gin-gonic/gin"
)

// TokenValidator is the slice of the token issuer the guard needs.
type TokenValidator interface {
	Validate(kind token.Kind, tokenStr string) (*token.Claims, error)
}

// UserResolver confirms the token subject still exists.
type UserResolver interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// RequireAuth validates the access token from the accessToken cookie or the
// Authorization: Bearer header, confirms the user still exists, and puts
// user_id and the resolved user into the gin context. It never consults the
// refresh-session slot.
func RequireAuth(validator TokenValidator, users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractAccessToken(c)
		if tokenStr == "" {
			response.Error(c, http.StatusUnauthorized, "TOKEN_MISSING", "Authentication required")
			c.Abort()
			return
		}

		claims, err := validator.Validate(token.KindAccess, tokenStr)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired access token")
			c.Abort()
			return
		}

		u, err := users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired access token")
			c.Abort()
			return
		}
		u.PasswordHash = ""

		c.Set("user_id", u.ID)
		c.Set("user", u)

		c.Next()
	}
}

func extractAccessToken(c *gin.Context) string {
	if cookie, err := c.Cookie("accessToken"); err == nil && cookie != "" {
		return cookie
	}

	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
