package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"drivepro-backend/internal/domain"
	resp "drivepro-backend/internal/transport/http/response"
)

const keyUser = "user"

// Resolver 由 token 得到当前用户，失败返回 nil
type Resolver interface {
	Resolve(ctx context.Context, token string) *domain.User
}

func Authenticate(r Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Message("Missing or invalid Authorization header"))
			return
		}
		u := r.Resolve(c.Request.Context(), strings.TrimPrefix(ah, "Bearer "))
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Message("Invalid auth token"))
			return
		}
		c.Set(keyUser, u)
		c.Next()
	}
}

// CurrentUser 仅在 Authenticate 之后可用
func CurrentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(keyUser); ok {
		if u, ok := v.(*domain.User); ok {
			return u
		}
	}
	return nil
}

func RequireRole(role domain.Role) gin.HandlerFunc {
	return RequireAnyRole(role)
}

func RequireAnyRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil || !slices.Contains(roles, u.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, resp.Message("Forbidden"))
			return
		}
		c.Next()
	}
}
