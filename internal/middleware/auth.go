package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/OsasDev/qirllo-api/internal/models"
	appErrors "github.com/OsasDev/qirllo-api/pkg/errors"
	"github.com/OsasDev/qirllo-api/pkg/response"
)

// ContextAuthKey is the gin context key storing the authenticated identity.
const ContextAuthKey = "currentAuth"

type authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.AuthContext, error)
}

// Auth protects routes by requiring a valid bearer token. The user record is
// re-fetched on every request, so stale token claims never win over the
// stored role and school.
func Auth(auth authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		authCtx, err := auth.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextAuthKey, authCtx)
		c.Next()
	}
}

// CurrentAuth returns the authenticated identity attached by Auth.
func CurrentAuth(c *gin.Context) (*models.AuthContext, bool) {
	value, exists := c.Get(ContextAuthKey)
	if !exists {
		return nil, false
	}
	auth, ok := value.(*models.AuthContext)
	return auth, ok
}
