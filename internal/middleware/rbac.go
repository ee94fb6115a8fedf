package middleware

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/OsasDev/qirllo-api/pkg/errors"
	"github.com/OsasDev/qirllo-api/pkg/response"
)

// Require enforces one permission from the policy table. It must run after
// Auth.
func Require(resource string, action Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth, ok := CurrentAuth(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if !Allowed(auth.User.Role, resource, action) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
