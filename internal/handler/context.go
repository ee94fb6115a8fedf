package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/OsasDev/qirllo-api/internal/middleware"
	"github.com/OsasDev/qirllo-api/internal/models"
	appErrors "github.com/OsasDev/qirllo-api/pkg/errors"
	"github.com/OsasDev/qirllo-api/pkg/response"
)

// mustAuth returns the authenticated identity or writes a 401 and reports
// failure. Routes behind the auth middleware always have one; this guards
// against wiring mistakes.
func mustAuth(c *gin.Context) (*models.AuthContext, bool) {
	auth, ok := middleware.CurrentAuth(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return auth, true
}
