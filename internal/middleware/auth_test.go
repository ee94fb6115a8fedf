package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/OsasDev/qirllo-api/internal/models"
	appErrors "github.com/OsasDev/qirllo-api/pkg/errors"
)

type fakeAuthenticator struct {
	auth *models.AuthContext
	err  error
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, _ string) (*models.AuthContext, error) {
	return f.auth, f.err
}

func newAuthRouter(auth authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", Auth(auth), func(c *gin.Context) {
		current, ok := CurrentAuth(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no identity"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": current.User.ID})
	})
	return router
}

func doRequest(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	router := newAuthRouter(&fakeAuthenticator{})

	rec := doRequest(router, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing authorization header")
}

func TestAuthRejectsMalformedHeader(t *testing.T) {
	router := newAuthRouter(&fakeAuthenticator{})

	rec := doRequest(router, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid authorization header")
}

func TestAuthSurfacesExpiredTokenDistinctly(t *testing.T) {
	router := newAuthRouter(&fakeAuthenticator{err: appErrors.ErrTokenExpired})

	rec := doRequest(router, "Bearer stale")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "TOKEN_EXPIRED")
}

func TestAuthAttachesIdentity(t *testing.T) {
	router := newAuthRouter(&fakeAuthenticator{auth: &models.AuthContext{
		User:     &models.User{ID: "u1", SchoolID: "school-1", Role: models.RoleAdmin},
		SchoolID: "school-1",
	}})

	rec := doRequest(router, "Bearer good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "u1")
}
